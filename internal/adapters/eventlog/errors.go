package eventlog

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package.
var (
	ErrParse = errors.New("malformed event log")
	ErrRead  = errors.New("read event log failed")

	errBlankLine = errors.New("empty line")
	errNotObject = errors.New("record is not a JSON object")
)

// ParseError reports the line that could not be decoded.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: line %d: %v", ErrParse, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }
