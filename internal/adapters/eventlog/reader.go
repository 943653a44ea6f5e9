// Package eventlog decodes the newline-delimited JSON log written by k6.
package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/okian/benchscore/internal/domain/model"
	"github.com/okian/benchscore/pkg/metrics"
)

const (
	defaultMaxLineBytes = 1 << 20
	initialBufferBytes  = 64 << 10
	ctxCheckInterval    = 4096
)

// Handler receives each decoded event. The pointer is only valid for the
// duration of the call.
type Handler func(e *model.Event) error

// Option applies a configuration option to the Reader.
type Option func(*Reader)

// WithMaxLineBytes bounds the size of a single log line.
func WithMaxLineBytes(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxLineBytes = n
		}
	}
}

// Reader streams events without holding the log in memory.
type Reader struct {
	maxLineBytes int
}

// NewReader creates a Reader with configuration options.
func NewReader(opts ...Option) *Reader {
	r := &Reader{maxLineBytes: defaultMaxLineBytes}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFile opens path and streams its events to fn.
func (r *Reader) ReadFile(ctx context.Context, path string, fn Handler) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer func() { _ = f.Close() }()
	return r.Read(ctx, f, fn)
}

// Read decodes src line by line. Every line must be a JSON object. Blank
// lines are only tolerated at the end of the input. The first malformed
// line aborts the read with a *ParseError.
func (r *Reader) Read(ctx context.Context, src io.Reader, fn Handler) error {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, min(initialBufferBytes, r.maxLineBytes)), r.maxLineBytes)

	line := 0
	blank := 0
	for sc.Scan() {
		line++
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		raw := bytes.TrimRight(sc.Bytes(), "\r")
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			if blank == 0 {
				blank = line
			}
			continue
		}
		if blank != 0 {
			return parseFailure(blank, errBlankLine)
		}
		if trimmed[0] != '{' {
			return parseFailure(line, errNotObject)
		}

		var e model.Event
		if err := json.Unmarshal(raw, &e); err != nil {
			return parseFailure(line, err)
		}
		if err := fn(&e); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		if err == bufio.ErrTooLong {
			return parseFailure(line+1, err)
		}
		return fmt.Errorf("%w: %w", ErrRead, err)
	}
	return nil
}

// ReadAll collects every event of path into memory.
func (r *Reader) ReadAll(ctx context.Context, path string) ([]model.Event, error) {
	var events []model.Event
	err := r.ReadFile(ctx, path, func(e *model.Event) error {
		events = append(events, *e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func parseFailure(line int, err error) error {
	metrics.RecordParseError()
	return &ParseError{Line: line, Err: err}
}
