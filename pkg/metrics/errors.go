package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrGather        = errors.New("metrics gather failed")
	ErrWriteTextfile = errors.New("metrics textfile write failed")
)
