package report

import "errors"

// Sentinel error kinds for this package.
var (
	ErrWrite             = errors.New("write submission failed")
	ErrInvalidSubmission = errors.New("invalid submission")
)
