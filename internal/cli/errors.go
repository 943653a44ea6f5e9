package cli

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrUsage reports a missing or malformed argument.
	ErrUsage = errors.New("usage error")
)
