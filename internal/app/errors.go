package service

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInput     = errors.New("no event log given")
	ErrStopped   = errors.New("watcher not running")
	ErrDuplicate = errors.New("file state already scored")
	ErrQueueFull = errors.New("scoring queue full")
)
