package worker

import "errors"

var (
	ErrRuntimeStopped = errors.New("worker runtime is not running")
	ErrQueueFull      = errors.New("worker event queue is full")
	ErrUnknownEvent   = errors.New("unknown worker event")
	ErrClientNotFound = errors.New("window client not found")
)
