package service

import "errors"

// Sentinel kinds returned by the service. Adapters map them to responses.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFinished = errors.New("session finished")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownTopic    = errors.New("unknown topic")
	ErrCapacity        = errors.New("too many active sessions")
	ErrStalePosition   = errors.New("answer position does not match the session")
)
