package bank

import "errors"

// Sentinel errors for question bank lookups and loading.
var (
	ErrUnknownTopic = errors.New("unknown topic")
	ErrInvalidBank  = errors.New("invalid question bank")
)
