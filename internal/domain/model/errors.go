package model

import "errors"

// Sentinel kinds for model validation.
var (
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrInvalidQuestion   = errors.New("invalid question")
	ErrInvalidProfile    = errors.New("invalid job profile")
)
