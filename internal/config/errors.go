package config

import (
	"errors"
)

var (
	// ErrInvalidConfig marks a configuration that loaded but cannot run the service.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps provider and parser failures while layering sources.
	ErrLoadConfig = errors.New("load config failed")
)
