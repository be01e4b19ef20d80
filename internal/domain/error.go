package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrDeviceNotFound     = errors.New("device not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidConfig      = errors.New("invalid config")
	ErrRegistryNotStarted = errors.New("registry not started")
	ErrMalformedUpdate    = errors.New("malformed device update")
)
