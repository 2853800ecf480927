package domain

import "errors"

var (
	// ErrProbeExhausted is returned when every endpoint attempt failed.
	ErrProbeExhausted = errors.New("probe: all endpoint attempts failed")
	// ErrUnknownShape is returned when a body carries none of the known product list keys.
	ErrUnknownShape = errors.New("normalize: unknown response shape")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
