package services

import "errors"

// ErrInvalidInput marks client mistakes: missing garment selection, empty
// rename, empty photo batch. Handlers translate it into an HTTP 400.
var ErrInvalidInput = errors.New("invalid input")

// ErrGeneration marks a failed call to the external generation provider.
// Handlers translate it into an HTTP 500 with the underlying cause attached.
var ErrGeneration = errors.New("try-on generation failed")
