package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidName = errors.New("invalid file name")
)
