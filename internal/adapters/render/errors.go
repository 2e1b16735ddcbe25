package render

import "errors"

// Sentinel kinds for chart errors.
var (
	ErrInvalidColor = errors.New("invalid hex color")
	ErrEmptyChart   = errors.New("chart has no categories or no series")
)
