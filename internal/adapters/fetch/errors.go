package fetch

import "errors"

// ErrBodyTooLarge is returned when a page exceeds the configured size limit.
var ErrBodyTooLarge = errors.New("response body exceeds limit")
