package table

import "errors"

// Sentinel kinds for table errors.
var (
	ErrNoHeader = errors.New("table has no header row")
)
