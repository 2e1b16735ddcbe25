package merge

import "errors"

// ErrMissingKey is returned when a table lacks one of the join key columns.
var ErrMissingKey = errors.New("table is missing a join key column")
