package model

import "errors"

// Sentinel kinds shared by the pipeline stages. Callers use errors.Is.
var (
	ErrFetch            = errors.New("page fetch failed")
	ErrHTTPStatus       = errors.New("unexpected http status")
	ErrTableMissing     = errors.New("table not found in page")
	ErrNoIntermediates  = errors.New("no intermediate files for player")
	ErrNoComparisonData = errors.New("no data for requested player and season")
	ErrDuplicateInput   = errors.New("player listed more than once")
	ErrInvalidSelector  = errors.New("invalid player:season selector")
)

