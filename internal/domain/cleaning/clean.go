// Package cleaning turns a scraped two-header table into season rows only.
package cleaning

import (
	"github.com/okian/fbradar/internal/domain/model"
	"github.com/okian/fbradar/internal/domain/table"
)

// DefaultDroppedColumn is the match-report link column every fbref table carries.
const DefaultDroppedColumn = "Matchs"

// Result describes what a Clean call changed.
type Result struct {
	Table    *table.Table
	Rejected int
	Dropped  []string
}

// Cleaner filters and normalizes raw table records.
type Cleaner struct {
	dropped []string
}

// New creates a Cleaner. By default it removes DefaultDroppedColumn.
func New(opts ...Option) *Cleaner {
	c := &Cleaner{dropped: []string{DefaultDroppedColumn}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean reads raw records (over-header, header, rows) or already cleaned
// records (header, rows) and returns the cleaned table. Cleaning a cleaned
// table returns it unchanged.
func (c *Cleaner) Clean(records [][]string) (Result, error) {
	if len(records) == 0 {
		return Result{}, table.ErrNoHeader
	}

	header, rows := records[0], records[1:]
	if isRaw(records) {
		header, rows = records[1], records[2:]
	}

	t := table.New(table.DedupeHeader(header), rows)
	t.NormalizeAbsent()
	rejected := t.Filter(func(row []string) bool {
		return len(row) > 0 && model.IsSeasonLabel(row[0])
	})
	dropped := t.DropColumns(c.dropped...)

	return Result{Table: t, Rejected: rejected, Dropped: dropped}, nil
}

// isRaw reports whether the first record is an over-header. A cleaned table
// has its header first and season rows after it.
func isRaw(records [][]string) bool {
	if len(records) < 2 {
		return false
	}
	second := records[1]
	return len(second) == 0 || !model.IsSeasonLabel(second[0])
}
