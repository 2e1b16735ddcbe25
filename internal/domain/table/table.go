// Package table holds the untyped tabular value that flows between pipeline
// stages: a header plus string rows, every row as wide as the header.
package table

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Table is a rectangular grid of string cells. An empty cell is the absent
// value marker.
type Table struct {
	Header []string
	Rows   [][]string
}

// New builds a table, padding or truncating rows to the header width.
func New(header []string, rows [][]string) *Table {
	t := &Table{Header: slices.Clone(header), Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, fit(r, len(header)))
	}
	return t
}

func fit(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of a column or -1.
func (t *Table) Index(name string) int {
	return slices.Index(t.Header, name)
}

// Has reports whether the column exists.
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Column returns a copy of a column's cells.
func (t *Table) Column(name string) ([]string, bool) {
	i := t.Index(name)
	if i < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, true
}

// Records returns header and rows as CSV records.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, slices.Clone(t.Header))
	for _, r := range t.Rows {
		out = append(out, slices.Clone(r))
	}
	return out
}

// FromRecords treats the first record as the header.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}
	return New(records[0], records[1:]), nil
}

// DropColumns removes the named columns that exist and returns the names it
// removed. Unknown names are ignored.
func (t *Table) DropColumns(names ...string) []string {
	drop := make(map[int]bool)
	var dropped []string
	for _, n := range names {
		if i := t.Index(n); i >= 0 && !drop[i] {
			drop[i] = true
			dropped = append(dropped, n)
		}
	}
	if len(drop) == 0 {
		return nil
	}

	keep := make([]int, 0, len(t.Header)-len(drop))
	for i := range t.Header {
		if !drop[i] {
			keep = append(keep, i)
		}
	}
	t.Header = pick(t.Header, keep)
	for r, row := range t.Rows {
		t.Rows[r] = pick(row, keep)
	}
	return dropped
}

func pick(row []string, idx []int) []string {
	out := make([]string, len(idx))
	for j, i := range idx {
		out[j] = row[i]
	}
	return out
}

// Filter keeps the rows for which keep returns true and reports how many
// were removed.
func (t *Table) Filter(keep func(row []string) bool) int {
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	removed := len(t.Rows) - len(kept)
	t.Rows = kept
	return removed
}

// FillEmpty replaces absent cells with v and returns the number replaced.
func (t *Table) FillEmpty(v string) int {
	n := 0
	for _, row := range t.Rows {
		for i, cell := range row {
			if cell == "" {
				row[i] = v
				n++
			}
		}
	}
	return n
}

// NormalizeAbsent trims cells and turns blank ones into the absent marker.
func (t *Table) NormalizeAbsent() {
	for _, row := range t.Rows {
		for i, cell := range row {
			row[i] = strings.TrimSpace(cell)
		}
	}
}

// DedupeHeader disambiguates repeated names as X, X.1, X.2, ... skipping
// suffixes that are already taken.
func DedupeHeader(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = false
	}
	counts := make(map[string]int, len(header))
	for i, h := range header {
		if used := taken[h]; !used {
			taken[h] = true
			out[i] = h
			continue
		}
		for {
			counts[h]++
			candidate := fmt.Sprintf("%s.%d", h, counts[h])
			if _, exists := taken[candidate]; !exists {
				taken[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}

// ParseNumber parses a scraped numeric cell. Thousands separators, blanks
// and a trailing percent sign are tolerated.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\u202f", "").Replace(s)
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CompareCells orders two cells numerically when both parse, otherwise as
// strings.
func CompareCells(a, b string) int {
	fa, okA := ParseNumber(a)
	fb, okB := ParseNumber(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// EqualCells reports whether two cells hold the same value, numerically when
// both parse.
func EqualCells(a, b string) bool {
	if a == b {
		return true
	}
	fa, okA := ParseNumber(a)
	fb, okB := ParseNumber(b)
	return okA && okB && fa == fb
}
