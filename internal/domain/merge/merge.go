// Package merge outer-joins per-category tables of one player on a shared key
// and reconciles the columns the categories have in common.
package merge

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/fbradar/internal/domain/table"
)

// keySep joins key cells into a map key; it never occurs in scraped text.
const keySep = "\x1f"

// Result is a joined table plus how duplicate columns were resolved.
type Result struct {
	Table *table.Table
	// Collapsed lists duplicate names whose copies agreed on every row.
	Collapsed []string
	// Retained lists duplicate names kept side by side under suffixed names.
	Retained []string
}

type indexed struct {
	t      *table.Table
	keyIdx []int
	values []int
	byKey  map[string][]int
}

// OuterJoin joins tables on keys. Every key present in any table appears in
// the output, sorted by key, and the columns of a table lacking that key are
// set to fill. Duplicate keys inside a table yield one output row per match.
func OuterJoin(keys []string, tables []*table.Table, fill string) (Result, error) {
	if len(keys) == 0 {
		return Result{}, fmt.Errorf("%w: no key columns", ErrMissingKey)
	}

	src := make([]indexed, 0, len(tables))
	tuples := make(map[string][]string)
	for n, t := range tables {
		ix := indexed{t: t, byKey: make(map[string][]int)}
		for _, k := range keys {
			i := t.Index(k)
			if i < 0 {
				return Result{}, fmt.Errorf("%w: table %d lacks %q", ErrMissingKey, n, k)
			}
			ix.keyIdx = append(ix.keyIdx, i)
		}
		for i, h := range t.Header {
			if !slices.Contains(keys, h) {
				ix.values = append(ix.values, i)
			}
		}
		for r, row := range t.Rows {
			tuple := pick(row, ix.keyIdx)
			id := strings.Join(tuple, keySep)
			ix.byKey[id] = append(ix.byKey[id], r)
			tuples[id] = tuple
		}
		src = append(src, ix)
	}

	order := make([][]string, 0, len(tuples))
	for _, tuple := range tuples {
		order = append(order, tuple)
	}
	slices.SortFunc(order, compareTuples)

	header := slices.Clone(keys)
	for _, ix := range src {
		header = append(header, pick(ix.t.Header, ix.values)...)
	}

	var rows [][]string
	for _, tuple := range order {
		id := strings.Join(tuple, keySep)
		partial := [][]string{slices.Clone(tuple)}
		for _, ix := range src {
			matches := ix.byKey[id]
			var next [][]string
			if len(matches) == 0 {
				blank := make([]string, len(ix.values))
				for i := range blank {
					blank[i] = fill
				}
				for _, p := range partial {
					next = append(next, append(slices.Clone(p), blank...))
				}
			} else {
				for _, p := range partial {
					for _, r := range matches {
						next = append(next, append(slices.Clone(p), pick(ix.t.Rows[r], ix.values)...))
					}
				}
			}
			partial = next
		}
		rows = append(rows, partial...)
	}

	joined := table.New(header, rows)
	collapsed, retained := reconcile(joined, len(keys))
	return Result{Table: joined, Collapsed: collapsed, Retained: retained}, nil
}

// reconcile merges repeated value columns. A name whose copies are equal on
// every row keeps its first copy under the plain name; otherwise every copy
// is kept with a positional suffix.
func reconcile(t *table.Table, nkeys int) (collapsed, retained []string) {
	positions := make(map[string][]int)
	var names []string
	for i := nkeys; i < len(t.Header); i++ {
		h := t.Header[i]
		if _, ok := positions[h]; !ok {
			names = append(names, h)
		}
		positions[h] = append(positions[h], i)
	}

	taken := make(map[string]bool, len(t.Header))
	for _, h := range t.Header {
		taken[h] = true
	}

	drop := make(map[int]bool)
	for _, name := range names {
		pos := positions[name]
		if len(pos) < 2 {
			continue
		}
		if unanimous(t.Rows, pos) {
			for _, p := range pos[1:] {
				drop[p] = true
			}
			collapsed = append(collapsed, name)
			continue
		}
		for n, p := range pos {
			candidate := name + suffix(n)
			for taken[candidate] {
				candidate += suffix(n)
			}
			taken[candidate] = true
			t.Header[p] = candidate
		}
		retained = append(retained, name)
	}

	if len(drop) > 0 {
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
	}
	return collapsed, retained
}

func unanimous(rows [][]string, pos []int) bool {
	for _, row := range rows {
		first := row[pos[0]]
		for _, p := range pos[1:] {
			if !table.EqualCells(first, row[p]) {
				return false
			}
		}
	}
	return true
}

// suffix names the n-th copy of a duplicate column: _x, _y, _z, then _4, _5...
func suffix(n int) string {
	switch n {
	case 0:
		return "_x"
	case 1:
		return "_y"
	case 2:
		return "_z"
	default:
		return "_" + strconv.Itoa(n+1)
	}
}

func compareTuples(a, b []string) int {
	for i := range a {
		if c := table.CompareCells(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func pick(row []string, idx []int) []string {
	out := make([]string, len(idx))
	for j, i := range idx {
		out[j] = row[i]
	}
	return out
}
