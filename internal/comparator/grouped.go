package comparator

import "slices"

// GroupKey identifies one point of comparison.
type GroupKey struct {
	Season string
	Age    string
	Team   string
	Player string
}

func (k GroupKey) compare(o GroupKey) int {
	for _, p := range [][2]string{{k.Season, o.Season}, {k.Age, o.Age}, {k.Team, o.Team}, {k.Player, o.Player}} {
		if p[0] != p[1] {
			if p[0] < p[1] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Grouped holds summed numeric columns per group, one row per key.
type Grouped struct {
	Keys    []GroupKey
	columns []string
	values  map[string][]float64
}

// Len returns the number of groups.
func (g *Grouped) Len() int { return len(g.Keys) }

// Columns returns the numeric column names in first-seen order.
func (g *Grouped) Columns() []string { return slices.Clone(g.columns) }

// Column returns a numeric column.
func (g *Grouped) Column(name string) ([]float64, bool) {
	v, ok := g.values[name]
	return v, ok
}
