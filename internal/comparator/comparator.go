// Package comparator scores merged player stats per category and renders
// radar charts comparing players season by season.
package comparator

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"slices"

	"github.com/okian/fbradar/internal/adapters/render"
	"github.com/okian/fbradar/internal/adapters/repository"
	"github.com/okian/fbradar/internal/domain/model"
	"github.com/okian/fbradar/internal/domain/scoring"
	"github.com/okian/fbradar/internal/domain/table"
	"github.com/okian/fbradar/pkg/logger"
	"github.com/okian/fbradar/pkg/metrics"
)

// Column names of a merged player file, plus the player tag added on load.
const (
	SeasonColumn = "Saison"
	AgeColumn    = "Âge"
	TeamColumn   = "Équipe"
	CompColumn   = "Comp"
	PlayerColumn = "Joueur"
)

const (
	titlePrefix = "Comparaison des joueurs - Saison "
	filePrefix  = "comparaison_joueurs_saison_"
	footnote    = "La graduation d'un radar chart reflète des mesures normalisées sur plusieurs axes, " +
		"chaque cercle concentrique est une isovaleur (z-score)."
)

// PlayerFile is one merged stats file and the name its rows are tagged with.
type PlayerFile struct {
	Name string
	Path string
}

// Renderer writes a chart to path.
type Renderer interface {
	Render(ctx context.Context, chart render.Chart, path string) error
}

// Comparator loads merged files once and renders charts from them.
type Comparator struct {
	players      []PlayerFile
	renderer     Renderer
	scorer       scoring.Scorer
	competitions []string
	startSeason  string
	exclude      []string
	categories   []model.Category
	chartDir     string
	background   [2]color.Color
	palette      []color.Color
	log          logger.Logger

	grouped    *Grouped
	composites []model.CompositeRow
}

// New creates a comparator over players in the given order. The first
// player takes the first palette color.
func New(players []PlayerFile, renderer Renderer, opts ...Option) *Comparator {
	c := &Comparator{
		players:    slices.Clone(players),
		renderer:   renderer,
		chartDir:   "viz_data",
		background: [2]color.Color{color.Black, color.NRGBA{R: 0x3b, G: 0x37, A: 0xff}},
		palette:    []color.Color{color.NRGBA{R: 0xff, A: 0xff}, color.NRGBA{B: 0xff, A: 0xff}},
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.scorer = scoring.NewCompositeScorer(
		scoring.WithCategories(c.categories),
		scoring.WithLogger(c.log),
	)
	return c
}

type loadedRow map[string]string

// Load reads every player file, keeps the configured competitions and
// seasons, fills empty numeric cells with the column mean and sums numeric
// columns per (season, age, team, player). Missing files are skipped.
func (c *Comparator) Load(ctx context.Context) (*Grouped, error) {
	var (
		rows    []loadedRow
		columns []string
		known   = map[string]bool{}
		loaded  int
	)
	for _, p := range c.players {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := repository.ReadTableFile(p.Path)
		if errors.Is(err, repository.ErrNotFound) {
			c.log.Warn(ctx, "player file missing", logger.String("player", p.Name), logger.String("path", p.Path))
			continue
		}
		if err != nil {
			return nil, err
		}
		loaded++
		if added := c.expandCollapsed(t); len(added) > 0 {
			c.log.Debug(ctx, "collapsed columns expanded",
				logger.String("player", p.Name), logger.Strings("columns", added))
		}
		for _, h := range t.Header {
			if !known[h] {
				known[h] = true
				columns = append(columns, h)
			}
		}
		for _, r := range t.Rows {
			row := make(loadedRow, len(t.Header)+1)
			for i, h := range t.Header {
				row[h] = r[i]
			}
			row[PlayerColumn] = p.Name
			rows = append(rows, row)
		}
	}
	if loaded == 0 {
		return nil, fmt.Errorf("%w: no merged player file found", model.ErrNoComparisonData)
	}

	rows = slices.DeleteFunc(rows, func(r loadedRow) bool { return !c.keep(r) })
	values := c.valueColumns(columns)
	numeric, means := numericColumns(rows, values)

	index := make(map[GroupKey]int)
	g := &Grouped{columns: numeric, values: make(map[string][]float64, len(numeric))}
	for _, r := range rows {
		k := GroupKey{Season: r[SeasonColumn], Age: r[AgeColumn], Team: r[TeamColumn], Player: r[PlayerColumn]}
		i, ok := index[k]
		if !ok {
			i = len(g.Keys)
			index[k] = i
			g.Keys = append(g.Keys, k)
			for _, col := range numeric {
				g.values[col] = append(g.values[col], 0)
			}
		}
		for _, col := range numeric {
			v, ok := table.ParseNumber(r[col])
			if !ok {
				v = means[col]
			}
			g.values[col][i] += v
		}
	}
	sortGroups(g)

	c.grouped = g
	c.composites = nil
	c.log.Info(ctx, "player data loaded",
		logger.Int("files", loaded),
		logger.Int("rows", len(rows)),
		logger.Int("groups", g.Len()),
		logger.Int("numeric_columns", len(numeric)))
	return g, nil
}

// expandCollapsed adds the configured X_x and X_y columns a file lacks,
// copied from its own X column. The join collapses identical copies per
// player, so files of different players may name the same stat differently.
func (c *Comparator) expandCollapsed(t *table.Table) []string {
	var added []string
	for _, cat := range c.categories {
		for _, name := range cat.Columns {
			if t.Has(name) {
				continue
			}
			base, ok := scoring.BaseName(name)
			if !ok {
				continue
			}
			i := t.Index(base)
			if i < 0 {
				continue
			}
			t.Header = append(t.Header, name)
			for r, row := range t.Rows {
				t.Rows[r] = append(row, row[i])
			}
			added = append(added, name)
		}
	}
	return added
}

func (c *Comparator) keep(r loadedRow) bool {
	if len(c.competitions) > 0 && !slices.Contains(c.competitions, r[CompColumn]) {
		return false
	}
	return r[SeasonColumn] >= c.startSeason
}

func (c *Comparator) valueColumns(columns []string) []string {
	skip := map[string]bool{SeasonColumn: true, AgeColumn: true, TeamColumn: true, CompColumn: true, PlayerColumn: true}
	for _, e := range c.exclude {
		skip[e] = true
	}
	var out []string
	for _, col := range columns {
		if !skip[col] {
			out = append(out, col)
		}
	}
	return out
}

// numericColumns returns the columns whose non-empty cells all parse as
// numbers, with the mean of those cells. A column without any value has
// mean 0.
func numericColumns(rows []loadedRow, columns []string) ([]string, map[string]float64) {
	var numeric []string
	means := make(map[string]float64)
next:
	for _, col := range columns {
		sum, n := 0.0, 0
		for _, r := range rows {
			cell := r[col]
			if cell == "" {
				continue
			}
			v, ok := table.ParseNumber(cell)
			if !ok {
				continue next
			}
			sum += v
			n++
		}
		numeric = append(numeric, col)
		if n > 0 {
			means[col] = sum / float64(n)
		}
	}
	return numeric, means
}

func sortGroups(g *Grouped) {
	order := make([]int, g.Len())
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return g.Keys[a].compare(g.Keys[b]) })

	keys := make([]GroupKey, len(order))
	for to, from := range order {
		keys[to] = g.Keys[from]
	}
	g.Keys = keys
	for col, vals := range g.values {
		sorted := make([]float64, len(order))
		for to, from := range order {
			sorted[to] = vals[from]
		}
		g.values[col] = sorted
	}
}

// ComputeComposites scores every group of g on every configured category.
func (c *Comparator) ComputeComposites(ctx context.Context, g *Grouped) ([]model.CompositeRow, error) {
	scores, err := c.scorer.Score(ctx, g)
	if err != nil {
		return nil, err
	}
	rows := make([]model.CompositeRow, g.Len())
	for i, k := range g.Keys {
		rows[i] = model.CompositeRow{Season: k.Season, Age: k.Age, Team: k.Team, Player: k.Player, Scores: scores[i]}
	}
	metrics.UpdateCompositeRows(len(rows))
	return rows, nil
}

// Composites loads the data if needed and returns the composite rows.
func (c *Comparator) Composites(ctx context.Context) ([]model.CompositeRow, error) {
	if c.composites != nil {
		return c.composites, nil
	}
	g := c.grouped
	if g == nil {
		var err error
		if g, err = c.Load(ctx); err != nil {
			return nil, err
		}
	}
	rows, err := c.ComputeComposites(ctx, g)
	if err != nil {
		return nil, err
	}
	c.composites = rows
	return rows, nil
}

// Categories returns the scored categories.
func (c *Comparator) Categories() []model.Category {
	return slices.Clone(c.categories)
}

// ChartPath returns where the chart for label is written.
func (c *Comparator) ChartPath(label string) string {
	return filepath.Join(c.chartDir, filePrefix+label+".png")
}

// RenderRadar draws one polygon per row on a spoke per category and
// returns the written path.
func (c *Comparator) RenderRadar(ctx context.Context, rows []model.CompositeRow, label string) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: nothing to plot for %s", model.ErrNoComparisonData, label)
	}

	labels := make([]string, len(c.categories))
	for i, cat := range c.categories {
		labels[i] = cat.Label
		if labels[i] == "" {
			labels[i] = cat.Name
		}
	}

	mixed := false
	for _, r := range rows[1:] {
		mixed = mixed || r.Season != rows[0].Season
	}
	series := make([]render.Series, 0, len(rows))
	for _, r := range rows {
		name := r.Player
		if mixed {
			name += " " + r.Season
		}
		series = append(series, render.Series{Name: name, Values: r.Scores, Color: c.colorFor(r.Player)})
	}

	path := c.ChartPath(label)
	chart := render.Chart{
		Title:      titlePrefix + label,
		Labels:     labels,
		Series:     series,
		Background: c.background,
		Footnote:   footnote,
	}
	if err := c.renderer.Render(ctx, chart, path); err != nil {
		return "", fmt.Errorf("render %s: %w", label, err)
	}
	metrics.RecordChartRendered()
	c.log.Info(ctx, "chart written", logger.String("label", label), logger.String("path", path), logger.Int("players", len(rows)))
	return path, nil
}

func (c *Comparator) colorFor(player string) color.Color {
	i := slices.IndexFunc(c.players, func(p PlayerFile) bool { return p.Name == player })
	if i < 0 || i >= len(c.palette) {
		i = len(c.palette) - 1
	}
	return c.palette[i]
}

func (c *Comparator) isConfigured(player string) bool {
	return slices.ContainsFunc(c.players, func(p PlayerFile) bool { return p.Name == player })
}

// PlotAllSeasons renders one chart per season present in the data and
// returns the written paths in season order. A season that fails to render
// is reported as a diagnostic and the remaining seasons are still plotted.
func (c *Comparator) PlotAllSeasons(ctx context.Context) ([]string, []model.Diagnostic, error) {
	rows, err := c.Composites(ctx)
	if err != nil {
		return nil, nil, err
	}

	var seasons []string
	for _, r := range rows {
		if !slices.Contains(seasons, r.Season) {
			seasons = append(seasons, r.Season)
		}
	}

	var (
		paths = make([]string, 0, len(seasons))
		diags []model.Diagnostic
	)
	for _, season := range seasons {
		if err := ctx.Err(); err != nil {
			return paths, diags, err
		}
		var selected []model.CompositeRow
		for _, r := range rows {
			if r.Season == season && c.isConfigured(r.Player) {
				selected = append(selected, r)
			}
		}
		path, err := c.RenderRadar(ctx, selected, season)
		if err != nil {
			d := model.Diagnostic{Kind: model.KindOf(err), Subject: season, Err: err}
			metrics.RecordDiagnostic(string(d.Kind))
			c.log.Error(ctx, "season chart failed", logger.String("season", season), logger.Error(err))
			diags = append(diags, d)
			continue
		}
		paths = append(paths, path)
	}
	return paths, diags, nil
}

// PlotBetweenSeasons renders one chart comparing a player season against
// another. If either side has no data nothing is written and the error
// wraps model.ErrNoComparisonData.
func (c *Comparator) PlotBetweenSeasons(ctx context.Context, a, b model.PlayerSeason) (string, error) {
	rows, err := c.Composites(ctx)
	if err != nil {
		return "", err
	}

	ra, okA := find(rows, a)
	rb, okB := find(rows, b)
	if !okA || !okB {
		metrics.RecordComparisonSkipped()
		c.log.Warn(ctx, "comparison skipped",
			logger.String("first", a.String()),
			logger.String("second", b.String()))
		return "", fmt.Errorf("%w: %s or %s", model.ErrNoComparisonData, a, b)
	}
	return c.RenderRadar(ctx, []model.CompositeRow{ra, rb}, a.Season+" vs "+b.Season)
}

func find(rows []model.CompositeRow, ps model.PlayerSeason) (model.CompositeRow, bool) {
	for _, r := range rows {
		if r.Player == ps.Player && r.Season == ps.Season {
			return r, true
		}
	}
	return model.CompositeRow{}, false
}
