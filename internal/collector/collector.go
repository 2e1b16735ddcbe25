// Package collector turns player stats pages into one merged CSV per player.
package collector

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fbradar/internal/adapters/fetch"
	"github.com/okian/fbradar/internal/adapters/htmltable"
	"github.com/okian/fbradar/internal/adapters/repository"
	"github.com/okian/fbradar/internal/domain/cleaning"
	"github.com/okian/fbradar/internal/domain/dedupe"
	"github.com/okian/fbradar/internal/domain/merge"
	"github.com/okian/fbradar/internal/domain/model"
	"github.com/okian/fbradar/internal/domain/table"
	"github.com/okian/fbradar/pkg/logger"
	"github.com/okian/fbradar/pkg/metrics"
)

// MergedSuffix ends every merged player file name.
const MergedSuffix = "_merged_stats.csv"

// DefaultTableIDs are the expanded stats tables of an fbref player page.
var DefaultTableIDs = []string{ //nolint:gochecknoglobals
	"stats_passing_expanded",
	"stats_standard_expanded",
	"stats_shooting_expanded",
	"stats_gca_expanded",
	"stats_defense_expanded",
	"stats_possession_expanded",
}

// DefaultKeyColumns identify one row of every stats table.
var DefaultKeyColumns = []string{"Saison", "Âge", "Équipe", "Comp"} //nolint:gochecknoglobals

// Fetcher downloads a page.
type Fetcher interface {
	Get(ctx context.Context, url string) (fetch.Page, error)
}

// MergedFile is the durable output for one player.
type MergedFile struct {
	Player string
	Path   string
}

// Report summarizes a Run.
type Report struct {
	RunID       string
	Merged      []MergedFile
	Diagnostics []model.Diagnostic
}

// Collector fetches, cleans, trims and merges stats tables.
type Collector struct {
	fetcher   Fetcher
	store     repository.Store
	cleaner   *cleaning.Cleaner
	tableIDs  []string
	keys      []string
	dropRules map[string][]string
	log       logger.Logger
}

// New creates a collector writing through store.
func New(fetcher Fetcher, store repository.Store, opts ...Option) *Collector {
	c := &Collector{
		fetcher:  fetcher,
		store:    store,
		cleaner:  cleaning.New(),
		tableIDs: slices.Clone(DefaultTableIDs),
		keys:     slices.Clone(DefaultKeyColumns),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IntermediateName is the file holding one table of one player.
func IntermediateName(player, tableID string) string {
	return player + "_" + tableID + ".csv"
}

// MergedName is the merged file of one player.
func MergedName(player string) string {
	return player + MergedSuffix
}

// Fetch downloads the player page and writes every configured table found
// on it. It returns the written file names and one diagnostic per table or
// page that could not be saved.
func (c *Collector) Fetch(ctx context.Context, url, player string) ([]string, []model.Diagnostic) {
	page, err := c.fetcher.Get(ctx, url)
	if err != nil {
		return nil, []model.Diagnostic{c.diagnose(ctx, player, err)}
	}
	if !page.OK() {
		err := fmt.Errorf("%w: %s returned %d", model.ErrHTTPStatus, url, page.Status)
		return nil, []model.Diagnostic{c.diagnose(ctx, player, err)}
	}

	doc, err := htmltable.Parse(page.Body)
	if err != nil {
		return nil, []model.Diagnostic{c.diagnose(ctx, player, fmt.Errorf("%w: %w", model.ErrFetch, err))}
	}

	var (
		written []string
		diags   []model.Diagnostic
	)
	for _, id := range c.tableIDs {
		records, ok := htmltable.Extract(doc, id)
		if !ok {
			metrics.RecordTableMissing(id)
			diags = append(diags, c.diagnose(ctx, player, fmt.Errorf("%w: %s", model.ErrTableMissing, id)))
			continue
		}
		name := IntermediateName(player, id)
		if err := c.store.WriteRecords(ctx, name, records); err != nil {
			diags = append(diags, c.diagnose(ctx, player, err))
			continue
		}
		metrics.RecordTableSaved(id)
		c.log.Debug(ctx, "table saved",
			logger.String("player", player),
			logger.String("table", id),
			logger.Int("rows", len(records)-2))
		written = append(written, name)
	}
	return written, diags
}

// Clean filters the named file to season rows and rewrites it in place.
// Cleaning an already cleaned file leaves it unchanged.
func (c *Collector) Clean(ctx context.Context, name string) error {
	records, err := c.store.ReadRecords(ctx, name)
	if err != nil {
		return err
	}
	res, err := c.cleaner.Clean(records)
	if err != nil {
		return fmt.Errorf("clean %s: %w", name, err)
	}
	if err := c.store.WriteTable(ctx, name, res.Table); err != nil {
		return err
	}
	metrics.RecordFileCleaned(res.Rejected)
	c.log.Debug(ctx, "file cleaned",
		logger.String("file", name),
		logger.Int("rows", res.Table.Len()),
		logger.Int("rejected", res.Rejected))
	return nil
}

// DropColumns removes columns from every cleaned file of a table category,
// then fills remaining absent cells with the sentinel. Names absent from a
// file are ignored. It returns the files rewritten.
func (c *Collector) DropColumns(ctx context.Context, category string, columns []string) ([]string, error) {
	suffix := "_" + category + ".csv"
	names, err := c.store.List(ctx, func(n string) bool {
		return strings.HasSuffix(n, suffix) && !strings.HasSuffix(n, MergedSuffix)
	})
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		t, err := c.store.ReadTable(ctx, name)
		if err != nil {
			return nil, err
		}
		dropped := t.DropColumns(columns...)
		filled := t.FillEmpty(model.AbsentSentinel)
		if err := c.store.WriteTable(ctx, name, t); err != nil {
			return nil, err
		}
		metrics.RecordColumnsDropped(category, len(dropped))
		c.log.Debug(ctx, "columns dropped",
			logger.String("file", name),
			logger.Strings("dropped", dropped),
			logger.Int("filled", filled))
	}
	return names, nil
}

// ApplyDropRules runs DropColumns for every configured category in name
// order.
func (c *Collector) ApplyDropRules(ctx context.Context) []model.Diagnostic {
	categories := make([]string, 0, len(c.dropRules))
	for cat := range c.dropRules {
		categories = append(categories, cat)
	}
	slices.Sort(categories)

	var diags []model.Diagnostic
	for _, cat := range categories {
		if _, err := c.DropColumns(ctx, cat, c.dropRules[cat]); err != nil {
			diags = append(diags, c.diagnose(ctx, cat, err))
		}
	}
	return diags
}

// MergeAndCleanup outer-joins the player's intermediate files, writes the
// merged file, deletes the intermediates it merged and returns the merged
// path. Intermediates without the merge key are left on disk. With
// no intermediate files it returns an error wrapping
// model.ErrNoIntermediates.
func (c *Collector) MergeAndCleanup(ctx context.Context, player string) (string, error) {
	wanted := make(map[string]int, len(c.tableIDs))
	for i, id := range c.tableIDs {
		wanted[IntermediateName(player, id)] = i
	}
	names, err := c.store.List(ctx, func(n string) bool {
		_, ok := wanted[n]
		return ok
	})
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		metrics.RecordMergeMiss()
		return "", fmt.Errorf("%w: %s", model.ErrNoIntermediates, player)
	}
	slices.SortFunc(names, func(a, b string) int { return wanted[a] - wanted[b] })

	tables := make([]*table.Table, 0, len(names))
	used := make([]string, 0, len(names))
	for _, name := range names {
		t, err := c.store.ReadTable(ctx, name)
		if err != nil {
			return "", err
		}
		if missing := missingKeys(t, c.keys); len(missing) > 0 {
			c.log.Warn(ctx, "table skipped from merge",
				logger.String("file", name),
				logger.Strings("missing_keys", missing))
			continue
		}
		tables = append(tables, t)
		used = append(used, name)
	}
	if len(tables) == 0 {
		metrics.RecordMergeMiss()
		return "", fmt.Errorf("%w: %s: no table carries the merge key", model.ErrNoIntermediates, player)
	}

	res, err := merge.OuterJoin(c.keys, tables, model.AbsentSentinel)
	if err != nil {
		return "", fmt.Errorf("merge %s: %w", player, err)
	}
	merged := MergedName(player)
	if err := c.store.WriteTable(ctx, merged, res.Table); err != nil {
		return "", err
	}

	for _, name := range used {
		if err := c.store.Remove(ctx, name); err != nil {
			return "", err
		}
	}

	metrics.RecordPlayerMerged(player, res.Table.Len())
	c.log.Info(ctx, "player merged",
		logger.String("player", player),
		logger.Int("tables", len(tables)),
		logger.Int("rows", res.Table.Len()),
		logger.Strings("collapsed", res.Collapsed),
		logger.Strings("retained", res.Retained))
	return c.store.Path(merged), nil
}

func missingKeys(t *table.Table, keys []string) []string {
	var missing []string
	for _, k := range keys {
		if !t.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Run fetches and cleans every source, applies the drop rules across all
// files, then merges each player. Failures are collected as diagnostics;
// only context cancellation stops the run early.
func (c *Collector) Run(ctx context.Context, sources []model.PlayerSource) (*Report, error) {
	rep := &Report{RunID: uuid.NewString()}
	log := c.log.With(logger.String("run_id", rep.RunID))
	log.Info(ctx, "collect started", logger.Int("players", len(sources)))

	// Names that differ only by case would share files on case-insensitive
	// filesystems.
	seen := dedupe.NewInMemoryDeduper(dedupe.WithCaseFold())
	var players []string

	start := time.Now()
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if seen.SeenAndRecord(ctx, src.Name) {
			err := fmt.Errorf("%w: %s", model.ErrDuplicateInput, src.Name)
			rep.Diagnostics = append(rep.Diagnostics, c.diagnose(ctx, src.Name, err))
			continue
		}
		players = append(players, src.Name)

		written, diags := c.Fetch(ctx, src.URL, src.Name)
		rep.Diagnostics = append(rep.Diagnostics, diags...)
		for _, name := range written {
			if err := c.Clean(ctx, name); err != nil {
				rep.Diagnostics = append(rep.Diagnostics, c.diagnose(ctx, src.Name, err))
			}
		}
	}
	metrics.ObserveStage("fetch_clean", time.Since(start).Seconds())

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	start = time.Now()
	rep.Diagnostics = append(rep.Diagnostics, c.ApplyDropRules(ctx)...)
	metrics.ObserveStage("drop_columns", time.Since(start).Seconds())

	start = time.Now()
	for _, player := range players {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		path, err := c.MergeAndCleanup(ctx, player)
		if err != nil {
			rep.Diagnostics = append(rep.Diagnostics, c.diagnose(ctx, player, err))
			continue
		}
		rep.Merged = append(rep.Merged, MergedFile{Player: player, Path: path})
	}
	metrics.ObserveStage("merge", time.Since(start).Seconds())

	log.Info(ctx, "collect finished",
		logger.Int("players", int(seen.Size())),
		logger.Int("merged", len(rep.Merged)),
		logger.Int("diagnostics", len(rep.Diagnostics)))
	return rep, nil
}

// diagnose logs err as a non-fatal condition of subject.
func (c *Collector) diagnose(ctx context.Context, subject string, err error) model.Diagnostic {
	d := model.Diagnostic{Kind: model.KindOf(err), Subject: subject, Err: err}
	metrics.RecordDiagnostic(string(d.Kind))
	c.log.Warn(ctx, "diagnostic",
		logger.String("subject", subject),
		logger.String("kind", string(d.Kind)),
		logger.Error(err))
	return d
}
