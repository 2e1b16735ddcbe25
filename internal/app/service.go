// Package service wires the collector and the comparator from configuration
// and runs the pipeline stages the CLI exposes.
package service

import (
	"context"
	"fmt"
	"image/color"
	"path/filepath"
	"time"

	"github.com/okian/fbradar/internal/adapters/export"
	"github.com/okian/fbradar/internal/adapters/fetch"
	"github.com/okian/fbradar/internal/adapters/render"
	"github.com/okian/fbradar/internal/adapters/repository"
	"github.com/okian/fbradar/internal/collector"
	"github.com/okian/fbradar/internal/comparator"
	"github.com/okian/fbradar/internal/config"
	"github.com/okian/fbradar/internal/domain/cleaning"
	"github.com/okian/fbradar/internal/domain/model"
	"github.com/okian/fbradar/pkg/logger"
	"github.com/okian/fbradar/pkg/metrics"
)

// ExportFile is the XLSX workbook written next to the charts.
const ExportFile = "composite_scores.xlsx"

// Service runs pipeline stages for one configuration.
type Service struct {
	cfg      *config.Config
	store    repository.Store
	fetcher  collector.Fetcher
	renderer comparator.Renderer
	logger   logger.Logger

	background [2]color.Color
	palette    []color.Color
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFetcher replaces the HTTP client built from configuration.
func WithFetcher(f collector.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithRenderer replaces the PNG radar renderer.
func WithRenderer(r comparator.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// New validates cfg and builds the service.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := repository.NewCSVStore(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:    cfg,
		store:  store,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = fetch.NewClient(
			fetch.WithTimeout(cfg.HTTPTimeout),
			fetch.WithRateLimit(cfg.HTTPRPS, cfg.HTTPBurst),
			fetch.WithUserAgent(cfg.UserAgent),
			fetch.WithMaxBodyBytes(cfg.MaxBodyBytes),
		)
	}
	if s.renderer == nil {
		s.renderer = render.NewRadar()
	}

	if s.background[0], err = render.ParseHex(cfg.BackgroundFrom); err != nil {
		return nil, err
	}
	if s.background[1], err = render.ParseHex(cfg.BackgroundTo); err != nil {
		return nil, err
	}
	for _, hex := range cfg.Palette {
		c, err := render.ParseHex(hex)
		if err != nil {
			return nil, err
		}
		s.palette = append(s.palette, c)
	}
	return s, nil
}

func (s *Service) collector() *collector.Collector {
	return collector.New(s.fetcher, s.store,
		collector.WithTableIDs(s.cfg.TableIDs...),
		collector.WithKeyColumns(s.cfg.KeyColumns...),
		collector.WithDropRules(s.cfg.DropRules),
		collector.WithCleaner(cleaning.New()),
		collector.WithLogger(s.logger.Named("collector")),
	)
}

// Collect scrapes, cleans and merges every configured player.
func (s *Service) Collect(ctx context.Context) (*collector.Report, error) {
	sources := make([]model.PlayerSource, 0, len(s.cfg.Players))
	for _, p := range s.cfg.Players {
		sources = append(sources, model.PlayerSource{URL: p.URL, Name: p.Name})
	}
	return s.collector().Run(ctx, sources)
}

// Comparator builds a comparator over the merged files of the configured
// players.
func (s *Service) Comparator() *comparator.Comparator {
	files := make([]comparator.PlayerFile, 0, len(s.cfg.Players))
	for _, name := range s.cfg.PlayerNames() {
		files = append(files, comparator.PlayerFile{
			Name: name,
			Path: s.store.Path(collector.MergedName(name)),
		})
	}

	cats := make([]model.Category, 0, len(s.cfg.Categories))
	for _, c := range s.cfg.Categories {
		cats = append(cats, model.Category{Name: c.Name, Label: c.Label, Columns: c.Columns})
	}

	return comparator.New(files, s.renderer,
		comparator.WithCompetitions(s.cfg.Competitions...),
		comparator.WithStartSeason(s.cfg.StartSeason),
		comparator.WithExcludeColumns(s.cfg.ExcludeColumns...),
		comparator.WithCategories(cats),
		comparator.WithChartDir(s.cfg.ChartDir),
		comparator.WithBackground(s.background[0], s.background[1]),
		comparator.WithPalette(s.palette...),
		comparator.WithLogger(s.logger.Named("comparator")),
	)
}

// Comparison is the outcome of a comparison stage.
type Comparison struct {
	Charts      []string
	Categories  []model.Category
	Composites  []model.CompositeRow
	Export      string
	Diagnostics []model.Diagnostic
}

// CompareAll renders one chart per season and, when configured, exports
// the composite rows.
func (s *Service) CompareAll(ctx context.Context) (*Comparison, error) {
	cmp := s.Comparator()
	charts, diags, err := cmp.PlotAllSeasons(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := cmp.Composites(ctx)
	if err != nil {
		return nil, err
	}
	out := &Comparison{Charts: charts, Categories: cmp.Categories(), Composites: rows, Diagnostics: diags}
	if s.cfg.ExportXLSX {
		out.Export = filepath.Join(s.cfg.ChartDir, ExportFile)
		if err := export.WriteComposites(out.Export, out.Categories, rows); err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "composites exported", logger.String("path", out.Export))
	}
	return out, nil
}

// CompareBetween renders a single chart of one player season against
// another.
func (s *Service) CompareBetween(ctx context.Context, a, b model.PlayerSeason) (*Comparison, error) {
	cmp := s.Comparator()
	chart, err := cmp.PlotBetweenSeasons(ctx, a, b)
	if err != nil {
		return nil, err
	}
	rows, err := cmp.Composites(ctx)
	if err != nil {
		return nil, err
	}
	var selected []model.CompositeRow
	for _, r := range rows {
		if (r.Player == a.Player && r.Season == a.Season) || (r.Player == b.Player && r.Season == b.Season) {
			selected = append(selected, r)
		}
	}
	return &Comparison{Charts: []string{chart}, Categories: cmp.Categories(), Composites: selected}, nil
}

// Run collects then compares. Collection diagnostics do not stop the
// comparison.
func (s *Service) Run(ctx context.Context) (*collector.Report, *Comparison, error) {
	start := time.Now()
	rep, err := s.Collect(ctx)
	if err != nil {
		return rep, nil, fmt.Errorf("collect: %w", err)
	}
	cmp, err := s.CompareAll(ctx)
	if err != nil {
		return rep, nil, fmt.Errorf("compare: %w", err)
	}
	metrics.ObserveStage("run", time.Since(start).Seconds())
	metrics.MarkRunSuccess(time.Now().Unix())
	return rep, cmp, nil
}

// Close flushes the metrics textfile when one is configured.
func (s *Service) Close() error {
	return metrics.WriteTextfile(s.cfg.MetricsTextfile)
}
