// Package metrics provides Prometheus metrics for the fbradar pipeline.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default bucket layout for HTTP fetch latency, in milliseconds.
var defaultFetchBuckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000} //nolint:gochecknoglobals

// Manager owns every collector registered by the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Collector stage
	pagesFetched   prometheus.Counter
	fetchFailures  *prometheus.CounterVec
	fetchLatency   prometheus.Histogram
	tablesSaved    *prometheus.CounterVec
	tablesMissing  *prometheus.CounterVec
	filesCleaned   prometheus.Counter
	rowsRejected   prometheus.Counter
	columnsDropped *prometheus.CounterVec
	playersMerged  prometheus.Counter
	mergeMisses    prometheus.Counter
	mergedRows     *prometheus.GaugeVec

	// Comparator stage
	compositeRows       prometheus.Gauge
	chartsRendered      prometheus.Counter
	comparisonsSkipped  prometheus.Counter
	stageDuration       *prometheus.HistogramVec
	lastRunSuccessUnix  prometheus.Gauge
	diagnosticsReported *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // custom registry without Go runtime collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fbradar",
		subsystem:        "pipeline",
		histogramBuckets: defaultFetchBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.pagesFetched = auto.NewCounter(m.counterOpts("pages_fetched_total", "Player pages fetched with a 200 response"))
	m.fetchFailures = auto.NewCounterVec(m.counterOpts("fetch_failures_total", "Player page fetches abandoned, by reason"), []string{"reason"})
	m.fetchLatency = auto.NewHistogram(m.histogramOpts("fetch_latency_milliseconds", "Player page fetch latency in milliseconds", m.histogramBuckets))
	m.tablesSaved = auto.NewCounterVec(m.counterOpts("tables_saved_total", "Raw tables written, by table id"), []string{"table"})
	m.tablesMissing = auto.NewCounterVec(m.counterOpts("tables_missing_total", "Expected tables absent from a fetched page, by table id"), []string{"table"})
	m.filesCleaned = auto.NewCounter(m.counterOpts("files_cleaned_total", "Intermediate files cleaned in place"))
	m.rowsRejected = auto.NewCounter(m.counterOpts("rows_rejected_total", "Rows removed by the season-label filter"))
	m.columnsDropped = auto.NewCounterVec(m.counterOpts("columns_dropped_total", "Columns removed by drop rules, by category"), []string{"category"})
	m.playersMerged = auto.NewCounter(m.counterOpts("players_merged_total", "Merged player files written"))
	m.mergeMisses = auto.NewCounter(m.counterOpts("merge_misses_total", "Players with no intermediate files at merge time"))
	m.mergedRows = auto.NewGaugeVec(m.gaugeOpts("merged_rows", "Rows in the last merged file, by player"), []string{"player"})

	m.compositeRows = auto.NewGauge(m.gaugeOpts("composite_rows", "Composite score rows computed by the last comparison"))
	m.chartsRendered = auto.NewCounter(m.counterOpts("charts_rendered_total", "Radar charts written"))
	m.comparisonsSkipped = auto.NewCounter(m.counterOpts("comparisons_skipped_total", "Comparisons aborted for missing data"))
	m.stageDuration = auto.NewHistogramVec(
		m.histogramOpts("stage_duration_seconds", "Wall time per pipeline stage", prometheus.DefBuckets),
		[]string{"stage"},
	)
	m.lastRunSuccessUnix = auto.NewGauge(m.gaugeOpts("last_run_success_unix", "Unix time of the last completed run"))
	m.diagnosticsReported = auto.NewCounterVec(m.counterOpts("diagnostics_total", "Non-fatal diagnostics, by kind"), []string{"kind"})
}

// RecordPageFetched counts a successful page fetch and its latency.
func RecordPageFetched(latencyMs float64) {
	globalManager.pagesFetched.Inc()
	globalManager.fetchLatency.Observe(latencyMs)
}

// RecordFetchFailure counts an abandoned player fetch.
func RecordFetchFailure(reason string) {
	globalManager.fetchFailures.WithLabelValues(reason).Inc()
}

// RecordTableSaved counts a raw table written to disk.
func RecordTableSaved(tableID string) {
	globalManager.tablesSaved.WithLabelValues(tableID).Inc()
}

// RecordTableMissing counts an expected table that was not on the page.
func RecordTableMissing(tableID string) {
	globalManager.tablesMissing.WithLabelValues(tableID).Inc()
}

// RecordFileCleaned counts a cleaned file and the rows the filter removed.
func RecordFileCleaned(rejectedRows int) {
	globalManager.filesCleaned.Inc()
	globalManager.rowsRejected.Add(float64(rejectedRows))
}

// RecordColumnsDropped counts columns removed for a table category.
func RecordColumnsDropped(category string, n int) {
	globalManager.columnsDropped.WithLabelValues(category).Add(float64(n))
}

// RecordPlayerMerged counts a merged file and records its row count.
func RecordPlayerMerged(player string, rows int) {
	globalManager.playersMerged.Inc()
	globalManager.mergedRows.WithLabelValues(player).Set(float64(rows))
}

// RecordMergeMiss counts a player with nothing to merge.
func RecordMergeMiss() {
	globalManager.mergeMisses.Inc()
}

// UpdateCompositeRows sets the number of composite rows last computed.
func UpdateCompositeRows(n int) {
	globalManager.compositeRows.Set(float64(n))
}

// RecordChartRendered counts a written chart.
func RecordChartRendered() {
	globalManager.chartsRendered.Inc()
}

// RecordComparisonSkipped counts a comparison aborted for missing data.
func RecordComparisonSkipped() {
	globalManager.comparisonsSkipped.Inc()
}

// ObserveStage records the wall time of a named stage in seconds.
func ObserveStage(stage string, seconds float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordDiagnostic counts a non-fatal diagnostic.
func RecordDiagnostic(kind string) {
	globalManager.diagnosticsReported.WithLabelValues(kind).Inc()
}

// MarkRunSuccess stamps the completion time of a run.
func MarkRunSuccess(unix int64) {
	globalManager.lastRunSuccessUnix.Set(float64(unix))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the registry in the text exposition format, suitable
// for the node_exporter textfile collector. Parent directories are created.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}
