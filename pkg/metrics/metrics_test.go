package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors live on that registry", func() {
				So(manager, ShouldNotBeNil)
				manager.pagesFetched.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_pages_fetched_total")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording collector events", func() {
			before := testutil.ToFloat64(globalManager.tablesSaved.WithLabelValues("stats_passing_expanded"))
			RecordTableSaved("stats_passing_expanded")
			RecordTableMissing("stats_gca_expanded")
			RecordFileCleaned(3)
			RecordColumnsDropped("passing_expanded", 2)
			RecordPlayerMerged("Vitinha", 12)
			RecordMergeMiss()
			RecordFetchFailure("http_status")
			RecordPageFetched(120)
			RecordDiagnostic("table_missing")

			Convey("Then counters move", func() {
				So(testutil.ToFloat64(globalManager.tablesSaved.WithLabelValues("stats_passing_expanded")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.mergedRows.WithLabelValues("Vitinha")), ShouldEqual, 12)
			})
		})

		Convey("When recording comparator events", func() {
			So(func() {
				UpdateCompositeRows(4)
				RecordChartRendered()
				RecordComparisonSkipped()
				ObserveStage("compare", 0.5)
				MarkRunSuccess(1700000000)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.compositeRows), ShouldEqual, 4)
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a textfile destination", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "fbradar.prom")
		RecordChartRendered()

		Convey("When writing the registry", func() {
			err := WriteTextfile(path)

			Convey("Then the file holds the exposition format", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(strings.Contains(string(data), "fbradar_pipeline_charts_rendered_total"), ShouldBeTrue)
			})
		})

		Convey("When the path is empty", func() {
			So(WriteTextfile(""), ShouldBeNil)
		})
	})
}
