package comparator_test

import (
	"context"
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/fbradar/internal/adapters/render"
	"github.com/okian/fbradar/internal/comparator"
	"github.com/okian/fbradar/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/plot/vg"
)

const vitinhaCSV = `Saison,Âge,Équipe,Comp,Min,Buts,Tcl,Zero,Pays
2017-2018,17,Porto,1. Champions Lg,90,0,1,0,pt
2018-2019,18,Porto,1. Champions Lg,100,1,5,0,pt
2019-2020,19,Porto,1. Champions Lg,200,2,,0,pt
2019-2020,19,Porto,1. Ligue 1,50,1,3,0,pt
2019-2020,19,Porto,1. Primeira Liga,900,9,9,0,pt
`

const verrattiCSV = `Saison,Âge,Équipe,Comp,Min,Buts,Tcl,Zero,Pays
2017-2018,24,PSG,1. Ligue 1,2000,1,40,0,it
2018-2019,25,PSG,1. Ligue 1,300,0,9,0,it
2019-2020,26,PSG,1. Ligue 1,300,1,7,0,it
`

type recordingRenderer struct {
	charts []render.Chart
	paths  []string
}

func (r *recordingRenderer) Render(_ context.Context, c render.Chart, path string) error {
	r.charts = append(r.charts, c)
	r.paths = append(r.paths, path)
	return nil
}

// failingRenderer fails for one chart label and records the others.
type failingRenderer struct {
	recordingRenderer
	failOn string
}

func (r *failingRenderer) Render(ctx context.Context, c render.Chart, path string) error {
	if strings.HasSuffix(c.Title, r.failOn) {
		return errors.New("disk full")
	}
	return r.recordingRenderer.Render(ctx, c, path)
}

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
)

func writeFiles(t *testing.T) (string, []comparator.PlayerFile) {
	t.Helper()
	dir := t.TempDir()
	files := []comparator.PlayerFile{
		{Name: "Vitinha", Path: filepath.Join(dir, "Vitinha_merged_stats.csv")},
		{Name: "Verratti", Path: filepath.Join(dir, "Verratti_merged_stats.csv")},
		{Name: "Ghost", Path: filepath.Join(dir, "Ghost_merged_stats.csv")},
	}
	for i, body := range []string{vitinhaCSV, verrattiCSV} {
		if err := os.WriteFile(files[i].Path, []byte(body), 0o644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return dir, files
}

func newComparator(files []comparator.PlayerFile, r comparator.Renderer, chartDir string) *comparator.Comparator {
	return comparator.New(files, r,
		comparator.WithCompetitions("1. Champions Lg", "1. Ligue 1"),
		comparator.WithStartSeason("2018-2019"),
		comparator.WithExcludeColumns("Saison", "Âge", "Équipe", "Comp", "Min", "Joueur"),
		comparator.WithCategories([]model.Category{
			{Name: "Finition", Label: "Qualité de finition", Columns: []string{"Buts"}},
			{Name: "Défense", Label: "Efforts défensifs", Columns: []string{"Tcl"}},
			{Name: "Neutre", Columns: []string{"Zero"}},
		}),
		comparator.WithChartDir(chartDir),
		comparator.WithPalette(red, blue),
	)
}

func TestComparator_Load(t *testing.T) {
	Convey("Given merged files for two players and one missing file", t, func() {
		dir, files := writeFiles(t)
		c := newComparator(files, &recordingRenderer{}, filepath.Join(dir, "viz_data"))

		g, err := c.Load(context.Background())
		So(err, ShouldBeNil)

		Convey("Then rows are grouped per season, age, team and player in key order", func() {
			So(g.Keys, ShouldResemble, []comparator.GroupKey{
				{Season: "2018-2019", Age: "18", Team: "Porto", Player: "Vitinha"},
				{Season: "2018-2019", Age: "25", Team: "PSG", Player: "Verratti"},
				{Season: "2019-2020", Age: "19", Team: "Porto", Player: "Vitinha"},
				{Season: "2019-2020", Age: "26", Team: "PSG", Player: "Verratti"},
			})
		})

		Convey("Then seasons before the start and other competitions are excluded", func() {
			for _, k := range g.Keys {
				So(k.Season, ShouldNotEqual, "2017-2018")
			}
			buts, ok := g.Column("Buts")
			So(ok, ShouldBeTrue)
			So(buts, ShouldResemble, []float64{1, 0, 3, 1})
		})

		Convey("Then empty cells take the column mean before summing", func() {
			tcl, _ := g.Column("Tcl")
			So(tcl, ShouldResemble, []float64{5, 9, 9, 7})
		})

		Convey("Then excluded and text columns are not numeric columns", func() {
			_, ok := g.Column("Min")
			So(ok, ShouldBeFalse)
			_, ok = g.Column("Pays")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given no readable file", t, func() {
		c := newComparator([]comparator.PlayerFile{{Name: "Ghost", Path: filepath.Join(t.TempDir(), "none.csv")}}, &recordingRenderer{}, t.TempDir())
		_, err := c.Load(context.Background())
		So(errors.Is(err, model.ErrNoComparisonData), ShouldBeTrue)
	})
}

func TestComparator_LoadMixedJoinSuffixes(t *testing.T) {
	Convey("Given one file keeping both join copies and one file where they collapsed", t, func() {
		dir := t.TempDir()
		files := []comparator.PlayerFile{
			{Name: "A", Path: filepath.Join(dir, "A_merged_stats.csv")},
			{Name: "B", Path: filepath.Join(dir, "B_merged_stats.csv")},
		}
		write := func(path, body string) {
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		write(files[0].Path, "Saison,Âge,Équipe,Comp,PrgC_x,PrgC_y\n2019-2020,19,Porto,1. Ligue 1,10,-1\n")
		write(files[1].Path, "Saison,Âge,Équipe,Comp,PrgC\n2019-2020,26,PSG,1. Ligue 1,500\n")

		c := comparator.New(files, &recordingRenderer{},
			comparator.WithCompetitions("1. Ligue 1"),
			comparator.WithStartSeason("2018-2019"),
			comparator.WithCategories([]model.Category{
				{Name: "Création", Columns: []string{"PrgC_x", "PrgC_y"}},
			}),
			comparator.WithChartDir(filepath.Join(dir, "viz_data")),
		)

		g, err := c.Load(context.Background())
		So(err, ShouldBeNil)

		Convey("Then the collapsed file fills both copies from its own column", func() {
			x, ok := g.Column("PrgC_x")
			So(ok, ShouldBeTrue)
			So(x, ShouldResemble, []float64{10, 500})
			y, _ := g.Column("PrgC_y")
			So(y, ShouldResemble, []float64{-1, 500})
		})

		Convey("Then the collapsed player's values drive its score", func() {
			rows, err := c.Composites(context.Background())
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(rows[1].Player, ShouldEqual, "B")
			So(rows[1].Scores[0], ShouldAlmostEqual, 1, 1e-9)
			So(rows[0].Scores[0], ShouldAlmostEqual, -1, 1e-9)
		})
	})
}

func TestComparator_Composites(t *testing.T) {
	Convey("Given grouped data", t, func() {
		dir, files := writeFiles(t)
		c := newComparator(files, &recordingRenderer{}, filepath.Join(dir, "viz_data"))

		rows, err := c.Composites(context.Background())
		So(err, ShouldBeNil)
		So(len(rows), ShouldEqual, 4)

		Convey("Then a zero-variance category scores zero, not NaN", func() {
			for _, r := range rows {
				So(math.IsNaN(r.Scores[2]), ShouldBeFalse)
				So(r.Scores[2], ShouldEqual, 0)
			}
		})

		Convey("Then scores are standardized over all groups", func() {
			sum := 0.0
			for _, r := range rows {
				sum += r.Scores[0]
			}
			So(sum, ShouldAlmostEqual, 0, 1e-9)
			So(rows[2].Scores[0], ShouldBeGreaterThan, rows[1].Scores[0])
		})
	})
}

func TestComparator_Plot(t *testing.T) {
	Convey("Given a comparator writing real charts", t, func() {
		dir, files := writeFiles(t)
		chartDir := filepath.Join(dir, "viz_data")
		radar := render.NewRadar(render.WithSize(2*vg.Inch, 2*vg.Inch), render.WithDPI(30))
		c := newComparator(files, radar, chartDir)
		ctx := context.Background()

		Convey("When plotting every season", func() {
			paths, diags, err := c.PlotAllSeasons(ctx)
			So(err, ShouldBeNil)
			So(diags, ShouldBeEmpty)

			Convey("Then exactly one chart per season is written", func() {
				So(paths, ShouldResemble, []string{
					filepath.Join(chartDir, "comparaison_joueurs_saison_2018-2019.png"),
					filepath.Join(chartDir, "comparaison_joueurs_saison_2019-2020.png"),
				})
				entries, err := os.ReadDir(chartDir)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
			})
		})

		Convey("When one side of a comparison has no data", func() {
			path, err := c.PlotBetweenSeasons(ctx,
				model.PlayerSeason{Player: "Vitinha", Season: "2019-2020"},
				model.PlayerSeason{Player: "Verratti", Season: "2099-2100"})

			Convey("Then the condition is reported and no chart is written", func() {
				So(errors.Is(err, model.ErrNoComparisonData), ShouldBeTrue)
				So(path, ShouldBeEmpty)
				_, statErr := os.Stat(chartDir)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When both sides exist", func() {
			path, err := c.PlotBetweenSeasons(ctx,
				model.PlayerSeason{Player: "Vitinha", Season: "2019-2020"},
				model.PlayerSeason{Player: "Verratti", Season: "2018-2019"})

			Convey("Then one chart with a combined label is written", func() {
				So(err, ShouldBeNil)
				So(filepath.Base(path), ShouldEqual, "comparaison_joueurs_saison_2019-2020 vs 2018-2019.png")
				_, statErr := os.Stat(path)
				So(statErr, ShouldBeNil)
			})
		})
	})

	Convey("Given a recording renderer", t, func() {
		dir, files := writeFiles(t)
		rec := &recordingRenderer{}
		c := newComparator(files, rec, filepath.Join(dir, "viz_data"))

		_, _, err := c.PlotAllSeasons(context.Background())
		So(err, ShouldBeNil)

		Convey("Then players keep their palette color by position", func() {
			So(len(rec.charts), ShouldEqual, 2)
			chart := rec.charts[0]
			So(chart.Title, ShouldEqual, "Comparaison des joueurs - Saison 2018-2019")
			So(chart.Labels, ShouldResemble, []string{"Qualité de finition", "Efforts défensifs", "Neutre"})
			So(len(chart.Series), ShouldEqual, 2)
			for _, s := range chart.Series {
				if s.Name == "Vitinha" {
					So(s.Color, ShouldResemble, red)
				} else {
					So(s.Color, ShouldResemble, blue)
				}
			}
		})

		Convey("Then a cross-season chart names series by season", func() {
			_, err := c.PlotBetweenSeasons(context.Background(),
				model.PlayerSeason{Player: "Vitinha", Season: "2019-2020"},
				model.PlayerSeason{Player: "Vitinha", Season: "2018-2019"})
			So(err, ShouldBeNil)
			last := rec.charts[len(rec.charts)-1]
			So(strings.HasSuffix(last.Series[0].Name, "2019-2020"), ShouldBeTrue)
			So(last.Series[1].Color, ShouldResemble, red)
		})
	})
}

func TestComparator_PlotAllSeasonsContinues(t *testing.T) {
	Convey("Given a renderer that fails for the first season", t, func() {
		dir, files := writeFiles(t)
		rec := &failingRenderer{failOn: "2018-2019"}
		c := newComparator(files, rec, filepath.Join(dir, "viz_data"))

		paths, diags, err := c.PlotAllSeasons(context.Background())

		Convey("Then the later season is still plotted", func() {
			So(err, ShouldBeNil)
			So(len(paths), ShouldEqual, 1)
			So(filepath.Base(paths[0]), ShouldEqual, "comparaison_joueurs_saison_2019-2020.png")
			So(len(rec.charts), ShouldEqual, 1)
		})

		Convey("Then the failed season is reported", func() {
			So(len(diags), ShouldEqual, 1)
			So(diags[0].Subject, ShouldEqual, "2018-2019")
			So(diags[0].Kind, ShouldEqual, model.KindIO)
			So(diags[0].Err.Error(), ShouldContainSubstring, "disk full")
		})
	})
}
