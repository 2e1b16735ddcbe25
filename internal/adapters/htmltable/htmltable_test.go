package htmltable_test

import (
	"testing"

	"github.com/okian/fbradar/internal/adapters/htmltable"
	. "github.com/smartystreets/goconvey/convey"
)

const page = `<html><body>
<table id="stats_standard_expanded">
  <thead>
    <tr class="over_header"><th colspan="4"></th><th colspan="2">Temps de jeu</th></tr>
    <tr><th>Saison</th><th>Âge</th><th>Équipe</th><th>Comp</th><th>MJ</th><th>Min</th></tr>
  </thead>
  <tbody>
    <tr><th>2019-2020</th><td>19</td><td>Porto</td><td>1. Primeira Liga</td><td>8</td><td>1,013</td></tr>
    <tr><th>2020-2021</th><td>20</td><td>Wolves</td><td>1. Premier League</td><td>19</td><td></td></tr>
  </tbody>
  <tfoot>
    <tr><th>2 Saisons</th><td></td><td></td><td></td><td>27</td><td>1,600</td></tr>
  </tfoot>
</table>
<div id="all_stats_passing_expanded">
<!--
<table id="stats_passing_expanded">
  <thead><tr><th>Saison</th><th>Cmp</th></tr></thead>
  <tbody><tr><th>2021-2022</th><td>1 204</td></tr></tbody>
</table>
-->
</div>
</body></html>`

func TestExtract(t *testing.T) {
	Convey("Given a stats page", t, func() {
		doc, err := htmltable.Parse([]byte(page))
		So(err, ShouldBeNil)

		Convey("When extracting a visible table with two header rows", func() {
			recs, ok := htmltable.Extract(doc, "stats_standard_expanded")

			Convey("Then both header rows and every body row are returned", func() {
				So(ok, ShouldBeTrue)
				So(len(recs), ShouldEqual, 5)
				So(recs[0], ShouldResemble, []string{"", "", "", "", "Temps de jeu", "Temps de jeu"})
				So(recs[1], ShouldResemble, []string{"Saison", "Âge", "Équipe", "Comp", "MJ", "Min"})
				So(recs[2], ShouldResemble, []string{"2019-2020", "19", "Porto", "1. Primeira Liga", "8", "1,013"})
				So(recs[4][0], ShouldEqual, "2 Saisons")
			})
		})

		Convey("When extracting a table shipped inside a comment", func() {
			recs, ok := htmltable.Extract(doc, "stats_passing_expanded")

			Convey("Then a blank over-header is synthesized", func() {
				So(ok, ShouldBeTrue)
				So(recs[0], ShouldResemble, []string{"", ""})
				So(recs[1], ShouldResemble, []string{"Saison", "Cmp"})
				So(recs[2], ShouldResemble, []string{"2021-2022", "1 204"})
			})
		})

		Convey("When the table does not exist", func() {
			_, ok := htmltable.Extract(doc, "stats_gca_expanded")

			Convey("Then it is reported missing", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}
