package table_test

import (
	"testing"

	"github.com/okian/fbradar/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTable(t *testing.T) {
	Convey("Given a ragged set of rows", t, func() {
		tb := table.New([]string{"Saison", "Buts", "PD"}, [][]string{
			{"2019-2020", "3"},
			{"2020-2021", "4", "5", "extra"},
		})

		Convey("Then rows are fitted to the header", func() {
			So(tb.Rows[0], ShouldResemble, []string{"2019-2020", "3", ""})
			So(tb.Rows[1], ShouldResemble, []string{"2020-2021", "4", "5"})
		})

		Convey("When dropping present and unknown columns", func() {
			dropped := tb.DropColumns("PD", "Nope")

			Convey("Then only present columns go", func() {
				So(dropped, ShouldResemble, []string{"PD"})
				So(tb.Header, ShouldResemble, []string{"Saison", "Buts"})
				So(tb.Rows[1], ShouldResemble, []string{"2020-2021", "4"})
			})
		})

		Convey("When filling absent cells", func() {
			n := tb.FillEmpty("-1")
			So(n, ShouldEqual, 1)
			So(tb.Rows[0][2], ShouldEqual, "-1")
		})

		Convey("When filtering rows", func() {
			removed := tb.Filter(func(r []string) bool { return r[1] == "4" })
			So(removed, ShouldEqual, 1)
			So(tb.Len(), ShouldEqual, 1)
		})

		Convey("When reading a column", func() {
			col, ok := tb.Column("Buts")
			So(ok, ShouldBeTrue)
			So(col, ShouldResemble, []string{"3", "4"})
			_, ok = tb.Column("Min")
			So(ok, ShouldBeFalse)
		})

		Convey("When round-tripping through records", func() {
			back, err := table.FromRecords(tb.Records())
			So(err, ShouldBeNil)
			So(back, ShouldResemble, tb)
		})
	})

	Convey("Given no records", t, func() {
		_, err := table.FromRecords(nil)
		So(err, ShouldEqual, table.ErrNoHeader)
	})
}

func TestDedupeHeader(t *testing.T) {
	Convey("Given repeated column names", t, func() {
		out := table.DedupeHeader([]string{"Tcl", "Att", "Tcl", "Tcl", "Att"})
		So(out, ShouldResemble, []string{"Tcl", "Att", "Tcl.1", "Tcl.2", "Att.1"})
	})

	Convey("Given a suffix that already exists", t, func() {
		out := table.DedupeHeader([]string{"Cmp", "Cmp", "Cmp.1"})
		So(out, ShouldResemble, []string{"Cmp", "Cmp.2", "Cmp.1"})
	})
}

func TestCells(t *testing.T) {
	Convey("Given scraped numeric cells", t, func() {
		v, ok := table.ParseNumber("1,234")
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, 1234)

		v, ok = table.ParseNumber("85.3%")
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, 85.3)

		_, ok = table.ParseNumber("PSG")
		So(ok, ShouldBeFalse)
		_, ok = table.ParseNumber("NaN")
		So(ok, ShouldBeFalse)
		_, ok = table.ParseNumber("")
		So(ok, ShouldBeFalse)
	})

	Convey("Given cells to compare", t, func() {
		So(table.CompareCells("9", "10"), ShouldBeLessThan, 0)
		So(table.CompareCells("PSG", "Milan"), ShouldBeGreaterThan, 0)
		So(table.EqualCells("5", "5.0"), ShouldBeTrue)
		So(table.EqualCells("5", "-1"), ShouldBeFalse)
		So(table.EqualCells("PSG", "PSG"), ShouldBeTrue)
	})
}
