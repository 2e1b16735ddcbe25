package cleaning_test

import (
	"testing"

	"github.com/okian/fbradar/internal/domain/cleaning"
	"github.com/okian/fbradar/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func rawRecords() [][]string {
	return [][]string{
		{"", "", "", "", "Tacles", "Tacles", "Défis", ""},
		{"Saison", "Âge", "Équipe", "Comp", "Tcl", "TclR", "Tcl", "Matchs"},
		{"2019-2020", "19", "Porto", "1. Primeira Liga", "12", "7", "5", "Matchs"},
		{"2020-2021", "20", "Porto", "1. Champions Lg", "", " 3 ", "2", "Matchs"},
		{"Saison", "Âge", "Équipe", "Comp", "Tcl", "TclR", "Tcl", "Matchs"},
		{"3 Saisons", "", "", "", "30", "11", "9", ""},
		{"", "", "", "", "", "", "", ""},
	}
}

func TestClean(t *testing.T) {
	Convey("Given a raw table with two header rows", t, func() {
		c := cleaning.New()
		res, err := c.Clean(rawRecords())
		So(err, ShouldBeNil)

		Convey("Then the second header row is used and deduplicated", func() {
			So(res.Table.Header, ShouldResemble, []string{"Saison", "Âge", "Équipe", "Comp", "Tcl", "TclR", "Tcl.1"})
		})

		Convey("Then every retained row starts with a season label", func() {
			So(res.Table.Len(), ShouldEqual, 2)
			for _, row := range res.Table.Rows {
				So(model.IsSeasonLabel(row[0]), ShouldBeTrue)
			}
			So(res.Rejected, ShouldEqual, 3)
		})

		Convey("Then blank cells are absent and values trimmed", func() {
			So(res.Table.Rows[1][4], ShouldEqual, "")
			So(res.Table.Rows[1][5], ShouldEqual, "3")
		})

		Convey("Then the match column is removed", func() {
			So(res.Dropped, ShouldResemble, []string{"Matchs"})
			So(res.Table.Has("Matchs"), ShouldBeFalse)
		})

		Convey("When cleaning the cleaned records again", func() {
			again, err := c.Clean(res.Table.Records())
			So(err, ShouldBeNil)

			Convey("Then nothing changes", func() {
				So(again.Table, ShouldResemble, res.Table)
				So(again.Rejected, ShouldEqual, 0)
				So(again.Dropped, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a raw table without data rows", t, func() {
		res, err := cleaning.New().Clean([][]string{
			{"", ""},
			{"Saison", "Buts"},
		})
		So(err, ShouldBeNil)
		So(res.Table.Header, ShouldResemble, []string{"Saison", "Buts"})
		So(res.Table.Len(), ShouldEqual, 0)

		again, err := cleaning.New().Clean(res.Table.Records())
		So(err, ShouldBeNil)
		So(again.Table, ShouldResemble, res.Table)
	})

	Convey("Given a custom dropped column list", t, func() {
		c := cleaning.New(cleaning.WithDroppedColumns("TclR", "Absent"))
		res, err := c.Clean(rawRecords())
		So(err, ShouldBeNil)
		So(res.Table.Has("TclR"), ShouldBeFalse)
		So(res.Table.Has("Matchs"), ShouldBeTrue)
	})

	Convey("Given no records", t, func() {
		_, err := cleaning.New().Clean(nil)
		So(err, ShouldNotBeNil)
	})
}
