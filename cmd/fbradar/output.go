package main

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	service "github.com/okian/fbradar/internal/app"
	"github.com/okian/fbradar/internal/collector"
	"github.com/okian/fbradar/internal/domain/model"
	"github.com/okian/fbradar/pkg/logger"
)

func closeService(cmd *cobra.Command, svc *service.Service) {
	if err := svc.Close(); err != nil {
		logger.Get().Error(cmd.Context(), "metrics textfile not written", logger.Error(err))
	}
}

func printReport(w io.Writer, rep *collector.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Run " + rep.RunID)
	t.AppendHeader(table.Row{"Player", "Merged file"})
	for _, m := range rep.Merged {
		t.AppendRow(table.Row{m.Player, m.Path})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	printDiagnostics(w, rep.Diagnostics)
}

func printDiagnostics(w io.Writer, diags []model.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	d := table.NewWriter()
	d.SetOutputMirror(w)
	d.AppendHeader(table.Row{"Subject", "Kind", "Detail"})
	for _, diag := range diags {
		d.AppendRow(table.Row{diag.Subject, string(diag.Kind), diag.Err.Error()})
	}
	d.SetStyle(table.StyleRounded)
	d.Render()
}

func printComparison(w io.Writer, res *service.Comparison) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	header := table.Row{"Saison", "Âge", "Équipe", "Joueur"}
	for _, c := range res.Categories {
		header = append(header, c.Name)
	}
	t.AppendHeader(header)
	for _, r := range res.Composites {
		row := table.Row{r.Season, r.Age, r.Team, r.Player}
		for _, s := range r.Scores {
			row = append(row, strconv.FormatFloat(s, 'f', 2, 64))
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	c := table.NewWriter()
	c.SetOutputMirror(w)
	c.AppendHeader(table.Row{"Chart"})
	for _, p := range res.Charts {
		c.AppendRow(table.Row{p})
	}
	if res.Export != "" {
		c.AppendRow(table.Row{res.Export})
	}
	c.SetStyle(table.StyleRounded)
	c.Render()
	printDiagnostics(w, res.Diagnostics)
}
