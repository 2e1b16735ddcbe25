// Package render draws radar charts to PNG files.
package render

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/okian/fbradar/internal/adapters/repository"
)

const (
	gridRings       = 4
	gradientBands   = 64
	polygonAlpha    = 77 // ~0.3
	defaultDPI      = 96
	defaultFileMode = 0o644
)

// Series is one polygon of a chart.
type Series struct {
	Name   string
	Values []float64
	Color  color.Color
}

// Chart describes a radar chart. Values of every series align with Labels.
type Chart struct {
	Title      string
	Labels     []string
	Series     []Series
	Background [2]color.Color // top, bottom
	Footnote   string
}

// Radar renders charts as PNG images.
type Radar struct {
	width  vg.Length
	height vg.Length
	dpi    int
}

// NewRadar creates a renderer producing 10x10 inch images by default.
func NewRadar(opts ...Option) *Radar {
	r := &Radar{width: 10 * vg.Inch, height: 10 * vg.Inch, dpi: defaultDPI}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws c and atomically writes it to path as PNG.
func (r *Radar) Render(ctx context.Context, c Chart, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(c.Labels) == 0 || len(c.Series) == 0 {
		return ErrEmptyChart
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	img := vgimg.NewWith(vgimg.UseWH(r.width, r.height), vgimg.UseDPI(r.dpi))
	dc := draw.New(img)
	r.draw(dc, c)

	return repository.WriteFileAtomic(path, defaultFileMode, func(w io.Writer) error {
		if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	})
}

func (r *Radar) draw(dc draw.Canvas, c Chart) {
	fillGradient(dc, c.Background[0], c.Background[1])

	w := dc.Max.X - dc.Min.X
	h := dc.Max.Y - dc.Min.Y
	center := vg.Point{X: dc.Min.X + w/2, Y: dc.Min.Y + h/2 - h/40}
	radius := vg.Length(math.Min(float64(w), float64(h))) * 0.32

	lo, hi := bounds(c.Series)
	scale := func(v float64) vg.Length {
		return radius * vg.Length((v-lo)/(hi-lo))
	}
	at := func(i int, rr vg.Length) vg.Point {
		theta := 2 * math.Pi * float64(i) / float64(len(c.Labels))
		return vg.Point{
			X: center.X + rr*vg.Length(math.Cos(theta)),
			Y: center.Y + rr*vg.Length(math.Sin(theta)),
		}
	}

	grid := draw.LineStyle{Color: color.NRGBA{R: 200, G: 200, B: 200, A: 110}, Width: vg.Points(0.6)}
	small := textStyle(color.White, 9, draw.XLeft)
	for ring := 1; ring <= gridRings; ring++ {
		rr := radius * vg.Length(ring) / gridRings
		dc.StrokeLines(grid, circle(center, rr))
		v := lo + (hi-lo)*float64(ring)/gridRings
		dc.FillText(small, vg.Point{X: center.X + vg.Points(3), Y: center.Y + rr + vg.Points(5)}, strconv.FormatFloat(v, 'f', 2, 64))
	}

	label := textStyle(color.White, 12, draw.XCenter)
	for i, name := range c.Labels {
		dc.StrokeLines(grid, []vg.Point{center, at(i, radius)})
		dc.FillText(label, at(i, radius+vg.Points(28)), name)
	}

	for _, s := range c.Series {
		pts := make([]vg.Point, 0, len(c.Labels)+1)
		for i := range c.Labels {
			v := lo
			if i < len(s.Values) {
				v = s.Values[i]
			}
			pts = append(pts, at(i, scale(v)))
		}
		pts = append(pts, pts[0])
		dc.FillPolygon(withAlpha(s.Color, polygonAlpha), pts)
		dc.StrokeLines(draw.LineStyle{Color: s.Color, Width: vg.Points(4)}, pts)
	}

	r.legend(dc, c.Series)

	title := textStyle(color.White, 18, draw.XCenter)
	dc.FillText(title, vg.Point{X: center.X, Y: dc.Max.Y - h/20}, c.Title)
	if c.Footnote != "" {
		foot := textStyle(color.NRGBA{R: 200, G: 200, B: 200, A: 255}, 8, draw.XCenter)
		dc.FillText(foot, vg.Point{X: center.X, Y: dc.Min.Y + h/40}, c.Footnote)
	}
}

func (r *Radar) legend(dc draw.Canvas, series []Series) {
	sty := textStyle(color.White, 11, draw.XLeft)
	box := vg.Points(10)
	x := dc.Max.X - (dc.Max.X-dc.Min.X)/5
	y := dc.Max.Y - (dc.Max.Y-dc.Min.Y)/10
	for _, s := range series {
		dc.FillPolygon(s.Color, []vg.Point{
			{X: x, Y: y - box/2}, {X: x + box, Y: y - box/2},
			{X: x + box, Y: y + box/2}, {X: x, Y: y + box/2},
		})
		dc.FillText(sty, vg.Point{X: x + box*1.6, Y: y}, s.Name)
		y -= box * 2
	}
}

// fillGradient paints horizontal bands from top to bottom.
func fillGradient(dc draw.Canvas, top, bottom color.Color) {
	if top == nil {
		top = color.Black
	}
	if bottom == nil {
		bottom = top
	}
	band := (dc.Max.Y - dc.Min.Y) / gradientBands
	for i := 0; i < gradientBands; i++ {
		y1 := dc.Max.Y - band*vg.Length(i)
		y0 := y1 - band - vg.Points(0.5)
		t := float64(i) / float64(gradientBands-1)
		dc.FillPolygon(lerp(top, bottom, t), []vg.Point{
			{X: dc.Min.X, Y: y0}, {X: dc.Max.X, Y: y0},
			{X: dc.Max.X, Y: y1}, {X: dc.Min.X, Y: y1},
		})
	}
}

func bounds(series []Series) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, 1
	}
	if hi-lo < 1e-9 {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.1
	return lo - pad, hi + pad
}

func circle(c vg.Point, r vg.Length) []vg.Point {
	const steps = 90
	pts := make([]vg.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		theta := 2 * math.Pi * float64(i) / steps
		pts = append(pts, vg.Point{X: c.X + r*vg.Length(math.Cos(theta)), Y: c.Y + r*vg.Length(math.Sin(theta))})
	}
	return pts
}

func textStyle(c color.Color, size float64, align draw.XAlignment) draw.TextStyle {
	return draw.TextStyle{
		Color:   c,
		Font:    font.From(plot.DefaultFont, vg.Points(size)),
		XAlign:  align,
		YAlign:  draw.YCenter,
		Handler: plot.DefaultTextHandler,
	}
}

func lerp(a, b color.Color, t float64) color.Color {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	mix := func(x, y uint32) uint8 {
		return uint8((float64(x>>8)*(1-t) + float64(y>>8)*t) + 0.5)
	}
	return color.NRGBA{R: mix(ar, br), G: mix(ag, bg), B: mix(ab, bb), A: 255}
}

func withAlpha(c color.Color, a uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}

// ParseHex parses a #rrggbb color.
func ParseHex(s string) (color.Color, error) {
	h, ok := strings.CutPrefix(s, "#")
	if !ok || len(h) != 6 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
