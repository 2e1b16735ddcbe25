package comparator

import (
	"image/color"

	"github.com/okian/fbradar/internal/domain/model"
	"github.com/okian/fbradar/pkg/logger"
)

// Option applies a configuration option to the Comparator.
type Option func(*Comparator)

// WithCompetitions keeps only rows of these competitions. Empty keeps all.
func WithCompetitions(comps ...string) Option {
	return func(c *Comparator) {
		c.competitions = append([]string(nil), comps...)
	}
}

// WithStartSeason keeps seasons at or after label.
func WithStartSeason(label string) Option {
	return func(c *Comparator) {
		c.startSeason = label
	}
}

// WithExcludeColumns drops columns before grouping.
func WithExcludeColumns(cols ...string) Option {
	return func(c *Comparator) {
		c.exclude = append([]string(nil), cols...)
	}
}

// WithCategories sets the scored categories, clockwise on the chart.
func WithCategories(cats []model.Category) Option {
	return func(c *Comparator) {
		c.categories = append([]model.Category(nil), cats...)
	}
}

// WithChartDir sets the directory charts are written to.
func WithChartDir(dir string) Option {
	return func(c *Comparator) {
		if dir != "" {
			c.chartDir = dir
		}
	}
}

// WithBackground sets the top and bottom chart gradient colors.
func WithBackground(top, bottom color.Color) Option {
	return func(c *Comparator) {
		c.background = [2]color.Color{top, bottom}
	}
}

// WithPalette assigns colors by configured player position. Players past
// the end share the last color.
func WithPalette(colors ...color.Color) Option {
	return func(c *Comparator) {
		if len(colors) > 0 {
			c.palette = append([]color.Color(nil), colors...)
		}
	}
}

// WithLogger sets the comparator logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Comparator) {
		if l != nil {
			c.log = l
		}
	}
}
