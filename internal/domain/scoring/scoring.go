// Package scoring computes per-category composite scores from grouped stats.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/fbradar/internal/domain/model"
	"github.com/okian/fbradar/pkg/logger"
)

// Option applies a configuration option to the CompositeScorer.
type Option func(*CompositeScorer)

// WithCategories sets the categories scored, in output order.
func WithCategories(categories []model.Category) Option {
	return func(s *CompositeScorer) {
		s.categories = append([]model.Category(nil), categories...)
	}
}

// WithLogger sets the logger used for unresolved column warnings.
func WithLogger(l logger.Logger) Option {
	return func(s *CompositeScorer) {
		if l != nil {
			s.log = l
		}
	}
}

// Frame is the numeric view of the grouped rows a scorer reads.
type Frame interface {
	// Len returns the number of rows.
	Len() int
	// Column returns a numeric column, or false when it does not exist.
	Column(name string) ([]float64, bool)
}

// Scorer computes one score per category for every row of a frame.
type Scorer interface {
	// Score returns scores[row][category], honoring ctx for cancellation.
	Score(ctx context.Context, f Frame) ([][]float64, error)
}

// CompositeScorer standardizes each category's columns over the whole frame
// and averages them row-wise.
type CompositeScorer struct {
	categories []model.Category
	log        logger.Logger
}

// NewCompositeScorer creates a composite scorer with configuration options.
func NewCompositeScorer(opts ...Option) *CompositeScorer {
	s := &CompositeScorer{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories returns the scored categories.
func (s *CompositeScorer) Categories() []model.Category {
	return s.categories
}

// Score computes the composite of every category for every row. A category
// without any resolvable column scores 0.
func (s *CompositeScorer) Score(ctx context.Context, f Frame) ([][]float64, error) {
	n := f.Len()
	out := make([][]float64, n)
	for r := range out {
		out[r] = make([]float64, len(s.categories))
	}

	for c, cat := range s.categories {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}

		used := 0
		for _, name := range cat.Columns {
			col, resolved, ok := Resolve(f, name)
			if !ok {
				s.log.Warn(ctx, "category column not found",
					logger.String("category", cat.Name),
					logger.String("column", name))
				continue
			}
			if resolved != name {
				s.log.Debug(ctx, "category column resolved",
					logger.String("category", cat.Name),
					logger.String("column", name),
					logger.String("resolved", resolved))
			}
			for r, z := range Standardize(col) {
				out[r][c] += z
			}
			used++
		}
		if used == 0 {
			continue
		}
		for r := range out {
			out[r][c] /= float64(used)
		}
	}
	return out, nil
}

// Resolve finds a configured column in f. Names carrying a _x or _y join
// suffix fall back to the plain name, which is what remains when the join
// collapsed identical copies.
func Resolve(f Frame, name string) ([]float64, string, bool) {
	if col, ok := f.Column(name); ok {
		return col, name, true
	}
	if base, ok := BaseName(name); ok {
		if col, ok := f.Column(base); ok {
			return col, base, true
		}
	}
	return nil, "", false
}

// BaseName strips a _x or _y join suffix from name.
func BaseName(name string) (string, bool) {
	for _, sfx := range []string{"_x", "_y"} {
		if base, found := strings.CutSuffix(name, sfx); found && base != "" {
			return base, true
		}
	}
	return "", false
}

// Standardize rescales xs to zero mean and unit population variance. A
// constant column maps to zeros.
func Standardize(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	mean, std := stat.PopMeanStdDev(xs, nil)
	if std == 0 || math.IsNaN(std) {
		return out
	}
	for i, x := range xs {
		out[i] = (x - mean) / std
	}
	return out
}
