package collector

import (
	"maps"

	"github.com/okian/fbradar/internal/domain/cleaning"
	"github.com/okian/fbradar/pkg/logger"
)

// Option applies a configuration option to the Collector.
type Option func(*Collector)

// WithTableIDs sets the page tables to extract, in merge order.
func WithTableIDs(ids ...string) Option {
	return func(c *Collector) {
		if len(ids) > 0 {
			c.tableIDs = append([]string(nil), ids...)
		}
	}
}

// WithKeyColumns sets the merge key.
func WithKeyColumns(cols ...string) Option {
	return func(c *Collector) {
		if len(cols) > 0 {
			c.keys = append([]string(nil), cols...)
		}
	}
}

// WithDropRules sets the columns removed per table category.
func WithDropRules(rules map[string][]string) Option {
	return func(c *Collector) {
		c.dropRules = maps.Clone(rules)
	}
}

// WithCleaner replaces the default cleaner.
func WithCleaner(cl *cleaning.Cleaner) Option {
	return func(c *Collector) {
		if cl != nil {
			c.cleaner = cl
		}
	}
}

// WithLogger sets the collector logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.log = l
		}
	}
}
