package cleaning

// Option applies a configuration option to the Cleaner.
type Option func(*Cleaner)

// WithDroppedColumns replaces the columns removed from every cleaned table.
func WithDroppedColumns(names ...string) Option {
	return func(c *Cleaner) {
		c.dropped = append([]string(nil), names...)
	}
}
