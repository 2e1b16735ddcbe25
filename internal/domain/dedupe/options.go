package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithCaseFold makes keys differing only by letter case collide.
func WithCaseFold() Option {
	return func(d *inMemoryDeduper) {
		d.caseFold = true
	}
}
