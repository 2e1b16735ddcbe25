package render

import "gonum.org/v1/plot/vg"

// Option applies a configuration option to the Radar.
type Option func(*Radar)

// WithSize sets the image size.
func WithSize(width, height vg.Length) Option {
	return func(r *Radar) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithDPI sets the raster resolution.
func WithDPI(dpi int) Option {
	return func(r *Radar) {
		if dpi > 0 {
			r.dpi = dpi
		}
	}
}
