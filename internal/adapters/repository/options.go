package repository

import "os"

// Option applies a configuration option to the CSVStore.
type Option func(*CSVStore)

// WithFileMode sets the permission bits of written files.
func WithFileMode(mode os.FileMode) Option {
	return func(s *CSVStore) {
		if mode != 0 {
			s.mode = mode
		}
	}
}
