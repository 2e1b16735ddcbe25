// Package repository stores pipeline tables as CSV files in one directory.
package repository

import (
	"context"

	"github.com/okian/fbradar/internal/domain/table"
)

// Store provides read/write access to the tables of an output directory.
// Names are plain file names relative to Dir.
type Store interface {
	// Dir returns the directory the store manages.
	Dir() string
	// Path returns the full path of name.
	Path(name string) string

	// WriteRecords atomically replaces name with records.
	WriteRecords(ctx context.Context, name string, records [][]string) error
	// WriteTable atomically replaces name with t.
	WriteTable(ctx context.Context, name string, t *table.Table) error

	// ReadRecords returns every record of name.
	// Returns ErrNotFound if the file does not exist.
	ReadRecords(ctx context.Context, name string) ([][]string, error)
	// ReadTable reads name treating the first record as the header.
	ReadTable(ctx context.Context, name string) (*table.Table, error)

	// List returns the sorted names accepted by match.
	List(ctx context.Context, match func(name string) bool) ([]string, error)
	// Remove deletes name. Removing a missing file is not an error.
	Remove(ctx context.Context, name string) error
}
