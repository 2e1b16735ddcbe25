package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/okian/fbradar/internal/domain/table"
)

const defaultFileMode os.FileMode = 0o644

// CSVStore implements Store on the local filesystem. Writes go to a temp
// file in the same directory and are renamed over the target.
type CSVStore struct {
	dir  string
	mode os.FileMode
}

// NewCSVStore creates dir if needed and returns a store rooted there.
func NewCSVStore(dir string, opts ...Option) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	s := &CSVStore{dir: dir, mode: defaultFileMode}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *CSVStore) Dir() string { return s.dir }

func (s *CSVStore) Path(name string) string { return filepath.Join(s.dir, name) }

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (s *CSVStore) WriteRecords(ctx context.Context, name string, records [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName(name); err != nil {
		return err
	}
	return WriteFileAtomic(s.Path(name), s.mode, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(records); err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		return nil
	})
}

func (s *CSVStore) WriteTable(ctx context.Context, name string, t *table.Table) error {
	return s.WriteRecords(ctx, name, t.Records())
}

func (s *CSVStore) ReadRecords(ctx context.Context, name string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	return ReadRecordsFile(s.Path(name))
}

func (s *CSVStore) ReadTable(ctx context.Context, name string) (*table.Table, error) {
	records, err := s.ReadRecords(ctx, name)
	if err != nil {
		return nil, err
	}
	t, err := table.FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

func (s *CSVStore) List(ctx context.Context, match func(name string) bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if match == nil || match(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s *CSVStore) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName(name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// ReadRecordsFile reads a CSV file whose rows may differ in width.
func ReadRecordsFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

// ReadTableFile reads a CSV file treating the first record as the header.
func ReadTableFile(path string) (*table.Table, error) {
	records, err := ReadRecordsFile(path)
	if err != nil {
		return nil, err
	}
	t, err := table.FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteFileAtomic writes path through a temp file in the same directory and
// renames it into place, so readers never observe a partial file.
func WriteFileAtomic(path string, mode os.FileMode, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
