// Package export writes composite scores to an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/okian/fbradar/internal/adapters/repository"
	"github.com/okian/fbradar/internal/domain/model"
)

// SheetName is the worksheet holding the composite rows.
const SheetName = "Composites"

// WriteComposites writes one header row (Saison, Âge, Équipe, Joueur, then
// category names) and one row per composite to path.
func WriteComposites(path string, categories []model.Category, rows []model.CompositeRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Saison", "Âge", "Équipe", "Joueur"}
	for _, c := range categories {
		header = append(header, c.Name)
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}

	for i, r := range rows {
		values := []any{r.Season, r.Age, r.Team, r.Player}
		for _, s := range r.Scores {
			values = append(values, s)
		}
		if err := setRow(f, i+2, values); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	return repository.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		if err := f.Write(w); err != nil {
			return fmt.Errorf("encode xlsx: %w", err)
		}
		return nil
	})
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
