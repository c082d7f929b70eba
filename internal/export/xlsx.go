package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"interview-bot/internal/aggregate"
)

const sheetName = "Интервью"

// XLSX writes aggregation rows to a spreadsheet at a fixed path.
type XLSX struct {
	path string
}

func NewXLSX(path string) (*XLSX, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure export dir: %w", err)
	}
	return &XLSX{path: path}, nil
}

func (x *XLSX) Path() string { return x.path }

// Write replaces the file with the header and rows. The workbook is written to
// a temp file in the same directory first so readers never see a partial file.
func (x *XLSX) Write(rows []aggregate.Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := aggregate.Columns()
	if err := setRow(f, 1, toAny(header)); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(f, i+2, r.Values()); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(x.path), ".export-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := f.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, x.path); err != nil {
		return fmt.Errorf("replace %s: %w", x.path, err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
