// Package export renders snapshot tables into an xlsx workbook, one sheet
// per table, for reviewers who work outside the dashboard.
package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/de-tools/claim-audit/pkg/store/duckdb/snapshot"
)

// Workbook reads every servable table of the snapshot generation and builds
// the workbook in memory. The caller decides whether to save it to disk or
// stream it to an HTTP response.
func Workbook(ctx context.Context, store snapshot.Store) (*excelize.File, error) {
	tables, err := store.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshot tables: %w", err)
	}

	f := excelize.NewFile()
	for _, name := range tables {
		table, err := store.ReadTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("read table %s: %w", name, err)
		}

		sheet := sheetName(name)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}

		header := make([]any, len(table.Columns))
		for i, col := range table.Columns {
			header[i] = col
		}
		if err := setRow(f, sheet, 1, header); err != nil {
			return nil, err
		}
		for i, row := range table.Rows {
			if err := setRow(f, sheet, i+2, row); err != nil {
				return nil, err
			}
		}
	}

	if len(tables) > 0 {
		f.DeleteSheet("Sheet1")
	}
	return f, nil
}

// Export saves the workbook to path.
func Export(ctx context.Context, store snapshot.Store, path string) error {
	f, err := Workbook(ctx, store)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// sheetName fits a table name into the 31-character sheet name limit.
func sheetName(table string) string {
	if len(table) <= 31 {
		return table
	}
	return table[:31]
}
