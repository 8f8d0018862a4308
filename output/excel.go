package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/vegasq/munge/dataset"
)

// DefaultSheet is the worksheet written when no sheet name is given.
const DefaultSheet = "Sheet1"

// ExcelFormatter outputs the dataset as a single-sheet xlsx workbook
type ExcelFormatter struct {
	writer io.Writer
	sheet  string
	header []string
}

// NewExcelFormatter creates a new workbook formatter writing to sheet
func NewExcelFormatter(w io.Writer, sheet string) *ExcelFormatter {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &ExcelFormatter{writer: w, sheet: sheet}
}

// SetOutput sets the output writer
func (e *ExcelFormatter) SetOutput(w io.Writer) {
	e.writer = w
}

// Format writes a header row with the first row's keys followed by one sheet
// row per dataset row. Numbers and booleans are stored as typed cells.
func (e *ExcelFormatter) Format(ds dataset.Dataset) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if e.sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, e.sheet); err != nil {
			return fmt.Errorf("invalid sheet name %q: %w", e.sheet, err)
		}
	}

	columns := columnsOf(ds, e.header)
	if len(columns) > 0 {
		header := make([]interface{}, len(columns))
		for i, col := range columns {
			header[i] = col
		}
		if err := e.setRow(f, 1, header); err != nil {
			return err
		}
	}

	for i, row := range ds {
		values := make([]interface{}, len(columns))
		for c, col := range columns {
			values[c] = cell(row, col).Any()
		}
		if err := e.setRow(f, i+2, values); err != nil {
			return err
		}
	}

	if err := f.Write(e.writer); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *ExcelFormatter) setRow(f *excelize.File, row int, values []interface{}) error {
	ref, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(e.sheet, ref, &values); err != nil {
		return fmt.Errorf("failed to write sheet row %d: %w", row, err)
	}
	return nil
}
