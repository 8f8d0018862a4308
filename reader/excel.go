package reader

import (
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
)

// ExcelReader reads one worksheet of an xlsx workbook. The first row is the
// header. Cell types reported by the workbook decide the value kind.
type ExcelReader struct {
	opts Options
}

func (r *ExcelReader) Read(path string) (dataset.Dataset, error) {
	return readStream(path, r.opts.Compression, r.Decode)
}

// ReadHeader reads path and also returns the header row of the sheet.
func (r *ExcelReader) ReadHeader(path string) (dataset.Dataset, []string, error) {
	var columns []string
	ds, err := readStream(path, r.opts.Compression, func(in io.Reader) (dataset.Dataset, error) {
		ds, cols, err := r.decode(in)
		columns = cols
		return ds, err
	})
	if err != nil {
		return nil, nil, err
	}
	return ds, columns, nil
}

// Decode reads a workbook from in.
func (r *ExcelReader) Decode(in io.Reader) (dataset.Dataset, error) {
	ds, _, err := r.decode(in)
	return ds, err
}

func (r *ExcelReader) decode(in io.Reader) (dataset.Dataset, []string, error) {
	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, nil, munge.ParseErr("cannot open workbook", map[string]any{"error": err})
	}
	defer func() { _ = f.Close() }()

	sheet, err := r.sheet(f)
	if err != nil {
		return nil, nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, munge.ParseErr("cannot read worksheet", map[string]any{
			"sheet": sheet,
			"error": err,
		})
	}

	ds := dataset.Dataset{}
	if len(rows) == 0 {
		return ds, nil, nil
	}

	columns := normalizeHeader(rows[0])
	for i, cells := range rows[1:] {
		// GetRows is 0-based and the header occupies sheet row 1.
		sheetRow := i + 2

		row := dataset.NewRow()
		for c, col := range columns {
			if c >= len(cells) || cells[c] == "" {
				row.Set(col, dataset.Null())
				continue
			}
			v, err := cellValue(f, sheet, c+1, sheetRow, cells[c])
			if err != nil {
				return nil, nil, err
			}
			row.Set(col, v)
		}
		ds = append(ds, row)
	}

	return ds, columns, nil
}

func (r *ExcelReader) sheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if r.opts.Sheet == "" {
		if len(sheets) == 0 {
			return "", munge.ParseErr("workbook has no worksheets", nil)
		}
		return sheets[0], nil
	}
	if !slices.Contains(sheets, r.opts.Sheet) {
		return "", munge.KeyErr("worksheet not found", map[string]any{
			"sheet":     r.opts.Sheet,
			"available": sheets,
		})
	}
	return r.opts.Sheet, nil
}

// cellValue types one non-empty raw cell. Numeric cells are stored without
// an explicit type attribute, so untyped cells that parse as numbers are
// numbers.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) (dataset.Value, error) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return dataset.Null(), munge.ParseErr("invalid cell reference", map[string]any{"error": err})
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return dataset.Null(), munge.ParseErr("cannot read cell type", map[string]any{
			"cell":  ref,
			"error": err,
		})
	}

	switch typ {
	case excelize.CellTypeBool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return dataset.String(raw), nil
		}
		return dataset.Bool(b), nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if num, err := strconv.ParseFloat(raw, 64); err == nil {
			return dataset.Number(num), nil
		}
		return dataset.String(raw), nil
	default:
		return dataset.String(raw), nil
	}
}
