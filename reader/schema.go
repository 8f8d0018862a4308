package reader

import (
	"github.com/vegasq/munge/dataset"
)

// SchemaInfo describes one column as observed in a loaded dataset.
type SchemaInfo struct {
	Name     string   `json:"name"`
	Kinds    []string `json:"kinds"`
	Nullable bool     `json:"nullable"`
	Rows     int      `json:"rows"`
}

// ExtractSchemaInfo summarises the columns of ds in order of first
// appearance.
//
// Kinds lists the non-null value kinds seen for the column, in the order
// they were first met. Nullable is set when at least one row holds null for
// the column or lacks it entirely. Rows counts the rows carrying the column.
func ExtractSchemaInfo(ds dataset.Dataset) []SchemaInfo {
	columns := ds.UnionColumns()
	infos := make([]SchemaInfo, len(columns))
	index := make(map[string]int, len(columns))
	seenKinds := make([]map[dataset.Kind]bool, len(columns))

	for i, col := range columns {
		infos[i] = SchemaInfo{Name: col, Kinds: []string{}}
		index[col] = i
		seenKinds[i] = make(map[dataset.Kind]bool)
	}

	for _, row := range ds {
		for _, col := range row.Keys() {
			i := index[col]
			infos[i].Rows++

			v, _ := row.Get(col)
			if v.IsNull() {
				infos[i].Nullable = true
				continue
			}
			if !seenKinds[i][v.Kind()] {
				seenKinds[i][v.Kind()] = true
				infos[i].Kinds = append(infos[i].Kinds, v.Kind().String())
			}
		}
	}

	for i := range infos {
		if infos[i].Rows < len(ds) {
			infos[i].Nullable = true
		}
	}

	return infos
}
