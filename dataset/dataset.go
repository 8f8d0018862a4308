package dataset

// Dataset is the ordered collection of rows flowing through the pipeline.
type Dataset []*Row

// Columns returns the first row's keys, which fixes the field order for
// formats with a header. An empty dataset has no columns.
func (d Dataset) Columns() []string {
	if len(d) == 0 {
		return []string{}
	}
	cols := make([]string, len(d[0].Keys()))
	copy(cols, d[0].Keys())
	return cols
}

// UnionColumns returns every key that appears in any row, in order of first
// appearance.
func (d Dataset) UnionColumns() []string {
	seen := make(map[string]bool)
	cols := []string{}
	for _, row := range d {
		for _, k := range row.Keys() {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

// Maps returns every row as a plain map of native scalars.
func (d Dataset) Maps() []map[string]any {
	out := make([]map[string]any, len(d))
	for i, row := range d {
		out[i] = row.Map()
	}
	return out
}
