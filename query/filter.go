package query

import (
	"github.com/vegasq/munge/dataset"
)

// ApplyFilter keeps the rows for which expr is truthy. Row order is kept and
// the rows are returned unmodified. The first evaluation error aborts the
// whole filter.
func ApplyFilter(ds dataset.Dataset, expr *Expression) (dataset.Dataset, error) {
	if expr == nil {
		return ds, nil
	}

	result := make(dataset.Dataset, 0, len(ds))
	for i, row := range ds {
		ok, err := expr.Match(row)
		if err != nil {
			return nil, atRow(err, i)
		}
		if ok {
			result = append(result, row)
		}
	}

	return result, nil
}
