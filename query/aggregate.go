package query

import (
	"strings"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
)

// AggFunc is a reduction applied to the values of one column per group
type AggFunc string

const (
	AggSum AggFunc = "sum"
	AggAvg AggFunc = "avg"
	AggMax AggFunc = "max"
	AggMin AggFunc = "min"
)

// AggFuncs lists the supported reductions
var AggFuncs = []AggFunc{AggSum, AggAvg, AggMax, AggMin}

// ParseAggFunc parses a reduction name (case-insensitive)
func ParseAggFunc(s string) (AggFunc, error) {
	name := AggFunc(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range AggFuncs {
		if f == name {
			return f, nil
		}
	}
	return "", munge.ConfigErr("unsupported aggregation function", map[string]any{
		"function":  s,
		"supported": AggFuncs,
	})
}

// reduce folds the values collected for one group
func (f AggFunc) reduce(values []float64) float64 {
	result := values[0]
	switch f {
	case AggSum, AggAvg:
		for _, v := range values[1:] {
			result += v
		}
		if f == AggAvg {
			result /= float64(len(values))
		}
	case AggMax:
		for _, v := range values[1:] {
			if v > result {
				result = v
			}
		}
	case AggMin:
		for _, v := range values[1:] {
			if v < result {
				result = v
			}
		}
	}
	return result
}

// AggregateSpec describes a group-by with a single aggregation
type AggregateSpec struct {
	GroupBy  []string
	Column   string
	Function AggFunc
}

// OutputColumn is the name of the aggregated column, {function}_{column}
func (s AggregateSpec) OutputColumn() string {
	return string(s.Function) + "_" + s.Column
}

// Validate checks that the spec is complete
func (s AggregateSpec) Validate() error {
	if len(s.GroupBy) == 0 {
		return munge.ConfigErr("aggregation needs at least one group-by column", nil)
	}
	for _, col := range s.GroupBy {
		if strings.TrimSpace(col) == "" {
			return munge.ConfigErr("group-by column name is empty", map[string]any{"group_by": s.GroupBy})
		}
	}
	if s.Column == "" {
		return munge.ConfigErr("aggregation column is empty", nil)
	}
	if _, err := ParseAggFunc(string(s.Function)); err != nil {
		return err
	}
	return nil
}

// Group holds the rows sharing one group key
type Group struct {
	Key    string
	Values []dataset.Value
	Nums   []float64
}

// ApplyGroupByAndAggregate groups ds by spec.GroupBy and reduces
// spec.Column in each group. Output rows carry the group-by columns followed
// by the aggregated column, in the order the groups first appear.
func ApplyGroupByAndAggregate(ds dataset.Dataset, spec AggregateSpec) (dataset.Dataset, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	groups := make(map[string]*Group)
	var order []*Group

	for i, row := range ds {
		key, groupValues, err := computeGroupKey(row, spec.GroupBy)
		if err != nil {
			return nil, atRow(err, i)
		}

		raw, ok := row.Get(spec.Column)
		if !ok {
			return nil, munge.KeyErr("aggregation column not found", map[string]any{
				"column": spec.Column,
				"row":    i,
			})
		}
		num, err := raw.Float()
		if err != nil {
			return nil, munge.EvaluationErr("aggregation value is not a number", map[string]any{
				"column": spec.Column,
				"row":    i,
				"error":  err,
			})
		}

		// Add value to group
		group, exists := groups[key]
		if !exists {
			group = &Group{Key: key, Values: groupValues}
			groups[key] = group
			order = append(order, group)
		}
		group.Nums = append(group.Nums, num)
	}

	result := make(dataset.Dataset, 0, len(order))
	for _, group := range order {
		row := dataset.NewRow()
		for j, col := range spec.GroupBy {
			row.Set(col, group.Values[j])
		}
		row.Set(spec.OutputColumn(), dataset.Number(spec.Function.reduce(group.Nums)))
		result = append(result, row)
	}

	return result, nil
}

// computeGroupKey computes a key for a group based on the group-by columns.
// Values of different kinds never share a key.
func computeGroupKey(row *dataset.Row, groupByColumns []string) (string, []dataset.Value, error) {
	var keyBuilder strings.Builder
	groupValues := make([]dataset.Value, 0, len(groupByColumns))

	for i, col := range groupByColumns {
		value, exists := row.Get(col)
		if !exists {
			return "", nil, munge.KeyErr("group-by column not found", map[string]any{
				"column": col,
			})
		}

		if i > 0 {
			keyBuilder.WriteString("\x00||\x00") // Use unlikely separator to avoid collisions
		}
		keyBuilder.WriteString(value.Kind().String())
		keyBuilder.WriteString("\x00:\x00")
		keyBuilder.WriteString(value.Text())
		groupValues = append(groupValues, value)
	}

	return keyBuilder.String(), groupValues, nil
}
