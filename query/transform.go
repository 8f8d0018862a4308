package query

import (
	"strings"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
)

// Assignment stores the value of Expr in column Name
type Assignment struct {
	Name string
	Expr *Expression
}

// ParseAssignment parses "name=expr". Only the first '=' separates the
// name, so the expression may contain comparisons.
func ParseAssignment(s string) (Assignment, error) {
	name, src, found := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" || strings.TrimSpace(src) == "" {
		return Assignment{}, munge.ConfigErr("transform must have the form name=expression", map[string]any{
			"transform": s,
		})
	}
	if err := ValidateColumnName(name); err != nil {
		return Assignment{}, munge.ConfigErr("invalid transform column", map[string]any{
			"transform": s,
			"error":     err,
		})
	}

	expr, err := Compile(src)
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{Name: name, Expr: expr}, nil
}

// ParseAssignments parses each entry with ParseAssignment
func ParseAssignments(specs []string) ([]Assignment, error) {
	assignments := make([]Assignment, 0, len(specs))
	for _, s := range specs {
		a, err := ParseAssignment(s)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func (a Assignment) String() string {
	return a.Name + "=" + a.Expr.Source()
}

// ApplyTransforms runs the assignments over every row, left to right, so
// each expression sees the columns set by the ones before it. Input rows
// are not modified.
func ApplyTransforms(ds dataset.Dataset, assignments []Assignment) (dataset.Dataset, error) {
	if len(assignments) == 0 {
		return ds, nil
	}

	result := make(dataset.Dataset, len(ds))
	for i, row := range ds {
		out := row.Clone()
		for _, a := range assignments {
			v, err := a.Expr.Eval(out)
			if err != nil {
				e := atRow(err, i)
				return nil, withColumn(e, a.Name)
			}
			out.Set(a.Name, v)
		}
		result[i] = out
	}

	return result, nil
}

func withColumn(err error, column string) error {
	e, ok := err.(munge.Err)
	if !ok {
		return err
	}
	e.Data["column"] = column
	return e
}
