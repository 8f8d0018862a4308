package query

import (
	"github.com/hashicorp/go-bexpr"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
)

// Matcher selects rows with a go-bexpr boolean expression such as
//
//	status == "active" and region != "apac"
type Matcher struct {
	src       string
	evaluator *bexpr.Evaluator
}

// NewMatcher compiles a bexpr expression
func NewMatcher(src string) (*Matcher, error) {
	evaluator, err := bexpr.CreateEvaluator(src)
	if err != nil {
		return nil, munge.EvaluationErr("invalid match expression", map[string]any{
			"expression": src,
			"error":      err,
		})
	}
	return &Matcher{src: src, evaluator: evaluator}, nil
}

// Match evaluates the matcher against one row. Null values are seen as
// empty strings.
func (m *Matcher) Match(row *dataset.Row) (bool, error) {
	ok, err := m.evaluator.Evaluate(matchVars(row))
	if err != nil {
		return false, munge.EvaluationErr("cannot evaluate match expression", map[string]any{
			"expression": m.src,
			"error":      err,
		})
	}
	return ok, nil
}

func (m *Matcher) String() string {
	return m.src
}

// ApplyMatch keeps the rows the matcher accepts, in order
func ApplyMatch(ds dataset.Dataset, m *Matcher) (dataset.Dataset, error) {
	if m == nil {
		return ds, nil
	}

	result := make(dataset.Dataset, 0, len(ds))
	for i, row := range ds {
		ok, err := m.Match(row)
		if err != nil {
			return nil, atRow(err, i)
		}
		if ok {
			result = append(result, row)
		}
	}
	return result, nil
}

func matchVars(row *dataset.Row) map[string]any {
	vars := row.Map()
	for k, v := range vars {
		if v == nil {
			vars[k] = ""
		}
	}
	return vars
}
