package query

import (
	"errors"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
)

// Expression is a compiled row expression
type Expression struct {
	src  string
	root Node
}

// Compile parses src into an Expression. Syntax errors and limit violations
// are reported as EvaluationErr carrying the source and, when known, the
// byte offset of the problem.
func Compile(src string) (*Expression, error) {
	root, err := Parse(src)
	if err != nil {
		data := map[string]any{
			"expression": src,
			"error":      err,
		}
		var syntaxErr *SyntaxError
		if errors.As(err, &syntaxErr) {
			data["position"] = syntaxErr.Pos
		}
		return nil, munge.EvaluationErr("invalid expression", data)
	}
	return &Expression{src: src, root: root}, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(src string) *Expression {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Eval computes the expression against row
func (e *Expression) Eval(row *dataset.Row) (dataset.Value, error) {
	v, err := e.root.Eval(row)
	if err != nil {
		return dataset.Null(), munge.EvaluationErr("cannot evaluate expression", map[string]any{
			"expression": e.src,
			"error":      err,
		})
	}
	return v, nil
}

// Match reports the truthiness of the expression's value
func (e *Expression) Match(row *dataset.Row) (bool, error) {
	v, err := e.Eval(row)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

// Source returns the text the expression was compiled from
func (e *Expression) Source() string {
	return e.src
}

// String renders the parsed tree fully parenthesised
func (e *Expression) String() string {
	return e.root.String()
}

// atRow adds the row index to an Err
func atRow(err error, index int) error {
	var e munge.Err
	if !errors.As(err, &e) {
		return munge.EvaluationErr("cannot evaluate expression", map[string]any{
			"error": err,
			"row":   index,
		})
	}

	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data["row"] = index
	e.Data = data
	return e
}
