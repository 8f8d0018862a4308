package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vegasq/munge/dataset"
)

// Type Conversion Functions

// IntFunc truncates a number (or numeric string) toward zero
type IntFunc struct{}

func (f *IntFunc) Name() string  { return "INT" }
func (f *IntFunc) MinArity() int { return 1 }
func (f *IntFunc) MaxArity() int { return 1 }
func (f *IntFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	if b, ok := args[0].Boolean(); ok {
		return dataset.Number(boolToNumber(b)), nil
	}
	num, err := valueToNumber(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("INT: %w", err)
	}
	return dataset.Number(math.Trunc(num)), nil
}

// FloatFunc converts to a number
type FloatFunc struct{}

func (f *FloatFunc) Name() string  { return "FLOAT" }
func (f *FloatFunc) MinArity() int { return 1 }
func (f *FloatFunc) MaxArity() int { return 1 }
func (f *FloatFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	if b, ok := args[0].Boolean(); ok {
		return dataset.Number(boolToNumber(b)), nil
	}
	num, err := valueToNumber(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("FLOAT: %w", err)
	}
	return dataset.Number(num), nil
}

func boolToNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// StrFunc converts to a string; null becomes the empty string
type StrFunc struct{}

func (f *StrFunc) Name() string  { return "STR" }
func (f *StrFunc) MinArity() int { return 1 }
func (f *StrFunc) MaxArity() int { return 1 }
func (f *StrFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	return dataset.String(args[0].Text()), nil
}

// BoolFunc converts to a boolean. Strings spelling a boolean ("true", "0",
// "F", ...) are parsed; other values use truthiness.
type BoolFunc struct{}

func (f *BoolFunc) Name() string  { return "BOOL" }
func (f *BoolFunc) MinArity() int { return 1 }
func (f *BoolFunc) MaxArity() int { return 1 }
func (f *BoolFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	if s, ok := args[0].Str(); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return dataset.Bool(b), nil
		}
	}
	return dataset.Bool(args[0].Truthy()), nil
}

// Conditional Functions

// CoalesceFunc returns the first non-null argument
type CoalesceFunc struct{}

func (f *CoalesceFunc) Name() string  { return "COALESCE" }
func (f *CoalesceFunc) MinArity() int { return 1 }
func (f *CoalesceFunc) MaxArity() int { return -1 }
func (f *CoalesceFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	for _, arg := range args {
		if !arg.IsNull() {
			return arg, nil
		}
	}
	return dataset.Null(), nil
}

// EvaluateLazy stops at the first non-null argument
func (f *CoalesceFunc) EvaluateLazy(row *dataset.Row, args []Node) (dataset.Value, error) {
	for _, arg := range args {
		v, err := arg.Eval(row)
		if err != nil {
			return dataset.Null(), err
		}
		if !v.IsNull() {
			return v, nil
		}
	}
	return dataset.Null(), nil
}

// IfFunc returns its second argument when the first is truthy, otherwise
// its third
type IfFunc struct{}

func (f *IfFunc) Name() string  { return "IF" }
func (f *IfFunc) MinArity() int { return 3 }
func (f *IfFunc) MaxArity() int { return 3 }
func (f *IfFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	if args[0].Truthy() {
		return args[1], nil
	}
	return args[2], nil
}

// EvaluateLazy only evaluates the branch that is taken
func (f *IfFunc) EvaluateLazy(row *dataset.Row, args []Node) (dataset.Value, error) {
	cond, err := args[0].Eval(row)
	if err != nil {
		return dataset.Null(), err
	}
	if cond.Truthy() {
		return args[1].Eval(row)
	}
	return args[2].Eval(row)
}

// IsNullFunc reports whether its argument is null
type IsNullFunc struct{}

func (f *IsNullFunc) Name() string  { return "ISNULL" }
func (f *IsNullFunc) MinArity() int { return 1 }
func (f *IsNullFunc) MaxArity() int { return 1 }
func (f *IsNullFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	return dataset.Bool(args[0].IsNull()), nil
}
