package query

import (
	"fmt"
	"math"

	"github.com/vegasq/munge/dataset"
)

// Math Functions

// AbsFunc returns the absolute value of a number
type AbsFunc struct{}

func (f *AbsFunc) Name() string  { return "ABS" }
func (f *AbsFunc) MinArity() int { return 1 }
func (f *AbsFunc) MaxArity() int { return 1 }
func (f *AbsFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	num, err := valueToNumber(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("ABS: %w", err)
	}
	return dataset.Number(math.Abs(num)), nil
}

// RoundFunc rounds a number to the specified number of decimal places
type RoundFunc struct{}

func (f *RoundFunc) Name() string  { return "ROUND" }
func (f *RoundFunc) MinArity() int { return 1 }
func (f *RoundFunc) MaxArity() int { return 2 }
func (f *RoundFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	num, err := valueToNumber(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("ROUND: %w", err)
	}

	// Default to 0 decimal places
	decimals := 0.0
	if len(args) == 2 {
		decimals, err = valueToNumber(args[1])
		if err != nil {
			return dataset.Null(), fmt.Errorf("ROUND: decimals argument: %w", err)
		}
	}

	multiplier := math.Pow(10, math.Trunc(decimals))
	return dataset.Number(math.Round(num*multiplier) / multiplier), nil
}

// FloorFunc returns the largest integer less than or equal to a number
type FloorFunc struct{}

func (f *FloorFunc) Name() string  { return "FLOOR" }
func (f *FloorFunc) MinArity() int { return 1 }
func (f *FloorFunc) MaxArity() int { return 1 }
func (f *FloorFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	num, err := valueToNumber(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("FLOOR: %w", err)
	}
	return dataset.Number(math.Floor(num)), nil
}

// CeilFunc returns the smallest integer greater than or equal to a number
type CeilFunc struct{}

func (f *CeilFunc) Name() string  { return "CEIL" }
func (f *CeilFunc) MinArity() int { return 1 }
func (f *CeilFunc) MaxArity() int { return 1 }
func (f *CeilFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	num, err := valueToNumber(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("CEIL: %w", err)
	}
	return dataset.Number(math.Ceil(num)), nil
}

// SqrtFunc returns the square root of a number
type SqrtFunc struct{}

func (f *SqrtFunc) Name() string  { return "SQRT" }
func (f *SqrtFunc) MinArity() int { return 1 }
func (f *SqrtFunc) MaxArity() int { return 1 }
func (f *SqrtFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	num, err := valueToNumber(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("SQRT: %w", err)
	}
	if num < 0 {
		return dataset.Null(), fmt.Errorf("SQRT: cannot take square root of negative number")
	}
	return dataset.Number(math.Sqrt(num)), nil
}

// PowFunc raises a number to a power
type PowFunc struct{}

func (f *PowFunc) Name() string  { return "POW" }
func (f *PowFunc) MinArity() int { return 2 }
func (f *PowFunc) MaxArity() int { return 2 }
func (f *PowFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	base, err := valueToNumber(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("POW: base: %w", err)
	}
	exp, err := valueToNumber(args[1])
	if err != nil {
		return dataset.Null(), fmt.Errorf("POW: exponent: %w", err)
	}
	return dataset.Number(math.Pow(base, exp)), nil
}

// MinFunc returns the minimum value from a list of arguments
type MinFunc struct{}

func (f *MinFunc) Name() string  { return "MIN" }
func (f *MinFunc) MinArity() int { return 1 }
func (f *MinFunc) MaxArity() int { return -1 }
func (f *MinFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	return extreme("MIN", args, func(candidate, best float64) bool { return candidate < best })
}

// MaxFunc returns the maximum value from a list of arguments
type MaxFunc struct{}

func (f *MaxFunc) Name() string  { return "MAX" }
func (f *MaxFunc) MinArity() int { return 1 }
func (f *MaxFunc) MaxArity() int { return -1 }
func (f *MaxFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	return extreme("MAX", args, func(candidate, best float64) bool { return candidate > best })
}

// extreme skips null arguments; all-null input yields null
func extreme(name string, args []dataset.Value, better func(candidate, best float64) bool) (dataset.Value, error) {
	var best float64
	found := false
	for i, arg := range args {
		if arg.IsNull() {
			continue
		}
		num, err := valueToNumber(arg)
		if err != nil {
			return dataset.Null(), fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		if !found || better(num, best) {
			best = num
			found = true
		}
	}
	if !found {
		return dataset.Null(), nil
	}
	return dataset.Number(best), nil
}
