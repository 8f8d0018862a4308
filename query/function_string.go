package query

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vegasq/munge/dataset"
)

var errNullArgument = errors.New("argument is null")

// String Functions

// UpperFunc converts a string to uppercase
type UpperFunc struct{}

func (f *UpperFunc) Name() string  { return "UPPER" }
func (f *UpperFunc) MinArity() int { return 1 }
func (f *UpperFunc) MaxArity() int { return 1 }
func (f *UpperFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("UPPER: %w", err)
	}
	return dataset.String(strings.ToUpper(str)), nil
}

// LowerFunc converts a string to lowercase
type LowerFunc struct{}

func (f *LowerFunc) Name() string  { return "LOWER" }
func (f *LowerFunc) MinArity() int { return 1 }
func (f *LowerFunc) MaxArity() int { return 1 }
func (f *LowerFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("LOWER: %w", err)
	}
	return dataset.String(strings.ToLower(str)), nil
}

// ConcatFunc concatenates its arguments; nulls contribute nothing
type ConcatFunc struct{}

func (f *ConcatFunc) Name() string  { return "CONCAT" }
func (f *ConcatFunc) MinArity() int { return 1 }
func (f *ConcatFunc) MaxArity() int { return -1 }
func (f *ConcatFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(arg.Text())
	}
	return dataset.String(b.String()), nil
}

// LenFunc returns the number of characters in a string
type LenFunc struct{}

func (f *LenFunc) Name() string  { return "LEN" }
func (f *LenFunc) MinArity() int { return 1 }
func (f *LenFunc) MaxArity() int { return 1 }
func (f *LenFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("LEN: %w", err)
	}
	return dataset.Number(float64(utf8.RuneCountInString(str))), nil
}

// TrimFunc removes leading and trailing whitespace
type TrimFunc struct{}

func (f *TrimFunc) Name() string  { return "TRIM" }
func (f *TrimFunc) MinArity() int { return 1 }
func (f *TrimFunc) MaxArity() int { return 1 }
func (f *TrimFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("TRIM: %w", err)
	}
	return dataset.String(strings.TrimSpace(str)), nil
}

// SubstrFunc extracts a substring. start is 1-based; a missing length runs to
// the end of the string.
type SubstrFunc struct{}

func (f *SubstrFunc) Name() string  { return "SUBSTR" }
func (f *SubstrFunc) MinArity() int { return 2 }
func (f *SubstrFunc) MaxArity() int { return 3 }
func (f *SubstrFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("SUBSTR: %w", err)
	}

	start, err := valueToNumber(args[1])
	if err != nil {
		return dataset.Null(), fmt.Errorf("SUBSTR: start: %w", err)
	}

	runes := []rune(str)
	begin := int(start) - 1
	if begin < 0 {
		begin = 0
	}
	if begin >= len(runes) {
		return dataset.String(""), nil
	}

	end := len(runes)
	if len(args) == 3 {
		length, err := valueToNumber(args[2])
		if err != nil {
			return dataset.Null(), fmt.Errorf("SUBSTR: length: %w", err)
		}
		if length < 0 {
			return dataset.Null(), fmt.Errorf("SUBSTR: length must be non-negative")
		}
		if begin+int(length) < end {
			end = begin + int(length)
		}
	}

	return dataset.String(string(runes[begin:end])), nil
}

// ReplaceFunc replaces every occurrence of a substring
type ReplaceFunc struct{}

func (f *ReplaceFunc) Name() string  { return "REPLACE" }
func (f *ReplaceFunc) MinArity() int { return 3 }
func (f *ReplaceFunc) MaxArity() int { return 3 }
func (f *ReplaceFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("REPLACE: %w", err)
	}
	old, err := valueToString(args[1])
	if err != nil {
		return dataset.Null(), fmt.Errorf("REPLACE: search: %w", err)
	}
	repl, err := valueToString(args[2])
	if err != nil {
		return dataset.Null(), fmt.Errorf("REPLACE: replacement: %w", err)
	}
	return dataset.String(strings.ReplaceAll(str, old, repl)), nil
}

// ContainsFunc reports whether a string contains a substring
type ContainsFunc struct{}

func (f *ContainsFunc) Name() string  { return "CONTAINS" }
func (f *ContainsFunc) MinArity() int { return 2 }
func (f *ContainsFunc) MaxArity() int { return 2 }
func (f *ContainsFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	return stringPredicate("CONTAINS", args, strings.Contains)
}

// StartsWithFunc reports whether a string starts with a prefix
type StartsWithFunc struct{}

func (f *StartsWithFunc) Name() string  { return "STARTSWITH" }
func (f *StartsWithFunc) MinArity() int { return 2 }
func (f *StartsWithFunc) MaxArity() int { return 2 }
func (f *StartsWithFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	return stringPredicate("STARTSWITH", args, strings.HasPrefix)
}

// EndsWithFunc reports whether a string ends with a suffix
type EndsWithFunc struct{}

func (f *EndsWithFunc) Name() string  { return "ENDSWITH" }
func (f *EndsWithFunc) MinArity() int { return 2 }
func (f *EndsWithFunc) MaxArity() int { return 2 }
func (f *EndsWithFunc) Evaluate(args []dataset.Value) (dataset.Value, error) {
	return stringPredicate("ENDSWITH", args, strings.HasSuffix)
}

func stringPredicate(name string, args []dataset.Value, pred func(s, sub string) bool) (dataset.Value, error) {
	str, err := valueToString(args[0])
	if err != nil {
		return dataset.Null(), fmt.Errorf("%s: %w", name, err)
	}
	sub, err := valueToString(args[1])
	if err != nil {
		return dataset.Null(), fmt.Errorf("%s: %w", name, err)
	}
	return dataset.Bool(pred(str, sub)), nil
}
