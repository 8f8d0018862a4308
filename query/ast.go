package query

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vegasq/munge/dataset"
)

// Node is one node of a compiled expression tree.
type Node interface {
	// Eval computes the node's value against a row
	Eval(row *dataset.Row) (dataset.Value, error)
	// String renders the node back to expression syntax
	String() string
}

var (
	// ErrUnknownColumn is returned when an identifier names no column of the row
	ErrUnknownColumn = errors.New("unknown column")

	// ErrDivisionByZero is returned by / and % with a zero divisor
	ErrDivisionByZero = errors.New("division by zero")

	// ErrTypeMismatch is returned when operand kinds do not fit an operator
	ErrTypeMismatch = errors.New("type mismatch")
)

// Literal is a constant value
type Literal struct {
	Value dataset.Value
}

func (l *Literal) Eval(*dataset.Row) (dataset.Value, error) {
	return l.Value, nil
}

func (l *Literal) String() string {
	return l.Value.String()
}

// ColumnRef resolves to the row's value for a column
type ColumnRef struct {
	Name string
}

func (c *ColumnRef) Eval(row *dataset.Row) (dataset.Value, error) {
	v, ok := row.Get(c.Name)
	if !ok {
		return dataset.Null(), fmt.Errorf("%w %q", ErrUnknownColumn, c.Name)
	}
	return v, nil
}

func (c *ColumnRef) String() string {
	return "`" + c.Name + "`"
}

// UnaryExpr is numeric negation or identity
type UnaryExpr struct {
	Operator TokenType
	Operand  Node
}

func (u *UnaryExpr) Eval(row *dataset.Row) (dataset.Value, error) {
	v, err := u.Operand.Eval(row)
	if err != nil {
		return dataset.Null(), err
	}
	n, ok := numeric(v)
	if !ok {
		return dataset.Null(), fmt.Errorf("%w: unary %s needs a number, got %s", ErrTypeMismatch, u.Operator, v.Kind())
	}
	if u.Operator == TokenMinus {
		return dataset.Number(-n), nil
	}
	return dataset.Number(n), nil
}

func (u *UnaryExpr) String() string {
	return u.Operator.String() + u.Operand.String()
}

// NotExpr negates the truthiness of its operand
type NotExpr struct {
	Operand Node
}

func (n *NotExpr) Eval(row *dataset.Row) (dataset.Value, error) {
	v, err := n.Operand.Eval(row)
	if err != nil {
		return dataset.Null(), err
	}
	return dataset.Bool(!v.Truthy()), nil
}

func (n *NotExpr) String() string {
	return "not " + n.Operand.String()
}

// LogicalExpr is a short-circuiting and/or
type LogicalExpr struct {
	Left     Node
	Operator TokenType // TokenAnd or TokenOr
	Right    Node
}

func (l *LogicalExpr) Eval(row *dataset.Row) (dataset.Value, error) {
	left, err := l.Left.Eval(row)
	if err != nil {
		return dataset.Null(), err
	}

	switch l.Operator {
	case TokenAnd:
		if !left.Truthy() {
			return dataset.Bool(false), nil
		}
	case TokenOr:
		if left.Truthy() {
			return dataset.Bool(true), nil
		}
	}

	right, err := l.Right.Eval(row)
	if err != nil {
		return dataset.Null(), err
	}
	return dataset.Bool(right.Truthy()), nil
}

func (l *LogicalExpr) String() string {
	return "(" + l.Left.String() + " " + l.Operator.String() + " " + l.Right.String() + ")"
}

// BinaryExpr is an arithmetic or comparison operation
type BinaryExpr struct {
	Left     Node
	Operator TokenType
	Right    Node
}

func (b *BinaryExpr) Eval(row *dataset.Row) (dataset.Value, error) {
	left, err := b.Left.Eval(row)
	if err != nil {
		return dataset.Null(), err
	}
	right, err := b.Right.Eval(row)
	if err != nil {
		return dataset.Null(), err
	}

	switch b.Operator {
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		ok, err := compare(left, b.Operator, right)
		if err != nil {
			return dataset.Null(), err
		}
		return dataset.Bool(ok), nil
	default:
		return arithmetic(left, b.Operator, right)
	}
}

func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Operator.String() + " " + b.Right.String() + ")"
}

// InExpr tests membership of a value in a literal list
type InExpr struct {
	Value  Node
	List   []Node
	Negate bool
}

func (i *InExpr) Eval(row *dataset.Row) (dataset.Value, error) {
	v, err := i.Value.Eval(row)
	if err != nil {
		return dataset.Null(), err
	}

	found := false
	for _, item := range i.List {
		candidate, err := item.Eval(row)
		if err != nil {
			return dataset.Null(), err
		}
		if valuesEqual(v, candidate) {
			found = true
			break
		}
	}

	if i.Negate {
		return dataset.Bool(!found), nil
	}
	return dataset.Bool(found), nil
}

func (i *InExpr) String() string {
	items := make([]string, len(i.List))
	for n, item := range i.List {
		items[n] = item.String()
	}
	op := " in "
	if i.Negate {
		op = " not in "
	}
	return "(" + i.Value.String() + op + "(" + strings.Join(items, ", ") + "))"
}

// CallExpr invokes a registered function
type CallExpr struct {
	Name     string
	Function Function
	Args     []Node
}

func (c *CallExpr) Eval(row *dataset.Row) (dataset.Value, error) {
	if lazy, ok := c.Function.(LazyFunction); ok {
		return lazy.EvaluateLazy(row, c.Args)
	}

	args := make([]dataset.Value, len(c.Args))
	for i, arg := range c.Args {
		v, err := arg.Eval(row)
		if err != nil {
			return dataset.Null(), err
		}
		args[i] = v
	}
	return c.Function.Evaluate(args)
}

func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		args[i] = arg.String()
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

// numeric reads numbers and strings that parse as numbers. Text formats
// carry every cell as a string, so "30" and 30 are interchangeable next to
// a number.
func numeric(v dataset.Value) (float64, bool) {
	switch v.Kind() {
	case dataset.KindNumber:
		n, _ := v.Num()
		return n, true
	case dataset.KindString:
		n, err := v.Float()
		return n, err == nil
	default:
		return 0, false
	}
}

// valuesEqual compares two strings as text, a number with a number or
// numeric string with a tolerance, and anything else structurally.
func valuesEqual(left, right dataset.Value) bool {
	if left.Kind() == dataset.KindNumber || right.Kind() == dataset.KindNumber {
		ln, lok := numeric(left)
		rn, rok := numeric(right)
		if lok && rok {
			return compareNumbers(ln, TokenEqual, rn)
		}
	}
	return left.Equal(right)
}

// compare evaluates a comparison operator. Equality never fails; ordering
// compares two strings as text and otherwise needs two numeric operands.
func compare(left dataset.Value, operator TokenType, right dataset.Value) (bool, error) {
	switch operator {
	case TokenEqual:
		return valuesEqual(left, right), nil
	case TokenNotEqual:
		return !valuesEqual(left, right), nil
	}

	if ls, ok := left.Str(); ok {
		if rs, ok := right.Str(); ok {
			return compareStrings(ls, operator, rs), nil
		}
	}
	if ln, ok := numeric(left); ok {
		if rn, ok := numeric(right); ok {
			return compareNumbers(ln, operator, rn), nil
		}
	}

	return false, fmt.Errorf("%w: cannot compare %s %s %s", ErrTypeMismatch, left.Kind(), operator, right.Kind())
}

// compareNumbers compares two numbers
func compareNumbers(left float64, operator TokenType, right float64) bool {
	const epsilon = 1e-9 // Use small epsilon for floating point comparison
	switch operator {
	case TokenEqual:
		// Use epsilon scaled by the larger of 1.0 or maxAbs for consistent comparison
		diff := math.Abs(left - right)
		threshold := epsilon * max(1.0, math.Abs(left), math.Abs(right))
		return diff < threshold
	case TokenNotEqual:
		return !compareNumbers(left, TokenEqual, right)
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// compareStrings compares two strings (case-sensitive)
func compareStrings(left string, operator TokenType, right string) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// arithmetic applies + - * / % to numeric operands. + on two strings
// concatenates them.
func arithmetic(left dataset.Value, operator TokenType, right dataset.Value) (dataset.Value, error) {
	if operator == TokenPlus {
		if ls, ok := left.Str(); ok {
			if rs, ok := right.Str(); ok {
				return dataset.String(ls + rs), nil
			}
		}
	}

	ln, lok := numeric(left)
	rn, rok := numeric(right)
	if !lok || !rok {
		return dataset.Null(), fmt.Errorf("%w: cannot apply %s to %s and %s", ErrTypeMismatch, operator, left.Kind(), right.Kind())
	}

	switch operator {
	case TokenPlus:
		return dataset.Number(ln + rn), nil
	case TokenMinus:
		return dataset.Number(ln - rn), nil
	case TokenStar:
		return dataset.Number(ln * rn), nil
	case TokenSlash:
		if rn == 0 {
			return dataset.Null(), ErrDivisionByZero
		}
		return dataset.Number(ln / rn), nil
	case TokenPercent:
		if rn == 0 {
			return dataset.Null(), ErrDivisionByZero
		}
		// result takes the sign of the divisor
		r := math.Mod(ln, rn)
		if r != 0 && (r < 0) != (rn < 0) {
			r += rn
		}
		return dataset.Number(r), nil
	default:
		return dataset.Null(), fmt.Errorf("unsupported operator %s", operator)
	}
}
