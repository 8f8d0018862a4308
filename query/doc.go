// Package query implements the row-level stages of a munge run: the
// expression language used by filters and transforms, the bexpr matcher,
// and group-by aggregation.
//
// # Expressions
//
// Expressions are compiled once and evaluated against each row:
//
//	expr, err := query.Compile("age >= 18 and country in ('DE', 'FR')")
//	if err != nil {
//	    return err
//	}
//	adults, err := query.ApplyFilter(ds, expr)
//
// Identifiers name columns of the row; `backquotes` allow names that are
// not plain identifiers. The grammar supports:
//   - number, string, true/false and null literals
//   - arithmetic: + - * / % and unary minus
//   - comparisons: == != < <= > >= and in / not in
//   - logic: and, or, not (also &&, ||, !)
//   - a fixed set of functions: int, float, num, str, bool, abs, round,
//     floor, ceil, sqrt, pow, min, max, len, upper, lower, trim, concat,
//     contains, startswith, endswith, replace, substr, coalesce, if, isnull
//
// There is no assignment, no loops and no access to anything outside the
// current row.
//
// # Transforms
//
// Transforms assign expression results to columns:
//
//	a, err := query.ParseAssignment("total=price * qty")
//	out, err := query.ApplyTransforms(ds, []query.Assignment{a})
//
// # Aggregation
//
// ApplyGroupByAndAggregate reduces one column per group with sum, avg, max
// or min and names the result {function}_{column}.
//
// # Security
//
// Expression input is bounded:
//   - Maximum expression length: 64KiB
//   - Maximum tokens: 1000
//   - Maximum nesting depth: 100
//   - Maximum column name length: 256 characters
package query
