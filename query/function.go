package query

import (
	"strings"
	"sync"

	"github.com/vegasq/munge/dataset"
)

// Function represents a scalar function that can be evaluated
type Function interface {
	// Name returns the function name (case-insensitive)
	Name() string
	// MinArity returns the minimum number of arguments (-1 for variadic with no minimum)
	MinArity() int
	// MaxArity returns the maximum number of arguments (-1 for unlimited)
	MaxArity() int
	// Evaluate evaluates the function with the given arguments
	Evaluate(args []dataset.Value) (dataset.Value, error)
}

// LazyFunction is implemented by functions that decide which of their
// arguments to evaluate.
type LazyFunction interface {
	Function
	EvaluateLazy(row *dataset.Row, args []Node) (dataset.Value, error)
}

// FunctionRegistry manages function lookup and registration
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry creates a new function registry
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register registers a function
func (r *FunctionRegistry) Register(f Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[strings.ToUpper(f.Name())] = f
}

// RegisterAlias makes f callable under another name
func (r *FunctionRegistry) RegisterAlias(alias string, f Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[strings.ToUpper(alias)] = f
}

// Get retrieves a function by name (case-insensitive)
func (r *FunctionRegistry) Get(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, exists := r.functions[strings.ToUpper(name)]
	return f, exists
}

// globalRegistry is the default function registry
var globalRegistry *FunctionRegistry

func init() {
	globalRegistry = NewFunctionRegistry()

	// Register string functions
	globalRegistry.Register(&UpperFunc{})
	globalRegistry.Register(&LowerFunc{})
	globalRegistry.Register(&ConcatFunc{})
	globalRegistry.Register(&LenFunc{})
	globalRegistry.Register(&TrimFunc{})
	globalRegistry.Register(&SubstrFunc{})
	globalRegistry.Register(&ReplaceFunc{})
	globalRegistry.Register(&ContainsFunc{})
	globalRegistry.Register(&StartsWithFunc{})
	globalRegistry.Register(&EndsWithFunc{})

	// Register math functions
	globalRegistry.Register(&AbsFunc{})
	globalRegistry.Register(&RoundFunc{})
	globalRegistry.Register(&FloorFunc{})
	globalRegistry.Register(&CeilFunc{})
	globalRegistry.Register(&SqrtFunc{})
	globalRegistry.Register(&PowFunc{})
	globalRegistry.Register(&MinFunc{})
	globalRegistry.Register(&MaxFunc{})

	// Register type conversion functions
	globalRegistry.Register(&IntFunc{})
	globalRegistry.Register(&FloatFunc{})
	globalRegistry.RegisterAlias("NUM", &FloatFunc{})
	globalRegistry.Register(&StrFunc{})
	globalRegistry.Register(&BoolFunc{})

	// Register conditional functions
	globalRegistry.Register(&CoalesceFunc{})
	globalRegistry.Register(&IfFunc{})
	globalRegistry.Register(&IsNullFunc{})
}

// GetGlobalRegistry returns the global function registry
func GetGlobalRegistry() *FunctionRegistry {
	return globalRegistry
}

// valueToString renders any non-null value as text
func valueToString(v dataset.Value) (string, error) {
	if v.IsNull() {
		return "", errNullArgument
	}
	return v.Text(), nil
}

// valueToNumber converts numbers and numeric strings
func valueToNumber(v dataset.Value) (float64, error) {
	return v.Float()
}
