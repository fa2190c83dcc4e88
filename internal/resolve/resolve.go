// Package resolve evaluates column definitions and row predicates written as
// expression strings against a DataFrame.
//
// Definitions in one request may reference each other in any order. They are
// evaluated round-robin: a definition whose names are not bound yet goes to
// the back of the queue, and the request fails once a full pass over the
// queue makes no progress.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/tidyframe/internal/dataframe"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/parse"
)

// Definition names a column and the expression that computes it
type Definition struct {
	Name string
	Expr string
}

func (d Definition) String() string {
	return fmt.Sprintf("%s = %s", d.Name, d.Expr)
}

// Options configures a resolution call
type Options struct {
	// Op is the verb name reported in errors
	Op string
	// MaxDepth limits expression nesting; zero means parse.DefaultMaxDepth
	MaxDepth int
}

func (o Options) op(fallback string) string {
	if o.Op == "" {
		return fallback
	}
	return o.Op
}

// Resolve returns df with one column per definition. A definition whose name
// matches an existing column replaces it in place; other columns are appended
// in request order. Each column is evaluated against the bindings as they
// stood when it resolved. Nothing is returned on failure.
func Resolve(df *dataframe.DataFrame, defs []Definition, opts Options) (*dataframe.DataFrame, error) {
	op := opts.op("Create")

	results, err := evaluateDefinitions(df, defs, opts.MaxDepth, op)
	if err != nil {
		return nil, err
	}
	defer releaseArrays(results)

	current := df.Drop()
	for i, def := range defs {
		next, err := current.WithArray(def.Name, results[i])
		current.Release()
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// Transmute resolves defs like Resolve and keeps only the defined columns, in
// request order.
func Transmute(df *dataframe.DataFrame, defs []Definition, opts Options) (*dataframe.DataFrame, error) {
	if opts.Op == "" {
		opts.Op = "Transmute"
	}
	resolved, err := Resolve(df, defs, opts)
	if err != nil {
		return nil, err
	}
	defer resolved.Release()

	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return resolved.Select(names...)
}

// evaluateDefinitions returns one array per definition, index-aligned with defs
func evaluateDefinitions(df *dataframe.DataFrame, defs []Definition, maxDepth int, op string) ([]arrow.Array, error) {
	parsed, err := parseDefinitions(defs, maxDepth, op)
	if err != nil {
		return nil, err
	}

	env, err := columnEnv(df)
	if err != nil {
		return nil, err
	}
	defer env.Release()

	evaluator := expr.NewEvaluator(df.Allocator())
	results := make([]arrow.Array, len(defs))

	pending := make([]int, len(defs))
	for i := range pending {
		pending[i] = i
	}

	// stalled counts consecutive requeues; a full pass of them means no
	// remaining definition can make progress
	stalled := 0
	for len(pending) > 0 {
		if stalled == len(pending) {
			releaseArrays(results)
			return nil, unresolvedError(op, defs, parsed, pending, env)
		}

		i := pending[0]
		pending = pending[1:]

		arr, err := evaluator.Evaluate(parsed[i], env)
		var unresolved *expr.UnresolvedNameError
		switch {
		case err == nil:
			bindErr := env.BindColumn(defs[i].Name, arr)
			if bindErr != nil {
				arr.Release()
				releaseArrays(results)
				return nil, dferrors.NewInternalError(op, bindErr)
			}
			results[i] = arr
			stalled = 0
		case errors.As(err, &unresolved):
			pending = append(pending, i)
			stalled++
		default:
			releaseArrays(results)
			return nil, dferrors.NewInvalidExpressionError(op, defs[i].Expr, err)
		}
	}
	return results, nil
}

// parseDefinitions parses every expression before anything is evaluated
func parseDefinitions(defs []Definition, maxDepth int, op string) ([]expr.Expr, error) {
	seen := make(map[string]bool, len(defs))
	parsed := make([]expr.Expr, len(defs))
	for i, def := range defs {
		if def.Name == "" {
			return nil, dferrors.NewInvalidExpressionError(op, def.Expr, fmt.Errorf("definition has no column name"))
		}
		if seen[def.Name] {
			return nil, dferrors.NewInvalidExpressionError(op, def.Expr,
				fmt.Errorf("column %q is defined more than once", def.Name))
		}
		seen[def.Name] = true

		e, err := parse.ParseWithDepth(def.Expr, maxDepth)
		if err != nil {
			return nil, dferrors.NewInvalidExpressionError(op, def.Expr, err)
		}
		parsed[i] = e
	}
	return parsed, nil
}

// unresolvedError names every pending definition with the names it lacks
func unresolvedError(op string, defs []Definition, parsed []expr.Expr, pending []int, env *expr.Env) error {
	details := make([]string, 0, len(pending))
	src := ""
	for _, i := range pending {
		var missing []string
		for _, name := range expr.Names(parsed[i]) {
			if !env.Has(name) {
				missing = append(missing, name)
			}
		}
		details = append(details, fmt.Sprintf("%s needs %s", defs[i].Name, strings.Join(missing, ", ")))
	}
	if len(pending) == 1 {
		src = defs[pending[0]].Expr
	}
	return dferrors.NewColumnDoesNotExistError(op, src, details, nil)
}

// columnEnv binds every column of df
func columnEnv(df *dataframe.DataFrame) (*expr.Env, error) {
	env := expr.NewEnv(df.Len())
	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		arr := col.Array()
		err := env.BindColumn(name, arr)
		arr.Release()
		if err != nil {
			env.Release()
			return nil, err
		}
	}
	return env, nil
}

func releaseArrays(arrs []arrow.Array) {
	for _, a := range arrs {
		if a != nil {
			a.Release()
		}
	}
}
