package resolve

import (
	"errors"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/paveg/tidyframe/internal/dataframe"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/parse"
)

// Filter keeps the rows of df for which every predicate is true, applying the
// predicates in order to the already narrowed table. Null results drop the
// row. String values of df that are plain identifiers are bound as symbolic
// literals for every predicate, so "color == red" works like
// "color == 'red'" unless a column is called red. A bare name that is
// compared against a string column and bound to nothing else is read as a
// literal too, which keeps re-filtering a narrowed table stable.
func Filter(df *dataframe.DataFrame, predicates []string, opts Options) (*dataframe.DataFrame, error) {
	op := opts.op("Filter")

	parsed := make([]expr.Expr, len(predicates))
	for i, src := range predicates {
		e, err := parse.ParseWithDepth(src, opts.MaxDepth)
		if err != nil {
			return nil, dferrors.NewInvalidExpressionError(op, src, err)
		}
		parsed[i] = e
	}

	symbols := symbolicLiterals(df)
	evaluator := expr.NewEvaluator(df.Allocator())
	current := df.Drop()
	for i, e := range parsed {
		mask, err := evaluatePredicate(evaluator, current, e, symbols)
		if err != nil {
			current.Release()
			var unresolved *expr.UnresolvedNameError
			if errors.As(err, &unresolved) {
				return nil, dferrors.NewColumnDoesNotExistError(op, predicates[i], []string{unresolved.Name}, err)
			}
			return nil, dferrors.NewInvalidExpressionError(op, predicates[i], err)
		}

		next, err := current.Filter(mask)
		mask.Release()
		current.Release()
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func evaluatePredicate(
	evaluator *expr.Evaluator,
	df *dataframe.DataFrame,
	e expr.Expr,
	symbols []string,
) (*array.Boolean, error) {
	env, err := columnEnv(df)
	if err != nil {
		return nil, err
	}
	defer env.Release()

	// Symbols never shadow a column
	for _, name := range symbols {
		if !env.Has(name) {
			env.BindSymbol(name, name)
		}
	}
	for _, name := range comparedLabels(e, df, env) {
		env.BindSymbol(name, name)
	}
	return evaluator.EvaluateBoolean(e, env)
}

// symbolicLiterals collects the distinct identifier-shaped values of the
// string columns of df that do not name a column.
func symbolicLiterals(df *dataframe.DataFrame) []string {
	var symbols []string
	seen := make(map[string]bool)
	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		if col.DataType().ID() != arrow.STRING {
			continue
		}
		arr := col.Array()
		strs := arr.(*array.String)
		for i := 0; i < strs.Len(); i++ {
			if strs.IsNull(i) {
				continue
			}
			value := strs.Value(i)
			if seen[value] || df.HasColumn(value) || !parse.IsIdentifier(value) {
				continue
			}
			// Value aliases the Arrow buffer
			value = strings.Clone(value)
			seen[value] = true
			symbols = append(symbols, value)
		}
		arr.Release()
	}
	return symbols
}

// comparedLabels returns the unbound names of e that appear as the other
// operand of a comparison with a string column.
func comparedLabels(e expr.Expr, df *dataframe.DataFrame, env *expr.Env) []string {
	var labels []string
	isString := func(n expr.Expr) bool {
		c, ok := n.(*expr.ColumnExpr)
		if !ok || !df.HasColumn(c.Name()) {
			return false
		}
		col, _ := df.Column(c.Name())
		return col.DataType().ID() == arrow.STRING
	}
	unbound := func(n expr.Expr) (string, bool) {
		c, ok := n.(*expr.ColumnExpr)
		if !ok || env.Has(c.Name()) {
			return "", false
		}
		return c.Name(), true
	}

	var walk func(expr.Expr)
	walk = func(n expr.Expr) {
		switch node := n.(type) {
		case *expr.BinaryExpr:
			if node.Op() >= expr.OpEq && node.Op() <= expr.OpGe {
				if name, ok := unbound(node.Right()); ok && isString(node.Left()) {
					labels = append(labels, name)
				}
				if name, ok := unbound(node.Left()); ok && isString(node.Right()) {
					labels = append(labels, name)
				}
			}
			walk(node.Left())
			walk(node.Right())
		case *expr.UnaryExpr:
			walk(node.Operand())
		case *expr.FunctionExpr:
			for _, arg := range node.Args() {
				walk(arg)
			}
		}
	}
	walk(e)
	return labels
}
