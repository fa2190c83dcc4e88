package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Array(mem memory.Allocator, values []int64, valid []bool) arrow.Array {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return b.NewArray()
}

func float64Array(mem memory.Allocator, values []float64) arrow.Array {
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues(values, nil)
	return b.NewArray()
}

func stringArray(mem memory.Allocator, values []string) arrow.Array {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.AppendValues(values, nil)
	return b.NewArray()
}

func boolArray(mem memory.Allocator, values []bool) arrow.Array {
	b := array.NewBooleanBuilder(mem)
	defer b.Release()
	b.AppendValues(values, nil)
	return b.NewArray()
}

// testEnv binds a=[1,2,3], f=[0.5,1.5,2.5], s=["x","y","z"], ok=[true,false,true]
func testEnv(t *testing.T, mem memory.Allocator) *Env {
	t.Helper()
	env := NewEnv(3)
	arrays := map[string]arrow.Array{
		"a":  int64Array(mem, []int64{1, 2, 3}, nil),
		"f":  float64Array(mem, []float64{0.5, 1.5, 2.5}),
		"s":  stringArray(mem, []string{"x", "y", "z"}),
		"ok": boolArray(mem, []bool{true, false, true}),
	}
	for name, arr := range arrays {
		require.NoError(t, env.BindColumn(name, arr))
		arr.Release()
	}
	return env
}

func int64s(t *testing.T, arr arrow.Array) []int64 {
	t.Helper()
	typed, ok := arr.(*array.Int64)
	require.True(t, ok, "expected int64, got %s", arr.DataType())
	return typed.Int64Values()
}

func float64s(t *testing.T, arr arrow.Array) []float64 {
	t.Helper()
	typed, ok := arr.(*array.Float64)
	require.True(t, ok, "expected float64, got %s", arr.DataType())
	return typed.Float64Values()
}

func bools(t *testing.T, arr arrow.Array) []bool {
	t.Helper()
	typed, ok := arr.(*array.Boolean)
	require.True(t, ok, "expected bool, got %s", arr.DataType())
	out := make([]bool, typed.Len())
	for i := range out {
		out[i] = typed.Value(i)
	}
	return out
}

func TestEvaluatorArithmetic(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	env := testEnv(t, mem)
	defer env.Release()
	eval := NewEvaluator(mem)

	t.Run("int arithmetic stays int", func(t *testing.T) {
		result, err := eval.Evaluate(Binary(Binary(Col("a"), OpMul, Lit(2)), OpAdd, Lit(1)), env)
		require.NoError(t, err)
		defer result.Release()
		assert.Equal(t, []int64{3, 5, 7}, int64s(t, result))
	})

	t.Run("division is true division", func(t *testing.T) {
		result, err := eval.Evaluate(Binary(Col("a"), OpDiv, Lit(2)), env)
		require.NoError(t, err)
		defer result.Release()
		assert.Equal(t, []float64{0.5, 1, 1.5}, float64s(t, result))
	})

	t.Run("mixed promotes to float", func(t *testing.T) {
		result, err := eval.Evaluate(Binary(Col("a"), OpAdd, Col("f")), env)
		require.NoError(t, err)
		defer result.Release()
		assert.Equal(t, []float64{1.5, 3.5, 5.5}, float64s(t, result))
	})

	t.Run("unary negation", func(t *testing.T) {
		result, err := eval.Evaluate(Unary(UnaryNeg, Col("a")), env)
		require.NoError(t, err)
		defer result.Release()
		assert.Equal(t, []int64{-1, -2, -3}, int64s(t, result))
	})

	t.Run("string concatenation", func(t *testing.T) {
		result, err := eval.Evaluate(Binary(Col("s"), OpAdd, Lit("!")), env)
		require.NoError(t, err)
		defer result.Release()
		strs := result.(*array.String)
		assert.Equal(t, "x!", strs.Value(0))
		assert.Equal(t, "z!", strs.Value(2))
	})

	t.Run("bitwise or on ints", func(t *testing.T) {
		result, err := eval.Evaluate(Binary(Col("a"), OpBitOr, Lit(4)), env)
		require.NoError(t, err)
		defer result.Release()
		assert.Equal(t, []int64{5, 6, 7}, int64s(t, result))
	})
}

func TestEvaluatorIntegerDivisionByZero(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	env := NewEnv(3)
	defer env.Release()
	num := int64Array(mem, []int64{4, 5, 6}, nil)
	den := int64Array(mem, []int64{2, 0, 3}, nil)
	require.NoError(t, env.BindColumn("n", num))
	require.NoError(t, env.BindColumn("d", den))
	num.Release()
	den.Release()

	result, err := NewEvaluator(mem).Evaluate(Binary(Col("n"), OpDiv, Col("d")), env)
	require.NoError(t, err)
	defer result.Release()

	assert.True(t, result.IsValid(0))
	assert.True(t, result.IsNull(1))
	assert.Equal(t, 2.0, result.(*array.Float64).Value(2))

	floatResult, err := NewEvaluator(mem).Evaluate(Binary(Lit(1.0), OpDiv, Lit(0)), env)
	require.NoError(t, err)
	defer floatResult.Release()
	assert.True(t, math.IsInf(floatResult.(*array.Float64).Value(0), 1))
}

func TestEvaluatorComparisons(t *testing.T) {
	mem := memory.NewGoAllocator()
	env := testEnv(t, mem)
	defer env.Release()
	eval := NewEvaluator(mem)

	tests := []struct {
		name     string
		expr     Expr
		expected []bool
	}{
		{"int greater", Binary(Col("a"), OpGt, Lit(1)), []bool{false, true, true}},
		{"mixed less or equal", Binary(Col("f"), OpLe, Col("a")), []bool{true, true, true}},
		{"string equality", Binary(Col("s"), OpEq, Lit("y")), []bool{false, true, false}},
		{"string ordering", Binary(Col("s"), OpGe, Lit("y")), []bool{false, true, true}},
		{"bool equality", Binary(Col("ok"), OpEq, Lit(true)), []bool{true, false, true}},
		{"cross kind equality", Binary(Col("s"), OpEq, Lit(1)), []bool{false, false, false}},
		{"cross kind inequality", Binary(Col("s"), OpNe, Lit(1)), []bool{true, true, true}},
		{"and", Binary(Col("ok"), OpAnd, Binary(Col("a"), OpGt, Lit(1))), []bool{false, false, true}},
		{"or", Binary(Col("ok"), OpOr, Binary(Col("a"), OpEq, Lit(2))), []bool{true, true, true}},
		{"pipe on bools", Binary(Col("ok"), OpBitOr, Lit(false)), []bool{true, false, true}},
		{"not", Unary(UnaryNot, Col("ok")), []bool{false, true, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := eval.EvaluateBoolean(tt.expr, env)
			require.NoError(t, err)
			defer result.Release()
			assert.Equal(t, tt.expected, bools(t, result))
		})
	}
}

func TestEvaluatorNaNIsUnordered(t *testing.T) {
	mem := memory.NewGoAllocator()
	env := NewEnv(1)
	defer env.Release()
	arr := float64Array(mem, []float64{math.NaN()})
	require.NoError(t, env.BindColumn("x", arr))
	arr.Release()

	eval := NewEvaluator(mem)
	for op, want := range map[BinaryOp]bool{OpEq: false, OpNe: true, OpLt: false, OpGe: false} {
		result, err := eval.EvaluateBoolean(Binary(Col("x"), op, Col("x")), env)
		require.NoError(t, err)
		assert.Equal(t, want, result.Value(0), "op %s", op)
		result.Release()
	}
}

func TestEvaluatorNullPropagation(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	env := NewEnv(3)
	defer env.Release()
	arr := int64Array(mem, []int64{1, 0, 3}, []bool{true, false, true})
	require.NoError(t, env.BindColumn("x", arr))
	arr.Release()
	eval := NewEvaluator(mem)

	sum, err := eval.Evaluate(Binary(Col("x"), OpAdd, Lit(1)), env)
	require.NoError(t, err)
	defer sum.Release()
	assert.Equal(t, 1, sum.NullN())
	assert.True(t, sum.IsNull(1))

	cmp, err := eval.EvaluateBoolean(Binary(Col("x"), OpGt, Lit(0)), env)
	require.NoError(t, err)
	defer cmp.Release()
	assert.True(t, cmp.IsNull(1))

	mean, err := eval.Evaluate(NewFunction("mean", Col("x")), env)
	require.NoError(t, err)
	defer mean.Release()
	assert.Equal(t, []float64{2, 2, 2}, float64s(t, mean))
}

func TestEvaluatorFunctions(t *testing.T) {
	mem := memory.NewGoAllocator()
	env := testEnv(t, mem)
	defer env.Release()
	eval := NewEvaluator(mem)

	t.Run("elementwise", func(t *testing.T) {
		result, err := eval.Evaluate(NewFunction("exp", Lit(0)), env)
		require.NoError(t, err)
		defer result.Release()
		assert.Equal(t, []float64{1, 1, 1}, float64s(t, result))
	})

	t.Run("hypot", func(t *testing.T) {
		result, err := eval.Evaluate(NewFunction("hypot", Lit(3), Lit(4)), env)
		require.NoError(t, err)
		defer result.Release()
		assert.Equal(t, []float64{5, 5, 5}, float64s(t, result))
	})

	t.Run("pow is float", func(t *testing.T) {
		result, err := eval.Evaluate(NewFunction("pow", Col("a"), Lit(2)), env)
		require.NoError(t, err)
		defer result.Release()
		assert.Equal(t, []float64{1, 4, 9}, float64s(t, result))
	})

	t.Run("sum of ints stays int and broadcasts", func(t *testing.T) {
		result, err := eval.Evaluate(NewFunction("sum", Col("a")), env)
		require.NoError(t, err)
		defer result.Release()
		assert.Equal(t, []int64{6, 6, 6}, int64s(t, result))
	})

	t.Run("population std", func(t *testing.T) {
		result, err := eval.Evaluate(NewFunction("std", Col("a")), env)
		require.NoError(t, err)
		defer result.Release()
		assert.InDelta(t, math.Sqrt(2.0/3.0), float64s(t, result)[0], 1e-12)
	})

	t.Run("deviation from mean", func(t *testing.T) {
		result, err := eval.Evaluate(Binary(Col("a"), OpSub, NewFunction("mean", Col("a"))), env)
		require.NoError(t, err)
		defer result.Release()
		assert.Equal(t, []float64{-1, 0, 1}, float64s(t, result))
	})
}

func TestEvaluatorErrors(t *testing.T) {
	mem := memory.NewGoAllocator()
	env := testEnv(t, mem)
	defer env.Release()
	eval := NewEvaluator(mem)

	t.Run("unresolved name", func(t *testing.T) {
		_, err := eval.Evaluate(Binary(Col("missing"), OpAdd, Lit(1)), env)
		var unresolved *UnresolvedNameError
		require.True(t, errors.As(err, &unresolved))
		assert.Equal(t, "missing", unresolved.Name)
	})

	typeErrors := []struct {
		name string
		expr Expr
	}{
		{"string minus int", Binary(Col("s"), OpSub, Lit(1))},
		{"ordering across kinds", Binary(Col("s"), OpLt, Col("a"))},
		{"and on ints", Binary(Col("a"), OpAnd, Col("ok"))},
		{"not on ints", Unary(UnaryNot, Col("a"))},
		{"negate string", Unary(UnaryNeg, Col("s"))},
		{"log of string", NewFunction("log", Col("s"))},
		{"unknown function", NewFunction("eval", Col("a"))},
		{"wrong arity", NewFunction("hypot", Col("a"))},
	}
	for _, tt := range typeErrors {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eval.Evaluate(tt.expr, env)
			var typeErr *TypeError
			require.True(t, errors.As(err, &typeErr), "got %v", err)
		})
	}

	t.Run("non boolean predicate", func(t *testing.T) {
		_, err := eval.EvaluateBoolean(Col("a"), env)
		var typeErr *TypeError
		require.True(t, errors.As(err, &typeErr))
		assert.Contains(t, typeErr.Error(), "not bool")
	})
}

func TestEvaluatorSymbols(t *testing.T) {
	mem := memory.NewGoAllocator()
	env := testEnv(t, mem)
	defer env.Release()
	env.BindSymbol("y", "y")

	result, err := NewEvaluator(mem).EvaluateBoolean(Binary(Col("s"), OpEq, Col("y")), env)
	require.NoError(t, err)
	defer result.Release()
	assert.Equal(t, []bool{false, true, false}, bools(t, result))
}

func TestEvaluatorEmptyEnvBroadcast(t *testing.T) {
	env := NewEnv(0)
	defer env.Release()

	result, err := NewEvaluator(nil).Evaluate(Lit(5), env)
	require.NoError(t, err)
	defer result.Release()
	assert.Equal(t, 0, result.Len())
	assert.Equal(t, arrow.PrimitiveTypes.Int64, result.DataType())
}
