package expr

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Evaluator evaluates expressions against the bindings of an Env.
// It holds no per-call state; every Evaluate call is independent.
type Evaluator struct {
	mem memory.Allocator
}

// NewEvaluator creates a new expression evaluator
func NewEvaluator(mem memory.Allocator) *Evaluator {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &Evaluator{mem: mem}
}

// Evaluate evaluates expr to an array of env.Len() rows. Literals and
// reductions broadcast. Unbound names yield *UnresolvedNameError; operand type
// mismatches yield *TypeError.
func (e *Evaluator) Evaluate(expr Expr, env *Env) (arrow.Array, error) {
	v, err := e.eval(expr, env)
	if err != nil {
		return nil, err
	}
	return v.encode(e.mem), nil
}

// EvaluateBoolean evaluates an expression that must produce booleans
func (e *Evaluator) EvaluateBoolean(expr Expr, env *Env) (*array.Boolean, error) {
	v, err := e.eval(expr, env)
	if err != nil {
		return nil, err
	}
	if v.kind != kindBool {
		return nil, &TypeError{Op: "predicate", Detail: fmt.Sprintf("expression yields %s, not bool", v.kind)}
	}
	return v.encode(e.mem).(*array.Boolean), nil
}

func (e *Evaluator) eval(expr Expr, env *Env) (*vector, error) {
	switch ex := expr.(type) {
	case *ColumnExpr:
		return e.evaluateName(ex, env)
	case *LiteralExpr:
		v, ok := broadcast(ex.Value(), env.Len())
		if !ok {
			return nil, &TypeError{Op: "literal", Detail: fmt.Sprintf("%T", ex.Value())}
		}
		return v, nil
	case *BinaryExpr:
		return e.evaluateBinary(ex, env)
	case *UnaryExpr:
		return e.evaluateUnary(ex, env)
	case *FunctionExpr:
		return e.evaluateFunction(ex, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", expr)
	}
}

func (e *Evaluator) evaluateName(ex *ColumnExpr, env *Env) (*vector, error) {
	if arr, ok := env.Column(ex.Name()); ok {
		v, ok := decode(arr)
		if !ok {
			return nil, &TypeError{Op: "column " + ex.Name(), Detail: arr.DataType().String()}
		}
		return v, nil
	}
	if sym, ok := env.Symbol(ex.Name()); ok {
		v, _ := broadcast(sym, env.Len())
		return v, nil
	}
	return nil, &UnresolvedNameError{Name: ex.Name()}
}

func (e *Evaluator) evaluateBinary(ex *BinaryExpr, env *Env) (*vector, error) {
	left, err := e.eval(ex.Left(), env)
	if err != nil {
		return nil, err
	}
	right, err := e.eval(ex.Right(), env)
	if err != nil {
		return nil, err
	}

	switch ex.Op() {
	case OpAdd, OpSub, OpMul, OpDiv:
		return evaluateArithmetic(left, right, ex.Op())
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return evaluateComparison(left, right, ex.Op())
	case OpAnd, OpOr:
		return evaluateLogical(left, right, ex.Op())
	case OpBitOr:
		if left.kind == kindInt && right.kind == kindInt {
			return zipInts(left, right, func(a, b int64) int64 { return a | b }), nil
		}
		return evaluateLogical(left, right, OpOr)
	default:
		return nil, fmt.Errorf("unsupported binary operator: %s", ex.Op())
	}
}

func operandError(op BinaryOp, left, right *vector) error {
	return &TypeError{Op: "'" + op.String() + "'", Detail: fmt.Sprintf("%s and %s", left.kind, right.kind)}
}

// evaluateArithmetic applies + - * /. Integer + - * stay integral; / is true
// division, and integer division by zero yields null.
func evaluateArithmetic(left, right *vector, op BinaryOp) (*vector, error) {
	if op == OpAdd && left.kind == kindString && right.kind == kindString {
		out := newVector(kindString, left.len())
		for i := range out.strs {
			out.valid[i] = left.valid[i] && right.valid[i]
			if out.valid[i] {
				out.strs[i] = left.strs[i] + right.strs[i]
			}
		}
		return out, nil
	}
	if !left.kind.numeric() || !right.kind.numeric() {
		return nil, operandError(op, left, right)
	}

	if left.kind == kindInt && right.kind == kindInt {
		switch op {
		case OpAdd:
			return zipInts(left, right, func(a, b int64) int64 { return a + b }), nil
		case OpSub:
			return zipInts(left, right, func(a, b int64) int64 { return a - b }), nil
		case OpMul:
			return zipInts(left, right, func(a, b int64) int64 { return a * b }), nil
		case OpDiv:
			out := zipFloats(left, right, func(a, b float64) float64 { return a / b })
			for i, d := range right.ints {
				if d == 0 {
					out.valid[i] = false
				}
			}
			return out, nil
		}
	}

	switch op {
	case OpAdd:
		return zipFloats(left, right, func(a, b float64) float64 { return a + b }), nil
	case OpSub:
		return zipFloats(left, right, func(a, b float64) float64 { return a - b }), nil
	case OpMul:
		return zipFloats(left, right, func(a, b float64) float64 { return a * b }), nil
	default:
		return zipFloats(left, right, func(a, b float64) float64 { return a / b }), nil
	}
}

func zipInts(left, right *vector, fn func(a, b int64) int64) *vector {
	out := newVector(kindInt, left.len())
	for i := range out.ints {
		out.valid[i] = left.valid[i] && right.valid[i]
		if out.valid[i] {
			out.ints[i] = fn(left.ints[i], right.ints[i])
		}
	}
	return out
}

func zipFloats(left, right *vector, fn func(a, b float64) float64) *vector {
	lf, rf := left.asFloats(), right.asFloats()
	out := newVector(kindFloat, left.len())
	for i := range out.floats {
		out.valid[i] = left.valid[i] && right.valid[i]
		if out.valid[i] {
			out.floats[i] = fn(lf[i], rf[i])
		}
	}
	return out
}

// evaluateComparison compares numbers, strings or booleans elementwise.
// Equality across incompatible kinds is false everywhere; ordering across
// them is a type error.
func evaluateComparison(left, right *vector, op BinaryOp) (*vector, error) {
	out := newVector(kindBool, left.len())
	for i := range out.valid {
		out.valid[i] = left.valid[i] && right.valid[i]
	}

	var cmp func(i int) int
	switch {
	case left.kind.numeric() && right.kind.numeric():
		if left.kind == kindInt && right.kind == kindInt {
			cmp = func(i int) int { return compare(left.ints[i], right.ints[i]) }
		} else {
			lf, rf := left.asFloats(), right.asFloats()
			cmp = func(i int) int {
				if math.IsNaN(lf[i]) || math.IsNaN(rf[i]) {
					return nanOrder
				}
				return compare(lf[i], rf[i])
			}
		}
	case left.kind == kindString && right.kind == kindString:
		cmp = func(i int) int { return compare(left.strs[i], right.strs[i]) }
	case left.kind == kindBool && right.kind == kindBool:
		cmp = func(i int) int { return compare(boolRank(left.bools[i]), boolRank(right.bools[i])) }
	default:
		if op != OpEq && op != OpNe {
			return nil, operandError(op, left, right)
		}
		for i := range out.bools {
			out.bools[i] = op == OpNe
		}
		return out, nil
	}

	for i := range out.bools {
		if !out.valid[i] {
			continue
		}
		c := cmp(i)
		if c == nanOrder {
			out.bools[i] = op == OpNe
			continue
		}
		switch op {
		case OpEq:
			out.bools[i] = c == 0
		case OpNe:
			out.bools[i] = c != 0
		case OpLt:
			out.bools[i] = c < 0
		case OpLe:
			out.bools[i] = c <= 0
		case OpGt:
			out.bools[i] = c > 0
		case OpGe:
			out.bools[i] = c >= 0
		}
	}
	return out, nil
}

// nanOrder marks comparisons involving NaN, which are unordered
const nanOrder = 2

func compare[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolRank(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// evaluateLogical applies and/or over booleans; nulls propagate
func evaluateLogical(left, right *vector, op BinaryOp) (*vector, error) {
	if left.kind != kindBool || right.kind != kindBool {
		return nil, operandError(op, left, right)
	}
	out := newVector(kindBool, left.len())
	for i := range out.bools {
		out.valid[i] = left.valid[i] && right.valid[i]
		if !out.valid[i] {
			continue
		}
		if op == OpAnd {
			out.bools[i] = left.bools[i] && right.bools[i]
		} else {
			out.bools[i] = left.bools[i] || right.bools[i]
		}
	}
	return out, nil
}

func (e *Evaluator) evaluateUnary(ex *UnaryExpr, env *Env) (*vector, error) {
	operand, err := e.eval(ex.Operand(), env)
	if err != nil {
		return nil, err
	}

	switch ex.Op() {
	case UnaryNot:
		if operand.kind != kindBool {
			return nil, &TypeError{Op: "'not'", Detail: operand.kind.String()}
		}
		out := newVector(kindBool, operand.len())
		copy(out.valid, operand.valid)
		for i, b := range operand.bools {
			out.bools[i] = !b
		}
		return out, nil
	case UnaryPlus:
		if !operand.kind.numeric() {
			return nil, &TypeError{Op: "unary '+'", Detail: operand.kind.String()}
		}
		return operand, nil
	case UnaryNeg:
		switch operand.kind {
		case kindInt:
			out := newVector(kindInt, operand.len())
			copy(out.valid, operand.valid)
			for i, x := range operand.ints {
				out.ints[i] = -x
			}
			return out, nil
		case kindFloat:
			out := newVector(kindFloat, operand.len())
			copy(out.valid, operand.valid)
			for i, x := range operand.floats {
				out.floats[i] = -x
			}
			return out, nil
		default:
			return nil, &TypeError{Op: "unary '-'", Detail: operand.kind.String()}
		}
	default:
		return nil, fmt.Errorf("unsupported unary operator: %s", ex.Op())
	}
}

func (e *Evaluator) evaluateFunction(ex *FunctionExpr, env *Env) (*vector, error) {
	fn, ok := LookupFunction(ex.Name())
	if !ok {
		return nil, &TypeError{Op: ex.Name(), Detail: "function is not allowed"}
	}
	if len(ex.Args()) != fn.Arity {
		return nil, &TypeError{
			Op:     ex.Name(),
			Detail: fmt.Sprintf("takes %d argument(s), got %d", fn.Arity, len(ex.Args())),
		}
	}

	args := make([]*vector, len(ex.Args()))
	for i, arg := range ex.Args() {
		v, err := e.eval(arg, env)
		if err != nil {
			return nil, err
		}
		if !v.kind.numeric() {
			return nil, &TypeError{Op: ex.Name() + "()", Detail: fmt.Sprintf("argument %d is %s", i+1, v.kind)}
		}
		args[i] = v
	}
	return fn.apply(args, env.Len()), nil
}
