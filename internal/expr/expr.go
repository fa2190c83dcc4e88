// Package expr provides the expression tree, name bindings and evaluation for
// column expressions over Arrow arrays.
package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// ExprType represents the type of expression
type ExprType int

const (
	ExprColumn ExprType = iota
	ExprLiteral
	ExprBinary
	ExprUnary
	ExprFunction
)

// Expr represents a parsed expression
type Expr interface {
	Type() ExprType
	String() string
}

// ColumnExpr represents a name reference: a column or a symbolic literal
type ColumnExpr struct {
	name string
}

func (c *ColumnExpr) Type() ExprType {
	return ExprColumn
}

func (c *ColumnExpr) String() string {
	return c.name
}

func (c *ColumnExpr) Name() string {
	return c.name
}

// LiteralExpr represents a literal value: int64, float64, string or bool
type LiteralExpr struct {
	value interface{}
}

func (l *LiteralExpr) Type() ExprType {
	return ExprLiteral
}

func (l *LiteralExpr) String() string {
	switch v := l.value.(type) {
	case string:
		return strconv.Quote(v)
	case bool:
		if v {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (l *LiteralExpr) Value() interface{} {
	return l.value
}

// BinaryOp represents binary operations
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpBitOr
)

var binaryOpSymbols = map[BinaryOp]string{
	OpAdd:   "+",
	OpSub:   "-",
	OpMul:   "*",
	OpDiv:   "/",
	OpEq:    "==",
	OpNe:    "!=",
	OpLt:    "<",
	OpLe:    "<=",
	OpGt:    ">",
	OpGe:    ">=",
	OpAnd:   "and",
	OpOr:    "or",
	OpBitOr: "|",
}

func (op BinaryOp) String() string {
	if s, ok := binaryOpSymbols[op]; ok {
		return s
	}
	return fmt.Sprintf("BinaryOp(%d)", int(op))
}

// BinaryExpr represents a binary operation
type BinaryExpr struct {
	left  Expr
	op    BinaryOp
	right Expr
}

func (b *BinaryExpr) Type() ExprType {
	return ExprBinary
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.left.String(), b.op, b.right.String())
}

func (b *BinaryExpr) Left() Expr {
	return b.left
}

func (b *BinaryExpr) Op() BinaryOp {
	return b.op
}

func (b *BinaryExpr) Right() Expr {
	return b.right
}

// UnaryOp represents unary operations
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryPlus
	UnaryNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryPlus:
		return "+"
	case UnaryNot:
		return "not "
	default:
		return fmt.Sprintf("UnaryOp(%d)", int(op))
	}
}

// UnaryExpr represents a unary operation
type UnaryExpr struct {
	op      UnaryOp
	operand Expr
}

func (u *UnaryExpr) Type() ExprType {
	return ExprUnary
}

func (u *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s)", u.op, u.operand.String())
}

func (u *UnaryExpr) Op() UnaryOp {
	return u.op
}

func (u *UnaryExpr) Operand() Expr {
	return u.operand
}

// FunctionExpr represents a call to a whitelisted function
type FunctionExpr struct {
	name string
	args []Expr
}

func (f *FunctionExpr) Type() ExprType {
	return ExprFunction
}

func (f *FunctionExpr) String() string {
	argStrs := make([]string, len(f.args))
	for i, arg := range f.args {
		argStrs[i] = arg.String()
	}
	return f.name + "(" + strings.Join(argStrs, ", ") + ")"
}

func (f *FunctionExpr) Name() string {
	return f.name
}

func (f *FunctionExpr) Args() []Expr {
	return f.args
}

// Constructor functions

// Col creates a name reference
func Col(name string) *ColumnExpr {
	return &ColumnExpr{name: name}
}

// Lit creates a literal expression. Ints widen to int64 and float32 to float64.
func Lit(value interface{}) *LiteralExpr {
	switch v := value.(type) {
	case int:
		return &LiteralExpr{value: int64(v)}
	case int32:
		return &LiteralExpr{value: int64(v)}
	case float32:
		return &LiteralExpr{value: float64(v)}
	default:
		return &LiteralExpr{value: value}
	}
}

// Binary creates a binary expression
func Binary(left Expr, op BinaryOp, right Expr) *BinaryExpr {
	return &BinaryExpr{left: left, op: op, right: right}
}

// Unary creates a unary expression
func Unary(op UnaryOp, operand Expr) *UnaryExpr {
	return &UnaryExpr{op: op, operand: operand}
}

// NewFunction creates a function expression
func NewFunction(name string, args ...Expr) *FunctionExpr {
	return &FunctionExpr{name: name, args: args}
}

// Names returns every name referenced by e, in first-reference order
func Names(e Expr) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *ColumnExpr:
			if !seen[n.name] {
				seen[n.name] = true
				names = append(names, n.name)
			}
		case *BinaryExpr:
			walk(n.left)
			walk(n.right)
		case *UnaryExpr:
			walk(n.operand)
		case *FunctionExpr:
			for _, arg := range n.args {
				walk(arg)
			}
		}
	}
	walk(e)
	return names
}
