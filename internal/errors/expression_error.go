package errors

import (
	"fmt"
	"strings"
)

// ExpressionKind classifies expression failures
type ExpressionKind int

const (
	// KindInvalidExpression marks a malformed or disallowed expression
	KindInvalidExpression ExpressionKind = iota
	// KindColumnDoesNotExist marks a name that could never be resolved
	KindColumnDoesNotExist
)

func (k ExpressionKind) String() string {
	switch k {
	case KindInvalidExpression:
		return "invalid expression"
	case KindColumnDoesNotExist:
		return "column does not exist"
	default:
		return "unknown"
	}
}

// ExpressionError reports a failure to parse, type or resolve expression strings
type ExpressionError struct {
	Kind  ExpressionKind
	Op    string   // Verb that evaluated the expression
	Expr  string   // Offending expression source, if a single one
	Names []string // Unresolved names or pending definitions
	Cause error
}

// Error implements the error interface
func (e *ExpressionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Op, e.Kind)
	if e.Expr != "" {
		fmt.Fprintf(&b, " in %q", e.Expr)
	}
	if len(e.Names) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Names, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *ExpressionError) Unwrap() error {
	return e.Cause
}

// Is matches the kind sentinels ErrInvalidExpression and ErrColumnDoesNotExist
func (e *ExpressionError) Is(target error) bool {
	t, ok := target.(*ExpressionError)
	if !ok {
		return false
	}
	return t.Op == "" && t.Kind == e.Kind
}

// NewInvalidExpressionError wraps a parse or evaluation failure of src
func NewInvalidExpressionError(op, src string, cause error) *ExpressionError {
	return &ExpressionError{
		Kind:  KindInvalidExpression,
		Op:    op,
		Expr:  src,
		Cause: cause,
	}
}

// NewColumnDoesNotExistError reports names that stayed unresolved
func NewColumnDoesNotExistError(op, src string, names []string, cause error) *ExpressionError {
	return &ExpressionError{
		Kind:  KindColumnDoesNotExist,
		Op:    op,
		Expr:  src,
		Names: names,
		Cause: cause,
	}
}

var (
	// ErrInvalidExpression matches any ExpressionError of KindInvalidExpression
	ErrInvalidExpression = &ExpressionError{Kind: KindInvalidExpression}

	// ErrColumnDoesNotExist matches any ExpressionError of KindColumnDoesNotExist
	ErrColumnDoesNotExist = &ExpressionError{Kind: KindColumnDoesNotExist}
)
