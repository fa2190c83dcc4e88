package expr

import (
	"fmt"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
)

// Env binds names to column arrays or to symbolic literals for one evaluation
// call. Names are unique; binding a name again replaces the previous binding.
// An Env holds references to its arrays until Release.
type Env struct {
	length  int
	columns map[string]arrow.Array
	symbols map[string]string
}

// NewEnv creates an empty binding environment for tables of length rows
func NewEnv(length int) *Env {
	return &Env{
		length:  length,
		columns: make(map[string]arrow.Array),
		symbols: make(map[string]string),
	}
}

// Len returns the row count every evaluated result must have
func (e *Env) Len() int {
	return e.length
}

// BindColumn binds name to arr, retaining it
func (e *Env) BindColumn(name string, arr arrow.Array) error {
	if arr.Len() != e.length {
		return fmt.Errorf("cannot bind %q: %d rows, expected %d", name, arr.Len(), e.length)
	}
	arr.Retain()
	e.unbind(name)
	e.columns[name] = arr
	return nil
}

// BindSymbol binds name to a string literal
func (e *Env) BindSymbol(name, value string) {
	e.unbind(name)
	e.symbols[name] = value
}

// Column returns the array bound to name
func (e *Env) Column(name string) (arrow.Array, bool) {
	arr, ok := e.columns[name]
	return arr, ok
}

// Symbol returns the string literal bound to name
func (e *Env) Symbol(name string) (string, bool) {
	s, ok := e.symbols[name]
	return s, ok
}

// Has reports whether name is bound to anything
func (e *Env) Has(name string) bool {
	_, col := e.columns[name]
	_, sym := e.symbols[name]
	return col || sym
}

// Names returns all bound names in sorted order
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.columns)+len(e.symbols))
	for n := range e.columns {
		names = append(names, n)
	}
	for n := range e.symbols {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Release drops the references held on bound arrays
func (e *Env) Release() {
	for name, arr := range e.columns {
		arr.Release()
		delete(e.columns, name)
	}
}

func (e *Env) unbind(name string) {
	if old, ok := e.columns[name]; ok {
		old.Release()
		delete(e.columns, name)
	}
	delete(e.symbols, name)
}

// UnresolvedNameError reports a reference to a name the Env does not bind.
// Callers may retry once more names are bound.
type UnresolvedNameError struct {
	Name string
}

func (e *UnresolvedNameError) Error() string {
	return fmt.Sprintf("name %q is not defined", e.Name)
}

// TypeError reports operands or arguments of unsupported types
type TypeError struct {
	Op     string
	Detail string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("unsupported operand types for %s: %s", e.Op, e.Detail)
}
