// Package dataframe provides the Arrow-backed table engine
package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
)

// DataFrame represents a table of data with typed columns.
// A DataFrame owns one reference to each of its series; operations return new
// frames holding their own references, so every frame must be released.
type DataFrame struct {
	columns map[string]ISeries
	order   []string // Maintains column order
	groups  []string // Grouping keys, consumed by aggregation
	mem     memory.Allocator
}

// New creates a new DataFrame from a slice of ISeries, taking ownership of them
func New(series ...ISeries) *DataFrame {
	return newWithAllocator(memory.NewGoAllocator(), series...)
}

// NewWithAllocator creates a DataFrame whose derived arrays use mem
func NewWithAllocator(mem memory.Allocator, series ...ISeries) *DataFrame {
	return newWithAllocator(mem, series...)
}

func newWithAllocator(mem memory.Allocator, series ...ISeries) *DataFrame {
	columns := make(map[string]ISeries)
	order := make([]string, 0, len(series))

	for _, s := range series {
		name := s.Name()
		if old, exists := columns[name]; exists {
			old.Release()
		} else {
			order = append(order, name)
		}
		columns[name] = s
	}

	return &DataFrame{
		columns: columns,
		order:   order,
		mem:     mem,
	}
}

// Validate checks that all columns have the same length
func (df *DataFrame) Validate() error {
	if len(df.order) == 0 {
		return nil
	}
	want := df.columns[df.order[0]].Len()
	for _, name := range df.order[1:] {
		if got := df.columns[name].Len(); got != want {
			return dferrors.NewValidationError("New", name,
				fmt.Sprintf("column has %d rows, expected %d", got, want))
		}
	}
	return nil
}

// Allocator returns the allocator used for derived arrays
func (df *DataFrame) Allocator() memory.Allocator {
	return df.mem
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Len returns the number of rows
func (df *DataFrame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	return df.columns[df.order[0]].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.order)
}

// Column returns the series for the given column name.
// The series is borrowed; it stays valid until the frame is released.
func (df *DataFrame) Column(name string) (ISeries, bool) {
	series, exists := df.columns[name]
	return series, exists
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// Groups returns the grouping keys
func (df *DataFrame) Groups() []string {
	return append([]string(nil), df.groups...)
}

// IsGrouped reports whether grouping keys are attached
func (df *DataFrame) IsGrouped() bool {
	return len(df.groups) > 0
}

// WithGroups returns a copy of the frame carrying the given grouping keys
func (df *DataFrame) WithGroups(keys ...string) (*DataFrame, error) {
	if err := df.requireColumns("GroupBy", keys); err != nil {
		return nil, err
	}
	result := df.shallowCopy(df.order)
	result.groups = append([]string(nil), keys...)
	return result, nil
}

// Ungroup returns a copy of the frame without grouping keys
func (df *DataFrame) Ungroup() *DataFrame {
	result := df.shallowCopy(df.order)
	result.groups = nil
	return result
}

// Select returns a new DataFrame with only the specified columns, in argument order
func (df *DataFrame) Select(names ...string) (*DataFrame, error) {
	if err := df.requireColumns("Select", names); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, dferrors.NewValidationError("Select", name, "column selected more than once")
		}
		seen[name] = true
	}
	return df.shallowCopy(names), nil
}

// Drop returns a new DataFrame without the specified columns
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool)
	for _, name := range names {
		dropSet[name] = true
	}

	keep := make([]string, 0, len(df.order))
	for _, name := range df.order {
		if !dropSet[name] {
			keep = append(keep, name)
		}
	}
	return df.shallowCopy(keep)
}

// Rename returns a new DataFrame with columns renamed according to mapping
func (df *DataFrame) Rename(mapping map[string]string) (*DataFrame, error) {
	for old := range mapping {
		if !df.HasColumn(old) {
			return nil, dferrors.NewColumnNotFoundErrorWithSuggestions("Rename", old, df.order)
		}
	}

	newOrder := make([]string, len(df.order))
	seen := make(map[string]bool, len(df.order))
	for i, name := range df.order {
		target := name
		if renamed, ok := mapping[name]; ok {
			target = renamed
		}
		if seen[target] {
			return nil, dferrors.NewValidationError("Rename", target, "rename produces a duplicate column name")
		}
		seen[target] = true
		newOrder[i] = target
	}

	columns := make(map[string]ISeries, len(df.order))
	for i, name := range df.order {
		columns[newOrder[i]] = df.columns[name].Rename(newOrder[i])
	}

	groups := make([]string, len(df.groups))
	for i, g := range df.groups {
		groups[i] = g
		if renamed, ok := mapping[g]; ok {
			groups[i] = renamed
		}
	}

	return &DataFrame{columns: columns, order: newOrder, groups: groups, mem: df.mem}, nil
}

// WithColumn returns a new DataFrame with s added. A column of the same name is
// replaced in place; otherwise s is appended. Ownership of s moves to the result.
func (df *DataFrame) WithColumn(s ISeries) (*DataFrame, error) {
	if df.Width() > 0 && s.Len() != df.Len() {
		s.Release()
		return nil, dferrors.NewValidationError("WithColumn", s.Name(),
			fmt.Sprintf("column has %d rows, expected %d", s.Len(), df.Len()))
	}

	result := df.shallowCopy(df.order)
	if old, exists := result.columns[s.Name()]; exists {
		old.Release()
	} else {
		result.order = append(result.order, s.Name())
	}
	result.columns[s.Name()] = s
	return result, nil
}

// WithArray wraps arr as a column named name and adds it like WithColumn.
// The caller keeps its own reference to arr.
func (df *DataFrame) WithArray(name string, arr arrow.Array) (*DataFrame, error) {
	s, err := series.FromArray(name, arr)
	if err != nil {
		return nil, dferrors.NewUnsupportedTypeError("WithColumn", arr.DataType().String())
	}
	return df.WithColumn(s)
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}
	if len(df.groups) > 0 {
		parts = append(parts, fmt.Sprintf("  groups: %s", strings.Join(df.groups, ", ")))
	}

	for _, name := range df.order {
		series := df.columns[name]
		parts = append(parts, fmt.Sprintf("  %s: %s", name, series.DataType().String()))
	}

	return strings.Join(parts, "\n")
}

// Slice creates a new DataFrame containing rows from start (inclusive) to end
// (exclusive). The range is clamped to the frame.
func (df *DataFrame) Slice(start, end int) *DataFrame {
	length := df.Len()
	start = max(0, min(start, length))
	end = max(start, min(end, length))

	indices := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		indices = append(indices, i)
	}
	// Take cannot fail on in-range indices.
	result, _ := df.Take(indices)
	return result
}

// Head returns the first n rows
func (df *DataFrame) Head(n int) *DataFrame {
	return df.Slice(0, n)
}

// Concat concatenates multiple DataFrames vertically (row-wise).
// All DataFrames must have the same column names and types in the same order.
func (df *DataFrame) Concat(others ...*DataFrame) (*DataFrame, error) {
	for _, other := range others {
		if !df.hasSameSchema(other) {
			return nil, dferrors.NewInvalidInputError("Concat", "frames have different schemas")
		}
	}

	result := make([]ISeries, 0, df.Width())
	for _, name := range df.order {
		arrs := make([]arrow.Array, 0, len(others)+1)
		arrs = append(arrs, df.columns[name].Array())
		for _, other := range others {
			arrs = append(arrs, other.columns[name].Array())
		}
		combined, err := array.Concatenate(arrs, df.mem)
		for _, a := range arrs {
			a.Release()
		}
		if err != nil {
			releaseAll(result)
			return nil, dferrors.NewInternalError("Concat", err)
		}
		s, err := series.FromArray(name, combined)
		combined.Release()
		if err != nil {
			releaseAll(result)
			return nil, dferrors.NewInternalError("Concat", err)
		}
		result = append(result, s)
	}

	return newWithAllocator(df.mem, result...), nil
}

// hasSameSchema checks if two DataFrames have the same column structure
func (df *DataFrame) hasSameSchema(other *DataFrame) bool {
	if len(df.order) != len(other.order) {
		return false
	}

	for i, colName := range df.order {
		if other.order[i] != colName {
			return false
		}
		if !arrow.TypeEqual(df.columns[colName].DataType(), other.columns[colName].DataType()) {
			return false
		}
	}

	return true
}

// Release releases all underlying Arrow memory
func (df *DataFrame) Release() {
	for _, series := range df.columns {
		series.Release()
	}
}

// shallowCopy returns a frame sharing the named series (retained) and the
// grouping keys that survive the projection.
func (df *DataFrame) shallowCopy(names []string) *DataFrame {
	columns := make(map[string]ISeries, len(names))
	order := make([]string, 0, len(names))
	for _, name := range names {
		columns[name] = df.columns[name].Rename(name)
		order = append(order, name)
	}

	var groups []string
	for _, g := range df.groups {
		if _, ok := columns[g]; ok {
			groups = append(groups, g)
		}
	}

	return &DataFrame{columns: columns, order: order, groups: groups, mem: df.mem}
}

// requireColumns returns a column-not-found error for the first missing name
func (df *DataFrame) requireColumns(op string, names []string) error {
	for _, name := range names {
		if !df.HasColumn(name) {
			return dferrors.NewColumnNotFoundErrorWithSuggestions(op, name, df.order)
		}
	}
	return nil
}

// arrays returns retained arrays for the named columns
func (df *DataFrame) arrays(names []string) []arrow.Array {
	arrs := make([]arrow.Array, len(names))
	for i, name := range names {
		arrs[i] = df.columns[name].Array()
	}
	return arrs
}

func releaseAll(series []ISeries) {
	for _, s := range series {
		s.Release()
	}
}

func releaseArrays(arrs []arrow.Array) {
	for _, a := range arrs {
		if a != nil {
			a.Release()
		}
	}
}
