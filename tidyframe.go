// Package tidyframe provides chainable table verbs over Arrow-backed
// DataFrames. A pipeline threads a table through named verbs such as Keep,
// Create, Select, GroupBy and Summarise; column definitions and row
// predicates are written as restricted expression strings like
// "income * 2 > savings".
//
// This package is the sole public API for the library.
package tidyframe

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tidyframe/internal/dataframe"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/version"
)

// ISeries provides a type-erased interface for Series of any type
type ISeries = dataframe.ISeries

// DataFrame is the public type for a DataFrame.
// It wraps the internal dataframe.DataFrame to hide implementation details.
// Every DataFrame owns Arrow memory and must be released.
type DataFrame struct {
	df *dataframe.DataFrame
}

// NewDataFrame creates a DataFrame from series. Ownership of the series moves
// to the DataFrame.
func NewDataFrame(series ...ISeries) *DataFrame {
	return &DataFrame{df: dataframe.New(series...)}
}

// NewDataFrameWithAllocator creates a DataFrame whose derived tables allocate from mem
func NewDataFrameWithAllocator(mem memory.Allocator, series ...ISeries) *DataFrame {
	return &DataFrame{df: dataframe.NewWithAllocator(mem, series...)}
}

// NewSeries creates a new typed Series from values.
func NewSeries[T any](name string, values []T, mem memory.Allocator) ISeries {
	return series.New(name, values, mem)
}

// NewNullableSeries creates a Series where valid[i] == false marks a null
func NewNullableSeries[T any](name string, values []T, valid []bool, mem memory.Allocator) (ISeries, error) {
	return series.NewNullable(name, values, valid, mem)
}

func wrap(df *dataframe.DataFrame) *DataFrame {
	if df == nil {
		return nil
	}
	return &DataFrame{df: df}
}

// Columns returns the column names in order.
func (d *DataFrame) Columns() []string {
	return d.df.Columns()
}

// Len returns the number of rows.
func (d *DataFrame) Len() int {
	return d.df.Len()
}

// Width returns the number of columns.
func (d *DataFrame) Width() int {
	return d.df.Width()
}

// Column returns the named column. The DataFrame keeps ownership of it.
func (d *DataFrame) Column(name string) (ISeries, bool) {
	return d.df.Column(name)
}

// HasColumn checks if a column exists.
func (d *DataFrame) HasColumn(name string) bool {
	return d.df.HasColumn(name)
}

// Groups returns the grouping keys attached by GroupBy
func (d *DataFrame) Groups() []string {
	return d.df.Groups()
}

// String returns a string representation of the DataFrame.
func (d *DataFrame) String() string {
	return d.df.String()
}

// Release frees the memory used by the DataFrame.
func (d *DataFrame) Release() {
	d.df.Release()
}

// Version returns the library version.
func Version() string {
	return version.Version
}

// BuildInfo returns build information about the library.
func BuildInfo() version.BuildInfo {
	return version.Info()
}
