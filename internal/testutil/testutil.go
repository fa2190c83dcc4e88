// Package testutil provides common testing utilities shared by the tidyframe
// test suites:
// - Leak-checked allocator setup and cleanup
// - Standard test DataFrame creation
// - Column value extraction and DataFrame assertions
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tidyframe/internal/dataframe"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default number of rows in test DataFrames.
	defaultRowCount = 6

	// NullValue is how ColumnValues renders null cells.
	NullValue = "<null>"
)

// TestMemoryContext provides a leak-checked allocator.
type TestMemoryContext struct {
	Allocator memory.Allocator
	cleanup   func()
}

// Release asserts that everything allocated through the context was released.
func (tmc *TestMemoryContext) Release() {
	if tmc.cleanup != nil {
		tmc.cleanup()
	}
}

// SetupMemoryTest creates a checked allocator for tests. Release fails the
// test if any Arrow buffer allocated through it is still live, so release
// every frame before the deferred Release runs.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	checked := memory.NewCheckedAllocator(memory.NewGoAllocator())
	return &TestMemoryContext{
		Allocator: checked,
		cleanup: func() {
			checked.AssertSize(tb, 0)
		},
	}
}

// TestDataFrameOption configures test DataFrame creation.
type TestDataFrameOption func(*testDataFrameConfig)

type testDataFrameConfig struct {
	includeNulls bool
	rowCount     int
	withActive   bool
}

// WithNulls makes every third savings value null.
func WithNulls() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.includeNulls = true
	}
}

// WithRowCount sets the number of rows in test data.
func WithRowCount(count int) TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.rowCount = count
	}
}

// WithActiveColumn includes an 'active' boolean column.
func WithActiveColumn() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.withActive = true
	}
}

// CreateTestDataFrame creates the standard household test DataFrame.
//
// Default DataFrame includes:
// - name (string): ["Alice", "Bob", "Charlie", "David", "Eve", "Frank"]
// - category (string): ["red", "blue", "red", "green", "blue", "red"]
// - income (int64): [50, 80, 65, 40, 90, 70]
// - savings (float64): [120.5, 60, 200, 15.5, 95, 130]
func CreateTestDataFrame(allocator memory.Allocator, opts ...TestDataFrameOption) *dataframe.DataFrame {
	cfg := &testDataFrameConfig{
		rowCount: defaultRowCount,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	seriesList := []dataframe.ISeries{
		series.New("name", cycle(cfg.rowCount, "Alice", "Bob", "Charlie", "David", "Eve", "Frank"), allocator),
		series.New("category", cycle(cfg.rowCount, "red", "blue", "red", "green", "blue", "red"), allocator),
		series.New("income", cycle[int64](cfg.rowCount, 50, 80, 65, 40, 90, 70), allocator),
	}

	savings := cycle(cfg.rowCount, 120.5, 60, 200, 15.5, 95, 130)
	if cfg.includeNulls {
		valid := make([]bool, cfg.rowCount)
		for i := range valid {
			valid[i] = i%3 != 1
		}
		s, err := series.NewNullable("savings", savings, valid, allocator)
		if err != nil {
			panic(err)
		}
		seriesList = append(seriesList, s)
	} else {
		seriesList = append(seriesList, series.New("savings", savings, allocator))
	}

	if cfg.withActive {
		seriesList = append(seriesList,
			series.New("active", cycle(cfg.rowCount, true, true, false, true, false, true), allocator))
	}

	return dataframe.NewWithAllocator(allocator, seriesList...)
}

// CreateSimpleTestDataFrame creates a single int64 column a = [1, 2, 3].
func CreateSimpleTestDataFrame(allocator memory.Allocator) *dataframe.DataFrame {
	return dataframe.NewWithAllocator(allocator, series.New("a", []int64{1, 2, 3}, allocator))
}

// ColumnValues renders a column's cells as strings, NullValue for nulls.
func ColumnValues(t testing.TB, df *dataframe.DataFrame, name string) []string {
	t.Helper()

	col, ok := df.Column(name)
	require.True(t, ok, "DataFrame should have column %s", name)

	values := make([]string, col.Len())
	for i := range values {
		if col.IsNull(i) {
			values[i] = NullValue
			continue
		}
		values[i] = col.GetAsString(i)
	}
	return values
}

// AssertDataFrameEqual compares column names, types and rendered cells.
func AssertDataFrameEqual(t *testing.T, expected, actual *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, expected, "expected DataFrame should not be nil")
	require.NotNil(t, actual, "actual DataFrame should not be nil")

	assert.Equal(t, expected.Len(), actual.Len(), "DataFrame lengths should match")
	require.Equal(t, expected.Columns(), actual.Columns(), "DataFrame columns should match")

	for _, colName := range expected.Columns() {
		expectedCol, _ := expected.Column(colName)
		actualCol, _ := actual.Column(colName)
		assert.True(t, arrowTypesEqual(expectedCol, actualCol), "column %s types should match", colName)
		assert.Equal(t, ColumnValues(t, expected, colName), ColumnValues(t, actual, colName),
			"column %s data should match", colName)
	}
}

// AssertDataFrameHasColumns verifies that a DataFrame has exactly the expected columns, in order.
func AssertDataFrameHasColumns(t *testing.T, df *dataframe.DataFrame, expectedColumns []string) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Equal(t, expectedColumns, df.Columns())
}

// AssertDataFrameNotEmpty verifies that a DataFrame is not empty.
func AssertDataFrameNotEmpty(t *testing.T, df *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Positive(t, df.Len(), "DataFrame should not be empty")
	assert.Positive(t, df.Width(), "DataFrame should have columns")
}

func arrowTypesEqual(a, b dataframe.ISeries) bool {
	return a.DataType().ID() == b.DataType().ID()
}

// cycle repeats base until count values are produced.
func cycle[T any](count int, base ...T) []T {
	values := make([]T, count)
	for i := range count {
		values[i] = base[i%len(base)]
	}
	return values
}
