package dataframe

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesFrame(mem memory.Allocator) *DataFrame {
	return NewWithAllocator(mem,
		series.New("region", []string{"west", "east", "west", "north", "east"}, mem),
		series.New("units", []int64{10, 3, 20, 7, 5}, mem),
		series.New("price", []float64{1.0, 2.0, 3.0, 4.0, 6.0}, mem),
	)
}

func TestGroupByAgg(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	df := salesFrame(mem)
	defer df.Release()

	gb, err := df.GroupBy("region")
	require.NoError(t, err)
	assert.Equal(t, 3, gb.Groups())

	result, err := gb.Agg(
		Aggregation{Column: "units", Func: AggSum, Alias: "total"},
		Aggregation{Column: "price", Func: AggMean, Alias: "avg_price"},
		Aggregation{Column: "units", Func: AggCount, Alias: "n"},
		Aggregation{Column: "price", Func: AggMax, Alias: "top"},
		Aggregation{Column: "units", Func: AggMin},
	)
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, []string{"region", "total", "avg_price", "n", "top", "min_units"}, result.Columns())
	assert.Equal(t, []string{"west", "east", "north"}, stringsOf(t, result, "region"))
	assert.Equal(t, []string{"30", "8", "7"}, stringsOf(t, result, "total"))
	assert.Equal(t, []string{"2", "4", "4"}, stringsOf(t, result, "avg_price"))
	assert.Equal(t, []string{"2", "2", "1"}, stringsOf(t, result, "n"))
	assert.Equal(t, []string{"3", "6", "4"}, stringsOf(t, result, "top"))
	assert.Equal(t, []string{"10", "3", "7"}, stringsOf(t, result, "min_units"))

	total, _ := result.Column("total")
	assert.Equal(t, arrow.PrimitiveTypes.Int64, total.DataType())
	assert.False(t, result.IsGrouped())
}

func TestGroupByWithoutKeys(t *testing.T) {
	df := salesFrame(memory.NewGoAllocator())
	defer df.Release()

	gb, err := df.GroupBy()
	require.NoError(t, err)

	result, err := gb.Agg(
		Aggregation{Column: "units", Func: AggMedian, Alias: "median"},
		Aggregation{Column: "price", Func: AggStd, Alias: "std"},
	)
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, 1, result.Len())
	assert.Equal(t, []string{"7"}, stringsOf(t, result, "median"))
	col, _ := result.Column("std")
	std := col.(*series.Series[float64]).Value(0)
	assert.InDelta(t, 1.9235, std, 1e-4)
}

func TestAggregationNullHandling(t *testing.T) {
	mem := memory.NewGoAllocator()
	values, err := series.NewNullable("v", []float64{1, 0, 3}, []bool{true, false, true}, mem)
	require.NoError(t, err)
	df := New(series.New("k", []string{"a", "a", "b"}, mem), values)
	defer df.Release()

	gb, err := df.GroupBy("k")
	require.NoError(t, err)
	result, err := gb.Agg(
		Aggregation{Column: "v", Func: AggMean, Alias: "mean"},
		Aggregation{Column: "v", Func: AggCount, Alias: "count"},
		Aggregation{Column: "v", Func: AggStd, Alias: "std"},
	)
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, []string{"1", "3"}, stringsOf(t, result, "mean"))
	assert.Equal(t, []string{"1", "1"}, stringsOf(t, result, "count"))
	assert.Equal(t, []string{"<null>", "<null>"}, stringsOf(t, result, "std"))
}

func TestAggregationOnStrings(t *testing.T) {
	df := salesFrame(memory.NewGoAllocator())
	defer df.Release()

	gb, err := df.GroupBy()
	require.NoError(t, err)

	result, err := gb.Agg(Aggregation{Column: "region", Func: AggMax, Alias: "last"})
	require.NoError(t, err)
	defer result.Release()
	assert.Equal(t, []string{"west"}, stringsOf(t, result, "last"))

	_, err = gb.Agg(Aggregation{Column: "region", Func: AggMean, Alias: "bad"})
	assert.Error(t, err)

	_, err = gb.Agg(Aggregation{Column: "nope", Func: AggSum})
	assert.Error(t, err)
}

func TestSummariseEmptyFrame(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := New(series.New("v", []int64{}, mem))
	defer df.Release()

	gb, err := df.GroupBy()
	require.NoError(t, err)
	result, err := gb.Agg(
		Aggregation{Column: "v", Func: AggCount, Alias: "n"},
		Aggregation{Column: "v", Func: AggMean, Alias: "mean"},
	)
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, []string{"0"}, stringsOf(t, result, "n"))
	assert.Equal(t, []string{"<null>"}, stringsOf(t, result, "mean"))
}

func TestParseAggFunc(t *testing.T) {
	for _, name := range AggFuncNames() {
		fn, ok := ParseAggFunc(name)
		require.True(t, ok)
		assert.Equal(t, name, fn.String())
	}
	_, ok := ParseAggFunc("mode")
	assert.False(t, ok)
	assert.Equal(t, []string{"count", "max", "mean", "median", "min", "std", "sum"}, AggFuncNames())
}
