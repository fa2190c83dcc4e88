package verb_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tidyframe/internal/dataframe"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/testutil"
	"github.com/paveg/tidyframe/internal/verb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, df *dataframe.DataFrame, v verb.Verb) *dataframe.DataFrame {
	t.Helper()
	result, err := v.Apply(df)
	require.NoError(t, err, v.String())
	return result
}

func TestRun(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateTestDataFrame(mem.Allocator)
	defer df.Release()

	result, err := verb.Run(df, nil,
		verb.NewKeep("income > 60"),
		verb.NewCreate(verb.Def("double", "income * 2")),
		verb.NewSelect("name", "double"),
	)
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, []string{"name", "double"}, result.Columns())
	assert.Equal(t, []string{"Bob", "Charlie", "Eve", "Frank"}, testutil.ColumnValues(t, result, "name"))
	assert.Equal(t, []string{"160", "130", "180", "140"}, testutil.ColumnValues(t, result, "double"))

	// the input is untouched
	assert.Equal(t, 6, df.Len())
	assert.Equal(t, 4, df.Width())
}

func TestRunWithoutVerbs(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateTestDataFrame(mem.Allocator)
	defer df.Release()

	result, err := verb.Run(df, nil)
	require.NoError(t, err)
	defer result.Release()

	testutil.AssertDataFrameEqual(t, df, result)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateTestDataFrame(mem.Allocator)
	defer df.Release()

	var applied []string
	runner := func(v verb.Verb, input *dataframe.DataFrame) (*dataframe.DataFrame, error) {
		applied = append(applied, v.String())
		return v.Apply(input)
	}

	result, err := verb.Run(df, runner,
		verb.NewKeep("income > 60"),
		verb.NewCreate(verb.Def("x", "missing + 1")),
		verb.NewSelect("name"),
	)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Len(t, applied, 2)

	var stepErr *verb.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 1, stepErr.Index)
	assert.Equal(t, `create(x="missing + 1")`, stepErr.Verb)
	assert.ErrorIs(t, err, dferrors.ErrColumnDoesNotExist)
	assert.Contains(t, err.Error(), "step 2 create")
}

func TestVerbStrings(t *testing.T) {
	right := testutil.CreateSimpleTestDataFrame(memory.NewGoAllocator())
	defer right.Release()
	merge := verb.NewMergeWith(right, "left_join", "a")
	defer merge.Release()

	tests := []struct {
		verb verb.Verb
		want string
	}{
		{verb.NewKeep("a > 1", "b"), `keep("a > 1", "b")`},
		{verb.NewFilter("a > 1"), `filter("a > 1")`},
		{verb.NewMutate(verb.Def("b", "a * 2")), `mutate(b="a * 2")`},
		{verb.NewTransmute(verb.Def("b", "a")), `transmute(b="a")`},
		{verb.NewSelect("a", "b"), "select(a, b)"},
		{verb.NewRename(map[string]string{"b": "y", "a": "x"}), "rename(a -> x, b -> y)"},
		{verb.NewDistinct(), "distinct()"},
		{verb.NewSampleNSeeded(3, 7), "sample_n(3, seed=7)"},
		{verb.NewSliceRows(1, 4), "slice_rows(1, 4)"},
		{verb.NewArrange(verb.Asc("a"), verb.Desc("b")), "arrange(a ASC, b DESC)"},
		{verb.NewGroupBy("a"), "group_by(a)"},
		{verb.NewUngroup(), "ungroup()"},
		{verb.NewSummarise(verb.Def("m", "mean(a)")), `summarise(m="mean(a)")`},
		{verb.NewLongToWide(verb.LongToWideOptions{Index: []string{"id"}, Columns: "k", Values: "v"}),
			"long_to_wide(index=[id], columns=k, values=v)"},
		{merge, "merge_with(left_join on a)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.verb.String())
	}
}
