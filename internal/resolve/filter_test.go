package resolve

import (
	"testing"

	"github.com/paveg/tidyframe/internal/dataframe"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name       string
		predicates []string
		expected   []string
	}{
		{"quoted string", []string{"category == 'red'"}, []string{"Alice", "Charlie", "Frank"}},
		{"symbolic literal", []string{"category == red"}, []string{"Alice", "Charlie", "Frank"}},
		{"arithmetic", []string{"income * 2 > savings"}, []string{"Bob", "David", "Eve", "Frank"}},
		{"sequential predicates", []string{"category != green", "income >= 70"}, []string{"Bob", "Eve", "Frank"}},
		{"boolean logic", []string{"category == blue or income < 45"}, []string{"Bob", "David", "Eve"}},
		{"negation", []string{"not (category == red)"}, []string{"Bob", "David", "Eve"}},
		{"scalar true", []string{"True"}, []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank"}},
		{"scalar false", []string{"1 > 2"}, []string{}},
		{"reduction", []string{"income > mean(income)"}, []string{"Bob", "Eve", "Frank"}},
		{"no predicates", nil, []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := testutil.SetupMemoryTest(t)
			defer mem.Release()

			df := testutil.CreateTestDataFrame(mem.Allocator)
			defer df.Release()

			result, err := Filter(df, tt.predicates, Options{})
			require.NoError(t, err)
			defer result.Release()

			assert.Equal(t, tt.expected, testutil.ColumnValues(t, result, "name"))
			assert.Equal(t, df.Columns(), result.Columns())
		})
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	tests := []struct {
		name      string
		predicate string
	}{
		{"numeric", "income > 60"},
		{"symbolic literal", "category != red"},
		{"symbolic equality", "category == blue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := testutil.SetupMemoryTest(t)
			defer mem.Release()

			df := testutil.CreateTestDataFrame(mem.Allocator)
			defer df.Release()

			once, err := Filter(df, []string{tt.predicate}, Options{})
			require.NoError(t, err)
			defer once.Release()

			twice, err := Filter(once, []string{tt.predicate}, Options{})
			require.NoError(t, err)
			defer twice.Release()

			testutil.AssertDataFrameEqual(t, once, twice)
		})
	}
}

func TestFilterNullsDropRows(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateTestDataFrame(mem.Allocator, testutil.WithNulls())
	defer df.Release()

	result, err := Filter(df, []string{"savings > 0"}, Options{})
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, []string{"Alice", "Charlie", "David", "Frank"}, testutil.ColumnValues(t, result, "name"))
}

func TestFilterSymbolsDoNotShadowColumns(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	// "x" is both a value of kind and a column name
	df := dataframe.NewWithAllocator(mem.Allocator,
		series.New("kind", []string{"x", "y", "x"}, mem.Allocator),
		series.New("x", []string{"y", "y", "z"}, mem.Allocator),
	)
	defer df.Release()

	result, err := Filter(df, []string{"kind == x"}, Options{})
	require.NoError(t, err)
	defer result.Release()

	// compares kind to the column x, not the literal 'x'
	assert.Equal(t, []string{"y"}, testutil.ColumnValues(t, result, "kind"))
}

func TestFilterSymbolsSurviveNarrowing(t *testing.T) {
	tests := []struct {
		name       string
		predicates []string
		expected   []string
	}{
		{"repeated predicate", []string{"category != red", "category != red"}, []string{"Bob", "David", "Eve"}},
		{"label removed earlier", []string{"category == red", "category != green"}, []string{"Alice", "Charlie", "Frank"}},
		{"label compared after narrowing", []string{"category == blue", "category != red"}, []string{"Bob", "Eve"}},
		{"empty table", []string{"income > 1000", "category == red"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := testutil.SetupMemoryTest(t)
			defer mem.Release()

			df := testutil.CreateTestDataFrame(mem.Allocator)
			defer df.Release()

			result, err := Filter(df, tt.predicates, Options{})
			require.NoError(t, err)
			defer result.Release()

			assert.Equal(t, tt.expected, testutil.ColumnValues(t, result, "name"))
		})
	}
}

func TestFilterComparedLabel(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateTestDataFrame(mem.Allocator)
	defer df.Release()

	// purple is no category value, but it is compared with a string column
	result, err := Filter(df, []string{"category != purple"}, Options{})
	require.NoError(t, err)
	defer result.Release()
	assert.Equal(t, 6, result.Len())

	_, err = Filter(df, []string{"income == purple"}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, dferrors.ErrColumnDoesNotExist)
	assert.Contains(t, err.Error(), "purple")
}

func TestFilterErrors(t *testing.T) {
	tests := []struct {
		name       string
		predicates []string
		sentinel   error
	}{
		{"unknown name", []string{"colour == 'red'"}, dferrors.ErrColumnDoesNotExist},
		{"not boolean", []string{"income + 1"}, dferrors.ErrInvalidExpression},
		{"grammar violation", []string{"income > 1", "name.upper()"}, dferrors.ErrInvalidExpression},
		{"type error", []string{"name < 3"}, dferrors.ErrInvalidExpression},
		{"string literal", []string{"'red'"}, dferrors.ErrInvalidExpression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := testutil.SetupMemoryTest(t)
			defer mem.Release()

			df := testutil.CreateTestDataFrame(mem.Allocator)
			defer df.Release()

			result, err := Filter(df, tt.predicates, Options{Op: "Keep"})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), "Keep")
		})
	}
}
