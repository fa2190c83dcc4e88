package io_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tidyframe/internal/dataframe"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/io"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnType(t *testing.T, df *dataframe.DataFrame, name string) arrow.Type {
	t.Helper()
	col, ok := df.Column(name)
	require.True(t, ok)
	return col.DataType().ID()
}

func TestCSVReader(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	t.Run("reads simple CSV with headers", func(t *testing.T) {
		csvData := `name,age,salary,active
Alice,25,50000.5,true
Bob,30,60000,FALSE
Charlie,35,70000.25,true`

		df, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem.Allocator).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, 3, df.Len())
		assert.Equal(t, []string{"name", "age", "salary", "active"}, df.Columns())
		assert.Equal(t, arrow.STRING, columnType(t, df, "name"))
		assert.Equal(t, arrow.INT64, columnType(t, df, "age"))
		assert.Equal(t, arrow.FLOAT64, columnType(t, df, "salary"))
		assert.Equal(t, arrow.BOOL, columnType(t, df, "active"))
		assert.Equal(t, []string{"true", "false", "true"}, testutil.ColumnValues(t, df, "active"))
	})

	t.Run("reads CSV without headers", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.Header = false

		df, err := io.NewCSVReader(strings.NewReader("Alice,25\nBob,30"), options, mem.Allocator).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, 2, df.Len())
		assert.Equal(t, []string{"column_0", "column_1"}, df.Columns())
	})

	t.Run("reads CSV with custom delimiter", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.Delimiter = ';'

		df, err := io.NewCSVReader(strings.NewReader("name;age\nAlice;25\nBob;30"), options, mem.Allocator).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, []string{"25", "30"}, testutil.ColumnValues(t, df, "age"))
	})

	t.Run("handles empty CSV", func(t *testing.T) {
		df, err := io.NewCSVReader(strings.NewReader(""), io.DefaultCSVOptions(), mem.Allocator).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, 0, df.Len())
		assert.Equal(t, 0, df.Width())
	})

	t.Run("handles CSV with only headers", func(t *testing.T) {
		df, err := io.NewCSVReader(strings.NewReader("name,age,salary"), io.DefaultCSVOptions(), mem.Allocator).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, 0, df.Len())
		assert.Equal(t, []string{"name", "age", "salary"}, df.Columns())
	})

	t.Run("empty cells are nulls", func(t *testing.T) {
		csvData := `name,age
Alice,
,30
Bob,25`

		df, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem.Allocator).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, arrow.INT64, columnType(t, df, "age"))
		assert.Equal(t, []string{testutil.NullValue, "30", "25"}, testutil.ColumnValues(t, df, "age"))
		assert.Equal(t, []string{"Alice", testutil.NullValue, "Bob"}, testutil.ColumnValues(t, df, "name"))
	})

	t.Run("custom null markers", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.NullValues = []string{"NA", ""}

		df, err := io.NewCSVReader(strings.NewReader("x\n1.5\nNA\n2"), options, mem.Allocator).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, arrow.FLOAT64, columnType(t, df, "x"))
		assert.Equal(t, []string{"1.5", testutil.NullValue, "2"}, testutil.ColumnValues(t, df, "x"))
	})

	t.Run("quoted values", func(t *testing.T) {
		csvData := `name,quote
"Doe, John","He said ""Hello"""`

		df, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem.Allocator).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, []string{"Doe, John"}, testutil.ColumnValues(t, df, "name"))
		assert.Equal(t, []string{`He said "Hello"`}, testutil.ColumnValues(t, df, "quote"))
	})

	t.Run("comments and leading space", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.Comment = '#'
		options.SkipInitialSpace = true

		csvData := "name, age\n# skipped\nAlice, 25"
		df, err := io.NewCSVReader(strings.NewReader(csvData), options, mem.Allocator).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, []string{"name", "age"}, df.Columns())
		assert.Equal(t, []string{"25"}, testutil.ColumnValues(t, df, "age"))
	})
}

func TestCSVReaderErrors(t *testing.T) {
	t.Run("inconsistent column counts", func(t *testing.T) {
		csvData := "name,age\nAlice,25\nBob"
		_, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), nil).Read()
		assert.Error(t, err)
	})

	t.Run("duplicate headers", func(t *testing.T) {
		csvData := "a,b,a\n1,2,3"
		_, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), nil).Read()
		require.Error(t, err)

		var dfErr *dferrors.DataFrameError
		require.ErrorAs(t, err, &dfErr)
		assert.Equal(t, "ReadCSV", dfErr.Op)
		assert.Equal(t, "a", dfErr.Column)
	})
}

func TestCSVWriter(t *testing.T) {
	mem := memory.NewGoAllocator()

	newFrame := func() *dataframe.DataFrame {
		return dataframe.NewWithAllocator(mem,
			series.New("name", []string{"Alice", "Bob"}, mem),
			series.New("age", []int64{25, 30}, mem),
			series.New("score", []float64{1.5, 2}, mem),
		)
	}

	tests := []struct {
		name     string
		options  func(*io.CSVOptions)
		expected string
	}{
		{
			name:     "with headers",
			options:  func(*io.CSVOptions) {},
			expected: "name,age,score\nAlice,25,1.5\nBob,30,2\n",
		},
		{
			name:     "without headers",
			options:  func(o *io.CSVOptions) { o.Header = false },
			expected: "Alice,25,1.5\nBob,30,2\n",
		},
		{
			name:     "custom delimiter",
			options:  func(o *io.CSVOptions) { o.Delimiter = '\t' },
			expected: "name\tage\tscore\nAlice\t25\t1.5\nBob\t30\t2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df := newFrame()
			defer df.Release()

			options := io.DefaultCSVOptions()
			tt.options(&options)

			var output strings.Builder
			require.NoError(t, io.NewCSVWriter(&output, options).Write(df))
			assert.Equal(t, tt.expected, output.String())
		})
	}
}

func TestCSVWriterNulls(t *testing.T) {
	mem := memory.NewGoAllocator()
	savings, err := series.NewNullable("savings", []float64{1, 0, 3}, []bool{true, false, true}, mem)
	require.NoError(t, err)
	df := dataframe.NewWithAllocator(mem, savings)
	defer df.Release()

	options := io.DefaultCSVOptions()
	options.NullValues = []string{"NA"}

	var output strings.Builder
	require.NoError(t, io.NewCSVWriter(&output, options).Write(df))
	assert.Equal(t, "savings\n1\nNA\n3\n", output.String())
}

func TestCSVRoundTrip(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateTestDataFrame(mem.Allocator, testutil.WithNulls(), testutil.WithActiveColumn())
	defer df.Release()

	var buf bytes.Buffer
	require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))

	result, err := io.NewCSVReader(&buf, io.DefaultCSVOptions(), mem.Allocator).Read()
	require.NoError(t, err)
	defer result.Release()

	testutil.AssertDataFrameEqual(t, df, result)
}
