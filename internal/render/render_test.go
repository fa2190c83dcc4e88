package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tidyframe/internal/dataframe"
	"github.com/paveg/tidyframe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateTestDataFrame(mem.Allocator, testutil.WithNulls())
	defer df.Release()

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, df, Options{Rows: 2, Caption: true}))
	out := buf.String()

	assert.Contains(t, out, "name")
	assert.Contains(t, out, "savings")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, NullText) // Bob's savings
	assert.NotContains(t, out, "Charlie")
	assert.Contains(t, out, "showing 2 of 6 rows x 4 columns")
}

func TestTableShowTypes(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(memory.NewGoAllocator())
	defer df.Release()

	out := String(df, Options{Rows: 10, ShowTypes: true, Caption: true})
	assert.Contains(t, out, "a <int64>")
	assert.Contains(t, out, "3 rows x 1 columns")
	assert.NotContains(t, out, "showing")
}

func TestTableGroupedCaption(t *testing.T) {
	df := testutil.CreateTestDataFrame(memory.NewGoAllocator())
	defer df.Release()
	grouped, err := df.WithGroups("category")
	require.NoError(t, err)
	defer grouped.Release()

	out := String(grouped, Options{Rows: 1, Caption: true})
	assert.Contains(t, out, "groups: category")
}

func TestTableEmpty(t *testing.T) {
	out := String(dataframe.New(), Options{Rows: 5})
	assert.Equal(t, "(empty table)", strings.TrimSpace(out))
}

func TestTableHeaderOnly(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(memory.NewGoAllocator())
	defer df.Release()

	out := String(df, Options{Rows: 0})
	assert.Contains(t, out, "a")
	assert.NotContains(t, out, "1")
}
