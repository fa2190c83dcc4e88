package series

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeries(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("string series", func(t *testing.T) {
		s := New("names", []string{"alice", "bob", "charlie"}, mem)
		defer s.Release()

		assert.Equal(t, "names", s.Name())
		assert.Equal(t, 3, s.Len())
		assert.Equal(t, []string{"alice", "bob", "charlie"}, s.Values())
		assert.Equal(t, arrow.BinaryTypes.String, s.DataType())
	})

	t.Run("int64 series", func(t *testing.T) {
		s := New("ages", []int64{25, 30, 35}, mem)
		defer s.Release()

		assert.Equal(t, []int64{25, 30, 35}, s.Values())
		assert.Equal(t, int64(30), s.Value(1))
		assert.Equal(t, arrow.PrimitiveTypes.Int64, s.DataType())
	})

	t.Run("float64 series", func(t *testing.T) {
		s := New("scores", []float64{85.5, 92.0, 78.3}, mem)
		defer s.Release()

		assert.Equal(t, []float64{85.5, 92.0, 78.3}, s.Values())
	})

	t.Run("bool series", func(t *testing.T) {
		s := New("active", []bool{true, false, true}, mem)
		defer s.Release()

		assert.Equal(t, []bool{true, false, true}, s.Values())
	})

	t.Run("int32 and float32 series", func(t *testing.T) {
		i := New("i", []int32{1, 2}, mem)
		defer i.Release()
		f := New("f", []float32{1.5, 2.5}, mem)
		defer f.Release()

		assert.Equal(t, []int32{1, 2}, i.Values())
		assert.Equal(t, []float32{1.5, 2.5}, f.Values())
	})

	t.Run("empty series", func(t *testing.T) {
		s := New("empty", []string{}, mem)
		defer s.Release()

		assert.Equal(t, 0, s.Len())
		assert.Empty(t, s.Values())
	})
}

func TestNewSafeUnsupportedType(t *testing.T) {
	_, err := NewSafe("bytes", []uint8{1, 2}, memory.NewGoAllocator())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")

	assert.Panics(t, func() {
		New("bytes", []uint8{1, 2}, memory.NewGoAllocator())
	})
}

func TestNewNullable(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	s, err := NewNullable("income", []float64{10, 0, 30}, []bool{true, false, true}, mem)
	require.NoError(t, err)
	defer s.Release()

	assert.False(t, s.IsNull(0))
	assert.True(t, s.IsNull(1))
	assert.Equal(t, []float64{10, 0, 30}, s.Values())
	assert.Equal(t, "", s.GetAsString(1))
	assert.Equal(t, "30", s.GetAsString(2))

	_, err = NewNullable("bad", []int64{1, 2}, []bool{true}, mem)
	assert.Error(t, err)
}

func TestFromArray(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b := array.NewInt64Builder(mem)
	b.AppendValues([]int64{1, 2, 3}, nil)
	arr := b.NewArray()
	b.Release()

	col, err := FromArray("a", arr)
	require.NoError(t, err)
	arr.Release()

	typed, ok := col.(*Series[int64])
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, typed.Values())

	renamed := col.Rename("b")
	assert.Equal(t, "b", renamed.Name())
	assert.Equal(t, "a", col.Name())

	col.Release()
	renamed.Release()
}

func TestFromArrayUnsupported(t *testing.T) {
	mem := memory.NewGoAllocator()
	b := array.NewUint8Builder(mem)
	defer b.Release()
	b.Append(1)
	arr := b.NewArray()
	defer arr.Release()

	_, err := FromArray("u", arr)
	assert.Error(t, err)
}

func TestGetAsString(t *testing.T) {
	mem := memory.NewGoAllocator()

	tests := []struct {
		name string
		col  Column
		want []string
	}{
		{"strings", New("s", []string{"a", "b"}, mem), []string{"a", "b"}},
		{"ints", New("i", []int64{-1, 42}, mem), []string{"-1", "42"}},
		{"int32", New("i32", []int32{7}, mem), []string{"7"}},
		{"floats", New("f", []float64{1.5, 2}, mem), []string{"1.5", "2"}},
		{"bools", New("b", []bool{true, false}, mem), []string{"true", "false"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer tt.col.Release()
			for i, want := range tt.want {
				assert.Equal(t, want, tt.col.GetAsString(i))
			}
			assert.Equal(t, "", tt.col.GetAsString(len(tt.want)))
		})
	}
}

func TestSeriesString(t *testing.T) {
	s := New("ages", []int64{1, 2}, memory.NewGoAllocator())
	defer s.Release()

	assert.Equal(t, "Series[int64]: ages (len=2)", s.String())
}

func TestSeriesArrayRetains(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	s := New("x", []int64{1}, mem)
	arr := s.Array()
	s.Release()

	assert.Equal(t, 1, arr.Len())
	arr.Release()
}
