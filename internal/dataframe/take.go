package dataframe

import (
	"fmt"
	"math/rand"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
)

// valueArray is satisfied by the typed Arrow arrays the engine supports
type valueArray[T any] interface {
	arrow.Array
	Value(i int) T
}

// valueBuilder is satisfied by the matching typed Arrow builders
type valueBuilder[T any] interface {
	array.Builder
	Append(v T)
}

// Take returns a new DataFrame with the rows at indices, in that order.
// An index of -1 produces a null row.
func (df *DataFrame) Take(indices []int) (*DataFrame, error) {
	length := df.Len()
	for _, idx := range indices {
		if idx < -1 || idx >= length {
			return nil, dferrors.NewIndexOutOfBoundsError("Take", idx, length)
		}
	}

	result := make([]ISeries, 0, df.Width())
	for _, name := range df.order {
		arr := df.columns[name].Array()
		taken, err := TakeArray(arr, indices, df.mem)
		arr.Release()
		if err != nil {
			releaseAll(result)
			return nil, err
		}
		s, err := series.FromArray(name, taken)
		taken.Release()
		if err != nil {
			releaseAll(result)
			return nil, dferrors.NewInternalError("Take", err)
		}
		result = append(result, s)
	}

	out := newWithAllocator(df.mem, result...)
	out.groups = append([]string(nil), df.groups...)
	return out, nil
}

// TakeArray gathers arr at indices into a new array; -1 yields null
func TakeArray(arr arrow.Array, indices []int, mem memory.Allocator) (arrow.Array, error) {
	switch typed := arr.(type) {
	case *array.String:
		return takeTyped[string](typed, array.NewStringBuilder(mem), indices), nil
	case *array.Int64:
		return takeTyped[int64](typed, array.NewInt64Builder(mem), indices), nil
	case *array.Int32:
		return takeTyped[int32](typed, array.NewInt32Builder(mem), indices), nil
	case *array.Float64:
		return takeTyped[float64](typed, array.NewFloat64Builder(mem), indices), nil
	case *array.Float32:
		return takeTyped[float32](typed, array.NewFloat32Builder(mem), indices), nil
	case *array.Boolean:
		return takeTyped[bool](typed, array.NewBooleanBuilder(mem), indices), nil
	default:
		return nil, dferrors.NewUnsupportedTypeError("Take", arr.DataType().String())
	}
}

func takeTyped[T any, A valueArray[T], B valueBuilder[T]](arr A, builder B, indices []int) arrow.Array {
	defer builder.Release()
	builder.Reserve(len(indices))
	for _, idx := range indices {
		if idx < 0 || arr.IsNull(idx) {
			builder.AppendNull()
			continue
		}
		builder.Append(arr.Value(idx))
	}
	return builder.NewArray()
}

// Filter keeps rows where mask is true. Null mask slots count as false.
func (df *DataFrame) Filter(mask *array.Boolean) (*DataFrame, error) {
	if mask.Len() != df.Len() {
		return nil, dferrors.NewValidationError("Filter", "",
			fmt.Sprintf("mask has %d rows, expected %d", mask.Len(), df.Len()))
	}

	indices := make([]int, 0, mask.Len())
	for i := 0; i < mask.Len(); i++ {
		if mask.IsValid(i) && mask.Value(i) {
			indices = append(indices, i)
		}
	}
	return df.Take(indices)
}

// Sample returns n rows drawn without replacement, in sampled order.
// A seed of zero draws from an unseeded source.
func (df *DataFrame) Sample(n int, seed int64) (*DataFrame, error) {
	length := df.Len()
	if n < 0 || n > length {
		return nil, dferrors.NewInvalidInputError("SampleN",
			fmt.Sprintf("cannot take a sample of %d rows from %d rows without replacement", n, length))
	}

	var perm []int
	if seed != 0 {
		//nolint:gosec // sampling does not need a cryptographic source
		perm = rand.New(rand.NewSource(seed)).Perm(length)
	} else {
		//nolint:gosec // sampling does not need a cryptographic source
		perm = rand.Perm(length)
	}
	return df.Take(perm[:n])
}

// Distinct keeps the first occurrence of each distinct combination of the given
// columns (all columns when none are given), preserving row order.
func (df *DataFrame) Distinct(columns ...string) (*DataFrame, error) {
	if len(columns) == 0 {
		columns = df.order
	}
	if err := df.requireColumns("Distinct", columns); err != nil {
		return nil, err
	}

	arrs := df.arrays(columns)
	defer releaseArrays(arrs)

	seen := newRowIndex(df.Len())
	indices := make([]int, 0, df.Len())
	for i := 0; i < df.Len(); i++ {
		key := encodeRowKey(arrs, i)
		if _, exists := seen.Get(key); exists {
			continue
		}
		seen.Put(key, i)
		indices = append(indices, i)
	}
	return df.Take(indices)
}
