package dataframe

import (
	"cmp"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"golang.org/x/exp/constraints"
)

// Sort returns a new DataFrame sorted by a single column
func (df *DataFrame) Sort(column string, ascending bool) (*DataFrame, error) {
	return df.SortBy([]string{column}, []bool{ascending})
}

// SortBy returns a new DataFrame stably sorted by multiple columns. Each column
// has its own direction; nulls sort last in either direction.
func (df *DataFrame) SortBy(columns []string, ascending []bool) (*DataFrame, error) {
	if len(columns) != len(ascending) {
		return nil, dferrors.NewInvalidInputError("Arrange",
			"number of columns must match number of sort directions")
	}
	if err := df.requireColumns("Arrange", columns); err != nil {
		return nil, err
	}

	arrs := df.arrays(columns)
	defer releaseArrays(arrs)

	indices := make([]int, df.Len())
	for i := range indices {
		indices[i] = i
	}

	slices.SortStableFunc(indices, func(a, b int) int {
		for k, arr := range arrs {
			if c := compareRows(arr, a, b, ascending[k]); c != 0 {
				return c
			}
		}
		return 0
	})

	return df.Take(indices)
}

// compareRows orders rows i and j of arr, keeping nulls after all values
func compareRows(arr arrow.Array, i, j int, ascending bool) int {
	iNull, jNull := arr.IsNull(i), arr.IsNull(j)
	switch {
	case iNull && jNull:
		return 0
	case iNull:
		return 1
	case jNull:
		return -1
	}

	c := compareValid(arr, i, j)
	if !ascending {
		c = -c
	}
	return c
}

func compareValid(arr arrow.Array, i, j int) int {
	switch typed := arr.(type) {
	case *array.String:
		return compareOrdered(typed.Value(i), typed.Value(j))
	case *array.Int64:
		return compareOrdered(typed.Value(i), typed.Value(j))
	case *array.Int32:
		return compareOrdered(typed.Value(i), typed.Value(j))
	case *array.Float64:
		return compareOrdered(typed.Value(i), typed.Value(j))
	case *array.Float32:
		return compareOrdered(typed.Value(i), typed.Value(j))
	case *array.Boolean:
		return compareBool(typed.Value(i), typed.Value(j))
	default:
		return 0
	}
}

func compareOrdered[T constraints.Ordered](a, b T) int {
	return cmp.Compare(a, b)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
