package dataframe

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
	"golang.org/x/exp/constraints"
)

// AggFunc names a reduction applied per group
type AggFunc int

const (
	AggSum AggFunc = iota
	AggMean
	AggStd
	AggMin
	AggMax
	AggCount
	AggMedian
)

var aggNames = map[AggFunc]string{
	AggSum:    "sum",
	AggMean:   "mean",
	AggStd:    "std",
	AggMin:    "min",
	AggMax:    "max",
	AggCount:  "count",
	AggMedian: "median",
}

func (a AggFunc) String() string {
	if name, ok := aggNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AggFunc(%d)", int(a))
}

// ParseAggFunc looks up an aggregation by its lowercase name
func ParseAggFunc(name string) (AggFunc, bool) {
	for fn, n := range aggNames {
		if n == name {
			return fn, true
		}
	}
	return 0, false
}

// AggFuncNames lists the supported aggregation names in sorted order
func AggFuncNames() []string {
	names := make([]string, 0, len(aggNames))
	for _, n := range aggNames {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Aggregation reduces Column with Func into an output column named Alias
type Aggregation struct {
	Column string
	Func   AggFunc
	Alias  string
}

// GroupBy holds rows partitioned by key columns, in first-appearance order
type GroupBy struct {
	df     *DataFrame
	keys   []string
	groups [][]int
}

// GroupBy partitions the rows by the given columns. Without columns every row
// belongs to a single group.
func (df *DataFrame) GroupBy(columns ...string) (*GroupBy, error) {
	if err := df.requireColumns("GroupBy", columns); err != nil {
		return nil, err
	}
	return &GroupBy{
		df:     df,
		keys:   append([]string(nil), columns...),
		groups: df.buildGroups(columns),
	}, nil
}

// buildGroups returns the row indices of each group in first-appearance order
func (df *DataFrame) buildGroups(columns []string) [][]int {
	if len(columns) == 0 {
		all := make([]int, df.Len())
		for i := range all {
			all[i] = i
		}
		return [][]int{all}
	}

	arrs := df.arrays(columns)
	defer releaseArrays(arrs)

	index := newRowIndex(df.Len())
	for i := 0; i < df.Len(); i++ {
		index.Put(encodeRowKey(arrs, i), i)
	}
	return index.Groups()
}

// Groups returns the number of groups
func (gb *GroupBy) Groups() int {
	return len(gb.groups)
}

// Agg applies the aggregations to every group. The result holds the key columns
// (first row of each group) followed by one column per aggregation, and is not
// grouped.
func (gb *GroupBy) Agg(aggregations ...Aggregation) (*DataFrame, error) {
	mem := gb.df.mem

	firsts := make([]int, len(gb.groups))
	for g, rows := range gb.groups {
		if len(rows) > 0 {
			firsts[g] = rows[0]
		} else {
			firsts[g] = -1
		}
	}

	keyCols := gb.df.shallowCopy(gb.keys)
	keyFrame, err := keyCols.Take(firsts)
	keyCols.Release()
	if err != nil {
		return nil, err
	}
	result := keyFrame
	result.groups = nil

	for _, agg := range aggregations {
		col, exists := gb.df.Column(agg.Column)
		if !exists {
			result.Release()
			return nil, dferrors.NewColumnNotFoundErrorWithSuggestions("Summarise", agg.Column, gb.df.order)
		}
		alias := agg.Alias
		if alias == "" {
			alias = fmt.Sprintf("%s_%s", agg.Func, agg.Column)
		}

		arr := col.Array()
		out, err := aggregate(arr, gb.groups, agg.Func, mem)
		arr.Release()
		if err != nil {
			result.Release()
			return nil, err
		}

		next, err := result.WithArray(alias, out)
		out.Release()
		result.Release()
		if err != nil {
			return nil, err
		}
		result = next
	}

	return result, nil
}

// aggregate reduces arr over each group of row indices
func aggregate(arr arrow.Array, groups [][]int, fn AggFunc, mem memory.Allocator) (arrow.Array, error) {
	if fn == AggCount {
		counts := make([]int64, len(groups))
		for g, rows := range groups {
			for _, r := range rows {
				if arr.IsValid(r) {
					counts[g]++
				}
			}
		}
		return buildArray(counts, nil, mem), nil
	}

	switch typed := arr.(type) {
	case *array.Int64:
		return aggregateNumeric[int64](typed, groups, fn, mem)
	case *array.Int32:
		return aggregateNumeric[int32](typed, groups, fn, mem)
	case *array.Float64:
		return aggregateNumeric[float64](typed, groups, fn, mem)
	case *array.Float32:
		return aggregateNumeric[float32](typed, groups, fn, mem)
	case *array.Boolean:
		ints := make([]int64, typed.Len())
		valid := make([]bool, typed.Len())
		for i := range ints {
			valid[i] = typed.IsValid(i)
			if valid[i] && typed.Value(i) {
				ints[i] = 1
			}
		}
		asInt := buildArray(ints, valid, mem)
		defer asInt.Release()
		return aggregateNumeric[int64](asInt.(*array.Int64), groups, fn, mem)
	case *array.String:
		return aggregateStrings(typed, groups, fn, mem)
	default:
		return nil, dferrors.NewUnsupportedTypeError("Summarise", arr.DataType().String())
	}
}

// groupValues collects the non-null values of a group
func groupValues[T any, A valueArray[T]](arr A, rows []int) []T {
	values := make([]T, 0, len(rows))
	for _, r := range rows {
		if arr.IsValid(r) {
			values = append(values, arr.Value(r))
		}
	}
	return values
}

func aggregateNumeric[T constraints.Integer | constraints.Float, A valueArray[T]](
	arr A, groups [][]int, fn AggFunc, mem memory.Allocator,
) (arrow.Array, error) {
	_, isFloat := any(T(0)).(float64)
	if _, f32 := any(T(0)).(float32); f32 {
		isFloat = true
	}

	n := len(groups)
	floats := make([]float64, n)
	ints := make([]int64, n)
	valid := make([]bool, n)

	for g, rows := range groups {
		values := groupValues[T](arr, rows)
		switch fn {
		case AggSum:
			valid[g] = true
			if isFloat {
				floats[g] = float64(sumOf(values))
			} else {
				ints[g] = int64(sumOf(values))
			}
		case AggMean:
			floats[g], valid[g] = meanOf(values)
		case AggStd:
			floats[g], valid[g] = stdOf(values, 1)
		case AggMedian:
			floats[g], valid[g] = medianOf(values)
		case AggMin, AggMax:
			if len(values) == 0 {
				continue
			}
			pick := slices.Min(values)
			if fn == AggMax {
				pick = slices.Max(values)
			}
			valid[g] = true
			floats[g], ints[g] = float64(pick), int64(pick)
		default:
			return nil, dferrors.NewInvalidInputError("Summarise", fmt.Sprintf("unsupported aggregation %s", fn))
		}
	}

	keepsIntType := !isFloat && (fn == AggSum || fn == AggMin || fn == AggMax)
	if keepsIntType {
		return buildArray(ints, valid, mem), nil
	}
	return buildArray(floats, valid, mem), nil
}

func aggregateStrings(arr *array.String, groups [][]int, fn AggFunc, mem memory.Allocator) (arrow.Array, error) {
	if fn != AggMin && fn != AggMax {
		return nil, dferrors.NewUnsupportedTypeError("Summarise",
			fmt.Sprintf("%s of %s", fn, arr.DataType()))
	}
	out := make([]string, len(groups))
	valid := make([]bool, len(groups))
	for g, rows := range groups {
		values := groupValues[string](arr, rows)
		if len(values) == 0 {
			continue
		}
		valid[g] = true
		if fn == AggMin {
			out[g] = slices.Min(values)
		} else {
			out[g] = slices.Max(values)
		}
	}
	return buildArray(out, valid, mem), nil
}

func sumOf[T constraints.Integer | constraints.Float](values []T) T {
	var total T
	for _, v := range values {
		total += v
	}
	return total
}

func meanOf[T constraints.Integer | constraints.Float](values []T) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var total float64
	for _, v := range values {
		total += float64(v)
	}
	return total / float64(len(values)), true
}

// stdOf returns the standard deviation with ddof delta degrees of freedom
func stdOf[T constraints.Integer | constraints.Float](values []T, ddof int) (float64, bool) {
	if len(values)-ddof <= 0 {
		return 0, false
	}
	mean, _ := meanOf(values)
	var ss float64
	for _, v := range values {
		d := float64(v) - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-ddof)), true
}

func medianOf[T constraints.Integer | constraints.Float](values []T) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid]), true
	}
	return (float64(sorted[mid-1]) + float64(sorted[mid])) / 2, true
}

// buildArray builds an Arrow array from values; nil valid means all present
func buildArray[T any](values []T, valid []bool, mem memory.Allocator) arrow.Array {
	s, err := series.NewNullable("", values, valid, mem)
	if err != nil {
		panic(err)
	}
	defer s.Release()
	return s.Array()
}

// DescribeAggregations renders aggregations for error messages and traces
func DescribeAggregations(aggs []Aggregation) string {
	parts := make([]string, len(aggs))
	for i, a := range aggs {
		parts[i] = fmt.Sprintf("%s=%s(%s)", a.Alias, a.Func, a.Column)
	}
	return strings.Join(parts, ", ")
}
