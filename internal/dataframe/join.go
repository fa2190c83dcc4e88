package dataframe

import (
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
)

// JoinType represents the type of join operation
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullOuterJoin
)

// joinLabels maps the merge labels accepted by MergeWith to join types
var joinLabels = map[string]JoinType{
	"inner_join": InnerJoin,
	"left_join":  LeftJoin,
	"right_join": RightJoin,
	"outer_join": FullOuterJoin,
}

// ParseJoinType resolves a merge label such as "left_join"
func ParseJoinType(label string) (JoinType, error) {
	if jt, ok := joinLabels[label]; ok {
		return jt, nil
	}
	return 0, dferrors.NewUnknownJoinTypeError("MergeWith", label, JoinLabels())
}

// JoinLabels lists the accepted merge labels
func JoinLabels() []string {
	labels := make([]string, 0, len(joinLabels))
	for l := range joinLabels {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

func (jt JoinType) String() string {
	for label, t := range joinLabels {
		if t == jt {
			return label
		}
	}
	return fmt.Sprintf("JoinType(%d)", int(jt))
}

// JoinOptions specifies parameters for join operations
type JoinOptions struct {
	Type        JoinType
	On          []string // Key columns present in both frames
	LeftSuffix  string   // Appended to overlapping left columns; defaults to "_x"
	RightSuffix string   // Appended to overlapping right columns; defaults to "_y"
}

// Join combines df with right on the key columns. Keys appear once; other
// columns present on both sides get suffixes; rows absent on one side get
// nulls. Inner and left joins follow left row order with right matches in
// right order; right joins follow right row order; full outer joins are the
// left join followed by the unmatched right rows.
func (df *DataFrame) Join(right *DataFrame, options *JoinOptions) (*DataFrame, error) {
	if len(options.On) == 0 {
		return nil, dferrors.NewInvalidInputError("MergeWith", "at least one key column is required")
	}
	if err := validateJoinKeys(df, right, options.On); err != nil {
		return nil, err
	}
	leftSuffix, rightSuffix := options.LeftSuffix, options.RightSuffix
	if leftSuffix == "" {
		leftSuffix = "_x"
	}
	if rightSuffix == "" {
		rightSuffix = "_y"
	}
	if leftSuffix == rightSuffix {
		return nil, dferrors.NewInvalidInputError("MergeWith", "left and right suffixes must differ")
	}

	leftArrs := df.arrays(options.On)
	defer releaseArrays(leftArrs)
	rightArrs := right.arrays(options.On)
	defer releaseArrays(rightArrs)

	rightIndex := newRowIndex(right.Len())
	for i := 0; i < right.Len(); i++ {
		rightIndex.Put(encodeRowKey(rightArrs, i), i)
	}

	var leftIndices, rightIndices []int
	switch options.Type {
	case InnerJoin:
		leftIndices, rightIndices = matchRows(df.Len(), leftArrs, rightIndex, false)
	case LeftJoin:
		leftIndices, rightIndices = matchRows(df.Len(), leftArrs, rightIndex, true)
	case RightJoin:
		leftIndices, rightIndices = performRightJoin(df, right, leftArrs, rightArrs)
	case FullOuterJoin:
		leftIndices, rightIndices = matchRows(df.Len(), leftArrs, rightIndex, true)
		matched := make([]bool, right.Len())
		for _, r := range rightIndices {
			if r >= 0 {
				matched[r] = true
			}
		}
		for r, ok := range matched {
			if !ok {
				leftIndices = append(leftIndices, -1)
				rightIndices = append(rightIndices, r)
			}
		}
	default:
		return nil, dferrors.NewInvalidInputError("MergeWith", fmt.Sprintf("unsupported join type: %v", options.Type))
	}

	return df.buildJoinResult(right, options.On, leftIndices, rightIndices, leftSuffix, rightSuffix)
}

// validateJoinKeys ensures all join keys exist in both frames with comparable types
func validateJoinKeys(left, right *DataFrame, keys []string) error {
	for _, key := range keys {
		if !left.HasColumn(key) {
			return dferrors.NewColumnNotFoundErrorWithSuggestions("MergeWith", key, left.order).
				WithHint("key is missing from the left frame")
		}
		if !right.HasColumn(key) {
			return dferrors.NewColumnNotFoundErrorWithSuggestions("MergeWith", key, right.order).
				WithHint("key is missing from the right frame")
		}
		lt, rt := left.columns[key].DataType(), right.columns[key].DataType()
		if !arrow.TypeEqual(lt, rt) {
			return dferrors.NewValidationError("MergeWith", key,
				fmt.Sprintf("key types differ: %s vs %s", lt, rt))
		}
	}
	return nil
}

// matchRows pairs every left row with its right matches; keepUnmatched adds
// left rows without a match paired with -1.
func matchRows(leftLen int, leftArrs []arrow.Array, rightIndex *rowIndex, keepUnmatched bool) ([]int, []int) {
	var leftIndices, rightIndices []int
	for i := 0; i < leftLen; i++ {
		if rightRows, exists := rightIndex.Get(encodeRowKey(leftArrs, i)); exists {
			for _, rightIdx := range rightRows {
				leftIndices = append(leftIndices, i)
				rightIndices = append(rightIndices, rightIdx)
			}
		} else if keepUnmatched {
			leftIndices = append(leftIndices, i)
			rightIndices = append(rightIndices, -1)
		}
	}
	return leftIndices, rightIndices
}

// performRightJoin walks right rows in order, each with its left matches
func performRightJoin(left, right *DataFrame, leftArrs, rightArrs []arrow.Array) ([]int, []int) {
	leftIndex := newRowIndex(left.Len())
	for i := 0; i < left.Len(); i++ {
		leftIndex.Put(encodeRowKey(leftArrs, i), i)
	}
	r, l := matchRows(right.Len(), rightArrs, leftIndex, true)
	return l, r
}

// buildJoinResult assembles keys, left columns and right columns from the
// paired row indices
func (df *DataFrame) buildJoinResult(
	right *DataFrame, keys []string, leftIndices, rightIndices []int, leftSuffix, rightSuffix string,
) (*DataFrame, error) {
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}

	var resultSeries []ISeries
	fail := func(err error) (*DataFrame, error) {
		releaseAll(resultSeries)
		return nil, err
	}

	add := func(name string, src arrow.Array, indices []int) error {
		taken, err := TakeArray(src, indices, df.mem)
		if err != nil {
			return err
		}
		s, err := series.FromArray(name, taken)
		taken.Release()
		if err != nil {
			return dferrors.NewInternalError("MergeWith", err)
		}
		resultSeries = append(resultSeries, s)
		return nil
	}

	for _, name := range df.order {
		if isKey[name] {
			if err := df.addJoinKey(right, name, leftIndices, rightIndices, &resultSeries); err != nil {
				return fail(err)
			}
			continue
		}
		outName := name
		if right.HasColumn(name) {
			outName = name + leftSuffix
		}
		arr := df.columns[name].Array()
		err := add(outName, arr, leftIndices)
		arr.Release()
		if err != nil {
			return fail(err)
		}
	}

	for _, name := range right.order {
		if isKey[name] {
			continue
		}
		outName := name
		if df.HasColumn(name) {
			outName = name + rightSuffix
		}
		arr := right.columns[name].Array()
		err := add(outName, arr, rightIndices)
		arr.Release()
		if err != nil {
			return fail(err)
		}
	}

	names := make(map[string]bool, len(resultSeries))
	for _, s := range resultSeries {
		if names[s.Name()] {
			return fail(dferrors.NewValidationError("MergeWith", s.Name(), "suffixed column collides with an existing column"))
		}
		names[s.Name()] = true
	}

	return newWithAllocator(df.mem, resultSeries...), nil
}

// addJoinKey emits a key column taking each value from whichever side has the row
func (df *DataFrame) addJoinKey(right *DataFrame, name string, leftIndices, rightIndices []int, out *[]ISeries) error {
	leftArr := df.columns[name].Array()
	defer leftArr.Release()
	rightArr := right.columns[name].Array()
	defer rightArr.Release()

	combined, err := array.Concatenate([]arrow.Array{leftArr, rightArr}, df.mem)
	if err != nil {
		return dferrors.NewInternalError("MergeWith", err)
	}
	defer combined.Release()

	indices := make([]int, len(leftIndices))
	for i := range indices {
		if leftIndices[i] >= 0 {
			indices[i] = leftIndices[i]
		} else {
			indices[i] = leftArr.Len() + rightIndices[i]
		}
	}

	taken, err := TakeArray(combined, indices, df.mem)
	if err != nil {
		return err
	}
	s, err := series.FromArray(name, taken)
	taken.Release()
	if err != nil {
		return dferrors.NewInternalError("MergeWith", err)
	}
	*out = append(*out, s)
	return nil
}
