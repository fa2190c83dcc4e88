package dataframe

import (
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
)

// MeltOptions configures a wide-to-long reshape
type MeltOptions struct {
	IDVars    []string // Columns repeated on every output row
	ValueVars []string // Columns unpivoted; defaults to every non-id column
	VarName   string   // Defaults to "variable"
	ValueName string   // Defaults to "value"
}

// PivotOptions configures a long-to-wide reshape
type PivotOptions struct {
	Index   []string // Columns identifying an output row
	Columns string   // Column whose values become output column names
	Values  string   // Column whose values fill the cells
}

// Melt unpivots value columns into variable/value pairs. Output rows are
// ordered by value column, then by input row.
func (df *DataFrame) Melt(opts MeltOptions) (*DataFrame, error) {
	if opts.VarName == "" {
		opts.VarName = "variable"
	}
	if opts.ValueName == "" {
		opts.ValueName = "value"
	}
	if err := df.requireColumns("WideToLong", opts.IDVars); err != nil {
		return nil, err
	}
	if opts.ValueVars == nil {
		for _, name := range df.order {
			if !slices.Contains(opts.IDVars, name) {
				opts.ValueVars = append(opts.ValueVars, name)
			}
		}
	}
	if err := df.requireColumns("WideToLong", opts.ValueVars); err != nil {
		return nil, err
	}
	for _, name := range []string{opts.VarName, opts.ValueName} {
		if slices.Contains(opts.IDVars, name) {
			return nil, dferrors.NewValidationError("WideToLong", name, "output column collides with an id column")
		}
	}
	if opts.VarName == opts.ValueName {
		return nil, dferrors.NewValidationError("WideToLong", opts.VarName, "variable and value columns need distinct names")
	}

	n := df.Len()
	rows := make([]int, 0, n*len(opts.ValueVars))
	variables := make([]string, 0, n*len(opts.ValueVars))
	for _, name := range opts.ValueVars {
		for i := 0; i < n; i++ {
			rows = append(rows, i)
			variables = append(variables, name)
		}
	}

	ids := df.shallowCopy(opts.IDVars)
	result, err := ids.Take(rows)
	ids.Release()
	if err != nil {
		return nil, err
	}
	result.groups = nil

	valueArrs := df.arrays(opts.ValueVars)
	values, err := meltValues(valueArrs, n, df)
	releaseArrays(valueArrs)
	if err != nil {
		result.Release()
		return nil, err
	}

	varCol := series.New(opts.VarName, variables, df.mem)
	withVar, err := result.WithColumn(varCol)
	result.Release()
	if err != nil {
		values.Release()
		return nil, err
	}

	withValue, err := withVar.WithArray(opts.ValueName, values)
	withVar.Release()
	values.Release()
	return withValue, err
}

// meltValues stacks arrs into one array: int64 when all are integers, float64
// when all are numeric, bool when all are boolean, and strings otherwise.
func meltValues(arrs []arrow.Array, n int, df *DataFrame) (arrow.Array, error) {
	allInt, allNumeric, allBool := true, true, true
	for _, arr := range arrs {
		switch arr.DataType().ID() {
		case arrow.INT64, arrow.INT32:
			allBool = false
		case arrow.FLOAT64, arrow.FLOAT32:
			allInt, allBool = false, false
		case arrow.BOOL:
			allInt, allNumeric = false, false
		default:
			allInt, allNumeric, allBool = false, false, false
		}
	}

	total := n * len(arrs)
	valid := make([]bool, 0, total)
	for _, arr := range arrs {
		for i := 0; i < n; i++ {
			valid = append(valid, arr.IsValid(i))
		}
	}

	switch {
	case allInt:
		out := make([]int64, 0, total)
		for _, arr := range arrs {
			for i := 0; i < n; i++ {
				v, _ := numericAt(arr, i)
				out = append(out, int64(v))
			}
		}
		return buildArray(out, valid, df.mem), nil
	case allNumeric:
		out := make([]float64, 0, total)
		for _, arr := range arrs {
			for i := 0; i < n; i++ {
				v, _ := numericAt(arr, i)
				out = append(out, v)
			}
		}
		return buildArray(out, valid, df.mem), nil
	case allBool:
		out := make([]bool, 0, total)
		for _, arr := range arrs {
			b := arr.(*array.Boolean)
			for i := 0; i < n; i++ {
				out = append(out, b.IsValid(i) && b.Value(i))
			}
		}
		return buildArray(out, valid, df.mem), nil
	default:
		out := make([]string, 0, total)
		for _, arr := range arrs {
			for i := 0; i < n; i++ {
				out = append(out, series.FormatValue(arr, i))
			}
		}
		return buildArray(out, valid, df.mem), nil
	}
}

// numericAt reads a numeric slot as float64
func numericAt(arr arrow.Array, i int) (float64, bool) {
	if arr.IsNull(i) {
		return 0, false
	}
	switch typed := arr.(type) {
	case *array.Int64:
		return float64(typed.Value(i)), true
	case *array.Int32:
		return float64(typed.Value(i)), true
	case *array.Float64:
		return typed.Value(i), true
	case *array.Float32:
		return float64(typed.Value(i)), true
	default:
		return 0, false
	}
}

// Pivot spreads Values into one column per distinct value of Columns, with one
// row per distinct Index combination. Rows and new columns follow first
// appearance; absent cells are null.
func (df *DataFrame) Pivot(opts PivotOptions) (*DataFrame, error) {
	if opts.Columns == "" || opts.Values == "" {
		return nil, dferrors.NewInvalidInputError("LongToWide", "columns and values must be named")
	}
	needed := append(append([]string(nil), opts.Index...), opts.Columns, opts.Values)
	if err := df.requireColumns("LongToWide", needed); err != nil {
		return nil, err
	}

	rowGroups := df.buildGroupsOrAll(opts.Index)

	namesCol, _ := df.Column(opts.Columns)
	nameArr := namesCol.Array()
	defer nameArr.Release()

	var newNames []string
	position := make(map[string]int)
	for i := 0; i < df.Len(); i++ {
		if nameArr.IsNull(i) {
			return nil, dferrors.NewValidationError("LongToWide", opts.Columns, "column names cannot be null")
		}
		name := series.FormatValue(nameArr, i)
		if _, ok := position[name]; !ok {
			if slices.Contains(opts.Index, name) {
				return nil, dferrors.NewValidationError("LongToWide", name, "new column collides with an index column")
			}
			position[name] = len(newNames)
			newNames = append(newNames, name)
		}
	}

	cells := make([][]int, len(newNames))
	for c := range cells {
		cells[c] = make([]int, len(rowGroups))
		for r := range cells[c] {
			cells[c][r] = -1
		}
	}
	firsts := make([]int, len(rowGroups))
	for r, rows := range rowGroups {
		firsts[r] = rows[0]
		for _, i := range rows {
			c := position[series.FormatValue(nameArr, i)]
			if cells[c][r] != -1 {
				return nil, dferrors.NewValidationError("LongToWide", opts.Columns,
					fmt.Sprintf("duplicate entry for %q in the same index row", newNames[c]))
			}
			cells[c][r] = i
		}
	}

	index := df.shallowCopy(opts.Index)
	result, err := index.Take(firsts)
	index.Release()
	if err != nil {
		return nil, err
	}
	result.groups = nil

	valuesCol, _ := df.Column(opts.Values)
	valueArr := valuesCol.Array()
	defer valueArr.Release()

	for c, name := range newNames {
		taken, err := TakeArray(valueArr, cells[c], df.mem)
		if err != nil {
			result.Release()
			return nil, err
		}
		next, err := result.WithArray(name, taken)
		taken.Release()
		result.Release()
		if err != nil {
			return nil, err
		}
		result = next
	}
	return result, nil
}

// buildGroupsOrAll groups rows by columns; without columns every row is its own group
func (df *DataFrame) buildGroupsOrAll(columns []string) [][]int {
	if len(columns) > 0 {
		return df.buildGroups(columns)
	}
	groups := make([][]int, df.Len())
	for i := range groups {
		groups[i] = []int{i}
	}
	return groups
}
