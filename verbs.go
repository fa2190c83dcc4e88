package tidyframe

import (
	"io"

	"github.com/paveg/tidyframe/internal/dataframe"
	"github.com/paveg/tidyframe/internal/verb"
)

// Verb is one step of a pipeline. Verbs never modify their input table.
type Verb struct {
	v verb.Verb
}

// String describes the verb and its arguments
func (v Verb) String() string {
	if v.v == nil {
		return "<nil verb>"
	}
	return v.v.String()
}

// Release drops any table the verb holds on to. Only MergeWith holds one.
func (v Verb) Release() {
	if r, ok := v.v.(interface{ Release() }); ok {
		r.Release()
	}
}

// Definition names the column an expression produces
type Definition = verb.Definition

// Def builds a Definition, e.g. Def("ratio", "savings / income")
func Def(name, expr string) Definition {
	return verb.Def(name, expr)
}

// SortKey orders rows by one column
type SortKey = verb.SortKey

// Asc sorts by column in ascending order
func Asc(column string) SortKey {
	return verb.Asc(column)
}

// Desc sorts by column in descending order
func Desc(column string) SortKey {
	return verb.Desc(column)
}

// AggFunc names a Summarise reduction
type AggFunc = dataframe.AggFunc

// Aggregations accepted by Summarise
const (
	AggSum    = dataframe.AggSum
	AggMean   = dataframe.AggMean
	AggStd    = dataframe.AggStd
	AggMin    = dataframe.AggMin
	AggMax    = dataframe.AggMax
	AggCount  = dataframe.AggCount
	AggMedian = dataframe.AggMedian
)

// SummaryOf builds a Summarise definition, e.g. SummaryOf("avg", AggMean, "income")
func SummaryOf(name string, fn AggFunc, expr string) Definition {
	return verb.SummaryOf(name, fn, expr)
}

// WideToLongOptions configures WideToLong
type WideToLongOptions = verb.WideToLongOptions

// LongToWideOptions configures LongToWide
type LongToWideOptions = verb.LongToWideOptions

// Keep keeps the rows for which every predicate is true. Predicates apply in
// order; a null result drops the row. Plain identifiers that are values of a
// string column match as literals, so "category == red" works.
func Keep(predicates ...string) Verb {
	return Verb{verb.NewKeep(predicates...)}
}

// Filter is Keep under its other name
func Filter(predicates ...string) Verb {
	return Verb{verb.NewFilter(predicates...)}
}

// Create adds or replaces a column per definition. Definitions may reference
// each other in any order.
func Create(defs ...Definition) Verb {
	return Verb{verb.NewCreate(defs...)}
}

// Mutate is Create under its other name
func Mutate(defs ...Definition) Verb {
	return Verb{verb.NewMutate(defs...)}
}

// Transmute is Create keeping only the defined columns
func Transmute(defs ...Definition) Verb {
	return Verb{verb.NewTransmute(defs...)}
}

// Select projects columns in argument order
func Select(columns ...string) Verb {
	return Verb{verb.NewSelect(columns...)}
}

// Rename renames columns, mapping old names to new ones
func Rename(mapping map[string]string) Verb {
	return Verb{verb.NewRename(mapping)}
}

// Distinct keeps the first row of each distinct combination of columns, or of
// whole rows without columns
func Distinct(columns ...string) Verb {
	return Verb{verb.NewDistinct(columns...)}
}

// SampleN draws n rows without replacement
func SampleN(n int) Verb {
	return Verb{verb.NewSampleN(n)}
}

// SampleNSeeded draws n rows reproducibly
func SampleNSeeded(n int, seed int64) Verb {
	return Verb{verb.NewSampleNSeeded(n, seed)}
}

// SliceRows keeps the rows in [start, end)
func SliceRows(start, end int) Verb {
	return Verb{verb.NewSliceRows(start, end)}
}

// Arrange sorts rows stably by the keys; nulls sort last
func Arrange(keys ...SortKey) Verb {
	return Verb{verb.NewArrange(keys...)}
}

// GroupBy attaches grouping keys used by Summarise
func GroupBy(columns ...string) Verb {
	return Verb{verb.NewGroupBy(columns...)}
}

// Ungroup clears the grouping keys
func Ungroup() Verb {
	return Verb{verb.NewUngroup()}
}

// Summarise reduces each group to one row. Every definition has the form
// agg(expression) with agg one of mean, sum, std, min, max, count or median.
func Summarise(defs ...Definition) Verb {
	return Verb{verb.NewSummarise(defs...)}
}

// WideToLong unpivots columns into variable/value pairs
func WideToLong(opts WideToLongOptions) Verb {
	return Verb{verb.NewWideToLong(opts)}
}

// LongToWide pivots the values of one column into new columns
func LongToWide(opts LongToWideOptions) Verb {
	return Verb{verb.NewLongToWide(opts)}
}

// MergeWith joins the piped table with right on the key columns. using is one
// of inner_join, left_join, right_join or outer_join. The verb holds a
// reference to right until it is released.
func MergeWith(right *DataFrame, using string, on ...string) Verb {
	return Verb{verb.NewMergeWith(right.df, using, on...)}
}

// Preview writes the first n rows to w as a text table; n <= 0 uses the
// configured PreviewRows. The table passes through unchanged.
func Preview(w io.Writer, n int) Verb {
	return Verb{verb.NewPreview(w, n)}
}

// Check is Preview with column types and the table shape
func Check(w io.Writer, n int) Verb {
	return Verb{verb.NewCheck(w, n)}
}

func unwrapVerbs(verbs []Verb) []verb.Verb {
	out := make([]verb.Verb, len(verbs))
	for i, v := range verbs {
		out[i] = v.v
	}
	return out
}
