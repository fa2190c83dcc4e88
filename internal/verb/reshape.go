package verb

import (
	"fmt"
	"strings"

	"github.com/paveg/tidyframe/internal/dataframe"
)

// WideToLongOptions configures WideToLong
type WideToLongOptions = dataframe.MeltOptions

// LongToWideOptions configures LongToWide
type LongToWideOptions = dataframe.PivotOptions

// WideToLong unpivots value columns into variable/value pairs
type WideToLong struct {
	opts WideToLongOptions
}

// NewWideToLong creates the wide_to_long verb
func NewWideToLong(opts WideToLongOptions) *WideToLong {
	opts.IDVars = append([]string(nil), opts.IDVars...)
	opts.ValueVars = append([]string(nil), opts.ValueVars...)
	return &WideToLong{opts: opts}
}

// Apply melts df; ValueVars default to every non-id column
func (w *WideToLong) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	return df.Melt(w.opts)
}

func (w *WideToLong) String() string {
	return fmt.Sprintf("wide_to_long(id=[%s], values=[%s])",
		strings.Join(w.opts.IDVars, ", "), strings.Join(w.opts.ValueVars, ", "))
}

// LongToWide pivots the values of one column into new columns
type LongToWide struct {
	opts LongToWideOptions
}

// NewLongToWide creates the long_to_wide verb
func NewLongToWide(opts LongToWideOptions) *LongToWide {
	opts.Index = append([]string(nil), opts.Index...)
	return &LongToWide{opts: opts}
}

// Apply pivots df. Missing cells are null and a repeated (index, column) pair is an error.
func (l *LongToWide) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	return df.Pivot(l.opts)
}

func (l *LongToWide) String() string {
	return fmt.Sprintf("long_to_wide(index=[%s], columns=%s, values=%s)",
		strings.Join(l.opts.Index, ", "), l.opts.Columns, l.opts.Values)
}
