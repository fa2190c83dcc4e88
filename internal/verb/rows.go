package verb

import (
	"fmt"
	"strings"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/dataframe"
	"github.com/paveg/tidyframe/internal/validation"
)

// SampleN draws rows without replacement
type SampleN struct {
	n    int
	seed int64
}

// NewSampleN samples n rows, seeded by the configured SampleSeed when it is set
func NewSampleN(n int) *SampleN {
	return &SampleN{n: n, seed: config.GetGlobalConfig().SampleSeed}
}

// NewSampleNSeeded samples n rows reproducibly; a zero seed falls back to the configuration
func NewSampleNSeeded(n int, seed int64) *SampleN {
	if seed == 0 {
		return NewSampleN(n)
	}
	return &SampleN{n: n, seed: seed}
}

// Apply samples df
func (s *SampleN) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateSampleSize(df, s.n, "SampleN"); err != nil {
		return nil, err
	}
	return df.Sample(s.n, s.seed)
}

func (s *SampleN) String() string {
	if s.seed != 0 {
		return fmt.Sprintf("sample_n(%d, seed=%d)", s.n, s.seed)
	}
	return fmt.Sprintf("sample_n(%d)", s.n)
}

// SliceRows keeps the rows in [start, end), clamped to the table
type SliceRows struct {
	start int
	end   int
}

// NewSliceRows creates the slice verb
func NewSliceRows(start, end int) *SliceRows {
	return &SliceRows{start: start, end: end}
}

// Apply slices df
func (s *SliceRows) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	return df.Slice(s.start, s.end), nil
}

func (s *SliceRows) String() string {
	return fmt.Sprintf("slice_rows(%d, %d)", s.start, s.end)
}

// SortKey orders rows by one column
type SortKey struct {
	Column    string
	Ascending bool
}

// Asc sorts by column in ascending order
func Asc(column string) SortKey {
	return SortKey{Column: column, Ascending: true}
}

// Desc sorts by column in descending order
func Desc(column string) SortKey {
	return SortKey{Column: column, Ascending: false}
}

func (k SortKey) String() string {
	if k.Ascending {
		return k.Column + " ASC"
	}
	return k.Column + " DESC"
}

// Arrange stably sorts rows by one or more keys; nulls go last
type Arrange struct {
	keys []SortKey
}

// NewArrange creates the arrange verb
func NewArrange(keys ...SortKey) *Arrange {
	return &Arrange{keys: append([]SortKey(nil), keys...)}
}

// Apply sorts df
func (a *Arrange) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateRequired(len(a.keys), "Arrange", "sort key"); err != nil {
		return nil, err
	}

	columns := make([]string, len(a.keys))
	ascending := make([]bool, len(a.keys))
	for i, k := range a.keys {
		columns[i] = k.Column
		ascending[i] = k.Ascending
	}
	if err := validation.ValidateColumns(df, "Arrange", columns...); err != nil {
		return nil, err
	}
	return df.SortBy(columns, ascending)
}

func (a *Arrange) String() string {
	parts := make([]string, len(a.keys))
	for i, k := range a.keys {
		parts[i] = k.String()
	}
	return fmt.Sprintf("arrange(%s)", strings.Join(parts, ", "))
}
