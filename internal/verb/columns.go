package verb

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/paveg/tidyframe/internal/dataframe"
	"github.com/paveg/tidyframe/internal/validation"
)

// Select projects columns in argument order
type Select struct {
	columns []string
}

// NewSelect creates the select verb
func NewSelect(columns ...string) *Select {
	return &Select{columns: append([]string(nil), columns...)}
}

// Apply projects df
func (s *Select) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	err := validation.NewCompoundValidator(
		validation.NewRequiredValidator(len(s.columns), "Select", "column"),
		validation.NewUniqueValidator("Select", "column", s.columns...),
		validation.NewColumnValidator(df, "Select", s.columns...),
	).Validate()
	if err != nil {
		return nil, err
	}
	return df.Select(s.columns...)
}

func (s *Select) String() string {
	return fmt.Sprintf("select(%s)", strings.Join(s.columns, ", "))
}

// Rename renames columns from old to new names
type Rename struct {
	mapping map[string]string
}

// NewRename creates the rename verb
func NewRename(mapping map[string]string) *Rename {
	return &Rename{mapping: maps.Clone(mapping)}
}

// Apply renames the columns of df
func (r *Rename) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateRequired(len(r.mapping), "Rename", "column mapping"); err != nil {
		return nil, err
	}
	return df.Rename(r.mapping)
}

func (r *Rename) String() string {
	olds := slices.Sorted(maps.Keys(r.mapping))
	parts := make([]string, len(olds))
	for i, old := range olds {
		parts[i] = fmt.Sprintf("%s -> %s", old, r.mapping[old])
	}
	return fmt.Sprintf("rename(%s)", strings.Join(parts, ", "))
}

// Distinct keeps the first row of every distinct key
type Distinct struct {
	columns []string
}

// NewDistinct creates the distinct verb; without columns the whole row is the key
func NewDistinct(columns ...string) *Distinct {
	return &Distinct{columns: append([]string(nil), columns...)}
}

// Apply drops repeated rows of df
func (d *Distinct) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateColumns(df, "Distinct", d.columns...); err != nil {
		return nil, err
	}
	return df.Distinct(d.columns...)
}

func (d *Distinct) String() string {
	return fmt.Sprintf("distinct(%s)", strings.Join(d.columns, ", "))
}
