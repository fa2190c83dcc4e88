package verb

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/dataframe"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/resolve"
	"github.com/paveg/tidyframe/internal/validation"
)

// GroupBy attaches grouping keys for a later Summarise
type GroupBy struct {
	columns []string
}

// NewGroupBy creates the group_by verb
func NewGroupBy(columns ...string) *GroupBy {
	return &GroupBy{columns: append([]string(nil), columns...)}
}

// Apply marks df as grouped by the columns
func (g *GroupBy) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	err := validation.NewCompoundValidator(
		validation.NewRequiredValidator(len(g.columns), "GroupBy", "grouping key"),
		validation.NewUniqueValidator("GroupBy", "grouping key", g.columns...),
		validation.NewColumnValidator(df, "GroupBy", g.columns...),
	).Validate()
	if err != nil {
		return nil, err
	}
	return df.WithGroups(g.columns...)
}

func (g *GroupBy) String() string {
	return fmt.Sprintf("group_by(%s)", strings.Join(g.columns, ", "))
}

// Ungroup clears the grouping keys
type Ungroup struct{}

// NewUngroup creates the ungroup verb
func NewUngroup() Ungroup {
	return Ungroup{}
}

// Apply returns df without grouping keys
func (Ungroup) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	return df.Ungroup(), nil
}

func (Ungroup) String() string {
	return "ungroup()"
}

// summaryPattern splits "agg(inner)" into the aggregation name and its argument
var summaryPattern = regexp.MustCompile(`^\s*([A-Za-z_]\w*)\s*\((.*)\)\s*$`)

const summaryTempPrefix = "__tidyframe_summarise_"

// Summarise reduces every group to one row. Each definition has the form
// agg(expression), e.g. Def("avg", "mean(income * 2)").
type Summarise struct {
	defs     []Definition
	maxDepth int
}

// NewSummarise creates the summarise verb
func NewSummarise(defs ...Definition) *Summarise {
	return &Summarise{
		defs:     append([]Definition(nil), defs...),
		maxDepth: config.GetGlobalConfig().MaxExpressionDepth,
	}
}

// SummaryOf builds a summarise definition from its parts
func SummaryOf(name string, fn dataframe.AggFunc, expr string) Definition {
	return Def(name, fmt.Sprintf("%s(%s)", fn, expr))
}

type summary struct {
	name  string
	fn    dataframe.AggFunc
	inner string
}

// Apply aggregates df per group, or over the whole table when it is not
// grouped. Group columns come first; the result is ungrouped.
func (s *Summarise) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateRequired(len(s.defs), "Summarise", "summary"); err != nil {
		return nil, err
	}

	summaries, err := s.parse(df.Groups())
	if err != nil {
		return nil, err
	}

	// Anything but a bare column is evaluated into a temporary column first
	var temps []Definition
	aggs := make([]dataframe.Aggregation, len(summaries))
	for i, sm := range summaries {
		column := sm.inner
		if !df.HasColumn(column) {
			column = fmt.Sprintf("%s%d", summaryTempPrefix, i)
			temps = append(temps, Def(column, sm.inner))
		}
		aggs[i] = dataframe.Aggregation{Column: column, Func: sm.fn, Alias: sm.name}
	}

	source := df.Drop()
	if len(temps) > 0 {
		resolved, err := resolve.Resolve(df, temps, resolve.Options{Op: "Summarise", MaxDepth: s.maxDepth})
		source.Release()
		if err != nil {
			return nil, err
		}
		source = resolved
	}
	defer source.Release()

	gb, err := source.GroupBy(source.Groups()...)
	if err != nil {
		return nil, err
	}
	return gb.Agg(aggs...)
}

func (s *Summarise) parse(groups []string) ([]summary, error) {
	summaries := make([]summary, len(s.defs))
	seen := make(map[string]bool, len(s.defs))
	for i, def := range s.defs {
		if def.Name == "" {
			return nil, dferrors.NewInvalidExpressionError("Summarise", def.Expr,
				fmt.Errorf("summary has no column name"))
		}
		if seen[def.Name] {
			return nil, dferrors.NewInvalidExpressionError("Summarise", def.Expr,
				fmt.Errorf("column %q is defined more than once", def.Name))
		}
		seen[def.Name] = true
		if slices.Contains(groups, def.Name) {
			return nil, dferrors.NewValidationError("Summarise", def.Name,
				"summary name collides with a grouping key")
		}

		match := summaryPattern.FindStringSubmatch(def.Expr)
		if match == nil || !balanced(match[2]) || strings.TrimSpace(match[2]) == "" {
			return nil, dferrors.NewInvalidExpressionError("Summarise", def.Expr,
				fmt.Errorf("summary must have the form agg(expression)"))
		}
		fn, ok := dataframe.ParseAggFunc(match[1])
		if !ok {
			return nil, dferrors.NewInvalidExpressionError("Summarise", def.Expr,
				fmt.Errorf("unknown aggregation %q, expected one of %s",
					match[1], strings.Join(dataframe.AggFuncNames(), ", ")))
		}
		summaries[i] = summary{name: def.Name, fn: fn, inner: strings.TrimSpace(match[2])}
	}
	return summaries, nil
}

// balanced reports whether the parentheses of s never close more than they open
// and end level, ignoring quoted text
func balanced(s string) bool {
	depth := 0
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func (s *Summarise) String() string {
	return fmt.Sprintf("summarise(%s)", describeDefinitions(s.defs))
}
