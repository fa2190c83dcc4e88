// Package verb implements the table verbs that a pipeline threads a DataFrame
// through. Every verb is a value with an Apply method that returns a new
// DataFrame and never modifies its input, and a String method describing the
// step for errors, logs and traces.
//
// Verbs snapshot the global configuration when they are constructed, so a
// pipeline built before a config change keeps its original settings.
package verb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paveg/tidyframe/internal/dataframe"
	"github.com/paveg/tidyframe/internal/resolve"
)

// Verb is one deferred step of a pipeline
type Verb interface {
	Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error)
	String() string
}

// Definition names the column an expression produces
type Definition = resolve.Definition

// Def builds a Definition
func Def(name, expr string) Definition {
	return Definition{Name: name, Expr: expr}
}

// Runner wraps the application of a single verb; see Run
type Runner func(v Verb, input *dataframe.DataFrame) (*dataframe.DataFrame, error)

// Apply is the Runner that calls v.Apply directly
func Apply(v Verb, input *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	return v.Apply(input)
}

// Run threads df through verbs in order, stopping at the first failure. The
// input stays owned by the caller; intermediate frames are released as soon as
// the next step has consumed them. With no verbs the result is a retained copy
// of df, so the caller always owns what Run returns.
func Run(df *dataframe.DataFrame, run Runner, verbs ...Verb) (*dataframe.DataFrame, error) {
	if run == nil {
		run = Apply
	}
	if len(verbs) == 0 {
		return df.Drop(), nil
	}

	current := df
	for i, v := range verbs {
		result, err := run(v, current)
		if current != df {
			current.Release()
		}
		if err != nil {
			return nil, &StepError{Index: i, Verb: v.String(), Err: err}
		}
		current = result
	}
	return current, nil
}

// StepError reports which pipeline step failed
type StepError struct {
	Index int
	Verb  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d %s: %v", e.Index+1, e.Verb, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return strings.Join(quoted, ", ")
}

func describeDefinitions(defs []Definition) string {
	parts := make([]string, len(defs))
	for i, d := range defs {
		parts[i] = fmt.Sprintf("%s=%s", d.Name, strconv.Quote(d.Expr))
	}
	return strings.Join(parts, ", ")
}
