package tidyframe

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/dataframe"
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/trace"
	"github.com/paveg/tidyframe/internal/verb"
)

// Report describes a traced pipeline run
type Report = trace.Report

// Pipe threads df through verbs in order and returns the final table. It
// stops at the first failing verb; the error names the step and wraps the
// verb's error. df is left untouched and still owned by the caller.
func Pipe(df *DataFrame, verbs ...Verb) (*DataFrame, error) {
	result, _, err := run(df, verbs, nil)
	return result, err
}

// Pipeline is a deferred chain of verbs over a source table, run by Collect.
// Adding a verb returns a new Pipeline; the receiver is unchanged.
type Pipeline struct {
	source *DataFrame
	verbs  []Verb
	logger *slog.Logger
	report *Report
}

// From starts a pipeline over df. The pipeline does not own df.
func From(df *DataFrame) *Pipeline {
	return &Pipeline{source: df}
}

func (p *Pipeline) with(v Verb) *Pipeline {
	verbs := make([]Verb, len(p.verbs), len(p.verbs)+1)
	copy(verbs, p.verbs)
	return &Pipeline{source: p.source, verbs: append(verbs, v), logger: p.logger}
}

// Then appends arbitrary verbs
func (p *Pipeline) Then(verbs ...Verb) *Pipeline {
	next := p
	for _, v := range verbs {
		next = next.with(v)
	}
	return next
}

// WithLogger sends one debug record per applied verb to logger
func (p *Pipeline) WithLogger(logger *slog.Logger) *Pipeline {
	return &Pipeline{source: p.source, verbs: p.verbs, logger: logger}
}

// Keep adds a Keep step.
func (p *Pipeline) Keep(predicates ...string) *Pipeline { return p.with(Keep(predicates...)) }

// Filter adds a Filter step.
func (p *Pipeline) Filter(predicates ...string) *Pipeline { return p.with(Filter(predicates...)) }

// Create adds a Create step.
func (p *Pipeline) Create(defs ...Definition) *Pipeline { return p.with(Create(defs...)) }

// Mutate adds a Mutate step.
func (p *Pipeline) Mutate(defs ...Definition) *Pipeline { return p.with(Mutate(defs...)) }

// Transmute adds a Transmute step.
func (p *Pipeline) Transmute(defs ...Definition) *Pipeline { return p.with(Transmute(defs...)) }

// Select adds a Select step.
func (p *Pipeline) Select(columns ...string) *Pipeline { return p.with(Select(columns...)) }

// Rename adds a Rename step.
func (p *Pipeline) Rename(mapping map[string]string) *Pipeline { return p.with(Rename(mapping)) }

// Distinct adds a Distinct step.
func (p *Pipeline) Distinct(columns ...string) *Pipeline { return p.with(Distinct(columns...)) }

// SampleN adds a SampleN step.
func (p *Pipeline) SampleN(n int) *Pipeline { return p.with(SampleN(n)) }

// SampleNSeeded adds a SampleNSeeded step.
func (p *Pipeline) SampleNSeeded(n int, seed int64) *Pipeline {
	return p.with(SampleNSeeded(n, seed))
}

// SliceRows adds a SliceRows step.
func (p *Pipeline) SliceRows(start, end int) *Pipeline { return p.with(SliceRows(start, end)) }

// Arrange adds an Arrange step.
func (p *Pipeline) Arrange(keys ...SortKey) *Pipeline { return p.with(Arrange(keys...)) }

// GroupBy adds a GroupBy step.
func (p *Pipeline) GroupBy(columns ...string) *Pipeline { return p.with(GroupBy(columns...)) }

// Ungroup adds an Ungroup step.
func (p *Pipeline) Ungroup() *Pipeline { return p.with(Ungroup()) }

// Summarise adds a Summarise step.
func (p *Pipeline) Summarise(defs ...Definition) *Pipeline { return p.with(Summarise(defs...)) }

// WideToLong adds a WideToLong step.
func (p *Pipeline) WideToLong(opts WideToLongOptions) *Pipeline { return p.with(WideToLong(opts)) }

// LongToWide adds a LongToWide step.
func (p *Pipeline) LongToWide(opts LongToWideOptions) *Pipeline { return p.with(LongToWide(opts)) }

// MergeWith adds a MergeWith step. Release the pipeline to drop its
// reference to right.
func (p *Pipeline) MergeWith(right *DataFrame, using string, on ...string) *Pipeline {
	return p.with(MergeWith(right, using, on...))
}

// Collect runs the pipeline and returns the resulting table
func (p *Pipeline) Collect() (*DataFrame, error) {
	result, report, err := run(p.source, p.verbs, p.logger)
	p.report = report
	return result, err
}

// Report returns the trace of the last Collect. Steps are only recorded when
// TraceOperations is enabled in the configuration.
func (p *Pipeline) Report() (Report, bool) {
	if p.report == nil {
		return Report{}, false
	}
	return *p.report, true
}

// String lists the pending verbs
func (p *Pipeline) String() string {
	var sb strings.Builder
	sb.WriteString("Pipeline:\n")
	for i, v := range p.verbs {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, v)
	}
	return sb.String()
}

// Release drops the tables held by the pipeline's verbs. The source table
// stays owned by the caller.
func (p *Pipeline) Release() {
	for _, v := range p.verbs {
		v.Release()
	}
}

// run applies verbs through a trace recorder configured from the global
// configuration. Without tracing or logging the recorder adds no overhead.
func run(df *DataFrame, verbs []Verb, logger *slog.Logger) (*DataFrame, *Report, error) {
	if df == nil {
		return nil, nil, dferrors.NewInvalidInputError("Pipe", "source table is nil")
	}
	for i, v := range verbs {
		if v.v == nil {
			return nil, nil, dferrors.NewInvalidInputError("Pipe", fmt.Sprintf("verb %d is not set", i+1))
		}
	}

	cfg := config.GetGlobalConfig()
	traceConfig := trace.Config{Enabled: cfg.TraceOperations, Logger: logger}
	if logger == nil && cfg.VerboseLogging {
		// slog.Default drops debug records
		traceConfig.Logger = slog.Default()
		traceConfig.Level = slog.LevelInfo
	}
	recorder := trace.NewRecorder(traceConfig)

	runner := func(v verb.Verb, input *dataframe.DataFrame) (*dataframe.DataFrame, error) {
		return recorder.Trace(v.String(), input, func() (*dataframe.DataFrame, error) {
			return v.Apply(input)
		})
	}

	result, err := verb.Run(df.df, runner, unwrapVerbs(verbs)...)
	report := recorder.Report()
	if err != nil {
		return nil, &report, err
	}
	return wrap(result), &report, nil
}
