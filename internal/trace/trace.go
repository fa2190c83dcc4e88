// Package trace records the execution of pipeline steps: which verb ran,
// the shape of its input and output, how long it took and whether it failed.
package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paveg/tidyframe/internal/dataframe"
)

// Config configures a Recorder
type Config struct {
	// Enabled keeps a Step for every traced operation
	Enabled bool `json:"enabled"`
	// Logger receives one record per traced operation when non-nil
	Logger *slog.Logger `json:"-"`
	// Level of the logged records; nil logs at debug level
	Level slog.Leveler `json:"-"`
}

// Stats describes the shape of a DataFrame
type Stats struct {
	Rows    int      `json:"rows"`
	Columns int      `json:"columns"`
	Schema  []string `json:"schema"`
	Groups  []string `json:"groups,omitempty"`
}

// Step represents one traced verb application
type Step struct {
	ID       string        `json:"id"`
	Verb     string        `json:"verb"`
	Input    Stats         `json:"input"`
	Output   Stats         `json:"output"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Recorder traces the steps of one pipeline run
type Recorder struct {
	id     string
	steps  []Step
	config Config
}

// NewRecorder creates a recorder with a fresh pipeline ID
func NewRecorder(config Config) *Recorder {
	return &Recorder{
		id:     uuid.NewString(),
		steps:  make([]Step, 0),
		config: config,
	}
}

// ID returns the pipeline ID shared by every step of this recorder
func (r *Recorder) ID() string {
	return r.id
}

// Trace runs fn, recording it as an application of verb to input
func (r *Recorder) Trace(
	verb string, input *dataframe.DataFrame, fn func() (*dataframe.DataFrame, error),
) (*dataframe.DataFrame, error) {
	if !r.config.Enabled && r.config.Logger == nil {
		return fn()
	}

	step := Step{
		ID:    uuid.NewString(),
		Verb:  verb,
		Input: captureStats(input),
	}

	start := time.Now()
	result, err := fn()
	step.Duration = time.Since(start)

	if err != nil {
		step.Error = err.Error()
	} else {
		step.Output = captureStats(result)
	}

	if r.config.Enabled {
		r.steps = append(r.steps, step)
	}
	r.log(step)
	return result, err
}

func (r *Recorder) log(step Step) {
	if r.config.Logger == nil {
		return
	}

	attrs := []any{
		slog.String("pipeline", r.id),
		slog.String("step", step.ID),
		slog.String("verb", step.Verb),
		slog.Int("rows_in", step.Input.Rows),
		slog.Duration("duration", step.Duration),
	}
	level := slog.LevelDebug
	if r.config.Level != nil {
		level = r.config.Level.Level()
	}
	if step.Error != "" {
		r.config.Logger.Log(context.Background(), level, "verb failed", append(attrs, slog.String("error", step.Error))...)
		return
	}
	r.config.Logger.Log(context.Background(), level, "verb applied", append(attrs,
		slog.Int("rows_out", step.Output.Rows),
		slog.Int("columns_out", step.Output.Columns))...)
}

// captureStats captures DataFrame statistics
func captureStats(df *dataframe.DataFrame) Stats {
	if df == nil {
		return Stats{}
	}
	return Stats{
		Rows:    df.Len(),
		Columns: df.Width(),
		Schema:  df.Columns(),
		Groups:  df.Groups(),
	}
}

// Steps returns a copy of the recorded steps
func (r *Recorder) Steps() []Step {
	return append([]Step(nil), r.steps...)
}

// Report builds an analysis report over the recorded steps
func (r *Recorder) Report() Report {
	return Report{
		PipelineID:  r.id,
		Steps:       r.Steps(),
		Summary:     r.summary(),
		Bottlenecks: r.bottlenecks(),
	}
}

func (r *Recorder) summary() Summary {
	var summary Summary
	summary.TotalSteps = len(r.steps)
	for i := range r.steps {
		step := &r.steps[i]
		summary.TotalDuration += step.Duration
		if step.Error != "" {
			summary.FailedSteps++
		}
	}
	if n := len(r.steps); n > 0 {
		summary.RowsIn = r.steps[0].Input.Rows
		summary.RowsOut = r.steps[n-1].Output.Rows
	}
	return summary
}

// bottlenecks reports steps that take more than half of the total time
func (r *Recorder) bottlenecks() []Bottleneck {
	bottlenecks := make([]Bottleneck, 0)
	if len(r.steps) < 2 {
		return bottlenecks
	}

	var total time.Duration
	for i := range r.steps {
		total += r.steps[i].Duration
	}

	for i := range r.steps {
		step := &r.steps[i]
		if step.Duration > total/2 {
			bottlenecks = append(bottlenecks, Bottleneck{
				Verb:     step.Verb,
				Duration: step.Duration,
				Reason:   "takes more than 50% of total execution time",
			})
		}
	}
	return bottlenecks
}

// Report contains the complete analysis of one pipeline run
type Report struct {
	PipelineID  string       `json:"pipeline_id"`
	Steps       []Step       `json:"steps"`
	Summary     Summary      `json:"summary"`
	Bottlenecks []Bottleneck `json:"bottlenecks"`
}

// Summary contains summary statistics
type Summary struct {
	TotalSteps    int           `json:"total_steps"`
	FailedSteps   int           `json:"failed_steps"`
	TotalDuration time.Duration `json:"total_duration"`
	RowsIn        int           `json:"rows_in"`
	RowsOut       int           `json:"rows_out"`
}

// Bottleneck represents a step dominating the run time
type Bottleneck struct {
	Verb     string        `json:"verb"`
	Duration time.Duration `json:"duration"`
	Reason   string        `json:"reason"`
}

// RenderText renders the report as an indented step list
func (rep Report) RenderText() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Pipeline %s\n", rep.PipelineID)

	for i, step := range rep.Steps {
		fmt.Fprintf(&buf, "├─ %d. %s\n", i+1, step.Verb)
		if step.Error != "" {
			fmt.Fprintf(&buf, "│  failed: %s\n", step.Error)
			continue
		}
		fmt.Fprintf(&buf, "│  rows: %d -> %d, columns: %d -> %d, took %v\n",
			step.Input.Rows, step.Output.Rows, step.Input.Columns, step.Output.Columns, step.Duration)
	}

	fmt.Fprintf(&buf, "\nTotal: %d steps in %v\n", rep.Summary.TotalSteps, rep.Summary.TotalDuration)
	for _, b := range rep.Bottlenecks {
		fmt.Fprintf(&buf, "Bottleneck: %s (%v) %s\n", b.Verb, b.Duration, b.Reason)
	}
	return buf.String()
}

// RenderJSON renders the report as JSON
func (rep Report) RenderJSON() ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}
