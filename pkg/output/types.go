// Package output provides formatting and output generation for analysis results.
package output

import (
	"time"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
)

// Report is the complete analysis output.
type Report struct {
	// Summary provides headline figures.
	Summary Summary `json:"summary" yaml:"summary"`

	// Results contains one record per analysis that ran.
	Results *analyzer.Results `json:"results" yaml:"results"`

	// Notes carries parse diagnostics such as date order ambiguity.
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Summary provides headline figures.
type Summary struct {
	// Messages is the number of rows analyzed, notifications included.
	Messages int `json:"messages" yaml:"messages"`

	// Users is the number of distinct authors.
	Users int `json:"users" yaml:"users"`

	// RowsDropped counts rows whose timestamp could not be parsed.
	RowsDropped int `json:"rows_dropped" yaml:"rows_dropped"`

	// OutOfOrder counts rows older than the row before them.
	OutOfOrder int `json:"out_of_order" yaml:"out_of_order"`

	FirstMessage time.Time `json:"first_message" yaml:"first_message"`
	LastMessage  time.Time `json:"last_message" yaml:"last_message"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used.
	ConfigFile string `json:"config_file,omitempty" yaml:"config_file,omitempty"`

	// Sources lists the exports that were analyzed.
	Sources []string `json:"sources" yaml:"sources"`

	// Format is the detected timestamp format.
	Format string `json:"format" yaml:"format"`

	// User is the selected user, empty for the whole chat.
	User string `json:"user,omitempty" yaml:"user,omitempty"`

	// Analyses lists the engines that ran.
	Analyses []string `json:"analyses" yaml:"analyses"`

	// TimeRange is the time filter that was applied, if any.
	TimeRange *TimeRange `json:"time_range,omitempty" yaml:"time_range,omitempty"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at" yaml:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// TimeRange represents a time window for filtering.
type TimeRange struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// NewReport creates a Report from analysis results.
func NewReport(result *analyzer.AnalysisResult, configFile string) *Report {
	md := result.Metadata
	report := &Report{
		Results: &result.Results,
		Metadata: Metadata{
			ConfigFile: configFile,
			Sources:    md.Sources,
			Format:     md.Format,
			User:       md.User,
			Analyses:   md.Analyses,
			AnalyzedAt: md.EndTime,
			Duration:   md.EndTime.Sub(md.StartTime),
		},
		Summary: Summary{
			Messages:     md.RowsProcessed,
			Users:        len(md.Users),
			RowsDropped:  md.RowsDropped,
			OutOfOrder:   md.OutOfOrder,
			FirstMessage: md.FirstMessage,
			LastMessage:  md.LastMessage,
		},
	}

	if md.TimeRange != nil {
		report.Metadata.TimeRange = &TimeRange{
			Start: md.TimeRange.Start,
			End:   md.TimeRange.End,
		}
	}

	return report
}

// AddNotes appends non-empty diagnostics to the report.
func (r *Report) AddNotes(notes ...string) {
	for _, n := range notes {
		if n != "" {
			r.Notes = append(r.Notes, n)
		}
	}
}

// HasDropped returns true if any rows were dropped while building the table.
func (r *Report) HasDropped() bool {
	return r.Summary.RowsDropped > 0
}
