package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/table"
)

// Analyzer runs a set of engines over a message table in one pass.
type Analyzer struct {
	cfg     *config.Config
	engines []Engine

	// Options
	timeRange      *TimeRange
	user           string
	analysisFilter map[string]bool // nil means the configured set
}

// TimeRange defines a time window for filtering rows.
type TimeRange struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithTimeRange limits analysis to rows with Start <= timestamp < End.
// A zero bound is open.
func WithTimeRange(start, end time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		if start.IsZero() && end.IsZero() {
			return
		}
		a.timeRange = &TimeRange{Start: start, End: end}
	}
}

// WithAnalyses limits analysis to the named engines.
func WithAnalyses(names []string) AnalyzerOption {
	return func(a *Analyzer) {
		if len(names) > 0 {
			a.analysisFilter = make(map[string]bool)
			for _, n := range names {
				a.analysisFilter[n] = true
			}
		}
	}
}

// WithUser restricts user-scoped analyses to one author. "Overall" or
// an empty name keeps every row.
func WithUser(name string) AnalyzerOption {
	return func(a *Analyzer) {
		if name != table.Overall {
			a.user = name
		}
	}
}

// NewAnalyzer creates a new analyzer from configuration.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	a := &Analyzer{cfg: cfg}

	for _, opt := range opts {
		opt(a)
	}

	for name := range a.analysisFilter {
		if _, ok := engineFactories[name]; !ok {
			return nil, fmt.Errorf("unknown analysis %q", name)
		}
	}

	for _, name := range config.KnownAnalyses {
		if a.analysisFilter != nil && !a.analysisFilter[name] {
			continue
		}
		if a.analysisFilter == nil && !cfg.Analysis.IsEnabled(name) {
			continue
		}
		engine, err := createEngine(name, &cfg.Analysis)
		if err != nil {
			return nil, fmt.Errorf("creating engine %q: %w", name, err)
		}
		a.engines = append(a.engines, engine)
	}

	if len(a.engines) == 0 {
		return nil, fmt.Errorf("no analyses to run (check --analysis filter)")
	}

	return a, nil
}

var engineFactories = map[string]func(*config.AnalysisConfig) Engine{
	"stats":         func(*config.AnalysisConfig) Engine { return NewStatsEngine() },
	"users":         func(*config.AnalysisConfig) Engine { return NewUsersEngine() },
	"timeline":      func(*config.AnalysisConfig) Engine { return NewTimelineEngine() },
	"activity":      func(*config.AnalysisConfig) Engine { return NewActivityEngine() },
	"words":         func(c *config.AnalysisConfig) Engine { return NewWordsEngine(c.TopWords, c.Stopwords) },
	"emoji":         func(c *config.AnalysisConfig) Engine { return NewEmojiEngine(c.TopEmojis) },
	"sentiment":     func(c *config.AnalysisConfig) Engine { return NewSentimentEngine(c.MoodShiftThreshold) },
	"types":         func(*config.AnalysisConfig) Engine { return NewTypesEngine() },
	"conversations": func(c *config.AnalysisConfig) Engine { return NewConversationsEngine(c.ConversationGap) },
	"replies":       func(c *config.AnalysisConfig) Engine { return NewRepliesEngine(c.LateReplyThreshold) },
	"forecast":      func(c *config.AnalysisConfig) Engine { return NewForecastEngine(c.ForecastDays) },
	"topics":        func(c *config.AnalysisConfig) Engine { return NewTopicsEngine(c.NumTopics, c.NumWords, c.Stopwords) },
}

// createEngine creates the engine registered under name.
func createEngine(name string, cfg *config.AnalysisConfig) (Engine, error) {
	factory, ok := engineFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown analysis: %s", name)
	}
	return factory(cfg), nil
}

// Engines returns the names of the engines this analyzer runs, in order.
func (a *Analyzer) Engines() []string {
	names := make([]string, len(a.engines))
	for i, e := range a.engines {
		names[i] = e.Name()
	}
	return names
}

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	Results  Results          `json:"results" yaml:"results"`
	Metadata AnalysisMetadata `json:"metadata" yaml:"metadata"`
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// Sources lists the export files that were analyzed.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Format is the timestamp format of the export(s).
	Format string `json:"format" yaml:"format"`

	// User is the selected user, empty for the whole chat.
	User string `json:"user,omitempty" yaml:"user,omitempty"`

	// Users lists the chat's authors in order of first appearance.
	Users []string `json:"users" yaml:"users"`

	// TimeRange is the time filter applied, if any.
	TimeRange *TimeRange `json:"time_range,omitempty" yaml:"time_range,omitempty"`

	// FirstMessage and LastMessage bound the analyzed rows.
	FirstMessage time.Time `json:"first_message" yaml:"first_message"`
	LastMessage  time.Time `json:"last_message" yaml:"last_message"`

	RowsProcessed int `json:"rows_processed" yaml:"rows_processed"`
	RowsDropped   int `json:"rows_dropped" yaml:"rows_dropped"`
	OutOfOrder    int `json:"out_of_order" yaml:"out_of_order"`

	// Analyses lists the engines that ran.
	Analyses []string `json:"analyses" yaml:"analyses"`

	StartTime time.Time `json:"start_time" yaml:"start_time"`
	EndTime   time.Time `json:"end_time" yaml:"end_time"`
}

// Analyze runs every engine over tbl and returns their records.
func (a *Analyzer) Analyze(ctx context.Context, tbl *table.Table) (*AnalysisResult, error) {
	rows := tbl
	if a.timeRange != nil {
		rows = tbl.Between(a.timeRange.Start, a.timeRange.End)
	}

	result := &AnalysisResult{
		Metadata: AnalysisMetadata{
			Format:      tbl.Format(),
			User:        a.user,
			Users:       rows.Users(),
			TimeRange:   a.timeRange,
			RowsDropped: len(tbl.Dropped()),
			OutOfOrder:  rows.OutOfOrder(),
			Analyses:    a.Engines(),
			StartTime:   time.Now(),
		},
	}
	if a.user != "" {
		known := false
		for _, u := range result.Metadata.Users {
			if u == a.user {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("user %q not found in chat", a.user)
		}
	}

	// Reset all engines before analysis
	for _, engine := range a.engines {
		engine.Reset()
	}

	var procErr error
	rows.Each(func(_ int, m *table.Message) bool {
		if err := ctx.Err(); err != nil {
			procErr = err
			return false
		}

		selected := a.user == "" || m.User == a.user
		if selected {
			result.Metadata.RowsProcessed++
			if result.Metadata.FirstMessage.IsZero() || m.Timestamp.Before(result.Metadata.FirstMessage) {
				result.Metadata.FirstMessage = m.Timestamp
			}
			if m.Timestamp.After(result.Metadata.LastMessage) {
				result.Metadata.LastMessage = m.Timestamp
			}
		}

		for _, engine := range a.engines {
			if engine.Scope() == ScopeUser && !selected {
				continue
			}
			if err := engine.Process(ctx, m); err != nil {
				procErr = fmt.Errorf("processing line %d with %q: %w", m.Line, engine.Name(), err)
				return false
			}
		}
		return true
	})
	if procErr != nil {
		return nil, procErr
	}

	for _, engine := range a.engines {
		if err := engine.Finalize(ctx, &result.Results); err != nil {
			return nil, fmt.Errorf("finalizing %q: %w", engine.Name(), err)
		}
	}

	result.Metadata.EndTime = time.Now()

	return result, nil
}
