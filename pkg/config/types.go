// Package config provides configuration loading and validation for chatstat.
package config

import (
	"time"
)

// Config is the root configuration structure loaded from YAML or TOML.
type Config struct {
	Parser   ParserConfig    `yaml:"parser" toml:"parser"`
	Media    MediaConfig     `yaml:"media" toml:"media"`
	Analysis AnalysisConfig  `yaml:"analysis" toml:"analysis"`
	Output   OutputConfig    `yaml:"output" toml:"output"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty" toml:"webhooks,omitempty"`
}

// ParserConfig controls format detection.
type ParserConfig struct {
	// DateOrder forces day-first (dmy), month-first (mdy) or year-first (ymd)
	// dates. "auto" lets detection decide.
	DateOrder string `yaml:"date_order" toml:"date_order"`

	// SampleSize limits detection to the first N lines. 0 reads the whole export.
	SampleSize int `yaml:"sample_size" toml:"sample_size"`
}

// MediaConfig lists attachment placeholders.
type MediaConfig struct {
	Markers  []string `yaml:"markers,omitempty" toml:"markers,omitempty"`
	Prefixes []string `yaml:"prefixes,omitempty" toml:"prefixes,omitempty"`
}

// AnalysisConfig tunes the analysis engines.
type AnalysisConfig struct {
	// Enabled lists the analyses to run. Empty runs all of them.
	Enabled []string `yaml:"enabled,omitempty" toml:"enabled,omitempty"`

	// ConversationGap is the silence that ends a conversation.
	ConversationGap time.Duration `yaml:"conversation_gap" toml:"conversation_gap"`

	// LateReplyThreshold marks a reply as late.
	LateReplyThreshold time.Duration `yaml:"late_reply_threshold" toml:"late_reply_threshold"`

	TopWords  int      `yaml:"top_words" toml:"top_words"`
	TopEmojis int      `yaml:"top_emojis" toml:"top_emojis"`
	Stopwords []string `yaml:"stopwords,omitempty" toml:"stopwords,omitempty"`

	// ForecastDays is how many days ahead the forecast predicts.
	ForecastDays int `yaml:"forecast_days" toml:"forecast_days"`

	// NumTopics and NumWords size the topic model.
	NumTopics int `yaml:"num_topics" toml:"num_topics"`
	NumWords  int `yaml:"num_words" toml:"num_words"`

	// MoodShiftThreshold is the sentiment change between consecutive
	// messages that counts as lifting or dampening the mood.
	MoodShiftThreshold float64 `yaml:"mood_shift_threshold" toml:"mood_shift_threshold"`
}

// IsEnabled reports whether the named analysis should run.
func (a *AnalysisConfig) IsEnabled(name string) bool {
	if len(a.Enabled) == 0 {
		return true
	}
	for _, n := range a.Enabled {
		if n == name {
			return true
		}
	}
	return false
}

// OutputConfig selects the report format.
type OutputConfig struct {
	Format string `yaml:"format" toml:"format"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerAlways fires after every analysis (default).
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerOnDropped fires only when rows were dropped.
	WebhookTriggerOnDropped WebhookTrigger = "on_dropped"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty" toml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url" toml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty" toml:"token,omitempty"`

	// Trigger defaults to "always".
	Trigger WebhookTrigger `yaml:"trigger,omitempty" toml:"trigger,omitempty"`

	// Timeout defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}
