package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultDateOrder          = "auto"
	DefaultConversationGap    = time.Hour
	DefaultLateReplyThreshold = 24 * time.Hour
	DefaultTopWords           = 20
	DefaultTopEmojis          = 10
	DefaultForecastDays       = 7
	DefaultMoodShiftThreshold = 0.5
	DefaultNumTopics          = 3
	DefaultNumWords           = 5
	DefaultOutputFormat       = "text"
	DefaultWebhookTimeout     = 10 * time.Second
)

// Environment variable names.
const (
	EnvDateOrder = "CHATSTAT_DATE_ORDER"
	EnvOutput    = "CHATSTAT_OUTPUT"
)

// KnownAnalyses lists every analysis name accepted in analysis.enabled.
var KnownAnalyses = []string{
	"stats",
	"users",
	"timeline",
	"activity",
	"words",
	"emoji",
	"sentiment",
	"types",
	"conversations",
	"replies",
	"forecast",
	"topics",
}

// OutputFormats lists the accepted report formats.
var OutputFormats = []string{"text", "json", "yaml"}

// DefaultStopwords are skipped by the word analysis. Matching is case-insensitive.
var DefaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from",
	"has", "have", "he", "her", "his", "i", "if", "in", "is", "it", "its",
	"me", "my", "no", "not", "of", "on", "or", "our", "she", "so", "that",
	"the", "their", "them", "then", "there", "they", "this", "to", "too",
	"up", "us", "was", "we", "were", "what", "when", "which", "who", "will",
	"with", "you", "your", "im", "ok", "okay", "yes", "yeah", "just",
	"deleted", "message", "omitted", "media",
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Parser: ParserConfig{
			DateOrder: DefaultDateOrder,
		},
		Analysis: AnalysisConfig{
			ConversationGap:    DefaultConversationGap,
			LateReplyThreshold: DefaultLateReplyThreshold,
			TopWords:           DefaultTopWords,
			TopEmojis:          DefaultTopEmojis,
			Stopwords:          append([]string(nil), DefaultStopwords...),
			ForecastDays:       DefaultForecastDays,
			MoodShiftThreshold: DefaultMoodShiftThreshold,
			NumTopics:          DefaultNumTopics,
			NumWords:           DefaultNumWords,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if order := os.Getenv(EnvDateOrder); order != "" {
		c.Parser.DateOrder = order
	}
	if format := os.Getenv(EnvOutput); format != "" {
		c.Output.Format = format
	}
}
