package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/chatstat/pkg/detector"
)

// Load reads and validates a configuration file. Files ending in .toml are
// decoded as TOML, everything else as YAML.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or returns the validated defaults when path is empty.
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}
	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown key %q", undecoded[0].String())
		}
		return nil
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// Validate checks a configuration for errors and fills defaults.
func Validate(cfg *Config) error {
	if err := validateParser(&cfg.Parser); err != nil {
		return fmt.Errorf("parser: %w", err)
	}

	if err := validateAnalysis(&cfg.Analysis); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}
	if !contains(OutputFormats, cfg.Output.Format) {
		return fmt.Errorf("output: invalid format %q (must be %s)", cfg.Output.Format, strings.Join(OutputFormats, ", "))
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateParser(p *ParserConfig) error {
	order, err := detector.ParseDateOrder(p.DateOrder)
	if err != nil {
		return err
	}
	p.DateOrder = string(order)

	if p.SampleSize < 0 {
		return errors.New("sample_size must be >= 0")
	}
	return nil
}

func validateAnalysis(a *AnalysisConfig) error {
	for _, name := range a.Enabled {
		if !contains(KnownAnalyses, name) {
			return fmt.Errorf("unknown analysis %q in enabled (known: %s)", name, strings.Join(KnownAnalyses, ", "))
		}
	}

	if a.ConversationGap < 0 {
		return errors.New("conversation_gap must be positive")
	}
	if a.ConversationGap == 0 {
		a.ConversationGap = DefaultConversationGap
	}
	if a.LateReplyThreshold < 0 {
		return errors.New("late_reply_threshold must be positive")
	}
	if a.LateReplyThreshold == 0 {
		a.LateReplyThreshold = DefaultLateReplyThreshold
	}

	if a.TopWords < 0 || a.TopEmojis < 0 {
		return errors.New("top_words and top_emojis must be >= 0")
	}
	if a.TopWords == 0 {
		a.TopWords = DefaultTopWords
	}
	if a.TopEmojis == 0 {
		a.TopEmojis = DefaultTopEmojis
	}

	if a.ForecastDays < 0 || a.ForecastDays > 365 {
		return fmt.Errorf("forecast_days must be between 0 and 365, got %d", a.ForecastDays)
	}

	if a.NumTopics < 0 || a.NumTopics > 50 {
		return fmt.Errorf("num_topics must be between 0 and 50, got %d", a.NumTopics)
	}
	if a.NumTopics == 0 {
		a.NumTopics = DefaultNumTopics
	}
	if a.NumWords < 0 {
		return errors.New("num_words must be >= 0")
	}
	if a.NumWords == 0 {
		a.NumWords = DefaultNumWords
	}

	if a.MoodShiftThreshold < 0 || a.MoodShiftThreshold > 2 {
		return fmt.Errorf("mood_shift_threshold must be between 0 and 2, got %g", a.MoodShiftThreshold)
	}
	if a.MoodShiftThreshold == 0 {
		a.MoodShiftThreshold = DefaultMoodShiftThreshold
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerAlways
	case WebhookTriggerAlways, WebhookTriggerOnDropped, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be always, on_dropped, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands a value of the form ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") && len(s) > 1 {
		return os.Getenv(s[1:])
	}
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
