package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidYAML(t *testing.T) {
	content := `
parser:
  date_order: dmy
  sample_size: 500
media:
  markers:
    - "<Medien ausgeschlossen>"
analysis:
  enabled: [stats, words]
  conversation_gap: 30m
  top_words: 5
  stopwords: [und, der]
output:
  format: json
`
	path := writeTempFile(t, "chatstat.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Parser.DateOrder != "dmy" {
		t.Errorf("DateOrder = %q, want dmy", cfg.Parser.DateOrder)
	}
	if cfg.Parser.SampleSize != 500 {
		t.Errorf("SampleSize = %d, want 500", cfg.Parser.SampleSize)
	}
	if len(cfg.Media.Markers) != 1 {
		t.Errorf("Markers = %v, want 1 entry", cfg.Media.Markers)
	}
	if cfg.Analysis.ConversationGap != 30*time.Minute {
		t.Errorf("ConversationGap = %v, want 30m", cfg.Analysis.ConversationGap)
	}
	if cfg.Analysis.TopWords != 5 {
		t.Errorf("TopWords = %d, want 5", cfg.Analysis.TopWords)
	}
	if len(cfg.Analysis.Stopwords) != 2 {
		t.Errorf("Stopwords = %v, want 2 entries", cfg.Analysis.Stopwords)
	}
	// Unset fields keep their defaults
	if cfg.Analysis.LateReplyThreshold != DefaultLateReplyThreshold {
		t.Errorf("LateReplyThreshold = %v, want default", cfg.Analysis.LateReplyThreshold)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", cfg.Output.Format)
	}
	if !cfg.Analysis.IsEnabled("words") || cfg.Analysis.IsEnabled("emoji") {
		t.Error("IsEnabled() does not honour analysis.enabled")
	}
}

func TestLoad_ValidTOML(t *testing.T) {
	content := `
[parser]
date_order = "mdy"

[analysis]
conversation_gap = "2h"
late_reply_threshold = "12h"
forecast_days = 14
num_topics = 4

[output]
format = "yaml"

[[webhooks]]
name = "report"
url = "https://example.com/hook"
trigger = "on_dropped"
timeout = "5s"
`
	path := writeTempFile(t, "chatstat.toml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Parser.DateOrder != "mdy" {
		t.Errorf("DateOrder = %q, want mdy", cfg.Parser.DateOrder)
	}
	if cfg.Analysis.ConversationGap != 2*time.Hour {
		t.Errorf("ConversationGap = %v, want 2h", cfg.Analysis.ConversationGap)
	}
	if cfg.Analysis.LateReplyThreshold != 12*time.Hour {
		t.Errorf("LateReplyThreshold = %v, want 12h", cfg.Analysis.LateReplyThreshold)
	}
	if cfg.Analysis.ForecastDays != 14 {
		t.Errorf("ForecastDays = %d, want 14", cfg.Analysis.ForecastDays)
	}
	if cfg.Analysis.NumTopics != 4 {
		t.Errorf("NumTopics = %d, want 4", cfg.Analysis.NumTopics)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("Output.Format = %q, want yaml", cfg.Output.Format)
	}
	if len(cfg.Webhooks) != 1 {
		t.Fatalf("Webhooks = %d, want 1", len(cfg.Webhooks))
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerOnDropped {
		t.Errorf("Trigger = %q, want on_dropped", cfg.Webhooks[0].Trigger)
	}
	if cfg.Webhooks[0].Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Webhooks[0].Timeout)
	}
}

func TestLoad_TOMLUnknownKey(t *testing.T) {
	path := writeTempFile(t, "chatstat.toml", "[parser]\ndate_ordr = \"dmy\"\n")
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Fatal("Load() expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "date_ordr") {
		t.Errorf("error = %v, want it to name the key", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := Load(context.Background(), "/nonexistent/chatstat.yaml"); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempFile(t, "invalid.yaml", `invalid: yaml: content: [`)
	if _, err := Load(context.Background(), path); err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvDateOrder, "ymd")
	t.Setenv(EnvOutput, "json")

	path := writeTempFile(t, "chatstat.yaml", "parser:\n  date_order: dmy\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Parser.DateOrder != "ymd" {
		t.Errorf("DateOrder = %q, want ymd from environment", cfg.Parser.DateOrder)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json from environment", cfg.Output.Format)
	}
}

func TestLoadOrDefault_NoPath(t *testing.T) {
	cfg, err := LoadOrDefault(context.Background(), "")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Parser.DateOrder != "auto" {
		t.Errorf("DateOrder = %q, want auto", cfg.Parser.DateOrder)
	}
	if cfg.Analysis.TopWords != DefaultTopWords {
		t.Errorf("TopWords = %d, want %d", cfg.Analysis.TopWords, DefaultTopWords)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad date order", func(c *Config) { c.Parser.DateOrder = "ydm" }, "parser"},
		{"negative sample", func(c *Config) { c.Parser.SampleSize = -1 }, "sample_size"},
		{"unknown analysis", func(c *Config) { c.Analysis.Enabled = []string{"horoscope"} }, "horoscope"},
		{"negative gap", func(c *Config) { c.Analysis.ConversationGap = -time.Minute }, "conversation_gap"},
		{"forecast too long", func(c *Config) { c.Analysis.ForecastDays = 400 }, "forecast_days"},
		{"mood threshold", func(c *Config) { c.Analysis.MoodShiftThreshold = 3 }, "mood_shift_threshold"},
		{"too many topics", func(c *Config) { c.Analysis.NumTopics = 51 }, "num_topics"},
		{"negative topic words", func(c *Config) { c.Analysis.NumWords = -1 }, "num_words"},
		{"bad output", func(c *Config) { c.Output.Format = "xml" }, "output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_FillsZeroDefaults(t *testing.T) {
	cfg := &Config{}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Parser.DateOrder != "auto" {
		t.Errorf("DateOrder = %q, want auto", cfg.Parser.DateOrder)
	}
	if cfg.Analysis.ConversationGap != DefaultConversationGap {
		t.Errorf("ConversationGap = %v, want default", cfg.Analysis.ConversationGap)
	}
	if cfg.Analysis.TopEmojis != DefaultTopEmojis {
		t.Errorf("TopEmojis = %d, want default", cfg.Analysis.TopEmojis)
	}
	if cfg.Analysis.NumTopics != DefaultNumTopics || cfg.Analysis.NumWords != DefaultNumWords {
		t.Errorf("NumTopics/NumWords = %d/%d, want defaults", cfg.Analysis.NumTopics, cfg.Analysis.NumWords)
	}
	if cfg.Output.Format != DefaultOutputFormat {
		t.Errorf("Output.Format = %q, want default", cfg.Output.Format)
	}
}

func TestValidate_Webhooks(t *testing.T) {
	tests := []struct {
		name    string
		webhook WebhookConfig
		wantErr bool
	}{
		{"valid https", WebhookConfig{URL: "https://example.com/hook"}, false},
		{"valid http", WebhookConfig{URL: "http://localhost:8080/hook"}, false},
		{"missing url", WebhookConfig{Trigger: WebhookTriggerAlways}, true},
		{"bad scheme", WebhookConfig{URL: "ftp://example.com/hook"}, true},
		{"no host", WebhookConfig{URL: "https:///hook"}, true},
		{"bad trigger", WebhookConfig{URL: "https://example.com", Trigger: "sometimes"}, true},
		{"never", WebhookConfig{URL: "https://example.com", Trigger: WebhookTriggerNever}, false},
		{"on dropped", WebhookConfig{URL: "https://example.com", Trigger: WebhookTriggerOnDropped}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Webhooks = []WebhookConfig{tt.webhook}
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_WebhookDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{URL: "https://example.com/hook"}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerAlways {
		t.Errorf("Trigger = %q, want always", cfg.Webhooks[0].Trigger)
	}
	if cfg.Webhooks[0].Timeout != DefaultWebhookTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Webhooks[0].Timeout, DefaultWebhookTimeout)
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_TOKEN", "secret-value")

	tests := []struct {
		input string
		want  string
	}{
		{"${TEST_WEBHOOK_TOKEN}", "secret-value"},
		{"$TEST_WEBHOOK_TOKEN", "secret-value"},
		{"plain-value", "plain-value"},
		{"", ""},
		{"${NONEXISTENT_VAR}", ""},
	}

	for _, tt := range tests {
		if got := expandEnvVar(tt.input); got != tt.want {
			t.Errorf("expandEnvVar(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
