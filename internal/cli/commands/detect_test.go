package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/detector"
)

func TestRunDetect_Success(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "chat.txt", chatExport)

	out, err := execute(t, NewDetectCommand(), path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	for _, want := range []string{
		"Detected Format: Android 12-hour (M/D/Y)",
		"Confidence: 100.0% (6/6 dated lines matched)",
		"Parsed as: 2023-01-02 09:59:00",
		"date_order: mdy",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Note:") {
		t.Errorf("Unexpected note:\n%s", out)
	}
}

func TestRunDetect_Ambiguous(t *testing.T) {
	export := "01/05/2024, 10:30 - Alice: one\n01/06/2024, 10:35 - Bob: two\n"
	path := writeFixture(t, t.TempDir(), "chat.txt", export)

	out, err := execute(t, NewDetectCommand(), "--all", path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(out, "Note: every date fits both") {
		t.Errorf("Expected ambiguity note:\n%s", out)
	}
	if !strings.Contains(out, "--- Alternative formats detected ---") {
		t.Errorf("Expected alternatives with --all:\n%s", out)
	}
}

func TestRunDetect_DateOrder(t *testing.T) {
	export := "01/05/2024, 10:30 - Alice: one\n01/06/2024, 10:35 - Bob: two\n"
	path := writeFixture(t, t.TempDir(), "chat.txt", export)

	out, err := execute(t, NewDetectCommand(), "--date-order", "mdy", path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(out, "Detected Format: Android 24-hour (M/D/Y)") {
		t.Errorf("Expected month-first format:\n%s", out)
	}
}

func TestRunDetect_NoMatch(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "notes.txt", "shopping list\nmilk\n")

	out, err := execute(t, NewDetectCommand(), path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(out, "No timestamp format detected.") {
		t.Errorf("Expected no-match message:\n%s", out)
	}
}

func TestRunDetect_JSONOutput(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "chat.txt", chatExport)

	out, err := execute(t, NewDetectCommand(), "-o", "json", path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	var result JSONOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, out)
	}
	if result.Candidates != 6 || result.ParsedLines != 6 {
		t.Errorf("Candidates = %d, ParsedLines = %d, want 6 and 6", result.Candidates, result.ParsedLines)
	}
	if !result.Majority {
		t.Error("Expected majority")
	}
	if len(result.Matches) != 1 {
		t.Fatalf("Expected only the best match without --all, got %d", len(result.Matches))
	}
	if result.Matches[0].DateOrder != "mdy" {
		t.Errorf("DateOrder = %q, want mdy", result.Matches[0].DateOrder)
	}
}

func TestRunDetect_Errors(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "chat.txt", chatExport)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"/nonexistent/chat.txt"}},
		{"bad date order", []string{"--date-order", "ydm", path}},
		{"bad output", []string{"-o", "yaml", path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, NewDetectCommand(), tt.args...); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestRunDetect_WriteConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFixture(t, tmpDir, "chat.txt", chatExport)
	configPath := filepath.Join(tmpDir, "chatstat.yaml")

	out, err := execute(t, NewDetectCommand(), "-w", configPath, path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(out, "Wrote starter config to: "+configPath) {
		t.Errorf("Expected write confirmation:\n%s", out)
	}

	// The starter config must load as-is
	cfg, err := config.Load(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Generated config does not load: %v", err)
	}
	if cfg.Parser.DateOrder != "mdy" {
		t.Errorf("DateOrder = %q, want mdy", cfg.Parser.DateOrder)
	}

	// Second run must not overwrite
	if _, err := execute(t, NewDetectCommand(), "-w", configPath, path); err == nil {
		t.Error("Expected error when config already exists")
	}
}

func TestWriteStarterConfig_NoMatch(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "chatstat.yaml")

	var buf bytes.Buffer
	err := writeStarterConfig(&buf, &detector.DetectionResult{}, "chat.txt", configPath)
	if err == nil {
		t.Fatal("Expected error without a detected format")
	}
	if _, statErr := os.Stat(configPath); !os.IsNotExist(statErr) {
		t.Error("Config file should not be created")
	}
}

func TestGenerateStarterConfig(t *testing.T) {
	match := &detector.FormatMatch{
		Format: &detector.TimestampFormat{
			Name:  "iOS 24-hour (D/M/Y)",
			Order: detector.DayFirst,
		},
		Confidence: 0.95,
	}

	cfg := generateStarterConfig("/exports/chat.txt", match)

	for _, want := range []string{
		"/exports/chat.txt",
		"iOS 24-hour (D/M/Y)",
		"95%",
		"date_order: dmy",
		"conversation_gap: 1h",
		"format: text",
	} {
		if !strings.Contains(cfg, want) {
			t.Errorf("Config missing %q:\n%s", want, cfg)
		}
	}
}
