package commands

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/output"
	"github.com/ccollicutt/chatstat/pkg/webhook"
)

// jsonReport is the part of the JSON report the command tests inspect.
type jsonReport struct {
	Summary  output.Summary  `json:"summary"`
	Notes    []string        `json:"notes"`
	Metadata output.Metadata `json:"metadata"`
}

func decodeReports(t *testing.T, out string) []jsonReport {
	t.Helper()
	var reports []jsonReport
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var r jsonReport
		if err := dec.Decode(&r); err != nil {
			t.Fatalf("Invalid JSON output: %v\n%s", err, out)
		}
		reports = append(reports, r)
	}
	return reports
}

func TestRunAnalyze_JSON(t *testing.T) {
	resetExitCode(t)
	path := writeFixture(t, t.TempDir(), "chat.txt", chatExport)

	out, err := execute(t, NewAnalyzeCommand(), "-o", "json", path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	reports := decodeReports(t, out)
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	r := reports[0]
	if r.Summary.Messages != 6 {
		t.Errorf("Messages = %d, want 6", r.Summary.Messages)
	}
	if r.Summary.Users != 2 {
		t.Errorf("Users = %d, want 2", r.Summary.Users)
	}
	if r.Summary.RowsDropped != 0 {
		t.Errorf("RowsDropped = %d, want 0", r.Summary.RowsDropped)
	}
	if r.Metadata.Format != "Android 12-hour (M/D/Y)" {
		t.Errorf("Format = %q", r.Metadata.Format)
	}
	if len(r.Metadata.Sources) != 1 || r.Metadata.Sources[0] != path {
		t.Errorf("Sources = %v, want [%s]", r.Metadata.Sources, path)
	}
	if len(r.Notes) != 0 {
		t.Errorf("Unexpected notes: %v", r.Notes)
	}
	if ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", ExitCode)
	}
}

func TestRunAnalyze_Text(t *testing.T) {
	resetExitCode(t)
	path := writeFixture(t, t.TempDir(), "chat.txt", chatExport)

	out, err := execute(t, NewAnalyzeCommand(), path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	for _, want := range []string{"=== chatstat Analysis Report ===", "Summary:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRunAnalyze_ConfigOutputFormat(t *testing.T) {
	resetExitCode(t)
	tmpDir := t.TempDir()
	path := writeFixture(t, tmpDir, "chat.txt", chatExport)
	configPath := writeFixture(t, tmpDir, "chatstat.yaml", "output:\n  format: yaml\n")

	out, err := execute(t, NewAnalyzeCommand(), "-c", configPath, path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(out, "summary:") || !strings.Contains(out, "messages: 6") {
		t.Errorf("Expected YAML report, got:\n%s", out)
	}
}

func TestRunAnalyze_User(t *testing.T) {
	resetExitCode(t)
	path := writeFixture(t, t.TempDir(), "chat.txt", chatExport)

	out, err := execute(t, NewAnalyzeCommand(), "-o", "json", "--user", "Alice", "-a", "stats", path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	r := decodeReports(t, out)[0]
	if r.Summary.Messages != 3 {
		t.Errorf("Messages = %d, want 3", r.Summary.Messages)
	}
	if r.Metadata.User != "Alice" {
		t.Errorf("User = %q, want Alice", r.Metadata.User)
	}
	if len(r.Metadata.Analyses) != 1 || r.Metadata.Analyses[0] != "stats" {
		t.Errorf("Analyses = %v, want [stats]", r.Metadata.Analyses)
	}
}

func TestRunAnalyze_UnknownUser(t *testing.T) {
	resetExitCode(t)
	path := writeFixture(t, t.TempDir(), "chat.txt", chatExport)

	_, err := execute(t, NewAnalyzeCommand(), "--user", "Zed", path)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected user not found error, got %v", err)
	}
}

func TestRunAnalyze_DateRange(t *testing.T) {
	resetExitCode(t)
	path := writeFixture(t, t.TempDir(), "chat.txt", chatExport)

	out, err := execute(t, NewAnalyzeCommand(), "-o", "json", "--from", "2023-01-03", "--to", "2023-01-04", path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	r := decodeReports(t, out)[0]
	if r.Summary.Messages != 1 {
		t.Errorf("Messages = %d, want 1", r.Summary.Messages)
	}
	if r.Metadata.TimeRange == nil {
		t.Error("Expected time range in metadata")
	}
}

func TestRunAnalyze_InvalidFlags(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "chat.txt", chatExport)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad from", []string{"--from", "2023/01/01"}, "invalid --from"},
		{"to before from", []string{"--from", "2023-02-01", "--to", "2023-01-01"}, "must be after"},
		{"unknown analysis", []string{"-a", "bogus"}, "unknown analysis"},
		{"bad output", []string{"-o", "xml"}, "xml"},
		{"bad trigger", []string{"--webhook-trigger", "on_issues"}, "invalid --webhook-trigger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetExitCode(t)
			_, err := execute(t, NewAnalyzeCommand(), append(tt.args, path)...)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRunAnalyze_MissingFile(t *testing.T) {
	resetExitCode(t)
	_, err := execute(t, NewAnalyzeCommand(), "/nonexistent/chat.txt")
	if err == nil {
		t.Error("Expected error for missing export")
	}
}

func TestRunAnalyze_NotAnExport(t *testing.T) {
	resetExitCode(t)
	path := writeFixture(t, t.TempDir(), "notes.txt", "shopping list\nmilk\n")

	_, err := execute(t, NewAnalyzeCommand(), path)
	if err == nil || !strings.Contains(err.Error(), "no timestamped message lines") {
		t.Errorf("Expected format error, got %v", err)
	}
}

func TestRunAnalyze_Strict(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "chat.txt", badDateExport)

	t.Run("without strict", func(t *testing.T) {
		resetExitCode(t)
		out, err := execute(t, NewAnalyzeCommand(), "-o", "json", path)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		r := decodeReports(t, out)[0]
		if r.Summary.RowsDropped != 1 {
			t.Errorf("RowsDropped = %d, want 1", r.Summary.RowsDropped)
		}
		if len(r.Notes) != 1 || !strings.Contains(r.Notes[0], "1 row(s) dropped") {
			t.Errorf("Notes = %v", r.Notes)
		}
		if ExitCode != 0 {
			t.Errorf("ExitCode = %d, want 0", ExitCode)
		}
	})

	t.Run("strict", func(t *testing.T) {
		resetExitCode(t)
		if _, err := execute(t, NewAnalyzeCommand(), "-q", "--strict", path); err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if ExitCode != 1 {
			t.Errorf("ExitCode = %d, want 1", ExitCode)
		}
	})
}

func TestRunAnalyze_MultipleExports(t *testing.T) {
	tmpDir := t.TempDir()
	phone := writeFixture(t, tmpDir, "phone.txt", chatExport)
	laptop := writeFixture(t, tmpDir, "laptop.txt", iosExport)

	t.Run("per file", func(t *testing.T) {
		resetExitCode(t)
		out, err := execute(t, NewAnalyzeCommand(), "-o", "json", phone, laptop)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		reports := decodeReports(t, out)
		if len(reports) != 2 {
			t.Fatalf("got %d reports, want 2", len(reports))
		}
		// Files are sorted by ExpandGlobs
		if reports[0].Metadata.Sources[0] != laptop || reports[1].Metadata.Sources[0] != phone {
			t.Errorf("unexpected report order: %v, %v", reports[0].Metadata.Sources, reports[1].Metadata.Sources)
		}
		if reports[0].Metadata.Format != "iOS 12-hour (M/D/Y)" {
			t.Errorf("laptop format = %q", reports[0].Metadata.Format)
		}
	})

	t.Run("merged", func(t *testing.T) {
		resetExitCode(t)
		out, err := execute(t, NewAnalyzeCommand(), "-o", "json", "--merge", phone, laptop)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		reports := decodeReports(t, out)
		if len(reports) != 1 {
			t.Fatalf("got %d reports, want 1", len(reports))
		}
		r := reports[0]
		if r.Summary.Messages != 8 {
			t.Errorf("Messages = %d, want 8", r.Summary.Messages)
		}
		if r.Summary.Users != 3 {
			t.Errorf("Users = %d, want 3", r.Summary.Users)
		}
		if r.Summary.OutOfOrder != 0 {
			t.Errorf("OutOfOrder = %d, want 0", r.Summary.OutOfOrder)
		}
		if len(r.Metadata.Sources) != 2 {
			t.Errorf("Sources = %v", r.Metadata.Sources)
		}
	})

	t.Run("directory", func(t *testing.T) {
		resetExitCode(t)
		out, err := execute(t, NewAnalyzeCommand(), "-o", "json", "-q", tmpDir)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if n := strings.Count(out, `"messages"`); n != 2 {
			t.Errorf("got %d summaries, want 2:\n%s", n, out)
		}
	})
}

func TestRunAnalyze_SavedDatabase(t *testing.T) {
	resetExitCode(t)
	tmpDir := t.TempDir()
	path := writeFixture(t, tmpDir, "chat.txt", chatExport)
	dbPath := filepath.Join(tmpDir, "chat.db")

	if _, err := execute(t, NewExportCommand(), "-f", "sqlite", "-O", dbPath, path); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	out, err := execute(t, NewAnalyzeCommand(), "-o", "json", dbPath)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	r := decodeReports(t, out)[0]
	if r.Summary.Messages != 6 || r.Summary.Users != 2 {
		t.Errorf("Summary = %+v", r.Summary)
	}
	if r.Metadata.Format != "Android 12-hour (M/D/Y)" {
		t.Errorf("Format = %q", r.Metadata.Format)
	}
}

func TestRunAnalyze_Webhook(t *testing.T) {
	var (
		mu       sync.Mutex
		payloads []webhook.Payload
		auth     []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var p webhook.Payload
		_ = json.Unmarshal(body, &p)
		mu.Lock()
		payloads = append(payloads, p)
		auth = append(auth, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tmpDir := t.TempDir()
	clean := writeFixture(t, tmpDir, "clean.txt", chatExport)
	dirty := writeFixture(t, tmpDir, "dirty.txt", badDateExport)

	tests := []struct {
		name      string
		file      string
		trigger   string
		wantCalls int
		wantEvent string
	}{
		{"always fires", clean, "always", 1, webhook.EventAnalysisCompleted},
		{"on_dropped skips clean export", clean, "on_dropped", 0, ""},
		{"on_dropped fires on dropped rows", dirty, "on_dropped", 1, webhook.EventRowsDropped},
		{"never", dirty, "never", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetExitCode(t)
			mu.Lock()
			payloads, auth = nil, nil
			mu.Unlock()

			_, err := execute(t, NewAnalyzeCommand(), "-q",
				"--webhook-url", server.URL,
				"--webhook-token", "s3cret",
				"--webhook-trigger", tt.trigger,
				tt.file)
			if err != nil {
				t.Fatalf("analyze failed: %v", err)
			}

			mu.Lock()
			defer mu.Unlock()
			if len(payloads) != tt.wantCalls {
				t.Fatalf("webhook called %d times, want %d", len(payloads), tt.wantCalls)
			}
			if tt.wantCalls == 0 {
				return
			}
			if payloads[0].Event != tt.wantEvent {
				t.Errorf("Event = %q, want %q", payloads[0].Event, tt.wantEvent)
			}
			if payloads[0].Report == nil || payloads[0].Report.Summary.Messages == 0 {
				t.Error("Expected report in payload")
			}
			if auth[0] != "Bearer s3cret" {
				t.Errorf("Authorization = %q", auth[0])
			}
		})
	}
}

func TestRunAnalyze_WebhookFailureDoesNotFail(t *testing.T) {
	resetExitCode(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	path := writeFixture(t, t.TempDir(), "chat.txt", chatExport)
	if _, err := execute(t, NewAnalyzeCommand(), "-q", "--webhook-url", server.URL, path); err != nil {
		t.Errorf("webhook failure should not fail analysis: %v", err)
	}
	if ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", ExitCode)
	}
}

func TestCollectWebhooks(t *testing.T) {
	t.Run("config only", func(t *testing.T) {
		cfg := &config.Config{
			Webhooks: []config.WebhookConfig{
				{Name: "reports", URL: "https://example.com/a"},
				{Name: "archive", URL: "https://example.com/b"},
			},
		}

		webhooks := collectWebhooks(cfg, &AnalyzeOptions{})

		if len(webhooks) != 2 {
			t.Errorf("got %d webhooks, want 2", len(webhooks))
		}
	})

	t.Run("cli appended", func(t *testing.T) {
		cfg := &config.Config{
			Webhooks: []config.WebhookConfig{{Name: "reports", URL: "https://example.com/a"}},
		}
		opts := &AnalyzeOptions{WebhookURL: "https://example.com/cli", WebhookToken: "tok"}

		webhooks := collectWebhooks(cfg, opts)

		if len(webhooks) != 2 {
			t.Fatalf("got %d webhooks, want 2", len(webhooks))
		}
		cli := webhooks[1]
		if cli.Name != "cli" || cli.Token != "tok" {
			t.Errorf("cli webhook = %+v", cli)
		}
		if cli.Trigger != config.WebhookTriggerAlways {
			t.Errorf("Trigger = %q, want always", cli.Trigger)
		}
		if cli.Timeout != config.DefaultWebhookTimeout {
			t.Errorf("Timeout = %v, want %v", cli.Timeout, config.DefaultWebhookTimeout)
		}
	})
}

func TestCreateFormatter(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		flag    string
		cfgFmt  string
		want    string
		wantErr bool
	}{
		{"", "text", "text", false},
		{"", "yaml", "yaml", false},
		{"json", "yaml", "json", false},
		{"xml", "text", "", true},
	}

	for _, tt := range tests {
		cfg.Output.Format = tt.cfgFmt
		f, err := createFormatter(cfg, &AnalyzeOptions{Output: tt.flag})
		if (err != nil) != tt.wantErr {
			t.Errorf("createFormatter(%q, %q) error = %v", tt.flag, tt.cfgFmt, err)
			continue
		}
		if err == nil && f.Name() != tt.want {
			t.Errorf("createFormatter(%q, %q) = %s, want %s", tt.flag, tt.cfgFmt, f.Name(), tt.want)
		}
	}
}
