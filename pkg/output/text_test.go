package output

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
)

func TestNewTextFormatter(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewTextFormatter() returned nil")
	}
	if f.Name() != "text" {
		t.Errorf("Name() = %q, want %q", f.Name(), "text")
	}
}

func TestTextFormatter_Format_Empty(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := &Report{Results: &analyzer.Results{}}

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "chatstat Analysis Report") {
		t.Error("Output missing header")
	}
	if !strings.Contains(output, "0 rows analyzed") {
		t.Error("Output missing summary")
	}
	if strings.Contains(output, "[STATS]") {
		t.Error("Output has a section for an analysis that did not run")
	}
}

func TestTextFormatter_Format_Sections(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := createTestReport()

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	checks := []string{
		"[STATS]", "[USERS]", "[TIMELINE]", "[WORDS]", "[SENTIMENT]", "[REPLIES]", "[FORECAST]", "[TOPICS]",
		"hike, trail",    // topic words
		"1,234",          // humanized message count
		"Alice",          // users table
		"2023-01",        // monthly timeline
		"morning",        // top words
		"! every date",   // notes
		"1 rows dropped", // summary
	}
	for _, check := range checks {
		if !strings.Contains(output, check) {
			t.Errorf("Output missing %q", check)
		}
	}

	// Daily timeline is verbose only
	if strings.Contains(output, "2023-01-03") {
		t.Error("Non-verbose output includes daily timeline")
	}
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Quiet: true})
	report := createTestReport()

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()

	// Quiet mode should be a single line
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 1 {
		t.Errorf("Quiet output has %d lines, want 1", len(lines))
	}
	if !strings.HasPrefix(output, "chatstat: 1,234 messages from 2 users, 1 dropped") {
		t.Errorf("Quiet output = %q", output)
	}
}

func TestTextFormatter_Format_Verbose(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Verbose: true})
	report := createTestReport()

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	checks := []string{
		"Duration:",
		"Config: chatstat.yaml",
		"2023-01-03", // daily timeline
		"Bob",        // reply graph
	}
	for _, check := range checks {
		if !strings.Contains(output, check) {
			t.Errorf("Verbose output missing %q", check)
		}
	}
}

func TestTextFormatter_Format_TruncatesLongMessages(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	long := strings.Repeat("word ", 40)
	report := &Report{Results: &analyzer.Results{
		Words: &analyzer.WordsResult{Longest: long, LongestUser: "Alice", MaxLength: len(long)},
	}}

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), long) {
		t.Error("Longest message was not truncated")
	}
	if !strings.Contains(buf.String(), "…") {
		t.Error("Truncated message missing ellipsis")
	}
}

func TestCell(t *testing.T) {
	tests := []struct {
		in   string
		col  column
		want string
	}{
		{"ab", column{width: 4}, "ab  "},
		{"ab", column{width: 4, right: true}, "  ab"},
		{"abcdef", column{width: 4}, "abc…"},
		{"😂", column{width: 4}, "😂  "},
		{"a\nb", column{width: 3}, "a b"},
	}
	for _, tt := range tests {
		if got := cell(tt.in, tt.col); got != tt.want {
			t.Errorf("cell(%q, %d) = %q, want %q", tt.in, tt.col.width, got, tt.want)
		}
	}
}

func TestBar(t *testing.T) {
	if got := bar(0, 10); got != "" {
		t.Errorf("bar(0, 10) = %q, want empty", got)
	}
	if got := bar(10, 10); got != strings.Repeat("█", barMax) {
		t.Errorf("bar(10, 10) = %q", got)
	}
	if got := bar(1, 1000); got != "█" {
		t.Errorf("bar(1, 1000) = %q, want one block", got)
	}
}

func createTestReport() *Report {
	first := time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)

	return &Report{
		Summary: Summary{
			Messages:     1234,
			Users:        2,
			RowsDropped:  1,
			FirstMessage: first,
			LastMessage:  first.Add(48 * time.Hour),
		},
		Results: &analyzer.Results{
			Stats: &analyzer.StatsResult{
				Messages: 1234, Words: 5000,
				PerUser: []analyzer.UserStats{{User: "Alice", Messages: 700}, {User: "Bob", Messages: 534}},
			},
			Users: &analyzer.UsersResult{Busy: []analyzer.UserShare{
				{User: "Alice", Messages: 700, Percent: 56.73},
				{User: "Bob", Messages: 534, Percent: 43.27},
			}},
			Timeline: &analyzer.TimelineResult{
				Monthly: []analyzer.PeriodCount{{Period: "2023-01", Count: 1234}},
				Daily:   []analyzer.PeriodCount{{Period: "2023-01-03", Count: 1234}},
			},
			Words: &analyzer.WordsResult{
				Top:        []analyzer.WordCount{{Word: "morning", Count: 40}},
				TotalWords: 5000,
			},
			Sentiment: &analyzer.SentimentResult{Positive: 10, MostPositiveUser: "Alice", MostNegativeUser: "Bob"},
			Replies: &analyzer.RepliesResult{
				Replies: 3,
				Graph: analyzer.ReplyGraph{
					Nodes: []string{"Alice", "Bob"},
					Edges: []analyzer.ReplyEdge{{From: "Bob", To: "Alice", Count: 3}},
				},
			},
			Forecast: &analyzer.ForecastResult{
				HistoryDays: 3,
				Predictions: []analyzer.DailyPrediction{{Date: "2023-01-05", Messages: 2}},
			},
			Topics: &analyzer.TopicsResult{
				Documents:  4,
				Vocabulary: 6,
				Topics: []analyzer.Topic{
					{ID: 0, Words: []string{"hike", "trail"}, Messages: 3},
					{ID: 1, Words: []string{"pizza", "dinner"}, Messages: 1},
				},
			},
		},
		Notes: []string{"every date fits both formats"},
		Metadata: Metadata{
			ConfigFile: "chatstat.yaml",
			Sources:    []string{"chat.txt"},
			Format:     "Android 12-hour (M/D/Y)",
			Analyses:   []string{"stats", "users", "timeline", "words", "sentiment", "replies", "forecast", "topics"},
			AnalyzedAt: first,
			Duration:   100 * time.Millisecond,
		},
	}
}
