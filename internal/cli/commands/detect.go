package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/internal/logger"
	"github.com/ccollicutt/chatstat/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	DateOrder   string
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <export>",
		Short: "Detect the timestamp format of a chat export",
		Long: `Analyze a chat export to detect its timestamp format.

Every line that starts with a numeric date is tested against the built-in
Android and iOS layouts. The format that parses the most lines wins; ties
go to the earlier format in priority order. When day-first and month-first
fit every date equally well the result is reported as ambiguous.

Optionally generates a starter config file with --write-config.

Example:
  chatstat detect "WhatsApp Chat with Alice.txt"
  chatstat detect --all chat.txt
  chatstat detect --date-order dmy chat.txt
  chatstat detect -w chatstat.yaml chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 0, "Number of lines to sample (0 reads the whole export)")
	cmd.Flags().StringVar(&opts.DateOrder, "date-order", "auto", "Force the date order (auto|mdy|dmy|ymd)")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected formats, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	exportFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	// Check file exists
	if _, err := os.Stat(exportFile); os.IsNotExist(err) {
		return fmt.Errorf("export not found: %s", exportFile)
	}

	order, err := detector.ParseDateOrder(opts.DateOrder)
	if err != nil {
		return err
	}
	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize), detector.WithDateOrder(order))

	// Run detection
	result, err := d.DetectFromFile(ctx, exportFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}
	if best := result.BestMatch(); best != nil {
		logger.FromContext(ctx).Debug("format detected",
			"file", exportFile, "format", best.Format.Name, "confidence", best.Confidence)
	}

	// Write config file if requested
	if opts.WriteConfig != "" {
		if err := writeStarterConfig(out, result, exportFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	// Output results
	switch opts.Output {
	case "json":
		return outputDetectJSON(out, result, exportFile, opts)
	default:
		return outputDetectText(out, result, exportFile, opts)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, exportFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Timestamp Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", exportFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines starting with a date: %d\n", result.Candidates)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No timestamp format detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: The file may not be a chat export, or it uses an unsupported layout.")
		fmt.Fprintln(w, "Check that message lines start like '1/2/23, 10:00 AM - Name: text'.")
		return nil
	}

	// Show best match
	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Format: %s\n", best.Format.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d dated lines matched)\n",
		best.Confidence*100, best.MatchCount, result.Candidates)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.SampleLine)
	fmt.Fprintf(w, "Parsed as: %s\n", best.ParsedTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)

	if !result.Majority {
		fmt.Fprintln(w, "WARNING: The best format covers half of the dated lines or fewer.")
		fmt.Fprintln(w)
	}
	if result.AmbiguityNote != "" {
		fmt.Fprintf(w, "Note: %s\n", result.AmbiguityNote)
		fmt.Fprintln(w)
	}
	if result.MixedNote != "" {
		fmt.Fprintf(w, "Note: %s\n", result.MixedNote)
		fmt.Fprintln(w)
	}

	// YAML snippet
	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "parser:")
	fmt.Fprintf(w, "  date_order: %s\n", best.Format.Order)
	fmt.Fprintln(w)

	// Show alternatives if requested
	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Alternative formats detected ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence)\n", i+2, m.Format.Name, m.Confidence*100)
			fmt.Fprintf(w, "   date_order: %s\n", m.Format.Order)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a format match in JSON output.
type JSONMatch struct {
	Name       string  `json:"name"`
	Pattern    string  `json:"pattern"`
	DateOrder  string  `json:"date_order"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	SampleLine string  `json:"sample_line"`
	Ambiguous  bool    `json:"ambiguous,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File          string      `json:"file"`
	Matches       []JSONMatch `json:"matches"`
	SampledLines  int         `json:"sampled_lines"`
	Candidates    int         `json:"candidates"`
	ParsedLines   int         `json:"parsed_lines"`
	Majority      bool        `json:"majority"`
	AmbiguityNote string      `json:"ambiguity_note,omitempty"`
	MixedNote     string      `json:"mixed_note,omitempty"`
	ForeignLines  []int       `json:"foreign_lines,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, exportFile string, opts *DetectOptions) error {
	output := JSONOutput{
		File:          exportFile,
		SampledLines:  result.SampledLines,
		Candidates:    result.Candidates,
		ParsedLines:   result.ParsedLines,
		Majority:      result.Majority,
		AmbiguityNote: result.AmbiguityNote,
		MixedNote:     result.MixedNote,
		ForeignLines:  result.ForeignLines,
		Matches:       make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		output.Matches = append(output.Matches, JSONMatch{
			Name:       m.Format.Name,
			Pattern:    m.Format.PatternStr,
			DateOrder:  string(m.Format.Order),
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			SampleLine: m.SampleLine,
			Ambiguous:  m.Format.Ambiguous,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// writeStarterConfig generates a starter config file with the detected date order.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, exportFile, configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	// Need a detected format to generate config
	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no timestamp format detected")
	}

	config := generateStarterConfig(exportFile, result.BestMatch())

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(exportFile string, match *detector.FormatMatch) string {
	absExport := exportFile
	if abs, err := filepath.Abs(exportFile); err == nil {
		absExport = abs
	}

	return fmt.Sprintf(`# chatstat configuration
# Generated by: chatstat detect %s
# Detected format: %s (%.0f%% confidence)

parser:
  date_order: %s
  sample_size: 0

media:
  # Attachment placeholders; setting a list replaces the built-in one
  # markers:
  #   - "<Media omitted>"
  # prefixes:
  #   - "<attached: "

analysis:
  # Leave empty to run every analysis
  # enabled: [stats, users, timeline, activity, words, emoji]
  conversation_gap: 1h
  late_reply_threshold: 24h
  top_words: 20
  top_emojis: 10
  forecast_days: 7
  mood_shift_threshold: 0.5
  num_topics: 3
  num_words: 5

output:
  format: text

# webhooks:
#   - name: reports
#     url: https://example.com/hooks/chatstat
#     token: ${CHATSTAT_WEBHOOK_TOKEN}
#     trigger: always
`, absExport, match.Format.Name, match.Confidence*100, match.Format.Order)
}
