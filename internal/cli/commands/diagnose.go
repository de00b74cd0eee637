package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/parser"
	"github.com/ccollicutt/chatstat/pkg/table"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	ConfigPath string
	Verbose    bool
}

// Diagnostic statuses.
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

// maxDetails caps the per-check list of offending lines.
const maxDetails = 5

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <export>",
		Short: "Diagnose problems parsing a chat export",
		Long: `Diagnose problems parsing a chat export.

This command parses the export and reports anything that would make the
analysis less accurate:
- Export file existence and size
- Config file syntax and values
- Detected timestamp format and its coverage
- Day/month ambiguity and lines in a different format
- Text before the first message and empty messages
- Rows dropped for unparsable timestamps and out-of-order rows
- Webhook configuration

Example:
  chatstat diagnose chat.txt
  chatstat diagnose -c chatstat.yaml -v chat.txt  # verbose output`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file (YAML or TOML)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, exportPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Check export existence
	result := checkExportExists(exportPath)
	results = append(results, result)
	if result.Status == statusError {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 2. Load config
	cfg, result := checkConfig(ctx, opts.ConfigPath)
	results = append(results, result)
	if result.Status == statusError {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 3. Parse and check the detected format
	res, parseResults := checkParse(ctx, exportPath, cfg, opts)
	results = append(results, parseResults...)
	if res == nil {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 4. Check segmentation
	results = append(results, checkSegments(res, opts))

	// 5. Check the enriched table
	tbl := table.Enrich(res.Segments, res.Format,
		table.WithMediaMarkers(cfg.Media.Markers),
		table.WithMediaPrefixes(cfg.Media.Prefixes),
	)
	results = append(results, checkTable(tbl, opts)...)

	// 6. Check webhooks configuration
	results = append(results, checkWebhooks(ctx, cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkExportExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Export File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = statusError
		result.Message = fmt.Sprintf("Export not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Export the chat from the app with 'Export chat' and choose 'Without media'",
		}
		return result
	}
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("Cannot access export: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = statusError
		result.Message = "Path is a directory, not a file"
		result.Suggests = []string{"Point at the .txt file inside the unzipped export"}
		return result
	}
	if info.Size() == 0 {
		result.Status = statusError
		result.Message = "Export is empty"
		return result
	}

	result.Status = statusOK
	result.Message = fmt.Sprintf("Found: %s (%s)", path, humanize.Bytes(uint64(info.Size())))
	return result
}

func checkConfig(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config",
	}

	cfg, err := config.LoadOrDefault(ctx, path)
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			result.Suggests = []string{"Check TOML syntax and section names ([parser], [analysis], ...)"}
		default:
			result.Suggests = []string{"Check YAML syntax - ensure proper indentation (use spaces, not tabs)"}
		}
		return nil, result
	}

	result.Status = statusOK
	if path == "" {
		result.Message = "No config file given, using defaults"
	} else {
		result.Message = fmt.Sprintf("Loaded %s", path)
	}
	result.Details = []string{
		fmt.Sprintf("Date order: %s", cfg.Parser.DateOrder),
		fmt.Sprintf("Sample size: %d", cfg.Parser.SampleSize),
	}
	return cfg, result
}

func checkParse(ctx context.Context, path string, cfg *config.Config, opts *DiagnoseOptions) (*parser.Result, []DiagnosticResult) {
	results := []DiagnosticResult{}
	result := DiagnosticResult{
		Check: "Timestamp Format",
	}

	p, err := newParser(cfg)
	if err != nil {
		result.Status = statusError
		result.Message = err.Error()
		return nil, append(results, result)
	}

	res, err := p.ParseFile(ctx, path)
	if err != nil {
		result.Status = statusError
		result.Message = err.Error()
		var fe *parser.FormatError
		if errors.As(err, &fe) {
			result.Suggests = []string{
				"The file may not be a chat export, or it uses an unsupported layout",
				"Use 'chatstat detect --all " + path + "' to see which formats come close",
			}
			if fe.Candidates > 0 && cfg.Parser.DateOrder != "auto" {
				result.Suggests = append(result.Suggests,
					fmt.Sprintf("parser.date_order is %q; try auto", cfg.Parser.DateOrder))
			}
		}
		return nil, append(results, result)
	}

	det := res.Detection
	result.Message = res.Format.Name
	if det == nil {
		result.Status = statusOK
		return res, append(results, result)
	}

	best := det.BestMatch()
	result.Details = []string{
		fmt.Sprintf("Confidence: %.1f%% (%d/%d dated lines)", best.Confidence*100, best.MatchCount, det.Candidates),
		"Sample: " + truncate(best.SampleLine, 80),
	}
	if det.Majority {
		result.Status = statusOK
	} else {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("%s covers only %d/%d dated lines", res.Format.Name, best.MatchCount, det.Candidates)
		result.Suggests = []string{"Use 'chatstat detect --all " + path + "' to compare formats"}
	}
	results = append(results, result)

	order := DiagnosticResult{Check: "Date Order"}
	if det.AmbiguityNote != "" {
		order.Status = statusWarning
		order.Message = "Day and month cannot be told apart"
		order.Details = []string{det.AmbiguityNote}
		order.Suggests = []string{
			"Set parser.date_order to dmy or mdy in your config",
			"Or set CHATSTAT_DATE_ORDER in the environment",
		}
	} else {
		order.Status = statusOK
		order.Message = fmt.Sprintf("Unambiguous (%s)", res.Format.Order)
	}
	results = append(results, order)

	if det.MixedNote != "" {
		mixed := DiagnosticResult{
			Check:   "Mixed Formats",
			Status:  statusWarning,
			Message: det.MixedNote,
		}
		for i, n := range det.ForeignLines {
			if i == maxDetails && !opts.Verbose {
				mixed.Details = append(mixed.Details, fmt.Sprintf("... and %d more", len(det.ForeignLines)-maxDetails))
				break
			}
			mixed.Details = append(mixed.Details, fmt.Sprintf("Line %d", n))
		}
		mixed.Suggests = []string{"If the export combines two devices, split it and use 'chatstat analyze --merge'"}
		results = append(results, mixed)
	}

	return res, results
}

func checkSegments(res *parser.Result, opts *DiagnoseOptions) DiagnosticResult {
	notifications := res.Notifications()
	result := DiagnosticResult{
		Check:  "Messages",
		Status: statusOK,
	}
	result.Message = fmt.Sprintf("%s messages, %s notifications from %s lines",
		humanize.Comma(int64(len(res.Segments)-notifications)),
		humanize.Comma(int64(notifications)),
		humanize.Comma(int64(res.Lines)))

	if res.Preamble > 0 {
		result.Details = append(result.Details,
			fmt.Sprintf("%d line(s) before the first message were skipped", res.Preamble))
	}
	if res.EmptyDropped > 0 {
		result.Status = statusWarning
		result.Details = append(result.Details,
			fmt.Sprintf("%d message(s) had no text and were dropped", res.EmptyDropped))
	}
	if len(res.Segments) == 0 {
		result.Status = statusWarning
		result.Suggests = []string{"The export has timestamps but no message text"}
	}
	if opts.Verbose && len(res.Segments) > 0 {
		result.Details = append(result.Details, "First: "+truncate(res.Segments[0].String(), 80))
	}
	return result
}

func checkTable(tbl *table.Table, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	rows := DiagnosticResult{Check: "Timestamps"}
	dropped := tbl.Dropped()
	if len(dropped) == 0 {
		rows.Status = statusOK
		rows.Message = fmt.Sprintf("All %s rows parsed", humanize.Comma(int64(tbl.Len())))
	} else {
		rows.Status = statusWarning
		rows.Message = fmt.Sprintf("%d row(s) dropped because their timestamp could not be parsed", len(dropped))
		for i, d := range dropped {
			if i == maxDetails && !opts.Verbose {
				rows.Details = append(rows.Details, fmt.Sprintf("... and %d more", len(dropped)-maxDetails))
				break
			}
			rows.Details = append(rows.Details, fmt.Sprintf("Line %d: %q", d.Line, d.Text))
		}
		rows.Suggests = []string{"Use 'analyze --strict' to fail when rows are dropped"}
	}
	results = append(results, rows)

	if n := tbl.OutOfOrder(); n > 0 {
		results = append(results, DiagnosticResult{
			Check:   "Ordering",
			Status:  statusWarning,
			Message: fmt.Sprintf("%d row(s) are older than the row before them", n),
			Suggests: []string{
				"Reply times and conversation gaps ignore negative intervals",
				"Check the export was not assembled from several files",
			},
		})
	} else if opts.Verbose {
		results = append(results, DiagnosticResult{
			Check:   "Ordering",
			Status:  statusOK,
			Message: "Rows are in chronological order",
		})
	}

	users := tbl.Users()
	authors := DiagnosticResult{Check: "Authors"}
	switch len(users) {
	case 0:
		authors.Status = statusWarning
		authors.Message = "No authored messages, only notifications"
	case 1:
		authors.Status = statusWarning
		authors.Message = fmt.Sprintf("Only one author: %s", users[0])
		authors.Suggests = []string{"Reply and conversation analyses need at least two authors"}
	default:
		authors.Status = statusOK
		authors.Message = fmt.Sprintf("%d authors", len(users))
	}
	if opts.Verbose {
		authors.Details = users
	}
	results = append(results, authors)

	return results
}

func checkWebhooks(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		// Webhooks are optional, just note they're not configured
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  statusOK,
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check:   fmt.Sprintf("Webhook: %s", name),
			Status:  statusOK,
			Message: fmt.Sprintf("Trigger: %s", wh.Trigger),
		}
		// Load has already expanded ${VAR}; an empty token means the variable is unset
		if wh.Token == "" {
			result.Details = []string{"No bearer token"}
		}
		if opts.Verbose {
			result.Details = append(result.Details,
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout),
			)
		}
		results = append(results, result)
	}

	// Optionally test webhook connectivity
	if opts.Verbose {
		for _, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}

			result := checkWebhookConnectivity(ctx, wh)
			result.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, result)
		}
	}

	return results
}

func checkWebhookConnectivity(ctx context.Context, wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// Just do a HEAD request to check if the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = statusOK
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== chatstat Export Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case statusOK:
			icon = "PASS"
			okCount++
		case statusWarning:
			icon = "WARN"
			warnCount++
		case statusError:
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != statusOK {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nThe export can be analyzed but results may be incomplete.")
	} else {
		fmt.Fprintln(w, "\nExport looks good!")
	}
}

func truncate(s string, maxLen int) string {
	return runewidth.Truncate(s, maxLen, "...")
}
