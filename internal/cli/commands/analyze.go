package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/chatstat/internal/logger"
	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/output"
	"github.com/ccollicutt/chatstat/pkg/parser"
	"github.com/ccollicutt/chatstat/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// dateLayout is the layout of --from and --to.
const dateLayout = "2006-01-02"

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	ConfigPath string
	Output     string
	User       string
	Analyses   []string
	From       string
	To         string
	Merge      bool
	Strict     bool
	Verbose    bool
	Quiet      bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <export>...",
		Short: "Analyze chat exports",
		Long: `Parse one or more chat exports and report statistics about them.

Each export is parsed with the timestamp format detected for that file.
Exports can be text files, directories of .txt files, glob patterns or
databases written by 'chatstat export -f sqlite'.

Analyses:
  stats, users, timeline, activity, words, emoji, sentiment,
  types, conversations, replies, forecast, topics

Exit codes:
  0 - Analysis completed
  1 - Rows were dropped and --strict was set
  2 - Configuration or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file (YAML or TOML)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output format (text|json|yaml)")
	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "Restrict per-user analyses to one author")
	cmd.Flags().StringSliceVarP(&opts.Analyses, "analysis", "a", nil, "Run specific analyses only (can be repeated)")
	cmd.Flags().StringVar(&opts.From, "from", "", "Only analyze messages on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Only analyze messages before this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.Merge, "merge", false, "Merge all exports into one chat before analysis")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit with code 1 when rows were dropped")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-user and per-day detail")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "always", "When to fire webhook (always|on_dropped|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.FromContext(ctx)

	cfg, err := config.LoadOrDefault(ctx, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	switch config.WebhookTrigger(opts.WebhookTrigger) {
	case "", config.WebhookTriggerAlways, config.WebhookTriggerOnDropped, config.WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid --webhook-trigger %q (use always, on_dropped or never)", opts.WebhookTrigger)
	}

	analyzerOpts, err := analyzerOptions(opts)
	if err != nil {
		return err
	}
	// Fail on a bad --analysis before reading any export
	if _, err := analyzer.NewAnalyzer(cfg, analyzerOpts...); err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	formatter, err := createFormatter(cfg, opts)
	if err != nil {
		return err
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding exports: %w", err)
	}

	exports, err := loadAll(ctx, files, cfg)
	if err != nil {
		return err
	}
	if opts.Merge {
		merged := mergeExports(exports)
		merged.Path = ""
		exports = []*loadedExport{merged}
		log.Info("merged exports", "files", len(files), "rows", merged.Table.Len())
	}

	reports, err := analyzeAll(ctx, cfg, opts, files, exports, analyzerOpts)
	if err != nil {
		return err
	}

	client := webhook.NewClient()
	hooks := collectWebhooks(cfg, opts)
	for _, report := range reports {
		if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("formatting output: %w", err)
		}

		// Webhook failures are logged but don't fail the analysis
		for _, resp := range client.Dispatch(ctx, report, hooks) {
			if resp.Success() {
				log.Info("webhook sent", "name", resp.Name, "status", resp.StatusCode, "duration", resp.Duration)
			} else {
				log.Error("webhook failed", "name", resp.Name, "error", resp.Error)
			}
		}

		if opts.Strict && report.HasDropped() {
			ExitCode = 1
		}
	}

	return nil
}

// analyzeAll runs one analysis per export. Each goroutine owns its analyzer
// since engines keep per-run state.
func analyzeAll(ctx context.Context, cfg *config.Config, opts *AnalyzeOptions, files []string,
	exports []*loadedExport, analyzerOpts []analyzer.AnalyzerOption) ([]*output.Report, error) {
	reports := make([]*output.Report, len(exports))

	g, ctx := errgroup.WithContext(ctx)
	for i, ex := range exports {
		g.Go(func() error {
			a, err := analyzer.NewAnalyzer(cfg, analyzerOpts...)
			if err != nil {
				return fmt.Errorf("creating analyzer: %w", err)
			}
			result, err := a.Analyze(ctx, ex.Table)
			if err != nil {
				if ex.Path != "" {
					return fmt.Errorf("analyzing %s: %w", ex.Path, err)
				}
				return fmt.Errorf("analysis failed: %w", err)
			}

			result.Metadata.Sources = files
			if ex.Path != "" {
				result.Metadata.Sources = []string{ex.Path}
			}
			report := output.NewReport(result, opts.ConfigPath)
			report.AddNotes(ex.Notes...)
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func analyzerOptions(opts *AnalyzeOptions) ([]analyzer.AnalyzerOption, error) {
	var out []analyzer.AnalyzerOption

	start, err := parseDate("from", opts.From)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("to", opts.To)
	if err != nil {
		return nil, err
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		return nil, fmt.Errorf("--to %s must be after --from %s", opts.To, opts.From)
	}
	out = append(out, analyzer.WithTimeRange(start, end))

	if len(opts.Analyses) > 0 {
		out = append(out, analyzer.WithAnalyses(opts.Analyses))
	}
	if opts.User != "" {
		out = append(out, analyzer.WithUser(opts.User))
	}
	return out, nil
}

func parseDate(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q (use YYYY-MM-DD): %w", flag, value, err)
	}
	return t, nil
}

func createFormatter(cfg *config.Config, opts *AnalyzeOptions) (output.Formatter, error) {
	name := opts.Output
	if name == "" {
		name = cfg.Output.Format
	}
	return output.NewFormatter(name, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)

	// Add config file webhooks
	webhooks = append(webhooks, cfg.Webhooks...)

	// Add CLI webhook if specified
	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerAlways
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}
