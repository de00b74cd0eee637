package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a chatstat configuration file without parsing any export.

Checks:
  - YAML or TOML syntax, unknown TOML keys
  - Date order and sample size
  - Analysis names and thresholds
  - Output format
  - Webhook URLs and triggers`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Report what we found
	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Date order:  %s\n", cfg.Parser.DateOrder)
	fmt.Fprintf(w, "  Output:      %s\n", cfg.Output.Format)
	fmt.Fprintf(w, "  Webhooks:    %d\n", len(cfg.Webhooks))

	// List analyses
	fmt.Fprintf(w, "\nAnalyses:\n")
	n := 0
	for _, name := range config.KnownAnalyses {
		if cfg.Analysis.IsEnabled(name) {
			n++
			fmt.Fprintf(w, "  %d. %s\n", n, name)
		}
	}
	fmt.Fprintf(w, "\nSettings:\n")
	fmt.Fprintf(w, "  conversation_gap:     %s\n", cfg.Analysis.ConversationGap)
	fmt.Fprintf(w, "  late_reply_threshold: %s\n", cfg.Analysis.LateReplyThreshold)
	fmt.Fprintf(w, "  top_words:            %d\n", cfg.Analysis.TopWords)
	fmt.Fprintf(w, "  top_emojis:           %d\n", cfg.Analysis.TopEmojis)
	fmt.Fprintf(w, "  forecast_days:        %d\n", cfg.Analysis.ForecastDays)
	fmt.Fprintf(w, "  num_topics:           %d\n", cfg.Analysis.NumTopics)
	fmt.Fprintf(w, "  num_words:            %d\n", cfg.Analysis.NumWords)

	if len(cfg.Media.Markers) > 0 || len(cfg.Media.Prefixes) > 0 {
		fmt.Fprintf(w, "\nMedia placeholders: %s\n",
			strings.Join(append(append([]string(nil), cfg.Media.Markers...), cfg.Media.Prefixes...), ", "))
	}

	if len(cfg.Webhooks) > 0 {
		fmt.Fprintf(w, "\nWebhooks:\n")
		for _, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			auth := "no token"
			if wh.Token != "" {
				auth = "bearer token"
			}
			fmt.Fprintf(w, "  - %s [%s] timeout %s, %s\n", name, wh.Trigger, wh.Timeout, auth)
		}
	}

	return nil
}
