// Package cli provides the command-line interface for chatstat.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/internal/cli/commands"
	"github.com/ccollicutt/chatstat/internal/logger"
)

// GlobalOptions holds flags shared by every command.
type GlobalOptions struct {
	LogLevel string
	LogJSON  bool
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return run(ctx, NewRootCommand(), os.Args[1:], os.Stderr)
}

func run(ctx context.Context, rootCmd *cobra.Command, args []string, stderr io.Writer) int {
	commands.ExitCode = 0
	rootCmd.SetArgs(args)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "chatstat",
		Short: "Statistics for exported chat histories",
		Long: `chatstat parses the plain-text history that chat apps write when you
export a conversation, and reports who talks, when, and how.

It detects the timestamp layout of each export (Android and iOS, 12- and
24-hour clocks, day-first and month-first dates), joins multi-line messages,
separates system notifications and builds a message table that every
analysis reads.

Commands:
  analyze   Report statistics for one or more exports
  detect    Show the detected timestamp format
  diagnose  Explain problems parsing an export
  export    Write the message table as json, jsonl, csv, yaml, md or sqlite
  validate  Check a configuration file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logger.ParseLevel(opts.LogLevel)
			if err != nil {
				return err
			}
			if v, _ := cmd.Flags().GetBool("verbose"); v && !cmd.Flags().Changed("log-level") {
				level = slog.LevelDebug
			}
			log := logger.NewLogger(cmd.ErrOrStderr(), level, opts.LogJSON)
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&opts.LogJSON, "log-json", false, "Write logs as JSON")

	// Add subcommands
	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
