package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/internal/logger"
	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/export"
	"github.com/ccollicutt/chatstat/pkg/parser"
	"github.com/ccollicutt/chatstat/pkg/store"
	"github.com/ccollicutt/chatstat/pkg/table"
)

// formatSQLite selects the database writer instead of a file exporter.
const formatSQLite = "sqlite"

// ExportOptions holds command-line options for the export command.
type ExportOptions struct {
	ConfigPath string
	Format     string
	OutputPath string
	User       string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export <export>...",
		Short: "Write the parsed message table to a file",
		Long: `Parse chat exports and write the resulting message table.

Several exports are merged into one chronological table.

Formats:
  json    - one document with format, users and messages
  jsonl   - one message per line
  csv     - one row per message with a header
  yaml    - same shape as json
  md      - readable transcript grouped by day
  sqlite  - database that 'chatstat analyze' can read back

Example:
  chatstat export chat.txt -f csv -O chat.csv
  chatstat export chat.txt -f sqlite -O chat.db
  chatstat export phone.txt laptop.txt -f jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file (YAML or TOML)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "json",
		"Export format ("+strings.Join(append(append([]string(nil), export.Formats...), formatSQLite), "|")+")")
	cmd.Flags().StringVarP(&opts.OutputPath, "out", "O", "", "Output path (default: stdout, or chat.<ext> for sqlite)")
	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "Only export messages from one author")

	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts *ExportOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.FromContext(ctx)

	cfg, err := config.LoadOrDefault(ctx, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var exp export.Exporter
	if opts.Format != formatSQLite {
		if exp, err = export.NewExporter(opts.Format); err != nil {
			return err
		}
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding exports: %w", err)
	}
	exports, err := loadAll(ctx, files, cfg)
	if err != nil {
		return err
	}
	merged := mergeExports(exports)
	for _, note := range merged.Notes {
		log.Warn(note)
	}

	tbl := merged.Table
	if opts.User != "" {
		tbl = tbl.ForUser(opts.User)
		if tbl.Len() == 0 {
			return fmt.Errorf("user %q not found in chat", opts.User)
		}
	}

	if exp == nil {
		path := opts.OutputPath
		if path == "" {
			path = defaultExportPath(files[0], "db")
		}
		if err := store.SaveFile(ctx, path, tbl); err != nil {
			return err
		}
		log.Info("table saved", "path", path, "rows", tbl.Len())
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d messages to %s\n", tbl.Len(), path)
		return nil
	}

	if opts.OutputPath == "" {
		return writeExport(cmd.OutOrStdout(), exp, tbl)
	}
	if err := export.ToFile(ctx, exp, tbl, opts.OutputPath); err != nil {
		return err
	}
	log.Info("table exported", "path", opts.OutputPath, "format", exp.Extension(), "rows", tbl.Len())
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d messages to %s\n", tbl.Len(), opts.OutputPath)
	return nil
}

func writeExport(w io.Writer, exp export.Exporter, tbl *table.Table) error {
	if err := exp.Export(tbl, w); err != nil {
		return &export.ExportError{Format: exp.Extension(), Path: "-", Err: err}
	}
	return nil
}

// defaultExportPath replaces the extension of src with ext.
func defaultExportPath(src, ext string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(filepath.Dir(src), base+"."+ext)
}
