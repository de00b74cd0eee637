// Package export writes the message table to files in interchange formats.
package export

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(tbl *table.Table, w io.Writer) error
	Extension() string
}

// Formats lists the supported export formats.
var Formats = []string{"json", "jsonl", "csv", "yaml", "md"}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "csv":
		return &CSVExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, jsonl, csv, yaml, md)", format)
	}
}

// ToFile exports tbl to path, replacing any existing file.
func ToFile(ctx context.Context, exp Exporter, tbl *table.Table, path string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return &ExportError{Format: exp.Extension(), Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &ExportError{Format: exp.Extension(), Path: path, Err: cerr}
		}
	}()

	if err := exp.Export(tbl, f); err != nil {
		return &ExportError{Format: exp.Extension(), Path: path, Err: err}
	}
	return nil
}
