package output

import (
	"context"
	"fmt"
	"io"
)

// Formatter renders analysis results in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json, yaml).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose enables detailed output such as per-user tables and metadata.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool
}

// quietReport is what structured formatters write in quiet mode.
type quietReport struct {
	Summary Summary  `json:"summary" yaml:"summary"`
	Notes   []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func (o FormatOptions) view(report *Report) any {
	if o.Quiet {
		return quietReport{Summary: report.Summary, Notes: report.Notes}
	}
	return report
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	case "yaml":
		return NewYAMLFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", name)
	}
}
