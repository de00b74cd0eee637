package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ccollicutt/chatstat/pkg/detector"
)

// Parser segments chat exports.
type Parser struct {
	detector *detector.Detector
	format   *detector.TimestampFormat
}

// Option configures the Parser.
type Option func(*Parser)

// WithDetector sets the detector used to choose the export format.
func WithDetector(d *detector.Detector) Option {
	return func(p *Parser) {
		if d != nil {
			p.detector = d
		}
	}
}

// WithFormat locks the format and skips detection.
func WithFormat(f *detector.TimestampFormat) Option {
	return func(p *Parser) {
		p.format = f
	}
}

// New creates a Parser. Without options it detects among the default formats.
func New(opts ...Option) *Parser {
	p := &Parser{detector: detector.New()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse segments raw export text with a default Parser.
func Parse(raw string) (*Result, error) {
	return New().Parse(raw)
}

// ParseFile reads and segments an export file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Result, error) {
	// #nosec G304 - path is provided by user via CLI
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export %s: %w", path, err)
	}
	defer f.Close()

	res, err := p.ParseReader(ctx, f)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Source = path
		}
		return nil, err
	}
	return res, nil
}

// ParseReader reads all of r and segments it.
func (p *Parser) ParseReader(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Parse(string(data))
}

// Parse segments raw export text. It returns a *FormatError when no line
// carries a timestamp in a supported format.
func (p *Parser) Parse(raw string) (*Result, error) {
	lines := splitLines(raw)
	result := &Result{Lines: len(lines)}

	format := p.format
	if format == nil {
		det := p.detector.DetectFromLines(lines)
		best := det.BestMatch()
		if best == nil {
			return nil, &FormatError{Lines: det.SampledLines, Candidates: det.Candidates}
		}
		result.Detection = det
		format = best.Format
	}
	result.Format = format

	raws := segment(NewTimestampExtractor(format), lines, result)
	if len(raws) == 0 {
		return nil, &FormatError{Lines: nonEmpty(lines), Format: format.Name}
	}

	firsts := make([]string, len(raws))
	for i, r := range raws {
		firsts[i] = r.first
	}
	authors := buildAuthorIndex(firsts)

	result.Segments = make([]Segment, 0, len(raws))
	for _, r := range raws {
		author, rest := authors.resolve(r.first)
		parts := r.more
		if rest != "" {
			parts = append([]string{rest}, r.more...)
		}
		body := strings.TrimRight(strings.Join(parts, "\n"), " \t\n")
		if strings.TrimSpace(body) == "" {
			result.EmptyDropped++
			continue
		}
		result.Segments = append(result.Segments, Segment{
			TimestampText: r.text,
			Prefix:        r.prefix,
			Author:        author,
			Body:          body,
			Line:          r.line,
		})
	}

	return result, nil
}

type rawSegment struct {
	prefix string
	text   string
	first  string
	more   []string
	line   int
}

// segment groups lines into boundary-started chunks. Lines before the first
// boundary are counted as preamble.
func segment(ext *TimestampExtractor, lines []string, result *Result) []rawSegment {
	var out []rawSegment
	for i, line := range lines {
		if prefix, text, rest, ok := ext.Match(line); ok {
			out = append(out, rawSegment{prefix: prefix, text: text, first: rest, line: i + 1})
			continue
		}
		if len(out) == 0 {
			if strings.TrimSpace(line) != "" {
				result.Preamble++
			}
			continue
		}
		cur := &out[len(out)-1]
		cur.more = append(cur.more, line)
	}
	return out
}

// splitLines normalizes line endings and strips invisible formatting
// characters from every line.
func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	raw = strings.TrimRight(raw, "\n")
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = detector.StripInvisible(l)
	}
	return lines
}

func nonEmpty(lines []string) int {
	n := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}
