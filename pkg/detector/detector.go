// Package detector picks the timestamp layout of a chat export.
//
// Exports differ by platform and locale, so the detector scores a fixed,
// priority-ordered list of concrete formats against every line that looks
// like a message boundary and settles on one format for the whole file.
package detector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// DetectionResult holds the result of analyzing an export.
type DetectionResult struct {
	Matches       []FormatMatch // Formats that matched, best first
	SampledLines  int           // Number of non-empty lines examined
	Candidates    int           // Lines that look like a message boundary
	ParsedLines   int           // Candidates matched and parsed by the best format
	Majority      bool          // Best format covers more than half of the candidates
	AmbiguityNote string        // Set when day-first and month-first fit equally well
	MixedNote     string        // Set when some boundaries belong to a different format
	ForeignLines  []int         // 1-based sample indices of lines only another format accepts
}

// FormatMatch represents a format that matched with its confidence score.
type FormatMatch struct {
	Format     *TimestampFormat
	Priority   int       // Index in the detector's format list
	Confidence float64   // 0.0 to 1.0 (share of candidates matched)
	MatchCount int       // Number of candidates that matched and parsed
	SampleLine string    // Example line that matched
	ParsedTime time.Time // Parsed timestamp from sample
}

// Detector analyzes exports to identify their timestamp format.
type Detector struct {
	formats    []*TimestampFormat
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize limits detection to the first n lines. Zero means the whole input.
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n >= 0 {
			d.sampleSize = n
		}
	}
}

// WithFormats replaces the candidate format list.
func WithFormats(formats []*TimestampFormat) Option {
	return func(d *Detector) {
		if len(formats) > 0 {
			d.formats = formats
		}
	}
}

// WithDateOrder keeps only formats with the given date order. Auto is a no-op.
func WithDateOrder(order DateOrder) Option {
	return func(d *Detector) {
		if order == Auto || order == "" {
			return
		}
		kept := make([]*TimestampFormat, 0, len(d.formats))
		for _, f := range d.formats {
			if f.Order == order {
				kept = append(kept, f)
			}
		}
		d.formats = kept
	}
}

// New creates a new Detector with default formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats: DefaultFormats(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Formats returns the formats this detector considers, in priority order.
func (d *Detector) Formats() []*TimestampFormat {
	return d.formats
}

// DetectFromFile analyzes an export file and returns detected formats.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines analyzes a slice of export lines.
// Lines are expected to be stripped of invisible characters already;
// DetectFromLines strips them again so raw lines work too.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{}

	if d.sampleSize > 0 && len(lines) > d.sampleSize {
		lines = lines[:d.sampleSize]
	}

	type formatStats struct {
		priority   int
		matchCount int
		sampleLine string
		parsedTime time.Time
	}

	stats := make([]*formatStats, len(d.formats))
	for i := range stats {
		stats[i] = &formatStats{priority: i}
	}

	// accepted[i] records which formats accepted candidate line i
	var accepted [][]bool
	var candidateIdx []int

	for idx, line := range lines {
		line = StripInvisible(line)
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.SampledLines++

		if !IsCandidate(line) {
			continue
		}
		result.Candidates++
		candidateIdx = append(candidateIdx, idx+1)

		row := make([]bool, len(d.formats))
		for i, format := range d.formats {
			matches := format.Pattern.FindStringSubmatch(line)
			if len(matches) < 2 {
				continue
			}

			parsedTime, err := format.Parse(matches[1])
			if err != nil {
				continue
			}

			row[i] = true
			s := stats[i]
			if s.matchCount == 0 {
				s.sampleLine = line
				s.parsedTime = parsedTime
			}
			s.matchCount++
		}
		accepted = append(accepted, row)
	}

	for i, s := range stats {
		if s.matchCount == 0 {
			continue
		}
		result.Matches = append(result.Matches, FormatMatch{
			Format:     d.formats[i],
			Priority:   s.priority,
			Confidence: float64(s.matchCount) / float64(result.Candidates),
			MatchCount: s.matchCount,
			SampleLine: s.sampleLine,
			ParsedTime: s.parsedTime,
		})
	}

	// Highest count first; equal counts keep priority order
	sort.SliceStable(result.Matches, func(i, j int) bool {
		if result.Matches[i].MatchCount != result.Matches[j].MatchCount {
			return result.Matches[i].MatchCount > result.Matches[j].MatchCount
		}
		return result.Matches[i].Priority < result.Matches[j].Priority
	})

	best := result.BestMatch()
	if best == nil {
		return result
	}

	result.ParsedLines = best.MatchCount
	result.Majority = best.MatchCount*2 > result.Candidates

	for _, m := range result.Matches[1:] {
		if m.MatchCount == best.MatchCount && m.Format.PatternStr == best.Format.PatternStr {
			result.AmbiguityNote = fmt.Sprintf(
				"every date fits both %q and %q; using %q. "+
					"Set parser.date_order to override.",
				best.Format.Name, m.Format.Name, best.Format.Name)
			break
		}
	}

	// Lines another format accepts but the best format's boundary pattern
	// does not match stay continuation text. They are reported, never
	// re-read with a second format.
	for n, row := range accepted {
		if best.Format.Pattern.MatchString(StripInvisible(lines[candidateIdx[n]-1])) {
			continue
		}
		for i, ok := range row {
			if ok && i != best.Priority {
				result.ForeignLines = append(result.ForeignLines, candidateIdx[n])
				break
			}
		}
	}
	if len(result.ForeignLines) > 0 {
		result.MixedNote = fmt.Sprintf(
			"%d line(s) use a different timestamp format than %q and are kept as message text",
			len(result.ForeignLines), best.Format.Name)
	}

	return result
}

// sampleFile reads up to sampleSize lines from a file (all when zero).
func (d *Detector) sampleFile(_ context.Context, path string) ([]string, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if d.sampleSize > 0 && len(lines) >= d.sampleSize {
			break
		}
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
