package detector

import (
	"fmt"
	"regexp"
	"time"
)

// DateOrder identifies the field order of a numeric date.
type DateOrder string

const (
	MonthFirst DateOrder = "mdy"
	DayFirst   DateOrder = "dmy"
	YearFirst  DateOrder = "ymd"
)

// Auto means no forced date order.
const Auto DateOrder = "auto"

// ParseDateOrder converts a config value into a DateOrder.
func ParseDateOrder(s string) (DateOrder, error) {
	switch DateOrder(s) {
	case "", Auto:
		return Auto, nil
	case MonthFirst, DayFirst, YearFirst:
		return DateOrder(s), nil
	default:
		return "", fmt.Errorf("invalid date order %q (must be auto, mdy, dmy or ymd)", s)
	}
}

// TimestampFormat represents one concrete export layout.
type TimestampFormat struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled boundary regex (set during init)
	PatternStr string         // Boundary regex; group 1 is the timestamp, the match includes the separator
	Layouts    []string       // Go time layouts, tried in order against the normalized timestamp
	Order      DateOrder      // Field order of the date part
	Ambiguous  bool           // True if a twin format with the other day/month order exists
	Examples   []string       // Example boundary prefixes
}

// Parse normalizes a timestamp text and parses it with the first layout that fits.
func (f *TimestampFormat) Parse(text string) (time.Time, error) {
	norm := Normalize(text)
	var firstErr error
	for _, layout := range f.Layouts {
		t, err := time.Parse(layout, norm)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("format %q has no layouts", f.Name)
	}
	return time.Time{}, firstErr
}

// Regex building blocks. Spaces inside exports may be NBSP or NNBSP.
const (
	sp       = `[ \x{00A0}\x{202F}\x{2009}]`
	slashed  = `\d{1,2}/\d{1,2}/\d{2,4}`
	dotted   = `\d{1,2}\.\d{1,2}\.\d{2,4}`
	isoDate  = `\d{4}-\d{1,2}-\d{1,2}`
	clock24  = `\d{1,2}:\d{2}(?::\d{2})?`
	clock12  = clock24 + sp + `?(?i:[ap]\.?` + sp + `?m\.?)`
	dashSep  = sp + `[-\x{2013}]` + sp
	brackSep = `\]` + sp + `?`
)

func dashPattern(date, clock string) string {
	return `^(` + date + `,?` + sp + clock + `)` + dashSep
}

func bracketPattern(date, clock string) string {
	return `^\[(` + date + `,?` + sp + clock + `)` + brackSep
}

// layouts expands a date layout pair (2- and 4-digit years) with a clock,
// with and without seconds.
func layouts(dates [2]string, twelveHour bool) []string {
	clocks := []string{"15:04", "15:04:05"}
	if twelveHour {
		clocks = []string{"3:04 PM", "3:04:05 PM"}
	}
	var out []string
	for _, d := range dates {
		for _, c := range clocks {
			out = append(out, d+" "+c)
		}
	}
	return out
}

var (
	mdySlash = [2]string{"1/2/06", "1/2/2006"}
	dmySlash = [2]string{"2/1/06", "2/1/2006"}
	dmyDot   = [2]string{"2.1.06", "2.1.2006"}
	ymdDash  = []string{"2006-1-2 15:04", "2006-1-2 15:04:05"}
)

// DefaultFormats returns the built-in export formats in priority order.
// Ties during detection are resolved in favour of the earlier entry.
func DefaultFormats() []*TimestampFormat {
	formats := []*TimestampFormat{
		// Android exports: "1/2/23, 10:00 AM - Alice: Hello"
		{
			Name:       "Android 12-hour (M/D/Y)",
			PatternStr: dashPattern(slashed, clock12),
			Layouts:    layouts(mdySlash, true),
			Order:      MonthFirst,
			Ambiguous:  true,
			Examples:   []string{"1/2/23, 10:00 AM - ", "12/31/2023, 9:05\u202fPM - "},
		},
		{
			Name:       "Android 12-hour (D/M/Y)",
			PatternStr: dashPattern(slashed, clock12),
			Layouts:    layouts(dmySlash, true),
			Order:      DayFirst,
			Ambiguous:  true,
			Examples:   []string{"31/12/23, 9:05 pm - "},
		},
		{
			Name:       "Android 24-hour (D/M/Y)",
			PatternStr: dashPattern(slashed, clock24),
			Layouts:    layouts(dmySlash, false),
			Order:      DayFirst,
			Ambiguous:  true,
			Examples:   []string{"31/12/2023, 21:05 - "},
		},
		{
			Name:       "Android 24-hour (M/D/Y)",
			PatternStr: dashPattern(slashed, clock24),
			Layouts:    layouts(mdySlash, false),
			Order:      MonthFirst,
			Ambiguous:  true,
			Examples:   []string{"12/31/23, 21:05 - "},
		},
		// iOS exports: "[1/2/23, 10:00:00 AM] Alice: Hello"
		{
			Name:       "iOS 12-hour (M/D/Y)",
			PatternStr: bracketPattern(slashed, clock12),
			Layouts:    layouts(mdySlash, true),
			Order:      MonthFirst,
			Ambiguous:  true,
			Examples:   []string{"[1/2/23, 10:00:00 AM] "},
		},
		{
			Name:       "iOS 12-hour (D/M/Y)",
			PatternStr: bracketPattern(slashed, clock12),
			Layouts:    layouts(dmySlash, true),
			Order:      DayFirst,
			Ambiguous:  true,
			Examples:   []string{"[31/12/23, 9:05:00 pm] "},
		},
		{
			Name:       "iOS 24-hour (D/M/Y)",
			PatternStr: bracketPattern(slashed, clock24),
			Layouts:    layouts(dmySlash, false),
			Order:      DayFirst,
			Ambiguous:  true,
			Examples:   []string{"[31/12/2023, 21:05:00] "},
		},
		{
			Name:       "iOS 24-hour (M/D/Y)",
			PatternStr: bracketPattern(slashed, clock24),
			Layouts:    layouts(mdySlash, false),
			Order:      MonthFirst,
			Ambiguous:  true,
			Examples:   []string{"[12/31/23, 21:05:00] "},
		},
		// Dotted day-first dates, common in German and Russian locales
		{
			Name:       "Android dotted (D.M.Y)",
			PatternStr: dashPattern(dotted, clock24),
			Layouts:    layouts(dmyDot, false),
			Order:      DayFirst,
			Examples:   []string{"31.12.23, 21:05 - "},
		},
		{
			Name:       "iOS dotted (D.M.Y)",
			PatternStr: bracketPattern(dotted, clock24),
			Layouts:    layouts(dmyDot, false),
			Order:      DayFirst,
			Examples:   []string{"[31.12.23, 21:05:00] "},
		},
		// ISO-like dates
		{
			Name:       "Android ISO (Y-M-D)",
			PatternStr: dashPattern(isoDate, clock24),
			Layouts:    ymdDash,
			Order:      YearFirst,
			Examples:   []string{"2023-12-31, 21:05 - "},
		},
		{
			Name:       "iOS ISO (Y-M-D)",
			PatternStr: bracketPattern(isoDate, clock24),
			Layouts:    ymdDash,
			Order:      YearFirst,
			Examples:   []string{"[2023-12-31, 21:05:00] "},
		},
	}

	// Compile all patterns
	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.PatternStr)
	}

	return formats
}

// candidatePattern is the loose test for "this line starts with a numeric date".
var candidatePattern = regexp.MustCompile(`^\[?\d{1,4}[./-]\d{1,2}[./-]\d{1,4}`)

// IsCandidate reports whether a cleaned line looks like a message boundary
// in any supported layout.
func IsCandidate(line string) bool {
	return candidatePattern.MatchString(line)
}
