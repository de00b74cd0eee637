package table

import (
	"strings"
	"time"

	"mvdan.cc/xurls/v2"

	"github.com/ccollicutt/chatstat/pkg/detector"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// DefaultMediaMarkers are the placeholder bodies apps write for attachments
// left out of a text export.
var DefaultMediaMarkers = []string{
	"<Media omitted>",
	"image omitted",
	"video omitted",
	"audio omitted",
	"sticker omitted",
	"GIF omitted",
	"document omitted",
	"Contact card omitted",
}

// DefaultMediaPrefixes match placeholders that carry a file name.
var DefaultMediaPrefixes = []string{
	"<attached: ",
}

var urlPattern = xurls.Relaxed()

type enricher struct {
	markers  map[string]bool
	prefixes []string
	source   string
}

// Option configures Enrich.
type Option func(*enricher)

// WithMediaMarkers replaces the exact-match media placeholders.
func WithMediaMarkers(markers []string) Option {
	return func(e *enricher) {
		if len(markers) == 0 {
			return
		}
		e.markers = make(map[string]bool, len(markers))
		for _, m := range markers {
			e.markers[m] = true
		}
	}
}

// WithMediaPrefixes replaces the prefix media placeholders.
func WithMediaPrefixes(prefixes []string) Option {
	return func(e *enricher) {
		if len(prefixes) > 0 {
			e.prefixes = prefixes
		}
	}
}

// WithSource tags every row with the export it came from.
func WithSource(name string) Option {
	return func(e *enricher) {
		e.source = name
	}
}

// Enrich parses the timestamp of every segment with the export's locked
// format and derives the calendar and content fields. Segments whose
// timestamp does not parse are dropped and recorded in Dropped.
func Enrich(segments []parser.Segment, format *detector.TimestampFormat, opts ...Option) *Table {
	e := &enricher{}
	WithMediaMarkers(DefaultMediaMarkers)(e)
	e.prefixes = DefaultMediaPrefixes
	for _, opt := range opts {
		opt(e)
	}

	t := &Table{rows: make([]Message, 0, len(segments))}
	if format != nil {
		t.formats = []string{format.Name}
	}

	for _, seg := range segments {
		if format == nil {
			t.dropped = append(t.dropped, &DateParseError{Line: seg.Line, Text: seg.TimestampText, Err: errNoFormat})
			continue
		}
		ts, err := format.Parse(seg.TimestampText)
		if err != nil {
			t.dropped = append(t.dropped, &DateParseError{
				Line:   seg.Line,
				Text:   seg.TimestampText,
				Format: format.Name,
				Err:    err,
			})
			continue
		}
		t.rows = append(t.rows, e.row(seg, ts))
	}

	t.outOfOrder = countOutOfOrder(t.rows)
	return t
}

func (e *enricher) row(seg parser.Segment, ts time.Time) Message {
	user := seg.Author
	if user == "" {
		user = GroupNotification
	}

	m := Message{
		Timestamp: ts,
		User:      user,
		Message:   seg.Body,
		Year:      ts.Year(),
		Month:     ts.Month().String(),
		MonthNum:  int(ts.Month()),
		Day:       ts.Day(),
		DayName:   ts.Weekday().String(),
		Hour:      ts.Hour(),
		Minute:    ts.Minute(),
		OnlyDate:  time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
		URLCount:  len(urlPattern.FindAllString(seg.Body, -1)),
		IsMedia:   e.isMedia(seg.Body),
		Line:      seg.Line,
		Source:    e.source,
	}
	if !m.IsMedia {
		m.WordCount = len(strings.Fields(seg.Body))
	}
	return m
}

func (e *enricher) isMedia(body string) bool {
	body = strings.TrimSpace(body)
	if e.markers[body] {
		return true
	}
	for _, p := range e.prefixes {
		if strings.HasPrefix(body, p) {
			return true
		}
	}
	return false
}

func countOutOfOrder(rows []Message) int {
	n := 0
	for i := 1; i < len(rows); i++ {
		if rows[i].Timestamp.Before(rows[i-1].Timestamp) {
			n++
		}
	}
	return n
}
