// Package parser splits a chat export into raw message segments.
package parser

import (
	"strings"

	"github.com/ccollicutt/chatstat/pkg/detector"
)

// Segment is one unit of export text between two timestamp boundaries.
type Segment struct {
	// TimestampText is the raw timestamp as written in the export.
	TimestampText string

	// Prefix is the full boundary match, including the separator.
	Prefix string

	// Author is the sender name. Empty for system notifications.
	Author string

	// Body is the message text with continuation lines joined by "\n".
	Body string

	// Line is the 1-based line number of the boundary line.
	Line int
}

// IsNotification reports whether the segment has no human author.
func (s Segment) IsNotification() bool {
	return s.Author == ""
}

// String rebuilds the export text of the segment.
func (s Segment) String() string {
	var b strings.Builder
	b.WriteString(s.Prefix)
	if s.Author != "" {
		b.WriteString(s.Author)
		b.WriteString(": ")
	}
	b.WriteString(s.Body)
	return b.String()
}

// Result is the output of a parse.
type Result struct {
	Segments []Segment

	// Format is the timestamp format locked for the whole export.
	Format *detector.TimestampFormat

	// Detection is nil when the format was forced with WithFormat.
	Detection *detector.DetectionResult

	Preamble     int // Lines before the first boundary, discarded
	EmptyDropped int // Segments dropped because their body was empty
	Lines        int // Total lines read
}

// Notifications returns the number of segments without an author.
func (r *Result) Notifications() int {
	n := 0
	for _, s := range r.Segments {
		if s.IsNotification() {
			n++
		}
	}
	return n
}
