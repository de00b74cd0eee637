package parser

import (
	"github.com/ccollicutt/chatstat/pkg/detector"
)

// TimestampExtractor finds message boundaries of one locked format.
type TimestampExtractor struct {
	format *detector.TimestampFormat
}

// NewTimestampExtractor creates a new timestamp extractor.
func NewTimestampExtractor(format *detector.TimestampFormat) *TimestampExtractor {
	return &TimestampExtractor{format: format}
}

// Match reports whether line starts a new message. On success it returns
// the boundary prefix, the timestamp text inside it and the rest of the line.
func (e *TimestampExtractor) Match(line string) (prefix, text, rest string, ok bool) {
	loc := e.format.Pattern.FindStringSubmatchIndex(line)
	if loc == nil || len(loc) < 4 {
		return "", "", "", false
	}
	return line[:loc[1]], line[loc[2]:loc[3]], line[loc[1]:], true
}
