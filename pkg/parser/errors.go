package parser

import (
	"errors"
	"fmt"
)

// ErrNoTimestamps is matched by every FormatError.
var ErrNoTimestamps = errors.New("no timestamped message lines found")

// FormatError reports that an export has no line matching a supported
// timestamp format.
type FormatError struct {
	Source     string // File name, empty for in-memory input
	Lines      int    // Non-empty lines examined
	Candidates int    // Lines that started with a numeric date
	Format     string // Forced format name, if any
}

func (e *FormatError) Error() string {
	where := "input"
	if e.Source != "" {
		where = e.Source
	}
	if e.Format != "" {
		return fmt.Sprintf("%s: no line matches format %q (%d lines examined)", where, e.Format, e.Lines)
	}
	if e.Candidates > 0 {
		return fmt.Sprintf("%s: %d line(s) look dated but none matches a supported format", where, e.Candidates)
	}
	return fmt.Sprintf("%s: %s (%d lines examined)", where, ErrNoTimestamps, e.Lines)
}

func (e *FormatError) Unwrap() error {
	return ErrNoTimestamps
}
