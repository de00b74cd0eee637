package table

import (
	"errors"
	"fmt"
)

var errNoFormat = errors.New("no timestamp format")

// DateParseError records a segment whose timestamp could not be parsed
// with the export's format. The row is dropped; the rest of the table is
// unaffected.
type DateParseError struct {
	Line   int    // Boundary line in the export
	Text   string // Timestamp text as written
	Format string // Format name used for parsing
	Err    error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("line %d: cannot parse %q as %s: %v", e.Line, e.Text, e.Format, e.Err)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}
