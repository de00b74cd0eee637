package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// MarkdownExporter exports the table as a readable Markdown transcript.
type MarkdownExporter struct{}

// Export exports the table to Markdown format
func (e *MarkdownExporter) Export(tbl *table.Table, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Chat export\n\n")
	_, _ = fmt.Fprintf(w, "**Format:** %s  \n", tbl.Format())
	_, _ = fmt.Fprintf(w, "**Participants:** %s  \n", strings.Join(tbl.Users(), ", "))
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", tbl.Len())

	day := ""
	tbl.Each(func(_ int, m *table.Message) bool {
		if d := m.OnlyDate.Format("Monday, 2 January 2006"); d != day {
			day = d
			_, _ = fmt.Fprintf(w, "## %s\n\n", day)
		}

		clock := m.Timestamp.Format("15:04")
		if m.IsNotification() {
			_, _ = fmt.Fprintf(w, "_%s %s_\n\n", clock, escapeMarkdown(m.Message))
			return true
		}
		_, _ = fmt.Fprintf(w, "**%s** %s  \n%s\n\n", escapeMarkdown(m.User), clock, quoteLines(escapeMarkdown(m.Message)))
		return true
	})

	return nil
}

// escapeMarkdown escapes markdown emphasis markers
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	text = strings.ReplaceAll(text, "__", "\\_\\_")
	return text
}

// quoteLines keeps multi-line bodies together as one paragraph.
func quoteLines(text string) string {
	return strings.ReplaceAll(text, "\n", "  \n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
