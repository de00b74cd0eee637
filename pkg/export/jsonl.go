package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// JSONLExporter exports the table in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports the table to JSONL format
func (e *JSONLExporter) Export(tbl *table.Table, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	var err error
	tbl.Each(func(_ int, m *table.Message) bool {
		if encErr := enc.Encode(m); encErr != nil {
			err = fmt.Errorf("failed to encode message on line %d: %w", m.Line, encErr)
			return false
		}
		return true
	})
	return err
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
