package export

import (
	"encoding/json"
	"io"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// JSONExporter exports the table as one JSON document.
type JSONExporter struct{}

type document struct {
	Format   string          `json:"format" yaml:"format"`
	Users    []string        `json:"users" yaml:"users"`
	Messages []table.Message `json:"messages" yaml:"messages"`
}

func newDocument(tbl *table.Table) document {
	return document{
		Format:   tbl.Format(),
		Users:    tbl.Users(),
		Messages: tbl.Rows(),
	}
}

// Export exports the table to JSON format
func (e *JSONExporter) Export(tbl *table.Table, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(newDocument(tbl))
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
