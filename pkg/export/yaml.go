package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// YAMLExporter exports the table in YAML format
type YAMLExporter struct{}

// Export exports the table to YAML format
func (e *YAMLExporter) Export(tbl *table.Table, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(newDocument(tbl))
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
