package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// CSVHeader is the column order of CSV exports.
var CSVHeader = []string{
	"date", "user", "message", "year", "month", "month_num", "day", "day_name",
	"hour", "minute", "only_date", "period", "word_count", "url_count", "is_media", "line", "source",
}

// CSVExporter exports the table as CSV with a header row.
type CSVExporter struct{}

// Export exports the table to CSV format
func (e *CSVExporter) Export(tbl *table.Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	var err error
	tbl.Each(func(_ int, m *table.Message) bool {
		err = cw.Write([]string{
			m.Timestamp.Format("2006-01-02 15:04:05"),
			m.User,
			m.Message,
			strconv.Itoa(m.Year),
			m.Month,
			strconv.Itoa(m.MonthNum),
			strconv.Itoa(m.Day),
			m.DayName,
			strconv.Itoa(m.Hour),
			strconv.Itoa(m.Minute),
			m.OnlyDate.Format(time.DateOnly),
			m.Period(),
			strconv.Itoa(m.WordCount),
			strconv.Itoa(m.URLCount),
			strconv.FormatBool(m.IsMedia),
			strconv.Itoa(m.Line),
			m.Source,
		})
		return err == nil
	})
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// Extension returns the file extension for this format
func (e *CSVExporter) Extension() string {
	return "csv"
}
