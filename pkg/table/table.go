package table

import (
	"strings"
	"time"
)

// Table is the immutable message table of one or more exports.
// Rows keep export order.
type Table struct {
	rows       []Message
	dropped    []*DateParseError
	formats    []string
	outOfOrder int
}

// FromRows builds a table from rows enriched earlier, such as rows read
// back from a database. Rows are copied and keep their order.
func FromRows(format string, rows []Message) *Table {
	t := &Table{rows: make([]Message, len(rows))}
	copy(t.rows, rows)
	if format != "" {
		t.formats = strings.Split(format, ", ")
	}
	t.outOfOrder = countOutOfOrder(t.rows)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns a copy of row i.
func (t *Table) Row(i int) Message {
	return t.rows[i]
}

// Rows returns a copy of all rows.
func (t *Table) Rows() []Message {
	out := make([]Message, len(t.rows))
	copy(out, t.rows)
	return out
}

// Each calls fn with a pointer to a copy of every row, stopping early when
// fn returns false.
func (t *Table) Each(fn func(i int, m *Message) bool) {
	for i := range t.rows {
		m := t.rows[i]
		if !fn(i, &m) {
			return
		}
	}
}

// Users returns the authors in order of first appearance, without
// notifications.
func (t *Table) Users() []string {
	seen := make(map[string]bool)
	var users []string
	for i := range t.rows {
		u := t.rows[i].User
		if u == GroupNotification || seen[u] {
			continue
		}
		seen[u] = true
		users = append(users, u)
	}
	return users
}

// Authored returns a table without notification rows.
func (t *Table) Authored() *Table {
	return t.filter(func(m *Message) bool { return !m.IsNotification() })
}

// ForUser returns the rows of one author. Overall returns the whole table.
func (t *Table) ForUser(name string) *Table {
	if name == Overall || name == "" {
		return t
	}
	return t.filter(func(m *Message) bool { return m.User == name })
}

// Between returns rows with start <= timestamp < end. A zero bound is open.
func (t *Table) Between(start, end time.Time) *Table {
	return t.filter(func(m *Message) bool {
		if !start.IsZero() && m.Timestamp.Before(start) {
			return false
		}
		if !end.IsZero() && !m.Timestamp.Before(end) {
			return false
		}
		return true
	})
}

// Dropped returns the segments that could not be turned into rows.
func (t *Table) Dropped() []*DateParseError {
	out := make([]*DateParseError, len(t.dropped))
	copy(out, t.dropped)
	return out
}

// Format returns the name of the timestamp format, or a comma-separated
// list for merged tables.
func (t *Table) Format() string {
	return strings.Join(t.formats, ", ")
}

// OutOfOrder returns how many rows have an earlier timestamp than the row
// before them.
func (t *Table) OutOfOrder() int {
	return t.outOfOrder
}

// Span returns the first and last timestamps. Both are zero for an empty table.
func (t *Table) Span() (first, last time.Time) {
	for i := range t.rows {
		ts := t.rows[i].Timestamp
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
		if last.IsZero() || ts.After(last) {
			last = ts
		}
	}
	return first, last
}

func (t *Table) filter(keep func(*Message) bool) *Table {
	out := &Table{
		dropped: t.dropped,
		formats: t.formats,
	}
	for i := range t.rows {
		if keep(&t.rows[i]) {
			out.rows = append(out.rows, t.rows[i])
		}
	}
	out.outOfOrder = countOutOfOrder(out.rows)
	return out
}
