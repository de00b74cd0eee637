// Package table turns parsed segments into the typed, immutable message table.
package table

import (
	"fmt"
	"time"
)

// GroupNotification is the user value of rows without a human author.
const GroupNotification = "group_notification"

// Overall selects every row in ForUser.
const Overall = "Overall"

// Message is one row of the message table.
type Message struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	User      string    `json:"user" yaml:"user"`
	Message   string    `json:"message" yaml:"message"`

	Year     int       `json:"year" yaml:"year"`
	Month    string    `json:"month" yaml:"month"`
	MonthNum int       `json:"month_num" yaml:"month_num"`
	Day      int       `json:"day" yaml:"day"`
	DayName  string    `json:"day_name" yaml:"day_name"`
	Hour     int       `json:"hour" yaml:"hour"`
	Minute   int       `json:"minute" yaml:"minute"`
	OnlyDate time.Time `json:"only_date" yaml:"only_date"`

	WordCount int    `json:"word_count" yaml:"word_count"`
	URLCount  int    `json:"url_count" yaml:"url_count"`
	IsMedia   bool   `json:"is_media" yaml:"is_media"`
	Line      int    `json:"line" yaml:"line"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty"`
}

// IsNotification reports whether the row is a system notification.
func (m *Message) IsNotification() bool {
	return m.User == GroupNotification
}

// Period returns the one-hour bucket of the row, such as "10-11" or "23-00".
func (m *Message) Period() string {
	return HourPeriod(m.Hour)
}

// HourPeriod formats the bucket that starts at hour h.
func HourPeriod(h int) string {
	return fmt.Sprintf("%02d-%02d", h, (h+1)%24)
}
