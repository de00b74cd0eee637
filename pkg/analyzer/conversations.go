package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/ccollicutt/chatstat/pkg/table"
)

type session struct {
	start, end time.Time
	starter    string
	ender      string
	messages   int
}

// ConversationsEngine splits the chat into sessions separated by silences
// longer than gap.
type ConversationsEngine struct {
	gap time.Duration

	current  *session
	sessions []session
}

// NewConversationsEngine creates a new conversations engine.
func NewConversationsEngine(gap time.Duration) *ConversationsEngine {
	return &ConversationsEngine{gap: gap}
}

func (e *ConversationsEngine) Name() string { return "conversations" }
func (e *ConversationsEngine) Scope() Scope { return ScopeChat }

// Process handles a single row.
func (e *ConversationsEngine) Process(_ context.Context, m *table.Message) error {
	if m.IsNotification() {
		return nil
	}
	if e.current != nil && m.Timestamp.Sub(e.current.end) <= e.gap {
		if m.Timestamp.After(e.current.end) {
			e.current.end = m.Timestamp
		}
		e.current.ender = m.User
		e.current.messages++
		return nil
	}
	e.flush()
	e.current = &session{
		start:    m.Timestamp,
		end:      m.Timestamp,
		starter:  m.User,
		ender:    m.User,
		messages: 1,
	}
	return nil
}

func (e *ConversationsEngine) flush() {
	if e.current != nil {
		e.sessions = append(e.sessions, *e.current)
		e.current = nil
	}
}

// Finalize writes the conversations record.
func (e *ConversationsEngine) Finalize(_ context.Context, r *Results) error {
	e.flush()

	starters := make(map[string]int)
	enders := make(map[string]int)
	type week struct{ sessions, messages int }
	weeks := make(map[string]*week)

	var lengths, durations []float64
	for _, s := range e.sessions {
		starters[s.starter]++
		enders[s.ender]++
		lengths = append(lengths, float64(s.messages))
		durations = append(durations, minutes(s.end.Sub(s.start)))

		y, w := s.start.ISOWeek()
		key := fmt.Sprintf("%d-W%02d", y, w)
		wk, ok := weeks[key]
		if !ok {
			wk = &week{}
			weeks[key] = wk
		}
		wk.sessions++
		wk.messages += s.messages
	}

	res := &ConversationsResult{
		Total:           len(e.sessions),
		AvgLength:       round(mean(lengths), 2),
		AvgDurationMins: round(mean(durations), 2),
		Starters:        rankedUsers(starters, 0),
		Enders:          rankedUsers(enders, 0),
		Weekly:          make([]WeeklySessions, 0, len(weeks)),
	}

	counts := make(map[string]int, len(weeks))
	for k, w := range weeks {
		counts[k] = w.sessions
	}
	for _, pc := range chronological(counts) {
		w := weeks[pc.Period]
		res.Weekly = append(res.Weekly, WeeklySessions{
			Week:          pc.Period,
			Conversations: w.sessions,
			AvgSize:       round(float64(w.messages)/float64(w.sessions), 2),
		})
	}

	r.Conversations = res
	return nil
}

// Reset clears internal state for reuse.
func (e *ConversationsEngine) Reset() {
	e.current = nil
	e.sessions = nil
}
