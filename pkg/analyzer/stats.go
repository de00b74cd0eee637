package analyzer

import (
	"context"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// StatsEngine counts messages, words, media, links and notifications.
type StatsEngine struct {
	total   StatsResult
	perUser map[string]*UserStats
	order   []string
}

// NewStatsEngine creates a new stats engine.
func NewStatsEngine() *StatsEngine {
	e := &StatsEngine{}
	e.Reset()
	return e
}

func (e *StatsEngine) Name() string { return "stats" }
func (e *StatsEngine) Scope() Scope { return ScopeUser }

// Process handles a single row.
func (e *StatsEngine) Process(_ context.Context, m *table.Message) error {
	if m.IsNotification() {
		e.total.Notifications++
		return nil
	}

	u, ok := e.perUser[m.User]
	if !ok {
		u = &UserStats{User: m.User}
		e.perUser[m.User] = u
		e.order = append(e.order, m.User)
	}

	e.total.Messages++
	u.Messages++
	e.total.Words += m.WordCount
	u.Words += m.WordCount
	e.total.Links += m.URLCount
	u.Links += m.URLCount
	if m.IsMedia {
		e.total.Media++
		u.Media++
	}
	return nil
}

// Finalize writes the stats record.
func (e *StatsEngine) Finalize(_ context.Context, r *Results) error {
	res := e.total
	res.PerUser = make([]UserStats, 0, len(e.order))
	counts := make(map[string]int, len(e.order))
	for _, name := range e.order {
		counts[name] = e.perUser[name].Messages
	}
	for _, kc := range ranked(counts, 0) {
		res.PerUser = append(res.PerUser, *e.perUser[kc.key])
	}
	r.Stats = &res
	return nil
}

// Reset clears internal state for reuse.
func (e *StatsEngine) Reset() {
	e.total = StatsResult{}
	e.perUser = make(map[string]*UserStats)
	e.order = nil
}

// UsersEngine ranks the busiest authors.
type UsersEngine struct {
	counts map[string]int
	total  int
}

// NewUsersEngine creates a new users engine.
func NewUsersEngine() *UsersEngine {
	return &UsersEngine{counts: make(map[string]int)}
}

func (e *UsersEngine) Name() string { return "users" }
func (e *UsersEngine) Scope() Scope { return ScopeChat }

// Process handles a single row.
func (e *UsersEngine) Process(_ context.Context, m *table.Message) error {
	if m.IsNotification() {
		return nil
	}
	e.counts[m.User]++
	e.total++
	return nil
}

// Finalize writes the users record.
func (e *UsersEngine) Finalize(_ context.Context, r *Results) error {
	res := &UsersResult{Busy: make([]UserShare, 0, len(e.counts))}
	for _, kc := range ranked(e.counts, 0) {
		res.Busy = append(res.Busy, UserShare{
			User:     kc.key,
			Messages: kc.count,
			Percent:  round(ratio(float64(kc.count)*100, float64(e.total)), 2),
		})
	}
	r.Users = res
	return nil
}

// Reset clears internal state for reuse.
func (e *UsersEngine) Reset() {
	e.counts = make(map[string]int)
	e.total = 0
}

// TypesEngine classifies every row into exactly one kind.
type TypesEngine struct {
	res TypesResult
}

// NewTypesEngine creates a new types engine.
func NewTypesEngine() *TypesEngine {
	return &TypesEngine{}
}

func (e *TypesEngine) Name() string { return "types" }
func (e *TypesEngine) Scope() Scope { return ScopeUser }

// Process handles a single row.
func (e *TypesEngine) Process(_ context.Context, m *table.Message) error {
	switch {
	case m.IsNotification():
		e.res.Notification++
	case m.IsMedia:
		e.res.Media++
	case isDeleted(m.Message):
		e.res.Deleted++
	case m.URLCount > 0:
		e.res.Link++
	case emojiOnly(m.Message):
		e.res.EmojiOnly++
	default:
		e.res.Text++
	}
	return nil
}

// Finalize writes the types record.
func (e *TypesEngine) Finalize(_ context.Context, r *Results) error {
	res := e.res
	r.Types = &res
	return nil
}

// Reset clears internal state for reuse.
func (e *TypesEngine) Reset() {
	e.res = TypesResult{}
}
