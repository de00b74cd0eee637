package analyzer

import (
	"context"
	"sort"
	"time"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// RepliesEngine measures how fast users answer each other. A reply is an
// authored message whose author differs from the previous author.
type RepliesEngine struct {
	late time.Duration

	prev    *table.Message
	nodes   []string
	seen    map[string]bool
	times   []float64
	perUser map[string][]float64
	lateBy  map[string]int
	lateSum float64
	lateN   int
	edges   map[[2]string]int
	longest *LongestReply
}

// NewRepliesEngine creates a new replies engine. Replies slower than late
// are counted as late.
func NewRepliesEngine(late time.Duration) *RepliesEngine {
	e := &RepliesEngine{late: late}
	e.Reset()
	return e
}

func (e *RepliesEngine) Name() string { return "replies" }
func (e *RepliesEngine) Scope() Scope { return ScopeChat }

// Process handles a single row.
func (e *RepliesEngine) Process(_ context.Context, m *table.Message) error {
	if m.IsNotification() {
		return nil
	}
	if !e.seen[m.User] {
		e.seen[m.User] = true
		e.nodes = append(e.nodes, m.User)
	}

	prev := e.prev
	cur := *m
	e.prev = &cur
	if prev == nil || prev.User == m.User {
		return nil
	}

	delta := m.Timestamp.Sub(prev.Timestamp)
	if delta < 0 {
		return nil
	}
	mins := minutes(delta)

	e.times = append(e.times, mins)
	e.perUser[m.User] = append(e.perUser[m.User], mins)
	e.edges[[2]string{m.User, prev.User}]++

	if delta > e.late {
		e.lateBy[m.User]++
		e.lateSum += delta.Hours()
		e.lateN++
	}

	if e.longest == nil || mins > e.longest.Minutes {
		e.longest = &LongestReply{
			User:      m.User,
			Minutes:   mins,
			Message:   m.Message,
			RepliedTo: prev.User,
			Original:  prev.Message,
		}
	}
	return nil
}

// Finalize writes the replies record.
func (e *RepliesEngine) Finalize(_ context.Context, r *Results) error {
	res := &RepliesResult{
		Replies:       len(e.times),
		AvgMinutes:    round(mean(e.times), 2),
		MedianMinutes: round(median(e.times), 2),
		PerUser:       make([]UserReplies, 0, len(e.perUser)),
		LateReplies:   e.lateN,
		LateAvgHours:  round(ratio(e.lateSum, float64(e.lateN)), 2),
		Graph: ReplyGraph{
			Nodes: append([]string{}, e.nodes...),
			Edges: make([]ReplyEdge, 0, len(e.edges)),
		},
	}

	for _, name := range e.nodes {
		times, ok := e.perUser[name]
		if !ok {
			continue
		}
		res.PerUser = append(res.PerUser, UserReplies{
			User:          name,
			Replies:       len(times),
			AvgMinutes:    round(mean(times), 2),
			MedianMinutes: round(median(times), 2),
			Late:          e.lateBy[name],
		})
	}

	for k, c := range e.edges {
		res.Graph.Edges = append(res.Graph.Edges, ReplyEdge{From: k[0], To: k[1], Count: c})
	}
	sort.Slice(res.Graph.Edges, func(i, j int) bool {
		a, b := res.Graph.Edges[i], res.Graph.Edges[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})

	if e.longest != nil {
		l := *e.longest
		l.Minutes = round(l.Minutes, 2)
		res.Longest = &l
	}

	r.Replies = res
	return nil
}

// Reset clears internal state for reuse.
func (e *RepliesEngine) Reset() {
	e.prev = nil
	e.nodes = nil
	e.seen = make(map[string]bool)
	e.times = nil
	e.perUser = make(map[string][]float64)
	e.lateBy = make(map[string]int)
	e.lateSum, e.lateN = 0, 0
	e.edges = make(map[[2]string]int)
	e.longest = nil
}
