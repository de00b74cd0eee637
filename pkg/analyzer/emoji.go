package analyzer

import (
	"context"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// perUserEmojis is how many emojis are listed for each user.
const perUserEmojis = 3

// EmojiEngine counts emoji usage overall and per user.
type EmojiEngine struct {
	limit    int
	counts   map[string]int
	perUser  map[string]map[string]int
	totals   map[string]int
	messages int
	total    int
}

// NewEmojiEngine creates a new emoji engine keeping the top limit emojis.
func NewEmojiEngine(limit int) *EmojiEngine {
	e := &EmojiEngine{limit: limit}
	e.Reset()
	return e
}

func (e *EmojiEngine) Name() string { return "emoji" }
func (e *EmojiEngine) Scope() Scope { return ScopeUser }

// Process handles a single row.
func (e *EmojiEngine) Process(_ context.Context, m *table.Message) error {
	if !isText(m) {
		return nil
	}
	e.messages++

	found := emojis(m.Message)
	if len(found) == 0 {
		return nil
	}
	user, ok := e.perUser[m.User]
	if !ok {
		user = make(map[string]int)
		e.perUser[m.User] = user
	}
	for _, em := range found {
		e.counts[em]++
		user[em]++
	}
	e.total += len(found)
	e.totals[m.User] += len(found)
	return nil
}

// Finalize writes the emoji record.
func (e *EmojiEngine) Finalize(_ context.Context, r *Results) error {
	res := &EmojiResult{
		Total:   e.total,
		Unique:  len(e.counts),
		Density: round(ratio(float64(e.total), float64(e.messages)), 2),
		Top:     emojiCounts(e.counts, e.limit),
		PerUser: make([]UserEmojis, 0, len(e.totals)),
	}
	for _, kc := range ranked(e.totals, 0) {
		res.PerUser = append(res.PerUser, UserEmojis{
			User:  kc.key,
			Total: kc.count,
			Top:   emojiCounts(e.perUser[kc.key], min(perUserEmojis, e.limit)),
		})
	}
	r.Emoji = res
	return nil
}

// Reset clears internal state for reuse.
func (e *EmojiEngine) Reset() {
	e.counts = make(map[string]int)
	e.perUser = make(map[string]map[string]int)
	e.totals = make(map[string]int)
	e.messages, e.total = 0, 0
}

func emojiCounts(counts map[string]int, limit int) []EmojiCount {
	r := ranked(counts, limit)
	out := make([]EmojiCount, len(r))
	for i, kc := range r {
		out[i] = EmojiCount{Emoji: kc.key, Count: kc.count}
	}
	return out
}
