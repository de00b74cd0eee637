package analyzer

import (
	"context"

	"github.com/ccollicutt/chatstat/pkg/table"
)

type userMood struct {
	messages int
	sum      float64
	positive int
	negative int
}

type monthMood struct {
	messages int
	sum      float64
}

// SentimentEngine scores every text message with VADER.
type SentimentEngine struct {
	shift float64

	res      SentimentResult
	sum      float64
	scored   int
	users    map[string]*userMood
	order    []string
	months   map[string]*monthMood
	lifters  map[string]int
	dampers  map[string]int
	prev     float64
	prevUser string
}

// NewSentimentEngine creates a new sentiment engine. shift is the score
// change between consecutive messages that counts as a mood shift.
func NewSentimentEngine(shift float64) *SentimentEngine {
	e := &SentimentEngine{shift: shift}
	e.Reset()
	return e
}

func (e *SentimentEngine) Name() string { return "sentiment" }
func (e *SentimentEngine) Scope() Scope { return ScopeUser }

// Process handles a single row.
func (e *SentimentEngine) Process(_ context.Context, m *table.Message) error {
	if !isText(m) {
		return nil
	}
	score := sentimentScore(m.Message)

	u, ok := e.users[m.User]
	if !ok {
		u = &userMood{}
		e.users[m.User] = u
		e.order = append(e.order, m.User)
	}
	u.messages++
	u.sum += score

	switch {
	case score >= positiveThreshold:
		e.res.Positive++
		u.positive++
	case score <= negativeThreshold:
		e.res.Negative++
		u.negative++
	default:
		e.res.Neutral++
	}

	if e.res.MostPositive == nil || score > e.res.MostPositive.Score {
		e.res.MostPositive = scored(m, score)
	}
	if e.res.MostNegative == nil || score < e.res.MostNegative.Score {
		e.res.MostNegative = scored(m, score)
	}

	month := m.Timestamp.Format("2006-01")
	mm, ok := e.months[month]
	if !ok {
		mm = &monthMood{}
		e.months[month] = mm
	}
	mm.messages++
	mm.sum += score

	if e.prevUser != "" && e.prevUser != m.User {
		delta := score - e.prev
		if delta >= e.shift {
			e.lifters[m.User]++
		} else if delta <= -e.shift {
			e.dampers[m.User]++
		}
	}
	e.prev, e.prevUser = score, m.User

	e.sum += score
	e.scored++
	return nil
}

func scored(m *table.Message, score float64) *ScoredMessage {
	return &ScoredMessage{
		User:      m.User,
		Message:   m.Message,
		Score:     round(score, 4),
		Timestamp: m.Timestamp,
	}
}

// Finalize writes the sentiment record.
func (e *SentimentEngine) Finalize(_ context.Context, r *Results) error {
	res := e.res
	res.Average = round(ratio(e.sum, float64(e.scored)), 4)
	res.PerUser = make([]UserSentiment, 0, len(e.order))

	best, worst := 0.0, 0.0
	for i, name := range e.order {
		u := e.users[name]
		avg := u.sum / float64(u.messages)
		res.PerUser = append(res.PerUser, UserSentiment{
			User:        name,
			Messages:    u.messages,
			Average:     round(avg, 4),
			PositivePct: round(float64(u.positive)*100/float64(u.messages), 2),
			NegativePct: round(float64(u.negative)*100/float64(u.messages), 2),
		})
		if i == 0 || avg > best {
			best = avg
			res.MostPositiveUser = name
		}
		if i == 0 || avg < worst {
			worst = avg
			res.MostNegativeUser = name
		}
	}

	for _, pc := range chronological(monthCounts(e.months)) {
		mm := e.months[pc.Period]
		res.Monthly = append(res.Monthly, PeriodSentiment{
			Period:   pc.Period,
			Average:  round(mm.sum/float64(mm.messages), 4),
			Messages: mm.messages,
		})
	}

	res.MoodLifters = rankedUsers(e.lifters, 0)
	res.MoodDampeners = rankedUsers(e.dampers, 0)

	r.Sentiment = &res
	return nil
}

func monthCounts(months map[string]*monthMood) map[string]int {
	out := make(map[string]int, len(months))
	for k, v := range months {
		out[k] = v.messages
	}
	return out
}

// Reset clears internal state for reuse.
func (e *SentimentEngine) Reset() {
	e.res = SentimentResult{}
	e.sum, e.scored = 0, 0
	e.users = make(map[string]*userMood)
	e.order = nil
	e.months = make(map[string]*monthMood)
	e.lifters = make(map[string]int)
	e.dampers = make(map[string]int)
	e.prev, e.prevUser = 0, ""
}
