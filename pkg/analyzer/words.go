package analyzer

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// WordsEngine finds the most common words and message length figures.
// Notifications, media placeholders and deleted messages are skipped.
type WordsEngine struct {
	limit     int
	stopwords map[string]bool

	counts   map[string]int
	unique   map[string]bool
	messages int
	words    int
	chars    int
	maxLen   int
	minLen   int
	longest  string
	longUser string
}

// NewWordsEngine creates a new words engine keeping the top limit words.
func NewWordsEngine(limit int, stopwords []string) *WordsEngine {
	e := &WordsEngine{
		limit:     limit,
		stopwords: make(map[string]bool, len(stopwords)),
	}
	for _, w := range stopwords {
		e.stopwords[strings.ToLower(w)] = true
	}
	e.Reset()
	return e
}

func (e *WordsEngine) Name() string { return "words" }
func (e *WordsEngine) Scope() Scope { return ScopeUser }

// Process handles a single row.
func (e *WordsEngine) Process(_ context.Context, m *table.Message) error {
	if !isText(m) {
		return nil
	}

	e.messages++
	e.words += m.WordCount

	n := utf8.RuneCountInString(m.Message)
	e.chars += n
	if n > e.maxLen {
		e.maxLen = n
		e.longest = m.Message
		e.longUser = m.User
	}
	if e.messages == 1 || n < e.minLen {
		e.minLen = n
	}

	for _, w := range tokenize(m.Message) {
		e.unique[w] = true
		if e.stopwords[w] || utf8.RuneCountInString(w) < 2 {
			continue
		}
		e.counts[w]++
	}
	return nil
}

// Finalize writes the words record.
func (e *WordsEngine) Finalize(_ context.Context, r *Results) error {
	res := &WordsResult{
		Top:             make([]WordCount, 0, e.limit),
		TotalWords:      e.words,
		UniqueWords:     len(e.unique),
		WordsPerMessage: round(ratio(float64(e.words), float64(e.messages)), 2),
		AvgLength:       round(ratio(float64(e.chars), float64(e.messages)), 2),
		MaxLength:       e.maxLen,
		MinLength:       e.minLen,
		Longest:         e.longest,
		LongestUser:     e.longUser,
	}
	for _, kc := range ranked(e.counts, e.limit) {
		res.Top = append(res.Top, WordCount{Word: kc.key, Count: kc.count})
	}
	r.Words = res
	return nil
}

// Reset clears internal state for reuse.
func (e *WordsEngine) Reset() {
	e.counts = make(map[string]int)
	e.unique = make(map[string]bool)
	e.messages, e.words, e.chars = 0, 0, 0
	e.maxLen, e.minLen = 0, 0
	e.longest, e.longUser = "", ""
}
