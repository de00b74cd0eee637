package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/james-bowman/nlp"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// minTopicDocuments is the smallest corpus worth modelling.
const minTopicDocuments = 2

// TopicsEngine fits an LDA topic model over the text messages. Each
// message is one document; stopwords, numbers and single letters are
// removed first.
type TopicsEngine struct {
	numTopics int
	numWords  int
	stopwords map[string]bool
	stoplist  []string

	docs []string
}

// NewTopicsEngine creates a topics engine with numTopics topics of
// numWords words each.
func NewTopicsEngine(numTopics, numWords int, stopwords []string) *TopicsEngine {
	numTopics = max(numTopics, 1)
	e := &TopicsEngine{
		numTopics: numTopics,
		numWords:  numWords,
		stopwords: make(map[string]bool, len(stopwords)),
	}
	for _, w := range stopwords {
		w = strings.ToLower(w)
		e.stopwords[w] = true
		e.stoplist = append(e.stoplist, w)
	}
	e.Reset()
	return e
}

func (e *TopicsEngine) Name() string { return "topics" }
func (e *TopicsEngine) Scope() Scope { return ScopeUser }

// Process handles a single row.
func (e *TopicsEngine) Process(_ context.Context, m *table.Message) error {
	if !isText(m) {
		return nil
	}
	if doc := e.document(m.Message); doc != "" {
		e.docs = append(e.docs, doc)
	}
	return nil
}

// document reduces a message to the letter-only terms the vectoriser
// will keep, so every document contributes to the vocabulary.
func (e *TopicsEngine) document(body string) string {
	var terms []string
	for _, w := range tokenize(body) {
		w = strings.ReplaceAll(w, "'", "")
		if e.stopwords[w] || utf8.RuneCountInString(w) < 2 || !isLetters(w) {
			continue
		}
		terms = append(terms, w)
	}
	return strings.Join(terms, " ")
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Finalize fits the model and writes the topics record.
func (e *TopicsEngine) Finalize(_ context.Context, r *Results) error {
	res := &TopicsResult{Documents: len(e.docs), Topics: []Topic{}}
	r.Topics = res
	if len(e.docs) < minTopicDocuments {
		return nil
	}

	vectoriser := nlp.NewCountVectoriser(e.stoplist...)
	lda := nlp.NewLatentDirichletAllocation(e.numTopics)
	pipeline := nlp.NewPipeline(vectoriser, lda)

	docsOverTopics, err := pipeline.FitTransform(e.docs...)
	if err != nil {
		return fmt.Errorf("fitting topic model: %w", err)
	}

	vocab := make([]string, len(vectoriser.Vocabulary))
	for term, i := range vectoriser.Vocabulary {
		vocab[i] = term
	}
	res.Vocabulary = len(vocab)

	topicsOverWords := lda.Components()
	nt, nw := topicsOverWords.Dims()
	for topic := 0; topic < nt; topic++ {
		weights := make([]termWeight, 0, nw)
		for word := 0; word < nw; word++ {
			weights = append(weights, termWeight{term: vocab[word], weight: topicsOverWords.At(topic, word)})
		}
		res.Topics = append(res.Topics, Topic{ID: topic, Words: topTerms(weights, e.numWords)})
	}

	_, nd := docsOverTopics.Dims()
	for doc := 0; doc < nd; doc++ {
		best := 0
		for topic := 1; topic < nt; topic++ {
			if docsOverTopics.At(topic, doc) > docsOverTopics.At(best, doc) {
				best = topic
			}
		}
		res.Topics[best].Messages++
	}
	return nil
}

type termWeight struct {
	term   string
	weight float64
}

// topTerms returns the n heaviest terms, ties broken alphabetically.
func topTerms(weights []termWeight, n int) []string {
	sort.Slice(weights, func(i, j int) bool {
		if weights[i].weight != weights[j].weight {
			return weights[i].weight > weights[j].weight
		}
		return weights[i].term < weights[j].term
	})
	if n > len(weights) {
		n = len(weights)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = weights[i].term
	}
	return out
}

// Reset clears internal state for reuse.
func (e *TopicsEngine) Reset() {
	e.docs = nil
}
