package analyzer

import (
	"sort"
	"strings"
	"sync"

	"github.com/forPelevin/gomoji"
	"github.com/jonreiter/govader"
)

// Compound score thresholds.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

var vader = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// sentimentScore returns the VADER compound score of body in [-1, 1].
// Emoji are read as their names so "😭" scores like "loudly crying face".
func sentimentScore(body string) float64 {
	body = urlPattern.ReplaceAllString(body, " ")
	return vader().PolarityScores(describeEmoji(body)).Compound
}

// describeEmoji replaces every emoji in s with its spaced-out name.
func describeEmoji(s string) string {
	found := gomoji.FindAll(s)
	if len(found) == 0 {
		return s
	}
	// skin tone variants contain their base emoji
	sort.Slice(found, func(i, j int) bool {
		return len(found[i].Character) > len(found[j].Character)
	})
	for _, em := range found {
		name := strings.ReplaceAll(em.Slug, "-", " ")
		s = strings.ReplaceAll(s, em.Character, " "+name+" ")
	}
	return s
}
