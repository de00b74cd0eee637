package analyzer

import (
	"strings"
	"unicode"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
	"mvdan.cc/xurls/v2"

	"github.com/ccollicutt/chatstat/pkg/table"
)

var urlPattern = xurls.Relaxed()

// deletedBodies are the placeholders left by a deleted message.
var deletedBodies = map[string]bool{
	"this message was deleted": true,
	"you deleted this message": true,
}

func isDeleted(body string) bool {
	return deletedBodies[strings.ToLower(strings.TrimSpace(body))]
}

// isText reports whether a row carries words typed by a person.
func isText(m *table.Message) bool {
	return !m.IsNotification() && !m.IsMedia && !isDeleted(m.Message)
}

// tokenize lowercases body and splits it into words. URLs and pure numbers
// are dropped; apostrophes inside words are kept.
func tokenize(body string) []string {
	body = urlPattern.ReplaceAllString(body, " ")
	body = strings.ReplaceAll(strings.ToLower(body), "\u2019", "'")

	fields := strings.FieldsFunc(body, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	words := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f == "" || isNumber(f) {
			continue
		}
		words = append(words, f)
	}
	return words
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isEmoji reports whether a grapheme cluster is an emoji. Skin tones, ZWJ
// sequences and flags stay one cluster.
func isEmoji(cluster string) bool {
	// a lone ASCII digit, # or * is a keycap base, not an emoji
	if cluster == "" || len(cluster) == 1 {
		return false
	}
	return gomoji.ContainsEmoji(cluster)
}

// emojis returns every emoji cluster in s, in order.
func emojis(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if isEmoji(g.Str()) {
			out = append(out, g.Str())
		}
	}
	return out
}

// emojiOnly reports whether s has at least one emoji and nothing else but
// whitespace.
func emojiOnly(s string) bool {
	found := false
	g := uniseg.NewGraphemes(strings.TrimSpace(s))
	for g.Next() {
		if isEmoji(g.Str()) {
			found = true
			continue
		}
		if r := g.Runes(); len(r) == 1 && unicode.IsSpace(r[0]) {
			continue
		}
		return false
	}
	return found
}
