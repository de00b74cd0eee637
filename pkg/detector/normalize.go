package detector

import (
	"regexp"
	"strings"
)

// invisible lists formatting characters some exporters insert around
// timestamps and names. They carry no content.
var invisible = strings.NewReplacer(
	"\u200e", "", // left-to-right mark
	"\u200f", "", // right-to-left mark
	"\u202a", "", "\u202b", "", "\u202c", "", "\u202d", "", "\u202e", "",
	"\u2066", "", "\u2067", "", "\u2068", "", "\u2069", "",
	"\u200b", "", // zero width space
	"\u2060", "", // word joiner
	"\ufeff", "", // byte order mark
)

// StripInvisible removes bidi and zero-width formatting characters.
func StripInvisible(s string) string {
	return invisible.Replace(s)
}

var (
	spaces   = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u2009", " ", ",", " ")
	meridiem = regexp.MustCompile(`(?i)\s*([ap])\.?\s?m\.?$`)
	runs     = regexp.MustCompile(`\s+`)
)

// Normalize turns a raw timestamp into the canonical shape the layouts
// expect: invisible characters removed, commas and exotic spaces turned into
// single spaces, and any am/pm marker rewritten as " AM" or " PM".
func Normalize(s string) string {
	s = StripInvisible(s)
	s = spaces.Replace(s)
	s = strings.TrimSpace(runs.ReplaceAllString(s, " "))
	if m := meridiem.FindStringSubmatchIndex(s); m != nil {
		marker := strings.ToUpper(s[m[2]:m[3]]) + "M"
		s = strings.TrimSpace(s[:m[0]]) + " " + marker
	}
	return s
}
