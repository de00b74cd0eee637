package parser

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// maxAuthorRunes bounds a plausible display name.
const maxAuthorRunes = 64

// systemPhrases mark first lines written by the app rather than a person.
// A colon inside such a line ("Alice changed the subject to: Plans") must not
// be read as an author separator.
var systemPhrases = []string{
	" added ",
	" removed ",
	" left",
	" joined using",
	" changed the subject",
	" changed this group's",
	" changed the group description",
	" changed the group name",
	" changed the group icon",
	"end-to-end encrypted",
	"created group",
	"security code changed",
	" changed their phone number",
	"deleted this group's icon",
	"now an admin",
}

// splitAuthor returns the author candidate of a first line and the text
// after its colon. ok is false when the line has no author separator.
func splitAuthor(first string) (author, rest string, ok bool) {
	if i := strings.Index(first, ": "); i >= 0 {
		return first[:i], first[i+2:], true
	}
	if strings.HasSuffix(first, ":") {
		return first[:len(first)-1], "", true
	}
	return "", first, false
}

// isAuthorToken reports whether s can be a sender name.
func isAuthorToken(s string) bool {
	if strings.TrimSpace(s) == "" || utf8.RuneCountInString(s) > maxAuthorRunes {
		return false
	}
	if strings.ContainsAny(s, "\"\u201c\u201d") {
		return false
	}
	return !isSystemLine(s)
}

// authorIndex resolves names that contain ": ". The earliest colon ends the
// author unless a notification line names the longer form
// ("Alice added Team: Ops").
type authorIndex struct {
	confirmed map[string][]string
}

func buildAuthorIndex(firstLines []string) *authorIndex {
	idx := &authorIndex{confirmed: make(map[string][]string)}
	seen := make(map[string]bool)
	for _, line := range firstLines {
		for _, name := range notificationNames(line) {
			if seen[name] {
				continue
			}
			seen[name] = true
			head, _, _ := strings.Cut(name, ": ")
			idx.confirmed[head] = append(idx.confirmed[head], name)
		}
	}
	// longest first so "A: B: C" wins over "A: B"
	for head := range idx.confirmed {
		names := idx.confirmed[head]
		sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	}
	return idx
}

// notificationNames returns the colon-bearing names a system line mentions.
// Lines that read as authored messages name nobody.
func notificationNames(line string) []string {
	if cand, _, ok := splitAuthor(line); ok && isAuthorToken(cand) {
		return nil
	}
	var names []string
	for _, p := range systemPhrases {
		i := strings.Index(line, p)
		if i < 0 {
			continue
		}
		for _, part := range []string{line[:i], line[i+len(p):]} {
			for _, n := range splitNameList(part) {
				if strings.Contains(n, ": ") && isAuthorToken(n) {
					names = append(names, n)
				}
			}
		}
	}
	return names
}

// splitNameList splits "A, B and C" into its names.
func splitNameList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ", ") {
		for _, n := range strings.Split(part, " and ") {
			if n = strings.TrimSpace(n); n != "" {
				out = append(out, n)
			}
		}
	}
	return out
}

// resolve splits a first line into author and remaining text.
// An empty author means the line is a notification.
func (idx *authorIndex) resolve(first string) (author, rest string) {
	cand, rest, ok := splitAuthor(first)
	if !ok || !isAuthorToken(cand) {
		return "", first
	}
	for _, name := range idx.confirmed[cand] {
		switch {
		case strings.HasPrefix(first, name+":"):
			return name, strings.TrimPrefix(first[len(name)+1:], " ")
		case strings.HasPrefix(first, name+" ") && isSystemLine(first[len(name):]):
			return "", first
		}
	}
	return cand, rest
}

// isSystemLine reports whether s contains a notification phrase.
func isSystemLine(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range systemPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
