package post

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases s and splits it into runs of letters and digits.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// MatchText reports whether every token of term prefixes some token of text.
// This is the wildcard "term*" match of the hosted query language: word based,
// case-insensitive, no stemming or scoring. A term without tokens matches nothing.
func MatchText(text, term string) bool {
	want := Tokenize(term)
	if len(want) == 0 {
		return false
	}
	have := Tokenize(text)
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.HasPrefix(h, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Matches reports whether d satisfies the search predicate for term: the title
// matches, term equals one of the tags, or the body text matches. Body text
// nodes are matched as one token stream, so a multi-word term may span nodes.
func Matches(d *Document, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return false
	}
	if MatchText(d.Title, term) {
		return true
	}
	for _, t := range d.Tags {
		if t == term {
			return true
		}
	}
	return MatchText(strings.Join(d.BodyTexts(), " "), term)
}
