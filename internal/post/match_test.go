package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchText(t *testing.T) {
	cases := []struct {
		text, term string
		want       bool
	}{
		{"Alpha", "Al", true},
		{"Alpha", "al", true},
		{"Alpha", "Alpha", true},
		{"Alpha", "lph", false},
		{"Beta", "Al", false},
		{"Student Advising Hours", "adv", true},
		{"Student Advising Hours", "stu hou", true},
		{"Student Advising Hours", "stu xyz", false},
		{"Résumé review", "rés", true},
		{"anything", "   ", false},
		{"anything", "***", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchText(tc.text, tc.term), "MatchText(%q, %q)", tc.text, tc.term)
	}
}

func TestMatches(t *testing.T) {
	alpha := &Document{ID: "1", Title: "Alpha", Slug: Slug{Current: "a"}, Tags: []string{"x"}}
	beta := &Document{ID: "2", Title: "Beta", Slug: Slug{Current: "b"}, Tags: []string{}}
	withBody := &Document{ID: "3", Title: "Gamma", Slug: Slug{Current: "g"}, Body: []Block{
		{Type: "block", Children: []Span{{Type: "span", Text: "Scholarship deadlines"}}},
	}}

	assert.True(t, Matches(alpha, "Al"))
	assert.False(t, Matches(beta, "Al"))

	// tag equality is exact
	assert.True(t, Matches(alpha, "x"))
	assert.True(t, Matches(alpha, " x "))
	assert.False(t, Matches(beta, "x"))

	assert.True(t, Matches(withBody, "schol"))
	assert.True(t, Matches(withBody, "dead"))
	assert.False(t, Matches(withBody, "Al"))

	assert.False(t, Matches(alpha, ""))
}
