// Package render turns Portable Text block sequences into HTML.
//
// Block structure (paragraphs, headings, quotes, nested lists) is written as
// Markdown and converted with goldmark. Span text is escaped before it reaches
// the converter and marks are emitted as inline tags built here, so the only
// markup in the output is markup this package generated.
package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"net/url"
	"strings"

	"github.com/texasiusc/resources/internal/post"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe()))

// PortableText renders blocks to HTML. Nodes that are not text blocks (embedded
// images, custom objects) are skipped.
func PortableText(blocks []post.Block) (template.HTML, error) {
	src := Markdown(blocks)
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render body: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Markdown is the intermediate Markdown document for blocks.
func Markdown(blocks []post.Block) string {
	var b strings.Builder
	inList := false
	for _, blk := range blocks {
		if blk.Type != "block" {
			continue
		}
		text := strings.TrimLeft(inline(blk), " \t")
		if strings.TrimSpace(text) == "" {
			continue
		}

		isItem := blk.ListItem != ""
		if b.Len() > 0 {
			if isItem && inList {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		inList = isItem

		switch {
		case isItem:
			level := post.ClampLevel(blk.Level)
			if level < 1 {
				level = 1
			}
			b.WriteString(strings.Repeat("    ", level-1))
			if blk.ListItem == "number" {
				b.WriteString("1. ")
			} else {
				b.WriteString("- ")
			}
		case len(blk.Style) == 2 && blk.Style[0] == 'h' && blk.Style[1] >= '1' && blk.Style[1] <= '6':
			b.WriteString(strings.Repeat("#", int(blk.Style[1]-'0')) + " ")
		case blk.Style == "blockquote":
			b.WriteString("> ")
		}
		b.WriteString(text)
	}
	return b.String()
}

// inline renders the spans of one block.
func inline(blk post.Block) string {
	links := map[string]string{}
	for _, d := range blk.MarkDefs {
		if d.Type == "link" {
			links[d.Key] = d.Href
		}
	}

	var b strings.Builder
	for _, s := range blk.Children {
		if s.Type != "" && s.Type != "span" {
			continue
		}
		open, close := markTags(s.Marks, links)
		b.WriteString(open)
		b.WriteString(escapeText(s.Text))
		b.WriteString(close)
	}
	return b.String()
}

var decorators = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

func markTags(marks []string, links map[string]string) (string, string) {
	var open, close []string
	for _, m := range marks {
		if tag, ok := decorators[m]; ok {
			open = append(open, "<"+tag+">")
			close = append([]string{"</" + tag + ">"}, close...)
			continue
		}
		if href, ok := links[m]; ok && safeHref(href) {
			open = append(open, `<a href="`+html.EscapeString(href)+`">`)
			close = append([]string{"</a>"}, close...)
		}
	}
	return strings.Join(open, ""), strings.Join(close, "")
}

// safeHref allows http(s), mailto and site-relative links.
func safeHref(href string) bool {
	if strings.HasPrefix(href, "/") || strings.HasPrefix(href, "#") {
		return !strings.HasPrefix(href, "//")
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto":
		return true
	}
	return false
}

// escapeText makes span text inert for both HTML and Markdown: HTML
// metacharacters become entities, other ASCII punctuation is backslash
// escaped, and line breaks become <br>.
func escapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case r == '&':
			b.WriteString("&amp;")
		case r == '"':
			b.WriteString("&quot;")
		case r == '\n':
			b.WriteString("<br>")
		case r == '\r':
		case r < 128 && strings.ContainsRune("!#$%'()*+,-./:;=?@[\\]^_`{|}~", r):
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
