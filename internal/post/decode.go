package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrMalformed = errors.New("malformed post")
)

var validate = validator.New()

// looseDocument mirrors the repository's wire shape without trusting any field's type.
type looseDocument struct {
	ID          json.RawMessage `json:"_id"`
	Type        json.RawMessage `json:"_type"`
	Title       json.RawMessage `json:"title"`
	Slug        json.RawMessage `json:"slug"`
	PublishedAt json.RawMessage `json:"publishedAt"`
	Tags        json.RawMessage `json:"tags"`
	Image       json.RawMessage `json:"image"`
	Body        json.RawMessage `json:"body"`
}

// DecodeDocument validates a single-document query result. A null or empty
// result decodes to (nil, nil). Required fields (_id, slug.current) that are
// missing yield ErrMalformed; other fields are coerced: unusable values become
// their zero value and a body that is not a well-formed block sequence is dropped.
func DecodeDocument(raw json.RawMessage) (*Document, error) {
	if isNull(raw) {
		return nil, nil
	}
	var ld looseDocument
	if err := json.Unmarshal(raw, &ld); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	d := coerce(ld)
	if err := validate.Struct(d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return d, nil
}

// DecodeDocuments validates a multi-document query result. A null result is an
// empty list. Entries that fail validation are skipped and counted; a result
// that is not an array at all is ErrMalformed.
func DecodeDocuments(raw json.RawMessage) ([]Document, int, error) {
	if isNull(raw) {
		return []Document{}, 0, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, fmt.Errorf("%w: expected an array: %v", ErrMalformed, err)
	}
	out := make([]Document, 0, len(items))
	skipped := 0
	for _, it := range items {
		d, err := DecodeDocument(it)
		if err != nil || d == nil {
			skipped++
			continue
		}
		out = append(out, *d)
	}
	return out, skipped, nil
}

// DecodeSummaries is DecodeDocuments projected to listing fields.
func DecodeSummaries(raw json.RawMessage) ([]Summary, int, error) {
	docs, skipped, err := DecodeDocuments(raw)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Summary, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].Summarize())
	}
	return out, skipped, nil
}

func coerce(ld looseDocument) *Document {
	d := &Document{
		ID:    asString(ld.ID),
		Type:  asString(ld.Type),
		Title: asString(ld.Title),
		Slug:  Slug{Current: slugOf(ld.Slug)},
		Tags:  stringsOf(ld.Tags),
		Image: imageOf(ld.Image),
		Body:  blocksOf(ld.Body),
	}
	d.PublishedAt = timeOf(ld.PublishedAt)
	return d
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func asString(raw json.RawMessage) string {
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// slugOf accepts both {"current": "x"} and a bare "x".
func slugOf(raw json.RawMessage) string {
	if s := asString(raw); s != "" {
		return s
	}
	var obj struct {
		Current json.RawMessage `json:"current"`
	}
	if isNull(raw) || json.Unmarshal(raw, &obj) != nil {
		return ""
	}
	return asString(obj.Current)
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

func timeOf(raw json.RawMessage) time.Time {
	s := asString(raw)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func stringsOf(raw json.RawMessage) []string {
	var items []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &items) != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if !isNull(it) && json.Unmarshal(it, &s) == nil {
			out = append(out, s)
		}
	}
	return out
}

func imageOf(raw json.RawMessage) *ImageRef {
	if isNull(raw) {
		return nil
	}
	var img ImageRef
	if json.Unmarshal(raw, &img) != nil || img.Asset.Ref == "" {
		return nil
	}
	return &img
}

// blocksOf returns nil unless raw is an array of block objects each carrying a
// _type. List levels are clamped to 0..MaxListLevel.
func blocksOf(raw json.RawMessage) []Block {
	var blocks []Block
	if isNull(raw) || json.Unmarshal(raw, &blocks) != nil {
		return nil
	}
	for i := range blocks {
		if blocks[i].Type == "" {
			return nil
		}
		blocks[i].Level = ClampLevel(blocks[i].Level)
	}
	return blocks
}
