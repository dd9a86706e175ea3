package post

import "time"

// Document is one published post as stored in the content repository. The
// json tags follow the repository's wire shape so fixture and Mongo stores can
// answer queries with the same documents the hosted API would return.
type Document struct {
	ID          string    `json:"_id" bson:"_id" validate:"required"`
	Type        string    `json:"_type,omitempty" bson:"_type,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Slug        Slug      `json:"slug" bson:"slug"`
	PublishedAt time.Time `json:"publishedAt" bson:"publishedAt"`
	Tags        []string  `json:"tags" bson:"tags"`
	Image       *ImageRef `json:"image,omitempty" bson:"image,omitempty"`
	Body        []Block   `json:"body,omitempty" bson:"body,omitempty"`
}

type Slug struct {
	Current string `json:"current" bson:"current" validate:"required"`
}

// ImageRef points at an image asset, e.g. "image-<id>-550x310-jpg".
type ImageRef struct {
	Asset struct {
		Ref string `json:"_ref" bson:"_ref"`
	} `json:"asset" bson:"asset"`
	Alt string `json:"alt,omitempty" bson:"alt,omitempty"`
}

// Block is one Portable Text block node.
type Block struct {
	Type     string    `json:"_type" bson:"_type"`
	Key      string    `json:"_key,omitempty" bson:"_key,omitempty"`
	Style    string    `json:"style,omitempty" bson:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty" bson:"listItem,omitempty"`
	Level    int       `json:"level,omitempty" bson:"level,omitempty"`
	MarkDefs []MarkDef `json:"markDefs,omitempty" bson:"markDefs,omitempty"`
	Children []Span    `json:"children,omitempty" bson:"children,omitempty"`
}

// MaxListLevel is the deepest list nesting rendered.
const MaxListLevel = 8

// ClampLevel bounds a list level to 0..MaxListLevel.
func ClampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxListLevel {
		return MaxListLevel
	}
	return level
}

type Span struct {
	Type  string   `json:"_type" bson:"_type"`
	Text  string   `json:"text" bson:"text"`
	Marks []string `json:"marks,omitempty" bson:"marks,omitempty"`
}

// MarkDef is an annotation referenced from Span.Marks by key (links).
type MarkDef struct {
	Key  string `json:"_key" bson:"_key"`
	Type string `json:"_type" bson:"_type"`
	Href string `json:"href,omitempty" bson:"href,omitempty"`
}

// Summary is the listing payload: body and image are never included.
type Summary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	PublishedAt *time.Time `json:"publishedAt"`
	Tags        []string   `json:"tags"`
}

// Summarize drops everything but the listing fields.
func (d *Document) Summarize() Summary {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	s := Summary{ID: d.ID, Title: d.Title, Slug: d.Slug.Current, Tags: tags}
	if !d.PublishedAt.IsZero() {
		t := d.PublishedAt
		s.PublishedAt = &t
	}
	return s
}

// BodyTexts returns the text of every span in the body, in order.
func (d *Document) BodyTexts() []string {
	var out []string
	for _, b := range d.Body {
		for _, s := range b.Children {
			out = append(out, s.Text)
		}
	}
	return out
}
