package views

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/texasiusc/resources/internal/imageurl"
	"github.com/texasiusc/resources/internal/post"
	"github.com/texasiusc/resources/internal/render"
	"github.com/texasiusc/resources/pkg/logger"
)

type DetailStatus string

const (
	DetailFound    DetailStatus = "found"
	DetailNotFound DetailStatus = "not_found"
	DetailError    DetailStatus = "error"
)

const (
	ImageWidth  = 550
	ImageHeight = 310

	// PlaceholderImage is shown whenever a post has no image or its image
	// cannot be resolved.
	PlaceholderImage = "/static/placeholder.svg"

	DateLayout = "1/2/2006"
)

// Getter fetches one post by slug, returning post.ErrNotFound when absent.
type Getter interface {
	Get(ctx context.Context, slug string) (*post.Document, error)
}

// DetailPage is everything the detail template needs.
type DetailPage struct {
	Status   DetailStatus
	Slug     string
	Title    string
	Date     string
	ImageURL string
	ImageAlt string
	Body     template.HTML
	Tags     []string
}

type Detail struct {
	posts  Getter
	images imageurl.Resolver
}

// NewDetail builds the detail view. images may be nil, in which case every
// post shows the placeholder.
func NewDetail(posts Getter, images imageurl.Resolver) *Detail {
	return &Detail{posts: posts, images: images}
}

// Load fetches and renders the post for slug. It never fails: fetch and
// render problems are logged and reported through the page status.
func (d *Detail) Load(ctx context.Context, slug string) (page DetailPage) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("detail %q: render panic: %v", slug, r)
			page = DetailPage{Status: DetailError, Slug: slug}
		}
	}()

	doc, err := d.posts.Get(ctx, slug)
	if errors.Is(err, post.ErrNotFound) {
		return DetailPage{Status: DetailNotFound, Slug: slug}
	}
	if err != nil {
		logger.Errorf("detail %q: %v", slug, err)
		return DetailPage{Status: DetailError, Slug: slug}
	}

	page, err = d.build(ctx, doc)
	if err != nil {
		logger.Errorf("detail %q: %v", slug, err)
		return DetailPage{Status: DetailError, Slug: slug}
	}
	return page
}

func (d *Detail) build(ctx context.Context, doc *post.Document) (DetailPage, error) {
	page := DetailPage{
		Status:   DetailFound,
		Slug:     doc.Slug.Current,
		Title:    doc.Title,
		Date:     FormatDate(doc.PublishedAt),
		ImageURL: d.imageURL(ctx, doc),
		Tags:     doc.Tags,
	}
	if doc.Image != nil {
		page.ImageAlt = doc.Image.Alt
	}
	if page.ImageAlt == "" {
		page.ImageAlt = doc.Title
	}
	if len(doc.Body) > 0 {
		body, err := render.PortableText(doc.Body)
		if err != nil {
			return DetailPage{}, fmt.Errorf("render body: %w", err)
		}
		page.Body = body
	}
	return page, nil
}

func (d *Detail) imageURL(ctx context.Context, doc *post.Document) string {
	if doc.Image == nil || d.images == nil {
		return PlaceholderImage
	}
	u, err := d.images.URL(ctx, *doc.Image, ImageWidth, ImageHeight)
	if err != nil {
		logger.Warnf("detail %q: image %q: %v", doc.Slug.Current, doc.Image.Asset.Ref, err)
		return PlaceholderImage
	}
	return u
}

// FormatDate renders a publish date as shown on both pages; the zero time is "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}
