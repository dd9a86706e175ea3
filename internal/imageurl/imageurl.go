package imageurl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/texasiusc/resources/internal/post"
)

var (
	ErrInvalidRef   = errors.New("invalid image asset reference")
	ErrUnconfigured = errors.New("image resolver not configured")
)

// Resolver turns an image reference into a URL for a rendition of the given size.
type Resolver interface {
	URL(ctx context.Context, ref post.ImageRef, width, height int) (string, error)
}

// Asset is a parsed reference of the form "image-<id>-<w>x<h>-<format>".
type Asset struct {
	ID     string
	Width  int
	Height int
	Format string
}

func ParseRef(ref string) (Asset, error) {
	parts := strings.Split(ref, "-")
	if len(parts) != 4 || parts[0] != "image" || parts[1] == "" || parts[3] == "" {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	dims := strings.Split(parts[2], "x")
	if len(dims) != 2 {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	w, werr := strconv.Atoi(dims[0])
	h, herr := strconv.Atoi(dims[1])
	if werr != nil || herr != nil || w <= 0 || h <= 0 {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return Asset{ID: parts[1], Width: w, Height: h, Format: parts[3]}, nil
}

// Filename is the asset's original file name, "<id>-<w>x<h>.<format>".
func (a Asset) Filename() string {
	return fmt.Sprintf("%s-%dx%d.%s", a.ID, a.Width, a.Height, a.Format)
}

// CDN builds rendition URLs on the hosted image pipeline.
type CDN struct {
	BaseURL   string
	ProjectID string
	Dataset   string
}

func NewCDN(projectID, dataset string) *CDN {
	return &CDN{BaseURL: "https://cdn.sanity.io", ProjectID: projectID, Dataset: dataset}
}

func (c *CDN) URL(_ context.Context, ref post.ImageRef, width, height int) (string, error) {
	if c.ProjectID == "" || c.Dataset == "" {
		return "", ErrUnconfigured
	}
	a, err := ParseRef(ref.Asset.Ref)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	if width > 0 {
		q.Set("w", strconv.Itoa(width))
	}
	if height > 0 {
		q.Set("h", strconv.Itoa(height))
	}
	u := fmt.Sprintf("%s/images/%s/%s/%s", strings.TrimRight(c.BaseURL, "/"), c.ProjectID, c.Dataset, a.Filename())
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u, nil
}
