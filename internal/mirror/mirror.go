// Package mirror copies the hosted dataset into the Mongo and MinIO backends
// so the site can be served without the hosted API.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/texasiusc/resources/internal/imageurl"
	"github.com/texasiusc/resources/internal/post"
	"github.com/texasiusc/resources/internal/post/repository"
	"github.com/texasiusc/resources/internal/storage"
	"github.com/texasiusc/resources/pkg/logger"
)

// PostSink receives mirrored posts.
type PostSink interface {
	Upsert(ctx context.Context, d *post.Document) error
}

// AssetSink receives mirrored image renditions.
type AssetSink interface {
	Exists(ctx context.Context, key string) (bool, error)
	UploadFile(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

type Mirror struct {
	Source repository.Store
	Posts  PostSink

	// Images is optional; when nil only documents are copied.
	Images *ImageCopier

	DryRun bool
}

// ImageCopier downloads each post's rendition from the CDN and uploads it
// under storage.RenditionKey.
type ImageCopier struct {
	CDN    imageurl.Resolver
	Assets AssetSink
	HTTP   *http.Client
	Width  int
	Height int
}

type Report struct {
	Posts         int
	Skipped       int
	Images        int
	ImagesPresent int
	Failures      int
}

// Run copies every post, then its image. Per-post failures are logged and
// counted; only a failure to read the source aborts the run.
func (m *Mirror) Run(ctx context.Context) (Report, error) {
	var rep Report
	raw, err := m.Source.Fetch(ctx, post.AllPostsFull, nil)
	if err != nil {
		return rep, fmt.Errorf("fetch posts: %w", err)
	}
	docs, skipped, err := post.DecodeDocuments(raw)
	if err != nil {
		return rep, fmt.Errorf("decode posts: %w", err)
	}
	rep.Skipped = skipped

	for i := range docs {
		d := &docs[i]
		if m.DryRun {
			logger.Infof("dry run: would mirror %s (%s)", d.Slug.Current, d.ID)
			rep.Posts++
			continue
		}
		if err := m.Posts.Upsert(ctx, d); err != nil {
			logger.Errorf("mirror %s: %v", d.Slug.Current, err)
			rep.Failures++
			continue
		}
		rep.Posts++

		if m.Images == nil || d.Image == nil {
			continue
		}
		copied, err := m.Images.Copy(ctx, *d.Image)
		switch {
		case err != nil:
			logger.Errorf("mirror %s image: %v", d.Slug.Current, err)
			rep.Failures++
		case copied:
			rep.Images++
		default:
			rep.ImagesPresent++
		}
	}
	return rep, ctx.Err()
}

// Copy uploads one rendition, reporting false when it was already present.
func (c *ImageCopier) Copy(ctx context.Context, ref post.ImageRef) (bool, error) {
	a, err := imageurl.ParseRef(ref.Asset.Ref)
	if err != nil {
		return false, err
	}
	key := storage.RenditionKey(a, c.Width, c.Height)
	ok, err := c.Assets.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", key, err)
	}
	if ok {
		return false, nil
	}

	src, err := c.CDN.URL(ctx, ref, c.Width, c.Height)
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return false, err
	}
	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("download %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, errors.New("download " + src + ": " + resp.Status)
	}

	if err := c.Assets.UploadFile(ctx, key, resp.Body, resp.ContentLength, resp.Header.Get("Content-Type")); err != nil {
		return false, fmt.Errorf("upload %s: %w", key, err)
	}
	return true, nil
}
