package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/texasiusc/resources/internal/imageurl"
	"github.com/texasiusc/resources/internal/post"
)

// ErrNotMirrored is returned by URL when the rendition has not been uploaded.
var ErrNotMirrored = errors.New("rendition not mirrored")

// MinIOStorage holds mirrored image renditions and signs URLs for them.
type MinIOStorage struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// NewMinIOStorage creates a new MinIO storage client and ensures the bucket exists.
func NewMinIOStorage(cfg *MinIOConfig) (*MinIOStorage, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket, expiry: expiry}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// UploadFile uploads data from reader to the configured bucket using the provided key.
func (s *MinIOStorage) UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Exists reports whether key is already stored.
func (s *MinIOStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, err
}

// GetPresignedURL returns a presigned GET URL valid for the given duration.
func (s *MinIOStorage) GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, expires, make(url.Values))
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}

// URL implements imageurl.Resolver over mirrored renditions. Renditions that
// were never uploaded yield ErrNotMirrored rather than a dead link.
func (s *MinIOStorage) URL(ctx context.Context, ref post.ImageRef, width, height int) (string, error) {
	a, err := imageurl.ParseRef(ref.Asset.Ref)
	if err != nil {
		return "", err
	}
	key := RenditionKey(a, width, height)
	ok, err := s.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", key, err)
	}
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrNotMirrored)
	}
	return s.GetPresignedURL(ctx, key, s.expiry)
}
