package storage

import (
	"fmt"
	"time"

	"github.com/texasiusc/resources/internal/imageurl"
)

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// URLExpiry bounds presigned image URLs handed to pages.
	URLExpiry time.Duration
}

// RenditionKey is the object key of an image asset rendered at width x height.
// The mirror command uploads under this key and the resolver signs it.
func RenditionKey(a imageurl.Asset, width, height int) string {
	return fmt.Sprintf("images/%s/%dx%d.%s", a.ID, width, height, a.Format)
}
