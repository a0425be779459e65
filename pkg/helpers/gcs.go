package helpers

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSOptions selects credentials and, for local emulators, an endpoint.
type GCSOptions struct {
	CredentialsPath string // empty uses Application Default Credentials
	Endpoint        string // e.g. http://localhost:4443/storage/v1/; implies no auth
}

// NewGCSClient creates a Google Cloud Storage client from opts.
func NewGCSClient(ctx context.Context, opts GCSOptions) (*storage.Client, error) {
	var co []option.ClientOption
	switch {
	case opts.Endpoint != "":
		co = append(co, option.WithEndpoint(opts.Endpoint), option.WithoutAuthentication())
	case opts.CredentialsPath != "":
		co = append(co, option.WithCredentialsFile(opts.CredentialsPath))
	}
	return storage.NewClient(ctx, co...)
}

// UploadImageToGCS writes r to bucket/objectPath and returns a public URL
// pinned to the new object generation, so an overwritten avatar is not
// served stale from caches.
func UploadImageToGCS(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=3600"
	wc.ChunkSize = 0 // single request; avatars are small
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("gcs write %s: %w", objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", objectPath, err)
	}
	var gen int64
	if attrs := wc.Attrs(); attrs != nil {
		gen = attrs.Generation
	}
	return VersionedPublicURL(bucket, objectPath, gen), nil
}

// PublicURL is the storage.googleapis.com address of an object readable by
// allUsers.
func PublicURL(bucket, objectPath string) string {
	return (&url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: "/" + bucket + "/" + objectPath}).String()
}

// VersionedPublicURL appends ?v=<generation> when generation is known.
func VersionedPublicURL(bucket, objectPath string, generation int64) string {
	u := PublicURL(bucket, objectPath)
	if generation <= 0 {
		return u
	}
	return fmt.Sprintf("%s?v=%d", u, generation)
}
