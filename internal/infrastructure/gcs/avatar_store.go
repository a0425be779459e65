package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-contactbook/pkg/helpers"
)

// AvatarStore uploads avatar images to a Google Cloud Storage bucket. Each
// user has one object that is overwritten on every upload.
type AvatarStore struct {
	Client *storage.Client
	Bucket string
}

func NewAvatarStore(client *storage.Client, bucket string) *AvatarStore {
	return &AvatarStore{Client: client, Bucket: bucket}
}

// imageExts maps the image types http.DetectContentType reports to the
// extension stored objects carry.
var imageExts = map[string]string{
	"image/png":                ".png",
	"image/jpeg":               ".jpg",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/bmp":                ".bmp",
	"image/x-icon":             ".ico",
	"image/avif":               ".avif",
	"image/svg+xml":            ".svg",
	"image/vnd.microsoft.icon": ".ico",
}

// ObjectPath returns avatars/user_<id><ext>, with the extension derived
// from contentType. Unknown types get no extension.
func ObjectPath(userID int64, contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	ext := imageExts[strings.ToLower(strings.TrimSpace(mt))]
	return fmt.Sprintf("avatars/user_%d%s", userID, ext)
}

// Upload ignores the client-supplied filename; the object name follows the
// sniffed content type.
func (s *AvatarStore) Upload(ctx context.Context, userID int64, r io.Reader, _, contentType string) (string, error) {
	if s.Client == nil || s.Bucket == "" {
		return "", errors.New("gcs not configured")
	}
	return helpers.UploadImageToGCS(ctx, s.Client, s.Bucket, ObjectPath(userID, contentType), contentType, r)
}
