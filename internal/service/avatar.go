package service

import (
	"context"
	"errors"
	"fmt"

	gcsstorage "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// MaxAvatarBytes bounds the size of an uploaded profile photo.
const MaxAvatarBytes = 5 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

func avatarExtension(contentType string) (string, error) {
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
	return ext, nil
}

// GCSAvatarStorage stores profile photos in a Cloud Storage bucket under
// avatars/{userID}/.
type GCSAvatarStorage struct {
	bucket     *gcsstorage.BucketHandle
	bucketName string
}

func NewGCSAvatarStorage(client *gcsstorage.Client, bucketName string) *GCSAvatarStorage {
	return &GCSAvatarStorage{
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
	}
}

func (g *GCSAvatarStorage) Upload(ctx context.Context, userID, ext, contentType string, data []byte) (string, string, error) {
	object := fmt.Sprintf("avatars/%s/%s.%s", userID, uuid.New().String(), ext)

	w := g.bucket.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", "", fmt.Errorf("write avatar %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", "", fmt.Errorf("finalize avatar %s: %w", object, err)
	}

	return object, fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucketName, object), nil
}

func (g *GCSAvatarStorage) Delete(ctx context.Context, object string) error {
	err := g.bucket.Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, gcsstorage.ErrObjectNotExist) {
		return fmt.Errorf("delete avatar %s: %w", object, err)
	}
	return nil
}
