package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var (
	ErrUploadsDisabled      = errors.New("file uploads are not configured")
	ErrUnsupportedMediaType = errors.New("unsupported image content type")
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// disabledUploader is used when object storage is not configured.
type disabledUploader struct{}

func NewDisabledUploader() FileUploader {
	return disabledUploader{}
}

func (disabledUploader) Upload(context.Context, string, string, io.Reader) (*UploadResult, error) {
	return nil, ErrUploadsDisabled
}

func (disabledUploader) Delete(context.Context, string) error {
	return ErrUploadsDisabled
}

func (disabledUploader) GetPublicURL(string) string {
	return ""
}

// ObjectKey builds "<prefix>/<slug>-<uuid><ext>" for an uploaded image.
func ObjectKey(prefix, name, contentType string) (string, error) {
	ext, err := ExtensionFromContentType(contentType)
	if err != nil {
		return "", err
	}
	base := slug.Make(name)
	if base == "" {
		base = "file"
	}
	return path.Join(prefix, fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext)), nil
}

func ExtensionFromContentType(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch ct {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, contentType)
	}
}
