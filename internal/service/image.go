package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/forkfeed/backend/config"
)

// BlobStorage stores opaque image blobs and returns public URLs. The
// core never touches the storage backend directly.
type BlobStorage interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

var extensionByContentType = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeDataURI decodes a base64 data URI like
// "data:image/png;base64,...." into raw bytes and a content type.
func DecodeDataURI(s string) ([]byte, string, error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, "", Validationf("expected a data URI")
	}
	meta, payload, found := strings.Cut(s[len("data:"):], ",")
	if !found {
		return nil, "", Validationf("malformed data URI")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == meta {
		return nil, "", Validationf("only base64 data URIs are supported")
	}
	if _, ok := extensionByContentType[contentType]; !ok {
		return nil, "", Validationf("unsupported image type %q", contentType)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", Validationf("invalid base64 image payload")
	}
	if len(data) == 0 {
		return nil, "", Validationf("empty image payload")
	}
	return data, contentType, nil
}

// S3Storage stores blobs in the configured S3 bucket under images/.
type S3Storage struct {
	s3cfg *config.S3Config
}

var _ BlobStorage = (*S3Storage)(nil)

func NewS3Storage(s3cfg *config.S3Config) *S3Storage {
	return &S3Storage{s3cfg: s3cfg}
}

func (s *S3Storage) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	ext := extensionByContentType[contentType]
	if ext == "" {
		ext = "bin"
	}
	key := fmt.Sprintf("images/%s.%s", uuid.New().String(), ext)

	_, err := s.s3cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3cfg.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3cfg.BucketName, key), nil
}

func (s *S3Storage) Delete(ctx context.Context, publicURL string) error {
	u, err := url.Parse(publicURL)
	if err != nil {
		return fmt.Errorf("invalid blob URL %q: %w", publicURL, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return fmt.Errorf("blob URL %q has no object key", publicURL)
	}
	_, err = s.s3cfg.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3cfg.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
