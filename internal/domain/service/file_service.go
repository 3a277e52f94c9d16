package service

import (
	"context"
)

// FileUploadService stores user-uploaded images and returns a URL for them.
type FileUploadService interface {
	Upload(ctx context.Context, path string, blob []byte, contentType string) (string, error)
	Close() error
}
