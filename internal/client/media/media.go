// Package media uploads wardrobe images to a third-party host and returns a
// public URL the backend can store.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atinyakov/TrueFit/internal/models"
)

// Upload is the hosted result of an image upload.
type Upload struct {
	SecureURL string
	PublicID  string
}

// Uploader stores an image and returns where it lives.
type Uploader interface {
	Upload(ctx context.Context, file models.File) (Upload, error)
}

// UploadError hides provider details behind a fixed message. The cause is
// kept for logs.
type UploadError struct {
	Message string
	Cause   error
}

func (e *UploadError) Error() string { return e.Message }

func (e *UploadError) Unwrap() error { return e.Cause }

// OpenFile opens path for upload. The caller closes the returned file.
func OpenFile(path string) (models.File, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.File{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return models.File{}, nil, err
	}
	if info.IsDir() {
		f.Close()
		return models.File{}, nil, fmt.Errorf("%s is a directory", path)
	}
	return models.File{Name: filepath.Base(path), Size: info.Size(), Content: f}, f, nil
}
