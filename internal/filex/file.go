package filex

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxPhotoSize bounds profile photos read for upload.
const MaxPhotoSize = 5 << 20

var (
	ErrNotImage      = errors.New("file is not an image")
	ErrPhotoTooLarge = errors.New("photo exceeds size limit")
)

// Photo is an image read from disk, ready for a multipart upload.
type Photo struct {
	Name        string
	ContentType string
	Content     []byte
}

// ReadPhoto loads an image file and sniffs its content type. Non-image files
// and files over MaxPhotoSize are rejected.
func ReadPhoto(path string) (*Photo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > MaxPhotoSize {
		return nil, ErrPhotoTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return nil, ErrNotImage
	}

	return &Photo{Name: filepath.Base(path), ContentType: ct, Content: data}, nil
}

// EnsureParentDir creates the directory that will hold file path p.
func EnsureParentDir(p string) error {
	dir := filepath.Dir(p)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
