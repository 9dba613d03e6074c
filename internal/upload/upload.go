// Package upload validates and stores complaint attachments. Only JPEG, PNG,
// and PDF files up to 5MB are accepted; anything else is rejected before the
// complaint service ever sees it.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/chandankhang/CompTrack/internal/constants"
	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the 5MB limit")
	ErrUnsupportedType = errors.New("only images (JPEG/PNG) and PDFs are allowed")
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".pdf":  true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// Saver writes validated attachments to a local directory.
type Saver struct {
	dir string
}

// NewSaver creates a Saver rooted at dir, creating it if needed.
func NewSaver(dir string) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Saver{dir: dir}, nil
}

// Save validates the file and writes it under a collision-free name. It
// returns the public URL path of the stored file.
func (s *Saver) Save(header *multipart.FileHeader) (string, error) {
	if header.Size > constants.MaxUploadSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && !allowedContentTypes[ct] {
		return "", ErrUnsupportedType
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return "/uploads/" + name, nil
}
