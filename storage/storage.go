// Package storage keeps uploaded images and hands back their public URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxImageSize = 5 << 20

var (
	ErrNoFile        = errors.New("An image file is required")
	ErrFileTooLarge  = errors.New("Image must be at most 5MB")
	ErrFileExtension = errors.New("Image must be a jpg, jpeg, png, webp or gif file")
)

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Accept checks an upload's name and size and returns its content type.
func Accept(filename string, size int64) (string, error) {
	if size > MaxImageSize {
		return "", ErrFileTooLarge
	}
	ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", ErrFileExtension
	}
	return ct, nil
}

// Upload stores a multipart file under a random name inside folder.
func Upload(ctx context.Context, store Store, folder string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNoFile
	}
	ct, err := Accept(fh.Filename, fh.Size)
	if err != nil {
		return "", err
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	name := path.Join(folder, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	return store.Save(ctx, name, ct, io.LimitReader(f, MaxImageSize+1))
}

// IsUserError reports whether err came from validating the upload.
func IsUserError(err error) bool {
	return errors.Is(err, ErrNoFile) || errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrFileExtension)
}
