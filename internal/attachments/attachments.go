// Package attachments validates and persists evidence images uploaded with
// a review.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/uwdate/review-backend/internal/models"
)

const (
	MaxFiles    = 5
	MaxFileSize = 10 * 1024 * 1024
)

var (
	ErrTooManyFiles    = errors.New("too many files")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("only image files are allowed")
)

// Error describes why an upload was refused. It wraps one of the sentinel
// errors above.
type Error struct {
	File string
	Err  error
}

func (e *Error) Error() string {
	if e.File == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.File, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Upload is a file received from a client, not yet persisted.
type Upload struct {
	OriginalName string
	ContentType  string
	Size         int64
	Open         func() (io.ReadCloser, error)
}

// Store persists validated uploads and returns the descriptor stored on the
// review. Filename in the descriptor is the reference accepted by Open.
type Store interface {
	Save(ctx context.Context, up Upload) (models.Evidence, error)
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
}

// Validate checks count, size and media type of every upload. The declared
// type must be image/* and the content itself must sniff as an image.
func Validate(uploads []Upload) error {
	if len(uploads) > MaxFiles {
		return &Error{Err: ErrTooManyFiles}
	}
	for _, up := range uploads {
		if up.Size > MaxFileSize {
			return &Error{File: up.OriginalName, Err: ErrFileTooLarge}
		}
		if !strings.HasPrefix(up.ContentType, "image/") {
			return &Error{File: up.OriginalName, Err: ErrUnsupportedType}
		}
		if err := sniffImage(up); err != nil {
			return err
		}
	}
	return nil
}

func sniffImage(up Upload) error {
	if up.Open == nil {
		return &Error{File: up.OriginalName, Err: ErrUnsupportedType}
	}
	rc, err := up.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", up.OriginalName, err)
	}
	defer rc.Close()

	mt, err := mimetype.DetectReader(rc)
	if err != nil {
		return fmt.Errorf("detect %s: %w", up.OriginalName, err)
	}
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return nil
		}
	}
	return &Error{File: up.OriginalName, Err: ErrUnsupportedType}
}

// storedName builds a unique file name that keeps the original extension.
func storedName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	return fmt.Sprintf("evidence-%d-%s%s", now.UnixMilli(), uuid.NewString()[:8], ext)
}

// cleanName rejects references that could escape the storage root.
func cleanName(name string) (string, error) {
	base := filepath.Base(name)
	if base != name || base == "." || base == ".." || base == "" {
		return "", fmt.Errorf("invalid attachment reference %q", name)
	}
	return base, nil
}

// SaveAll validates uploads and persists them in order. Files saved before a
// failure are left in place.
func SaveAll(ctx context.Context, s Store, uploads []Upload) ([]models.Evidence, error) {
	if err := Validate(uploads); err != nil {
		return nil, err
	}
	out := make([]models.Evidence, 0, len(uploads))
	for _, up := range uploads {
		ev, err := s.Save(ctx, up)
		if err != nil {
			return nil, fmt.Errorf("save %s: %w", up.OriginalName, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
