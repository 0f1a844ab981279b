package attachments

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/uwdate/review-backend/internal/models"
)

// DiskStore keeps uploads in a local directory.
type DiskStore struct {
	dir string
	now func() time.Time
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir, now: time.Now}
}

func (d *DiskStore) Save(ctx context.Context, up Upload) (models.Evidence, error) {
	if err := ctx.Err(); err != nil {
		return models.Evidence{}, err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return models.Evidence{}, fmt.Errorf("create upload dir: %w", err)
	}

	src, err := up.Open()
	if err != nil {
		return models.Evidence{}, err
	}
	defer src.Close()

	now := d.now()
	name := storedName(up.OriginalName, now)
	dst, err := os.OpenFile(filepath.Join(d.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return models.Evidence{}, err
	}
	n, err := io.Copy(dst, io.LimitReader(src, MaxFileSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxFileSize {
		err = &Error{File: up.OriginalName, Err: ErrFileTooLarge}
	}
	if err != nil {
		os.Remove(filepath.Join(d.dir, name))
		return models.Evidence{}, err
	}

	return models.Evidence{
		Filename:     name,
		OriginalName: up.OriginalName,
		Size:         n,
		UploadDate:   now.UTC(),
	}, nil
}

func (d *DiskStore) Open(_ context.Context, filename string) (io.ReadCloser, error) {
	name, err := cleanName(filename)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(d.dir, name))
}
