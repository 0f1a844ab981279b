package attachments

import (
	"context"
	"errors"
	"fmt"

	"github.com/uwdate/review-backend/internal/config"
)

// NewStore opens the evidence store selected by UPLOAD_DRIVER.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.UploadDriver {
	case config.UploadDisk:
		return NewDiskStore(cfg.UploadDir), nil
	case config.UploadS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3_BUCKET environment variable is required")
		}
		return NewS3StoreFromEnv(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	}
	return nil, fmt.Errorf("unknown UPLOAD_DRIVER %q", cfg.UploadDriver)
}
