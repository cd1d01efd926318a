package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/pagehub-backend/internal/config"
	"github.com/yungbote/pagehub-backend/internal/platform/gcp"
	"github.com/yungbote/pagehub-backend/internal/platform/localfs"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
	"github.com/yungbote/pagehub-backend/internal/services"
)

var (
	newBucketStore = func(ctx context.Context, log *logger.Logger, bucket, baseURL string) (services.PageStore, error) {
		b, err := gcp.NewBucket(ctx, log, bucket, baseURL)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	newLocalStore = func(dir, baseURL string) (services.PageStore, error) {
		d, err := localfs.New(dir, baseURL)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
)

type PageStoreBootstrapErrorCode string

const (
	PageStoreBootstrapErrorInvalidMode   PageStoreBootstrapErrorCode = "invalid_mode"
	PageStoreBootstrapErrorMissingBucket PageStoreBootstrapErrorCode = "missing_bucket"
	PageStoreBootstrapErrorConnectFailed PageStoreBootstrapErrorCode = "connect_failed"
)

type PageStoreBootstrapError struct {
	Code   PageStoreBootstrapErrorCode
	Mode   string
	Target string
	Cause  error
}

func (e *PageStoreBootstrapError) Error() string {
	if e == nil {
		return "page store bootstrap failed"
	}
	return fmt.Sprintf("page store bootstrap failed (code=%s mode=%q target=%q): %v", e.Code, e.Mode, e.Target, e.Cause)
}

func (e *PageStoreBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolvePageStore picks where published pages are written: a local directory or a GCS bucket.
func resolvePageStore(ctx context.Context, log *logger.Logger, cfg config.PublishConfig) (services.PageStore, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "local"
	}

	var (
		target string
		store  services.PageStore
		err    error
	)
	switch mode {
	case "local":
		target = cfg.Dir
		log.Info("Selecting page store", "mode", mode, "dir", target)
		store, err = newLocalStore(cfg.Dir, cfg.BaseURL)
	case "gcs":
		target = strings.TrimSpace(cfg.Bucket)
		if target == "" {
			err = &PageStoreBootstrapError{
				Code:  PageStoreBootstrapErrorMissingBucket,
				Mode:  mode,
				Cause: errors.New("publish.bucket is required in gcs mode"),
			}
			log.Error("Page store selection failed", "mode", mode, "error_code", PageStoreBootstrapErrorMissingBucket, "error", err)
			return nil, err
		}
		log.Info("Selecting page store", "mode", mode, "bucket", target)
		store, err = newBucketStore(ctx, log, target, cfg.BaseURL)
	default:
		err = &PageStoreBootstrapError{
			Code:  PageStoreBootstrapErrorInvalidMode,
			Mode:  mode,
			Cause: fmt.Errorf("unsupported publish mode %q", cfg.Mode),
		}
		log.Error("Page store selection failed", "mode", mode, "error_code", PageStoreBootstrapErrorInvalidMode, "error", err)
		return nil, err
	}

	if err != nil {
		classified := &PageStoreBootstrapError{
			Code:   PageStoreBootstrapErrorConnectFailed,
			Mode:   mode,
			Target: target,
			Cause:  err,
		}
		log.Error("Page store bootstrap failed", "mode", mode, "target", target, "error_code", classified.Code, "error", err)
		return nil, classified
	}
	return store, nil
}

func pageStoreBootstrapErrorCode(err error) PageStoreBootstrapErrorCode {
	var bootstrapErr *PageStoreBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return PageStoreBootstrapErrorConnectFailed
}
