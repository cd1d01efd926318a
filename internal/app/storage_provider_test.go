package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagehub-backend/internal/config"
	"github.com/yungbote/pagehub-backend/internal/platform/localfs"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
	"github.com/yungbote/pagehub-backend/internal/services"
)

func TestResolvePageStoreLocal(t *testing.T) {
	dir := t.TempDir()
	store, err := resolvePageStore(context.Background(), logger.NewNop(), config.PublishConfig{Mode: "local", Dir: dir, BaseURL: "https://cdn.example.com/"})
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.(*localfs.Dir)
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/sites/x/index.html", store.PublicURL("sites/x/index.html"))
}

func TestResolvePageStoreInvalidMode(t *testing.T) {
	_, err := resolvePageStore(context.Background(), logger.NewNop(), config.PublishConfig{Mode: "ftp"})
	require.Error(t, err)

	var got *PageStoreBootstrapError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, PageStoreBootstrapErrorInvalidMode, got.Code)
	assert.Equal(t, "ftp", got.Mode)
}

func TestResolvePageStoreMissingBucket(t *testing.T) {
	_, err := resolvePageStore(context.Background(), logger.NewNop(), config.PublishConfig{Mode: "gcs"})
	assert.Equal(t, PageStoreBootstrapErrorMissingBucket, pageStoreBootstrapErrorCode(err))
}

func TestResolvePageStoreConnectFailed(t *testing.T) {
	orig := newBucketStore
	t.Cleanup(func() { newBucketStore = orig })

	cause := errors.New("dial tcp: connection refused")
	newBucketStore = func(context.Context, *logger.Logger, string, string) (services.PageStore, error) {
		return nil, cause
	}

	_, err := resolvePageStore(context.Background(), logger.NewNop(), config.PublishConfig{Mode: "gcs", Bucket: "pages"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var got *PageStoreBootstrapError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, PageStoreBootstrapErrorConnectFailed, got.Code)
	assert.Equal(t, "pages", got.Target)
}

func TestPageStoreBootstrapErrorCodeDefault(t *testing.T) {
	assert.Equal(t, PageStoreBootstrapErrorConnectFailed, pageStoreBootstrapErrorCode(errors.New("boom")))
}
