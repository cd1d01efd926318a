package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagehub-backend/internal/config"
	"github.com/yungbote/pagehub-backend/internal/platform/kv"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

func TestNewStore_RequiresAddr(t *testing.T) {
	_, err := NewStore(context.Background(), config.RedisConfig{}, logger.NewNop())
	require.Error(t, err)
	_, err = NewStore(context.Background(), config.RedisConfig{Addr: "localhost:6379"}, nil)
	require.Error(t, err)
}

func TestStore_Integration(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewStore(ctx, config.RedisConfig{Addr: addr, Prefix: "pagehub-test:" + uuid.NewString() + ":"}, logger.NewNop())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "a")
	require.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Minute))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	ok, err := s.SetNX(ctx, "lock", []byte("x"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.SetNX(ctx, "lock", []byte("y"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, "a", "lock"))
	_, err = s.Get(ctx, "lock")
	require.ErrorIs(t, err, kv.ErrNotFound)
}
