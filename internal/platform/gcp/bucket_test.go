package gcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

func TestContentTypeForKey(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", contentTypeForKey("sites/x/index.HTML"))
	assert.Equal(t, "application/json", contentTypeForKey("a.json"))
	assert.Equal(t, "application/octet-stream", contentTypeForKey("blob"))
}

func TestBucketPublicURL(t *testing.T) {
	b := &Bucket{name: "pages"}
	assert.Equal(t, "https://storage.googleapis.com/pages/sites/1/index.html", b.PublicURL("/sites/1/index.html"))

	b.emulatorHost = "http://localhost:4443"
	assert.Equal(t, "http://localhost:4443/pages/sites/1/index.html", b.PublicURL("sites/1/index.html"))

	b.publicBaseURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/sites/1/index.html", b.PublicURL("sites/1/index.html"))
}

func TestNewBucket_RequiresName(t *testing.T) {
	_, err := NewBucket(context.Background(), logger.NewNop(), " ", "")
	require.Error(t, err)
}
