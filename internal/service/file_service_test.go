package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/clipshare/pkg/apperr"
	"github.com/d60-Lab/clipshare/pkg/storage"
)

func TestFileUpload(t *testing.T) {
	mem := storage.NewMemory("http://media.test")
	fs := NewFileService(storage.NewGateway(mem))
	ctx := context.Background()

	url, err := fs.Upload(ctx, "thumbnail", storage.FromBytes("t.png", "image/png", []byte{1}))
	require.NoError(t, err)
	assert.Contains(t, url, "http://media.test/thumbnails/")

	_, err = fs.Upload(ctx, "banner", storage.FromBytes("t.png", "image/png", []byte{1}))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = fs.Upload(ctx, "video", nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 1, mem.Len())
}
