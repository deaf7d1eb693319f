package service

import (
	"context"

	"github.com/d60-Lab/clipshare/pkg/storage"
)

// MediaStore 对象存储网关，*storage.Gateway 实现
type MediaStore interface {
	Store(ctx context.Context, kind storage.Kind, up *storage.Upload) (string, error)
	StoreProfileImage(ctx context.Context, up *storage.Upload) (string, error)
	StoreVideo(ctx context.Context, up *storage.Upload) (string, error)
	StoreThumbnail(ctx context.Context, up *storage.Upload) (string, error)
}

var _ MediaStore = (*storage.Gateway)(nil)
