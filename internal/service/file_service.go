package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/clipshare/pkg/apperr"
	"github.com/d60-Lab/clipshare/pkg/logger"
	"github.com/d60-Lab/clipshare/pkg/storage"
)

// FileService 独立的文件上传接口，返回公开 URL
type FileService interface {
	Upload(ctx context.Context, kind string, up *storage.Upload) (string, error)
}

type fileService struct {
	media MediaStore
}

func NewFileService(media MediaStore) FileService {
	return &fileService{media: media}
}

func (s *fileService) Upload(ctx context.Context, kind string, up *storage.Upload) (string, error) {
	k, ok := storage.ParseKind(kind)
	if !ok {
		return "", apperr.Validation("unknown upload type: " + kind)
	}
	if up.Empty() {
		return "", apperr.Validation("file is required")
	}
	url, err := s.media.Store(ctx, k, up)
	if err != nil {
		logger.Error("file upload failed", zap.String("kind", kind), zap.Error(err))
		return "", apperr.Internal("failed to upload file", err)
	}
	return url, nil
}
