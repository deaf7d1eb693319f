package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/clipshare/internal/model"
	"github.com/d60-Lab/clipshare/internal/repository"
	"github.com/d60-Lab/clipshare/pkg/apperr"
	"github.com/d60-Lab/clipshare/pkg/logger"
	"github.com/d60-Lab/clipshare/pkg/probe"
	"github.com/d60-Lab/clipshare/pkg/storage"
)

type UploadVideoInput struct {
	Title       string
	Description string
	// Runtime 为 nil 时通过 probe 读取
	Runtime   *int
	Video     *storage.Upload
	Thumbnail *storage.Upload
}

// UpdateVideoInput nil 字段表示保留原值
type UpdateVideoInput struct {
	Title       *string
	Description *string
	Runtime     *int
	Video       *storage.Upload
	Thumbnail   *storage.Upload
}

type VideoService interface {
	Upload(ctx context.Context, userID uint64, in UploadVideoInput) (*VideoView, error)
	Update(ctx context.Context, userID, videoID uint64, in UpdateVideoInput) (*VideoView, error)
	Delete(ctx context.Context, userID, videoID uint64) error
	// Get 每次调用都会增加播放数
	Get(ctx context.Context, videoID, viewerID uint64) (*VideoView, error)
	List(ctx context.Context, sort repository.VideoSort, viewerID uint64) ([]VideoView, error)
	ListMine(ctx context.Context, userID uint64) ([]VideoView, error)
	ListFollowing(ctx context.Context, userID uint64) ([]VideoView, error)
	Search(ctx context.Context, keyword string, viewerID uint64) ([]VideoView, error)
}

type videoService struct {
	store  *repository.Store
	media  MediaStore
	prober probe.Prober
}

func NewVideoService(store *repository.Store, media MediaStore, prober probe.Prober) VideoService {
	return &videoService{store: store, media: media, prober: prober}
}

func (s *videoService) Upload(ctx context.Context, userID uint64, in UploadVideoInput) (*VideoView, error) {
	if in.Video.Empty() {
		return nil, apperr.Validation("video file is required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if in.Runtime != nil && *in.Runtime < 0 {
		return nil, apperr.Validation("runtime must not be negative")
	}

	var runtime int
	if in.Runtime != nil {
		runtime = *in.Runtime
	} else {
		runtime = s.prober.Runtime(ctx, in.Video)
	}

	videoURL, err := s.media.StoreVideo(ctx, in.Video)
	if err != nil {
		return nil, apperr.Internal("failed to upload video", err)
	}
	thumbURL := ""
	if !in.Thumbnail.Empty() {
		if thumbURL, err = s.media.StoreThumbnail(ctx, in.Thumbnail); err != nil {
			return nil, apperr.Internal("failed to upload thumbnail", err)
		}
	}

	v := &model.Video{
		UserID:       userID,
		Title:        title,
		Description:  in.Description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbURL,
		Runtime:      runtime,
	}
	var created *model.Video
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.FindByID(ctx, userID); err != nil {
			return notFoundOr(err, ErrUserNotFound, "find uploader")
		}
		if err := tx.Videos.Create(ctx, v); err != nil {
			return err
		}
		if err := tx.Users.AdjustVideoCnt(ctx, userID, 1); err != nil {
			return err
		}
		var err error
		created, err = tx.Videos.FindByID(ctx, v.ID)
		return err
	})
	if err != nil {
		return nil, wrap(err, "create video")
	}
	logger.Info("video uploaded",
		zap.Uint64("video_id", v.ID), zap.Uint64("user_id", userID), zap.Int("runtime", runtime))
	view := toVideoView(created, false)
	return &view, nil
}

func (s *videoService) owned(ctx context.Context, userID, videoID uint64) (*model.Video, error) {
	v, err := s.store.Videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, notFoundOr(err, ErrVideoNotFound, "find video")
	}
	if v.UserID != userID {
		return nil, apperr.Forbidden("you are not the owner of this video")
	}
	return v, nil
}

// Update 替换文件时生成新的对象键，旧对象不删除
func (s *videoService) Update(ctx context.Context, userID, videoID uint64, in UpdateVideoInput) (*VideoView, error) {
	v, err := s.owned(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Validation("title must not be blank")
		}
		v.Title = title
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	if in.Runtime != nil && *in.Runtime < 0 {
		return nil, apperr.Validation("runtime must not be negative")
	}

	if !in.Video.Empty() {
		url, err := s.media.StoreVideo(ctx, in.Video)
		if err != nil {
			return nil, apperr.Internal("failed to upload video", err)
		}
		v.VideoURL = url
		if in.Runtime == nil {
			v.Runtime = s.prober.Runtime(ctx, in.Video)
		}
	}
	if in.Runtime != nil {
		v.Runtime = *in.Runtime
	}
	if !in.Thumbnail.Empty() {
		url, err := s.media.StoreThumbnail(ctx, in.Thumbnail)
		if err != nil {
			return nil, apperr.Internal("failed to upload thumbnail", err)
		}
		v.ThumbnailURL = url
	}

	if err := s.store.Videos.UpdateMeta(ctx, v); err != nil {
		return nil, wrap(err, "update video")
	}
	if v, err = s.store.Videos.FindByID(ctx, videoID); err != nil {
		return nil, notFoundOr(err, ErrVideoNotFound, "reload video")
	}
	liked, err := s.store.Likes.IsVideoLiked(ctx, userID, v.ID)
	if err != nil {
		return nil, wrap(err, "load like")
	}
	view := toVideoView(v, liked)
	return &view, nil
}

// Delete 只删除数据库记录，存储中的媒体文件保留
func (s *videoService) Delete(ctx context.Context, userID, videoID uint64) error {
	v, err := s.owned(ctx, userID, videoID)
	if err != nil {
		return err
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := deleteVideos(ctx, tx, []uint64{v.ID}); err != nil {
			return err
		}
		return tx.Users.AdjustVideoCnt(ctx, v.UserID, -1)
	})
	return wrap(err, "delete video")
}

func (s *videoService) Get(ctx context.Context, videoID, viewerID uint64) (*VideoView, error) {
	if err := s.store.Videos.IncrementView(ctx, videoID); err != nil {
		return nil, notFoundOr(err, ErrVideoNotFound, "increment view")
	}
	v, err := s.store.Videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, notFoundOr(err, ErrVideoNotFound, "find video")
	}
	liked, err := s.store.Likes.IsVideoLiked(ctx, viewerID, videoID)
	if err != nil {
		return nil, wrap(err, "load like")
	}
	view := toVideoView(v, liked)
	return &view, nil
}

func (s *videoService) List(ctx context.Context, sort repository.VideoSort, viewerID uint64) ([]VideoView, error) {
	videos, err := s.store.Videos.List(ctx, sort)
	if err != nil {
		return nil, wrap(err, "list videos")
	}
	return videoViews(ctx, s.store, videos, viewerID)
}

func (s *videoService) ListMine(ctx context.Context, userID uint64) ([]VideoView, error) {
	videos, err := s.store.Videos.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrap(err, "list videos")
	}
	return videoViews(ctx, s.store, videos, userID)
}

func (s *videoService) ListFollowing(ctx context.Context, userID uint64) ([]VideoView, error) {
	followees, err := s.store.Follows.FolloweeIDs(ctx, userID)
	if err != nil {
		return nil, wrap(err, "list followees")
	}
	videos, err := s.store.Videos.ListByUsers(ctx, followees)
	if err != nil {
		return nil, wrap(err, "list videos")
	}
	return videoViews(ctx, s.store, videos, userID)
}

func (s *videoService) Search(ctx context.Context, keyword string, viewerID uint64) ([]VideoView, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []VideoView{}, nil
	}
	videos, err := s.store.Videos.Search(ctx, keyword)
	if err != nil {
		return nil, wrap(err, "search videos")
	}
	return videoViews(ctx, s.store, videos, viewerID)
}

// ParseSort 未知值按 latest 处理
func ParseSort(s string) repository.VideoSort {
	if strings.EqualFold(s, string(repository.SortPopular)) {
		return repository.SortPopular
	}
	return repository.SortLatest
}
