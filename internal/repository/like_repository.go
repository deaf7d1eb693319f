package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/clipshare/internal/model"
)

// LikeRepository 点赞账本；行只创建一次，之后只翻转 liked
type LikeRepository interface {
	// FlipVideoLike 不存在则以 liked=false 插入，然后翻转并返回新状态
	FlipVideoLike(ctx context.Context, userID, videoID uint64) (bool, error)
	FlipCommentLike(ctx context.Context, userID, commentID uint64) (bool, error)
	CountVideoLikes(ctx context.Context, videoID uint64) (int64, error)
	CountCommentLikes(ctx context.Context, commentID uint64) (int64, error)
	IsVideoLiked(ctx context.Context, userID, videoID uint64) (bool, error)
	LikedVideoSet(ctx context.Context, userID uint64, videoIDs []uint64) (map[uint64]bool, error)
	LikedCommentSet(ctx context.Context, userID uint64, commentIDs []uint64) (map[uint64]bool, error)
	LikedVideoIDsByUser(ctx context.Context, userID uint64) ([]uint64, error)
	LikedCommentIDsByUser(ctx context.Context, userID uint64) ([]uint64, error)
	DeleteByUser(ctx context.Context, userID uint64) error
	DeleteByVideos(ctx context.Context, videoIDs []uint64) error
	DeleteByComments(ctx context.Context, commentIDs []uint64) error
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) FlipVideoLike(ctx context.Context, userID, videoID uint64) (bool, error) {
	return r.flip(ctx, &model.VideoLike{UserID: userID, VideoID: videoID}, "video_id", videoID, userID)
}

func (r *likeRepository) FlipCommentLike(ctx context.Context, userID, commentID uint64) (bool, error) {
	return r.flip(ctx, &model.CommentLike{UserID: userID, CommentID: commentID}, "comment_id", commentID, userID)
}

// flip 唯一索引保证并发首次插入只有一行生效，其余 DO NOTHING
func (r *likeRepository) flip(ctx context.Context, row interface{}, targetCol string, targetID, userID uint64) (bool, error) {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return false, err
	}
	where := "user_id = ? AND " + targetCol + " = ?"
	if err := r.db.WithContext(ctx).Table(tableOf(row)).Where(where, userID, targetID).
		Updates(map[string]interface{}{
			"liked":      gorm.Expr("NOT liked"),
			"updated_at": time.Now(),
		}).Error; err != nil {
		return false, err
	}
	var liked []bool
	if err := r.db.WithContext(ctx).Table(tableOf(row)).Where(where, userID, targetID).
		Pluck("liked", &liked).Error; err != nil {
		return false, err
	}
	if len(liked) == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return liked[0], nil
}

func tableOf(row interface{}) string {
	if t, ok := row.(interface{ TableName() string }); ok {
		return t.TableName()
	}
	return ""
}

func (r *likeRepository) CountVideoLikes(ctx context.Context, videoID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.VideoLike{}).Where("video_id = ? AND liked = ?", videoID, true).Count(&n).Error
	return n, err
}

func (r *likeRepository) CountCommentLikes(ctx context.Context, commentID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CommentLike{}).Where("comment_id = ? AND liked = ?", commentID, true).Count(&n).Error
	return n, err
}

func (r *likeRepository) IsVideoLiked(ctx context.Context, userID, videoID uint64) (bool, error) {
	set, err := r.LikedVideoSet(ctx, userID, []uint64{videoID})
	return set[videoID], err
}

func (r *likeRepository) LikedVideoSet(ctx context.Context, userID uint64, videoIDs []uint64) (map[uint64]bool, error) {
	return r.likedSet(ctx, &model.VideoLike{}, "video_id", userID, videoIDs)
}

func (r *likeRepository) LikedCommentSet(ctx context.Context, userID uint64, commentIDs []uint64) (map[uint64]bool, error) {
	return r.likedSet(ctx, &model.CommentLike{}, "comment_id", userID, commentIDs)
}

func (r *likeRepository) likedSet(ctx context.Context, m interface{}, targetCol string, userID uint64, ids []uint64) (map[uint64]bool, error) {
	set := make(map[uint64]bool, len(ids))
	if userID == 0 || len(ids) == 0 {
		return set, nil
	}
	var liked []uint64
	err := r.db.WithContext(ctx).Model(m).
		Where("user_id = ? AND liked = ? AND "+targetCol+" IN ?", userID, true, ids).
		Pluck(targetCol, &liked).Error
	if err != nil {
		return nil, err
	}
	for _, id := range liked {
		set[id] = true
	}
	return set, nil
}

func (r *likeRepository) LikedVideoIDsByUser(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.VideoLike{}).
		Where("user_id = ? AND liked = ?", userID, true).Pluck("video_id", &ids).Error
	return ids, err
}

func (r *likeRepository) LikedCommentIDsByUser(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.CommentLike{}).
		Where("user_id = ? AND liked = ?", userID, true).Pluck("comment_id", &ids).Error
	return ids, err
}

func (r *likeRepository) DeleteByUser(ctx context.Context, userID uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Delete(&model.VideoLike{}).Error; err != nil {
		return err
	}
	return db.Where("user_id = ?", userID).Delete(&model.CommentLike{}).Error
}

func (r *likeRepository) DeleteByVideos(ctx context.Context, videoIDs []uint64) error {
	if len(videoIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("video_id IN ?", videoIDs).Delete(&model.VideoLike{}).Error
}

func (r *likeRepository) DeleteByComments(ctx context.Context, commentIDs []uint64) error {
	if len(commentIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("comment_id IN ?", commentIDs).Delete(&model.CommentLike{}).Error
}
