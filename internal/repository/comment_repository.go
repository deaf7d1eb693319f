package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/clipshare/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	UpdateContent(ctx context.Context, id uint64, content string) error
	FindByID(ctx context.Context, id uint64) (*model.Comment, error)
	// ListTopLevel 顶级评论，新的在前
	ListTopLevel(ctx context.Context, videoID uint64) ([]*model.Comment, error)
	// ListReplies 回复，旧的在前
	ListReplies(ctx context.Context, parentID uint64) ([]*model.Comment, error)
	CountTopLevel(ctx context.Context, videoID uint64) (int64, error)
	ReplyIDs(ctx context.Context, parentIDs []uint64) ([]uint64, error)
	IDsByVideos(ctx context.Context, videoIDs []uint64) ([]uint64, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Comment, error)
	Lock(ctx context.Context, id uint64) error
	SetLikeCnt(ctx context.Context, id uint64, n int64) error
	Delete(ctx context.Context, ids ...uint64) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(c).Error
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint64, content string) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("content", content).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uint64) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) ListTopLevel(ctx context.Context, videoID uint64) ([]*model.Comment, error) {
	var rows []*model.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Where("video_id = ? AND parent_comment_id IS NULL", videoID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID uint64) ([]*model.Comment, error) {
	var rows []*model.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Where("parent_comment_id = ?", parentID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *commentRepository) CountTopLevel(ctx context.Context, videoID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("video_id = ? AND parent_comment_id IS NULL", videoID).
		Count(&n).Error
	return n, err
}

func (r *commentRepository) ReplyIDs(ctx context.Context, parentIDs []uint64) ([]uint64, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("parent_comment_id IN ?", parentIDs).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) IDsByVideos(ctx context.Context, videoIDs []uint64) ([]uint64, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("video_id IN ?", videoIDs).Pluck("id", &ids).Error
	return ids, err
}

// ListByUser 返回该用户的全部评论（只含 id、video_id、parent_comment_id）
func (r *commentRepository) ListByUser(ctx context.Context, userID uint64) ([]*model.Comment, error) {
	var rows []*model.Comment
	err := r.db.WithContext(ctx).
		Select("id", "video_id", "parent_comment_id").
		Where("user_id = ?", userID).
		Find(&rows).Error
	return rows, err
}

func (r *commentRepository) Lock(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).
		UpdateColumn("like_cnt", gorm.Expr("like_cnt")).Error
}

func (r *commentRepository) SetLikeCnt(ctx context.Context, id uint64, n int64) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).UpdateColumn("like_cnt", n).Error
}

func (r *commentRepository) Delete(ctx context.Context, ids ...uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Comment{}).Error
}
