package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/clipshare/internal/model"
)

type FollowRepository interface {
	// Create 返回 false 表示关系已存在
	Create(ctx context.Context, followerID, followeeID uint64) (bool, error)
	// Delete 返回 false 表示关系本不存在
	Delete(ctx context.Context, followerID, followeeID uint64) (bool, error)
	Exists(ctx context.Context, followerID, followeeID uint64) (bool, error)
	FollowerIDs(ctx context.Context, userID uint64) ([]uint64, error)
	FolloweeIDs(ctx context.Context, userID uint64) ([]uint64, error)
	ListFollowers(ctx context.Context, userID uint64, offset, limit int) ([]*model.User, error)
	ListFollowings(ctx context.Context, userID uint64, offset, limit int) ([]*model.User, error)
	DeleteByUser(ctx context.Context, userID uint64) error
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	f := &model.Follow{FollowerID: followerID, FolloweeID: followeeID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// FollowerIDs 全量粉丝 ID，新关注的在前
func (r *followRepository) FollowerIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("followee_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *followRepository) FolloweeIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint64, offset, limit int) ([]*model.User, error) {
	return r.listUsers(ctx, "user_follow.follower_id", "user_follow.followee_id = ?", userID, offset, limit)
}

func (r *followRepository) ListFollowings(ctx context.Context, userID uint64, offset, limit int) ([]*model.User, error) {
	return r.listUsers(ctx, "user_follow.followee_id", "user_follow.follower_id = ?", userID, offset, limit)
}

func (r *followRepository) listUsers(ctx context.Context, joinCol, cond string, userID uint64, offset, limit int) ([]*model.User, error) {
	var res []*model.User
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Joins("JOIN user_follow ON users.id = "+joinCol).
		Where(cond, userID).
		Order("user_follow.created_at DESC").Order("user_follow.id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

// DeleteByUser 删除该用户作为关注者或被关注者的全部关系
func (r *followRepository) DeleteByUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? OR followee_id = ?", userID, userID).
		Delete(&model.Follow{}).Error
}
