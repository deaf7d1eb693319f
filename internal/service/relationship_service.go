package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/clipshare/internal/cache"
	"github.com/d60-Lab/clipshare/internal/repository"
	"github.com/d60-Lab/clipshare/pkg/logger"
)

// RelationshipService 关系链服务
type RelationshipService interface {
	Follow(ctx context.Context, fromUserID, toUserID uint64) error
	Unfollow(ctx context.Context, fromUserID, toUserID uint64) error
	ListFollowing(ctx context.Context, userID uint64, page, pageSize int) ([]UserSummary, error)
	ListFollowers(ctx context.Context, userID uint64, page, pageSize int) ([]UserSummary, error)
}

type relationshipService struct {
	store *repository.Store
	cache *cache.FollowCache
}

// NewRelationshipService cache 可为 nil，此时列表直接走数据库分页
func NewRelationshipService(store *repository.Store, fc *cache.FollowCache) RelationshipService {
	return &relationshipService{store: store, cache: fc}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID uint64) error {
	if fromUserID == toUserID {
		return ErrFollowSelf
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.FindByID(ctx, fromUserID); err != nil {
			return notFoundOr(err, ErrUserNotFound, "find follower")
		}
		if _, err := tx.Users.FindByID(ctx, toUserID); err != nil {
			return notFoundOr(err, ErrUserNotFound, "find followee")
		}
		created, err := tx.Follows.Create(ctx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		if !created {
			return ErrAlreadyFollowing
		}
		return tx.Users.AdjustFollowerCnt(ctx, toUserID, 1)
	})
	if err != nil {
		return wrap(err, "follow")
	}
	s.cache.Invalidate(ctx, fromUserID, toUserID)
	return nil
}

// Unfollow 关系不存在时为空操作；计数只在确实删除了关系时减少
func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID uint64) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		removed, err := tx.Follows.Delete(ctx, fromUserID, toUserID)
		if err != nil || !removed {
			return err
		}
		return tx.Users.AdjustFollowerCnt(ctx, toUserID, -1)
	})
	if err != nil {
		return wrap(err, "unfollow")
	}
	s.cache.Invalidate(ctx, fromUserID, toUserID)
	return nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID uint64, page, pageSize int) ([]UserSummary, error) {
	page, pageSize = normalizePage(page, pageSize)
	if s.cache == nil {
		users, err := s.store.Follows.ListFollowings(ctx, userID, (page-1)*pageSize, pageSize)
		if err != nil {
			return nil, wrap(err, "list followings")
		}
		return toUserSummaries(users), nil
	}
	ids, err := s.cache.FollowingPage(ctx, userID, page, pageSize, func(ctx context.Context) ([]uint64, error) {
		return s.store.Follows.FolloweeIDs(ctx, userID)
	})
	if err != nil {
		return nil, wrap(err, "list followings")
	}
	return s.loadUsers(ctx, ids)
}

func (s *relationshipService) ListFollowers(ctx context.Context, userID uint64, page, pageSize int) ([]UserSummary, error) {
	page, pageSize = normalizePage(page, pageSize)
	if s.cache == nil {
		users, err := s.store.Follows.ListFollowers(ctx, userID, (page-1)*pageSize, pageSize)
		if err != nil {
			return nil, wrap(err, "list followers")
		}
		return toUserSummaries(users), nil
	}
	ids, err := s.cache.FollowerPage(ctx, userID, page, pageSize, func(ctx context.Context) ([]uint64, error) {
		return s.store.Follows.FollowerIDs(ctx, userID)
	})
	if err != nil {
		return nil, wrap(err, "list followers")
	}
	return s.loadUsers(ctx, ids)
}

// loadUsers 用户行总是实时读取，保证 followerCnt 为当前值
func (s *relationshipService) loadUsers(ctx context.Context, ids []uint64) ([]UserSummary, error) {
	users, err := s.store.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, wrap(err, "load users")
	}
	if len(users) != len(ids) {
		logger.Debug("follow index references missing users", zap.Int("want", len(ids)), zap.Int("got", len(users)))
	}
	return toUserSummaries(users), nil
}
