package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/clipshare/internal/model"
)

// Store 聚合全部仓储，Transaction 内拿到的是绑定同一事务的 Store
type Store struct {
	db *gorm.DB

	Users    UserRepository
	Socials  SocialAccountRepository
	Tokens   TokenRepository
	Videos   VideoRepository
	Comments CommentRepository
	Likes    LikeRepository
	Follows  FollowRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Socials:  NewSocialAccountRepository(db),
		Tokens:   NewTokenRepository(db),
		Videos:   NewVideoRepository(db),
		Comments: NewCommentRepository(db),
		Likes:    NewLikeRepository(db),
		Follows:  NewFollowRepository(db),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Transaction 在单个事务中执行 fn；fn 内只能使用 tx，不能再用外层 Store
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}
