package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/clipshare/internal/model"
)

type TokenRepository interface {
	// Save 按 user_id upsert：已有记录时整体替换令牌、过期时间和创建时间
	Save(ctx context.Context, userID uint64, token string, expiresAt time.Time) error
	FindByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	DeleteByUserID(ctx context.Context, userID uint64) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository { return &tokenRepository{db: db} }

func (r *tokenRepository) Save(ctx context.Context, userID uint64, token string, expiresAt time.Time) error {
	rec := &model.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "created_at"}),
	}).Create(rec).Error
}

func (r *tokenRepository) FindByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var rec model.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *tokenRepository) DeleteByUserID(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.RefreshToken{}).Error
}
