package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/clipshare/internal/model"
)

type SocialAccountRepository interface {
	Create(ctx context.Context, a *model.SocialAccount) error
	FindByProvider(ctx context.Context, provider, providerID string) (*model.SocialAccount, error)
	FindByUserID(ctx context.Context, userID uint64) (*model.SocialAccount, error)
	DeleteByUserID(ctx context.Context, userID uint64) error
}

type socialAccountRepository struct{ db *gorm.DB }

func NewSocialAccountRepository(db *gorm.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

func (r *socialAccountRepository) Create(ctx context.Context, a *model.SocialAccount) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *socialAccountRepository) FindByProvider(ctx context.Context, provider, providerID string) (*model.SocialAccount, error) {
	var a model.SocialAccount
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *socialAccountRepository) FindByUserID(ctx context.Context, userID uint64) (*model.SocialAccount, error) {
	var a model.SocialAccount
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *socialAccountRepository) DeleteByUserID(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.SocialAccount{}).Error
}
