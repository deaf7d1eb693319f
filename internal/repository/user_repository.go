package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/clipshare/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	// UpdateProfile 只写资料列，计数列由 Adjust* 原子维护
	UpdateProfile(ctx context.Context, u *model.User) error
	SetLoginName(ctx context.Context, id uint64, loginName string) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByLoginName(ctx context.Context, loginName string) (*model.User, error)
	// excludeID 为 0 表示不排除任何用户
	EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error)
	NicknameTaken(ctx context.Context, nickname string, excludeID uint64) (bool, error)
	SearchByNickname(ctx context.Context, keyword string) ([]*model.User, error)
	AdjustFollowerCnt(ctx context.Context, id uint64, delta int) error
	AdjustVideoCnt(ctx context.Context, id uint64, delta int) error
	Delete(ctx context.Context, id uint64) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Model(u).
		Select("email", "nickname", "password", "introduce", "profile_img", "updated_at").
		Updates(u).Error
}

func (r *userRepository) SetLoginName(ctx context.Context, id uint64, loginName string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("login_name", loginName).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByIDs 按传入顺序返回，不存在的 ID 被跳过
func (r *userRepository) FindByIDs(ctx context.Context, ids []uint64) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	var rows []*model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.User, len(rows))
	for _, u := range rows {
		byID[u.ID] = u
	}
	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByLoginName(ctx context.Context, loginName string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("login_name = ?", loginName).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error) {
	return r.exists(ctx, "email = ?", email, excludeID)
}

func (r *userRepository) NicknameTaken(ctx context.Context, nickname string, excludeID uint64) (bool, error) {
	return r.exists(ctx, "nickname = ?", nickname, excludeID)
}

func (r *userRepository) exists(ctx context.Context, cond string, arg interface{}, excludeID uint64) (bool, error) {
	var cnt int64
	q := r.db.WithContext(ctx).Model(&model.User{}).Where(cond, arg)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *userRepository) SearchByNickname(ctx context.Context, keyword string) ([]*model.User, error) {
	var rows []*model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(nickname) LIKE ? ESCAPE '!'", containsPattern(keyword)).
		Order("nickname ASC").
		Find(&rows).Error
	return rows, err
}

func (r *userRepository) AdjustFollowerCnt(ctx context.Context, id uint64, delta int) error {
	return adjustCounter(r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id), "follower_cnt", delta)
}

func (r *userRepository) AdjustVideoCnt(ctx context.Context, id uint64, delta int) error {
	return adjustCounter(r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id), "video_cnt", delta)
}

func (r *userRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, id).Error
}

// containsPattern 小写子串匹配模式，转义 LIKE 通配符
func containsPattern(keyword string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
}

// 转义符用 !，反斜杠在 MySQL 字符串字面量里另有含义
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// adjustCounter 原子增减计数列，减少时以 0 为下限
func adjustCounter(q *gorm.DB, column string, delta int) error {
	switch {
	case delta > 0:
		return q.Update(column, gorm.Expr(column+" + ?", delta)).Error
	case delta < 0:
		return q.Where(column+" >= ?", -delta).Update(column, gorm.Expr(column+" - ?", -delta)).Error
	}
	return nil
}
