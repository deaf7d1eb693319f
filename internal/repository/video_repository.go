package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/clipshare/internal/model"
)

// VideoSort 列表排序方式
type VideoSort string

const (
	SortLatest  VideoSort = "latest"
	SortPopular VideoSort = "popular"
)

type VideoRepository interface {
	Create(ctx context.Context, v *model.Video) error
	// UpdateMeta 只写元数据列，不覆盖计数
	UpdateMeta(ctx context.Context, v *model.Video) error
	FindByID(ctx context.Context, id uint64) (*model.Video, error)
	List(ctx context.Context, sort VideoSort) ([]*model.Video, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Video, error)
	ListByUsers(ctx context.Context, userIDs []uint64) ([]*model.Video, error)
	Search(ctx context.Context, keyword string) ([]*model.Video, error)
	IDsByUser(ctx context.Context, userID uint64) ([]uint64, error)
	IncrementView(ctx context.Context, id uint64) error
	// Lock 以空更新取得行锁，串行化同一视频上的计数重算
	Lock(ctx context.Context, id uint64) error
	SetLikeCnt(ctx context.Context, id uint64, n int64) error
	SetCommentCnt(ctx context.Context, id uint64, n int64) error
	Delete(ctx context.Context, ids ...uint64) error
}

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) VideoRepository { return &videoRepository{db: db} }

func (r *videoRepository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Uploader")
}

func (r *videoRepository) Create(ctx context.Context, v *model.Video) error {
	return r.db.WithContext(ctx).Omit("Uploader").Create(v).Error
}

func (r *videoRepository) UpdateMeta(ctx context.Context, v *model.Video) error {
	return r.db.WithContext(ctx).Model(v).
		Select("title", "description", "video_url", "thumbnail_url", "runtime", "updated_at").
		Updates(v).Error
}

func (r *videoRepository) FindByID(ctx context.Context, id uint64) (*model.Video, error) {
	var v model.Video
	if err := r.base(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *videoRepository) List(ctx context.Context, sort VideoSort) ([]*model.Video, error) {
	q := r.base(ctx)
	if sort == SortPopular {
		q = q.Order("like_cnt DESC").Order("id DESC")
	} else {
		q = q.Order("updated_at DESC").Order("id DESC")
	}
	var rows []*model.Video
	err := q.Find(&rows).Error
	return rows, err
}

func (r *videoRepository) ListByUser(ctx context.Context, userID uint64) ([]*model.Video, error) {
	var rows []*model.Video
	err := r.base(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r *videoRepository) ListByUsers(ctx context.Context, userIDs []uint64) ([]*model.Video, error) {
	if len(userIDs) == 0 {
		return []*model.Video{}, nil
	}
	var rows []*model.Video
	err := r.base(ctx).Where("user_id IN ?", userIDs).Order("created_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

// Search 标题或描述包含关键字（不区分大小写）
func (r *videoRepository) Search(ctx context.Context, keyword string) ([]*model.Video, error) {
	like := containsPattern(keyword)
	var rows []*model.Video
	err := r.base(ctx).
		Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", like, like).
		Order("updated_at DESC").Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *videoRepository) IDsByUser(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.Video{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

// IncrementView 直接原子自增，不修改 updated_at
func (r *videoRepository) IncrementView(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).
		UpdateColumn("view_cnt", gorm.Expr("view_cnt + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *videoRepository) Lock(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).
		UpdateColumn("like_cnt", gorm.Expr("like_cnt")).Error
}

func (r *videoRepository) SetLikeCnt(ctx context.Context, id uint64, n int64) error {
	return r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).UpdateColumn("like_cnt", n).Error
}

func (r *videoRepository) SetCommentCnt(ctx context.Context, id uint64, n int64) error {
	return r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).UpdateColumn("comment_cnt", n).Error
}

func (r *videoRepository) Delete(ctx context.Context, ids ...uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Video{}).Error
}
