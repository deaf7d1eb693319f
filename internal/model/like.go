package model

import "time"

// VideoLike 点赞账本行：每个 (user, video) 一行，只翻转 liked，不删除
type VideoLike struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;index:ux_video_like,unique"`
	VideoID   uint64 `gorm:"not null;index:ux_video_like,unique;index:idx_video_like_target"`
	Liked     bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (VideoLike) TableName() string { return "video_likes" }

type CommentLike struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;index:ux_comment_like,unique"`
	CommentID uint64 `gorm:"not null;index:ux_comment_like,unique;index:idx_comment_like_target"`
	Liked     bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CommentLike) TableName() string { return "comment_likes" }

// All 需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&User{}, &SocialAccount{}, &RefreshToken{},
		&Video{}, &Comment{}, &VideoLike{}, &CommentLike{},
		&Follow{},
	}
}
