package model

import "time"

// Video 视频元数据；计数字段是子表的冗余，由服务层在事务内维护
type Video struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	UserID       uint64    `gorm:"not null;index"`
	Uploader     User      `gorm:"foreignKey:UserID"`
	Title        string    `gorm:"size:255;not null"`
	Description  string    `gorm:"type:text"`
	VideoURL     string    `gorm:"size:1024;not null"`
	ThumbnailURL string    `gorm:"size:1024"`
	Runtime      int       `gorm:"not null"`
	ViewCnt      int64     `gorm:"not null;default:0"`
	LikeCnt      int64     `gorm:"not null;default:0;index"`
	CommentCnt   int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time `gorm:"index"`
}

func (Video) TableName() string { return "videos" }

// Comment ParentCommentID 为空表示顶级评论，否则为回复（只允许两级）
type Comment struct {
	ID              uint64  `gorm:"primaryKey;autoIncrement"`
	UserID          uint64  `gorm:"not null;index"`
	User            User    `gorm:"foreignKey:UserID"`
	VideoID         uint64  `gorm:"not null;index:idx_comment_video"`
	ParentCommentID *uint64 `gorm:"index"`
	Content         string  `gorm:"type:text;not null"`
	LikeCnt         int64   `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Comment) TableName() string { return "comments" }

func (c *Comment) IsReply() bool { return c.ParentCommentID != nil }
