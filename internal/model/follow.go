package model

import "time"

// Follow 关注关系（A 关注 B）
type Follow struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	FollowerID uint64 `gorm:"not null;index:idx_follow_pair,unique"`
	FolloweeID uint64 `gorm:"not null;index:idx_follow_followee;index:idx_follow_pair,unique"`
	// idx_follow_pair = (follower_id, followee_id)
	CreatedAt time.Time `gorm:"index"`
}

func (Follow) TableName() string { return "user_follow" }
