package model

import (
	"fmt"
	"time"
)

// User 账号；本地注册的账号有邮箱和密码，仅社交登录的账号两者可为空
type User struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email       *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Password    *string   `gorm:"size:100" json:"-"`
	Nickname    string    `gorm:"size:50;not null;uniqueIndex" json:"nickname"`
	LoginName   string    `gorm:"size:255;index" json:"loginName"`
	ProfileImg  string    `gorm:"size:1024" json:"profileImg"`
	FollowerCnt int64     `gorm:"not null;default:0" json:"followerCnt"`
	VideoCnt    int64     `gorm:"not null;default:0" json:"videoCnt"`
	Introduce   string    `gorm:"type:text" json:"introduce"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// LocalLoginName 本地账号的登录名，依赖自增 ID
func LocalLoginName(id uint64) string { return fmt.Sprintf("normal_%d", id) }

func SocialLoginName(provider, providerID string) string {
	return provider + "_" + providerID
}

func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

func (u *User) HasPassword() bool { return u.Password != nil && *u.Password != "" }

// SocialAccount 第三方登录身份，(provider, provider_id) 唯一
type SocialAccount struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	UserID       uint64 `gorm:"not null;index"`
	Provider     string `gorm:"size:20;not null;uniqueIndex:ux_social_provider"`
	ProviderID   string `gorm:"size:255;not null;uniqueIndex:ux_social_provider"`
	AccessToken  string `gorm:"type:text"`
	RefreshToken string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SocialAccount) TableName() string { return "social_accounts" }

// RefreshToken 每个用户只保留一条当前有效的刷新令牌
type RefreshToken struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"not null;uniqueIndex"`
	Token     string    `gorm:"size:512;not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (RefreshToken) TableName() string { return "tokens" }
