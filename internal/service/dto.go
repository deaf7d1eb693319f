package service

import (
	"time"

	"github.com/d60-Lab/clipshare/internal/model"
)

const timeLayout = "2006-01-02 15:04"

func formatTime(t time.Time) string { return t.Format(timeLayout) }

// UserSummary 列表、关注、上传者等场景的用户简要信息
type UserSummary struct {
	ID          uint64 `json:"id"`
	Nickname    string `json:"nickname"`
	ProfileImg  string `json:"profileImg"`
	FollowerCnt int64  `json:"followerCnt"`
}

func toUserSummary(u *model.User) UserSummary {
	return UserSummary{ID: u.ID, Nickname: u.Nickname, ProfileImg: u.ProfileImg, FollowerCnt: u.FollowerCnt}
}

func toUserSummaries(users []*model.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, toUserSummary(u))
	}
	return out
}

// Me 当前登录用户的完整信息
type Me struct {
	ID          uint64 `json:"id"`
	Email       string `json:"email"`
	Nickname    string `json:"nickname"`
	LoginName   string `json:"loginName"`
	ProfileImg  string `json:"profileImg"`
	Introduce   string `json:"introduce"`
	FollowerCnt int64  `json:"followerCnt"`
	VideoCnt    int64  `json:"videoCnt"`
	// Provider 本地账号为 local，否则为社交登录提供方
	Provider  string `json:"provider"`
	CreatedAt string `json:"createdAt"`
}

type Profile struct {
	User      UserSummary `json:"user"`
	Introduce string      `json:"introduce"`
	VideoCnt  int64       `json:"videoCnt"`
	Following bool        `json:"following"`
	Videos    []VideoView `json:"videos"`
}

type VideoView struct {
	ID                 uint64      `json:"id"`
	Uploader           UserSummary `json:"uploader"`
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	VideoURL           string      `json:"videoUrl"`
	ThumbnailURL       string      `json:"thumbnailUrl"`
	Runtime            int         `json:"runtime"`
	CreatedAt          string      `json:"createdAt"`
	UpdatedAt          string      `json:"updatedAt"`
	ViewCnt            int64       `json:"viewCnt"`
	LikeCnt            int64       `json:"likeCnt"`
	CommentCnt         int64       `json:"commentCnt"`
	LikedByCurrentUser bool        `json:"likedByCurrentUser"`
}

func toVideoView(v *model.Video, liked bool) VideoView {
	return VideoView{
		ID:                 v.ID,
		Uploader:           toUserSummary(&v.Uploader),
		Title:              v.Title,
		Description:        v.Description,
		VideoURL:           v.VideoURL,
		ThumbnailURL:       v.ThumbnailURL,
		Runtime:            v.Runtime,
		CreatedAt:          formatTime(v.CreatedAt),
		UpdatedAt:          formatTime(v.UpdatedAt),
		ViewCnt:            v.ViewCnt,
		LikeCnt:            v.LikeCnt,
		CommentCnt:         v.CommentCnt,
		LikedByCurrentUser: liked,
	}
}

type CommentView struct {
	ID              uint64  `json:"id"`
	UserID          uint64  `json:"userId"`
	Nickname        string  `json:"nickname"`
	ProfileImage    string  `json:"profileImage"`
	Content         string  `json:"content"`
	CreatedAt       string  `json:"createdAt"`
	ParentCommentID *uint64 `json:"parentCommentId"`
	IsLiked         bool    `json:"isLiked"`
	LikeCount       int64   `json:"likeCount"`
}

func toCommentView(c *model.Comment, liked bool) CommentView {
	return CommentView{
		ID:              c.ID,
		UserID:          c.UserID,
		Nickname:        c.User.Nickname,
		ProfileImage:    c.User.ProfileImg,
		Content:         c.Content,
		CreatedAt:       formatTime(c.CreatedAt),
		ParentCommentID: c.ParentCommentID,
		IsLiked:         liked,
		LikeCount:       c.LikeCnt,
	}
}

type VideoLikeResult struct {
	VideoID   uint64 `json:"videoId"`
	IsLiked   bool   `json:"isLiked"`
	LikeCount int64  `json:"likeCount"`
}

type CommentLikeResult struct {
	CommentID uint64 `json:"commentId"`
	IsLiked   bool   `json:"isLiked"`
	LikeCount int64  `json:"likeCount"`
}
