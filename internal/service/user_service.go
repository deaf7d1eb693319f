package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/clipshare/internal/cache"
	"github.com/d60-Lab/clipshare/internal/model"
	"github.com/d60-Lab/clipshare/internal/repository"
	"github.com/d60-Lab/clipshare/pkg/apperr"
	"github.com/d60-Lab/clipshare/pkg/logger"
	"github.com/d60-Lab/clipshare/pkg/storage"
)

const providerLocal = "local"

// UpdateProfileInput nil 字段表示不修改
type UpdateProfileInput struct {
	Email           *string
	Nickname        *string
	Introduce       *string
	Avatar          *storage.Upload
	CurrentPassword string
	NewPassword     string
}

type UserService interface {
	Me(ctx context.Context, userID uint64) (*Me, error)
	UpdateMe(ctx context.Context, userID uint64, in UpdateProfileInput) (*Me, error)
	DeleteMe(ctx context.Context, userID uint64) error
	Search(ctx context.Context, keyword string) ([]UserSummary, error)
	Profile(ctx context.Context, userID, viewerID uint64) (*Profile, error)
}

type userService struct {
	store  *repository.Store
	media  MediaStore
	cache  *cache.FollowCache
	bcrypt int
}

func NewUserService(store *repository.Store, media MediaStore, fc *cache.FollowCache) UserService {
	return &userService{store: store, media: media, cache: fc, bcrypt: bcrypt.DefaultCost}
}

func (s *userService) Me(ctx context.Context, userID uint64) (*Me, error) {
	u, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "find user")
	}
	return s.toMe(ctx, u)
}

func (s *userService) toMe(ctx context.Context, u *model.User) (*Me, error) {
	provider := providerLocal
	acct, err := s.store.Socials.FindByUserID(ctx, u.ID)
	switch {
	case err == nil:
		provider = acct.Provider
	case !isNotFound(err):
		return nil, wrap(err, "find social account")
	}
	return &Me{
		ID:          u.ID,
		Email:       u.EmailValue(),
		Nickname:    u.Nickname,
		LoginName:   u.LoginName,
		ProfileImg:  u.ProfileImg,
		Introduce:   u.Introduce,
		FollowerCnt: u.FollowerCnt,
		VideoCnt:    u.VideoCnt,
		Provider:    provider,
		CreatedAt:   formatTime(u.CreatedAt),
	}, nil
}

func (s *userService) UpdateMe(ctx context.Context, userID uint64, in UpdateProfileInput) (*Me, error) {
	u, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "find user")
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" && email != u.EmailValue() {
			taken, err := s.store.Users.EmailTaken(ctx, email, u.ID)
			if err != nil {
				return nil, wrap(err, "check email")
			}
			if taken {
				return nil, ErrEmailTaken
			}
			u.Email = &email
		}
	}
	if in.Nickname != nil {
		nickname := strings.TrimSpace(*in.Nickname)
		if nickname != "" && nickname != u.Nickname {
			if len([]rune(nickname)) > nicknameMaxLen {
				return nil, apperr.Validation("nickname is too long")
			}
			taken, err := s.store.Users.NicknameTaken(ctx, nickname, u.ID)
			if err != nil {
				return nil, wrap(err, "check nickname")
			}
			if taken {
				return nil, ErrNicknameTaken
			}
			u.Nickname = nickname
		}
	}
	if in.Introduce != nil {
		u.Introduce = *in.Introduce
	}

	if in.NewPassword != "" {
		if !u.HasPassword() {
			return nil, apperr.Validation("social accounts cannot change password")
		}
		if bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(in.CurrentPassword)) != nil {
			return nil, apperr.Validation("current password does not match")
		}
		hash, err := hashPassword(in.NewPassword, s.bcrypt)
		if err != nil {
			return nil, wrap(err, "hash password")
		}
		u.Password = &hash
	}

	if !in.Avatar.Empty() {
		url, err := s.media.StoreProfileImage(ctx, in.Avatar)
		if err != nil {
			return nil, apperr.Internal("failed to upload profile image", err)
		}
		u.ProfileImg = url
	}

	if err := s.store.Users.UpdateProfile(ctx, u); err != nil {
		if isDuplicate(err) {
			return nil, apperr.Validation("email or nickname is already in use")
		}
		return nil, wrap(err, "save user")
	}
	if u, err = s.store.Users.FindByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "reload user")
	}
	return s.toMe(ctx, u)
}

// DeleteMe 删除账号：修正被关注者的粉丝数与受影响的点赞/评论计数，再删除用户的全部数据
func (s *userService) DeleteMe(ctx context.Context, userID uint64) error {
	var followers, followees []uint64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.FindByID(ctx, userID); err != nil {
			return notFoundOr(err, ErrUserNotFound, "find user")
		}

		var err error
		if followees, err = tx.Follows.FolloweeIDs(ctx, userID); err != nil {
			return err
		}
		if followers, err = tx.Follows.FollowerIDs(ctx, userID); err != nil {
			return err
		}
		for _, id := range followees {
			if err := tx.Users.AdjustFollowerCnt(ctx, id, -1); err != nil {
				return err
			}
		}
		if err := tx.Follows.DeleteByUser(ctx, userID); err != nil {
			return err
		}

		videoIDs, err := tx.Videos.IDsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := deleteVideos(ctx, tx, videoIDs); err != nil {
			return err
		}

		comments, err := tx.Comments.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, c := range comments {
			if err := deleteComment(ctx, tx, c); err != nil {
				return err
			}
		}

		likedVideos, err := tx.Likes.LikedVideoIDsByUser(ctx, userID)
		if err != nil {
			return err
		}
		likedComments, err := tx.Likes.LikedCommentIDsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.Likes.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		for _, id := range likedVideos {
			if _, err := recountVideoLikes(ctx, tx, id); err != nil {
				return err
			}
		}
		for _, id := range likedComments {
			if _, err := recountCommentLikes(ctx, tx, id); err != nil {
				return err
			}
		}

		if err := tx.Socials.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := tx.Tokens.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		return tx.Users.Delete(ctx, userID)
	})
	if err != nil {
		return wrap(err, "delete account")
	}

	s.cache.InvalidateUser(ctx, userID)
	for _, id := range followees {
		s.cache.Invalidate(ctx, userID, id)
	}
	for _, id := range followers {
		s.cache.Invalidate(ctx, id, userID)
	}
	logger.Info("account deleted", zap.Uint64("user_id", userID))
	return nil
}

func (s *userService) Search(ctx context.Context, keyword string) ([]UserSummary, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []UserSummary{}, nil
	}
	users, err := s.store.Users.SearchByNickname(ctx, keyword)
	if err != nil {
		return nil, wrap(err, "search users")
	}
	return toUserSummaries(users), nil
}

func (s *userService) Profile(ctx context.Context, userID, viewerID uint64) (*Profile, error) {
	u, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "find user")
	}
	videos, err := s.store.Videos.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrap(err, "list videos")
	}
	views, err := videoViews(ctx, s.store, videos, viewerID)
	if err != nil {
		return nil, err
	}

	following := false
	if viewerID != 0 && viewerID != userID {
		if following, err = s.store.Follows.Exists(ctx, viewerID, userID); err != nil {
			return nil, wrap(err, "check follow")
		}
	}
	return &Profile{
		User:      toUserSummary(u),
		Introduce: u.Introduce,
		VideoCnt:  u.VideoCnt,
		Following: following,
		Videos:    views,
	}, nil
}

// videoViews 附带当前用户的点赞状态
func videoViews(ctx context.Context, store *repository.Store, videos []*model.Video, viewerID uint64) ([]VideoView, error) {
	ids := make([]uint64, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	liked, err := store.Likes.LikedVideoSet(ctx, viewerID, ids)
	if err != nil {
		return nil, wrap(err, "load likes")
	}
	out := make([]VideoView, 0, len(videos))
	for _, v := range videos {
		out = append(out, toVideoView(v, liked[v.ID]))
	}
	return out, nil
}
