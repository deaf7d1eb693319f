package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/d60-Lab/clipshare/internal/model"
	"github.com/d60-Lab/clipshare/internal/oauth"
	"github.com/d60-Lab/clipshare/internal/repository"
	"github.com/d60-Lab/clipshare/pkg/apperr"
	"github.com/d60-Lab/clipshare/pkg/logger"
	"github.com/d60-Lab/clipshare/pkg/storage"
	"github.com/d60-Lab/clipshare/pkg/token"
)

const nicknameMaxLen = 50

type SignupInput struct {
	Email    string
	Password string
	Nickname string
	Avatar   *storage.Upload
}

// TokenPair 登录成功后下发的两个令牌
type TokenPair struct {
	Access     string
	Refresh    string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthService 注册、登录、令牌签发与刷新、社交登录
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	IssueTokens(ctx context.Context, u *model.User) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	OAuthLogin(ctx context.Context, id oauth.Identity, tok *oauth2.Token) (*model.User, error)
	AccessTTL() time.Duration
}

type authService struct {
	store  *repository.Store
	codec  *token.Codec
	media  MediaStore
	bcrypt int
}

func NewAuthService(store *repository.Store, codec *token.Codec, media MediaStore) AuthService {
	return &authService{store: store, codec: codec, media: media, bcrypt: bcrypt.DefaultCost}
}

func (s *authService) AccessTTL() time.Duration { return s.codec.AccessTTL() }

func hashPassword(raw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	email := strings.TrimSpace(in.Email)
	nickname := strings.TrimSpace(in.Nickname)
	if email == "" || strings.TrimSpace(in.Password) == "" || nickname == "" {
		return nil, apperr.Validation("email, password and nickname are required")
	}
	if len([]rune(nickname)) > nicknameMaxLen {
		return nil, apperr.Validation("nickname is too long")
	}

	if taken, err := s.store.Users.EmailTaken(ctx, email, 0); err != nil {
		return nil, wrap(err, "check email")
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := s.store.Users.NicknameTaken(ctx, nickname, 0); err != nil {
		return nil, wrap(err, "check nickname")
	} else if taken {
		return nil, ErrNicknameTaken
	}

	hash, err := hashPassword(in.Password, s.bcrypt)
	if err != nil {
		return nil, wrap(err, "hash password")
	}
	u := &model.User{Email: &email, Password: &hash, Nickname: nickname}

	if !in.Avatar.Empty() {
		url, err := s.media.StoreProfileImage(ctx, in.Avatar)
		if err != nil {
			return nil, apperr.Internal("failed to upload profile image", err)
		}
		u.ProfileImg = url
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Create(ctx, u); err != nil {
			return err
		}
		u.LoginName = model.LocalLoginName(u.ID)
		return tx.Users.SetLoginName(ctx, u.ID, u.LoginName)
	})
	if isDuplicate(err) {
		return nil, apperr.Validation("email or nickname is already in use")
	}
	if err != nil {
		return nil, wrap(err, "create user")
	}
	logger.Info("user signed up", zap.Uint64("user_id", u.ID))
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.store.Users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, notFoundOr(err, ErrBadCredentials, "find user")
	}
	if !u.HasPassword() {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

func (s *authService) IssueTokens(ctx context.Context, u *model.User) (*TokenPair, error) {
	access, err := s.codec.IssueAccess(u.ID, u.LoginName, token.RoleUser)
	if err != nil {
		return nil, wrap(err, "issue access token")
	}
	refresh, err := s.codec.IssueRefresh(u.ID, u.LoginName)
	if err != nil {
		return nil, wrap(err, "issue refresh token")
	}
	expiresAt := s.codec.Now().Add(s.codec.RefreshTTL())
	if err := s.store.Tokens.Save(ctx, u.ID, refresh, expiresAt); err != nil {
		return nil, wrap(err, "save refresh token")
	}
	return &TokenPair{
		Access:     access,
		Refresh:    refresh,
		AccessTTL:  s.codec.AccessTTL(),
		RefreshTTL: s.codec.RefreshTTL(),
	}, nil
}

// Refresh 校验刷新令牌与库中记录一致后签发新的访问令牌；刷新令牌本身不轮换
func (s *authService) Refresh(ctx context.Context, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", apperr.Unauthenticated("refresh token is missing")
	}
	claims, err := s.codec.ParseRefresh(raw)
	if errors.Is(err, token.ErrExpired) {
		return "", apperr.Unauthenticated("refresh token expired")
	}
	if err != nil {
		return "", apperr.Unauthenticated("invalid refresh token")
	}

	rec, err := s.store.Tokens.FindByToken(ctx, raw)
	if err != nil {
		return "", notFoundOr(err, apperr.Unauthenticated("refresh token is not recognized"), "find refresh token")
	}
	if !rec.ExpiresAt.After(s.codec.Now()) {
		return "", apperr.Unauthenticated("refresh token expired")
	}
	u, err := s.store.Users.FindByID(ctx, rec.UserID)
	if err != nil {
		return "", notFoundOr(err, apperr.Unauthenticated("refresh token is not recognized"), "find user")
	}
	if u.LoginName != claims.LoginName {
		return "", apperr.Unauthenticated("refresh token does not match user")
	}

	access, err := s.codec.IssueAccess(u.ID, u.LoginName, token.RoleUser)
	if err != nil {
		return "", wrap(err, "issue access token")
	}
	return access, nil
}

// Logout 令牌无效时静默成功，调用方总是清除 Cookie
func (s *authService) Logout(ctx context.Context, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	claims, err := s.codec.Parse(raw)
	if err != nil {
		return nil
	}
	u, err := s.store.Users.FindByLoginName(ctx, claims.LoginName)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return wrap(err, "find user")
	}
	return wrap(s.store.Tokens.DeleteByUserID(ctx, u.ID), "delete refresh token")
}

// OAuthLogin 已绑定则直接返回对应用户（不更新资料），否则新建用户与社交账号
func (s *authService) OAuthLogin(ctx context.Context, id oauth.Identity, tok *oauth2.Token) (*model.User, error) {
	if id.Provider == "" || id.ProviderID == "" {
		return nil, apperr.Validation("incomplete social identity")
	}
	u, err := s.findSocialUser(ctx, id)
	if err == nil || !isNotFound(err) {
		return u, wrap(err, "find social account")
	}

	var created *model.User
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		nickname, err := uniqueNickname(ctx, tx, id)
		if err != nil {
			return err
		}
		u := &model.User{
			Nickname:   nickname,
			LoginName:  model.SocialLoginName(id.Provider, id.ProviderID),
			ProfileImg: id.AvatarURL,
		}
		if id.Email != "" {
			taken, err := tx.Users.EmailTaken(ctx, id.Email, 0)
			if err != nil {
				return err
			}
			if !taken {
				email := id.Email
				u.Email = &email
			}
		}
		if err := tx.Users.Create(ctx, u); err != nil {
			return err
		}
		acct := &model.SocialAccount{UserID: u.ID, Provider: id.Provider, ProviderID: id.ProviderID}
		if tok != nil {
			acct.AccessToken = tok.AccessToken
			acct.RefreshToken = tok.RefreshToken
		}
		if err := tx.Socials.Create(ctx, acct); err != nil {
			return err
		}
		created = u
		return nil
	})
	if isDuplicate(err) {
		// 并发的首次登录已经建好了账号
		u, ferr := s.findSocialUser(ctx, id)
		return u, wrap(ferr, "find social account")
	}
	if err != nil {
		return nil, wrap(err, "create social user")
	}
	logger.Info("social user created",
		zap.Uint64("user_id", created.ID), zap.String("provider", id.Provider))
	return created, nil
}

func (s *authService) findSocialUser(ctx context.Context, id oauth.Identity) (*model.User, error) {
	acct, err := s.store.Socials.FindByProvider(ctx, id.Provider, id.ProviderID)
	if err != nil {
		return nil, err
	}
	return s.store.Users.FindByID(ctx, acct.UserID)
}

func uniqueNickname(ctx context.Context, tx *repository.Store, id oauth.Identity) (string, error) {
	base := id.Nickname
	if base == "" {
		base = id.Provider + "_user"
	}
	if r := []rune(base); len(r) > nicknameMaxLen-8 {
		base = string(r[:nicknameMaxLen-8])
	}
	candidate := base
	for i := 1; ; i++ {
		taken, err := tx.Users.NicknameTaken(ctx, candidate, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		if i > 1000 {
			return "", fmt.Errorf("no free nickname for %q", base)
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
}
