// Package oauth normalizes third-party login payloads and runs the
// authorization-code exchange.
package oauth

import (
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/oauth2"

	"github.com/d60-Lab/clipshare/config"
)

var ErrMissingID = errors.New("provider payload has no user id")

// Identity is a provider user reduced to the fields the user directory needs.
type Identity struct {
	Provider   string
	ProviderID string
	Email      string
	Nickname   string
	AvatarURL  string
}

// Provider is one login variant. Adding a provider means adding a type.
type Provider interface {
	Name() string
	OAuth2() *oauth2.Config
	UserInfoURL() string
	Parse(body []byte) (Identity, error)
}

type base struct {
	cfg         oauth2.Config
	userInfoURL string
}

func (b *base) OAuth2() *oauth2.Config { return &b.cfg }
func (b *base) UserInfoURL() string    { return b.userInfoURL }

// SetEndpoints points the provider elsewhere, e.g. at a test server.
func (b *base) SetEndpoints(ep oauth2.Endpoint, userInfoURL string) {
	ep.AuthStyle = b.cfg.Endpoint.AuthStyle
	b.cfg.Endpoint = ep
	b.userInfoURL = userInfoURL
}

func newBase(pc config.OAuthProviderConfig, ep oauth2.Endpoint, userInfoURL string, defaultScopes []string) base {
	scopes := pc.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	return base{
		cfg: oauth2.Config{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			RedirectURL:  pc.RedirectURL,
			Scopes:       scopes,
			Endpoint:     ep,
		},
		userInfoURL: userInfoURL,
	}
}

type Google struct{ base }

func NewGoogle(pc config.OAuthProviderConfig) *Google {
	return &Google{newBase(pc, oauth2.Endpoint{
		AuthURL:  "https://accounts.google.com/o/oauth2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
	}, "https://www.googleapis.com/oauth2/v3/userinfo", []string{"openid", "profile", "email"})}
}

func (*Google) Name() string { return "google" }

func (*Google) Parse(body []byte) (Identity, error) {
	var p struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return Identity{}, err
	}
	return identity("google", p.Sub, p.Email, p.Name, p.Picture)
}

type Kakao struct{ base }

func NewKakao(pc config.OAuthProviderConfig) *Kakao {
	return &Kakao{newBase(pc, oauth2.Endpoint{
		AuthURL:   "https://kauth.kakao.com/oauth/authorize",
		TokenURL:  "https://kauth.kakao.com/oauth/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, "https://kapi.kakao.com/v2/user/me", []string{"profile_nickname", "profile_image", "account_email"})}
}

func (*Kakao) Name() string { return "kakao" }

func (*Kakao) Parse(body []byte) (Identity, error) {
	var p struct {
		ID      json.Number `json:"id"`
		Account struct {
			Email   string `json:"email"`
			Profile struct {
				Nickname        string `json:"nickname"`
				ProfileImageURL string `json:"profile_image_url"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return Identity{}, err
	}
	return identity("kakao", p.ID.String(), p.Account.Email, p.Account.Profile.Nickname, p.Account.Profile.ProfileImageURL)
}

type Naver struct{ base }

func NewNaver(pc config.OAuthProviderConfig) *Naver {
	return &Naver{newBase(pc, oauth2.Endpoint{
		AuthURL:   "https://nid.naver.com/oauth2.0/authorize",
		TokenURL:  "https://nid.naver.com/oauth2.0/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, "https://openapi.naver.com/v1/nid/me", nil)}
}

func (*Naver) Name() string { return "naver" }

func (*Naver) Parse(body []byte) (Identity, error) {
	var p struct {
		Response struct {
			ID           string `json:"id"`
			Email        string `json:"email"`
			Nickname     string `json:"nickname"`
			ProfileImage string `json:"profile_image"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return Identity{}, err
	}
	r := p.Response
	return identity("naver", r.ID, r.Email, r.Nickname, r.ProfileImage)
}

func identity(provider, id, email, nickname, avatar string) (Identity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Identity{}, ErrMissingID
	}
	return Identity{
		Provider:   provider,
		ProviderID: id,
		Email:      strings.TrimSpace(email),
		Nickname:   strings.TrimSpace(nickname),
		AvatarURL:  avatar,
	}, nil
}
