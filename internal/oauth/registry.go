package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/d60-Lab/clipshare/config"
)

var ErrUnknownProvider = errors.New("unknown oauth provider")

const maxUserInfoBytes = 1 << 20

// Registry resolves providers by name and performs the code exchange.
type Registry struct {
	providers map[string]Provider
	client    *http.Client
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{
		providers: make(map[string]Provider, len(providers)),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// FromConfig registers every known provider that has a client id configured.
func FromConfig(cfg config.OAuthConfig) *Registry {
	var ps []Provider
	for name, pc := range cfg.Providers {
		if pc.ClientID == "" {
			continue
		}
		switch strings.ToLower(name) {
		case "google":
			ps = append(ps, NewGoogle(pc))
		case "kakao":
			ps = append(ps, NewKakao(pc))
		case "naver":
			ps = append(ps, NewNaver(pc))
		}
	}
	return NewRegistry(ps...)
}

// WithHTTPClient replaces the client used for token and user-info calls.
func (r *Registry) WithHTTPClient(c *http.Client) *Registry {
	r.client = c
	return r
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) AuthCodeURL(name, state string) (string, error) {
	p, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return p.OAuth2().AuthCodeURL(state), nil
}

// Exchange trades an authorization code for a token and fetches the user.
func (r *Registry) Exchange(ctx context.Context, name, code string) (Identity, *oauth2.Token, error) {
	p, err := r.Get(name)
	if err != nil {
		return Identity{}, nil, err
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)

	tok, err := p.OAuth2().Exchange(ctx, code)
	if err != nil {
		return Identity{}, nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL(), nil)
	if err != nil {
		return Identity{}, nil, err
	}
	resp, err := p.OAuth2().Client(ctx, tok).Do(req)
	if err != nil {
		return Identity{}, nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfoBytes))
	if err != nil {
		return Identity{}, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return Identity{}, nil, fmt.Errorf("user info: status %d", resp.StatusCode)
	}

	id, err := p.Parse(body)
	if err != nil {
		return Identity{}, nil, fmt.Errorf("parse %s user info: %w", name, err)
	}
	return id, tok, nil
}
