// Package token issues and validates the HS256 access and refresh tokens.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 2 * time.Hour

	RoleUser = "ROLE_USER"

	KindAccess  = "access"
	KindRefresh = "refresh"
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("token invalid")
)

// Claims is the payload carried by both token kinds. Refresh tokens leave Role empty.
type Claims struct {
	ID        string `json:"id"`
	LoginName string `json:"loginName"`
	Role      string `json:"role,omitempty"`
	Kind      string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the numeric user id claim.
func (c *Claims) UserID() (uint64, error) {
	id, err := strconv.ParseUint(c.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id claim", ErrInvalid)
	}
	return id, nil
}

type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now for issuing and validation.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func WithTTL(access, refresh time.Duration) Option {
	return func(c *Codec) {
		if access > 0 {
			c.accessTTL = access
		}
		if refresh > 0 {
			c.refreshTTL = refresh
		}
	}
}

func NewCodec(secret string, opts ...Option) *Codec {
	c := &Codec{
		secret:     []byte(secret),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now is the codec's clock, shared with callers that stamp token expiry.
func (c *Codec) Now() time.Time { return c.now() }

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

func (c *Codec) IssueAccess(id uint64, loginName, role string) (string, error) {
	return c.issue(id, loginName, role, KindAccess, c.accessTTL)
}

func (c *Codec) IssueRefresh(id uint64, loginName string) (string, error) {
	return c.issue(id, loginName, "", KindRefresh, c.refreshTTL)
}

func (c *Codec) issue(id uint64, loginName, role, kind string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		ID:        strconv.FormatUint(id, 10),
		LoginName: loginName,
		Role:      role,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Parse validates signature and expiry. Expiry yields ErrExpired, every other
// failure ErrInvalid.
func (c *Codec) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalid
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !parsed.Valid || claims.ID == "" || claims.LoginName == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}

// ParseAccess is Parse restricted to access tokens.
func (c *Codec) ParseAccess(raw string) (*Claims, error) { return c.parseKind(raw, KindAccess) }

// ParseRefresh is Parse restricted to refresh tokens.
func (c *Codec) ParseRefresh(raw string) (*Claims, error) { return c.parseKind(raw, KindRefresh) }

func (c *Codec) parseKind(raw, kind string) (*Claims, error) {
	claims, err := c.Parse(raw)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: want %s token, got %q", ErrInvalid, kind, claims.Kind)
	}
	return claims, nil
}

// IsExpired reports whether a well-signed token is past its expiry.
// Malformed tokens are not "expired"; use Parse to tell them apart.
func (c *Codec) IsExpired(raw string) bool {
	_, err := c.Parse(raw)
	return errors.Is(err, ErrExpired)
}

func (c *Codec) ExtractID(raw string) (string, error) {
	claims, err := c.Parse(raw)
	if err != nil {
		return "", err
	}
	return claims.ID, nil
}

func (c *Codec) ExtractLoginName(raw string) (string, error) {
	claims, err := c.Parse(raw)
	if err != nil {
		return "", err
	}
	return claims.LoginName, nil
}

func (c *Codec) ExtractRole(raw string) (string, error) {
	claims, err := c.Parse(raw)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}
