package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time         { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestIssueAccess_ClaimsRoundTrip(t *testing.T) {
	clk := newClock()
	c := NewCodec(testSecret, WithClock(clk.Now))

	tok, err := c.IssueAccess(42, "normal_42", RoleUser)
	require.NoError(t, err)

	claims, err := c.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.ID)
	assert.Equal(t, "normal_42", claims.LoginName)
	assert.Equal(t, RoleUser, claims.Role)
	assert.Equal(t, clk.Now().Add(DefaultAccessTTL).Unix(), claims.ExpiresAt.Unix())

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestAccessToken_ExpiresAfterTTL(t *testing.T) {
	clk := newClock()
	c := NewCodec(testSecret, WithClock(clk.Now))

	tok, err := c.IssueAccess(1, "normal_1", RoleUser)
	require.NoError(t, err)
	assert.False(t, c.IsExpired(tok))

	clk.Advance(DefaultAccessTTL - time.Second)
	assert.False(t, c.IsExpired(tok))

	clk.Advance(2 * time.Second)
	assert.True(t, c.IsExpired(tok))
	_, err = c.Parse(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestRefreshToken_LongerTTLAndNoRole(t *testing.T) {
	clk := newClock()
	c := NewCodec(testSecret, WithClock(clk.Now))

	tok, err := c.IssueRefresh(7, "kakao_123")
	require.NoError(t, err)

	clk.Advance(time.Hour)
	role, err := c.ExtractRole(tok)
	require.NoError(t, err)
	assert.Empty(t, role)

	name, err := c.ExtractLoginName(tok)
	require.NoError(t, err)
	assert.Equal(t, "kakao_123", name)

	clk.Advance(DefaultRefreshTTL)
	assert.True(t, c.IsExpired(tok))
}

func TestParse_InvalidIsDistinctFromExpired(t *testing.T) {
	c := NewCodec(testSecret)
	other := NewCodec("ffffffffffffffffffffffffffffffff")

	forged, err := other.IssueAccess(1, "normal_1", RoleUser)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"wrong secret":   forged,
		"three segments": "a.b.c",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.Parse(raw)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.False(t, c.IsExpired(raw))
		})
	}
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	c := NewCodec(testSecret)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		ID: "1", LoginName: "normal_1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	raw, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = c.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestWithTTL(t *testing.T) {
	c := NewCodec(testSecret, WithTTL(time.Minute, 0))
	assert.Equal(t, time.Minute, c.AccessTTL())
	assert.Equal(t, DefaultRefreshTTL, c.RefreshTTL())
}

func TestParseKind(t *testing.T) {
	c := NewCodec(testSecret)
	access, err := c.IssueAccess(3, "normal_3", RoleUser)
	require.NoError(t, err)
	refresh, err := c.IssueRefresh(3, "normal_3")
	require.NoError(t, err)

	claims, err := c.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, KindAccess, claims.Kind)
	claims, err = c.ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, KindRefresh, claims.Kind)

	_, err = c.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = c.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrInvalid)
}
