package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/d60-Lab/clipshare/config"
)

func TestParse_ProviderPayloads(t *testing.T) {
	pc := config.OAuthProviderConfig{ClientID: "id"}
	cases := []struct {
		name string
		p    Provider
		body string
		want Identity
	}{
		{
			name: "google",
			p:    NewGoogle(pc),
			body: `{"sub":"1099","email":"g@x.com","name":"Gee","picture":"http://img/g"}`,
			want: Identity{Provider: "google", ProviderID: "1099", Email: "g@x.com", Nickname: "Gee", AvatarURL: "http://img/g"},
		},
		{
			name: "kakao numeric id",
			p:    NewKakao(pc),
			body: `{"id":3141592653,"kakao_account":{"email":"k@x.com","profile":{"nickname":"Kay","profile_image_url":"http://img/k"}}}`,
			want: Identity{Provider: "kakao", ProviderID: "3141592653", Email: "k@x.com", Nickname: "Kay", AvatarURL: "http://img/k"},
		},
		{
			name: "kakao without email consent",
			p:    NewKakao(pc),
			body: `{"id":7,"kakao_account":{"profile":{"nickname":"Kay"}}}`,
			want: Identity{Provider: "kakao", ProviderID: "7", Nickname: "Kay"},
		},
		{
			name: "naver",
			p:    NewNaver(pc),
			body: `{"resultcode":"00","response":{"id":"abc","email":"n@x.com","nickname":"En","profile_image":"http://img/n"}}`,
			want: Identity{Provider: "naver", ProviderID: "abc", Email: "n@x.com", Nickname: "En", AvatarURL: "http://img/n"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.p.Parse([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_MissingIDFails(t *testing.T) {
	pc := config.OAuthProviderConfig{}
	for _, p := range []Provider{NewGoogle(pc), NewKakao(pc), NewNaver(pc)} {
		_, err := p.Parse([]byte(`{}`))
		assert.ErrorIs(t, err, ErrMissingID, p.Name())
	}
}

func TestFromConfig_SkipsUnconfigured(t *testing.T) {
	r := FromConfig(config.OAuthConfig{Providers: map[string]config.OAuthProviderConfig{
		"google": {ClientID: "g"},
		"kakao":  {},
		"naver":  {ClientID: "n"},
		"github": {ClientID: "x"},
	}})
	assert.Equal(t, []string{"google", "naver"}, r.Names())

	_, err := r.Get("kakao")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestAuthCodeURL_CarriesState(t *testing.T) {
	r := NewRegistry(NewGoogle(config.OAuthProviderConfig{ClientID: "cid", RedirectURL: "http://localhost:8080/login/oauth2/code/google"}))
	raw, err := r.AuthCodeURL("google", "st4te")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "st4te", u.Query().Get("state"))
	assert.Equal(t, "cid", u.Query().Get("client_id"))
}

func TestExchange_FetchesAndParsesUserInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "cid", r.PostForm.Get("client_id"), "kakao sends credentials in params")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "at", "token_type": "bearer", "expires_in": 3600,
		})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":42,"kakao_account":{"email":"k@x.com","profile":{"nickname":"Kay"}}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	k := NewKakao(config.OAuthProviderConfig{ClientID: "cid", ClientSecret: "sec"})
	k.SetEndpoints(oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}, srv.URL+"/me")
	r := NewRegistry(k).WithHTTPClient(srv.Client())

	id, tok, err := r.Exchange(context.Background(), "kakao", "the-code")
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, Identity{Provider: "kakao", ProviderID: "42", Email: "k@x.com", Nickname: "Kay"}, id)
}

func TestExchange_UserInfoErrorStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"bearer"}`))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	n := NewNaver(config.OAuthProviderConfig{ClientID: "cid"})
	n.SetEndpoints(oauth2.Endpoint{TokenURL: srv.URL + "/token"}, srv.URL+"/me")

	_, _, err := NewRegistry(n).WithHTTPClient(srv.Client()).Exchange(context.Background(), "naver", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
