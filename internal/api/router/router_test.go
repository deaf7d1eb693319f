package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/clipshare/config"
	"github.com/d60-Lab/clipshare/internal/api/handler"
	"github.com/d60-Lab/clipshare/internal/api/middleware"
	"github.com/d60-Lab/clipshare/internal/repository"
	"github.com/d60-Lab/clipshare/internal/service"
	"github.com/d60-Lab/clipshare/pkg/database"
	"github.com/d60-Lab/clipshare/pkg/probe"
	"github.com/d60-Lab/clipshare/pkg/storage"
	"github.com/d60-Lab/clipshare/pkg/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var dbSeq atomic.Int64

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t       *testing.T
	engine  *gin.Engine
	cookies map[string]*http.Cookie
}

func newServer(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, middleware.RegisterValidators())

	db, err := database.OpenMemory(fmt.Sprintf("router_%d", dbSeq.Add(1)))
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	store := repository.NewStore(db)
	media := storage.NewGateway(storage.NewMemory("http://media.test"))
	codec := token.NewCodec(testSecret)
	h := handler.New(handler.Deps{
		Auth:                 service.NewAuthService(store, codec, media),
		Users:                service.NewUserService(store, media, nil),
		Rel:                  service.NewRelationshipService(store, nil),
		Videos:               service.NewVideoService(store, media, probe.Fixed(42)),
		Comments:             service.NewCommentService(store),
		Likes:                service.NewLikeService(store),
		Files:                service.NewFileService(media),
		OAuthSuccessRedirect: "http://localhost:3000/auth/redirect",
	})
	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	return New(cfg, h, codec)
}

func newClient(t *testing.T, engine *gin.Engine) *client {
	return &client{t: t, engine: engine, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (c *client) json(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) multipart(method, path string, fields map[string]string, files map[string][]byte) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".bin")
		require.NoError(c.t, err)
		_, err = fw.Write(data)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func (c *client) signupAndLogin(nickname string) uint64 {
	c.t.Helper()
	w, env := c.multipart(http.MethodPost, "/auth/signup", map[string]string{
		"email": nickname + "@x.com", "password": "pw-" + nickname, "nickname": nickname,
	}, nil)
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(c.t, w.Header().Get("Location"))
	var u struct{ ID uint64 }
	require.NoError(c.t, json.Unmarshal(env.Data, &u))

	w, _ = c.json(http.MethodPost, "/auth/login", map[string]string{
		"email": nickname + "@x.com", "password": "pw-" + nickname,
	})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	return u.ID
}

func (c *client) uploadVideo(title string) uint64 {
	c.t.Helper()
	w, env := c.multipart(http.MethodPost, "/videos",
		map[string]string{"title": title}, map[string][]byte{"videoFile": []byte("frames")})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	var v service.VideoView
	require.NoError(c.t, json.Unmarshal(env.Data, &v))
	assert.Equal(c.t, fmt.Sprintf("/videos/%d", v.ID), w.Header().Get("Location"))
	return v.ID
}

func TestLogin_SetsTokenCookies(t *testing.T) {
	c := newClient(t, newServer(t))
	c.signupAndLogin("alice")

	access := c.cookies[middleware.AccessCookie]
	refresh := c.cookies[middleware.RefreshCookie]
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.Equal(t, int(token.DefaultAccessTTL.Seconds()), access.MaxAge)
	assert.Equal(t, int(token.DefaultRefreshTTL.Seconds()), refresh.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, access.SameSite)
	assert.Equal(t, "/", access.Path)

	w, env := c.json(http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me service.Me
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "alice", me.Nickname)
	assert.Equal(t, "local", me.Provider)
}

func TestLogin_BadCredentials(t *testing.T) {
	c := newClient(t, newServer(t))
	c.signupAndLogin("alice")
	c.cookies = map[string]*http.Cookie{}

	w, env := c.json(http.MethodPost, "/auth/login", map[string]string{"email": "alice@x.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusUnauthorized, env.Code)
	assert.Empty(t, c.cookies)
}

func TestSignup_DuplicateAndBlankFields(t *testing.T) {
	c := newClient(t, newServer(t))
	c.signupAndLogin("alice")

	w, _ := c.multipart(http.MethodPost, "/auth/signup", map[string]string{
		"email": "other@x.com", "password": "pw", "nickname": "alice",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = c.multipart(http.MethodPost, "/auth/signup", map[string]string{
		"email": "new@x.com", "password": "pw", "nickname": "   ",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoute_RequiresCookie(t *testing.T) {
	c := newClient(t, newServer(t))
	w, env := c.json(http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusUnauthorized, env.Code)
	assert.NotEmpty(t, env.Message)

	w, _ = c.json(http.MethodOptions, "/users/me", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	c := newClient(t, newServer(t))
	c.signupAndLogin("alice")
	oldRefresh := c.cookies[middleware.RefreshCookie].Value

	delete(c.cookies, middleware.AccessCookie)
	w, _ := c.json(http.MethodPost, "/auth/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, c.cookies[middleware.AccessCookie])
	assert.Equal(t, oldRefresh, c.cookies[middleware.RefreshCookie].Value, "refresh token is not rotated")

	w, _ = c.json(http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = c.json(http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, c.cookies, "both cookies cleared")

	c.cookies[middleware.RefreshCookie] = &http.Cookie{Name: middleware.RefreshCookie, Value: oldRefresh}
	w, _ = c.json(http.MethodPost, "/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "record removed on logout")
}

func TestVideoDetail_CountsEveryView(t *testing.T) {
	engine := newServer(t)
	owner := newClient(t, engine)
	owner.signupAndLogin("owner")
	id := owner.uploadVideo("Clip")

	anon := newClient(t, engine)
	for want := int64(1); want <= 2; want++ {
		w, env := anon.json(http.MethodGet, fmt.Sprintf("/videos/%d", id), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var v service.VideoView
		require.NoError(t, json.Unmarshal(env.Data, &v))
		assert.Equal(t, want, v.ViewCnt)
		assert.Equal(t, 42, v.Runtime)
		assert.Equal(t, "owner", v.Uploader.Nickname)
	}

	w, env := anon.json(http.MethodGet, "/videos/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, env.Code)
}

func TestLikeToggle_RoundTrip(t *testing.T) {
	engine := newServer(t)
	owner := newClient(t, engine)
	owner.signupAndLogin("owner")
	id := owner.uploadVideo("Clip")

	fan := newClient(t, engine)
	fan.signupAndLogin("fan")
	path := fmt.Sprintf("/videos/%d/likes", id)

	_, env := fan.json(http.MethodPost, path, nil)
	var res service.VideoLikeResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, service.VideoLikeResult{VideoID: id, IsLiked: true, LikeCount: 1}, res)

	_, env = fan.json(http.MethodGet, fmt.Sprintf("/videos/%d", id), nil)
	var v service.VideoView
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.True(t, v.LikedByCurrentUser, "principal attached on public route")

	_, env = fan.json(http.MethodPost, path, nil)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, service.VideoLikeResult{VideoID: id, IsLiked: false, LikeCount: 0}, res)

	w, _ := newClient(t, engine).json(http.MethodPost, path, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOwnershipAndErrorMapping(t *testing.T) {
	engine := newServer(t)
	owner := newClient(t, engine)
	ownerID := owner.signupAndLogin("owner")
	id := owner.uploadVideo("Clip")

	other := newClient(t, engine)
	other.signupAndLogin("other")

	w, env := other.multipart(http.MethodPut, fmt.Sprintf("/videos/%d", id), map[string]string{"title": "mine now"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, http.StatusForbidden, env.Code)

	w, _ = other.json(http.MethodDelete, fmt.Sprintf("/videos/%d", id), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = other.json(http.MethodPost, fmt.Sprintf("/follow/%d", ownerID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = other.json(http.MethodPost, fmt.Sprintf("/follow/%d", ownerID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = owner.json(http.MethodPost, fmt.Sprintf("/follow/%d", ownerID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = newClient(t, engine).json(http.MethodGet, fmt.Sprintf("/follow/followers/%d", ownerID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"nickname":"other"`)

	w, _ = owner.json(http.MethodDelete, fmt.Sprintf("/videos/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestComments_Flow(t *testing.T) {
	engine := newServer(t)
	c := newClient(t, engine)
	c.signupAndLogin("u")
	id := c.uploadVideo("Clip")
	base := fmt.Sprintf("/videos/%d/comments", id)

	w, env := c.json(http.MethodPost, base, map[string]any{"content": "top"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var top service.CommentView
	require.NoError(t, json.Unmarshal(env.Data, &top))

	w, _ = c.json(http.MethodPost, base, map[string]any{"content": "reply", "parentCommentId": top.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = c.json(http.MethodPost, base, map[string]any{"content": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = newClient(t, engine).json(http.MethodGet, fmt.Sprintf("%s/%d/replies", base, top.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var replies []service.CommentView
	require.NoError(t, json.Unmarshal(env.Data, &replies))
	require.Len(t, replies, 1)
	assert.Equal(t, "reply", replies[0].Content)

	w, _ = c.json(http.MethodDelete, fmt.Sprintf("%s/%d", base, top.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, env = c.json(http.MethodGet, fmt.Sprintf("/videos/%d", id), nil)
	var v service.VideoView
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, int64(0), v.CommentCnt)
}

func TestFileUpload_PublicAndValidated(t *testing.T) {
	c := newClient(t, newServer(t))
	w, env := c.multipart(http.MethodPost, "/api/files/upload/thumbnail", nil, map[string][]byte{"file": {1, 2}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var url string
	require.NoError(t, json.Unmarshal(env.Data, &url))
	assert.True(t, strings.HasPrefix(url, "http://media.test/thumbnails/"))

	w, _ = c.multipart(http.MethodPost, "/api/files/upload/banner", nil, map[string][]byte{"file": {1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	c := newClient(t, newServer(t))
	w, _ := c.json(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
