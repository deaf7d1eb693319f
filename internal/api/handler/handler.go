package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/clipshare/internal/api/middleware"
	"github.com/d60-Lab/clipshare/internal/oauth"
	"github.com/d60-Lab/clipshare/internal/service"
	"github.com/d60-Lab/clipshare/pkg/response"
	"github.com/d60-Lab/clipshare/pkg/storage"
)

// Deps 处理器依赖
type Deps struct {
	Auth     service.AuthService
	Users    service.UserService
	Rel      service.RelationshipService
	Videos   service.VideoService
	Comments service.CommentService
	Likes    service.LikeService
	Files    service.FileService
	OAuth    *oauth.Registry
	// Ping 健康检查，通常为数据库 Ping
	Ping func(ctx context.Context) error

	SecureCookies        bool
	OAuthSuccessRedirect string
}

type Handler struct {
	authService     service.AuthService
	userService     service.UserService
	relService      service.RelationshipService
	videoService    service.VideoService
	commentService  service.CommentService
	likeService     service.LikeService
	fileService     service.FileService
	oauth           *oauth.Registry
	ping            func(ctx context.Context) error
	cookies         cookieWriter
	oauthRedirectTo string
}

func New(d Deps) *Handler {
	return &Handler{
		authService:     d.Auth,
		userService:     d.Users,
		relService:      d.Rel,
		videoService:    d.Videos,
		commentService:  d.Comments,
		likeService:     d.Likes,
		fileService:     d.Files,
		oauth:           d.OAuth,
		ping:            d.Ping,
		cookies:         cookieWriter{secure: d.SecureCookies},
		oauthRedirectTo: d.OAuthSuccessRedirect,
	}
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			response.InternalError(c, err)
			return
		}
	}
	response.Success(c, gin.H{"status": "ok"})
}

// pathID 解析路径中的数字 ID，失败时直接写出 400
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// currentUser 受保护路由上由认证中间件保证存在
func currentUser(c *gin.Context) (uint64, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return 0, false
	}
	return p.UserID, true
}

// formFile 未上传该字段时返回 nil
func formFile(c *gin.Context, field string) (*storage.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return storage.FromFileHeader(fh), nil
}

// optionalForm 区分字段缺失与空字符串
func optionalForm(c *gin.Context, field string) *string {
	v, ok := c.GetPostForm(field)
	if !ok {
		return nil
	}
	return &v
}

func optionalInt(c *gin.Context, field string) (*int, error) {
	v, ok := c.GetPostForm(field)
	if !ok || v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func uitoa(n uint64) string { return strconv.FormatUint(n, 10) }
