package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/clipshare/internal/oauth"
	"github.com/d60-Lab/clipshare/pkg/logger"
	"github.com/d60-Lab/clipshare/pkg/response"
)

const oauthStateTTL = 10 * time.Minute

// OAuthAuthorize 跳转到第三方授权页
// @Summary 社交登录跳转
// @Tags 认证
// @Param provider path string true "google | kakao | naver"
// @Success 302
// @Failure 404 {object} response.Response
// @Router /oauth2/authorization/{provider} [get]
func (h *Handler) OAuthAuthorize(c *gin.Context) {
	if h.oauth == nil {
		response.NotFound(c, "social login is not configured")
		return
	}
	state := uuid.NewString()
	target, err := h.oauth.AuthCodeURL(c.Param("provider"), state)
	if errors.Is(err, oauth.ErrUnknownProvider) {
		response.NotFound(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	h.cookies.setState(c, state, oauthStateTTL)
	c.Redirect(http.StatusFound, target)
}

// OAuthCallback 授权回调：校验 state、换取令牌、登录或注册，最后跳回前端
// @Summary 社交登录回调
// @Tags 认证
// @Param provider path string true "google | kakao | naver"
// @Param code query string true "授权码"
// @Param state query string true "state"
// @Success 302
// @Failure 401 {object} response.Response
// @Router /login/oauth2/code/{provider} [get]
func (h *Handler) OAuthCallback(c *gin.Context) {
	if h.oauth == nil {
		response.NotFound(c, "social login is not configured")
		return
	}
	provider := c.Param("provider")
	want, _ := c.Cookie(oauthStateCookie)
	h.cookies.setState(c, "", 0)
	if want == "" || c.Query("state") != want {
		response.Unauthorized(c, "oauth state mismatch")
		return
	}
	if e := c.Query("error"); e != "" {
		h.redirectWithError(c, e)
		return
	}
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "missing authorization code")
		return
	}

	ctx := c.Request.Context()
	id, tok, err := h.oauth.Exchange(ctx, provider, code)
	if errors.Is(err, oauth.ErrUnknownProvider) {
		response.NotFound(c, err.Error())
		return
	}
	if err != nil {
		logger.Warn("oauth exchange failed", zap.String("provider", provider), zap.Error(err))
		response.Unauthorized(c, "social login failed")
		return
	}
	u, err := h.authService.OAuthLogin(ctx, id, tok)
	if err != nil {
		response.Error(c, err)
		return
	}
	pair, err := h.authService.IssueTokens(ctx, u)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.cookies.setTokens(c, pair.Access, pair.AccessTTL, pair.Refresh, pair.RefreshTTL)
	logger.Info("oauth login", zap.String("provider", provider), zap.Uint64("user_id", u.ID))
	c.Redirect(http.StatusFound, h.oauthRedirectTo)
}

func (h *Handler) redirectWithError(c *gin.Context, reason string) {
	target, err := url.Parse(h.oauthRedirectTo)
	if err != nil {
		response.Unauthorized(c, "social login failed")
		return
	}
	q := target.Query()
	q.Set("error", reason)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}
