package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/clipshare/internal/api/middleware"
	"github.com/d60-Lab/clipshare/internal/service"
	"github.com/d60-Lab/clipshare/pkg/logger"
	"github.com/d60-Lab/clipshare/pkg/response"
)

type signupRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,notblank"`
	Nickname string `form:"nickname" json:"nickname" binding:"required,notblank,max=50"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authUser struct {
	ID        uint64 `json:"id"`
	Nickname  string `json:"nickname"`
	LoginName string `json:"loginName"`
}

// Signup 注册
// @Summary 注册（multipart，可选头像 profileImg）
// @Tags 认证
// @Accept multipart/form-data
// @Produce json
// @Param email formData string true "邮箱"
// @Param password formData string true "密码"
// @Param nickname formData string true "昵称"
// @Param profileImg formData file false "头像"
// @Success 200 {object} response.Response{data=authUser}
// @Failure 400 {object} response.Response
// @Router /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	avatar, err := formFile(c, "profileImg")
	if err != nil {
		response.BadRequest(c, "invalid profile image")
		return
	}
	u, err := h.authService.Signup(c.Request.Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
		Avatar:   avatar,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, authUser{ID: u.ID, Nickname: u.Nickname, LoginName: u.LoginName})
}

// Login 邮箱密码登录，成功后下发 AccessToken 与 RefreshToken Cookie
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response{data=authUser}
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	u, err := h.authService.Login(ctx, req.Email, req.Password)
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
	response.Success(c, authUser{ID: u.ID, Nickname: u.Nickname, LoginName: u.LoginName})
}

// Refresh 用 RefreshToken Cookie 换新的 AccessToken
// @Summary 刷新访问令牌
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	raw, _ := c.Cookie(middleware.RefreshCookie)
	access, err := h.authService.Refresh(c.Request.Context(), raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.cookies.set(c, middleware.AccessCookie, access, h.authService.AccessTTL())
	response.Success(c, nil)
}

// Logout 总是清除两个 Cookie
// @Summary 退出登录
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	raw, _ := c.Cookie(middleware.RefreshCookie)
	if err := h.authService.Logout(c.Request.Context(), raw); err != nil {
		logger.Warn("logout: failed to drop refresh token", zap.Error(err))
	}
	h.cookies.clearTokens(c)
	response.Success(c, nil)
}
