package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/clipshare/internal/api/middleware"
	"github.com/d60-Lab/clipshare/internal/service"
	"github.com/d60-Lab/clipshare/pkg/response"
)

// Me 当前用户信息
// @Summary 我的信息
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response{data=service.Me}
// @Failure 401 {object} response.Response
// @Router /users/me [get]
func (h *Handler) Me(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	me, err := h.userService.Me(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, me)
}

// UpdateMe 修改资料；修改密码需同时提供 currentPassword 与 newPassword
// @Summary 修改我的信息
// @Tags 用户
// @Accept multipart/form-data
// @Produce json
// @Param email formData string false "邮箱"
// @Param nickname formData string false "昵称"
// @Param introduce formData string false "简介"
// @Param currentPassword formData string false "当前密码"
// @Param newPassword formData string false "新密码"
// @Param profileImg formData file false "头像"
// @Success 200 {object} response.Response{data=service.Me}
// @Failure 400 {object} response.Response
// @Router /users/me [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	avatar, err := formFile(c, "profileImg")
	if err != nil {
		response.BadRequest(c, "invalid profile image")
		return
	}
	in := service.UpdateProfileInput{
		Email:           optionalForm(c, "email"),
		Nickname:        optionalForm(c, "nickname"),
		Introduce:       optionalForm(c, "introduce"),
		Avatar:          avatar,
		CurrentPassword: c.PostForm("currentPassword"),
		NewPassword:     c.PostForm("newPassword"),
	}
	me, err := h.userService.UpdateMe(c.Request.Context(), uid, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, me)
}

// DeleteMe 注销账号并清除 Cookie
// @Summary 注销账号
// @Tags 用户
// @Success 204
// @Failure 401 {object} response.Response
// @Router /users/me [delete]
func (h *Handler) DeleteMe(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.userService.DeleteMe(c.Request.Context(), uid); err != nil {
		response.Error(c, err)
		return
	}
	h.cookies.clearTokens(c)
	response.NoContent(c)
}

// SearchUsers 按昵称搜索
// @Summary 搜索用户
// @Tags 用户
// @Produce json
// @Param keyword query string true "关键词"
// @Success 200 {object} response.Response{data=[]service.UserSummary}
// @Router /users/search [get]
func (h *Handler) SearchUsers(c *gin.Context) {
	list, err := h.userService.Search(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// Profile 用户主页
// @Summary 用户主页
// @Tags 用户
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=service.Profile}
// @Failure 404 {object} response.Response
// @Router /users/{id}/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.userService.Profile(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}
