package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/clipshare/pkg/response"
)

// Follow 关注用户
// @Summary 关注用户
// @Tags 关系链
// @Produce json
// @Param followeeId path int true "被关注者ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /follow/{followeeId} [post]
func (h *Handler) Follow(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	followee, ok := pathID(c, "followeeId")
	if !ok {
		return
	}
	if err := h.relService.Follow(c.Request.Context(), uid, followee); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Produce json
// @Param followeeId path int true "被关注者ID"
// @Success 200 {object} response.Response
// @Router /follow/{followeeId} [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	followee, ok := pathID(c, "followeeId")
	if !ok {
		return
	}
	if err := h.relService.Unfollow(c.Request.Context(), uid, followee); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Param userId path int true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /follow/followings/{userId} [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.relService.ListFollowing(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Param userId path int true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /follow/followers/{userId} [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.relService.ListFollowers(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}
