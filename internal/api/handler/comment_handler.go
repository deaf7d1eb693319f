package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/clipshare/internal/api/middleware"
	"github.com/d60-Lab/clipshare/pkg/response"
)

type commentRequest struct {
	Content         string  `json:"content" binding:"required,notblank"`
	ParentCommentID *uint64 `json:"parentCommentId"`
}

type commentUpdateRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

// CreateComment 发表评论；parentCommentId 不为空时为回复
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Param id path int true "视频ID"
// @Param request body commentRequest true "评论内容"
// @Success 201 {object} response.Response{data=service.CommentView}
// @Failure 400 {object} response.Response
// @Router /videos/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	videoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.commentService.Create(c.Request.Context(), uid, videoID, req.Content, req.ParentCommentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "", view)
}

// ListComments 顶级评论，最新在前
// @Summary 评论列表
// @Tags 评论
// @Produce json
// @Param id path int true "视频ID"
// @Success 200 {object} response.Response{data=[]service.CommentView}
// @Router /videos/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	videoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.commentService.ListTopLevel(c.Request.Context(), videoID, middleware.ViewerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// ListReplies 某条评论的回复，最早在前
// @Summary 回复列表
// @Tags 评论
// @Produce json
// @Param id path int true "视频ID"
// @Param commentId path int true "父评论ID"
// @Success 200 {object} response.Response{data=[]service.CommentView}
// @Router /videos/{id}/comments/{commentId}/replies [get]
func (h *Handler) ListReplies(c *gin.Context) {
	videoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	parentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}
	list, err := h.commentService.ListReplies(c.Request.Context(), videoID, parentID, middleware.ViewerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// UpdateComment 仅作者可修改
// @Summary 修改评论
// @Tags 评论
// @Accept json
// @Produce json
// @Param id path int true "视频ID"
// @Param commentId path int true "评论ID"
// @Param request body commentUpdateRequest true "评论内容"
// @Success 200 {object} response.Response{data=service.CommentView}
// @Failure 403 {object} response.Response
// @Router /videos/{id}/comments/{commentId} [put]
func (h *Handler) UpdateComment(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	videoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}
	var req commentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.commentService.Update(c.Request.Context(), uid, videoID, commentID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// DeleteComment 删除顶级评论会同时删除其回复
// @Summary 删除评论
// @Tags 评论
// @Param id path int true "视频ID"
// @Param commentId path int true "评论ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Router /videos/{id}/comments/{commentId} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	videoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), uid, videoID, commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
