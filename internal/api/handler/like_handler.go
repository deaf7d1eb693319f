package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/clipshare/pkg/response"
)

// ToggleVideoLike 点赞 / 取消点赞视频
// @Summary 视频点赞切换
// @Tags 点赞
// @Produce json
// @Param id path int true "视频ID"
// @Success 200 {object} response.Response{data=service.VideoLikeResult}
// @Failure 404 {object} response.Response
// @Router /videos/{id}/likes [post]
func (h *Handler) ToggleVideoLike(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.likeService.ToggleVideo(c.Request.Context(), uid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ToggleCommentLike 点赞 / 取消点赞评论
// @Summary 评论点赞切换
// @Tags 点赞
// @Produce json
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response{data=service.CommentLikeResult}
// @Failure 404 {object} response.Response
// @Router /comments/{id}/likes [post]
func (h *Handler) ToggleCommentLike(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.likeService.ToggleComment(c.Request.Context(), uid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// VideoLikedByMe 当前用户是否点赞了该视频
// @Summary 我是否点赞
// @Tags 点赞
// @Produce json
// @Param id path int true "视频ID"
// @Success 200 {object} response.Response
// @Router /videos/{id}/likes/me [get]
func (h *Handler) VideoLikedByMe(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	liked, err := h.likeService.IsVideoLiked(c.Request.Context(), uid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"videoId": id, "isLiked": liked})
}

// LikedComments 当前用户点赞过的顶级评论 ID
// @Summary 我点赞的评论
// @Tags 点赞
// @Produce json
// @Param id path int true "视频ID"
// @Success 200 {object} response.Response{data=[]int}
// @Router /videos/{id}/comments/liked [get]
func (h *Handler) LikedComments(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ids, err := h.commentService.LikedTopLevelIDs(c.Request.Context(), uid, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ids)
}
