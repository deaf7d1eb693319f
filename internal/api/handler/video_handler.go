package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/clipshare/internal/api/middleware"
	"github.com/d60-Lab/clipshare/internal/service"
	"github.com/d60-Lab/clipshare/pkg/response"
)

// ListVideos 全部视频
// @Summary 视频列表
// @Tags 视频
// @Produce json
// @Param sortBy query string false "latest | popular" default(latest)
// @Success 200 {object} response.Response{data=[]service.VideoView}
// @Router /videos [get]
func (h *Handler) ListVideos(c *gin.Context) {
	sort := service.ParseSort(c.DefaultQuery("sortBy", "latest"))
	list, err := h.videoService.List(c.Request.Context(), sort, middleware.ViewerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// GetVideo 视频详情，每次访问播放数加一
// @Summary 视频详情
// @Tags 视频
// @Produce json
// @Param id path int true "视频ID"
// @Success 200 {object} response.Response{data=service.VideoView}
// @Failure 404 {object} response.Response
// @Router /videos/{id} [get]
func (h *Handler) GetVideo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.videoService.Get(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, v)
}

// SearchVideos 标题或描述模糊搜索
// @Summary 搜索视频
// @Tags 视频
// @Produce json
// @Param keyword query string true "关键词"
// @Success 200 {object} response.Response{data=[]service.VideoView}
// @Router /videos/search [get]
func (h *Handler) SearchVideos(c *gin.Context) {
	list, err := h.videoService.Search(c.Request.Context(), c.Query("keyword"), middleware.ViewerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// MyVideos 我上传的视频
// @Summary 我的视频
// @Tags 视频
// @Produce json
// @Success 200 {object} response.Response{data=[]service.VideoView}
// @Router /videos/my [get]
func (h *Handler) MyVideos(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.videoService.ListMine(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// FollowingVideos 关注的人上传的视频
// @Summary 关注动态
// @Tags 视频
// @Produce json
// @Success 200 {object} response.Response{data=[]service.VideoView}
// @Router /videos/following [get]
func (h *Handler) FollowingVideos(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.videoService.ListFollowing(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// CreateVideo 上传视频；未提供 runtime 时自动探测
// @Summary 上传视频
// @Tags 视频
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "标题"
// @Param description formData string false "描述"
// @Param runtime formData int false "时长（秒）"
// @Param videoFile formData file true "视频文件"
// @Param thumbnailFile formData file false "缩略图"
// @Success 201 {object} response.Response{data=service.VideoView}
// @Failure 400 {object} response.Response
// @Router /videos [post]
func (h *Handler) CreateVideo(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	runtime, err := optionalInt(c, "runtime")
	if err != nil {
		response.BadRequest(c, "runtime must be an integer")
		return
	}
	video, err := formFile(c, "videoFile")
	if err != nil {
		response.BadRequest(c, "invalid video file")
		return
	}
	thumb, err := formFile(c, "thumbnailFile")
	if err != nil {
		response.BadRequest(c, "invalid thumbnail file")
		return
	}
	v, err := h.videoService.Upload(c.Request.Context(), uid, service.UploadVideoInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Runtime:     runtime,
		Video:       video,
		Thumbnail:   thumb,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "/videos/"+uitoa(v.ID), v)
}

// UpdateVideo 修改视频，仅上传者可操作
// @Summary 修改视频
// @Tags 视频
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "视频ID"
// @Param title formData string false "标题"
// @Param description formData string false "描述"
// @Param runtime formData int false "时长（秒）"
// @Param videoFile formData file false "视频文件"
// @Param thumbnailFile formData file false "缩略图"
// @Success 200 {object} response.Response{data=service.VideoView}
// @Failure 403 {object} response.Response
// @Router /videos/{id} [put]
func (h *Handler) UpdateVideo(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	runtime, err := optionalInt(c, "runtime")
	if err != nil {
		response.BadRequest(c, "runtime must be an integer")
		return
	}
	video, err := formFile(c, "videoFile")
	if err != nil {
		response.BadRequest(c, "invalid video file")
		return
	}
	thumb, err := formFile(c, "thumbnailFile")
	if err != nil {
		response.BadRequest(c, "invalid thumbnail file")
		return
	}
	v, err := h.videoService.Update(c.Request.Context(), uid, id, service.UpdateVideoInput{
		Title:       optionalForm(c, "title"),
		Description: optionalForm(c, "description"),
		Runtime:     runtime,
		Video:       video,
		Thumbnail:   thumb,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, v)
}

// DeleteVideo 删除视频，仅上传者可操作
// @Summary 删除视频
// @Tags 视频
// @Param id path int true "视频ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Router /videos/{id} [delete]
func (h *Handler) DeleteVideo(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.videoService.Delete(c.Request.Context(), uid, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
