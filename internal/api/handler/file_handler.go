package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/clipshare/pkg/response"
)

// UploadFile 直接上传文件，返回公开 URL
// @Summary 上传文件
// @Tags 文件
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "profile | video | thumbnail"
// @Param file formData file true "文件"
// @Success 200 {object} response.Response{data=string}
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/files/upload/{kind} [post]
func (h *Handler) UploadFile(c *gin.Context) {
	up, err := formFile(c, "file")
	if err != nil {
		response.BadRequest(c, "invalid file")
		return
	}
	url, err := h.fileService.Upload(c.Request.Context(), c.Param("kind"), up)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, url)
}
