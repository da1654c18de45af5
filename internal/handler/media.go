package handler

import (
	"encoding/base64"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"fairytale/internal/apperr"
	"fairytale/internal/model"
	"fairytale/internal/tools"
)

const bwDownloadPrefix = "/download/bwimage/"

// handleBWImage 把插画转换为线稿，返回 base64 与下载地址
func handleBWImage(artist tools.LineArtist) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.TextRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBind(c, err)
			return
		}

		res, err := artist.ToLineDrawing(c.Request.Context(), strings.TrimSpace(req.Text), "")
		if err != nil {
			status := apperr.Status(err, http.StatusBadRequest)
			msg := "线稿转换失败"
			switch status {
			case http.StatusNotFound:
				msg = "图片文件不存在"
			case http.StatusBadRequest:
				msg = "无法读取图片"
			}
			abort(c, status, msg, err)
			return
		}

		name := filepath.Base(res.Path)
		c.JSON(http.StatusOK, gin.H{
			"image":     base64.StdEncoding.EncodeToString(res.PNG),
			"image_url": bwDownloadPrefix + name,
			"filename":  name,
		})
	}
}

// handleBWImageDownload 下载已生成的线稿
func handleBWImageDownload(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("filename")
		if !validFilename(name) {
			abort(c, http.StatusBadRequest, "无效的文件名", nil)
			return
		}

		path := filepath.Join(dir, name)
		fi, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && fi.IsDir()) {
			abort(c, http.StatusNotFound, "文件不存在", nil)
			return
		}
		if err != nil {
			abort(c, http.StatusInternalServerError, "读取文件失败", err)
			return
		}
		c.File(path)
	}
}

func validFilename(name string) bool {
	return name != "" &&
		name == filepath.Base(name) &&
		!strings.HasPrefix(name, ".") &&
		!strings.ContainsAny(name, `/\`)
}

// handleVideoCreate 图片 + 音频合成视频。管线内部失败以 success=false 返回
func handleVideoCreate(p Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.VideoCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, model.VideoCreateResponse{
				Message: "无效的请求格式",
				Error:   err.Error(),
			})
			return
		}

		res, err := p.ComposeVideo(c.Request.Context(), req.ImageURL, req.AudioURL)
		if err != nil {
			_ = c.Error(err)
			c.JSON(pipelineStatus(err), model.VideoCreateResponse{
				Message: "视频生成失败",
				Error:   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, model.VideoCreateResponse{
			Success:   true,
			VideoPath: res.VideoPath,
			Duration:  res.Duration,
			Message:   "视频生成完成",
		})
	}
}

// handleThumbnailCreate 截取视频缩略图
func handleThumbnailCreate(p Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.ThumbnailCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, model.ThumbnailCreateResponse{
				Message: "无效的请求格式",
				Error:   err.Error(),
			})
			return
		}

		path, err := p.ExtractThumbnail(c.Request.Context(), req.VideoURL)
		if err != nil {
			_ = c.Error(err)
			c.JSON(pipelineStatus(err), model.ThumbnailCreateResponse{
				Message: "缩略图生成失败",
				Error:   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, model.ThumbnailCreateResponse{
			Success:       true,
			ThumbnailPath: path,
			Message:       "缩略图生成完成",
		})
	}
}

// 请求本身不合法时返回 400，其余失败以 200 + success=false 表示
func pipelineStatus(err error) int {
	if errors.Is(err, apperr.ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// handleVideoStatus 报告视频管线是否可用
func handleVideoStatus(p Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, p.Status())
	}
}
