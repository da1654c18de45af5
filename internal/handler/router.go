// Package handler 定义 HTTP 路由与各接口的处理函数。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fairytale/internal/agent"
	"fairytale/internal/apperr"
	"fairytale/internal/model"
	"fairytale/internal/service"
	"fairytale/internal/tools"
)

const serviceName = "fairytale"

// MusicSearcher 曲库检索
type MusicSearcher interface {
	Search(ctx context.Context, theme string) ([]model.MusicTrack, error)
}

// VideoSearcher 视频平台检索
type VideoSearcher interface {
	Search(ctx context.Context, theme string) ([]model.VideoResult, error)
}

// Pipeline 视频合成管线
type Pipeline interface {
	tools.VideoComposer
	Status() service.PipelineStatus
}

// Assistant 绘本助手
type Assistant interface {
	Run(ctx context.Context, input string) (*agent.StorybookResult, error)
}

// Deps 路由依赖，由 main 组装
type Deps struct {
	Story       tools.StoryWriter
	Narrator    tools.Narrator
	Illustrator tools.Illustrator
	LineArtist  tools.LineArtist
	BWImageDir  string // 线稿下载目录
	Music       MusicSearcher
	Videos      VideoSearcher
	Pipeline    Pipeline
	Tools       *tools.Registry
	Assistant   Assistant
	Log         logrus.FieldLogger
}

// NewRouter 注册全部路由
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(d.Log), gin.Recovery())

	router.GET("/health", handleHealth(router))

	router.POST("/generate/story", handleStory(d.Story))
	router.POST("/generate/voice", handleVoice(d.Narrator))
	router.POST("/generate/voice/binary", handleVoiceBinary(d.Narrator))
	router.POST("/generate/image", handleImage(d.Illustrator))

	router.POST("/convert/bwimage", handleBWImage(d.LineArtist))
	router.GET("/download/bwimage/:filename", handleBWImageDownload(d.BWImageDir))

	router.POST("/search/url", handleMusicSearch(d.Music))
	router.POST("/search/video", handleVideoSearch(d.Videos))

	router.POST("/video/create-from-image-audio", handleVideoCreate(d.Pipeline))
	router.POST("/video/create-thumbnail", handleThumbnailCreate(d.Pipeline))
	router.GET("/video/status", handleVideoStatus(d.Pipeline))

	router.GET("/tools", handleToolList(d.Tools))
	router.POST("/tools/:name", handleToolRun(d.Tools))
	router.POST("/agent/storybook", handleStorybook(d.Assistant))

	return router
}

// requestLogger 用 logrus 记录每个请求
func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("请求失败")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("请求被拒绝")
		default:
			entry.Info("请求完成")
		}
	}
}

// handleHealth 健康检查，列出已注册的接口
func handleHealth(router *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		routes := router.Routes()
		endpoints := make([]string, 0, len(routes))
		for _, r := range routes {
			endpoints = append(endpoints, r.Method+" "+r.Path)
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   serviceName,
			"timestamp": time.Now().Format(time.RFC3339),
			"endpoints": endpoints,
		})
	}
}

// abort 记录错误并返回统一格式的错误响应
func abort(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	body := gin.H{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// abortBind 请求体绑定失败
func abortBind(c *gin.Context, err error) {
	abort(c, http.StatusBadRequest, "无效的请求格式", errors.Join(apperr.ErrValidation, err))
}
