package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fairytale/internal/apperr"
	"fairytale/internal/model"
)

// handleMusicSearch 按主题检索摇篮曲
func handleMusicSearch(music MusicSearcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.ThemeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBind(c, err)
			return
		}

		tracks, err := music.Search(c.Request.Context(), req.Theme)
		if err != nil {
			abort(c, apperr.Status(err, http.StatusBadGateway), "音乐检索失败", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"music_results": tracks})
	}
}

// handleVideoSearch 按主题检索摇篮曲视频
func handleVideoSearch(videos VideoSearcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.ThemeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBind(c, err)
			return
		}

		results, err := videos.Search(c.Request.Context(), req.Theme)
		if err != nil {
			abort(c, apperr.Status(err, http.StatusBadGateway), "视频检索失败", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"video_results": results})
	}
}
