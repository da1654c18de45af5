package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"fairytale/internal/apperr"
	"fairytale/internal/model"
	"fairytale/internal/tools"
)

// handleStory 处理故事生成请求
func handleStory(writer tools.StoryWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.StoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBind(c, err)
			return
		}

		story, err := writer.Write(c.Request.Context(), req.Name, req.Theme)
		if err != nil {
			abort(c, apperr.Status(err, http.StatusBadGateway), "故事生成失败", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"story": story})
	}
}

// handleVoice 语音合成，以 base64 返回音频
func handleVoice(narrator tools.Narrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.VoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBind(c, err)
			return
		}

		speed := req.SpeedOrDefault()
		audio, err := narrator.Speech(c.Request.Context(), req.Text, req.Voice, speed)
		if err != nil {
			abort(c, apperr.Status(err, http.StatusBadGateway), "语音生成失败", err)
			return
		}
		c.JSON(http.StatusOK, model.VoiceResponse{
			AudioBase64: base64.StdEncoding.EncodeToString(audio),
			Voice:       req.Voice,
			Speed:       speed,
			Format:      "mp3",
		})
	}
}

// handleVoiceBinary 语音合成，直接返回 MP3
func handleVoiceBinary(narrator tools.Narrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.VoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBind(c, err)
			return
		}

		audio, err := narrator.Speech(c.Request.Context(), req.Text, req.Voice, req.SpeedOrDefault())
		if err != nil {
			abort(c, apperr.Status(err, http.StatusBadGateway), "语音生成失败", err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="voice.mp3"`)
		c.Data(http.StatusOK, "audio/mpeg", audio)
	}
}

// handleImage 根据故事生成插画
func handleImage(illustrator tools.Illustrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.TextRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBind(c, err)
			return
		}

		url, err := illustrator.Illustrate(c.Request.Context(), req.Text)
		if err != nil {
			abort(c, apperr.Status(err, http.StatusBadGateway), "图片生成失败", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"image_url": url})
	}
}
