// Package openaiapi 封装 OpenAI 的语音合成与插画生成接口。
package openaiapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"fairytale/internal/apperr"
)

const (
	minSpeed = 0.25
	maxSpeed = 4.0

	illustrationRunes = 300
)

// Voices 可用的朗读音色
var Voices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer", "ash", "coral", "sage"}

// IsVoice 判断 v 是否为可用音色
func IsVoice(v string) bool {
	return slices.Contains(Voices, v)
}

// Config OpenAI 客户端配置
type Config struct {
	APIKey      string // 语音合成
	ImageAPIKey string // 插画生成，为空时使用 APIKey
	BaseURL     string // 为空时使用官方地址
	HTTPClient  *http.Client
}

// Client 语音合成与插画生成客户端
type Client struct {
	speech *openai.Client
	image  *openai.Client
	log    logrus.FieldLogger
}

// New 创建客户端
func New(cfg Config, log logrus.FieldLogger) *Client {
	imageKey := cfg.ImageAPIKey
	if imageKey == "" {
		imageKey = cfg.APIKey
	}
	return &Client{
		speech: openai.NewClientWithConfig(clientConfig(cfg.APIKey, cfg)),
		image:  openai.NewClientWithConfig(clientConfig(imageKey, cfg)),
		log:    log,
	}
}

func clientConfig(key string, cfg Config) openai.ClientConfig {
	c := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		c.HTTPClient = cfg.HTTPClient
	}
	return c
}

// Speech 把文本合成为 MP3，speed 超出接口允许范围时截断到 [0.25, 4.0]
func (c *Client) Speech(ctx context.Context, text, voice string, speed float64) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is empty", apperr.ErrValidation)
	}
	if !IsVoice(voice) {
		return nil, fmt.Errorf("%w: unknown voice %q", apperr.ErrValidation, voice)
	}
	if speed <= 0 {
		return nil, fmt.Errorf("%w: speed must be positive", apperr.ErrValidation)
	}
	speed = min(max(speed, minSpeed), maxSpeed)

	resp, err := c.speech.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          speed,
	})
	if err != nil {
		c.log.WithError(err).WithField("voice", voice).Error("语音合成失败")
		return nil, fmt.Errorf("%w: speech: %w", apperr.ErrUpstream, err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: read speech: %w", apperr.ErrUpstream, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty speech response", apperr.ErrUpstream)
	}
	c.log.WithFields(logrus.Fields{"voice": voice, "speed": speed, "bytes": len(audio)}).Info("语音合成完成")
	return audio, nil
}

// IllustrationPrompt 取故事前 300 个字符，换行压平后拼成插画提示词
func IllustrationPrompt(story string) string {
	base := []rune(story)
	if len(base) > illustrationRunes {
		base = base[:illustrationRunes]
	}
	flat := strings.ReplaceAll(string(base), "\n", " ")
	return "Make sure there is no text in the image. Minimal detail. " +
		"Please create a single, simple illustration that matches the content about " + flat +
		", in a child-friendly style."
}

// Illustrate 根据故事正文生成一张插画，返回图片 URL
func (c *Client) Illustrate(ctx context.Context, story string) (string, error) {
	if strings.TrimSpace(story) == "" {
		return "", fmt.Errorf("%w: story text is empty", apperr.ErrValidation)
	}

	resp, err := c.image.CreateImage(ctx, openai.ImageRequest{
		Prompt:         IllustrationPrompt(story),
		Model:          openai.CreateImageModelDallE3,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		Quality:        openai.CreateImageQualityStandard,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		c.log.WithError(err).Error("插画生成失败")
		return "", fmt.Errorf("%w: image: %w", apperr.ErrUpstream, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("%w: no image returned", apperr.ErrUpstream)
	}

	c.log.WithField("image_url", resp.Data[0].URL).Info("插画生成完成")
	return resp.Data[0].URL, nil
}
