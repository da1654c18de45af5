package tools

import (
	"context"
	"encoding/json"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"fairytale/internal/apperr"
)

// 实现eino框架的视频合成工具
type VideoTool struct {
	composer VideoComposer
}

// 视频合成请求参数
type VideoToolArgs struct {
	ImageURL   string `json:"image_url"`
	AudioURL   string `json:"audio_url"`
	StoryTitle string `json:"story_title"`
}

// 视频合成响应
type VideoToolResp struct {
	VideoPath string  `json:"video_path"`
	Duration  float64 `json:"duration"`
}

// NewVideoTool 创建视频合成工具实例
func NewVideoTool(composer VideoComposer) *VideoTool {
	return &VideoTool{composer: composer}
}

// Info 获取视频合成工具信息
func (t *VideoTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"image_url":   {Type: schema.String, Required: true, Desc: "插画URL"},
		"audio_url":   {Type: schema.String, Required: true, Desc: "朗读音频URL"},
		"story_title": {Type: schema.String, Required: false, Desc: "故事标题"},
	}
	return &schema.ToolInfo{
		Name:        "video_compose",
		Desc:        "用一张插画和一段朗读音频合成MP4视频，时长与音频一致",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

// InvokableRun 执行视频合成任务
func (t *VideoTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var args VideoToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	if args.ImageURL == "" || args.AudioURL == "" {
		return "", fmt.Errorf("%w: image_url and audio_url required", apperr.ErrValidation)
	}

	res, err := t.composer.ComposeVideo(ctx, args.ImageURL, args.AudioURL)
	if err != nil {
		return "", err
	}
	return marshal(VideoToolResp{VideoPath: res.VideoPath, Duration: res.Duration})
}

var _ einotool.InvokableTool = (*VideoTool)(nil)

// ThumbnailTool 截取视频缩略图
type ThumbnailTool struct {
	composer VideoComposer
}

// ThumbnailToolArgs 缩略图请求参数
type ThumbnailToolArgs struct {
	VideoURL string `json:"video_url"`
}

// ThumbnailToolResp 缩略图响应
type ThumbnailToolResp struct {
	ThumbnailPath string `json:"thumbnail_path"`
}

// NewThumbnailTool 创建缩略图工具实例
func NewThumbnailTool(composer VideoComposer) *ThumbnailTool {
	return &ThumbnailTool{composer: composer}
}

func (t *ThumbnailTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"video_url": {Type: schema.String, Required: true, Desc: "视频URL或本地路径"},
	}
	return &schema.ToolInfo{
		Name:        "video_thumbnail",
		Desc:        "截取视频开头的一帧作为JPEG缩略图",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

func (t *ThumbnailTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var args ThumbnailToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	if args.VideoURL == "" {
		return "", fmt.Errorf("%w: video_url required", apperr.ErrValidation)
	}

	path, err := t.composer.ExtractThumbnail(ctx, args.VideoURL)
	if err != nil {
		return "", err
	}
	return marshal(ThumbnailToolResp{ThumbnailPath: path})
}

var _ einotool.InvokableTool = (*ThumbnailTool)(nil)
