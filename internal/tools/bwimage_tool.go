package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"fairytale/internal/apperr"
)

// BWImageTool 把插画转换为填色线稿
type BWImageTool struct {
	artist LineArtist
}

// BWImageToolArgs 线稿转换请求参数
type BWImageToolArgs struct {
	Text string `json:"text"` // 图片URL或本地路径
}

// BWImageToolResp 线稿转换响应
type BWImageToolResp struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// NewBWImageTool 创建线稿转换工具实例
func NewBWImageTool(artist LineArtist) *BWImageTool {
	return &BWImageTool{artist: artist}
}

func (t *BWImageTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"text": {Type: schema.String, Required: true, Desc: "插画的URL或本地路径"},
	}
	return &schema.ToolInfo{
		Name:        "bw_image_convert",
		Desc:        "把彩色插画转换为白底黑线的填色线稿PNG",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

func (t *BWImageTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var args BWImageToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	if args.Text == "" {
		return "", fmt.Errorf("%w: text required", apperr.ErrValidation)
	}

	res, err := t.artist.ToLineDrawing(ctx, args.Text, "")
	if err != nil {
		return "", err
	}
	return marshal(BWImageToolResp{Path: res.Path, Filename: filepath.Base(res.Path)})
}

var _ einotool.InvokableTool = (*BWImageTool)(nil)
