package tools

import (
	"context"
	"encoding/json"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"fairytale/internal/apperr"
)

// ImageTool 根据故事正文生成插画
type ImageTool struct {
	illustrator Illustrator
}

// ImageToolArgs 插画生成请求参数
type ImageToolArgs struct {
	Text string `json:"text"` // 故事正文
}

// ImageToolResp 插画生成响应
type ImageToolResp struct {
	ImageURL string `json:"image_url"`
}

// NewImageTool 创建插画生成工具实例
func NewImageTool(illustrator Illustrator) *ImageTool {
	return &ImageTool{illustrator: illustrator}
}

func (t *ImageTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"text": {Type: schema.String, Required: true, Desc: "故事正文，取开头部分作为插画描述"},
	}
	return &schema.ToolInfo{
		Name:        "image_generate",
		Desc:        "为故事生成一张简洁、适合儿童的插画，返回图片URL",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

func (t *ImageTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var args ImageToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	if args.Text == "" {
		return "", fmt.Errorf("%w: text required", apperr.ErrValidation)
	}

	url, err := t.illustrator.Illustrate(ctx, args.Text)
	if err != nil {
		return "", err
	}
	return marshal(ImageToolResp{ImageURL: url})
}

var _ einotool.InvokableTool = (*ImageTool)(nil)
