package tools

import (
	"context"
	"encoding/json"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"fairytale/internal/apperr"
)

// StoryTool 实现eino框架的故事生成工具
type StoryTool struct {
	writer StoryWriter
}

// StoryToolArgs 故事生成请求参数
type StoryToolArgs struct {
	Name  string `json:"name"`  // 主人公名字
	Theme string `json:"theme"` // 故事主题
}

// StoryToolResp 故事生成响应
type StoryToolResp struct {
	Story string `json:"story"`
}

// NewStoryTool 创建故事生成工具实例
func NewStoryTool(writer StoryWriter) *StoryTool {
	return &StoryTool{writer: writer}
}

// Info 获取故事生成工具信息
func (t *StoryTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"name":  {Type: schema.String, Required: true, Desc: "孩子的名字，作为故事主人公"},
		"theme": {Type: schema.String, Required: true, Desc: "故事主题"},
	}
	return &schema.ToolInfo{
		Name:        "story_generate",
		Desc:        "以孩子为主人公，按主题创作一篇温柔的睡前童话",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

// InvokableRun 执行故事生成任务
func (t *StoryTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var args StoryToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	if args.Name == "" || args.Theme == "" {
		return "", fmt.Errorf("%w: name and theme required", apperr.ErrValidation)
	}

	story, err := t.writer.Write(ctx, args.Name, args.Theme)
	if err != nil {
		return "", err
	}
	return marshal(StoryToolResp{Story: story})
}

// 确保StoryTool实现了einotool.InvokableTool接口
var _ einotool.InvokableTool = (*StoryTool)(nil)
