package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/adk"
	einomodel "github.com/cloudwego/eino/components/model"
	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"fairytale/internal/apperr"
)

const storybookMaxIterations = 8

const storybookInstruction = `你是儿童绘本助手。根据家长的要求，先调用 story_generate 创作睡前故事，
再调用 image_generate 为故事生成一张插画。家长想要填色页时，把插画地址交给 bw_image_convert。
完成后用两三句话告诉家长生成了什么，并附上图片地址。不要编造工具没有返回的地址。`

// StorybookResult 一次绘本请求的结果
type StorybookResult struct {
	Output    string   `json:"output"`
	ToolsUsed []string `json:"tools_used"`
}

// Storybook 单轮的绘本助手：在一次请求内依次调用工具完成故事、插画和线稿
type Storybook struct {
	runner *adk.Runner
	log    logrus.FieldLogger
}

// NewStorybook 创建绘本助手
func NewStorybook(ctx context.Context, cm einomodel.ToolCallingChatModel, tools []einotool.BaseTool, log logrus.FieldLogger) (*Storybook, error) {
	a, err := adk.NewChatModelAgent(ctx, &adk.ChatModelAgentConfig{
		Name:        "StorybookAgent",
		Description: "根据家长的描述生成睡前故事、插画和填色线稿",
		Instruction: storybookInstruction,
		Model:       cm,
		ToolsConfig: adk.ToolsConfig{
			ToolsNodeConfig: compose.ToolsNodeConfig{Tools: tools},
		},
		MaxIterations: storybookMaxIterations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storybook agent: %w", err)
	}

	runner := adk.NewRunner(ctx, adk.RunnerConfig{Agent: a})
	return &Storybook{runner: runner, log: log}, nil
}

// Run 执行一次请求，返回助手的最终回复和调用过的工具
func (s *Storybook) Run(ctx context.Context, input string) (*StorybookResult, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%w: input is empty", apperr.ErrValidation)
	}

	res := &StorybookResult{ToolsUsed: []string{}}
	iter := s.runner.Query(ctx, input)
	for {
		event, ok := iter.Next()
		if !ok {
			break
		}
		if event.Err != nil {
			s.log.WithError(event.Err).Error("绘本助手执行失败")
			return nil, fmt.Errorf("%w: %w", apperr.ErrUpstream, event.Err)
		}
		if event.Output == nil || event.Output.MessageOutput == nil {
			continue
		}

		mo := event.Output.MessageOutput
		msg, err := mo.GetMessage()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperr.ErrUpstream, err)
		}
		switch mo.Role {
		case schema.Tool:
			res.ToolsUsed = append(res.ToolsUsed, mo.ToolName)
			s.log.WithField("tool", mo.ToolName).Debug("工具调用完成")
		case schema.Assistant:
			if msg != nil && strings.TrimSpace(msg.Content) != "" {
				res.Output = msg.Content
			}
		}
	}

	if res.Output == "" {
		return nil, fmt.Errorf("%w: agent produced no answer", apperr.ErrUpstream)
	}
	s.log.WithField("tools", res.ToolsUsed).Info("绘本助手完成")
	return res, nil
}
