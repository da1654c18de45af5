package agent

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"fairytale/internal/apperr"
)

const storyWriterSystem = "你是一位童话作家。"

// 占位符 {theme} {name} 由 FString 模板替换
const storyWriterUser = `请以「{theme}」为主题，写一篇以「{name}」为主人公的又长又美的童话。
主人公可以是各种小动物。请细致地描写人物、背景和情节，
用妈妈给孩子读睡前故事那样温柔亲切的语气来写。`

// StoryWriter 根据孩子的名字和主题生成睡前童话
type StoryWriter struct {
	runner compose.Runnable[map[string]any, *schema.Message]
	log    logrus.FieldLogger
}

// NewStoryWriter 编排 prompt -> model 图，构建时编译一次
func NewStoryWriter(ctx context.Context, cm einomodel.BaseChatModel, log logrus.FieldLogger) (*StoryWriter, error) {
	template := prompt.FromMessages(schema.FString,
		schema.SystemMessage(storyWriterSystem),
		schema.UserMessage(storyWriterUser),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, err
	}
	if err := graph.AddChatModelNode("model", cm); err != nil {
		return nil, err
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, err
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("story_writer"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile graph: %w", err)
	}
	return &StoryWriter{runner: runner, log: log}, nil
}

// Write 生成故事正文，模型输出原样返回
func (w *StoryWriter) Write(ctx context.Context, name, theme string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(theme) == "" {
		return "", fmt.Errorf("%w: name and theme are required", apperr.ErrValidation)
	}

	log := w.log.WithFields(logrus.Fields{"name": name, "theme": theme})
	msg, err := w.runner.Invoke(ctx, map[string]any{"name": name, "theme": theme})
	if err != nil {
		log.WithError(err).Error("故事生成失败")
		return "", fmt.Errorf("%w: %w", apperr.ErrUpstream, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		log.Error("模型返回了空故事")
		return "", fmt.Errorf("%w: empty story", apperr.ErrUpstream)
	}

	log.WithField("length", len([]rune(msg.Content))).Info("故事生成完成")
	return msg.Content, nil
}
