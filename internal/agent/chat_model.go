package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"

	"fairytale/internal/config"
)

const (
	storyMaxTokens   = 4096
	storyTemperature = 0.5
)

// NewChatModel 按 LLM_PROVIDER 创建聊天模型
func NewChatModel(ctx context.Context, cfg *config.Config) (einomodel.ToolCallingChatModel, error) {
	if cfg.LLMProvider == config.ProviderArk {
		cm, err := NewArkChatModel(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return cm, nil
	}
	cm, err := NewOpenAIChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return cm, nil
}

// NewOpenAIChatModel 创建 OpenAI 聊天模型
func NewOpenAIChatModel(ctx context.Context, cfg *config.Config) (*openai.ChatModel, error) {
	maxTokens := storyMaxTokens
	temperature := float32(storyTemperature)
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return cm, nil
}

// NewArkChatModel 创建火山方舟聊天模型
func NewArkChatModel(ctx context.Context, cfg *config.Config) (*ark.ChatModel, error) {
	maxTokens := storyMaxTokens
	temperature := float32(storyTemperature)
	cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey:      cfg.ArkAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.ArkModel,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return cm, nil
}
