package component

import (
	"context"
	"fmt"

	arkext "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"tutor/internal/config"
)

const defaultArkBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

// NewChatModel 创建 ChatModel，modelName 为空时使用配置中的默认模型
// 支持 Provider: openai, azure, ark
func NewChatModel(ctx context.Context, cfg *config.AIConfig, modelName string) (model.BaseChatModel, error) {
	if modelName == "" {
		modelName = cfg.Model
	}

	switch cfg.Provider {
	case "openai", "":
		return newOpenAIChatModel(ctx, cfg, modelName, false)
	case "azure":
		return newOpenAIChatModel(ctx, cfg, modelName, true)
	case "ark":
		return newArkChatModel(ctx, cfg, modelName)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

// newOpenAIChatModel 创建 OpenAI / Azure OpenAI ChatModel
func newOpenAIChatModel(ctx context.Context, cfg *config.AIConfig, modelName string, byAzure bool) (model.BaseChatModel, error) {
	modelCfg := &openai.ChatModelConfig{
		Model:   modelName,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		ByAzure: byAzure,
	}

	if cfg.Options.Temperature > 0 {
		temp := float32(cfg.Options.Temperature)
		modelCfg.Temperature = &temp
	}
	if cfg.Options.MaxTokens > 0 {
		modelCfg.MaxTokens = &cfg.Options.MaxTokens
	}
	if cfg.Options.TopP > 0 {
		topP := float32(cfg.Options.TopP)
		modelCfg.TopP = &topP
	}

	return openai.NewChatModel(ctx, modelCfg)
}

// newArkChatModel 创建 Ark ChatModel
func newArkChatModel(ctx context.Context, cfg *config.AIConfig, modelName string) (model.BaseChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultArkBaseURL
	}

	modelCfg := &arkext.ChatModelConfig{
		Model:   modelName,
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
	}

	if cfg.Options.Temperature > 0 {
		temp := float32(cfg.Options.Temperature)
		modelCfg.Temperature = &temp
	}
	if cfg.Options.MaxTokens > 0 {
		modelCfg.MaxTokens = &cfg.Options.MaxTokens
	}
	if cfg.Options.TopP > 0 {
		topP := float32(cfg.Options.TopP)
		modelCfg.TopP = &topP
	}

	return arkext.NewChatModel(ctx, modelCfg)
}
