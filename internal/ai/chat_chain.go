package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"tutor/internal/ai/component"
	"tutor/internal/config"
)

const systemPrompt = "You are a patient tutor. Answer the student's question clearly and concisely."

// ChatChain 单个模型的对话链
// 工作流: 系统提示 + 用户消息 -> ChatModel -> 回复
type ChatChain struct {
	chatModel model.BaseChatModel
}

// NewChatChain 为指定模型创建对话链
func NewChatChain(ctx context.Context, cfg *config.AIConfig, modelName string) (*ChatChain, error) {
	chatModel, err := component.NewChatModel(ctx, cfg, modelName)
	if err != nil {
		return nil, err
	}
	return &ChatChain{chatModel: chatModel}, nil
}

// Run 执行一次问答
func (c *ChatChain) Run(ctx context.Context, content string) (*ChatResponse, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(content),
	}

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	out := &ChatResponse{Content: resp.Content}
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		out.PromptTokens = resp.ResponseMeta.Usage.PromptTokens
		out.CompletionTokens = resp.ResponseMeta.Usage.CompletionTokens
	}
	return out, nil
}
