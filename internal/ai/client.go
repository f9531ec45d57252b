package ai

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"tutor/internal/config"
)

const (
	// TestModeModel 不调用模型提供方，直接回显
	TestModeModel = "test_mode"
	// DefaultModel 未配置时的默认模型
	DefaultModel = "gpt-3.5-turbo"
)

var (
	ErrEmptyContent     = errors.New("chat content is empty")
	ErrProviderNotReady = errors.New("AI provider is not configured")
	ErrUnknownModel     = errors.New("model is not available")
)

// ChatResponse 模型回复
type ChatResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Client AI 能力层客户端
// 按模型名缓存对话链，test_mode 不创建对话链
type Client struct {
	cfg    *config.AIConfig
	models []string

	mu     sync.Mutex
	chains map[string]*ChatChain
}

// NewClient 创建 AI 客户端
func NewClient(cfg *config.AIConfig) *Client {
	if cfg.APIKey == "" {
		log.Warn().Msg("AI API key not configured, only test_mode is available")
	}
	return &Client{
		cfg:    cfg,
		models: modelList(cfg),
		chains: make(map[string]*ChatChain),
	}
}

// Models 可用模型列表，最后一项总是 test_mode
func (c *Client) Models() []string {
	return slices.Clone(c.models)
}

// DefaultModel 默认模型
func (c *Client) DefaultModel() string {
	if c.cfg.Model != "" {
		return c.cfg.Model
	}
	return DefaultModel
}

// Supports 模型是否在可用列表中
func (c *Client) Supports(modelName string) bool {
	return slices.Contains(c.models, modelName)
}

// Chat 向指定模型发送一条用户消息，modelName 为空时使用默认模型
func (c *Client) Chat(ctx context.Context, content, modelName string) (*ChatResponse, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if modelName == "" {
		modelName = c.DefaultModel()
	}

	if modelName == TestModeModel {
		return &ChatResponse{
			Content: "Test response to: " + content,
			Model:   TestModeModel,
		}, nil
	}

	if !c.Supports(modelName) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, modelName)
	}
	if c.cfg.APIKey == "" {
		return nil, ErrProviderNotReady
	}

	chain, err := c.chain(ctx, modelName)
	if err != nil {
		return nil, err
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	resp, err := chain.Run(ctx, content)
	if err != nil {
		return nil, err
	}
	resp.Model = modelName
	return resp, nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.chains)
	return nil
}

// chain 获取模型的对话链，只为可用列表中的模型创建
// 创建时不持有锁，并发创建时保留先写入的一个
func (c *Client) chain(ctx context.Context, modelName string) (*ChatChain, error) {
	c.mu.Lock()
	chain, ok := c.chains[modelName]
	c.mu.Unlock()
	if ok {
		return chain, nil
	}

	created, err := NewChatChain(ctx, c.cfg, modelName)
	if err != nil {
		return nil, fmt.Errorf("create chat chain for %s: %w", modelName, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if chain, ok := c.chains[modelName]; ok {
		return chain, nil
	}
	c.chains[modelName] = created
	return created, nil
}

// cachedChains 已创建的对话链数量
func (c *Client) cachedChains() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chains)
}

func modelList(cfg *config.AIConfig) []string {
	models := make([]string, 0, len(cfg.Models)+2)
	def := cfg.Model
	if def == "" {
		def = DefaultModel
	}
	models = append(models, def)
	for _, m := range cfg.Models {
		if m != "" && !slices.Contains(models, m) {
			models = append(models, m)
		}
	}
	if i := slices.Index(models, TestModeModel); i >= 0 {
		models = slices.Delete(models, i, i+1)
	}
	return append(models, TestModeModel)
}
