// Package chatclient 终端客户端使用的对话 HTTP 传输
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tutor/internal/model"
	"tutor/internal/pkg/portfinder"
)

// DefaultServerURL 既没有配置也没有端口文件时使用
const DefaultServerURL = "http://localhost:8000"

// ErrTransport 服务端不可达或返回错误
var ErrTransport = errors.New("chat transport failed")

// Config 客户端配置
type Config struct {
	ServerURL  string        // 服务地址，为空时通过端口文件发现
	PortFile   string        // 服务端写入的端口文件
	Timeout    time.Duration // 请求超时时间
	MaxRetries int           // 网络错误的最大尝试次数
	RetryDelay time.Duration // 重试延迟
}

// Client 对话服务 HTTP 客户端
type Client struct {
	config     *Config
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建客户端
func NewClient(config *Config) *Client {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 1
	}
	return &Client{
		config:  config,
		baseURL: strings.TrimRight(ResolveServerURL(config.ServerURL, config.PortFile), "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// ResolveServerURL 依次使用配置地址、端口文件、默认地址
func ResolveServerURL(serverURL, portFile string) string {
	if serverURL != "" {
		return serverURL
	}
	if portFile != "" {
		port, err := portfinder.Load(portFile)
		if err == nil {
			return fmt.Sprintf("http://localhost:%d", port)
		}
		log.Debug().Err(err).Str("path", portFile).Msg("port file unavailable, using default server url")
	}
	return DefaultServerURL
}

// BaseURL 服务地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendUserMessage 发送用户消息，返回助手回复
func (c *Client) SendUserMessage(ctx context.Context, content, modelName string) (*model.ChatResponse, error) {
	var resp model.ChatResponse
	err := c.do(ctx, http.MethodPost, "/api/chat", &model.ChatRequest{
		Content: content,
		Role:    string(model.RoleUser),
		Model:   modelName,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Models 可用模型
func (c *Client) Models(ctx context.Context) (*model.ModelsResponse, error) {
	var resp model.ModelsResponse
	if err := c.do(ctx, http.MethodGet, "/api/models", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health 检查服务是否在线
func (c *Client) Health(ctx context.Context) error {
	var resp map[string]any
	return c.do(ctx, http.MethodGet, "/health", nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
			case <-time.After(c.config.RetryDelay):
			}
		}

		err := c.send(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(method, err) {
			break
		}
	}
	return fmt.Errorf("%w: %w", ErrTransport, lastErr)
}

// retryable 服务端已给出明确错误时不重试
// 非幂等请求只在连接未建立时重试，请求可能已送达的情况（超时、连接中断）不重发
func retryable(method string, err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return false
	}
	switch method {
	case http.MethodGet, http.MethodHead:
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, &statusErr.Body); jsonErr != nil {
			statusErr.Body.Message = strings.TrimSpace(string(data))
		}
		return statusErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError 服务端返回的非 2xx 响应
type StatusError struct {
	StatusCode int
	Body       struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("server returned %d", e.StatusCode)
	if e.Body.Message != "" {
		msg += ": " + e.Body.Message
	}
	if e.Body.Detail != "" {
		msg += " (" + e.Body.Detail + ")"
	}
	return msg
}
