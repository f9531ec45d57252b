package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tutor/internal/ai"
	"tutor/internal/model"
	"tutor/internal/pkg/conversation"
)

// ChatService 对话服务
// 职责: 调用 AI 层，把用户消息和回复送入会话的配对跟踪器
type ChatService struct {
	aiClient *ai.Client
	sessions *conversation.Registry
	now      func() time.Time
}

// NewChatService 创建对话服务
func NewChatService(aiClient *ai.Client, sessions *conversation.Registry) *ChatService {
	return &ChatService{
		aiClient: aiClient,
		sessions: sessions,
		now:      time.Now,
	}
}

// Models 可用模型和默认模型
func (s *ChatService) Models() *model.ModelsResponse {
	return &model.ModelsResponse{
		Models:  s.aiClient.Models(),
		Default: s.aiClient.DefaultModel(),
	}
}

// Chat 处理对话请求
// 业务流程: 1. 记录用户消息 -> 2. 调用 AI -> 3. 记录回复或错误事件
func (s *ChatService) Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ai.ErrEmptyContent
	}
	if req.Model != "" && !s.aiClient.Supports(req.Model) {
		return nil, fmt.Errorf("%w: %s", ai.ErrUnknownModel, req.Model)
	}

	var tracker *conversation.Tracker
	if req.SessionID != "" {
		t, ok := s.sessions.Get(req.SessionID)
		if !ok {
			return nil, ErrSessionNotFound
		}
		tracker = t
	}
	logger := log.With().Str("session_id", req.SessionID).Str("model", req.Model).Logger()

	// 1. 记录用户消息
	if tracker != nil {
		if err := tracker.RecordMessage(req.Content, model.RoleUser, nil); err != nil {
			return nil, err
		}
	}

	// 2. 调用 AI 层
	start := s.now()
	resp, err := s.aiClient.Chat(ctx, req.Content, req.Model)
	if err != nil {
		logger.Error().Err(err).Msg("AI chat failed")
		if tracker != nil {
			_ = tracker.RecordMessage(err.Error(), model.RoleError, nil)
		}
		if errors.Is(err, ai.ErrEmptyContent) || errors.Is(err, ai.ErrUnknownModel) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrChatFailed, err)
	}
	finished := s.now()

	metadata := &model.Metadata{
		Model:        resp.Model,
		Timestamp:    finished.UTC().Format(time.RFC3339),
		ResponseTime: finished.Sub(start).Round(time.Millisecond).String(),
	}

	// 3. 记录回复
	if tracker != nil {
		if err := tracker.RecordMessage(resp.Content, model.RoleAssistant, metadata); err != nil {
			logger.Warn().Err(err).Msg("failed to record assistant message")
		}
	}

	logger.Info().
		Int("prompt_tokens", resp.PromptTokens).
		Int("completion_tokens", resp.CompletionTokens).
		Str("response_time", metadata.ResponseTime).
		Msg("chat completed")

	out := &model.ChatResponse{
		Content:  resp.Content,
		Role:     model.RoleAssistant,
		Model:    resp.Model,
		Metadata: metadata,
	}
	if resp.PromptTokens > 0 || resp.CompletionTokens > 0 {
		out.Usage = &model.TokenUsage{
			PromptTokens:     resp.PromptTokens,
			CompletionTokens: resp.CompletionTokens,
			TotalTokens:      resp.PromptTokens + resp.CompletionTokens,
		}
	}
	return out, nil
}

// CreateSession 新建会话
func (s *ChatService) CreateSession() string {
	sessionID := s.sessions.Create()
	log.Debug().Str("session_id", sessionID).Msg("conversation session created")
	return sessionID
}

// DeleteSession 删除会话
func (s *ChatService) DeleteSession(sessionID string) bool {
	return s.sessions.Delete(sessionID)
}

// RecordMessage 记录由调用方产生的消息事件
func (s *ChatService) RecordMessage(sessionID string, req *model.RecordMessageRequest) error {
	tracker, ok := s.sessions.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return fmt.Errorf("%w: %q", conversation.ErrUnknownRole, req.Role)
	}
	return tracker.RecordMessage(req.Content, role, req.Metadata)
}

// LatestPair 会话中最近一次完整配对
func (s *ChatService) LatestPair(sessionID string) (*model.PairResponse, error) {
	tracker, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	pair, _ := tracker.LatestCompletePair()
	return &model.PairResponse{
		SessionID: sessionID,
		State:     tracker.State().String(),
		Pair:      pair,
	}, nil
}
