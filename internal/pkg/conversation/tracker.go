package conversation

import (
	"errors"
	"strings"
	"sync"

	"tutor/internal/model"
)

var (
	ErrEmptyContent  = errors.New("message content is empty")
	ErrUnknownRole   = errors.New("unknown message role")
	ErrOrphanMessage = errors.New("assistant message without a pending user message")
)

// State 配对状态
type State int

const (
	AwaitingUser State = iota
	AwaitingAssistant
	PairComplete
)

func (s State) String() string {
	switch s {
	case AwaitingUser:
		return "awaiting_user"
	case AwaitingAssistant:
		return "awaiting_assistant"
	case PairComplete:
		return "pair_complete"
	default:
		return "unknown"
	}
}

// Tracker 将消息流分组为一问一答
// 最近一次完整配对在下一次配对完成前一直可查询
type Tracker struct {
	mu      sync.Mutex
	state   State
	pending *model.Message
	latest  *model.Conversation
}

// NewTracker 创建配对跟踪器
func NewTracker() *Tracker {
	return &Tracker{state: AwaitingUser}
}

// RecordMessage 输入一条消息
// error 角色结束当前配对，不产生可收藏的配对；孤立的助手消息被忽略并返回 ErrOrphanMessage
func (t *Tracker) RecordMessage(content string, role model.Role, metadata *model.Metadata) error {
	if strings.TrimSpace(content) == "" && role != model.RoleError {
		return ErrEmptyContent
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch role {
	case model.RoleUser:
		t.pending = &model.Message{Content: content, Role: model.RoleUser}
		t.state = AwaitingAssistant
	case model.RoleAssistant:
		if t.state != AwaitingAssistant || t.pending == nil {
			return ErrOrphanMessage
		}
		msg := &model.Message{Content: content, Role: model.RoleAssistant}
		if metadata != nil {
			meta := *metadata
			msg.Metadata = &meta
		}
		t.latest = &model.Conversation{User: t.pending, Assistant: msg}
		t.pending = nil
		t.state = PairComplete
	case model.RoleError:
		if t.state == AwaitingAssistant {
			t.pending = nil
			t.state = AwaitingUser
		}
	default:
		return ErrUnknownRole
	}
	return nil
}

// LatestCompletePair 返回最近一次完整配对的副本
func (t *Tracker) LatestCompletePair() (*model.Conversation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latest == nil {
		return nil, false
	}
	return t.latest.Clone(), true
}

// State 当前状态
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
