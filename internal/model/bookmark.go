package model

import "strings"

// Role 消息角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleError 传输失败时的回复，只结束当前配对，不可收藏
	RoleError Role = "error"
)

// ParseRole 解析角色字符串
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAssistant:
		return RoleAssistant, true
	case RoleError:
		return RoleError, true
	default:
		return "", false
	}
}

// Metadata 助手消息元数据
type Metadata struct {
	Model        string `json:"model"`
	Timestamp    string `json:"timestamp"`
	ResponseTime string `json:"responseTime,omitempty"`
}

// Message 消息，用户消息的 Metadata 为 nil
type Message struct {
	Content  string    `json:"content"`
	Role     Role      `json:"role"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Conversation 一问一答
type Conversation struct {
	User      *Message `json:"user"`
	Assistant *Message `json:"assistant"`
}

// Bookmark 收藏记录
// ID 为保存时的毫秒时间戳，同一毫秒内保存可能冲突
type Bookmark struct {
	ID           int64         `json:"id"`
	Conversation *Conversation `json:"conversation"`
}

// UserContent 返回用户消息内容，缺失时为空串
func (b *Bookmark) UserContent() string {
	if b.Conversation == nil || b.Conversation.User == nil {
		return ""
	}
	return b.Conversation.User.Content
}

// AssistantContent 返回助手消息内容，缺失时为空串
func (b *Bookmark) AssistantContent() string {
	if b.Conversation == nil || b.Conversation.Assistant == nil {
		return ""
	}
	return b.Conversation.Assistant.Content
}

// AssistantMetadata 返回助手元数据，缺失时为 nil
func (b *Bookmark) AssistantMetadata() *Metadata {
	if b.Conversation == nil || b.Conversation.Assistant == nil {
		return nil
	}
	return b.Conversation.Assistant.Metadata
}

// Clone 深拷贝
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	return &Conversation{
		User:      c.User.Clone(),
		Assistant: c.Assistant.Clone(),
	}
}

// Clone 深拷贝
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	out := *m
	if m.Metadata != nil {
		meta := *m.Metadata
		out.Metadata = &meta
	}
	return &out
}
