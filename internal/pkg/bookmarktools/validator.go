package bookmarktools

import (
	"errors"
	"strings"

	"tutor/internal/model"
)

// 校验失败原因，按检查顺序排列
var (
	ErrMissingRecord    = errors.New("bookmark has no id or conversation")
	ErrMissingMessage   = errors.New("bookmark conversation lacks user or assistant")
	ErrInvalidUser      = errors.New("bookmark user message is empty or mislabeled")
	ErrInvalidAssistant = errors.New("bookmark assistant message is invalid or lacks metadata")
	ErrInvalidMetadata  = errors.New("bookmark assistant metadata lacks timestamp or model")
)

// Validate 依次检查，遇到第一个失败即返回
func Validate(b *model.Bookmark) error {
	if b == nil || b.ID == 0 || b.Conversation == nil {
		return ErrMissingRecord
	}

	user, assistant := b.Conversation.User, b.Conversation.Assistant
	if user == nil || assistant == nil {
		return ErrMissingMessage
	}

	if blank(user.Content) || user.Role != model.RoleUser {
		return ErrInvalidUser
	}

	if blank(assistant.Content) || assistant.Role != model.RoleAssistant || assistant.Metadata == nil {
		return ErrInvalidAssistant
	}

	if blank(assistant.Metadata.Timestamp) || blank(assistant.Metadata.Model) {
		return ErrInvalidMetadata
	}

	return nil
}

// IsValid 纯谓词，用于展示或计数前过滤
func IsValid(b *model.Bookmark) bool {
	return Validate(b) == nil
}

// ValidatePair 校验待保存的一问一答
func ValidatePair(pair *model.Conversation) error {
	return Validate(&model.Bookmark{ID: 1, Conversation: pair})
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
