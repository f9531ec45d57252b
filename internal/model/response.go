package model

// ChatResponse 对话响应
type ChatResponse struct {
	Content  string      `json:"content"`
	Role     Role        `json:"role"`
	Model    string      `json:"model"`
	Metadata *Metadata   `json:"metadata,omitempty"`
	Usage    *TokenUsage `json:"usage,omitempty"`
}

// TokenUsage Token 使用统计
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ModelsResponse 可用模型列表
type ModelsResponse struct {
	Models  []string `json:"models"`
	Default string   `json:"default"`
}

// SaveBookmarkResponse 保存结果
// Outcome: saved / duplicate / no_complete_pair
type SaveBookmarkResponse struct {
	Outcome  string    `json:"outcome"`
	Message  string    `json:"message,omitempty"`
	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// BookmarkListResponse 收藏列表
type BookmarkListResponse struct {
	Bookmarks []Bookmark `json:"bookmarks"`
	Total     int        `json:"total"`
}

// PairResponse 最近一次完整配对
type PairResponse struct {
	SessionID string        `json:"session_id"`
	State     string        `json:"state"`
	Pair      *Conversation `json:"pair"`
}

// SessionResponse 会话
type SessionResponse struct {
	ID string `json:"id"`
}

// ChangeEvent 收藏变更推送
type ChangeEvent struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

// ThemeResponse 当前主题
type ThemeResponse struct {
	Theme string `json:"theme"`
}

// RemoveBookmarkResponse 删除结果
type RemoveBookmarkResponse struct {
	Removed bool `json:"removed"`
}
