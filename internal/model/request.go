package model

// ChatRequest 对话请求
type ChatRequest struct {
	Content   string `json:"content" binding:"required"`
	Role      string `json:"role,omitempty"`
	Model     string `json:"model,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// RecordMessageRequest 记录本地消息请求
type RecordMessageRequest struct {
	Content  string    `json:"content" binding:"required"`
	Role     string    `json:"role" binding:"required"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// SaveBookmarkRequest 直接保存一问一答
type SaveBookmarkRequest struct {
	User      *Message `json:"user" binding:"required"`
	Assistant *Message `json:"assistant" binding:"required"`
}

// ThemeRequest 主题设置请求
type ThemeRequest struct {
	Theme string `json:"theme" binding:"required"`
}
