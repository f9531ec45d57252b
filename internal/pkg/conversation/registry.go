package conversation

import (
	"sync"

	"tutor/internal/pkg/id"
)

// Registry 按会话 ID 保存配对跟踪器
type Registry struct {
	mu       sync.RWMutex
	trackers map[string]*Tracker
}

// NewRegistry 创建会话注册表
func NewRegistry() *Registry {
	return &Registry{trackers: make(map[string]*Tracker)}
}

// Create 新建会话并返回 ID
func (r *Registry) Create() string {
	sessionID := id.New()

	r.mu.Lock()
	r.trackers[sessionID] = NewTracker()
	r.mu.Unlock()

	return sessionID
}

// Get 获取会话跟踪器
func (r *Registry) Get(sessionID string) (*Tracker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trackers[sessionID]
	return t, ok
}

// GetOrCreate 获取会话，不存在时用给定 ID 创建
func (r *Registry) GetOrCreate(sessionID string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trackers[sessionID]
	if !ok {
		t = NewTracker()
		r.trackers[sessionID] = t
	}
	return t
}

// Delete 删除会话
func (r *Registry) Delete(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trackers[sessionID]; !ok {
		return false
	}
	delete(r.trackers, sessionID)
	return true
}

// Len 会话数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trackers)
}
