package memory

import (
	"context"
	"sync"

	"tutor/internal/pkg/kvstore"
)

// Store 进程内键值存储，写入会通知所有 Watch 订阅者
type Store struct {
	mu       sync.RWMutex
	data     map[string]string
	watchers map[chan string]struct{}
	closed   bool
}

// New 创建内存存储
func New() *Store {
	return &Store{
		data:     make(map[string]string),
		watchers: make(map[chan string]struct{}),
	}
}

// Get 读取值
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false, kvstore.ErrClosed
	}
	v, ok := s.data[key]
	return v, ok, nil
}

// Set 写入值
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return kvstore.ErrClosed
	}
	s.data[key] = value
	s.notify(key)
	return nil
}

// Remove 删除键
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return kvstore.ErrClosed
	}
	delete(s.data, key)
	s.notify(key)
	return nil
}

// Watch 订阅变更，ctx 结束时取消订阅
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, kvstore.ErrClosed
	}

	ch := make(chan string, 16)
	s.watchers[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
	}()

	return ch, nil
}

// Close 关闭存储并结束所有订阅
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	for ch := range s.watchers {
		delete(s.watchers, ch)
		close(ch)
	}
	return nil
}

// Type 存储类型
func (s *Store) Type() string {
	return string(kvstore.TypeMemory)
}

// notify 订阅者处理不过来时丢弃通知
func (s *Store) notify(key string) {
	for ch := range s.watchers {
		select {
		case ch <- key:
		default:
		}
	}
}
