package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tutor/internal/model"
	"tutor/internal/pkg/bookmarktools"
	"tutor/internal/pkg/conversation"
	"tutor/internal/pkg/kvstore"
	"tutor/internal/repository"
)

// SaveOutcome 保存结果，重复和没有完整配对都不是错误
type SaveOutcome string

const (
	SaveSaved          SaveOutcome = "saved"
	SaveDuplicate      SaveOutcome = "duplicate"
	SaveNoCompletePair SaveOutcome = "no_complete_pair"
)

// Message 给用户看的提示
func (o SaveOutcome) Message() string {
	switch o {
	case SaveSaved:
		return "Conversation bookmarked"
	case SaveDuplicate:
		return "This conversation is already bookmarked"
	case SaveNoCompletePair:
		return "No complete conversation to bookmark yet"
	default:
		return ""
	}
}

// SaveResult 保存结果
type SaveResult struct {
	Outcome  SaveOutcome
	Bookmark *model.Bookmark
}

// RefreshEvent 推送给订阅者的刷新事件类型
const RefreshEvent = "refresh"

// BookmarkService 收藏服务
// 职责: 编排配对跟踪器和收藏仓库，向订阅者广播变更
type BookmarkService struct {
	repo     *repository.BookmarkRepo
	sessions *conversation.Registry
	now      func() time.Time

	mu          sync.Mutex
	subscribers map[chan model.ChangeEvent]struct{}
	closed      bool
}

// NewBookmarkService 创建收藏服务
func NewBookmarkService(repo *repository.BookmarkRepo, sessions *conversation.Registry) *BookmarkService {
	s := &BookmarkService{
		repo:        repo,
		sessions:    sessions,
		now:         time.Now,
		subscribers: make(map[chan model.ChangeEvent]struct{}),
	}
	repo.OnChange(s.broadcast)
	return s
}

// List 按时间倒序返回有效收藏
func (s *BookmarkService) List(ctx context.Context) ([]model.Bookmark, error) {
	bookmarks, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return bookmarktools.Present(bookmarks), nil
}

// Save 保存给定的一问一答
func (s *BookmarkService) Save(ctx context.Context, pair *model.Conversation) (*SaveResult, error) {
	b, err := s.repo.Append(ctx, pair)
	switch {
	case errors.Is(err, repository.ErrDuplicateBookmark):
		return &SaveResult{Outcome: SaveDuplicate}, nil
	case err != nil:
		return nil, err
	}
	return &SaveResult{Outcome: SaveSaved, Bookmark: b}, nil
}

// SaveLatest 保存会话中最近一次完整配对
func (s *BookmarkService) SaveLatest(ctx context.Context, sessionID string) (*SaveResult, error) {
	tracker, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.SaveFrom(ctx, tracker)
}

// SaveFrom 保存跟踪器中最近一次完整配对
func (s *BookmarkService) SaveFrom(ctx context.Context, tracker *conversation.Tracker) (*SaveResult, error) {
	pair, ok := tracker.LatestCompletePair()
	if !ok {
		return &SaveResult{Outcome: SaveNoCompletePair}, nil
	}
	return s.Save(ctx, pair)
}

// Remove 按 id 删除
func (s *BookmarkService) Remove(ctx context.Context, bookmarkID int64) (bool, error) {
	return s.repo.RemoveByID(ctx, bookmarkID)
}

// Export 导出收藏，返回内容和 Content-Type
func (s *BookmarkService) Export(ctx context.Context, format string) (string, string, error) {
	bookmarks, err := s.List(ctx)
	if err != nil {
		return "", "", err
	}
	return bookmarktools.Render(bookmarks, format)
}

// Migrate 将存储重写为当前格式
func (s *BookmarkService) Migrate(ctx context.Context) (*repository.MigrationReport, error) {
	return s.repo.Migrate(ctx)
}

// SeedExample 集合为空时写入示例收藏
func (s *BookmarkService) SeedExample(ctx context.Context) (bool, error) {
	existing, err := s.repo.LoadAll(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	pair := &model.Conversation{
		User: &model.Message{Content: "What is the capital of France?", Role: model.RoleUser},
		Assistant: &model.Message{
			Content: "The capital of France is Paris. It is also the largest city in France and serves as the country's major cultural, economic, and political center.",
			Role:    model.RoleAssistant,
			Metadata: &model.Metadata{
				Model:     "GPT-4",
				Timestamp: s.now().UTC().Format(time.RFC3339),
			},
		},
	}
	if _, err := s.repo.Append(ctx, pair); err != nil {
		return false, err
	}
	log.Info().Str("key", s.repo.Key()).Msg("example bookmark seeded")
	return true, nil
}

// Subscribe 订阅收藏变更，返回取消函数
// 服务关闭后返回已关闭的通道
func (s *BookmarkService) Subscribe() (<-chan model.ChangeEvent, func()) {
	ch := make(chan model.ChangeEvent, 8)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
	}
}

// Close 关闭所有订阅通道，之后的订阅立即结束
func (s *BookmarkService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// WatchStore 监听其他进程对存储的修改，直到 ctx 结束
// 存储不支持通知时直接返回
func (s *BookmarkService) WatchStore(ctx context.Context, kv kvstore.Store) error {
	watcher, ok := kv.(kvstore.Watcher)
	if !ok {
		log.Debug().Str("storage", kv.Type()).Msg("storage does not support change notifications")
		return nil
	}

	keys, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	for key := range keys {
		s.repo.HandleExternalChange(key)
	}
	return nil
}

func (s *BookmarkService) broadcast() {
	event := model.ChangeEvent{Type: RefreshEvent, Key: s.repo.Key()}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		// 刷新信号可以合并，订阅者来不及读时丢弃
		select {
		case ch <- event:
		default:
		}
	}
}
