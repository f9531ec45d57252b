package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tutor/internal/model"
	"tutor/internal/pkg/bookmarktools"
	"tutor/internal/pkg/id"
	"tutor/internal/pkg/kvstore"
)

// DefaultBookmarksKey 收藏集合的存储键
const DefaultBookmarksKey = "chatBookmarks"

var (
	ErrDuplicateBookmark = errors.New("bookmark already exists")
	ErrStoreUnavailable  = errors.New("bookmark store unavailable")
	ErrInvalidPair       = errors.New("bookmark pair is invalid")
)

// BookmarkRepo 收藏仓库，整个集合以 JSON 数组存放在一个键下
//
// 写操作是 读取-修改-写回，没有锁也没有事务：两个写者交错时，
// 后写入的完整快照会覆盖先写入者的修改。
type BookmarkRepo struct {
	kv    kvstore.Store
	key   string
	codec *bookmarktools.Codec
	now   func() time.Time

	mu        sync.Mutex
	listeners []func()
}

// NewBookmarkRepo 创建收藏仓库，key 为空时使用 chatBookmarks
func NewBookmarkRepo(kv kvstore.Store, key string, now func() time.Time) *BookmarkRepo {
	if key == "" {
		key = DefaultBookmarksKey
	}
	if now == nil {
		now = time.Now
	}
	return &BookmarkRepo{
		kv:    kv,
		key:   key,
		codec: bookmarktools.NewCodec(now),
		now:   now,
	}
}

// Key 存储键
func (r *BookmarkRepo) Key() string {
	return r.key
}

// LoadAll 读取全部收藏，丢弃无法迁移或校验失败的记录，保持存储顺序
// 只读，不会把迁移结果写回
func (r *BookmarkRepo) LoadAll(ctx context.Context) ([]model.Bookmark, error) {
	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	bookmarks := make([]model.Bookmark, 0, len(records))
	for i, raw := range records {
		b, err := r.codec.Decode(raw)
		if err != nil {
			log.Debug().Err(err).Int("index", i).Msg("dropping unmigratable bookmark")
			continue
		}
		if err := bookmarktools.Validate(&b); err != nil {
			log.Debug().Err(err).Int("index", i).Int64("bookmark_id", b.ID).Msg("dropping invalid bookmark")
			continue
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

// Append 保存一问一答
// 已存在相同 (用户内容, 助手内容) 时返回 ErrDuplicateBookmark
func (r *BookmarkRepo) Append(ctx context.Context, pair *model.Conversation) (*model.Bookmark, error) {
	if err := bookmarktools.ValidatePair(pair); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPair, err)
	}

	existing, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range existing {
		if existing[i].UserContent() == pair.User.Content && existing[i].AssistantContent() == pair.Assistant.Content {
			return nil, ErrDuplicateBookmark
		}
	}

	conv := pair.Clone()
	conv.User.Metadata = nil
	b := model.Bookmark{ID: id.Bookmark(r.now()), Conversation: conv}

	if err := r.persist(ctx, append(existing, b)); err != nil {
		return nil, err
	}

	log.Info().Int64("bookmark_id", b.ID).Int("total", len(existing)+1).Msg("bookmark saved")
	return &b, nil
}

// RemoveByID 删除所有匹配 id 的收藏，返回集合是否变小
// 未命中时不写回，存储内容保持原样
func (r *BookmarkRepo) RemoveByID(ctx context.Context, bookmarkID int64) (bool, error) {
	existing, err := r.LoadAll(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]model.Bookmark, 0, len(existing))
	for _, b := range existing {
		if b.ID != bookmarkID {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(existing) {
		return false, nil
	}

	if err := r.persist(ctx, kept); err != nil {
		return false, err
	}

	log.Info().Int64("bookmark_id", bookmarkID).Int("total", len(kept)).Msg("bookmark removed")
	return true, nil
}

// MigrationReport 迁移统计
type MigrationReport struct {
	Total   int            `json:"total"`
	Kept    int            `json:"kept"`
	Dropped int            `json:"dropped"`
	Shapes  map[string]int `json:"shapes"`
}

// Migrate 将集合重写为当前格式，丢弃无法迁移或无效的记录
func (r *BookmarkRepo) Migrate(ctx context.Context) (*MigrationReport, error) {
	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	report := &MigrationReport{Total: len(records), Shapes: make(map[string]int)}
	for _, raw := range records {
		report.Shapes[bookmarktools.DetectShape(raw).String()]++
	}

	bookmarks, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	report.Kept = len(bookmarks)
	report.Dropped = report.Total - report.Kept

	if err := r.persist(ctx, bookmarks); err != nil {
		return nil, err
	}
	return report, nil
}

// OnChange 注册变更回调，本进程写入或收到外部通知时调用
func (r *BookmarkRepo) OnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// HandleExternalChange 处理其他进程修改存储的通知，只有收藏键会触发刷新
func (r *BookmarkRepo) HandleExternalChange(key string) bool {
	if key != r.key {
		return false
	}
	r.notify()
	return true
}

func (r *BookmarkRepo) loadRecords(ctx context.Context) ([][]byte, error) {
	if r.kv == nil {
		return nil, fmt.Errorf("%w: no kv store configured", ErrStoreUnavailable)
	}
	value, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !ok {
		return nil, nil
	}

	raws, err := bookmarktools.SplitCollection(value)
	if err != nil {
		return nil, err
	}
	records := make([][]byte, len(raws))
	for i, raw := range raws {
		records[i] = raw
	}
	return records, nil
}

func (r *BookmarkRepo) persist(ctx context.Context, bookmarks []model.Bookmark) error {
	if r.kv == nil {
		return fmt.Errorf("%w: no kv store configured", ErrStoreUnavailable)
	}
	data, err := bookmarktools.EncodeAll(bookmarks)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	r.notify()
	return nil
}

func (r *BookmarkRepo) notify() {
	r.mu.Lock()
	listeners := make([]func(), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
