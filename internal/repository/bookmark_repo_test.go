package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"tutor/internal/model"
	"tutor/internal/pkg/kvstore"
	"tutor/internal/pkg/kvstore/memory"
)

var repoNow = time.Date(2024, 12, 19, 8, 30, 0, 0, time.UTC)

func newPair(user, assistant string) *model.Conversation {
	return &model.Conversation{
		User: &model.Message{Content: user, Role: model.RoleUser},
		Assistant: &model.Message{
			Content:  assistant,
			Role:     model.RoleAssistant,
			Metadata: &model.Metadata{Model: "m1", Timestamp: "2024-01-01T00:00:00Z"},
		},
	}
}

// tickingClock 每次调用前进 1ms，保证连续保存的 id 不同
func tickingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Millisecond)
		return current
	}
}

// failingStore 所有操作都返回错误
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("quota exceeded")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("quota exceeded") }
func (failingStore) Remove(context.Context, string) error      { return errors.New("quota exceeded") }
func (failingStore) Close() error                              { return nil }
func (failingStore) Type() string                              { return "failing" }

// gatedStore 在第一次 Get 之后暂停，直到 release 被关闭
type gatedStore struct {
	kvstore.Store
	read    chan struct{}
	release chan struct{}
	gated   bool
}

func (g *gatedStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := g.Store.Get(ctx, key)
	if !g.gated {
		g.gated = true
		close(g.read)
		<-g.release
	}
	return v, ok, err
}

func TestBookmarkRepo_AppendAndLoad(t *testing.T) {
	Convey("保存一问一答", t, func() {
		ctx := context.Background()
		kv := memory.New()
		repo := NewBookmarkRepo(kv, "", tickingClock(repoNow))

		So(repo.Key(), ShouldEqual, DefaultBookmarksKey)

		Convey("空存储读取为空集合", func() {
			bookmarks, err := repo.LoadAll(ctx)
			So(err, ShouldBeNil)
			So(bookmarks, ShouldBeEmpty)
		})

		Convey("保存后读回，只有一条记录", func() {
			saved, err := repo.Append(ctx, newPair("Hi", "Hello"))
			So(err, ShouldBeNil)
			So(saved.ID, ShouldEqual, repoNow.Add(time.Millisecond).UnixMilli())

			bookmarks, err := repo.LoadAll(ctx)
			So(err, ShouldBeNil)
			So(len(bookmarks), ShouldEqual, 1)
			So(bookmarks[0].UserContent(), ShouldEqual, "Hi")
			So(bookmarks[0].AssistantContent(), ShouldEqual, "Hello")
			So(bookmarks[0].AssistantMetadata().Model, ShouldEqual, "m1")
			So(bookmarks[0].AssistantMetadata().Timestamp, ShouldEqual, "2024-01-01T00:00:00Z")

			Convey("相同内容再次保存返回 ErrDuplicateBookmark，集合不变", func() {
				before, _, _ := kv.Get(ctx, DefaultBookmarksKey)

				_, err := repo.Append(ctx, newPair("Hi", "Hello"))
				So(errors.Is(err, ErrDuplicateBookmark), ShouldBeTrue)

				after, _, _ := kv.Get(ctx, DefaultBookmarksKey)
				So(after, ShouldEqual, before)
			})

			Convey("只有用户内容相同不算重复", func() {
				_, err := repo.Append(ctx, newPair("Hi", "Hello again"))
				So(err, ShouldBeNil)

				bookmarks, _ := repo.LoadAll(ctx)
				So(len(bookmarks), ShouldEqual, 2)
				So(bookmarks[1].AssistantContent(), ShouldEqual, "Hello again")
			})

			Convey("按 id 删除", func() {
				removed, err := repo.RemoveByID(ctx, saved.ID)
				So(err, ShouldBeNil)
				So(removed, ShouldBeTrue)

				bookmarks, _ := repo.LoadAll(ctx)
				So(bookmarks, ShouldBeEmpty)
			})

			Convey("删除不存在的 id 不写回", func() {
				before, _, _ := kv.Get(ctx, DefaultBookmarksKey)

				removed, err := repo.RemoveByID(ctx, 42)
				So(err, ShouldBeNil)
				So(removed, ShouldBeFalse)

				after, _, _ := kv.Get(ctx, DefaultBookmarksKey)
				So(after, ShouldEqual, before)
			})
		})

		Convey("用户消息的元数据不会被保存", func() {
			pair := newPair("Hi", "Hello")
			pair.User.Metadata = &model.Metadata{Model: "x", Timestamp: "y"}

			saved, err := repo.Append(ctx, pair)
			So(err, ShouldBeNil)
			So(saved.Conversation.User.Metadata, ShouldBeNil)
			So(pair.User.Metadata, ShouldNotBeNil)
		})

		Convey("无效的一问一答返回 ErrInvalidPair", func() {
			_, err := repo.Append(ctx, newPair("  ", "Hello"))
			So(errors.Is(err, ErrInvalidPair), ShouldBeTrue)

			pair := newPair("Hi", "Hello")
			pair.Assistant.Metadata = nil
			_, err = repo.Append(ctx, pair)
			So(errors.Is(err, ErrInvalidPair), ShouldBeTrue)

			_, err = repo.Append(ctx, nil)
			So(errors.Is(err, ErrInvalidPair), ShouldBeTrue)

			_, ok, _ := kv.Get(ctx, DefaultBookmarksKey)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestBookmarkRepo_LegacyRecords(t *testing.T) {
	Convey("读取旧格式记录", t, func() {
		ctx := context.Background()
		kv := memory.New()
		repo := NewBookmarkRepo(kv, "chatBookmarks", func() time.Time { return repoNow })

		legacy := `[
			{"id": 1, "messages": [
				{"role": "user", "content": "Q1"},
				{"role": "assistant", "content": "A1", "metadata": {"model": "gpt-4", "timestamp": "2024-01-02T00:00:00Z"}}
			]},
			{"question": "Q2", "answer": "A2", "model": "gpt-3.5-turbo", "timestamp": "2024-01-03T00:00:00Z"},
			{"id": 3, "conversation": {"user": {"content": "", "role": "user"}, "assistant": {"content": "A3", "role": "assistant", "metadata": {"model": "m", "timestamp": "t"}}}},
			"not a record"
		]`
		So(kv.Set(ctx, "chatBookmarks", legacy), ShouldBeNil)

		Convey("可迁移的记录被保留，无效记录被丢弃，顺序不变", func() {
			bookmarks, err := repo.LoadAll(ctx)
			So(err, ShouldBeNil)
			So(len(bookmarks), ShouldEqual, 2)

			So(bookmarks[0].ID, ShouldEqual, 1)
			So(bookmarks[0].UserContent(), ShouldEqual, "Q1")
			So(bookmarks[0].AssistantMetadata().Model, ShouldEqual, "gpt-4")

			So(bookmarks[1].ID, ShouldEqual, repoNow.UnixMilli())
			So(bookmarks[1].UserContent(), ShouldEqual, "Q2")
			So(bookmarks[1].AssistantMetadata().Model, ShouldEqual, "gpt-3.5-turbo")
		})

		Convey("读取不会改写存储", func() {
			_, err := repo.LoadAll(ctx)
			So(err, ShouldBeNil)
			v, _, _ := kv.Get(ctx, "chatBookmarks")
			So(v, ShouldEqual, legacy)
		})

		Convey("Migrate 重写为当前格式并返回统计", func() {
			report, err := repo.Migrate(ctx)
			So(err, ShouldBeNil)
			So(report.Total, ShouldEqual, 4)
			So(report.Kept, ShouldEqual, 2)
			So(report.Dropped, ShouldEqual, 2)
			So(report.Shapes["messages"], ShouldEqual, 1)
			So(report.Shapes["flat"], ShouldEqual, 1)
			So(report.Shapes["current"], ShouldEqual, 1)
			So(report.Shapes["unknown"], ShouldEqual, 1)

			v, _, _ := kv.Get(ctx, "chatBookmarks")
			var stored []map[string]any
			So(json.Unmarshal([]byte(v), &stored), ShouldBeNil)
			So(len(stored), ShouldEqual, 2)
			So(stored[0], ShouldContainKey, "conversation")
			So(stored[1], ShouldContainKey, "conversation")
		})

		Convey("去重同样作用于迁移后的记录", func() {
			pair := newPair("Q2", "A2")
			_, err := repo.Append(ctx, pair)
			So(errors.Is(err, ErrDuplicateBookmark), ShouldBeTrue)
		})
	})

	Convey("集合本身无法解析时报错", t, func() {
		ctx := context.Background()
		kv := memory.New()
		repo := NewBookmarkRepo(kv, "", nil)
		So(kv.Set(ctx, DefaultBookmarksKey, "{not json"), ShouldBeNil)

		_, err := repo.LoadAll(ctx)
		So(err, ShouldNotBeNil)
		So(errors.Is(err, ErrStoreUnavailable), ShouldBeFalse)
	})
}

func TestBookmarkRepo_StoreUnavailable(t *testing.T) {
	Convey("存储不可用", t, func() {
		ctx := context.Background()

		Convey("读写错误包装为 ErrStoreUnavailable", func() {
			repo := NewBookmarkRepo(failingStore{}, "", nil)

			_, err := repo.LoadAll(ctx)
			So(errors.Is(err, ErrStoreUnavailable), ShouldBeTrue)

			_, err = repo.Append(ctx, newPair("Hi", "Hello"))
			So(errors.Is(err, ErrStoreUnavailable), ShouldBeTrue)

			_, err = repo.RemoveByID(ctx, 1)
			So(errors.Is(err, ErrStoreUnavailable), ShouldBeTrue)
		})

		Convey("没有配置存储", func() {
			repo := NewBookmarkRepo(nil, "", nil)
			_, err := repo.LoadAll(ctx)
			So(errors.Is(err, ErrStoreUnavailable), ShouldBeTrue)
		})

		Convey("存储关闭后", func() {
			kv := memory.New()
			repo := NewBookmarkRepo(kv, "", nil)
			So(kv.Close(), ShouldBeNil)

			_, err := repo.Append(ctx, newPair("Hi", "Hello"))
			So(errors.Is(err, ErrStoreUnavailable), ShouldBeTrue)
			So(errors.Is(err, kvstore.ErrClosed), ShouldBeTrue)
		})
	})
}

func TestBookmarkRepo_LastWriterWins(t *testing.T) {
	Convey("两个写者交错时后写入者覆盖先写入者", t, func() {
		ctx := context.Background()
		kv := memory.New()
		gated := &gatedStore{Store: kv, read: make(chan struct{}), release: make(chan struct{})}

		writerA := NewBookmarkRepo(gated, "", tickingClock(repoNow))
		writerB := NewBookmarkRepo(kv, "", tickingClock(repoNow.Add(time.Second)))

		done := make(chan error, 1)
		go func() {
			_, err := writerA.Append(ctx, newPair("from A", "answer A"))
			done <- err
		}()

		// A 已读到空集合，B 完整地写入一条
		<-gated.read
		_, err := writerB.Append(ctx, newPair("from B", "answer B"))
		So(err, ShouldBeNil)

		close(gated.release)
		So(<-done, ShouldBeNil)

		bookmarks, err := writerB.LoadAll(ctx)
		So(err, ShouldBeNil)
		So(len(bookmarks), ShouldEqual, 1)
		So(bookmarks[0].UserContent(), ShouldEqual, "from A")
	})
}

func TestBookmarkRepo_ChangeHooks(t *testing.T) {
	Convey("变更回调", t, func() {
		ctx := context.Background()
		repo := NewBookmarkRepo(memory.New(), "", tickingClock(repoNow))

		calls := 0
		repo.OnChange(func() { calls++ })

		Convey("写入成功后触发", func() {
			saved, err := repo.Append(ctx, newPair("Hi", "Hello"))
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 1)

			_, _ = repo.Append(ctx, newPair("Hi", "Hello"))
			So(calls, ShouldEqual, 1)

			_, _ = repo.RemoveByID(ctx, 42)
			So(calls, ShouldEqual, 1)

			_, _ = repo.RemoveByID(ctx, saved.ID)
			So(calls, ShouldEqual, 2)
		})

		Convey("外部通知只响应收藏键", func() {
			So(repo.HandleExternalChange("theme"), ShouldBeFalse)
			So(calls, ShouldEqual, 0)

			So(repo.HandleExternalChange(DefaultBookmarksKey), ShouldBeTrue)
			So(calls, ShouldEqual, 1)
		})
	})
}
