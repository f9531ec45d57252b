package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"tutor/internal/ai"
	"tutor/internal/config"
	"tutor/internal/model"
	"tutor/internal/pkg/conversation"
	"tutor/internal/pkg/kvstore"
	"tutor/internal/pkg/kvstore/memory"
	"tutor/internal/repository"
	"tutor/internal/service"
)

type unavailableStore struct{ kvstore.Store }

func (unavailableStore) Get(context.Context, string) (string, bool, error) {
	return "", false, context.DeadlineExceeded
}

func newRouter(kv kvstore.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)

	sessions := conversation.NewRegistry()
	chatSvc := service.NewChatService(ai.NewClient(&config.AIConfig{}), sessions)
	bookmarkSvc := service.NewBookmarkService(repository.NewBookmarkRepo(kv, "", nil), sessions)
	prefSvc := service.NewPreferenceService(repository.NewPreferenceRepo(kv))

	chatHdl := NewChatHandler(chatSvc)
	convHdl := NewConversationHandler(chatSvc, bookmarkSvc)
	bookmarkHdl := NewBookmarkHandler(bookmarkSvc, nil)
	prefHdl := NewPreferenceHandler(prefSvc)

	r := gin.New()
	r.GET("/health", NewHealthHandler(func() int { return 8123 }).Health)
	api := r.Group("/api")
	api.POST("/chat", chatHdl.Chat)
	api.GET("/models", chatHdl.Models)
	api.POST("/conversations", convHdl.Create)
	api.DELETE("/conversations/:id", convHdl.Delete)
	api.POST("/conversations/:id/messages", convHdl.RecordMessage)
	api.GET("/conversations/:id/pair", convHdl.LatestPair)
	api.POST("/conversations/:id/bookmark", convHdl.Bookmark)
	api.GET("/bookmarks", bookmarkHdl.List)
	api.POST("/bookmarks", bookmarkHdl.Save)
	api.GET("/bookmarks/export", bookmarkHdl.Export)
	api.GET("/bookmarks/events", bookmarkHdl.Events)
	api.DELETE("/bookmarks/:id", bookmarkHdl.Remove)
	api.GET("/preferences/theme", prefHdl.GetTheme)
	api.PUT("/preferences/theme", prefHdl.SetTheme)
	api.POST("/preferences/theme/toggle", prefHdl.ToggleTheme)
	api.GET("/preferences/profile", prefHdl.GetProfile)
	api.PUT("/preferences/profile", prefHdl.SetProfile)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	return v
}

func TestHealth(t *testing.T) {
	Convey("健康检查返回端口", t, func() {
		w := do(newRouter(memory.New()), http.MethodGet, "/health", nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		So(w.Body.String(), ShouldEqual, `{"port":8123,"status":"ok"}`)
	})
}

func TestChatHandler(t *testing.T) {
	Convey("对话接口", t, func() {
		r := newRouter(memory.New())

		Convey("test_mode 回显", func() {
			w := do(r, http.MethodPost, "/api/chat", gin.H{"content": "Hi", "role": "user", "model": "test_mode"})
			So(w.Code, ShouldEqual, http.StatusOK)

			resp := decode[model.ChatResponse](w)
			So(resp.Content, ShouldEqual, "Test response to: Hi")
			So(resp.Role, ShouldEqual, model.RoleAssistant)
			So(resp.Metadata.Model, ShouldEqual, "test_mode")
		})

		Convey("缺少内容返回 400", func() {
			w := do(r, http.MethodPost, "/api/chat", gin.H{"model": "test_mode"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[ErrorResponse](w).Code, ShouldEqual, 40001)

			w = do(r, http.MethodPost, "/api/chat", gin.H{"content": "  ", "model": "test_mode"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("模型不可用返回 502", func() {
			w := do(r, http.MethodPost, "/api/chat", gin.H{"content": "Hi", "model": "gpt-3.5-turbo"})
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(decode[ErrorResponse](w).Code, ShouldEqual, 50201)
		})

		Convey("未列出的模型返回 400", func() {
			w := do(r, http.MethodPost, "/api/chat", gin.H{"content": "Hi", "model": "gpt-4"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[ErrorResponse](w).Code, ShouldEqual, 40001)
		})

		Convey("模型列表", func() {
			w := do(r, http.MethodGet, "/api/models", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			resp := decode[model.ModelsResponse](w)
			So(resp.Models, ShouldContain, "test_mode")
			So(resp.Default, ShouldEqual, "gpt-3.5-turbo")
		})
	})
}

func TestConversationHandler(t *testing.T) {
	Convey("会话收藏流程", t, func() {
		r := newRouter(memory.New())

		w := do(r, http.MethodPost, "/api/conversations", nil)
		So(w.Code, ShouldEqual, http.StatusCreated)
		sessionID := decode[model.SessionResponse](w).ID
		So(sessionID, ShouldNotBeEmpty)

		Convey("没有完整配对时保存", func() {
			w := do(r, http.MethodPost, "/api/conversations/"+sessionID+"/bookmark", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[model.SaveBookmarkResponse](w).Outcome, ShouldEqual, "no_complete_pair")

			w = do(r, http.MethodGet, "/api/conversations/"+sessionID+"/pair", nil)
			So(w.Body.String(), ShouldContainSubstring, `"pair":null`)
		})

		Convey("对话后保存，再次保存为重复", func() {
			w := do(r, http.MethodPost, "/api/chat", gin.H{"content": "Hi", "model": "test_mode", "session_id": sessionID})
			So(w.Code, ShouldEqual, http.StatusOK)

			w = do(r, http.MethodPost, "/api/conversations/"+sessionID+"/bookmark", nil)
			resp := decode[model.SaveBookmarkResponse](w)
			So(resp.Outcome, ShouldEqual, "saved")
			So(resp.Bookmark.UserContent(), ShouldEqual, "Hi")

			w = do(r, http.MethodPost, "/api/conversations/"+sessionID+"/bookmark", nil)
			So(decode[model.SaveBookmarkResponse](w).Outcome, ShouldEqual, "duplicate")

			w = do(r, http.MethodGet, "/api/bookmarks", nil)
			So(decode[model.BookmarkListResponse](w).Total, ShouldEqual, 1)
		})

		Convey("记录客户端消息", func() {
			w := do(r, http.MethodPost, "/api/conversations/"+sessionID+"/messages", gin.H{"content": "Q", "role": "user"})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[model.PairResponse](w).State, ShouldEqual, "awaiting_assistant")

			w = do(r, http.MethodPost, "/api/conversations/"+sessionID+"/messages", gin.H{"content": "x", "role": "robot"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w = do(r, http.MethodPost, "/api/conversations/"+sessionID+"/messages", gin.H{"content": "oops", "role": "error"})
			So(decode[model.PairResponse](w).State, ShouldEqual, "awaiting_user")

			w = do(r, http.MethodPost, "/api/conversations/"+sessionID+"/messages", gin.H{"content": "A", "role": "assistant"})
			So(w.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("删除会话", func() {
			So(do(r, http.MethodDelete, "/api/conversations/"+sessionID, nil).Code, ShouldEqual, http.StatusNoContent)
			w := do(r, http.MethodDelete, "/api/conversations/"+sessionID, nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode[ErrorResponse](w).Code, ShouldEqual, 40401)
		})
	})
}

func TestBookmarkHandler(t *testing.T) {
	pair := gin.H{
		"user":      gin.H{"content": "Hi", "role": "user"},
		"assistant": gin.H{"content": "Hello", "role": "assistant", "metadata": gin.H{"model": "gpt-3.5-turbo", "timestamp": "2024-01-01T00:00:00Z"}},
	}

	Convey("收藏接口", t, func() {
		r := newRouter(memory.New())

		w := do(r, http.MethodPost, "/api/bookmarks", pair)
		So(w.Code, ShouldEqual, http.StatusOK)
		saved := decode[model.SaveBookmarkResponse](w)
		So(saved.Outcome, ShouldEqual, "saved")

		Convey("重复保存不是错误", func() {
			w := do(r, http.MethodPost, "/api/bookmarks", pair)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[model.SaveBookmarkResponse](w).Outcome, ShouldEqual, "duplicate")
		})

		Convey("无效配对返回 400", func() {
			w := do(r, http.MethodPost, "/api/bookmarks", gin.H{
				"user":      gin.H{"content": "Hi", "role": "user"},
				"assistant": gin.H{"content": "Hello", "role": "assistant"},
			})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("导出", func() {
			w := do(r, http.MethodGet, "/api/bookmarks/export", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/markdown")
			So(w.Body.String(), ShouldContainSubstring, "*Model: GPT-3.5 • 2024-01-01T00:00:00Z*")

			w = do(r, http.MethodGet, "/api/bookmarks/export?format=html", nil)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/html")
			So(w.Body.String(), ShouldContainSubstring, "<h1>Bookmarks</h1>")

			w = do(r, http.MethodGet, "/api/bookmarks/export?format=pdf", nil)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("删除", func() {
			path := "/api/bookmarks/" + strconvID(saved.Bookmark.ID)
			w := do(r, http.MethodDelete, path, nil)
			So(decode[model.RemoveBookmarkResponse](w).Removed, ShouldBeTrue)

			w = do(r, http.MethodDelete, path, nil)
			So(decode[model.RemoveBookmarkResponse](w).Removed, ShouldBeFalse)

			w = do(r, http.MethodDelete, "/api/bookmarks/abc", nil)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[ErrorResponse](w).Code, ShouldEqual, 40002)
		})
	})

	Convey("存储不可用返回 503", t, func() {
		r := newRouter(unavailableStore{Store: memory.New()})
		w := do(r, http.MethodGet, "/api/bookmarks", nil)
		So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		So(decode[ErrorResponse](w).Code, ShouldEqual, 50301)
	})
}

func TestBookmarkEvents(t *testing.T) {
	Convey("websocket 推送刷新事件", t, func() {
		srv := httptest.NewServer(newRouter(memory.New()))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/bookmarks/events"
		conn, _, err := websocket.Dial(ctx, url, nil)
		So(err, ShouldBeNil)
		defer conn.Close(websocket.StatusNormalClosure, "")

		// 订阅在握手后注册，重试直到收到事件
		received := make(chan model.ChangeEvent, 1)
		go func() {
			var ev model.ChangeEvent
			if err := wsjson.Read(ctx, conn, &ev); err == nil {
				received <- ev
			}
		}()

		var ev model.ChangeEvent
		for i := 0; i < 50 && ev.Type == ""; i++ {
			body := gin.H{
				"user":      gin.H{"content": "Q" + strconvID(int64(i)), "role": "user"},
				"assistant": gin.H{"content": "A", "role": "assistant", "metadata": gin.H{"model": "m", "timestamp": "t"}},
			}
			resp, err := http.Post(srv.URL+"/api/bookmarks", "application/json", jsonBody(body))
			So(err, ShouldBeNil)
			resp.Body.Close()

			select {
			case ev = <-received:
			case <-time.After(50 * time.Millisecond):
			}
		}
		So(ev, ShouldResemble, model.ChangeEvent{Type: "refresh", Key: "chatBookmarks"})
	})
}

func TestPreferenceHandler(t *testing.T) {
	Convey("偏好设置接口", t, func() {
		r := newRouter(memory.New())

		w := do(r, http.MethodGet, "/api/preferences/theme", nil)
		So(decode[model.ThemeResponse](w).Theme, ShouldEqual, "dark")

		w = do(r, http.MethodPost, "/api/preferences/theme/toggle", nil)
		So(decode[model.ThemeResponse](w).Theme, ShouldEqual, "light")

		w = do(r, http.MethodPut, "/api/preferences/theme", gin.H{"theme": "purple"})
		So(w.Code, ShouldEqual, http.StatusBadRequest)
		So(decode[ErrorResponse](w).Code, ShouldEqual, 40002)

		w = do(r, http.MethodPut, "/api/preferences/profile", gin.H{"name": "Ada", "parent-name": "Byron"})
		So(w.Code, ShouldEqual, http.StatusOK)

		w = do(r, http.MethodGet, "/api/preferences/profile", nil)
		profile := decode[model.Profile](w)
		So(profile.Name, ShouldEqual, "Ada")
		So(profile.ParentName, ShouldEqual, "Byron")
	})
}

func strconvID(v int64) string {
	return strconv.FormatInt(v, 10)
}

func jsonBody(v any) *bytes.Buffer {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(v)
	return &buf
}
