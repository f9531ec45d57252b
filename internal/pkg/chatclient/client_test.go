package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"tutor/internal/model"
	"tutor/internal/pkg/portfinder"
)

func TestResolveServerURL(t *testing.T) {
	Convey("解析服务地址", t, func() {
		portFile := filepath.Join(t.TempDir(), "server_port.json")

		So(ResolveServerURL("http://example:9000", portFile), ShouldEqual, "http://example:9000")
		So(ResolveServerURL("", portFile), ShouldEqual, DefaultServerURL)

		So(portfinder.Save(portFile, 8042), ShouldBeNil)
		So(ResolveServerURL("", portFile), ShouldEqual, "http://localhost:8042")
	})
}

func TestClient(t *testing.T) {
	Convey("对话客户端", t, func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			switch r.URL.Path {
			case "/api/chat":
				var req model.ChatRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				if req.Content == "fail" {
					w.WriteHeader(http.StatusBadGateway)
					_, _ = w.Write([]byte(`{"code":50201,"message":"Chat provider failed","detail":"boom"}`))
					return
				}
				_ = json.NewEncoder(w).Encode(model.ChatResponse{
					Content:  "Test response to: " + req.Content,
					Role:     model.RoleAssistant,
					Model:    req.Model,
					Metadata: &model.Metadata{Model: req.Model, Timestamp: "2024-01-01T00:00:00Z"},
				})
			case "/api/models":
				_, _ = w.Write([]byte(`{"models":["gpt-3.5-turbo","test_mode"],"default":"gpt-3.5-turbo"}`))
			case "/health":
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		ctx := context.Background()
		client := NewClient(&Config{ServerURL: srv.URL + "/", Timeout: time.Second, MaxRetries: 3})
		So(client.BaseURL(), ShouldEqual, srv.URL)

		Convey("发送用户消息", func() {
			resp, err := client.SendUserMessage(ctx, "Hi", "test_mode")
			So(err, ShouldBeNil)
			So(resp.Content, ShouldEqual, "Test response to: Hi")
			So(resp.Metadata.Model, ShouldEqual, "test_mode")
		})

		Convey("服务端错误不重试", func() {
			_, err := client.SendUserMessage(ctx, "fail", "gpt-4")
			So(errors.Is(err, ErrTransport), ShouldBeTrue)

			var statusErr *StatusError
			So(errors.As(err, &statusErr), ShouldBeTrue)
			So(statusErr.StatusCode, ShouldEqual, http.StatusBadGateway)
			So(statusErr.Body.Detail, ShouldEqual, "boom")
			So(calls.Load(), ShouldEqual, 1)
		})

		Convey("模型列表和健康检查", func() {
			models, err := client.Models(ctx)
			So(err, ShouldBeNil)
			So(models.Models, ShouldResemble, []string{"gpt-3.5-turbo", "test_mode"})
			So(client.Health(ctx), ShouldBeNil)
		})
	})

	Convey("超时后只重试幂等请求", t, func() {
		var chats, lists atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/chat":
				chats.Add(1)
			case "/api/models":
				lists.Add(1)
			}
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		client := NewClient(&Config{ServerURL: srv.URL, Timeout: 50 * time.Millisecond, MaxRetries: 3, RetryDelay: time.Millisecond})

		_, err := client.SendUserMessage(context.Background(), "Hi", "gpt-3.5-turbo")
		So(errors.Is(err, ErrTransport), ShouldBeTrue)
		So(chats.Load(), ShouldEqual, 1)

		_, err = client.Models(context.Background())
		So(errors.Is(err, ErrTransport), ShouldBeTrue)
		So(lists.Load(), ShouldEqual, 3)
	})

	Convey("连接被拒绝时 POST 也会重试", t, func() {
		So(retryable(http.MethodPost, &net.OpError{Op: "dial", Err: errors.New("connection refused")}), ShouldBeTrue)
		So(retryable(http.MethodPost, &net.OpError{Op: "read", Err: errors.New("connection reset")}), ShouldBeFalse)
		So(retryable(http.MethodGet, &StatusError{StatusCode: http.StatusBadGateway}), ShouldBeFalse)
	})

	Convey("服务不可达", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client := NewClient(&Config{ServerURL: url, Timeout: time.Second, MaxRetries: 2, RetryDelay: time.Millisecond})
		_, err := client.SendUserMessage(context.Background(), "Hi", "")
		So(errors.Is(err, ErrTransport), ShouldBeTrue)
	})
}
