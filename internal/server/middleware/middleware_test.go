package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"tutor/internal/pkg/ctxutil"
	"tutor/internal/pkg/id"
)

func newEngine(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Recovery(), RequestID(), Logger(), CORS(origins))
	engine.GET("/ping", func(c *gin.Context) {
		requestID, _ := ctxutil.GetRequestID(c.Request.Context())
		c.String(http.StatusOK, requestID)
	})
	engine.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return engine
}

func TestRequestID(t *testing.T) {
	Convey("请求 ID", t, func() {
		engine := newEngine(nil)

		Convey("没有传入时生成新的", func() {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

			So(w.Code, ShouldEqual, http.StatusOK)
			So(id.IsValid(w.Header().Get(RequestIDHeader)), ShouldBeTrue)
			So(w.Body.String(), ShouldEqual, w.Header().Get(RequestIDHeader))
		})

		Convey("沿用合法的传入 ID", func() {
			incoming := id.New()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set(RequestIDHeader, incoming)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			So(w.Header().Get(RequestIDHeader), ShouldEqual, incoming)
		})

		Convey("非法的传入 ID 被替换", func() {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set(RequestIDHeader, "not-a-uuid")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			So(w.Header().Get(RequestIDHeader), ShouldNotEqual, "not-a-uuid")
		})
	})
}

func TestRecovery(t *testing.T) {
	Convey("panic 转换为 500", t, func() {
		w := httptest.NewRecorder()
		newEngine(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		So(w.Code, ShouldEqual, http.StatusInternalServerError)
		So(w.Body.String(), ShouldContainSubstring, `"code":50000`)
	})
}

func TestCORS(t *testing.T) {
	Convey("跨域", t, func() {
		Convey("未配置时允许所有来源", func() {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", "http://example.com")
			w := httptest.NewRecorder()
			newEngine(nil).ServeHTTP(w, req)

			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})

		Convey("只允许配置的来源", func() {
			engine := newEngine([]string{"http://localhost:3000"})

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://localhost:3000")

			req = httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", "http://evil.example")
			w = httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
		})

		Convey("预检请求返回 204", func() {
			req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
			req.Header.Set("Origin", "http://example.com")
			w := httptest.NewRecorder()
			newEngine(nil).ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNoContent)
		})
	})
}
