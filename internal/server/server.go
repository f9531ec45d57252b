package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "tutor/docs"
	"tutor/internal/ai"
	"tutor/internal/config"
	"tutor/internal/handler"
	"tutor/internal/pkg/conversation"
	"tutor/internal/pkg/kvfactory"
	"tutor/internal/pkg/kvstore"
	"tutor/internal/pkg/portfinder"
	"tutor/internal/repository"
	"tutor/internal/server/middleware"
	"tutor/internal/service"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	kv     kvstore.Store
	ai     *ai.Client

	chatSvc     *service.ChatService
	bookmarkSvc *service.BookmarkService
	prefSvc     *service.PreferenceService

	port atomic.Int64
}

// New 创建服务器实例
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化键值存储
	kv, err := kvfactory.NewStore(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.Info().Str("storage", kv.Type()).Str("key", cfg.Bookmark.Key).Msg("bookmark storage ready")

	aiClient := ai.NewClient(&cfg.AI)
	sessions := conversation.NewRegistry()

	srv := &Server{
		cfg:         cfg,
		engine:      gin.New(),
		kv:          kv,
		ai:          aiClient,
		chatSvc:     service.NewChatService(aiClient, sessions),
		bookmarkSvc: service.NewBookmarkService(repository.NewBookmarkRepo(kv, cfg.Bookmark.Key, nil), sessions),
		prefSvc:     service.NewPreferenceService(repository.NewPreferenceRepo(kv)),
	}
	srv.port.Store(int64(cfg.Server.Port))

	if cfg.Bookmark.SeedExample {
		if _, err := srv.bookmarkSvc.SeedExample(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to seed example bookmark")
		}
	}

	// 设置路由
	srv.setupRoutes()

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS(s.cfg.Server.AllowedOrigins))

	// 健康检查
	healthHandler := handler.NewHealthHandler(s.Port)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	chatHdl := handler.NewChatHandler(s.chatSvc)
	convHdl := handler.NewConversationHandler(s.chatSvc, s.bookmarkSvc)
	bookmarkHdl := handler.NewBookmarkHandler(s.bookmarkSvc, s.cfg.Server.AllowedOrigins)
	prefHdl := handler.NewPreferenceHandler(s.prefSvc)

	api := s.engine.Group("/api")
	{
		// 对话
		api.POST("/chat", chatHdl.Chat)
		api.GET("/models", chatHdl.Models)

		// 会话
		api.POST("/conversations", convHdl.Create)
		api.DELETE("/conversations/:id", convHdl.Delete)
		api.POST("/conversations/:id/messages", convHdl.RecordMessage)
		api.GET("/conversations/:id/pair", convHdl.LatestPair)
		api.POST("/conversations/:id/bookmark", convHdl.Bookmark)

		// 收藏
		api.GET("/bookmarks", bookmarkHdl.List)
		api.POST("/bookmarks", bookmarkHdl.Save)
		api.GET("/bookmarks/export", bookmarkHdl.Export)
		api.GET("/bookmarks/events", bookmarkHdl.Events)
		api.DELETE("/bookmarks/:id", bookmarkHdl.Remove)

		// 偏好设置
		api.GET("/preferences/theme", prefHdl.GetTheme)
		api.PUT("/preferences/theme", prefHdl.SetTheme)
		api.POST("/preferences/theme/toggle", prefHdl.ToggleTheme)
		api.GET("/preferences/profile", prefHdl.GetProfile)
		api.PUT("/preferences/profile", prefHdl.SetProfile)
	}
}

// Run 启动服务器，端口为 0 时在配置的范围内查找并写入端口文件
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.listen()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 监听其他进程对存储的修改
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		if err := s.bookmarkSvc.WatchStore(watchCtx, s.kv); err != nil {
			log.Warn().Err(err).Msg("storage watch stopped")
		}
	}()

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")
		err := srv.Shutdown(context.Background())
		s.Close()
		return err
	case err := <-errCh:
		s.Close()
		return err
	}
}

// Close 结束变更订阅，释放存储和 AI 客户端
func (s *Server) Close() {
	s.bookmarkSvc.Close()
	if err := s.kv.Close(); err != nil {
		log.Error().Err(err).Str("storage", s.kv.Type()).Msg("failed to close storage")
	}
	if err := s.ai.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close AI client")
	}
}

// Port 实际监听端口
func (s *Server) Port() int {
	return int(s.port.Load())
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) listen() (net.Listener, error) {
	cfg := s.cfg.Server
	if cfg.Port != 0 {
		ln, err := net.Listen("tcp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
		if err != nil {
			return nil, err
		}
		s.port.Store(int64(cfg.Port))
		return ln, nil
	}

	ln, port, err := portfinder.Listen(cfg.Host, cfg.PortRangeStart, cfg.PortRangeEnd)
	if err != nil {
		return nil, err
	}
	s.port.Store(int64(port))

	if cfg.PortFile != "" {
		if err := portfinder.Save(cfg.PortFile, port); err != nil {
			log.Warn().Err(err).Str("path", cfg.PortFile).Msg("failed to write port file")
		} else {
			log.Info().Int("port", port).Str("path", cfg.PortFile).Msg("port file written")
		}
	}
	return ln, nil
}
