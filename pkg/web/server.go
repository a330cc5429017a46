package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petpark/pkg/config"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/lk2023060901/petpark/pkg/web/middleware"
)

// Server 基于 gin 的 HTTP 服务，实现 app.Server
type Server struct {
	engine *gin.Engine
	cfg    *Config
	logger logger.Logger
	server *http.Server
}

// ServerOption 服务选项
type ServerOption func(*Server)

// WithMiddleware 追加全局中间件 (在基础中间件之后)
func WithMiddleware(handlers ...gin.HandlerFunc) ServerOption {
	return func(s *Server) { s.engine.Use(handlers...) }
}

// NewServer 创建服务并挂载基础中间件
func NewServer(cfg *Config, l logger.Logger, opts ...ServerOption) (*Server, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge web config: %w", err)
	}
	if merged.Addr == "" {
		return nil, fmt.Errorf("%w: addr is empty", ErrInvalidConfig)
	}
	if l == nil {
		l = logger.Default()
	}

	gin.SetMode(merged.Mode)
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(l.Named("web.access")))
	engine.Use(middleware.Recovery(l.Named("web.recovery")))
	if merged.EnableCORS {
		engine.Use(middleware.CORS())
	}

	s := &Server{
		engine: engine,
		cfg:    merged,
		logger: l.Named("web.server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Router 返回 gin 引擎用于注册路由
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Handler 返回 http.Handler，测试中配合 httptest 使用
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start 监听端口并在后台提供服务
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}

	s.server = &http.Server{
		Handler:        s.engine,
		ReadTimeout:    s.cfg.ReadTimeout,
		WriteTimeout:   s.cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	s.logger.Info("starting http server", "addr", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

// Stop 优雅关闭
func (s *Server) Stop() error {
	if s.server == nil {
		return ErrServerNotStarted
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("http server exited")
	return nil
}
