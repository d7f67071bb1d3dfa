package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nygula/Taoda/internal/api"
	"github.com/nygula/Taoda/internal/config"
	"github.com/nygula/Taoda/internal/logging"
	"github.com/nygula/Taoda/internal/store"
)

// devFrontend 开发模式下前端开发服务器地址
const devFrontend = "http://localhost:5173"

// Server HTTP 服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
	logger *zerolog.Logger
}

// NewServer 创建服务器：准备数据目录、打开生成历史数据库并注册路由
func NewServer(cfg *config.AppConfig, version string) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("prepare data directory: %w", err)
	}

	st, err := store.New(filepath.Join(dataDir, store.DefaultFileName))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	logger := logging.Default()
	s := &Server{
		router: gin.New(),
		store:  st,
		logger: logger,
		api: api.NewHandler(api.Options{
			Config:  cfg,
			DataDir: dataDir,
			Store:   st,
			Logger:  logger,
			Version: version,
		}),
	}
	s.setupRoutes(devMode, version)
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool, version string) {
	s.router.Use(gin.Recovery(), requestLogger(s.logger))

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.api.RegisterRoutes(s.router.Group("/api"))

	if devMode {
		// 开发模式：页面请求转到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, devFrontend+c.Request.URL.Path)
		})
		return
	}

	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "taoda", "version": version, "api": "/api"})
	})
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// requestLogger 为每个请求附带 request_id 的 logger 放入 context，并在结束时记录请求
func requestLogger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := logger.With().Str("request_id", uuid.NewString()[:8]).Logger()
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), &reqLogger))
		c.Next()

		event := reqLogger.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = reqLogger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Handler 返回路由，供 http.Server 与测试使用
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close 关闭数据库
func (s *Server) Close() error {
	return s.store.Close()
}
