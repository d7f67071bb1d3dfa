// Package api 提供 Taoda 的 HTTP 接口：上传数据与模板、变量匹配、批量生成（SSE）与生成历史。
package api

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nygula/Taoda/internal/config"
	"github.com/nygula/Taoda/internal/logging"
	"github.com/nygula/Taoda/internal/service/merge"
	"github.com/nygula/Taoda/internal/store"
)

// Handler API 处理器
type Handler struct {
	cfg       *config.AppConfig
	dataDir   string
	store     *store.Store
	uploads   *uploadRegistry
	downloads *downloadStore
	logger    *zerolog.Logger
	version   string
}

// Options 处理器依赖
type Options struct {
	Config  *config.AppConfig
	DataDir string
	Store   *store.Store
	Logger  *zerolog.Logger
	Version string
}

// NewHandler 创建 API 处理器
func NewHandler(opts Options) *Handler {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		cfg:       cfg,
		dataDir:   opts.DataDir,
		store:     opts.Store,
		uploads:   newUploadRegistry(),
		downloads: newDownloadStore(),
		logger:    logger,
		version:   opts.Version,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)

	// 上传
	router.POST("/source", h.UploadSource)
	router.POST("/template", h.UploadTemplate)

	// 变量匹配
	router.POST("/match", h.Match)

	// 批量生成
	router.POST("/generate/stream", h.GenerateStream)
	router.GET("/generate/download/:token", h.Download)

	// 生成历史
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)
}

func (h *Handler) uploadsDir() string {
	return filepath.Join(h.dataDir, config.UploadsDir)
}

func (h *Handler) outputsDir() string {
	return filepath.Join(h.dataDir, config.OutputsDir)
}

// mergeOptions 配置默认值，fuzzy 非空时覆盖；日志使用请求 context 中的 logger
func (h *Handler) mergeOptions(c *gin.Context, fuzzy *bool) merge.Options {
	opts := merge.OptionsFromConfig(h.cfg)
	if fuzzy != nil {
		opts.Fuzzy = *fuzzy
	}
	opts.Logger = h.requestLogger(c)
	return opts
}

// requestLogger 请求 context 中携带 logger 时优先使用
func (h *Handler) requestLogger(c *gin.Context) *zerolog.Logger {
	if logger := logging.FromContext(c.Request.Context()); logger != logging.Default() {
		return logger
	}
	return h.logger
}
