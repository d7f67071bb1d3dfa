package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态
type StatusResponse struct {
	Version      string  `json:"version"`
	DataDir      string  `json:"dataDir"`
	FuzzyEnabled bool    `json:"fuzzyEnabled"`
	Threshold    float64 `json:"threshold"`
	Strict       bool    `json:"strict"`
	UniqueNames  bool    `json:"uniqueNames"`
	Sources      int     `json:"sources"`   // 已上传数据文件数
	Templates    int     `json:"templates"` // 已上传模板数
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	sources, templates := h.uploads.counts()
	c.JSON(http.StatusOK, StatusResponse{
		Version:      h.version,
		DataDir:      h.dataDir,
		FuzzyEnabled: h.cfg.Matching.FuzzyEnabled,
		Threshold:    h.cfg.Matching.Threshold,
		Strict:       h.cfg.Generation.Strict,
		UniqueNames:  h.cfg.Generation.UniqueNames,
		Sources:      sources,
		Templates:    templates,
	})
}
