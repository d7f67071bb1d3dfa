package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nygula/Taoda/internal/errors"
	"github.com/nygula/Taoda/internal/model"
	"github.com/nygula/Taoda/internal/service/merge"
	"github.com/nygula/Taoda/internal/util"
)

// MatchRequest 匹配 / 生成请求
type MatchRequest struct {
	SourceID   string `json:"sourceId" binding:"required"`
	TemplateID string `json:"templateId" binding:"required"`
	Fuzzy      *bool  `json:"fuzzy"` // 为空时使用配置
}

// MatchResponse 匹配结果
type MatchResponse struct {
	*model.MatchResult
	FullyMatched bool   `json:"fullyMatched"`
	Summary      string `json:"summary"`
}

// Match 匹配 Excel 列标题与模板变量
// POST /api/match
func (h *Handler) Match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	src, tmpl, err := h.lookupUploads(req)
	if err != nil {
		respondError(c, err)
		return
	}

	opts := h.mergeOptions(c, req.Fuzzy)
	result, err := merge.Match(src.data, tmpl.template, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	h.uploads.setMatch(&cachedMatch{
		sourceID:   req.SourceID,
		templateID: req.TemplateID,
		fuzzy:      opts.Fuzzy,
		result:     result,
	})

	c.JSON(http.StatusOK, MatchResponse{
		MatchResult:  result,
		FullyMatched: result.IsFullyMatched(),
		Summary:      util.MatchSummary(result),
	})
}

func (h *Handler) lookupUploads(req MatchRequest) (*sourceUpload, *templateUpload, error) {
	src, ok := h.uploads.source(req.SourceID)
	if !ok {
		return nil, nil, errors.NewNotFoundError("source", req.SourceID)
	}
	tmpl, ok := h.uploads.template(req.TemplateID)
	if !ok {
		return nil, nil, errors.NewNotFoundError("template", req.TemplateID)
	}
	return src, tmpl, nil
}
