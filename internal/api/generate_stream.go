package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nygula/Taoda/internal/exporter"
	"github.com/nygula/Taoda/internal/generator"
	"github.com/nygula/Taoda/internal/model"
	"github.com/nygula/Taoda/internal/service/merge"
	"github.com/nygula/Taoda/internal/util"
)

type generateEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// GenerateStream 批量生成文档（SSE 进度 + 完成后提供 zip 下载地址）
// POST /api/generate/stream
func (h *Handler) GenerateStream(c *gin.Context) {
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
	var job *merge.Job
	if result, ok := h.uploads.cachedMatch(req.SourceID, req.TemplateID, opts.Fuzzy); ok {
		job = merge.NewJob(src.data, tmpl.template, result, opts)
	} else if job, err = merge.Prepare(src.data, tmpl.template, opts); err != nil {
		respondError(c, err)
		return
	}

	h.purgeOutputs()
	outputDir := filepath.Join(h.outputsDir(), time.Now().Format("20060102-150405")+"-"+uuid.NewString()[:8])
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建输出目录失败"})
		return
	}

	runID, err := h.store.CreateRun(tmpl.fileName, src.fileName, outputDir, len(job.Records))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	send := func(typ, message string, data any) {
		b, err := json.Marshal(generateEvent{Type: typ, Message: message, Data: data, Timestamp: time.Now()})
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	gen := merge.NewGenerator(opts)
	for ev := range gen.Start(c.Request.Context(), job.Request(outputDir)) {
		switch ev.Type {
		case generator.EventStart:
			send("start", "开始生成", gin.H{"total": ev.Total, "runId": runID})
		case generator.EventProgress:
			send("progress", util.FormatProgress(ev.Completed, ev.Total), gin.H{"completed": ev.Completed, "total": ev.Total})
		case generator.EventRecordFailed:
			send("record_failed", ev.Failure.Error, ev.Failure)
		case generator.EventError:
			h.completeRun(runID, ev.Outcome, ev.Err)
			send("error", "生成失败: "+ev.Err.Error(), gin.H{"runId": runID, "completed": ev.Completed})
		case generator.EventDone:
			h.completeRun(runID, ev.Outcome, nil)
			h.finishGeneration(send, job, ev.Outcome, runID, outputDir)
		}
	}
}

// finishGeneration 写报告、打包输出并发送 done 事件
func (h *Handler) finishGeneration(send func(string, string, any), job *merge.Job, outcome *model.BatchOutcome, runID, outputDir string) {
	files := append([]string{}, outcome.Files...)
	if h.cfg.Generation.WriteReport {
		report, err := job.WriteReport(outputDir, outcome)
		if err != nil {
			h.logger.Warn().Err(err).Str("runId", runID).Msg("write report failed")
		} else {
			files = append(files, report)
		}
	}

	data := gin.H{
		"succeeded": outcome.Succeeded,
		"failed":    outcome.Failed(),
		"total":     outcome.Total,
		"runId":     runID,
	}

	if len(files) > 0 {
		zipPath, err := packageOutputs(files, func(p exporter.ProgressEvent) {
			send("packaging", "打包 "+util.FormatProgress(p.Done, p.Total), gin.H{"done": p.Done, "total": p.Total, "name": p.Name})
		})
		if err != nil {
			send("error", "打包输出失败: "+err.Error(), gin.H{"runId": runID})
			return
		}
		token := h.downloads.put(zipPath, fmt.Sprintf("taoda_%s.zip", filepath.Base(outputDir)), downloadTTL)
		data["downloadUrl"] = "/api/generate/download/" + token
	}

	send("done", util.GenerationSummary(outcome.Succeeded, outputDir), data)
}

func (h *Handler) completeRun(runID string, outcome *model.BatchOutcome, runErr error) {
	if err := h.store.CompleteRun(runID, outcome, runErr); err != nil {
		h.logger.Error().Err(err).Str("runId", runID).Msg("record generation run failed")
	}
}

func packageOutputs(files []string, progress func(exporter.ProgressEvent)) (string, error) {
	f, err := os.CreateTemp("", "taoda_outputs_*.zip")
	if err != nil {
		return "", err
	}
	if err := exporter.WriteArchive(f, files, progress); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Download 下载生成结果 zip（一次性）
// GET /api/generate/download/:token
func (h *Handler) Download(c *gin.Context) {
	item, ok := h.downloads.take(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}
	defer os.Remove(item.filePath)

	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
		return
	}
	c.FileAttachment(item.filePath, item.fileName)
}
