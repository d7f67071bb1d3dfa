package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nygula/Taoda/internal/service/merge"
)

// SourceResponse 数据文件上传结果
type SourceResponse struct {
	ID        string   `json:"id"`
	FileName  string   `json:"fileName"`
	Headers   []string `json:"headers"`
	TotalRows int      `json:"totalRows"`
}

// TemplateResponse 模板上传结果
type TemplateResponse struct {
	ID        string   `json:"id"`
	FileName  string   `json:"fileName"`
	Variables []string `json:"variables"`
}

// UploadSource 上传 Excel 数据文件
// POST /api/source (multipart: file)
func (h *Handler) UploadSource(c *gin.Context) {
	id, fileName, path, ok := h.saveUpload(c)
	if !ok {
		return
	}

	data, err := merge.LoadSource(path)
	if err != nil {
		_ = os.Remove(path)
		h.logger.Warn().Err(err).Str("file", fileName).Msg("read source failed")
		respondError(c, err)
		return
	}

	h.uploads.putSource(&sourceUpload{
		id:       id,
		fileName: fileName,
		path:     path,
		data:     data,
	})
	h.logger.Info().Str("id", id).Str("file", fileName).Int("rows", data.TotalRows()).Msg("source uploaded")

	c.JSON(http.StatusOK, SourceResponse{
		ID:        id,
		FileName:  fileName,
		Headers:   data.Headers,
		TotalRows: data.TotalRows(),
	})
}

// UploadTemplate 上传 Word 模板
// POST /api/template (multipart: file)
func (h *Handler) UploadTemplate(c *gin.Context) {
	id, fileName, path, ok := h.saveUpload(c)
	if !ok {
		return
	}

	tmpl, err := merge.LoadTemplate(path)
	if err != nil {
		_ = os.Remove(path)
		h.logger.Warn().Err(err).Str("file", fileName).Msg("read template failed")
		respondError(c, err)
		return
	}

	h.uploads.putTemplate(&templateUpload{
		id:       id,
		fileName: fileName,
		path:     path,
		template: tmpl,
	})
	h.logger.Info().Str("id", id).Str("file", fileName).Int("variables", len(tmpl.Variables)).Msg("template uploaded")

	c.JSON(http.StatusOK, TemplateResponse{
		ID:        id,
		FileName:  fileName,
		Variables: tmpl.Variables,
	})
}

// saveUpload 保存 multipart 的 file 字段到 uploads 目录，文件名为 id 加原扩展名
func (h *Handler) saveUpload(c *gin.Context) (id, fileName, path string, ok bool) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return "", "", "", false
	}

	if err := os.MkdirAll(h.uploadsDir(), 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建上传目录失败"})
		return "", "", "", false
	}

	id = uuid.NewString()
	fileName = filepath.Base(file.Filename)
	path = filepath.Join(h.uploadsDir(), id+strings.ToLower(filepath.Ext(fileName)))
	if err := c.SaveUploadedFile(file, path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return "", "", "", false
	}
	return id, fileName, path, true
}
