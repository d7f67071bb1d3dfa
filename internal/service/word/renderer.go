package word

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nygula/Taoda/internal/errors"
	"github.com/nygula/Taoda/internal/model"
)

// Renderer 基于 .docx 模板的单文档渲染器
type Renderer struct {
	// Strict 为 true 时，记录中缺少模板变量视为渲染失败；否则保留占位符原文
	Strict bool
}

// NewRenderer 创建渲染器
func NewRenderer(strict bool) *Renderer {
	return &Renderer{Strict: strict}
}

// Extension 输出文件扩展名
func (r *Renderer) Extension() string {
	return ".docx"
}

// Render 用一条记录填充模板并写入 outputPath
// 先写入同目录临时文件再重命名，失败时不会留下半成品
func (r *Renderer) Render(ctx context.Context, templatePath string, record model.Record, outputPath string) error {
	if strings.TrimSpace(templatePath) == "" {
		return errors.NewValidationError("templatePath", "模板文件路径不能为空")
	}
	if record == nil {
		return errors.NewValidationError("record", "数据不能为空")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.NewValidationError("outputPath", "输出文件路径不能为空")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(templatePath); err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("template", templatePath)
		}
		return errors.NewRenderError(outputPath, "stat template", err)
	}

	archive, err := zip.OpenReader(templatePath)
	if err != nil {
		return errors.NewRenderError(outputPath, "open template", err)
	}
	defer archive.Close()

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewRenderError(outputPath, "create output directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".taoda-*.tmp")
	if err != nil {
		return errors.NewRenderError(outputPath, "create temp file", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, f := range archive.File {
		if !isContentPart(f.Name) {
			if err := zw.Copy(f); err != nil {
				return errors.NewRenderError(outputPath, "copy "+f.Name, err)
			}
			continue
		}

		content, err := readEntry(f)
		if err != nil {
			return errors.NewRenderError(outputPath, "read "+f.Name, err)
		}
		filled, err := r.fill(content, record)
		if err != nil {
			return errors.NewRenderError(outputPath, f.Name, err)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return errors.NewRenderError(outputPath, "write "+f.Name, err)
		}
		if _, err := w.Write([]byte(filled)); err != nil {
			return errors.NewRenderError(outputPath, "write "+f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return errors.NewRenderError(outputPath, "finalize archive", err)
	}
	// CreateTemp 为 0600，重命名后沿用，需改为常规文档权限
	if err := tmp.Chmod(0644); err != nil {
		return errors.NewRenderError(outputPath, "chmod temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewRenderError(outputPath, "close temp file", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		committed = true
		return errors.NewRenderError(outputPath, "rename output", err)
	}
	committed = true
	return nil
}

// fill 替换一个 XML 部件中的占位符
func (r *Renderer) fill(content string, record model.Record) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(mergeSplitPlaceholders(content), func(m string) string {
		name := placeholderName(m)
		value, ok := lookup(record, name)
		if !ok {
			missing = append(missing, name)
			return m
		}
		return escapeValue(FormatValue(value))
	})
	if r.Strict && len(missing) > 0 {
		return "", fmt.Errorf("missing values for placeholders: %s", strings.Join(dedupe(missing), ", "))
	}
	return out, nil
}

// lookup 先精确查找，再忽略大小写查找；多个键忽略大小写相同时取字典序最小者
func lookup(record model.Record, name string) (any, bool) {
	if v, ok := record[name]; ok {
		return v, true
	}
	var keys []string
	for k := range record {
		if strings.EqualFold(k, name) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, false
	}
	sort.Strings(keys)
	return record[keys[0]], true
}

// FormatValue 将单元格值格式化为文本
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return val.Format("2006-01-02")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// escapeValue 转义 XML 特殊字符，换行转为 Word 换行
func escapeValue(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	escaped := strings.ReplaceAll(b.String(), "&#xD;&#xA;", "&#xA;")
	return strings.ReplaceAll(escaped, "&#xA;", `</w:t><w:br/><w:t xml:space="preserve">`)
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
