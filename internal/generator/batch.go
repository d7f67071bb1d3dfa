// Package generator 按记录逐条生成文档。
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nygula/Taoda/internal/errors"
	"github.com/nygula/Taoda/internal/logging"
	"github.com/nygula/Taoda/internal/model"
)

// ProgressFunc 每尝试完一条记录回调一次，completed 从 1 递增到记录总数
type ProgressFunc func(completed int)

// Generator 批量文档生成器
type Generator struct {
	renderer    Renderer
	logger      *zerolog.Logger
	uniqueNames bool
}

// Option 生成器选项
type Option func(*Generator)

// WithLogger 指定 logger
func WithLogger(logger *zerolog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithUniqueNames 同一批次内文件名重复时追加 _2、_3 后缀
func WithUniqueNames(enabled bool) Option {
	return func(g *Generator) {
		g.uniqueNames = enabled
	}
}

// New 创建生成器
func New(renderer Renderer, opts ...Option) *Generator {
	g := &Generator{
		renderer: renderer,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// recordResult 单条记录的生成结果
type recordResult struct {
	Index    int // 从 0 开始
	FileName string
	Path     string
	Err      error
}

func (r recordResult) failure() model.RecordFailure {
	return model.RecordFailure{Index: r.Index + 1, FileName: r.FileName, Error: r.Err.Error()}
}

// hooks 批处理回调
type hooks struct {
	progress ProgressFunc
	failure  func(model.RecordFailure)
}

// GenerateBatch 按顺序为每条记录生成一个文档，返回汇总结果
//
// 参数在处理前统一校验；单条记录渲染失败只记录日志并跳过，不会中断批次。
// 每尝试一条记录（无论成败）回调一次 onProgress。输出目录在两条记录之间失效时
// 批次中止，返回已累计的结果和 ErrBatchAborted。ctx 取消只在记录之间生效，
// 返回已累计的结果和 ErrCanceled。
func (g *Generator) GenerateBatch(ctx context.Context, templatePath string, records []model.Record, outputDir string, onProgress ProgressFunc) (*model.BatchOutcome, error) {
	return g.run(ctx, templatePath, records, outputDir, hooks{progress: onProgress})
}

func (g *Generator) run(ctx context.Context, templatePath string, records []model.Record, outputDir string, h hooks) (*model.BatchOutcome, error) {
	if g.renderer == nil {
		return nil, errors.NewValidationError("renderer", "renderer is nil")
	}
	if err := checkPreconditions(templatePath, records, outputDir); err != nil {
		return nil, err
	}

	outcome := &model.BatchOutcome{
		Total:    len(records),
		Failures: []model.RecordFailure{},
		Files:    []string{},
	}
	if len(records) == 0 {
		return outcome, nil
	}

	logger := g.logger.With().Str("template", filepath.Base(templatePath)).Str("output_dir", outputDir).Logger()
	logger.Info().Int("records", len(records)).Msg("batch generation started")

	// 渲染调用不受取消影响，保证取消只发生在记录之间
	renderCtx := context.WithoutCancel(ctx)
	used := make(map[string]int)
	written := make(map[string]int) // 输出路径 -> 首次写入的记录序号（从 1 开始）

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			outcome.Canceled = true
			logger.Warn().Int("attempted", outcome.Attempted).Int("succeeded", outcome.Succeeded).Msg("batch generation canceled")
			return outcome, fmt.Errorf("%w after %d of %d records: %w", errors.ErrCanceled, i, len(records), err)
		}
		if err := checkOutputDir(outputDir); err != nil {
			logger.Error().Err(err).Int("attempted", outcome.Attempted).Msg("output directory unavailable, batch aborted")
			return outcome, errors.NewBatchError(i, "output directory unavailable", err)
		}

		res := g.renderOne(renderCtx, templatePath, record, i, outputDir, used)
		outcome.Attempted++
		if res.Err != nil {
			f := res.failure()
			outcome.Failures = append(outcome.Failures, f)
			logger.Warn().Err(res.Err).Int("record", i+1).Str("file", res.FileName).Msg("document generation failed")
			if h.failure != nil {
				h.failure(f)
			}
		} else {
			outcome.Succeeded++
			if first, ok := written[res.Path]; ok {
				logger.Warn().Int("record", i+1).Int("overwritten_record", first).Str("file", res.FileName).Msg("output file overwritten by later record")
			} else {
				written[res.Path] = i + 1
				outcome.Files = append(outcome.Files, res.Path)
			}
			logger.Debug().Int("record", i+1).Str("file", res.FileName).Msg("document generated")
		}

		if h.progress != nil {
			h.progress(i + 1)
		}
	}

	logger.Info().
		Int("succeeded", outcome.Succeeded).
		Int("failed", outcome.Failed()).
		Int("total", outcome.Total).
		Msg("batch generation finished")
	return outcome, nil
}

// renderOne 生成单条记录，失败以结果值返回
func (g *Generator) renderOne(ctx context.Context, templatePath string, record model.Record, index int, outputDir string, used map[string]int) recordResult {
	stem := FileStem(record, index+1)
	if g.uniqueNames {
		key := strings.ToLower(stem)
		used[key]++
		if n := used[key]; n > 1 {
			stem = fmt.Sprintf("%s_%d", stem, n)
		}
	}
	fileName := stem + g.renderer.Extension()
	outputPath := filepath.Join(outputDir, fileName)

	res := recordResult{Index: index, FileName: fileName, Path: outputPath}
	if err := g.renderer.Render(ctx, templatePath, record, outputPath); err != nil {
		res.Err = err
	}
	return res
}

func checkPreconditions(templatePath string, records []model.Record, outputDir string) error {
	if strings.TrimSpace(templatePath) == "" {
		return errors.NewValidationError("templatePath", "模板文件路径不能为空")
	}
	info, err := os.Stat(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("template", templatePath)
		}
		return fmt.Errorf("stat template: %w", err)
	}
	if info.IsDir() {
		return errors.NewValidationError("templatePath", "模板路径是目录")
	}
	if records == nil {
		return errors.NewValidationError("records", "数据列表不能为空")
	}
	if strings.TrimSpace(outputDir) == "" {
		return errors.NewValidationError("outputDir", "输出目录不能为空")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

func checkOutputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
