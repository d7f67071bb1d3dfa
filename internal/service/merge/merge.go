// Package merge 串联读取、变量匹配与批量生成，供 CLI 与 HTTP 接口共用。
package merge

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/nygula/Taoda/internal/config"
	"github.com/nygula/Taoda/internal/exporter"
	"github.com/nygula/Taoda/internal/generator"
	"github.com/nygula/Taoda/internal/logging"
	"github.com/nygula/Taoda/internal/matching"
	"github.com/nygula/Taoda/internal/model"
	"github.com/nygula/Taoda/internal/service/excel"
	"github.com/nygula/Taoda/internal/service/word"
)

// Options 匹配与生成参数
type Options struct {
	Fuzzy       bool
	Threshold   float64
	Remap       bool
	Strict      bool
	UniqueNames bool
	Logger      *zerolog.Logger
}

// OptionsFromConfig 由应用配置得到默认参数
func OptionsFromConfig(cfg *config.AppConfig) Options {
	return Options{
		Fuzzy:       cfg.Matching.FuzzyEnabled,
		Threshold:   cfg.Matching.Threshold,
		Remap:       cfg.Generation.RemapMatched,
		Strict:      cfg.Generation.Strict,
		UniqueNames: cfg.Generation.UniqueNames,
	}
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logging.Default()
}

// Job 已读取并完成匹配、可直接生成的任务
type Job struct {
	Source   *model.ExcelData
	Template *model.Template
	Match    *model.MatchResult
	Records  []model.Record // 按匹配结果补充模板变量名后的记录
}

// LoadSource 读取 Excel 数据
func LoadSource(path string) (*model.ExcelData, error) {
	return excel.ReadFile(path)
}

// LoadTemplate 读取模板并提取变量
func LoadTemplate(path string) (*model.Template, error) {
	vars, err := word.ExtractVariables(path)
	if err != nil {
		return nil, err
	}
	return &model.Template{FilePath: path, Variables: vars}, nil
}

// Match 对 Excel 列标题与模板变量做匹配
func Match(source *model.ExcelData, tmpl *model.Template, opts Options) (*model.MatchResult, error) {
	var headers, vars model.VariableSet
	if source != nil {
		headers = model.VariableSet(source.Headers)
	}
	if tmpl != nil {
		vars = model.VariableSet(tmpl.Variables)
	}
	return matching.NewMatcher(opts.Threshold).Match(headers, vars, opts.Fuzzy)
}

// Prepare 由已读取的数据与模板构建任务
func Prepare(source *model.ExcelData, tmpl *model.Template, opts Options) (*Job, error) {
	result, err := Match(source, tmpl, opts)
	if err != nil {
		return nil, err
	}
	return NewJob(source, tmpl, result, opts), nil
}

// NewJob 由已有匹配结果构建任务，开启 Remap 时为模糊匹配的列补充模板变量名
func NewJob(source *model.ExcelData, tmpl *model.Template, result *model.MatchResult, opts Options) *Job {
	records := source.Rows
	if opts.Remap {
		records = model.RemapAll(source.Rows, result.FuzzyPairs())
	}

	opts.logger().Info().
		Int("matched", len(result.Matched)).
		Int("unmatchedSource", len(result.UnmatchedSource)).
		Int("unmatchedTarget", len(result.UnmatchedTarget)).
		Int("records", len(records)).
		Msg("variables matched")

	return &Job{Source: source, Template: tmpl, Match: result, Records: records}
}

// PrepareFiles 读取文件并构建任务
func PrepareFiles(sourcePath, templatePath string, opts Options) (*Job, error) {
	source, err := LoadSource(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件失败: %w", err)
	}
	tmpl, err := LoadTemplate(templatePath)
	if err != nil {
		return nil, fmt.Errorf("读取模板失败: %w", err)
	}
	return Prepare(source, tmpl, opts)
}

// NewGenerator 创建使用 Word 渲染器的生成器
func NewGenerator(opts Options) *generator.Generator {
	return generator.New(
		word.NewRenderer(opts.Strict),
		generator.WithLogger(opts.logger()),
		generator.WithUniqueNames(opts.UniqueNames),
	)
}

// Request 任务对应的生成请求
func (j *Job) Request(outputDir string) generator.Request {
	return generator.Request{
		TemplatePath: j.Template.FilePath,
		Records:      j.Records,
		OutputDir:    outputDir,
	}
}

// ReportFileName 生成报告文件名，写在输出目录下
const ReportFileName = "生成报告.xlsx"

// WriteReport 在输出目录写出匹配与生成报告，返回报告路径
func (j *Job) WriteReport(outputDir string, outcome *model.BatchOutcome) (string, error) {
	path := filepath.Join(outputDir, ReportFileName)
	if err := exporter.WriteReport(path, j.Match, outcome); err != nil {
		return "", err
	}
	return path, nil
}
