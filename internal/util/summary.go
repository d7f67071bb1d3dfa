package util

import (
	"fmt"

	"github.com/nygula/Taoda/internal/model"
)

// MatchSummary 变量匹配结果的状态栏文案
func MatchSummary(r *model.MatchResult) string {
	if r == nil {
		return ""
	}
	if r.IsFullyMatched() {
		return fmt.Sprintf("变量匹配完成：所有 %d 个变量完全匹配", len(r.Matched))
	}
	return fmt.Sprintf("变量匹配完成：%d 个匹配，%d 个Excel变量未匹配，%d 个模板变量未匹配",
		len(r.Matched), len(r.UnmatchedSource), len(r.UnmatchedTarget))
}

// GenerationSummary 批量生成完成文案
func GenerationSummary(succeeded int, outputDir string) string {
	return fmt.Sprintf("文档生成完成！成功生成 %d 个文档，保存在：%s", succeeded, outputDir)
}

// FormatProgress 格式化 "已完成/总数"
func FormatProgress(done, total int) string {
	if total <= 0 {
		return fmt.Sprintf("%d", done)
	}
	return fmt.Sprintf("%d/%d (%.0f%%)", done, total, float64(done)*100/float64(total))
}
