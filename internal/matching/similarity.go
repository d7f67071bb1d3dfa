// Package matching 将 Excel 列标题与模板变量对齐：先精确匹配（忽略大小写），再可选地按编辑距离模糊匹配。
package matching

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// levenshtein 插入、删除、替换代价均为 1；大小写已由 fold 处理
var levenshtein = &metrics.Levenshtein{
	CaseSensitive: true,
	InsertCost:    1,
	DeleteCost:    1,
	ReplaceCost:   1,
}

// Similarity 计算两个变量名的相似度，取值 [0, 1]，1 表示完全相同
// 比较忽略大小写；相似度 = 1 - 编辑距离 / 较长字符串长度（按 rune 计）
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	a, b = fold(a), fold(b)
	if a == b {
		return 1.0
	}

	return strutil.Similarity(a, b, levenshtein)
}

// fold 统一转为小写；Caser 有状态，不能跨 goroutine 共享，所以每次新建
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// equalFold 忽略大小写比较
func equalFold(a, b string) bool {
	return fold(a) == fold(b)
}
