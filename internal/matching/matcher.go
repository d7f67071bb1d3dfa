package matching

import (
	"github.com/nygula/Taoda/internal/errors"
	"github.com/nygula/Taoda/internal/model"
)

// DefaultThreshold 模糊匹配最小相似度
const DefaultThreshold = 0.6

// Matcher 变量匹配器
type Matcher struct {
	// Threshold 模糊匹配最小相似度，<= 0 时使用 DefaultThreshold
	Threshold float64
}

// NewMatcher 创建匹配器
func NewMatcher(threshold float64) *Matcher {
	return &Matcher{Threshold: threshold}
}

// Match 使用默认阈值匹配
func Match(source, target model.VariableSet, fuzzyEnabled bool) (*model.MatchResult, error) {
	return NewMatcher(DefaultThreshold).Match(source, target, fuzzyEnabled)
}

// MatchExact 仅做精确匹配，结果与 Match(source, target, false) 相同
func MatchExact(source, target model.VariableSet) (*model.MatchResult, error) {
	return Match(source, target, false)
}

// Match 匹配 Excel 列标题（source）与模板变量（target）
//
// 第一轮按 source 顺序为每个名称寻找第一个尚未占用、忽略大小写相等的 target。
// 第二轮（fuzzyEnabled 时）为剩余 source 依次选取相似度最高且不低于阈值的剩余 target，
// 相同分数取 target 顺序中靠前者。每个 target 至多被占用一次，结果依赖 source 顺序。
func (m *Matcher) Match(source, target model.VariableSet, fuzzyEnabled bool) (*model.MatchResult, error) {
	if source == nil {
		return nil, errors.NewValidationError("source", "variable set is nil")
	}
	if target == nil {
		return nil, errors.NewValidationError("target", "variable set is nil")
	}

	sourceUsed := make([]bool, len(source))
	targetUsed := make([]bool, len(target))
	pairs := make([]model.MatchPair, 0, min(len(source), len(target)))

	// 第一步：精确匹配
	for i, s := range source {
		for j, t := range target {
			if targetUsed[j] || !equalFold(s, t) {
				continue
			}
			sourceUsed[i], targetUsed[j] = true, true
			pairs = append(pairs, model.MatchPair{Source: s, Target: t, Score: 1.0, Exact: true})
			break
		}
	}

	// 第二步：模糊匹配
	if fuzzyEnabled && hasFree(sourceUsed) && hasFree(targetUsed) {
		for i, s := range source {
			if sourceUsed[i] || s == "" {
				continue
			}
			j, score := m.bestCandidate(s, target, targetUsed)
			if j < 0 {
				continue
			}
			sourceUsed[i], targetUsed[j] = true, true
			pairs = append(pairs, model.MatchPair{Source: s, Target: target[j], Score: score})
		}
	}

	return buildResult(source, target, sourceUsed, targetUsed, pairs), nil
}

// bestCandidate 返回剩余 target 中相似度最高（且达到阈值）的下标，找不到时返回 -1
func (m *Matcher) bestCandidate(name string, target model.VariableSet, used []bool) (int, float64) {
	best, bestScore := -1, 0.0
	threshold := m.threshold()
	for j, t := range target {
		if used[j] || t == "" {
			continue
		}
		score := Similarity(name, t)
		if score > bestScore && score >= threshold {
			best, bestScore = j, score
		}
	}
	return best, bestScore
}

func (m *Matcher) threshold() float64 {
	if m == nil || m.Threshold <= 0 {
		return DefaultThreshold
	}
	return m.Threshold
}

func buildResult(source, target model.VariableSet, sourceUsed, targetUsed []bool, pairs []model.MatchPair) *model.MatchResult {
	result := &model.MatchResult{
		Matched:         []string{},
		UnmatchedSource: []string{},
		UnmatchedTarget: []string{},
		Pairs:           pairs,
	}
	// Matched 先列精确匹配，再列模糊匹配，各自保持 source 顺序
	for _, p := range pairs {
		result.Matched = append(result.Matched, p.Source)
	}
	for i, s := range source {
		if !sourceUsed[i] {
			result.UnmatchedSource = append(result.UnmatchedSource, s)
		}
	}
	for j, t := range target {
		if !targetUsed[j] {
			result.UnmatchedTarget = append(result.UnmatchedTarget, t)
		}
	}
	return result
}

func hasFree(used []bool) bool {
	for _, u := range used {
		if !u {
			return true
		}
	}
	return false
}
