package model

// VariableSet 有序、互不重复的变量名序列（比较时忽略大小写）
// nil 表示"缺失"，与空集合区分
type VariableSet []string

// MatchPair 一次成功的配对
type MatchPair struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Score  float64 `json:"score"`
	Exact  bool    `json:"exact"`
}

// MatchResult Excel 列标题与模板变量的匹配结果
type MatchResult struct {
	Matched         []string    `json:"matched"`         // 匹配成功的变量（以 Excel 列名记录）
	UnmatchedSource []string    `json:"unmatchedSource"` // 未匹配的 Excel 列标题
	UnmatchedTarget []string    `json:"unmatchedTarget"` // 未匹配的模板变量
	Pairs           []MatchPair `json:"pairs"`
}

// IsFullyMatched 所有变量均匹配成功
func (r *MatchResult) IsFullyMatched() bool {
	return len(r.UnmatchedSource) == 0 && len(r.UnmatchedTarget) == 0
}

// FuzzyPairs 返回模糊匹配得到的配对
func (r *MatchResult) FuzzyPairs() []MatchPair {
	var out []MatchPair
	for _, p := range r.Pairs {
		if !p.Exact {
			out = append(out, p)
		}
	}
	return out
}
