package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nygula/Taoda/internal/errors"
	"github.com/nygula/Taoda/internal/model"
)

func TestMatchExactScenario(t *testing.T) {
	source := model.VariableSet{"Name", "Age", "City"}
	target := model.VariableSet{"name", "Age", "Country"}

	result, err := MatchExact(source, target)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Age"}, result.Matched)
	assert.Equal(t, []string{"City"}, result.UnmatchedSource)
	assert.Equal(t, []string{"Country"}, result.UnmatchedTarget)
	assert.False(t, result.IsFullyMatched())
	assert.Equal(t, []model.MatchPair{
		{Source: "Name", Target: "name", Score: 1, Exact: true},
		{Source: "Age", Target: "Age", Score: 1, Exact: true},
	}, result.Pairs)
}

func TestMatchNilSets(t *testing.T) {
	_, err := Match(nil, model.VariableSet{}, true)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = Match(model.VariableSet{}, nil, true)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = MatchExact(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestMatchEmptySets(t *testing.T) {
	result, err := Match(model.VariableSet{}, model.VariableSet{}, true)
	require.NoError(t, err)
	assert.Empty(t, result.Matched)
	assert.True(t, result.IsFullyMatched())
}

func TestMatchFuzzyPass(t *testing.T) {
	source := model.VariableSet{"客户名称", "Age", "Adress"}
	target := model.VariableSet{"age", "Address", "客户名"}

	result, err := Match(source, target, true)
	require.NoError(t, err)

	// 精确匹配在前，模糊匹配在后
	assert.Equal(t, []string{"Age", "客户名称", "Adress"}, result.Matched)
	assert.Empty(t, result.UnmatchedSource)
	assert.Empty(t, result.UnmatchedTarget)
	assert.True(t, result.IsFullyMatched())

	fuzzy := result.FuzzyPairs()
	require.Len(t, fuzzy, 2)
	assert.Equal(t, "客户名", fuzzy[0].Target)
	assert.InDelta(t, 0.75, fuzzy[0].Score, 1e-9)
	assert.Equal(t, "Address", fuzzy[1].Target)
}

func TestMatchFuzzyBelowThreshold(t *testing.T) {
	result, err := Match(model.VariableSet{"City"}, model.VariableSet{"Country"}, true)
	require.NoError(t, err)
	assert.Empty(t, result.Matched)
	assert.Equal(t, []string{"City"}, result.UnmatchedSource)
	assert.Equal(t, []string{"Country"}, result.UnmatchedTarget)
}

func TestMatchFuzzyGreedyOrderDependent(t *testing.T) {
	// "abcd" 先处理，取走唯一满足阈值的 "abce"，"abcf" 只能落空
	source := model.VariableSet{"abcd", "abcf"}
	target := model.VariableSet{"abce"}

	result, err := Match(source, target, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"abcd"}, result.Matched)
	assert.Equal(t, []string{"abcf"}, result.UnmatchedSource)

	reversed, err := Match(model.VariableSet{"abcf", "abcd"}, target, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"abcf"}, reversed.Matched)
}

func TestMatchFuzzyTieTakesFirstTarget(t *testing.T) {
	result, err := Match(model.VariableSet{"abcd"}, model.VariableSet{"abcx", "abcy"}, true)
	require.NoError(t, err)
	require.Len(t, result.Pairs, 1)
	assert.Equal(t, "abcx", result.Pairs[0].Target)
	assert.Equal(t, []string{"abcy"}, result.UnmatchedTarget)
}

func TestMatchExactConsumesTargetOnce(t *testing.T) {
	source := model.VariableSet{"Name", "NAME"}
	target := model.VariableSet{"name"}

	result, err := MatchExact(source, target)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name"}, result.Matched)
	assert.Equal(t, []string{"NAME"}, result.UnmatchedSource)
	assert.Empty(t, result.UnmatchedTarget)
}

func TestMatchExactNeverFuzzy(t *testing.T) {
	result, err := MatchExact(model.VariableSet{"客户名称"}, model.VariableSet{"客户名"})
	require.NoError(t, err)
	assert.Empty(t, result.Matched)
}

func TestMatchCustomThreshold(t *testing.T) {
	m := NewMatcher(0.8)
	result, err := m.Match(model.VariableSet{"客户名称"}, model.VariableSet{"客户名"}, true)
	require.NoError(t, err)
	assert.Empty(t, result.Matched)

	loose := NewMatcher(0)
	result, err = loose.Match(model.VariableSet{"客户名称"}, model.VariableSet{"客户名"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"客户名称"}, result.Matched)
}

func TestMatchInvariants(t *testing.T) {
	sets := []model.VariableSet{
		{},
		{"Name", "Age", "City"},
		{"name", "Age", "Country"},
		{"姓名", "性别", "出生日期", "地址"},
		{"姓 名", "性别", "出生年月", "住址", "电话"},
		{"NAME", "name", "Nam"},
		{"", "x", "xy"},
	}

	for _, src := range sets {
		for _, tgt := range sets {
			exact, err := MatchExact(src, tgt)
			require.NoError(t, err)
			noFuzzy, err := Match(src, tgt, false)
			require.NoError(t, err)
			assert.Equal(t, exact, noFuzzy)

			for _, p := range exact.Pairs {
				assert.True(t, equalFold(p.Source, p.Target), "exact pair %q/%q", p.Source, p.Target)
			}

			full, err := Match(src, tgt, true)
			require.NoError(t, err)
			assertPartition(t, src, tgt, full)
			for _, p := range full.FuzzyPairs() {
				assert.GreaterOrEqual(t, Similarity(p.Source, p.Target), DefaultThreshold)
			}
		}
	}
}

func assertPartition(t *testing.T, src, tgt model.VariableSet, r *model.MatchResult) {
	t.Helper()

	assert.Equal(t, len(src), len(r.Matched)+len(r.UnmatchedSource))
	assert.Len(t, r.Pairs, len(r.Matched))
	assert.Equal(t, len(tgt), len(r.Pairs)+len(r.UnmatchedTarget))

	used := map[string]int{}
	for _, p := range r.Pairs {
		used[p.Target]++
	}
	for name, n := range used {
		assert.Equal(t, 1, n, "target %q consumed more than once", name)
	}
}
