package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchResultIsFullyMatched(t *testing.T) {
	r := &MatchResult{Matched: []string{"Name"}}
	assert.True(t, r.IsFullyMatched())

	r.UnmatchedTarget = []string{"Country"}
	assert.False(t, r.IsFullyMatched())
}

func TestRecordRemapAddsTargetKeys(t *testing.T) {
	rec := Record{"客户名称": "张三", "Age": 30}
	pairs := []MatchPair{
		{Source: "客户名称", Target: "客户名", Score: 0.75},
		{Source: "Age", Target: "Age", Exact: true, Score: 1},
	}

	out := rec.Remap(pairs)

	assert.Equal(t, "张三", out["客户名"])
	assert.Equal(t, "张三", out["客户名称"])
	assert.Equal(t, 30, out["Age"])
	assert.NotContains(t, rec, "客户名", "original record must not change")
}

func TestRecordRemapKeepsExistingTarget(t *testing.T) {
	rec := Record{"name": "a", "Name": "b"}
	out := rec.Remap([]MatchPair{{Source: "Name", Target: "name"}})
	assert.Equal(t, "a", out["name"])
}

func TestRemapAllNil(t *testing.T) {
	assert.Nil(t, RemapAll(nil, nil))
	assert.Len(t, RemapAll([]Record{}, nil), 0)
}

func TestFuzzyPairs(t *testing.T) {
	r := &MatchResult{Pairs: []MatchPair{{Source: "a", Target: "a", Exact: true}, {Source: "b", Target: "bb"}}}
	assert.Equal(t, []MatchPair{{Source: "b", Target: "bb"}}, r.FuzzyPairs())
}

func TestStatusOf(t *testing.T) {
	ok := &BatchOutcome{Total: 2, Attempted: 2, Succeeded: 2}
	partial := &BatchOutcome{Total: 2, Attempted: 2, Succeeded: 1, Failures: []RecordFailure{{Index: 2}}}
	canceled := &BatchOutcome{Total: 2, Attempted: 1, Succeeded: 1, Canceled: true}

	assert.Equal(t, RunStatusCompleted, StatusOf(ok, nil))
	assert.Equal(t, RunStatusPartial, StatusOf(partial, nil))
	assert.Equal(t, RunStatusCanceled, StatusOf(canceled, assert.AnError))
	assert.Equal(t, RunStatusFailed, StatusOf(ok, assert.AnError))
	assert.Equal(t, RunStatusFailed, StatusOf(nil, nil))
}
