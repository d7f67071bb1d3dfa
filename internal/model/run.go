package model

import "time"

// RunStatus 生成任务状态
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed" // 全部成功
	RunStatusPartial   RunStatus = "partial"   // 部分记录失败
	RunStatusFailed    RunStatus = "failed"    // 批量中止
	RunStatusCanceled  RunStatus = "canceled"
)

// GenerationRun 一次批量生成的历史记录
type GenerationRun struct {
	ID           string          `json:"id"`
	TemplatePath string          `json:"templatePath"`
	SourcePath   string          `json:"sourcePath"`
	OutputDir    string          `json:"outputDir"`
	Total        int             `json:"total"`
	Succeeded    int             `json:"succeeded"`
	Failed       int             `json:"failed"`
	Status       RunStatus       `json:"status"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	StartedAt    time.Time       `json:"startedAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
	Failures     []RecordFailure `json:"failures,omitempty"`
}

// StatusOf 根据生成结果与错误推导任务状态
func StatusOf(outcome *BatchOutcome, err error) RunStatus {
	switch {
	case outcome != nil && outcome.Canceled:
		return RunStatusCanceled
	case err != nil || outcome == nil:
		return RunStatusFailed
	case outcome.Failed() > 0:
		return RunStatusPartial
	default:
		return RunStatusCompleted
	}
}
