package model

// RecordFailure 单条记录生成失败
type RecordFailure struct {
	Index    int    `json:"index"` // 从 1 开始
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

// BatchOutcome 批量生成结果
type BatchOutcome struct {
	Total     int             `json:"total"`
	Attempted int             `json:"attempted"`
	Succeeded int             `json:"succeeded"`
	Failures  []RecordFailure `json:"failures"`
	Files     []string        `json:"files"` // 成功生成的文件路径
	Canceled  bool            `json:"canceled"`
}

// Failed 失败记录数
func (o *BatchOutcome) Failed() int {
	return len(o.Failures)
}
