package model

// Record 一行数据，键为列标题
type Record map[string]any

// Remap 返回记录副本，并为每个配对补充 target 键
// 原记录不变；target 键已存在时保留原值
func (r Record) Remap(pairs []MatchPair) Record {
	out := make(Record, len(r)+len(pairs))
	for k, v := range r {
		out[k] = v
	}
	for _, p := range pairs {
		if p.Source == p.Target {
			continue
		}
		if _, exists := r[p.Target]; exists {
			continue
		}
		if v, ok := r[p.Source]; ok {
			out[p.Target] = v
		}
	}
	return out
}

// RemapAll 对每条记录调用 Remap
func RemapAll(records []Record, pairs []MatchPair) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Remap(pairs)
	}
	return out
}

// ExcelData 从 Excel 读取的数据
type ExcelData struct {
	FilePath string   `json:"filePath"`
	Headers  []string `json:"headers"`
	Rows     []Record `json:"-"`
}

// TotalRows 数据行总数
func (d *ExcelData) TotalRows() int {
	return len(d.Rows)
}

// Template Word 模板
type Template struct {
	FilePath  string   `json:"filePath"`
	Variables []string `json:"variables"`
}
