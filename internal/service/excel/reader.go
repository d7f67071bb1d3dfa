package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nygula/Taoda/internal/errors"
	"github.com/nygula/Taoda/internal/model"
)

// supportedExtensions excelize 只能读取 OOXML 格式
var supportedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// ReadFile 读取 Excel 文件首个工作表：第一行为列标题，其余每行为一条记录
// 每条记录包含全部列标题，缺失的单元格为空字符串，全空行被跳过
func ReadFile(path string) (*model.ExcelData, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	headers := NormalizeHeaders(rows[0])
	data := &model.ExcelData{
		FilePath: path,
		Headers:  headers,
		Rows:     make([]model.Record, 0, len(rows)-1),
	}

	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		record := make(model.Record, len(headers))
		for i, h := range headers {
			if i < len(row) {
				record[h] = row[i]
			} else {
				record[h] = ""
			}
		}
		data.Rows = append(data.Rows, record)
	}

	return data, nil
}

// ReadColumnHeaders 只读取列标题
func ReadColumnHeaders(path string) ([]string, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	return NormalizeHeaders(rows[0]), nil
}

// CountDataRows 统计非空数据行数
func CountDataRows(path string) (int, error) {
	rows, err := readRows(path)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, row := range rows[1:] {
		if !isBlankRow(row) {
			count++
		}
	}
	return count, nil
}

// NormalizeHeaders 整理列标题：去除首尾空白；空标题以列字母命名（如 C）；
// 忽略大小写重复的标题追加 _2、_3 后缀，保证变量名互不相同
func NormalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name, _ = excelize.ColumnNumberToName(i + 1)
		}
		key := strings.ToLower(name)
		seen[key]++
		if n := seen[key]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
			seen[strings.ToLower(name)]++
		}
		headers[i] = name
	}
	return headers
}

// readRows 校验路径并读取首个工作表的全部行，保证至少存在表头行
func readRows(path string) ([][]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewValidationError("filePath", "文件路径不能为空")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("excel file", path)
		}
		return nil, fmt.Errorf("stat excel file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return nil, errors.NewMalformedDataError(path, fmt.Sprintf("不支持的文件格式: %s。仅支持 .xlsx 和 .xlsm 格式", ext), nil)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewMalformedDataError(path, "failed to open excel", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewMalformedDataError(path, "no sheets found", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewMalformedDataError(path, "failed to read sheet "+sheets[0], err)
	}
	if len(rows) == 0 || isBlankRow(rows[0]) {
		return nil, errors.NewMalformedDataError(path, "Excel 文件没有表头行", nil)
	}
	return rows, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
