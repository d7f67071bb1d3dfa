package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/nygula/Taoda/internal/model"
)

// 报告工作表名
const (
	SheetMatch   = "变量匹配"
	SheetOutcome = "生成结果"
)

// WriteReport 写出匹配与生成结果报告；match 或 outcome 为 nil 时对应工作表只有表头
func WriteReport(path string, match *model.MatchResult, outcome *model.BatchOutcome) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetMatch); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetOutcome); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeMatchSheet(f, headerStyle, match); err != nil {
		return err
	}
	if err := writeOutcomeSheet(f, headerStyle, outcome); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func writeMatchSheet(f *excelize.File, headerStyle int, match *model.MatchResult) error {
	rows := [][]any{{"变量", "来源", "状态", "对应变量", "相似度"}}
	if match != nil {
		for _, p := range match.Pairs {
			status := "模糊匹配"
			if p.Exact {
				status = "完全匹配"
			}
			rows = append(rows, []any{p.Source, "Excel", status, p.Target, p.Score})
		}
		for _, v := range match.UnmatchedSource {
			rows = append(rows, []any{v, "Excel", "未匹配"})
		}
		for _, v := range match.UnmatchedTarget {
			rows = append(rows, []any{v, "模板", "未匹配"})
		}
	}

	if err := writeRows(f, SheetMatch, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetMatch, "A", "A", 24)
	_ = f.SetColWidth(SheetMatch, "D", "D", 24)
	return f.SetCellStyle(SheetMatch, "A1", "E1", headerStyle)
}

func writeOutcomeSheet(f *excelize.File, headerStyle int, outcome *model.BatchOutcome) error {
	rows := [][]any{{"状态", "序号", "文件", "错误"}}
	if outcome != nil {
		for _, file := range outcome.Files {
			rows = append(rows, []any{"成功", "", filepath.Base(file)})
		}
		for _, fail := range outcome.Failures {
			rows = append(rows, []any{"失败", fail.Index, fail.FileName, fail.Error})
		}
		rows = append(rows,
			[]any{},
			[]any{"记录总数", outcome.Total},
			[]any{"已处理", outcome.Attempted},
			[]any{"成功", outcome.Succeeded},
			[]any{"失败", outcome.Failed()},
		)
		if outcome.Canceled {
			rows = append(rows, []any{"已取消", "是"})
		}
	}

	if err := writeRows(f, SheetOutcome, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetOutcome, "C", "C", 32)
	_ = f.SetColWidth(SheetOutcome, "D", "D", 48)
	return f.SetCellStyle(SheetOutcome, "A1", "D1", headerStyle)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
