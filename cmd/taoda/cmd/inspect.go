package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nygula/Taoda/internal/output"
	"github.com/nygula/Taoda/internal/service/excel"
	"github.com/nygula/Taoda/internal/service/merge"
)

// inspectReport inspect 命令的输出
type inspectReport struct {
	Source    string   `json:"source"`
	Headers   []string `json:"headers"`
	Rows      int      `json:"rows"`
	Template  string   `json:"template,omitempty"`
	Variables []string `json:"variables,omitempty"`
}

func (r inspectReport) TableData() output.Data {
	d := output.Data{
		Headers: []string{"项目", "内容"},
		Rows: [][]string{
			{"数据文件", r.Source},
			{"列标题", strings.Join(r.Headers, "、")},
			{"数据行数", strconv.Itoa(r.Rows)},
		},
	}
	if r.Template != "" {
		d.Rows = append(d.Rows,
			[]string{"模板", r.Template},
			[]string{"模板变量", strings.Join(r.Variables, "、")},
		)
	}
	return d
}

func newInspectCommand(a *app) *cobra.Command {
	var source, template string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "查看数据文件的列标题、行数与模板变量",
		Example: `  taoda inspect -s 客户.xlsx
  taoda inspect -s 客户.xlsx -t 通知.docx -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}

			headers, err := excel.ReadColumnHeaders(source)
			if err != nil {
				return err
			}
			rows, err := excel.CountDataRows(source)
			if err != nil {
				return err
			}
			report := inspectReport{Source: source, Headers: headers, Rows: rows}

			if template != "" {
				tmpl, err := merge.LoadTemplate(template)
				if err != nil {
					return err
				}
				report.Template = template
				report.Variables = tmpl.Variables
			}
			return output.Write(cmd.OutOrStdout(), format, report)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Excel 数据文件 (.xlsx)")
	cmd.Flags().StringVarP(&template, "template", "t", "", "Word 模板 (.docx)，可选")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
