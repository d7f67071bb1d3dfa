package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nygula/Taoda/internal/model"
	"github.com/nygula/Taoda/internal/output"
	"github.com/nygula/Taoda/internal/store"
)

type runList []model.GenerationRun

func (l runList) TableData() output.Data {
	d := output.Data{
		Headers:    []string{"ID", "开始时间", "模板", "数据", "状态", "成功", "失败", "总数"},
		RightAlign: []int{5, 6, 7},
	}
	for _, r := range l {
		d.Rows = append(d.Rows, []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			filepath.Base(r.TemplatePath),
			filepath.Base(r.SourcePath),
			string(r.Status),
			strconv.Itoa(r.Succeeded),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Total),
		})
	}
	return d
}

type runDetail model.GenerationRun

func (r runDetail) TableData() output.Data {
	d := output.Data{
		Headers: []string{"序号", "文件", "错误"},
	}
	for _, f := range r.Failures {
		d.Rows = append(d.Rows, []string{strconv.Itoa(f.Index), f.FileName, f.Error})
	}
	return d
}

func newHistoryCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "查看生成历史",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 && format == output.FormatTable {
				fmt.Fprintln(cmd.OutOrStdout(), "暂无生成记录")
				return nil
			}
			return output.Write(cmd.OutOrStdout(), format, runList(runs))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "显示条数")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "查看单次生成详情",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.GetRun(args[0])
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.Write(cmd.OutOrStdout(), format, run)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ID:     %s\n模板:   %s\n数据:   %s\n输出:   %s\n状态:   %s\n结果:   成功 %d / 失败 %d / 总数 %d\n",
				run.ID, run.TemplatePath, run.SourcePath, run.OutputDir, run.Status, run.Succeeded, run.Failed, run.Total)
			if run.ErrorMessage != "" {
				fmt.Fprintf(w, "错误:   %s\n", run.ErrorMessage)
			}
			if len(run.Failures) == 0 {
				return nil
			}
			return output.WriteTable(w, runDetail(*run).TableData())
		},
	})
	return cmd
}
