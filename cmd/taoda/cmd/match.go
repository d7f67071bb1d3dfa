package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nygula/Taoda/internal/model"
	"github.com/nygula/Taoda/internal/output"
	"github.com/nygula/Taoda/internal/service/merge"
	"github.com/nygula/Taoda/internal/util"
)

// matchReport match 命令的输出
type matchReport struct {
	Matched         []string          `json:"matched"`
	UnmatchedSource []string          `json:"unmatchedSource"`
	UnmatchedTarget []string          `json:"unmatchedTarget"`
	Pairs           []model.MatchPair `json:"pairs"`
	Summary         string            `json:"summary"`
}

func newMatchReport(r *model.MatchResult) matchReport {
	return matchReport{
		Matched:         r.Matched,
		UnmatchedSource: r.UnmatchedSource,
		UnmatchedTarget: r.UnmatchedTarget,
		Pairs:           r.Pairs,
		Summary:         util.MatchSummary(r),
	}
}

func (r matchReport) TableData() output.Data {
	d := output.Data{
		Headers:    []string{"Excel 列", "模板变量", "方式", "相似度"},
		RightAlign: []int{3},
	}
	for _, p := range r.Pairs {
		way := "模糊"
		if p.Exact {
			way = "完全"
		}
		d.Rows = append(d.Rows, []string{p.Source, p.Target, way, fmt.Sprintf("%.2f", p.Score)})
	}
	for _, v := range r.UnmatchedSource {
		d.Rows = append(d.Rows, []string{v, "-", "未匹配", ""})
	}
	for _, v := range r.UnmatchedTarget {
		d.Rows = append(d.Rows, []string{"-", v, "未匹配", ""})
	}
	return d
}

type sourceFlags struct {
	source    string
	template  string
	noFuzzy   bool
	threshold float64
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "Excel 数据文件 (.xlsx)")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Word 模板 (.docx)")
	cmd.Flags().BoolVar(&f.noFuzzy, "no-fuzzy", false, "关闭模糊匹配")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0, "模糊匹配阈值（默认取配置）")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("template")
}

func (f *sourceFlags) options(a *app) merge.Options {
	opts := merge.OptionsFromConfig(a.cfg)
	if f.noFuzzy {
		opts.Fuzzy = false
	}
	if f.threshold > 0 {
		opts.Threshold = f.threshold
	}
	opts.Logger = a.logger
	return opts
}

func newMatchCommand(a *app) *cobra.Command {
	var flags sourceFlags
	var exact bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "匹配 Excel 列标题与模板变量",
		Example: `  taoda match -s 客户.xlsx -t 通知.docx
  taoda match -s 客户.xlsx -t 通知.docx --exact -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			opts := flags.options(a)
			if exact {
				opts.Fuzzy = false
			}

			job, err := merge.PrepareFiles(flags.source, flags.template, opts)
			if err != nil {
				return err
			}

			report := newMatchReport(job.Match)
			if err := output.Write(cmd.OutOrStdout(), format, report); err != nil {
				return err
			}
			if format == output.FormatTable {
				fmt.Fprintln(cmd.OutOrStdout(), report.Summary)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&exact, "exact", false, "仅完全匹配（同 --no-fuzzy）")
	return cmd
}
