package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nygula/Taoda/internal/model"
	"github.com/nygula/Taoda/internal/service/merge"
	"github.com/nygula/Taoda/internal/util"
)

func newGenerateCommand(a *app) *cobra.Command {
	var (
		flags     sourceFlags
		outputDir string
		report    bool
		open      bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "为每一行数据生成一份文档",
		Example: `  taoda generate -s 客户.xlsx -t 通知.docx --out ./输出
  taoda generate -s 客户.xlsx -t 通知.docx --out ./输出 --report --open`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("report") {
				report = a.cfg.Generation.WriteReport
			}

			opts := flags.options(a)
			job, err := merge.PrepareFiles(flags.source, flags.template, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, util.MatchSummary(job.Match))

			res := runGenerate(cmd, a, opts, job, outputDir, report)
			if !noHistory {
				recordRun(a, flags, outputDir, len(job.Records), res)
			}
			if res.err != nil {
				return res.err
			}

			if open {
				if err := util.OpenPath(outputDir); err != nil {
					a.logger.Warn().Err(err).Str("dir", outputDir).Msg("open output directory failed")
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&outputDir, "out", "", "输出目录")
	cmd.Flags().BoolVar(&report, "report", false, "在输出目录写出生成报告（默认取配置）")
	cmd.Flags().BoolVar(&open, "open", false, "完成后打开输出目录")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "不记录生成历史")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

type generateResult struct {
	outcome *model.BatchOutcome
	err     error
}

// runGenerate 执行批量生成并在终端显示进度
func runGenerate(cmd *cobra.Command, a *app, opts merge.Options, job *merge.Job, outputDir string, report bool) generateResult {
	total := len(job.Records)
	progress := func(done int) {
		if !a.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "\r生成中 %s", util.FormatProgress(done, total))
		}
	}

	outcome, err := merge.NewGenerator(opts).GenerateBatch(cmd.Context(), job.Template.FilePath, job.Records, outputDir, progress)
	if !a.quiet && total > 0 {
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	if err != nil {
		return generateResult{outcome: outcome, err: err}
	}

	printOutcome(cmd.OutOrStdout(), outcome, outputDir)

	if report {
		path, err := job.WriteReport(outputDir, outcome)
		if err != nil {
			a.logger.Warn().Err(err).Msg("write report failed")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "报告: %s\n", path)
		}
	}
	return generateResult{outcome: outcome}
}

func printOutcome(w io.Writer, outcome *model.BatchOutcome, outputDir string) {
	fmt.Fprintf(w, "成功生成 %d/%d 个文档\n", outcome.Succeeded, outcome.Attempted)
	for _, f := range outcome.Failures {
		fmt.Fprintf(w, "  第 %d 条 (%s) 失败: %s\n", f.Index, f.FileName, f.Error)
	}
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		abs = outputDir
	}
	fmt.Fprintln(w, util.GenerationSummary(outcome.Succeeded, abs))
}

// recordRun 写入生成历史；历史库不可用时只记录警告
func recordRun(a *app, flags sourceFlags, outputDir string, total int, res generateResult) {
	st, err := a.openStore()
	if err != nil {
		a.logger.Warn().Err(err).Msg("open history store failed")
		return
	}
	defer st.Close()

	runID, err := st.CreateRun(flags.template, flags.source, outputDir, total)
	if err == nil {
		err = st.CompleteRun(runID, res.outcome, res.err)
	}
	if err != nil {
		a.logger.Warn().Err(err).Msg("record generation run failed")
		return
	}
	a.logger.Debug().Str("runId", runID).Msg("run recorded")
}
