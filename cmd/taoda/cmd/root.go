// Package cmd 实现 taoda 命令行。
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nygula/Taoda/internal/config"
	"github.com/nygula/Taoda/internal/logging"
	"github.com/nygula/Taoda/internal/output"
	"github.com/nygula/Taoda/internal/store"
)

// app 各子命令共享的状态，在 PersistentPreRunE 中初始化
type app struct {
	version    string
	configPath string
	verbose    bool
	quiet      bool
	format     string

	cfg    *config.AppConfig
	info   config.LoadConfigInfo
	logger *zerolog.Logger
}

// NewRootCommand 创建根命令
func NewRootCommand(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:   "taoda",
		Short: "用 Excel 数据批量填充 Word 模板",
		Long: `taoda 读取 Excel 首个工作表（第一行为列标题）与 Word 模板中的 {{变量}}，
匹配列标题与模板变量后，为每一行数据生成一份文档。`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "配置文件路径（默认为可执行文件同目录下的 config.toml）")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "输出调试日志")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "只输出错误")
	pf.StringVarP(&a.format, "output", "o", "", "输出格式: table, json, yaml（默认按终端自动选择）")

	root.AddCommand(
		newServeCommand(a),
		newMatchCommand(a),
		newGenerateCommand(a),
		newHistoryCommand(a),
		newInspectCommand(a),
		newConfigCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, info, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	a.cfg, a.info = cfg, info

	level := cfg.Log.Level
	switch {
	case a.verbose:
		level = "debug"
	case a.quiet:
		level = "error"
	}
	logging.Configure(&logging.Config{
		Level:  level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	a.logger = logging.Default()
	a.logger.Debug().Str("config", info.Path).Bool("found", info.FileFound).Msg("config loaded")
	return nil
}

func (a *app) outputFormat() (output.Format, error) {
	return output.ParseFormat(a.format)
}

// openStore 打开数据目录下的生成历史数据库
func (a *app) openStore() (*store.Store, error) {
	dataDir, err := config.EnsureDataDir(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	return store.New(filepath.Join(dataDir, store.DefaultFileName))
}
