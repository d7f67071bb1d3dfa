package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/nygula/Taoda/internal/matching"
)

// FileName 默认配置文件名
const FileName = "config.toml"

// 环境变量
const (
	EnvDataDir  = "TAODA_DATA_DIR"
	EnvPort     = "TAODA_PORT"
	EnvLogLevel = "TAODA_LOG_LEVEL"
)

// 数据目录下的子目录
const (
	UploadsDir = "uploads"
	OutputsDir = "outputs"
)

// AppConfig 应用配置
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Data       DataConfig       `toml:"data"`
	Matching   MatchingConfig   `toml:"matching"`
	Generation GenerationConfig `toml:"generation"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// MatchingConfig 变量匹配配置
type MatchingConfig struct {
	FuzzyEnabled bool    `toml:"fuzzy_enabled"`
	Threshold    float64 `toml:"threshold"`
}

// GenerationConfig 批量生成配置
type GenerationConfig struct {
	RemapMatched bool `toml:"remap_matched"` // 模糊匹配的列同时以模板变量名填充
	Strict       bool `toml:"strict"`        // 模板变量缺少数据时视为渲染失败
	UniqueNames  bool `toml:"unique_names"`  // 同一批次内重名文件追加序号
	WriteReport  bool `toml:"write_report"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // auto / console / json
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port: 20262,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Matching: MatchingConfig{
			FuzzyEnabled: true,
			Threshold:    matching.DefaultThreshold,
		},
		Generation: GenerationConfig{
			RemapMatched: true,
			WriteReport:  true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	server, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = server["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath 可执行文件同目录下的 config.toml
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, FileName)
}

// LoadDotEnv 加载当前目录下的 .env 与 .env.local（存在时），已有环境变量不会被覆盖
func LoadDotEnv() error {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// Load 从 path 加载配置（为空时使用 DefaultPath），文件不存在时使用默认配置，
// 之后应用环境变量覆盖
func Load(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultPath()
	}
	info := LoadConfigInfo{Path: path}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, info, err
	}

	if err := applyEnv(cfg, &info); err != nil {
		return nil, info, err
	}
	return cfg, info, nil
}

func applyEnv(cfg *AppConfig, info *LoadConfigInfo) error {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Data.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %s: %q", EnvPort, v)
		}
		cfg.Server.Port = port
		info.PortSpecified = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// SaveConfig 保存配置到 path（为空时使用 DefaultPath）
func SaveConfig(cfg *AppConfig, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveDataDir 数据目录的绝对路径，相对路径以可执行文件目录为基准
func ResolveDataDir(cfg *AppConfig) string {
	if filepath.IsAbs(cfg.Data.DataDir) {
		return cfg.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, cfg.Data.DataDir)
}

// EnsureDataDir 创建数据目录及 uploads、outputs 子目录
func EnsureDataDir(cfg *AppConfig) (string, error) {
	dataDir := ResolveDataDir(cfg)
	for _, dir := range []string{dataDir, filepath.Join(dataDir, UploadsDir), filepath.Join(dataDir, OutputsDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}
	return dataDir, nil
}
