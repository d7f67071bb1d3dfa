package util

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"
)

// startCommand 启动外部程序但不等待其退出
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// openCommands 按平台给出打开 URL 或目录的候选命令，依次尝试
func openCommands(goos, target string) [][]string {
	switch goos {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 稳定
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", target},
			{"explorer", target},
		}
	case "darwin":
		return [][]string{{"open", target}}
	default:
		cmds := [][]string{{"xdg-open", target}}
		for _, browser := range []string{"google-chrome", "firefox", "chromium-browser", "sensible-browser"} {
			cmds = append(cmds, []string{browser, target})
		}
		return cmds
	}
}

// OpenPath 用系统默认程序打开 URL 或文件夹
func OpenPath(target string) error {
	if target == "" {
		return fmt.Errorf("open: empty target")
	}
	var err error
	for _, c := range openCommands(runtime.GOOS, target) {
		if err = startCommand(c[0], c[1:]...); err == nil {
			return nil
		}
	}
	return fmt.Errorf("open %s: %w", target, err)
}

// FindAvailablePort 从 startPort 开始查找可监听的端口，最多尝试 limit 个
func FindAvailablePort(startPort, limit int) (int, error) {
	for port := startPort; port < startPort+limit && port <= 65535; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			continue
		}
		ln.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no available port in [%d, %d)", startPort, startPort+limit)
}
