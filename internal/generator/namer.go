package generator

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/nygula/Taoda/internal/model"
)

// identifierFields 用作文件名的标识字段，按优先级排列
var identifierFields = []string{"姓名", "名称", "编号", "序号", "ID", "id", "Name", "name"}

// FileStem 生成输出文件名（不含扩展名）
// 优先使用记录中的标识字段，否则按序号命名，如 文档_0007
func FileStem(record model.Record, index int) string {
	for _, field := range identifierFields {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		name := strings.TrimSpace(fmt.Sprint(value))
		if name != "" {
			return SanitizeFileName(name)
		}
	}
	return fmt.Sprintf("文档_%04d", index)
}

// SanitizeFileName 将当前系统文件名中的非法字符替换为下划线
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if isInvalidFileNameRune(r) {
			return '_'
		}
		return r
	}, name)
}

func isInvalidFileNameRune(r rune) bool {
	if r == 0 || r == '/' {
		return true
	}
	if runtime.GOOS != "windows" {
		return false
	}
	if r < 32 {
		return true
	}
	return strings.ContainsRune(`<>:"\|?*`, r)
}
