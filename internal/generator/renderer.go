package generator

import (
	"context"

	"github.com/nygula/Taoda/internal/model"
)

// Renderer 单文档渲染器
type Renderer interface {
	// Render 以模板和一条记录生成文档并写入 outputPath，需要时创建父目录
	Render(ctx context.Context, templatePath string, record model.Record, outputPath string) error
	// Extension 输出文件扩展名，含点号
	Extension() string
}
