package exporter

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ProgressEvent 打包进度
type ProgressEvent struct {
	Done  int
	Total int
	Name  string // 刚写入的条目名
}

func reportProgress(progress func(ProgressEvent), done, total int, name string) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{Done: done, Total: total, Name: name})
}

// WriteArchive 将生成的文件打包为 zip 写入 w，条目名为文件名（不同路径重名时追加序号）
// 同一路径只写入一次
func WriteArchive(w io.Writer, files []string, progress func(ProgressEvent)) error {
	files = uniquePaths(files)
	zw := zip.NewWriter(w)
	used := make(map[string]int, len(files))

	for i, path := range files {
		name := filepath.Base(path)
		used[name]++
		if n := used[name]; n > 1 {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s_%d%s", name[:len(name)-len(ext)], n, ext)
		}

		if err := addFile(zw, name, path); err != nil {
			return err
		}
		reportProgress(progress, i+1, len(files), name)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func uniquePaths(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, path := range files {
		key := filepath.Clean(path)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, path)
	}
	return out
}

func addFile(zw *zip.Writer, name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy %s: %w", path, err)
	}
	return nil
}
