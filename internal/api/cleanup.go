package api

import (
	"os"
	"path/filepath"
	"time"
)

// outputTTL 生成结果目录保留时间
const outputTTL = 24 * time.Hour

// purgeStaleDirs 删除 root 下修改时间早于 cutoff 的子目录，返回删除数量
func purgeStaleDirs(root string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// purgeOutputs 清理过期的生成结果目录，失败只记录日志
func (h *Handler) purgeOutputs() {
	n, err := purgeStaleDirs(h.outputsDir(), h.uploads.now().Add(-outputTTL))
	if err != nil {
		h.logger.Warn().Err(err).Msg("purge outputs failed")
		return
	}
	if n > 0 {
		h.logger.Info().Int("removed", n).Msg("expired outputs purged")
	}
}
