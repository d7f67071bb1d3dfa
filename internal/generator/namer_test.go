package generator

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nygula/Taoda/internal/model"
)

func TestFileStem(t *testing.T) {
	tests := []struct {
		name   string
		record model.Record
		index  int
		want   string
	}{
		{"chinese name field", model.Record{"姓名": "张三", "年龄": 30}, 5, "张三"},
		{"no identifier", model.Record{"年龄": 30}, 5, "文档_0005"},
		{"empty record", model.Record{}, 7, "文档_0007"},
		{"nil record", nil, 12345, "文档_12345"},
		{"priority order", model.Record{"name": "b", "编号": "A-01", "姓名": "张三"}, 1, "张三"},
		{"skips blank values", model.Record{"姓名": "   ", "编号": " 0012 "}, 1, "0012"},
		{"skips nil values", model.Record{"姓名": nil, "ID": 42}, 1, "42"},
		{"all blank", model.Record{"姓名": "", "Name": "\t"}, 3, "文档_0003"},
		{"case sensitive keys", model.Record{"NAME": "x"}, 2, "文档_0002"},
		{"sanitizes slash", model.Record{"名称": "a/b"}, 1, "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileStem(tt.record, tt.index))
		})
	}
}

func TestFileStemDeterministic(t *testing.T) {
	rec := model.Record{"Name": "Alice"}
	assert.Equal(t, FileStem(rec, 9), FileStem(rec, 9))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "a_b_c", SanitizeFileName("a/b\x00c"))
	assert.Equal(t, "张三", SanitizeFileName("张三"))
	if runtime.GOOS == "windows" {
		assert.Equal(t, "a_b_c_d_", SanitizeFileName(`a:b?c*d|`))
	} else {
		assert.Equal(t, `a:b?c*d|`, SanitizeFileName(`a:b?c*d|`))
	}
}
