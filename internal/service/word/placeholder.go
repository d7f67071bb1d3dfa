// Package word 处理 .docx 模板：提取 {{变量}} 占位符，并按记录生成文档。
package word

import (
	"regexp"
	"strings"
)

var (
	// placeholderPattern 匹配未被拆分的占位符
	placeholderPattern = regexp.MustCompile(`\{\{([^{}<>]+)\}\}`)
	// splitPlaceholderPattern 匹配被 Word 拆到多个 run 中的占位符
	splitPlaceholderPattern = regexp.MustCompile(`\{\{((?:<[^>]*>|[^{}<])*)\}\}`)
	tagPattern              = regexp.MustCompile(`<(/?)([A-Za-z_][\w:.-]*)[^>]*?(/?)>`)
	contentPartPattern      = regexp.MustCompile(`^word/(document|header\d*|footer\d*|footnotes|endnotes)\.xml$`)
)

// isContentPart 是否为需要扫描/替换占位符的正文部件
func isContentPart(name string) bool {
	return contentPartPattern.MatchString(name)
}

// mergeSplitPlaceholders 把被拆分到多个 run 的占位符合并回第一个 run
// 只有占位符之间的标签开闭平衡（同一段落内的 run 边界）时才合并
func mergeSplitPlaceholders(xml string) string {
	return splitPlaceholderPattern.ReplaceAllStringFunc(xml, func(m string) string {
		if !strings.Contains(m, "<") || !tagsBalanced(m) {
			return m
		}
		return tagPattern.ReplaceAllString(m, "")
	})
}

func tagsBalanced(s string) bool {
	depth := make(map[string]int)
	for _, t := range tagPattern.FindAllStringSubmatch(s, -1) {
		closing, name, selfClosing := t[1] == "/", t[2], t[3] == "/"
		switch {
		case selfClosing:
		case closing:
			depth[name]--
		default:
			depth[name]++
		}
	}
	for _, d := range depth {
		if d != 0 {
			return false
		}
	}
	return true
}

// placeholderName 从 {{ name }} 中取出去空格后的变量名
func placeholderName(m string) string {
	return strings.TrimSpace(m[2 : len(m)-2])
}
