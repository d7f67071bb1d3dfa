package word

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/nygula/Taoda/internal/errors"
)

// ExtractVariables 从 Word 模板中提取 {{变量名}} 占位符
// 结果区分大小写、去重并按字典序排列
func ExtractVariables(templatePath string) ([]string, error) {
	if strings.TrimSpace(templatePath) == "" {
		return nil, errors.NewValidationError("templatePath", "模板文件路径不能为空")
	}
	if _, err := os.Stat(templatePath); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("template", templatePath)
		}
		return nil, fmt.Errorf("stat template: %w", err)
	}

	archive, err := zip.OpenReader(templatePath)
	if err != nil {
		return nil, errors.NewMalformedDataError(templatePath, "not a valid docx archive", err)
	}
	defer archive.Close()

	seen := make(map[string]struct{})
	for _, f := range archive.File {
		if !isContentPart(f.Name) {
			continue
		}
		content, err := readEntry(f)
		if err != nil {
			return nil, errors.NewMalformedDataError(templatePath, "read "+f.Name, err)
		}
		for _, m := range placeholderPattern.FindAllString(mergeSplitPlaceholders(content), -1) {
			if name := placeholderName(m); name != "" {
				seen[name] = struct{}{}
			}
		}
	}

	variables := make([]string, 0, len(seen))
	for name := range seen {
		variables = append(variables, name)
	}
	sort.Strings(variables)
	return variables, nil
}

func readEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
