// Package testutil 测试用的 xlsx / docx 样例文件构造函数。
package testutil

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

// DocumentXML 用给定段落文本（可含 run 标记）构造 word/document.xml
func DocumentXML(paragraphs ...string) string {
	body := ""
	for _, p := range paragraphs {
		body += `<w:p><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
}

// WriteDocx 在 dir 下写入 name，parts 为额外部件（如 word/header1.xml）
func WriteDocx(t testing.TB, dir, name, documentXML string, parts map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	write := func(name, content string) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	write("[Content_Types].xml", contentTypes)
	write("word/document.xml", documentXML)
	for name, content := range parts {
		write(name, content)
	}
	require.NoError(t, zw.Close())
	return path
}

// ReadDocxPart 读取 docx 中某个部件的内容
func ReadDocxPart(t testing.TB, path, part string) string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != part {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("part %s not found in %s", part, path)
	return ""
}

// WriteXLSX 写入首个工作表为 headers + rows 的工作簿
func WriteXLSX(t testing.TB, dir, name string, headers []string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if len(headers) > 0 {
		header := make([]any, len(headers))
		for i, h := range headers {
			header[i] = h
		}
		require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	}
	for i, row := range rows {
		r := row
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &r))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}
