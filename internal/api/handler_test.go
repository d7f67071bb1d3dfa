package api

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nygula/Taoda/internal/config"
	"github.com/nygula/Taoda/internal/errors"
	"github.com/nygula/Taoda/internal/logging"
	"github.com/nygula/Taoda/internal/model"
	"github.com/nygula/Taoda/internal/store"
	"github.com/nygula/Taoda/internal/testutil"
)

type testEnv struct {
	router  *gin.Engine
	handler *Handler
	store   *store.Store
	fixture string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()
	st, err := store.New(filepath.Join(dataDir, store.DefaultFileName))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := NewHandler(Options{
		Config:  config.DefaultConfig(),
		DataDir: dataDir,
		Store:   st,
		Logger:  logging.NewNopLogger(),
		Version: "test",
	})
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))

	return &testEnv{router: r, handler: h, store: st, fixture: t.TempDir()}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(t *testing.T, path, filePath string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filePath))
	require.NoError(t, err)
	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(t, req)
}

func (e *testEnv) postJSON(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

// uploadFixtures 上传两行数据与一个模板，返回 source / template id
func (e *testEnv) uploadFixtures(t *testing.T) (string, string) {
	t.Helper()
	xlsx := testutil.WriteXLSX(t, e.fixture, "data.xlsx",
		[]string{"姓名", "客户名称", "电话"},
		[][]any{{"张三", "甲公司", "1"}, {"李四", "乙公司", "2"}})
	docx := testutil.WriteDocx(t, e.fixture, "tpl.docx",
		testutil.DocumentXML("{{姓名}} / {{客户名}} / {{地址}}"), nil)

	w := e.upload(t, "/api/source", xlsx)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var src SourceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &src))
	assert.Equal(t, "data.xlsx", src.FileName)
	assert.Equal(t, 2, src.TotalRows)
	assert.Equal(t, []string{"姓名", "客户名称", "电话"}, src.Headers)

	w = e.upload(t, "/api/template", docx)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tpl TemplateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tpl))
	assert.ElementsMatch(t, []string{"姓名", "客户名", "地址"}, tpl.Variables)

	return src.ID, tpl.ID
}

func parseEvents(t *testing.T, body string) []generateEvent {
	t.Helper()
	var events []generateEvent
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev generateEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

func TestStatus(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "test", resp.Version)
	assert.True(t, resp.FuzzyEnabled)
	assert.Equal(t, 0.6, resp.Threshold)
}

func TestUploadRejectsBadFiles(t *testing.T) {
	e := newTestEnv(t)

	bad := filepath.Join(e.fixture, "bad.xlsx")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0644))
	w := e.upload(t, "/api/source", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.upload(t, "/api/template", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/source", nil)
	assert.Equal(t, http.StatusBadRequest, e.do(t, req).Code)
}

func TestMatch(t *testing.T) {
	e := newTestEnv(t)
	srcID, tplID := e.uploadFixtures(t)

	w := e.postJSON(t, "/api/match", MatchRequest{SourceID: srcID, TemplateID: tplID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		model.MatchResult
		FullyMatched bool   `json:"fullyMatched"`
		Summary      string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"姓名", "客户名称"}, resp.Matched)
	assert.Equal(t, []string{"电话"}, resp.UnmatchedSource)
	assert.Equal(t, []string{"地址"}, resp.UnmatchedTarget)
	assert.False(t, resp.FullyMatched)
	assert.Equal(t, "变量匹配完成：2 个匹配，1 个Excel变量未匹配，1 个模板变量未匹配", resp.Summary)

	fuzzy := false
	w = e.postJSON(t, "/api/match", MatchRequest{SourceID: srcID, TemplateID: tplID, Fuzzy: &fuzzy})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"姓名"}, resp.Matched)
}

func TestMatchUnknownIDs(t *testing.T) {
	e := newTestEnv(t)
	w := e.postJSON(t, "/api/match", MatchRequest{SourceID: "x", TemplateID: "y"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.postJSON(t, "/api/match", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateStreamAndDownload(t *testing.T) {
	e := newTestEnv(t)
	srcID, tplID := e.uploadFixtures(t)

	w := e.postJSON(t, "/api/generate/stream", MatchRequest{SourceID: srcID, TemplateID: tplID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	events := parseEvents(t, w.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, "start", events[0].Type)

	var progress int
	for _, ev := range events {
		if ev.Type == "progress" {
			progress++
		}
	}
	assert.Equal(t, 2, progress)

	var packaging []generateEvent
	for _, ev := range events {
		if ev.Type == "packaging" {
			packaging = append(packaging, ev)
		}
	}
	// 两份文档加一份报告
	require.Len(t, packaging, 3)
	assert.Equal(t, float64(3), packaging[2].Data.(map[string]any)["done"])

	last := events[len(events)-1]
	require.Equal(t, "done", last.Type, last.Message)
	assert.Contains(t, last.Message, "成功生成 2 个文档")

	data := last.Data.(map[string]any)
	assert.Equal(t, float64(2), data["succeeded"])
	runID := data["runId"].(string)
	url := data["downloadUrl"].(string)

	w = e.do(t, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, w.Code)
	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"张三.docx", "李四.docx", "生成报告.xlsx"}, names)

	// 一次性令牌
	w = e.do(t, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, httptest.NewRequest(http.MethodGet, "/api/runs/"+runID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var run model.GenerationRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, model.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.Succeeded)

	w = e.do(t, httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), runID)
}

func TestGetRunNotFound(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewSourceInvalidatesCachedMatch(t *testing.T) {
	e := newTestEnv(t)
	srcID, tplID := e.uploadFixtures(t)

	w := e.postJSON(t, "/api/match", MatchRequest{SourceID: srcID, TemplateID: tplID})
	require.Equal(t, http.StatusOK, w.Code)
	_, ok := e.handler.uploads.cachedMatch(srcID, tplID, true)
	require.True(t, ok)

	xlsx := testutil.WriteXLSX(t, e.fixture, "other.xlsx", []string{"A"}, nil)
	require.Equal(t, http.StatusOK, e.upload(t, "/api/source", xlsx).Code)

	_, ok = e.handler.uploads.cachedMatch(srcID, tplID, true)
	assert.False(t, ok)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(errors.NewValidationError("x", "y")))
	assert.Equal(t, http.StatusNotFound, statusFor(errors.NewNotFoundError("run", "1")))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(errors.NewMalformedDataError("a", "b", nil)))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(errors.NewRenderError("a", "b", nil)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestDownloadStoreExpiry(t *testing.T) {
	s := newDownloadStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	path := filepath.Join(t.TempDir(), "a.zip")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	token := s.put(path, "a.zip", time.Minute)

	now = now.Add(2 * time.Minute)
	_, ok := s.take(token)
	assert.False(t, ok)
	assert.NoFileExists(t, path, "expired downloads are removed")
}

func TestGenerateStreamDuplicateNamesPackedOnce(t *testing.T) {
	e := newTestEnv(t)
	xlsx := testutil.WriteXLSX(t, e.fixture, "dup.xlsx",
		[]string{"姓名", "备注"},
		[][]any{{"张三", "first"}, {"张三", "second"}})
	docx := testutil.WriteDocx(t, e.fixture, "tpl.docx", testutil.DocumentXML("{{姓名}} {{备注}}"), nil)

	var src SourceResponse
	w := e.upload(t, "/api/source", xlsx)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &src))
	var tpl TemplateResponse
	w = e.upload(t, "/api/template", docx)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tpl))

	w = e.postJSON(t, "/api/generate/stream", MatchRequest{SourceID: src.ID, TemplateID: tpl.ID})
	events := parseEvents(t, w.Body.String())
	last := events[len(events)-1]
	require.Equal(t, "done", last.Type, last.Message)

	w = e.do(t, httptest.NewRequest(http.MethodGet, last.Data.(map[string]any)["downloadUrl"].(string), nil))
	require.Equal(t, http.StatusOK, w.Code)
	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"张三.docx", "生成报告.xlsx"}, names)
}

func TestUploadRegistryPurgesExpired(t *testing.T) {
	r := newUploadRegistry()
	now := time.Now()
	r.now = func() time.Time { return now }

	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.xlsx")
	require.NoError(t, os.WriteFile(oldPath, []byte("x"), 0644))
	r.putSource(&sourceUpload{id: "old", path: oldPath})
	r.putTemplate(&templateUpload{id: "tpl", path: filepath.Join(dir, "tpl.docx")})

	now = now.Add(uploadTTL + time.Minute)
	r.putSource(&sourceUpload{id: "new", path: filepath.Join(dir, "new.xlsx")})

	_, ok := r.source("old")
	assert.False(t, ok)
	_, ok = r.template("tpl")
	assert.False(t, ok)
	_, ok = r.source("new")
	assert.True(t, ok)
	assert.NoFileExists(t, oldPath, "expired uploads are removed")
}

func TestPurgeStaleDirs(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "stale")
	fresh := filepath.Join(root, "fresh")
	require.NoError(t, os.MkdirAll(stale, 0755))
	require.NoError(t, os.MkdirAll(fresh, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "note.txt"), []byte("x"), 0644))

	old := time.Now().Add(-2 * outputTTL)
	require.NoError(t, os.Chtimes(stale, old, old))

	n, err := purgeStaleDirs(root, time.Now().Add(-outputTTL))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoDirExists(t, stale)
	assert.DirExists(t, fresh)
	assert.FileExists(t, filepath.Join(root, "note.txt"))

	n, err = purgeStaleDirs(filepath.Join(root, "missing"), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}
