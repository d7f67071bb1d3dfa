package api

import (
	"os"
	"sync"
	"time"

	"github.com/nygula/Taoda/internal/model"
)

type sourceUpload struct {
	id         string
	fileName   string
	path       string
	data       *model.ExcelData
	uploadedAt time.Time
}

type templateUpload struct {
	id         string
	fileName   string
	path       string
	template   *model.Template
	uploadedAt time.Time
}

type cachedMatch struct {
	sourceID   string
	templateID string
	fuzzy      bool
	result     *model.MatchResult
}

// uploadTTL 上传文件保留时间，超时后登记与文件一并删除
const uploadTTL = 24 * time.Hour

// uploadRegistry 已上传的数据与模板，按 id 索引
type uploadRegistry struct {
	mu        sync.RWMutex
	sources   map[string]*sourceUpload
	templates map[string]*templateUpload
	match     *cachedMatch
	ttl       time.Duration
	now       func() time.Time
}

func newUploadRegistry() *uploadRegistry {
	return &uploadRegistry{
		sources:   make(map[string]*sourceUpload),
		templates: make(map[string]*templateUpload),
		ttl:       uploadTTL,
		now:       time.Now,
	}
}

// putSource 新的数据文件使缓存的匹配结果失效
func (r *uploadRegistry) putSource(u *sourceUpload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.purgeExpiredLocked(now)
	u.uploadedAt = now
	r.sources[u.id] = u
	r.match = nil
}

func (r *uploadRegistry) putTemplate(u *templateUpload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.purgeExpiredLocked(now)
	u.uploadedAt = now
	r.templates[u.id] = u
	r.match = nil
}

func (r *uploadRegistry) purgeExpiredLocked(now time.Time) {
	for id, u := range r.sources {
		if now.Sub(u.uploadedAt) > r.ttl {
			delete(r.sources, id)
			_ = os.Remove(u.path)
		}
	}
	for id, u := range r.templates {
		if now.Sub(u.uploadedAt) > r.ttl {
			delete(r.templates, id)
			_ = os.Remove(u.path)
		}
	}
}

func (r *uploadRegistry) source(id string) (*sourceUpload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.sources[id]
	return u, ok
}

func (r *uploadRegistry) template(id string) (*templateUpload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.templates[id]
	return u, ok
}

func (r *uploadRegistry) setMatch(m *cachedMatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.match = m
}

func (r *uploadRegistry) cachedMatch(sourceID, templateID string, fuzzy bool) (*model.MatchResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.match
	if m == nil || m.sourceID != sourceID || m.templateID != templateID || m.fuzzy != fuzzy {
		return nil, false
	}
	return m.result, true
}

func (r *uploadRegistry) counts() (sources, templates int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources), len(r.templates)
}
