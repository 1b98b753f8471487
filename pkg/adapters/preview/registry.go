// Package preview provides PreviewProvider implementations.
package preview

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/google/uuid"
)

type entry struct {
	mediaType string
	data      []byte
}

// Registry keeps image previews in memory and serves them over HTTP.
// Safe for concurrent use.
type Registry struct {
	baseURL string

	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates a registry whose handle URLs are rooted at baseURL
// (e.g. "/previews").
func NewRegistry(baseURL string) *Registry {
	return &Registry{
		baseURL: strings.TrimRight(baseURL, "/"),
		entries: make(map[string]entry),
	}
}

// Create registers the attachment bytes under a fresh handle.
func (r *Registry) Create(att *domain.Attachment) (*domain.PreviewHandle, error) {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = entry{mediaType: att.MediaType, data: att.Data}

	return &domain.PreviewHandle{ID: id, URL: r.baseURL + "/" + id}, nil
}

// Revoke drops the handle. Its URL stops resolving immediately.
func (r *Registry) Revoke(handle *domain.PreviewHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[handle.ID]; !ok {
		return domain.ErrPreviewNotFound
	}
	delete(r.entries, handle.ID)
	return nil
}

// Live returns the number of registered previews.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ServeHTTP serves a preview by the last path segment of the request URL.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	id := req.URL.Path[strings.LastIndex(req.URL.Path, "/")+1:]

	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		http.NotFound(w, req)
		return
	}

	w.Header().Set("Content-Type", e.mediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(e.data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(e.data)
}
