package preview

import (
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/google/uuid"
)

// TempDir writes previews as files under a directory and deletes them on revoke.
// It is meant for terminal front ends that hand a file URL to an image viewer.
type TempDir struct {
	dir string

	mu    sync.Mutex
	files map[string]string
}

// NewTempDir creates a provider rooted at dir. An empty dir uses a fresh
// directory under os.TempDir.
func NewTempDir(dir string) (*TempDir, error) {
	if dir == "" {
		d, err := os.MkdirTemp("", "onboard-previews-")
		if err != nil {
			return nil, fmt.Errorf("failed to create preview directory: %w", err)
		}
		dir = d
	} else if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to ensure preview directory: %w", err)
	}
	return &TempDir{dir: dir, files: make(map[string]string)}, nil
}

// Dir returns the directory holding the previews.
func (t *TempDir) Dir() string {
	return t.dir
}

// Create writes the attachment bytes to a private file.
func (t *TempDir) Create(att *domain.Attachment) (*domain.PreviewHandle, error) {
	id := uuid.NewString()
	ext := filepath.Ext(att.Name)
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(att.MediaType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	path := filepath.Join(t.dir, id+ext)

	if err := os.WriteFile(path, att.Data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write preview: %w", err)
	}

	t.mu.Lock()
	t.files[id] = path
	t.mu.Unlock()

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return &domain.PreviewHandle{ID: id, URL: u.String()}, nil
}

// Revoke deletes the preview file.
func (t *TempDir) Revoke(handle *domain.PreviewHandle) error {
	t.mu.Lock()
	path, ok := t.files[handle.ID]
	delete(t.files, handle.ID)
	t.mu.Unlock()

	if !ok {
		return domain.ErrPreviewNotFound
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete preview: %w", err)
	}
	return nil
}

// Live returns the number of preview files not yet revoked.
func (t *TempDir) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.files)
}

// Close removes the preview directory and everything left in it.
func (t *TempDir) Close() error {
	t.mu.Lock()
	t.files = make(map[string]string)
	t.mu.Unlock()
	return os.RemoveAll(t.dir)
}
