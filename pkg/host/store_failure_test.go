package host_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aretw0/onboard/internal/runtime"
	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/adapters/preview"
	"github.com/aretw0/onboard/pkg/attachment"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/host"
	"github.com/aretw0/onboard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("store unavailable")

// flakyStore fails the operations whose switch is on.
type flakyStore struct {
	*memory.Store
	failSave   atomic.Bool
	failDelete atomic.Bool
	failLoad   atomic.Bool
}

func (s *flakyStore) Save(ctx context.Context, id string, state *domain.State) error {
	if s.failSave.Load() {
		return errUnavailable
	}
	return s.Store.Save(ctx, id, state)
}

func (s *flakyStore) Delete(ctx context.Context, id string) error {
	if s.failDelete.Load() {
		return errUnavailable
	}
	return s.Store.Delete(ctx, id)
}

func (s *flakyStore) Load(ctx context.Context, id string) (*domain.State, error) {
	if s.failLoad.Load() {
		return nil, errUnavailable
	}
	return s.Store.Load(ctx, id)
}

// strictPreviews records revocations of handles that are not live.
type strictPreviews struct {
	*preview.Registry
	mu      sync.Mutex
	doubles []string
}

func (p *strictPreviews) Revoke(handle *domain.PreviewHandle) error {
	err := p.Registry.Revoke(handle)
	if errors.Is(err, domain.ErrPreviewNotFound) {
		p.mu.Lock()
		p.doubles = append(p.doubles, handle.ID)
		p.mu.Unlock()
	}
	return err
}

func (p *strictPreviews) doubleRevokes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.doubles...)
}

func newFlakyHost(t *testing.T) (*host.Host, *flakyStore, *strictPreviews) {
	t.Helper()
	store := &flakyStore{Store: memory.NewStore()}
	previews := &strictPreviews{Registry: preview.NewRegistry("/previews")}
	engine := runtime.NewEngine(runtime.WithAttachments(attachment.NewManager(previews)))
	h := host.New(engine, session.NewManager(store), &fakeSubmitter{})
	t.Cleanup(func() {
		assert.Empty(t, previews.doubleRevokes(), "no handle may be revoked twice")
	})
	return h, store, previews
}

// openAt opens s1 with every answer set and walks it to target.
func openAt(t *testing.T, h *host.Host, target domain.StepID) *domain.State {
	t.Helper()
	ctx := context.Background()
	s, err := h.Open(ctx, "s1")
	require.NoError(t, err)
	for _, a := range answers {
		_, err := h.Set(ctx, "s1", a.field, a.value)
		require.NoError(t, err)
	}
	for s.CurrentStep != target {
		s, err = h.Continue(ctx, "s1")
		require.NoError(t, err)
		require.Empty(t, s.Error)
	}
	return s
}

func licensePNG() *domain.Attachment {
	return domain.NewAttachment("a.png", "image/png", []byte("png"))
}

func TestHost_AttachWithFailedSaveLeavesNoHandle(t *testing.T) {
	h, store, previews := newFlakyHost(t)
	ctx := context.Background()
	openAt(t, h, domain.StepDriversLicense)

	store.failSave.Store(true)
	_, err := h.Attach(ctx, "s1", domain.FieldDriversLicense, licensePNG())
	require.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, 0, previews.Live())

	store.failSave.Store(false)
	s, err := h.State(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, s.Answers.Attachment(domain.FieldDriversLicense))

	require.NoError(t, h.Close(ctx, "s1"))
	assert.Equal(t, 0, previews.Live())
}

func TestHost_ContinueWithFailedSaveKeepsPreview(t *testing.T) {
	h, store, previews := newFlakyHost(t)
	ctx := context.Background()
	openAt(t, h, domain.StepDriversLicense)

	_, err := h.Attach(ctx, "s1", domain.FieldDriversLicense, licensePNG())
	require.NoError(t, err)
	require.Equal(t, 1, previews.Live())

	store.failSave.Store(true)
	_, err = h.Continue(ctx, "s1")
	require.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, 1, previews.Live(), "the persisted state still shows the preview")

	store.failSave.Store(false)
	s, err := h.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepDriversLicense, s.CurrentStep)
	require.NotNil(t, s.Answers.Attachment(domain.FieldDriversLicense).Preview)

	s, err = h.Continue(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepBanking, s.CurrentStep)
	assert.Equal(t, 0, previews.Live())
}

func TestHost_BackWithFailedSaveReleasesNewPreview(t *testing.T) {
	h, store, previews := newFlakyHost(t)
	ctx := context.Background()
	openAt(t, h, domain.StepDriversLicense)

	_, err := h.Attach(ctx, "s1", domain.FieldDriversLicense, licensePNG())
	require.NoError(t, err)
	_, err = h.Continue(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 0, previews.Live())

	store.failSave.Store(true)
	_, err = h.Back(ctx, "s1")
	require.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, 0, previews.Live(), "a preview shown for an unsaved step is revoked")

	store.failSave.Store(false)
	s, err := h.Back(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepDriversLicense, s.CurrentStep)
	assert.Equal(t, 1, previews.Live())

	require.NoError(t, h.Close(ctx, "s1"))
	assert.Equal(t, 0, previews.Live())
}

func TestHost_ReopenWithFailedSaveKeepsWizard(t *testing.T) {
	h, store, previews := newFlakyHost(t)
	ctx := context.Background()
	openAt(t, h, domain.StepDriversLicense)

	_, err := h.Attach(ctx, "s1", domain.FieldDriversLicense, licensePNG())
	require.NoError(t, err)

	store.failSave.Store(true)
	_, err = h.Open(ctx, "s1")
	require.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, 1, previews.Live())

	store.failSave.Store(false)
	s, err := h.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepDriversLicense, s.CurrentStep)

	s, err = h.Open(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepFirstName, s.CurrentStep)
	assert.Equal(t, 0, previews.Live())
}

func TestHost_CloseWithFailedDeleteKeepsWizard(t *testing.T) {
	h, store, previews := newFlakyHost(t)
	ctx := context.Background()
	openAt(t, h, domain.StepDriversLicense)

	_, err := h.Attach(ctx, "s1", domain.FieldDriversLicense, licensePNG())
	require.NoError(t, err)

	store.failDelete.Store(true)
	require.ErrorIs(t, h.Close(ctx, "s1"), errUnavailable)
	assert.Equal(t, 1, previews.Live())

	s, err := h.State(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, s.Answers.Attachment(domain.FieldDriversLicense).Preview)

	store.failDelete.Store(false)
	require.NoError(t, h.Close(ctx, "s1"))
	assert.Equal(t, 0, previews.Live())
	_, err = h.State(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestHost_FailedLoadChangesNothing(t *testing.T) {
	h, store, previews := newFlakyHost(t)
	ctx := context.Background()
	openAt(t, h, domain.StepDriversLicense)

	_, err := h.Attach(ctx, "s1", domain.FieldDriversLicense, licensePNG())
	require.NoError(t, err)

	store.failLoad.Store(true)
	_, err = h.Continue(ctx, "s1")
	assert.ErrorIs(t, err, errUnavailable)
	assert.ErrorIs(t, h.Close(ctx, "s1"), errUnavailable)
	assert.Equal(t, 1, previews.Live())

	store.failLoad.Store(false)
	require.NoError(t, h.Close(ctx, "s1"))
	assert.Equal(t, 0, previews.Live())
}
