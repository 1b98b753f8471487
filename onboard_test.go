package onboard_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/onboard"
	"github.com/aretw0/onboard/pkg/adapters/preview"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresSubmitter(t *testing.T) {
	_, err := onboard.New(nil)
	assert.ErrorIs(t, err, onboard.ErrNoSubmitter)
}

func TestService_WiresCollaborators(t *testing.T) {
	var (
		mu     sync.Mutex
		notes  []domain.Notification
		steps  []domain.StepID
		opened []bool
		hooked int
	)
	svc, err := onboard.New(
		ports.SubmitterFunc(func(context.Context, *domain.Submission) error { return nil }),
		onboard.WithPreviews(preview.NewRegistry("/previews")),
		onboard.WithNotifier(ports.NotifierFunc(func(_ context.Context, n domain.Notification) {
			mu.Lock()
			defer mu.Unlock()
			notes = append(notes, n)
		})),
		onboard.WithStateListener(func(_ string, _, next *domain.State) {
			if next != nil {
				steps = append(steps, next.CurrentStep)
			}
		}),
		onboard.WithOpenChange(func(_ string, open bool) { opened = append(opened, open) }),
		onboard.WithLifecycleHooks(domain.LifecycleHooks{
			OnStepEnter: func(context.Context, *domain.StepEvent) { hooked++ },
		}),
		onboard.WithMaxInputSize(8),
	)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Open(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, opened)
	assert.Equal(t, 1, hooked)

	_, err = svc.Set(ctx, "s1", domain.FieldFirstName, domain.Text("Bartholomew"))
	assert.Error(t, err, "answers longer than the configured limit are refused")

	_, err = svc.Set(ctx, "s1", domain.FieldFirstName, domain.Text("Ada"))
	require.NoError(t, err)
	_, err = svc.Continue(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []domain.StepID{domain.StepFirstName, domain.StepFirstName, domain.StepLastName}, steps)

	require.NoError(t, svc.RequestClose(ctx, "s1"))
	assert.Equal(t, []bool{true, false}, opened)
	assert.Equal(t, 0, svc.LivePreviews())
	assert.Empty(t, notes)
}
