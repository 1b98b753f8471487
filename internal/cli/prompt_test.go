package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/onboard/internal/cli"
	"github.com/aretw0/onboard/internal/runtime"
	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/adapters/preview"
	"github.com/aretw0/onboard/pkg/attachment"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/host"
	"github.com/aretw0/onboard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type submitter struct {
	mu      sync.Mutex
	calls   []*domain.Submission
	outcome error
}

func (s *submitter) Submit(ctx context.Context, sub *domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sub)
	return s.outcome
}

type fixture struct {
	host   *host.Host
	sub    *submitter
	opened []bool
}

func newFixture(t *testing.T, outcome error) *fixture {
	t.Helper()
	f := &fixture{sub: &submitter{outcome: outcome}}
	engine := runtime.NewEngine(runtime.WithAttachments(attachment.NewManager(preview.NewRegistry("/previews"))))
	f.host = host.New(engine, session.NewManager(memory.NewStore()), f.sub,
		host.WithOpenChange(func(id string, open bool) { f.opened = append(f.opened, open) }),
	)
	return f
}

func (f *fixture) run(t *testing.T, lines []string, opts ...cli.Option) string {
	t.Helper()
	var out bytes.Buffer
	opts = append([]cli.Option{
		cli.WithInput(strings.NewReader(strings.Join(lines, "\n") + "\n")),
		cli.WithOutput(&out),
	}, opts...)
	require.NoError(t, cli.NewPrompt(f.host, opts...).Run(context.Background(), "tech-1"))
	return out.String()
}

// Lines answering every step up to, and excluding, the certification step.
var personal = []string{"Ada", "Lovelace", "ada@example.com", "Valid123", "Valid123", "555-0100", ""}

// Lines from the address step to the end of the emergency contact step.
var contact = []string{"1 Rope St", "Halifax", "NS", "Canada", "B3H 1A1", "Charles", "555-0199"}

func join(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestPrompt_CompletesAndSubmits(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, nil)
	out := f.run(t, join(
		personal,
		[]string{"none"},
		contact,
		[]string{"", "", ""},     // driver's license
		[]string{"", "", "", ""}, // banking
		[]string{""},             // social insurance
		[]string{"none"},         // medical conditions
		[]string{""},             // acknowledge
	))

	assert.Contains(t, out, "## First name")
	assert.Contains(t, out, "_Step 1 of 14_")
	assert.NotContains(t, out, "IRATA level", "license fields are skipped without a certification")
	assert.Contains(t, out, "## Registration complete")
	assert.Contains(t, out, runtime.SuccessDescription)

	require.Len(t, f.sub.calls, 1)
	first, ok := f.sub.calls[0].Field(domain.FieldFirstName)
	require.True(t, ok)
	assert.Equal(t, "Ada", first)
	medical, _ := f.sub.calls[0].Field(domain.FieldMedicalConditions)
	assert.Equal(t, "none", medical)

	assert.Equal(t, []bool{true, false}, f.opened)
	_, err := f.host.State(context.Background(), "tech-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestPrompt_ValidationErrorKeepsStep(t *testing.T) {
	f := newFixture(t, nil)
	out := f.run(t, []string{"Ada", "Lovelace", "nope", "ada@example.com", cli.CmdQuit})

	assert.Contains(t, out, runtime.MsgInvalidEmail)
	assert.Contains(t, out, "Email [nope]: ")
	assert.Contains(t, out, "## Password")
	assert.Contains(t, out, "Registration dismissed.")
	assert.Equal(t, []bool{true, false}, f.opened)
}

func TestPrompt_InvalidOptionIsAskedAgain(t *testing.T) {
	f := newFixture(t, nil)
	out := f.run(t, join(personal, []string{
		"rope", "irata", // certification
		"4", "2", "12x", "", "", // license, rejected on continue
		"", "1234", "", "", // license again
	}))

	assert.Contains(t, out, domain.ErrInvalidOption.Error())
	assert.Contains(t, out, "IRATA level (1/2/3): ")
	assert.NotContains(t, out, "SPRAT level")
	assert.Contains(t, out, "IRATA license number must be a number")
	assert.Contains(t, out, "## Address")
}

func TestPrompt_Back(t *testing.T) {
	f := newFixture(t, nil)
	out := f.run(t, []string{"Ada", cli.CmdBack, ""})

	assert.Contains(t, out, "First name [Ada]: ")
	assert.Equal(t, 2, strings.Count(out, "## Last name"))
}

func TestPrompt_ClearRemovesAnswer(t *testing.T) {
	f := newFixture(t, nil)
	out := f.run(t, []string{"Ada", cli.CmdBack, cli.CmdClear})

	assert.Contains(t, out, runtime.RequiredMessage(domain.FieldFirstName))
}

func TestPrompt_SubmissionFailureStaysOnLastStep(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, errors.New("connection reset"))
	out := f.run(t, join(
		personal,
		[]string{"none"},
		contact,
		[]string{"", "", "", "", "", "", "", ""},
		[]string{"none"},
		[]string{cli.CmdQuit},
	))

	assert.Contains(t, out, runtime.GenericFailure)
	assert.Contains(t, out, "Medical conditions [none]: ")
	assert.NotContains(t, out, "## Registration complete")
	assert.Len(t, f.sub.calls, 1)
}

func TestPrompt_AttachesFiles(t *testing.T) {
	dir := t.TempDir()
	front := filepath.Join(dir, "front.png")
	require.NoError(t, os.WriteFile(front, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	f := newFixture(t, nil)
	out := f.run(t, join(
		personal,
		[]string{"none"},
		contact,
		[]string{"", filepath.Join(dir, "missing.png"), front, ""},
	))

	assert.Contains(t, out, "failed to read")
	assert.Contains(t, out, ">>> Preview: /previews/")
}

func TestPrompt_SensitiveFieldsUseSecretReader(t *testing.T) {
	secrets := []string{"Valid123", "Valid123"}
	reader := func() (string, error) {
		s := secrets[0]
		secrets = secrets[1:]
		return s, nil
	}

	f := newFixture(t, nil)
	out := f.run(t, []string{"Ada", "Lovelace", "ada@example.com", "555-0100"}, cli.WithSecretReader(reader))

	assert.Empty(t, secrets)
	assert.Contains(t, out, "## Birthday")
	assert.NotContains(t, out, "Valid123")
}

func TestPrompt_Resume(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.host.Open(ctx, "tech-1")
	require.NoError(t, err)
	_, err = f.host.Set(ctx, "tech-1", domain.FieldFirstName, domain.Text("Ada"))
	require.NoError(t, err)
	_, err = f.host.Continue(ctx, "tech-1")
	require.NoError(t, err)

	out := f.run(t, nil, cli.WithResume(true))

	assert.Contains(t, out, "Resuming at 'Last name'.")
	assert.NotContains(t, out, "## First name")
}

func TestPrompt_InterruptedReadIsReused(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	var firstNames []string
	engine := runtime.NewEngine()
	h := host.New(engine, session.NewManager(memory.NewStore()), &submitter{},
		host.WithStateListener(func(id string, prev, next *domain.State) {
			mu.Lock()
			defer mu.Unlock()
			if next != nil && next.Answers.Text(domain.FieldFirstName) != "" {
				firstNames = append(firstNames, next.Answers.Text(domain.FieldFirstName))
			}
		}),
	)

	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	p := cli.NewPrompt(h, cli.WithInput(pr), cli.WithOutput(&out))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	require.NoError(t, p.Run(ctx, "tech-1"), "an interrupt dismisses the wizard")
	assert.Contains(t, out.String(), "Registration dismissed.")

	go func() {
		_, _ = io.WriteString(pw, "Ada\n:quit\n")
	}()
	require.NoError(t, p.Run(context.Background(), "tech-1"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Ada"}, firstNames, "the line typed after the interrupt reaches the new wizard")
}
