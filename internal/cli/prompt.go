package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/internal/presentation/tui"
	"github.com/aretw0/onboard/internal/runtime"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/host"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Commands recognised at every field prompt.
const (
	CmdBack  = ":back"
	CmdQuit  = ":quit"
	CmdClear = ":clear"
)

var (
	errBack = errors.New("back requested")
	errQuit = errors.New("wizard dismissed")
)

// inputError is a problem with what the user typed; the field is asked again.
type inputError struct {
	err error
}

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

// SecretReader reads one line without echoing it.
type SecretReader func() (string, error)

// TerminalSecret reads hidden input from the terminal behind fd.
func TerminalSecret(fd int) SecretReader {
	return func() (string, error) {
		b, err := term.ReadPassword(fd)
		return string(b), err
	}
}

// Prompt drives one wizard from a line-oriented terminal.
type Prompt struct {
	host   *host.Host
	in     *bufio.Reader
	out    *termenv.Output
	render tui.Renderer
	secret SecretReader
	logger *slog.Logger
	resume bool

	pending chan lineResult
}

// Option configures the Prompt.
type Option func(*Prompt)

// WithInput sets where answers are read from.
func WithInput(r io.Reader) Option {
	return func(p *Prompt) {
		p.in = bufio.NewReader(r)
	}
}

// WithOutput sets where steps and errors are written.
func WithOutput(w io.Writer) Option {
	return func(p *Prompt) {
		p.out = tui.NewOutput(w)
	}
}

// WithRenderer sets the markdown renderer of step headings.
func WithRenderer(r tui.Renderer) Option {
	return func(p *Prompt) {
		p.render = r
	}
}

// WithSecretReader reads sensitive fields without echo.
func WithSecretReader(r SecretReader) Option {
	return func(p *Prompt) {
		p.secret = r
	}
}

// WithLogger configures a logger for the Prompt.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prompt) {
		p.logger = logger
	}
}

// WithResume continues a stored wizard instead of opening a fresh one.
func WithResume(resume bool) Option {
	return func(p *Prompt) {
		p.resume = resume
	}
}

// NewPrompt creates a Prompt over h reading stdin and writing stdout.
func NewPrompt(h *host.Host, opts ...Option) *Prompt {
	p := &Prompt{
		host:   h,
		in:     bufio.NewReader(os.Stdin),
		out:    tui.NewOutput(os.Stdout),
		render: tui.PlainRenderer,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run walks the wizard of sessionID until it is submitted and acknowledged,
// dismissed with :quit, or ctx is cancelled. Dismissal and interruption
// close the wizard and are not errors.
func (p *Prompt) Run(ctx context.Context, sessionID string) error {
	state, err := p.start(ctx, sessionID)
	if err != nil {
		return err
	}

	for {
		if state.Terminal() {
			return p.complete(ctx, sessionID, state)
		}

		p.showStep(state)
		filled, err := p.fillStep(ctx, sessionID, state)
		switch {
		case errors.Is(err, errBack):
			state, err = p.host.Back(ctx, sessionID)
			if err != nil {
				return err
			}
			continue
		case interrupted(err):
			return p.dismiss(ctx, sessionID)
		case err != nil:
			return err
		}

		state, err = p.advance(ctx, sessionID, filled)
		if interrupted(err) {
			return p.dismiss(ctx, sessionID)
		}
		if err != nil {
			return err
		}
	}
}

func (p *Prompt) start(ctx context.Context, sessionID string) (*domain.State, error) {
	if p.resume {
		state, err := p.host.State(ctx, sessionID)
		switch {
		case err == nil && !state.Terminal() && !state.Submitting():
			p.logger.Info("session resumed", "session_id", sessionID, "step", state.CurrentStep)
			p.system("Resuming at '%s'.", state.CurrentStep.Title())
			return state, nil
		case err != nil && !errors.Is(err, domain.ErrSessionNotFound):
			return nil, err
		}
	}
	state, err := p.host.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p.system("Session '%s' active. Type %s, %s or %s at any prompt.", sessionID, CmdBack, CmdClear, CmdQuit)
	return state, nil
}

// advance leaves the step forwards: Continue on ordinary steps, a blocking
// submission on the last data-entry step.
func (p *Prompt) advance(ctx context.Context, sessionID string, state *domain.State) (*domain.State, error) {
	if state.CurrentStep != p.host.Engine().Graph().LastDataStep() {
		return p.host.Continue(ctx, sessionID)
	}

	next, err := p.host.Submit(ctx, sessionID)
	if err != nil || next.Error != "" {
		return next, err
	}
	p.system("Submitting registration...")
	if err := p.host.Wait(ctx); err != nil {
		return nil, err
	}
	return p.host.State(ctx, sessionID)
}

// fillStep asks every relevant field of the current step in catalogue order.
func (p *Prompt) fillStep(ctx context.Context, sessionID string, state *domain.State) (*domain.State, error) {
	for _, f := range domain.FieldsOf(state.CurrentStep) {
		if !relevant(f, state.Answers) {
			continue
		}
		for {
			next, err := p.ask(ctx, sessionID, state, f)
			if rejected(err) {
				p.fail(err.Error())
				continue
			}
			if err != nil {
				return nil, err
			}
			state = next
			break
		}
	}
	return state, nil
}

func (p *Prompt) ask(ctx context.Context, sessionID string, state *domain.State, f domain.Field) (*domain.State, error) {
	fmt.Fprint(p.out, label(f, state.Answers.Get(f.Name)))

	line, err := p.read(ctx, f.Sensitive)
	if err != nil {
		return nil, err
	}

	switch strings.TrimSpace(line) {
	case CmdBack:
		return nil, errBack
	case CmdQuit:
		return nil, errQuit
	case CmdClear:
		if f.Kind == domain.KindFile {
			return p.host.Remove(ctx, sessionID, f.Name)
		}
		return p.host.Set(ctx, sessionID, f.Name, domain.Empty(f.Kind))
	case "":
		return state, nil
	}

	if f.Kind != domain.KindFile {
		return p.host.Set(ctx, sessionID, f.Name, domain.Value{Kind: f.Kind, Text: line})
	}

	att, err := load(strings.TrimSpace(line))
	if err != nil {
		return nil, &inputError{err: err}
	}
	next, err := p.host.Attach(ctx, sessionID, f.Name, att)
	if err != nil {
		return nil, err
	}
	if bound := next.Answers.Attachment(f.Name); bound != nil {
		switch {
		case bound.Preview != nil:
			p.system("Preview: %s", bound.Preview.URL)
		case bound.Icon() != "":
			p.system("Attached document %s (%d bytes).", bound.Name, bound.Size)
		}
	}
	return next, nil
}

func (p *Prompt) complete(ctx context.Context, sessionID string, state *domain.State) error {
	p.showStep(state)
	fmt.Fprintln(p.out, runtime.SuccessDescription)
	fmt.Fprint(p.out, "Press Enter to close. ")
	if _, err := p.read(ctx, false); err != nil && !interrupted(err) {
		return err
	}
	return p.host.RequestClose(context.WithoutCancel(ctx), sessionID)
}

func (p *Prompt) dismiss(ctx context.Context, sessionID string) error {
	fmt.Fprintln(p.out)
	p.system("Registration dismissed.")
	return p.host.RequestClose(context.WithoutCancel(ctx), sessionID)
}

func (p *Prompt) showStep(state *domain.State) {
	steps := p.host.Engine().Graph().Steps()
	heading := fmt.Sprintf("## %s\n", state.CurrentStep.Title())
	for i, s := range steps[:len(steps)-1] {
		if s == state.CurrentStep {
			heading += fmt.Sprintf("\n_Step %d of %d_\n", i+1, len(steps)-1)
		}
	}

	text, err := p.render(heading)
	if err != nil {
		p.logger.Debug("markdown render failed", "err", err)
		text = heading
	}
	fmt.Fprint(p.out, text)
	if state.Error != "" {
		p.fail(state.Error)
	}
}

func (p *Prompt) fail(msg string) {
	fmt.Fprintln(p.out, p.out.String("! "+msg).Foreground(p.out.Color("1")).Bold())
}

func (p *Prompt) system(format string, args ...any) {
	fmt.Fprintf(p.out, ">>> %s\n", fmt.Sprintf(format, args...))
}

// lineResult is the outcome of one read from the terminal.
type lineResult struct {
	line   string
	hidden bool
	err    error
}

// read returns one line of input. It gives up when ctx is done even if the
// underlying reader is still blocked. That read stays outstanding and is
// reused by the next call, so at most one reader goroutine exists per Prompt.
func (p *Prompt) read(ctx context.Context, hidden bool) (string, error) {
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		go p.readLine(ch, hidden)
		p.pending = ch
	}

	select {
	case r := <-p.pending:
		p.pending = nil
		if r.err != nil {
			return "", r.err
		}
		line := strings.TrimRight(r.line, "\r\n")
		if !r.hidden {
			line = strings.TrimSpace(line)
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *Prompt) readLine(ch chan<- lineResult, hidden bool) {
	if hidden && p.secret != nil {
		line, err := p.secret()
		fmt.Fprintln(p.out)
		ch <- lineResult{line, true, err}
		return
	}
	line, err := p.in.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	ch <- lineResult{line, false, err}
}

// relevant hides the license fields of schemes the technician does not hold.
func relevant(f domain.Field, answers domain.Answers) bool {
	variant := answers.Text(domain.FieldCertification)
	switch f.Name {
	case domain.FieldIRATALevel, domain.FieldIRATALicenseNumber:
		return domain.IncludesIRATA(variant)
	case domain.FieldSPRATLevel, domain.FieldSPRATLicenseNumber:
		return domain.IncludesSPRAT(variant)
	}
	return true
}

func label(f domain.Field, current domain.Value) string {
	var hint string
	switch f.Kind {
	case domain.KindChoice:
		hint = " (" + strings.Join(f.Options, "/") + ")"
	case domain.KindDate:
		hint = " (YYYY-MM-DD)"
	case domain.KindFile:
		hint = " (path)"
	}

	var shown string
	switch {
	case current.IsZero():
	case f.Sensitive:
		shown = " [set]"
	case f.Kind == domain.KindFile:
		shown = " [" + current.File.Name + "]"
	default:
		shown = " [" + current.Text + "]"
	}
	return f.Label + hint + shown + ": "
}

// load reads a file from disk and determines its media type from the
// extension, sniffing the content when the extension is unknown.
func load(path string) (*domain.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	mediaType := mime.TypeByExtension(filepath.Ext(path))
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}
	return domain.NewAttachment(filepath.Base(path), mediaType, data), nil
}

// rejected reports whether err is about the answer itself, so the field
// can be asked again.
func rejected(err error) bool {
	var ie *inputError
	return errors.As(err, &ie) ||
		errors.Is(err, domain.ErrInvalidOption) ||
		errors.Is(err, domain.ErrFieldKind) ||
		errors.Is(err, runtime.ErrInputTooLarge) ||
		errors.Is(err, runtime.ErrInvalidUTF8)
}

func interrupted(err error) bool {
	return errors.Is(err, errQuit) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled)
}
