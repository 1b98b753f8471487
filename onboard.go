package onboard

import (
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/internal/runtime"
	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/attachment"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/host"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/aretw0/onboard/pkg/session"
)

// Version of the onboard module.
const Version = "0.1.0"

// ErrNoSubmitter is returned by New when no registration endpoint is wired.
var ErrNoSubmitter = errors.New("a submitter is required")

// Service is the high-level entry point: a Host wired with an engine, a
// session manager and the configured collaborators.
type Service struct {
	*host.Host
	attachments *attachment.Manager
}

type config struct {
	store         ports.StateStore
	locker        ports.DistributedLocker
	notifier      ports.Notifier
	previews      ports.PreviewProvider
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	submitTimeout time.Duration
	maxInputSize  int
	listeners     []host.StateListener
	openChange    host.OpenChangeFunc
}

// Option defines a functional option for configuring the Service.
type Option func(*config)

// WithStore sets where wizard states are kept (default: in memory).
func WithStore(store ports.StateStore) Option {
	return func(c *config) {
		c.store = store
	}
}

// WithLocker serialises sessions across processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *config) {
		c.locker = locker
	}
}

// WithNotifier sets the sink of submission outcomes.
func WithNotifier(n ports.Notifier) Option {
	return func(c *config) {
		c.notifier = n
	}
}

// WithPreviews sets the provider of image preview handles.
func WithPreviews(p ports.PreviewProvider) Option {
	return func(c *config) {
		c.previews = p
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithSubmitTimeout bounds each call to the registration endpoint.
func WithSubmitTimeout(d time.Duration) Option {
	return func(c *config) {
		c.submitTimeout = d
	}
}

// WithMaxInputSize bounds a single text answer.
func WithMaxInputSize(n int) Option {
	return func(c *config) {
		c.maxInputSize = n
	}
}

// WithStateListener observes every persisted transition.
func WithStateListener(fn host.StateListener) Option {
	return func(c *config) {
		c.listeners = append(c.listeners, fn)
	}
}

// WithOpenChange registers the host container callback.
func WithOpenChange(fn host.OpenChangeFunc) Option {
	return func(c *config) {
		c.openChange = fn
	}
}

// New wires a Service that submits registrations through submitter.
func New(submitter ports.Submitter, opts ...Option) (*Service, error) {
	if submitter == nil {
		return nil, ErrNoSubmitter
	}

	c := &config{
		submitTimeout: host.DefaultSubmitTimeout,
		maxInputSize:  runtime.DefaultMaxInputSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.store == nil {
		c.store = memory.NewStore()
	}

	attachments := attachment.NewManager(c.previews, attachment.WithLogger(c.logger))
	engine := runtime.NewEngine(
		runtime.WithLogger(c.logger),
		runtime.WithLifecycleHooks(c.hooks),
		runtime.WithAttachments(attachments),
		runtime.WithMaxInputSize(c.maxInputSize),
	)

	sessionOpts := []session.Option{session.WithLogger(c.logger)}
	if c.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(c.locker))
	}

	hostOpts := []host.Option{
		host.WithLogger(c.logger),
		host.WithSubmitTimeout(c.submitTimeout),
		host.WithOpenChange(c.openChange),
	}
	if c.notifier != nil {
		hostOpts = append(hostOpts, host.WithNotifier(c.notifier))
	}
	for _, l := range c.listeners {
		hostOpts = append(hostOpts, host.WithStateListener(l))
	}

	return &Service{
		Host:        host.New(engine, session.NewManager(c.store, sessionOpts...), submitter, hostOpts...),
		attachments: attachments,
	}, nil
}

// LivePreviews returns the number of preview handles currently held.
func (s *Service) LivePreviews() int {
	return s.attachments.Live()
}
