package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/onboard"
	"github.com/aretw0/onboard/internal/adapters/file"
	"github.com/aretw0/onboard/internal/config"
	api "github.com/aretw0/onboard/pkg/adapters/http"
	"github.com/aretw0/onboard/pkg/adapters/memory"
	natsnotify "github.com/aretw0/onboard/pkg/adapters/nats"
	"github.com/aretw0/onboard/pkg/adapters/notify"
	"github.com/aretw0/onboard/pkg/adapters/postgres"
	"github.com/aretw0/onboard/pkg/adapters/preview"
	"github.com/aretw0/onboard/pkg/adapters/redis"
	"github.com/aretw0/onboard/pkg/adapters/submit"
	"github.com/aretw0/onboard/pkg/observability"
	"github.com/aretw0/onboard/pkg/persistence/middleware"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/aretw0/onboard/pkg/redact"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var errNoEndpoint = errors.New("endpoint is required (flag --endpoint, ONBOARD_ENDPOINT or onboard.yml)")

// lockPrefix namespaces the distributed session locks in Redis.
const lockPrefix = "onboard:"

// app is the fully wired process: service, adapters and what must be
// released on exit.
type app struct {
	service  *onboard.Service
	streams  *api.StreamManager
	redactor *redact.Redactor
	previews http.Handler
	registry *prometheus.Registry

	closers []func()
}

// mode selects the front end the app is wired for.
type mode int

const (
	modeServe mode = iota
	modeTerminal
)

// Close releases every resource opened by build, last opened first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// build wires the service from configuration.
func build(ctx context.Context, cfg *config.Config, logger *slog.Logger, m mode) (_ *app, err error) {
	if cfg.Endpoint == "" {
		return nil, errNoEndpoint
	}

	a := &app{registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.redactor, err = redact.New(cfg.RedactPatterns...)
	if err != nil {
		return nil, err
	}

	store, locker, err := a.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	previews, err := a.openPreviews(cfg, m)
	if err != nil {
		return nil, err
	}

	notifier, err := a.openNotifier(cfg, logger, m)
	if err != nil {
		return nil, err
	}

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(a.registry)
	if err != nil {
		return nil, err
	}

	submitOpts := []submit.Option{submit.WithLogger(logger)}
	for k, v := range cfg.EndpointHeader {
		submitOpts = append(submitOpts, submit.WithHeader(k, v))
	}

	opts := []onboard.Option{
		onboard.WithStore(store),
		onboard.WithNotifier(notifier),
		onboard.WithPreviews(previews),
		onboard.WithLogger(logger),
		onboard.WithSubmitTimeout(cfg.SubmitTimeout),
		onboard.WithLifecycleHooks(observability.Combine(observability.LoggingHooks(logger), metrics.Hooks())),
	}
	if locker != nil {
		opts = append(opts, onboard.WithLocker(locker))
	}
	if a.streams != nil {
		opts = append(opts, onboard.WithStateListener(a.streams.Publish))
	}

	a.service, err = onboard.New(submit.New(cfg.Endpoint, submitOpts...), opts...)
	if err != nil {
		return nil, err
	}
	if err := observability.RegisterPreviewGauge(a.registry, a.service.LivePreviews); err != nil {
		return nil, err
	}
	return a, nil
}

// openStore selects the configured StateStore, wrapped with encryption when
// a key is configured. Redis also provides the distributed locker.
func (a *app) openStore(ctx context.Context, cfg *config.Config) (ports.StateStore, ports.DistributedLocker, error) {
	var (
		store  ports.StateStore
		locker ports.DistributedLocker
	)
	switch cfg.Store {
	case config.StoreFile:
		store = file.New(cfg.StoreDir)
	case config.StoreRedis:
		rs := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.SessionTTL))
		a.closers = append(a.closers, func() { _ = rs.Close() })
		store, locker = rs, redis.NewLocker(rs.Client(), lockPrefix)
	case config.StorePostgres:
		ps, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, ps.Close)
		store = ps
	default:
		store = memory.NewStore()
	}

	if cfg.EncryptionKey == "" {
		return store, locker, nil
	}
	key, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse encryption_key: %w", err)
	}
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	if err != nil {
		return nil, nil, err
	}
	return middleware.Chain(store, encrypt), locker, nil
}

// openPreviews serves previews over HTTP in server mode and writes them to a
// private directory for the terminal.
func (a *app) openPreviews(cfg *config.Config, m mode) (ports.PreviewProvider, error) {
	if m == modeServe {
		reg := preview.NewRegistry("/previews")
		a.previews = reg
		return reg, nil
	}
	td, err := preview.NewTempDir(cfg.PreviewDir)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = td.Close() })
	return td, nil
}

// openNotifier fans submission outcomes out to the log, NATS when
// configured, and the SSE streams in server mode.
func (a *app) openNotifier(cfg *config.Config, logger *slog.Logger, m mode) (ports.Notifier, error) {
	sinks := notify.Fanout{notify.NewLog(logger)}

	if cfg.NATSURL != "" {
		nc, closeNATS, err := natsnotify.Connect(cfg.NATSURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closeNATS)
		sinks = append(sinks, natsnotify.New(nc,
			natsnotify.WithSubject(cfg.NATSSubject),
			natsnotify.WithLogger(logger),
		))
	}

	if m == modeServe {
		a.streams = api.NewStreamManager(a.redactor, logger)
		sinks = append(sinks, a.streams)
	}
	return sinks, nil
}
