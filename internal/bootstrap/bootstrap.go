// Package bootstrap is the composition root: it loads the module manifest into
// a registry, binds everything into one container, builds it and wires the
// event bus.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"

	"scaffold/internal/eventstream"
	jwttoken "scaffold/internal/jwt_token"
	"scaffold/internal/platform/config"
	"scaffold/internal/platform/kafka"
	"scaffold/internal/platform/metrics"
	"scaffold/internal/platform/postgres"
	redisclient "scaffold/internal/platform/redis"
	"scaffold/internal/thing"
	"scaffold/pkg/domain"
	"scaffold/pkg/platform/di"
	"scaffold/pkg/platform/eventbus"
	authmw "scaffold/pkg/platform/middleware/auth"
	"scaffold/pkg/platform/registry"
)

// Options configures Run.
type Options struct {
	Config config.Config
	Logger *slog.Logger
	// Metrics defaults to a fresh metrics.New().
	Metrics *metrics.Metrics
	// Modules is the manifest. Nil means DefaultModules(Config).
	Modules []registry.Module
	// Register adds caller bindings after the infrastructure services.
	Register func(c *di.Container) error
}

// App is a built, wired application.
type App struct {
	Container *di.Container
	Registry  *registry.Registry
	Metrics   *metrics.Metrics

	mu      sync.Mutex
	closers []io.Closer
}

// DefaultModules is the manifest for cfg: every bounded context, plus the
// Kafka forwarder when brokers are configured.
func DefaultModules(cfg config.Config) []registry.Module {
	modules := []registry.Module{thing.Module{Driver: cfg.Store.Driver}}
	if cfg.Kafka.Enabled() {
		modules = append(modules, eventstream.Module{})
	}
	return modules
}

// Run executes the startup sequence. Any failure is fatal for the process.
func Run(opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Modules == nil {
		opts.Modules = DefaultModules(opts.Config)
	}

	app := &App{
		Container: di.New(),
		Registry:  registry.New(),
		Metrics:   opts.Metrics,
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"discovery", func() error { return app.discover(opts) }},
		{"infrastructure bindings", app.bindInfrastructure},
		{"infrastructure services", func() error { return app.registerServices(opts) }},
		{"application bindings", app.bindApplication},
		{"build", app.Container.Build},
		{"event wiring", app.wireEvents},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("bootstrap: %s: %w", step.name, err)
		}
	}

	opts.Logger.Info("application bootstrapped",
		"modules", app.Registry.Modules(),
		"bindings", len(app.Container.Identities()),
	)
	return app, nil
}

func (a *App) discover(opts Options) error {
	_, err := registry.Load(a.Registry, opts.Config.Modules, opts.Modules...)
	a.Registry.Seal()
	return err
}

func (a *App) bindInfrastructure() error {
	if err := bind(a.Container, di.Key[domain.EventBus](), eventbus.NewInMemorySync, di.Singleton); err != nil {
		return err
	}
	for _, ctrl := range a.Registry.Controllers() {
		if err := bind(a.Container, ctrl.Identity, ctrl.Constructor, ctrl.Lifetime); err != nil {
			return err
		}
	}
	for _, impl := range a.Registry.DomainImplementations() {
		if err := bind(a.Container, impl.Abstraction, impl.Constructor, impl.Lifetime); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) registerServices(opts Options) error {
	cfg := opts.Config
	instances := []struct {
		id di.Identity
		v  any
	}{
		{di.Key[config.Config](), cfg},
		{di.Key[*slog.Logger](), opts.Logger},
		{di.Key[*metrics.Metrics](), opts.Metrics},
	}
	for _, inst := range instances {
		reg, err := a.Container.Register(inst.id)
		if err != nil {
			return err
		}
		reg.UseInstance(inst.v)
	}

	constructors := []binding{
		{di.Key[eventbus.Observer](), func(m *metrics.Metrics) eventbus.Observer { return m }},
		{di.Key[*jwttoken.JWTService](), func(c config.Config) *jwttoken.JWTService {
			return jwttoken.NewJWTService(c.JWT.SigningKey, c.JWT.Issuer, c.JWT.Audience)
		}},
		{di.Key[authmw.JWTValidator](), func(s *jwttoken.JWTService) authmw.JWTValidator {
			return jwttoken.NewJWTServiceAdapter(s)
		}},
		{di.Key[*authmw.Authenticator](), authmw.NewAuthenticator},
		// External clients connect on first resolution.
		{di.Key[*sql.DB](), func(c config.Config) (*sql.DB, error) {
			db, err := postgres.Open(context.Background(), c.Postgres)
			if err != nil {
				return nil, err
			}
			a.track(db)
			return db, nil
		}},
		{di.Key[*redis.Client](), func(c config.Config) (*redis.Client, error) {
			client, err := redisclient.New(context.Background(), c.Redis)
			if err != nil {
				return nil, err
			}
			a.track(client)
			return client, nil
		}},
	}
	if cfg.Kafka.Enabled() {
		constructors = append(constructors, binding{di.Key[*kgo.Client](), func(c config.Config) (*kgo.Client, error) {
			client, err := kafka.New(context.Background(), c.Kafka)
			if err != nil {
				return nil, err
			}
			a.track(closerFunc(func() error { client.Close(); return nil }))
			return client, nil
		}})
	}
	for _, entry := range constructors {
		if err := bind(a.Container, entry.id, entry.ctor, di.Singleton); err != nil {
			return err
		}
	}

	if opts.Register != nil {
		return opts.Register(a.Container)
	}
	return nil
}

func (a *App) bindApplication() error {
	for _, uc := range a.Registry.UseCases() {
		if err := bind(a.Container, uc.Identity, uc.Constructor, uc.Lifetime); err != nil {
			return err
		}
	}
	for _, h := range a.Registry.EventHandlers() {
		if err := bind(a.Container, h.Identity, h.Constructor, h.Lifetime); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) wireEvents() error {
	bus, err := di.Get[domain.EventBus](a.Container)
	if err != nil {
		return err
	}
	decls := a.Registry.EventHandlers()
	handlers := make([]domain.EventHandler, 0, len(decls))
	for _, decl := range decls {
		v, err := a.Container.Get(decl.Identity)
		if err != nil {
			return err
		}
		h, ok := v.(domain.EventHandler)
		if !ok {
			return fmt.Errorf("%s does not implement domain.EventHandler", decl.Identity)
		}
		handlers = append(handlers, h)
	}
	bus.AddHandlers(handlers...)
	return nil
}

// Close releases every external client the container created.
func (a *App) Close() error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) track(c io.Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, c)
}

type binding struct {
	id   di.Identity
	ctor any
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func bind(c *di.Container, id di.Identity, ctor any, lifetime di.Lifetime) error {
	reg, err := c.Register(id)
	if err != nil {
		return err
	}
	reg.Use(ctor).WithLifetime(lifetime)
	return nil
}
