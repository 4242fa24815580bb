// Package thing is the sample bounded context: a Thing aggregate with create
// and read use cases, three repository implementations and an event handler.
package thing

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"scaffold/internal/platform/config"
	"scaffold/internal/thing/handler"
	"scaffold/internal/thing/models"
	"scaffold/internal/thing/service"
	"scaffold/internal/thing/store"
	"scaffold/internal/thing/subscriber"
	"scaffold/pkg/platform/di"
	authmw "scaffold/pkg/platform/middleware/auth"
	"scaffold/pkg/platform/registry"
)

// ModuleName is the discovery name of this context.
const ModuleName = "core.thing"

// Module declares the thing context. Driver selects the repository
// implementation (config.StoreMemory, StorePostgres or StoreRedis).
type Module struct {
	Driver string
}

func (Module) Name() string { return ModuleName }

func (m Module) Declare(r *registry.Registry) error {
	repo, err := m.repository()
	if err != nil {
		return err
	}

	steps := []func() error{
		func() error { return r.DeclareDomainImplementation(repo) },
		func() error { return r.DeclareUseCase(registry.UseCase{Constructor: service.NewCreateThing}) },
		func() error { return r.DeclareUseCase(registry.UseCase{Constructor: service.NewFindThing}) },
		func() error {
			return r.DeclareEventHandler(registry.EventHandler{Constructor: subscriber.NewOnThingCreated})
		},
		func() error {
			return r.DeclareController(registry.Controller{
				Constructor: handler.NewPutThing,
				Method:      http.MethodPut,
				Path:        "/things/{id}",
				Schema:      handler.PutThingSchema,
			})
		},
		func() error {
			return r.DeclareController(registry.Controller{
				Constructor: handler.NewGetThing,
				Method:      http.MethodGet,
				Path:        "/things/{id}",
				Middlewares: []di.Identity{di.Key[*authmw.Authenticator]()},
			})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (m Module) repository() (registry.DomainImplementation, error) {
	decl := registry.DomainImplementation{
		Abstraction: di.Key[models.Repository](),
		Lifetime:    di.Singleton,
	}
	switch m.Driver {
	case "", config.StoreMemory:
		decl.Constructor = store.NewInMemory
	case config.StorePostgres:
		decl.Constructor = newMigratedPostgres
	case config.StoreRedis:
		decl.Constructor = store.NewRedis
	default:
		return registry.DomainImplementation{}, fmt.Errorf("thing: unknown store driver %q", m.Driver)
	}
	return decl, nil
}

func newMigratedPostgres(db *sql.DB) (*store.PostgresStore, error) {
	s := store.NewPostgres(db)
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}
