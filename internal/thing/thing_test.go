package thing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scaffold/internal/platform/config"
	"scaffold/internal/thing/models"
	"scaffold/internal/thing/store"
	"scaffold/pkg/platform/di"
	"scaffold/pkg/platform/registry"
)

func TestModuleDeclarations(t *testing.T) {
	r := registry.New()
	loaded, err := registry.Load(r, nil, Module{})
	require.NoError(t, err)
	assert.Equal(t, []string{ModuleName}, loaded)

	assert.Len(t, r.UseCases(), 2)
	assert.Len(t, r.EventHandlers(), 1)

	controllers := r.Controllers()
	require.Len(t, controllers, 2)
	assert.Equal(t, "PUT", controllers[0].Method)
	assert.Empty(t, controllers[0].Middlewares)
	assert.Equal(t, "GET", controllers[1].Method)
	assert.Len(t, controllers[1].Middlewares, 1)

	impls := r.DomainImplementations()
	require.Len(t, impls, 1)
	assert.Equal(t, di.Key[models.Repository](), impls[0].Abstraction)
	assert.Equal(t, di.Key[*store.InMemoryStore](), impls[0].Implementation)
	assert.Equal(t, di.Singleton, impls[0].Lifetime)
}

func TestModuleSelectsRepositoryByDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   di.Identity
	}{
		{config.StoreMemory, di.Key[*store.InMemoryStore]()},
		{config.StorePostgres, di.Key[*store.PostgresStore]()},
		{config.StoreRedis, di.Key[*store.RedisStore]()},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			r := registry.New()
			require.NoError(t, Module{Driver: tt.driver}.Declare(r))
			assert.Equal(t, tt.want, r.DomainImplementations()[0].Implementation)
		})
	}
}

func TestModuleRejectsUnknownDriver(t *testing.T) {
	_, err := registry.Load(registry.New(), nil, Module{Driver: "mongo"})
	require.ErrorIs(t, err, registry.ErrModuleLoad)
}

func TestModuleDeclareTwiceIsIdempotent(t *testing.T) {
	r := registry.New()
	require.NoError(t, Module{}.Declare(r))
	require.NoError(t, Module{}.Declare(r))

	assert.Len(t, r.Controllers(), 2)
	assert.Len(t, r.UseCases(), 2)
}
