// Package registry collects the declarations modules make about themselves:
// which types are use cases, event handlers, HTTP controllers and
// implementations of domain abstractions. The bootstrap reads the sealed
// registry to populate the container.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"scaffold/pkg/platform/di"
)

var (
	// ErrSealed is returned when a declaration arrives after discovery ended.
	ErrSealed = errors.New("registry: sealed")
	// ErrConflictingDeclaration indicates the same identity declared twice
	// with different contents.
	ErrConflictingDeclaration = errors.New("registry: conflicting declaration")
	// ErrInvalidDeclaration indicates a declaration missing required fields.
	ErrInvalidDeclaration = errors.New("registry: invalid declaration")
)

// UseCase declares an application service. Identity defaults to the
// constructor's result type.
type UseCase struct {
	Identity    di.Identity
	Constructor any
	Lifetime    di.Lifetime
}

// EventHandler declares a domain event handler. The constructed value must
// implement domain.EventHandler.
type EventHandler struct {
	Identity    di.Identity
	Constructor any
	Lifetime    di.Lifetime
}

// Controller declares an HTTP endpoint served by the constructed value.
// Middlewares are identities resolved from the container when routes load.
type Controller struct {
	Identity    di.Identity
	Constructor any
	Method      string
	Path        string
	Middlewares []di.Identity
	Schema      map[string]any
	Lifetime    di.Lifetime
}

// DomainImplementation binds an abstraction (usually a repository interface)
// to the constructor of its infrastructure implementation.
type DomainImplementation struct {
	Abstraction    di.Identity
	Implementation di.Identity
	Constructor    any
	Lifetime       di.Lifetime
}

// Registry is the in-memory store of declarations. It is safe for concurrent
// use; consumption order is declaration order.
type Registry struct {
	mu      sync.Mutex
	sealed  bool
	modules []string

	useCases        []UseCase
	useCaseIndex    map[di.Identity]int
	handlers        []EventHandler
	handlerIndex    map[di.Identity]int
	controllers     []Controller
	controllerIndex map[di.Identity]int
	impls           []DomainImplementation
	implIndex       map[di.Identity]int
}

// New returns an empty, unsealed registry.
func New() *Registry {
	return &Registry{
		useCaseIndex:    make(map[di.Identity]int),
		handlerIndex:    make(map[di.Identity]int),
		controllerIndex: make(map[di.Identity]int),
		implIndex:       make(map[di.Identity]int),
	}
}

// DeclareUseCase adds a use case. Declaring the same identity again is a no-op.
func (r *Registry) DeclareUseCase(d UseCase) error {
	id, err := identityFor(d.Identity, d.Constructor)
	if err != nil {
		return fmt.Errorf("use case: %w", err)
	}
	d.Identity = id

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	if _, ok := r.useCaseIndex[id]; ok {
		return nil
	}
	r.useCaseIndex[id] = len(r.useCases)
	r.useCases = append(r.useCases, d)
	return nil
}

// DeclareEventHandler adds an event handler. Declaring the same identity again
// is a no-op.
func (r *Registry) DeclareEventHandler(d EventHandler) error {
	id, err := identityFor(d.Identity, d.Constructor)
	if err != nil {
		return fmt.Errorf("event handler: %w", err)
	}
	d.Identity = id

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	if _, ok := r.handlerIndex[id]; ok {
		return nil
	}
	r.handlerIndex[id] = len(r.handlers)
	r.handlers = append(r.handlers, d)
	return nil
}

// DeclareController adds a controller. An identical re-declaration is a no-op;
// the same controller with a different route or constructor is rejected so a
// route is never mounted twice.
func (r *Registry) DeclareController(d Controller) error {
	id, err := identityFor(d.Identity, d.Constructor)
	if err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	if d.Method == "" || d.Path == "" {
		return fmt.Errorf("controller %s: %w: method and path are required", id, ErrInvalidDeclaration)
	}
	d.Identity = id

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	if i, ok := r.controllerIndex[id]; ok {
		prev := r.controllers[i]
		if prev.Method == d.Method && prev.Path == d.Path && sameFunc(prev.Constructor, d.Constructor) {
			return nil
		}
		return fmt.Errorf("controller %s: %w: already declared as %s %s", id, ErrConflictingDeclaration, prev.Method, prev.Path)
	}
	r.controllerIndex[id] = len(r.controllers)
	r.controllers = append(r.controllers, d)
	return nil
}

// DeclareDomainImplementation binds an abstraction to an implementation. One
// implementation per abstraction; identical re-declaration is a no-op.
func (r *Registry) DeclareDomainImplementation(d DomainImplementation) error {
	if d.Abstraction.IsZero() {
		return fmt.Errorf("domain implementation: %w: abstraction is required", ErrInvalidDeclaration)
	}
	impl, err := identityFor(d.Implementation, d.Constructor)
	if err != nil {
		return fmt.Errorf("domain implementation of %s: %w", d.Abstraction, err)
	}
	d.Implementation = impl

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	if i, ok := r.implIndex[d.Abstraction]; ok {
		prev := r.impls[i]
		if prev.Implementation == d.Implementation && sameFunc(prev.Constructor, d.Constructor) {
			return nil
		}
		return fmt.Errorf("domain implementation of %s: %w: already bound to %s",
			d.Abstraction, ErrConflictingDeclaration, prev.Implementation)
	}
	r.implIndex[d.Abstraction] = len(r.impls)
	r.impls = append(r.impls, d)
	return nil
}

// Seal stops the registry accepting declarations.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed
}

// UseCases returns the declared use cases in declaration order.
func (r *Registry) UseCases() []UseCase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]UseCase(nil), r.useCases...)
}

// EventHandlers returns the declared event handlers in declaration order.
func (r *Registry) EventHandlers() []EventHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EventHandler(nil), r.handlers...)
}

// Controllers returns the declared controllers in declaration order.
func (r *Registry) Controllers() []Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Controller(nil), r.controllers...)
}

// DomainImplementations returns the declared bindings in declaration order.
func (r *Registry) DomainImplementations() []DomainImplementation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DomainImplementation(nil), r.impls...)
}

// Modules returns the names of the modules loaded into the registry.
func (r *Registry) Modules() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.modules...)
}

func identityFor(id di.Identity, constructor any) (di.Identity, error) {
	if constructor == nil {
		return di.Identity{}, fmt.Errorf("%w: constructor is required", ErrInvalidDeclaration)
	}
	if !id.IsZero() {
		return id, nil
	}
	result, err := di.ResultOf(constructor)
	if err != nil {
		return di.Identity{}, fmt.Errorf("%w: %T is not a constructor", ErrInvalidDeclaration, constructor)
	}
	return result, nil
}

func sameFunc(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Func || vb.Kind() != reflect.Func {
		return false
	}
	return va.Pointer() == vb.Pointer()
}
