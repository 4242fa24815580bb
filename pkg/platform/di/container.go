// Package di is a small two-phase dependency injection container.
//
// A Container starts in the building phase, where identities are registered
// against a constructor, a factory or an instance. Build validates the whole
// graph (every dependency registered, no cycles) and freezes it. Only then can
// Get resolve instances.
//
//	c := di.New()
//	reg, _ := c.Register(di.Key[thing.Repository]())
//	reg.Use(store.NewInMemory).AsSingleton()
//	reg, _ = c.Register(di.Key[*service.CreateThing]())
//	reg.Use(service.NewCreateThing)
//	if err := c.Build(); err != nil {
//	    return err
//	}
//	uc, err := di.Get[*service.CreateThing](c)
//
// Registration is not meant to run concurrently. Once built, Get is safe for
// concurrent use and constructs each singleton at most once.
package di

import (
	"fmt"
	"reflect"
	"sync"
)

type phase int

const (
	phaseBuilding phase = iota
	phaseBuilt
)

func (p phase) String() string {
	if p == phaseBuilt {
		return "built"
	}
	return "building"
}

// Resolver is the read side of a built container.
type Resolver interface {
	Get(id Identity) (any, error)
}

// Container holds registrations while building and resolves them once built.
type Container struct {
	mu            sync.RWMutex
	phase         phase
	registrations map[Identity]*Registration
	order         []Identity
	providers     map[Identity]*provider
}

// slot is a write-once cache cell for a singleton.
type slot struct {
	once  sync.Once
	value any
	err   error
}

// New returns an empty container in the building phase.
func New() *Container {
	return &Container{
		registrations: make(map[Identity]*Registration),
	}
}

// Register starts a registration for id. Bind it with Use, UseFactory or
// UseInstance on the returned Registration.
func (c *Container) Register(id Identity) (*Registration, error) {
	if id.IsZero() {
		return nil, ErrInvalidIdentity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != phaseBuilding {
		return nil, &InvalidStateError{Op: "register " + id.String(), Phase: c.phase.String()}
	}
	if _, ok := c.registrations[id]; ok {
		return nil, &DuplicateRegistrationError{Identity: id}
	}

	reg := &Registration{id: id}
	c.registrations[id] = reg
	c.order = append(c.order, id)
	return reg, nil
}

// Has reports whether id has been registered.
func (c *Container) Has(id Identity) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.registrations[id]
	return ok
}

// Built reports whether Build has completed successfully.
func (c *Container) Built() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase == phaseBuilt
}

// Identities returns the registered identities in registration order.
func (c *Container) Identities() []Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Identity, len(c.order))
	copy(out, c.order)
	return out
}

// Build freezes the registrations and validates the dependency graph. On
// error the container stays in the building phase and cannot resolve.
func (c *Container) Build() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != phaseBuilding {
		return &InvalidStateError{Op: "build", Phase: c.phase.String()}
	}

	providers := make(map[Identity]*provider, len(c.order))
	for _, id := range c.order {
		p, err := c.registrations[id].compile()
		if err != nil {
			return err
		}
		providers[id] = p
	}
	if err := validate(c.order, providers); err != nil {
		return err
	}

	c.providers = providers
	c.phase = phaseBuilt
	return nil
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// validate walks the graph depth-first with an explicit stack so deep or
// cyclic graphs cannot overflow the goroutine stack.
func validate(order []Identity, providers map[Identity]*provider) error {
	type frame struct {
		id   Identity
		next int
	}

	state := make(map[Identity]visitState, len(order))
	for _, root := range order {
		if state[root] != unvisited {
			continue
		}
		state[root] = visiting
		stack := []frame{{id: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := providers[top.id].deps
			if top.next == len(deps) {
				state[top.id] = visited
				stack = stack[:len(stack)-1]
				continue
			}

			dep := deps[top.next]
			top.next++
			requester := top.id

			if _, ok := providers[dep]; !ok {
				return &MissingDependencyError{Missing: dep, Requester: requester}
			}
			switch state[dep] {
			case visiting:
				cycle := []Identity{dep}
				start := 0
				for i := range stack {
					if stack[i].id == dep {
						start = i
						break
					}
				}
				for _, f := range stack[start+1:] {
					cycle = append(cycle, f.id)
				}
				return &CyclicDependencyError{Cycle: append(cycle, dep)}
			case unvisited:
				state[dep] = visiting
				stack = append(stack, frame{id: dep})
			}
		}
	}
	return nil
}

// Get resolves id and its transitive dependencies.
func (c *Container) Get(id Identity) (any, error) {
	c.mu.RLock()
	ph, providers := c.phase, c.providers
	c.mu.RUnlock()

	if ph != phaseBuilt {
		return nil, &InvalidStateError{Op: "get " + id.String(), Phase: ph.String()}
	}
	return resolve(providers, id, Identity{})
}

func resolve(providers map[Identity]*provider, id, requester Identity) (any, error) {
	p, ok := providers[id]
	if !ok {
		return nil, &MissingDependencyError{Missing: id, Requester: requester}
	}

	switch {
	case p.kind == bindingInstance:
		return p.instance, nil
	case p.lifetime == Singleton:
		p.slot.once.Do(func() {
			p.slot.value, p.slot.err = construct(providers, p)
		})
		return p.slot.value, p.slot.err
	default:
		return construct(providers, p)
	}
}

func construct(providers map[Identity]*provider, p *provider) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, &ResolutionError{Identity: p.id, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if p.kind == bindingFactory {
		out, err := p.factory()
		if err != nil {
			return nil, &ResolutionError{Identity: p.id, Err: err}
		}
		if out == nil {
			return nil, &ResolutionError{Identity: p.id, Err: fmt.Errorf("factory returned nil")}
		}
		if !reflect.TypeOf(out).AssignableTo(p.id.t) {
			return nil, &ResolutionError{Identity: p.id, Err: fmt.Errorf("factory returned %T", out)}
		}
		return out, nil
	}

	args := make([]reflect.Value, len(p.deps))
	for i, dep := range p.deps {
		dv, err := resolve(providers, dep, p.id)
		if err != nil {
			return nil, err
		}
		rv := reflect.ValueOf(dv)
		if !rv.IsValid() {
			rv = reflect.Zero(dep.t)
		}
		args[i] = rv
	}

	out := p.ctor.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, &ResolutionError{Identity: p.id, Err: out[1].Interface().(error)}
	}
	return out[0].Interface(), nil
}

// Get resolves the identity of T and asserts the result.
func Get[T any](r Resolver) (T, error) {
	var zero T
	id := Key[T]()
	v, err := r.Get(id)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, &ResolutionError{Identity: id, Err: fmt.Errorf("resolved value of type %T", v)}
	}
	return t, nil
}

// MustGet is Get that panics on error. Use it only in wiring code where a
// failure means the process cannot start.
func MustGet[T any](r Resolver) T {
	v, err := Get[T](r)
	if err != nil {
		panic(err)
	}
	return v
}
