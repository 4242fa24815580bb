package di

import (
	"fmt"
	"reflect"
)

// Lifetime controls how often a registration is constructed.
type Lifetime int

const (
	// Transient registrations construct a new instance on every resolution.
	Transient Lifetime = iota
	// Singleton registrations construct once and share the instance.
	Singleton
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

type bindingKind int

const (
	bindingNone bindingKind = iota
	bindingConstructor
	bindingFactory
	bindingInstance
)

var errorType = reflect.TypeFor[error]()

// Registration is the builder returned by Container.Register. Binding mistakes
// are remembered and reported by Build so registration code can stay fluent.
type Registration struct {
	id       Identity
	kind     bindingKind
	ctor     any
	factory  func() (any, error)
	instance any
	lifetime Lifetime
}

// Use binds the identity to a constructor. The constructor must be a func
// returning T or (T, error), where T is assignable to the identity's type.
// Its parameters are resolved from the container in declared order.
func (r *Registration) Use(constructor any) *Registration {
	r.kind = bindingConstructor
	r.ctor = constructor
	return r
}

// UseFactory binds the identity to a no-argument factory. Factories close over
// whatever they need; their result is cached like any other singleton.
func (r *Registration) UseFactory(factory func() (any, error)) *Registration {
	r.kind = bindingFactory
	r.factory = factory
	return r
}

// UseInstance binds the identity to an already constructed value. Instance
// bindings are always singletons.
func (r *Registration) UseInstance(v any) *Registration {
	r.kind = bindingInstance
	r.instance = v
	r.lifetime = Singleton
	return r
}

// AsSingleton marks the registration as constructed once per container.
func (r *Registration) AsSingleton() *Registration {
	r.lifetime = Singleton
	return r
}

// AsTransient marks the registration as constructed on every resolution.
// This is the default.
func (r *Registration) AsTransient() *Registration {
	if r.kind != bindingInstance {
		r.lifetime = Transient
	}
	return r
}

// WithLifetime sets the lifetime explicitly.
func (r *Registration) WithLifetime(l Lifetime) *Registration {
	if l == Singleton {
		return r.AsSingleton()
	}
	return r.AsTransient()
}

// provider is the frozen, validated form of a Registration used after Build.
type provider struct {
	id       Identity
	kind     bindingKind
	ctor     reflect.Value
	deps     []Identity
	factory  func() (any, error)
	instance any
	lifetime Lifetime
	slot     *slot
}

func (r *Registration) compile() (*provider, error) {
	p := &provider{
		id:       r.id,
		kind:     r.kind,
		factory:  r.factory,
		instance: r.instance,
		lifetime: r.lifetime,
	}

	switch r.kind {
	case bindingNone:
		return nil, &InvalidBindingError{Identity: r.id, Reason: "no constructor, factory or instance bound"}
	case bindingFactory:
		if r.factory == nil {
			return nil, &InvalidBindingError{Identity: r.id, Reason: "nil factory"}
		}
	case bindingInstance:
		if r.instance == nil {
			return nil, &InvalidBindingError{Identity: r.id, Reason: "nil instance"}
		}
		if !reflect.TypeOf(r.instance).AssignableTo(r.id.t) {
			return nil, &InvalidBindingError{
				Identity: r.id,
				Reason:   fmt.Sprintf("instance of type %T is not assignable", r.instance),
			}
		}
	case bindingConstructor:
		ctor, deps, err := inspectConstructor(r.id, r.ctor)
		if err != nil {
			return nil, err
		}
		p.ctor = ctor
		p.deps = deps
	}

	if p.lifetime == Singleton {
		p.slot = &slot{}
	}
	return p, nil
}

func inspectConstructor(id Identity, constructor any) (reflect.Value, []Identity, error) {
	v := reflect.ValueOf(constructor)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return reflect.Value{}, nil, &InvalidBindingError{Identity: id, Reason: fmt.Sprintf("constructor %T is not a func", constructor)}
	}

	t := v.Type()
	if t.IsVariadic() {
		return reflect.Value{}, nil, &InvalidBindingError{Identity: id, Reason: "variadic constructors are not supported"}
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return reflect.Value{}, nil, &InvalidBindingError{Identity: id, Reason: "second result must be error"}
		}
	default:
		return reflect.Value{}, nil, &InvalidBindingError{Identity: id, Reason: "constructor must return T or (T, error)"}
	}
	if !t.Out(0).AssignableTo(id.t) {
		return reflect.Value{}, nil, &InvalidBindingError{
			Identity: id,
			Reason:   fmt.Sprintf("constructor result %s is not assignable", t.Out(0)),
		}
	}

	deps := make([]Identity, t.NumIn())
	for i := range deps {
		deps[i] = IdentityOf(t.In(i))
	}
	return v, deps, nil
}
