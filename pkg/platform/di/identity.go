package di

import "reflect"

// Identity is the lookup key for a registration. It wraps the reflect.Type of
// the abstraction or concrete type it names, so two identities are equal only
// when they name the same Go type. Interfaces act as their own tokens:
//
//	di.Key[thing.Repository]()     // abstraction
//	di.Key[*service.CreateThing]() // concrete, self-bound
type Identity struct {
	t reflect.Type
}

// Key returns the identity of T.
func Key[T any]() Identity {
	return Identity{t: reflect.TypeFor[T]()}
}

// IdentityOf returns the identity of t. A nil type yields the zero Identity.
func IdentityOf(t reflect.Type) Identity {
	return Identity{t: t}
}

// ResultOf returns the identity of the first value a constructor returns.
func ResultOf(constructor any) (Identity, error) {
	t := reflect.TypeOf(constructor)
	if t == nil || t.Kind() != reflect.Func || t.NumOut() == 0 {
		return Identity{}, ErrInvalidIdentity
	}
	return Identity{t: t.Out(0)}, nil
}

// Type returns the underlying reflect.Type.
func (i Identity) Type() reflect.Type {
	return i.t
}

// IsZero reports whether the identity names no type.
func (i Identity) IsZero() bool {
	return i.t == nil
}

func (i Identity) String() string {
	if i.t == nil {
		return "<none>"
	}
	return i.t.String()
}
