package di

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentity is returned when a zero Identity is registered or a
// constructor has no result to derive an identity from.
var ErrInvalidIdentity = errors.New("di: invalid identity")

// InvalidStateError reports an operation attempted in the wrong container
// phase: Register or Build after Build, Get before Build.
type InvalidStateError struct {
	Op    string
	Phase string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("di: cannot %s while container is %s", e.Op, e.Phase)
}

// MissingDependencyError names an identity nobody registered and the
// registration that asked for it. Requester is zero for top-level Get calls.
type MissingDependencyError struct {
	Missing   Identity
	Requester Identity
}

func (e *MissingDependencyError) Error() string {
	if e.Requester.IsZero() {
		return fmt.Sprintf("di: %s is not registered", e.Missing)
	}
	return fmt.Sprintf("di: %s is not registered (required by %s)", e.Missing, e.Requester)
}

// CyclicDependencyError carries the dependency path that closes on itself,
// first and last element being the same identity.
type CyclicDependencyError struct {
	Cycle []Identity
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, id := range e.Cycle {
		parts[i] = id.String()
	}
	return "di: dependency cycle " + strings.Join(parts, " -> ")
}

// DuplicateRegistrationError is returned when an identity is registered twice.
type DuplicateRegistrationError struct {
	Identity Identity
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("di: %s is already registered", e.Identity)
}

// InvalidBindingError reports a registration whose binding cannot produce the
// registered identity (missing binding, non-func constructor, wrong result).
type InvalidBindingError struct {
	Identity Identity
	Reason   string
}

func (e *InvalidBindingError) Error() string {
	return fmt.Sprintf("di: invalid binding for %s: %s", e.Identity, e.Reason)
}

// ResolutionError wraps a failure raised while constructing an instance.
type ResolutionError struct {
	Identity Identity
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("di: resolve %s: %v", e.Identity, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
