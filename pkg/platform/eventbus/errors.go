package eventbus

import (
	"errors"
	"fmt"
)

// HandlerDispatchError reports the handlers that failed for one event. Events
// after it in the same Publish call were not dispatched.
type HandlerDispatchError struct {
	EventName string
	EventID   string
	Errs      []error
}

func (e *HandlerDispatchError) Error() string {
	return fmt.Sprintf("eventbus: %d handler(s) failed for %s (%s): %v",
		len(e.Errs), e.EventName, e.EventID, errors.Join(e.Errs...))
}

func (e *HandlerDispatchError) Unwrap() []error { return e.Errs }

// PanicError is a handler panic recovered during dispatch.
type PanicError struct {
	Handler string
	Value   any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("eventbus: handler %s panicked: %v", e.Handler, e.Value)
}
