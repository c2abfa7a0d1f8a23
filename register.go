package partstream

import (
	"fmt"
)

// Router dispatches file parts to handlers by field name.
type Router struct {
	handlers map[string]PartHandler
	fallback PartHandler
}

// NewRouter returns a router whose parts without a registered handler are discarded.
func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]PartHandler),
		fallback: discardPart,
	}
}

func (r *Router) Register(name string, fn PartHandler) error {
	if _, ok := r.handlers[name]; ok {
		return DuplicateHookNameError{Name: name}
	}

	r.handlers[name] = fn

	return nil
}

// Fallback sets the handler for parts without a registered handler.
func (r *Router) Fallback(fn PartHandler) {
	r.fallback = fn
}

// Handle is the PartHandler of the router.
func (r *Router) Handle(part *Part) error {
	if fn, ok := r.handlers[part.Name()]; ok {
		return fn(part)
	}

	return r.fallback(part)
}

func discardPart(part *Part) error {
	return part.Close()
}

type DuplicateHookNameError struct {
	Name string
}

func (e DuplicateHookNameError) Error() string {
	return fmt.Sprintf("duplicate hook name: %s", e.Name)
}
