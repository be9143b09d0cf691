package router

import (
	"fmt"
	"runtime/debug"

	"github.com/vango-dev/fragment/internal/errors"
)

// ComposeMiddleware builds a handler chain from middleware and a final handler.
// Middleware is executed in order (first to last), with the handler at the end.
func ComposeMiddleware(ev *Event, mw []Middleware, handler func() error) error {
	if len(mw) == 0 {
		return handler()
	}

	// Build chain from end to start
	chain := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := chain
		chain = func() error {
			return m.Handle(ev, next)
		}
	}

	return chain()
}

// Chain creates a middleware that combines multiple middleware in order.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(ev *Event, next func() error) error {
		return ComposeMiddleware(ev, middleware, next)
	})
}

// Skip bypasses mw for events where condition is true.
func Skip(condition func(ev *Event) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(ev *Event, next func() error) error {
		if condition(ev) {
			return next()
		}
		return mw.Handle(ev, next)
	})
}

// Only runs mw for events where condition is true.
func Only(condition func(ev *Event) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(ev *Event, next func() error) error {
		if !condition(ev) {
			return next()
		}
		return mw.Handle(ev, next)
	})
}

// Recover converts a panic in the handler, or in middleware after it, into
// an E106 error. The dispatch still stops at the failing route.
func Recover() Middleware {
	return MiddlewareFunc(func(ev *Event, next func() error) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.New("E106").
					WithDetail(fmt.Sprintf("route %s on fragment %q panicked: %v\n%s", ev.Pattern, ev.Fragment, r, debug.Stack()))
			}
		}()
		return next()
	})
}
