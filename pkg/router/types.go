package router

import (
	"context"

	"github.com/vango-dev/fragment/pkg/pattern"
)

// Handler handles a matched route. params holds the named parameters and
// match the full result. A returned error stops the current dispatch and
// is reported to whoever delivered the fragment change.
type Handler func(ctx context.Context, params map[string]string, match *pattern.MatchResult) error

// Route pairs a pattern with its handler for batch registration.
type Route struct {
	// Pattern is the route pattern (e.g., "/user/:id").
	Pattern string

	// Handler runs when Pattern matches the fragment.
	Handler Handler
}

// Partial describes content to load into a target when a route matches.
type Partial struct {
	// Target identifies where the content goes (e.g., "#main").
	Target string

	// URL is where the content comes from.
	URL string

	// OnLoad runs after the content was delivered. May be nil.
	OnLoad func()
}

// Location reports the current page URL.
type Location interface {
	// Href returns the full current URL, including any fragment.
	Href() string
}

// ChangeSource delivers fragment-change notifications. The callback must
// be invoked synchronously on the goroutine that owns the router; its
// error is the first handler error of that dispatch.
type ChangeSource interface {
	OnFragmentChange(fn func(ctx context.Context) error)
}

// PartialLoader performs partial loads. The router does not wait for or
// inspect the outcome.
type PartialLoader interface {
	LoadPartial(ctx context.Context, target, url string, onLoad func())
}

// PartialLoaderFunc is a function adapter for PartialLoader.
type PartialLoaderFunc func(ctx context.Context, target, url string, onLoad func())

// LoadPartial implements PartialLoader.
func (f PartialLoaderFunc) LoadPartial(ctx context.Context, target, url string, onLoad func()) {
	f(ctx, target, url, onLoad)
}

// Event describes one handler invocation as seen by middleware.
type Event struct {
	// Context is passed to the handler. Middleware may replace it.
	Context context.Context

	// Pattern is the route pattern that matched.
	Pattern string

	// Fragment is the fragment that was evaluated.
	Fragment string

	// Match is the match result handed to the handler.
	Match *pattern.MatchResult
}

// Middleware wraps handler invocations.
type Middleware interface {
	// Handle processes the event and optionally calls next.
	// Return an error to stop the dispatch and report an error.
	// Return nil without calling next to skip the handler.
	Handle(ev *Event, next func() error) error
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(ev *Event, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ev *Event, next func() error) error {
	return f(ev, next)
}
