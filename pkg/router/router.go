package router

import (
	"context"
	"log/slog"
	"sort"

	"github.com/vango-dev/fragment/internal/errors"
	"github.com/vango-dev/fragment/pkg/pattern"
	"github.com/vango-dev/fragment/pkg/routepath"
)

// Router binds route patterns to handlers and dispatches fragment changes.
//
// A Router is not safe for concurrent use. It is meant to be driven from
// the single goroutine that owns its Location and ChangeSource.
type Router struct {
	location Location
	source   ChangeSource
	loader   PartialLoader
	logger   *slog.Logger
	strict   bool
	cache    *pattern.Cache

	middleware []Middleware

	patterns map[string]*pattern.Pattern
	handlers map[string]Handler
	partials map[string]Partial

	subscriptions []*subscription
}

// subscription is one registration with the change source. A single
// registration evaluates its path against the registry; a batch carries
// its own routes and stops at the first match.
type subscription struct {
	path   string
	routes []Route
}

// Option configures a Router.
type Option func(*Router)

// WithLocation sets where the router reads the current URL from.
func WithLocation(loc Location) Option {
	return func(r *Router) {
		r.location = loc
	}
}

// WithChangeSource sets the source of fragment-change notifications.
func WithChangeSource(src ChangeSource) Option {
	return func(r *Router) {
		r.source = src
	}
}

// WithWindow uses w as both Location and ChangeSource.
func WithWindow(w *Window) Option {
	return func(r *Router) {
		r.location = w
		r.source = w
	}
}

// WithPartialLoader sets the loader used for partial bindings.
func WithPartialLoader(l PartialLoader) Option {
	return func(r *Router) {
		r.loader = l
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// WithStrict requires fragments to match trailing slashes exactly.
func WithStrict(strict bool) Option {
	return func(r *Router) {
		r.strict = strict
	}
}

// WithPatternCache sets the cache compiled patterns are taken from.
// Routers share a process-wide cache by default.
func WithPatternCache(c *pattern.Cache) Option {
	return func(r *Router) {
		r.cache = c
	}
}

// WithMiddleware adds middleware around every handler invocation.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// New creates a router.
func New(opts ...Option) *Router {
	r := &Router{
		patterns: make(map[string]*pattern.Pattern),
		handlers: make(map[string]Handler),
		partials: make(map[string]Partial),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Use adds middleware around every handler invocation.
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// On registers handler for path. A malformed path returns a
// *pattern.PatternError before anything is registered.
//
// The first registration of a path subscribes it to the change source;
// registering the same path again only replaces its handler.
func (r *Router) On(path string, handler Handler) (*RouteHandle, error) {
	if err := r.register(path, handler); err != nil {
		return nil, err
	}

	if _, seen := r.handlers[path]; !seen {
		r.subscribe(&subscription{path: path})
	}
	r.handlers[path] = handler

	return &RouteHandle{router: r, paths: []string{path}}, nil
}

// OnRoutes registers a batch of routes evaluated together, in the given
// order. On each fragment change only the first matching route of the
// batch runs. Every pattern is compiled before anything is registered.
func (r *Router) OnRoutes(routes ...Route) (*RouteHandle, error) {
	for _, rt := range routes {
		if err := r.register(rt.Pattern, rt.Handler); err != nil {
			return nil, err
		}
	}

	batch := make([]Route, len(routes))
	copy(batch, routes)
	r.subscribe(&subscription{routes: batch})

	paths := make([]string, len(batch))
	for i, rt := range batch {
		paths[i] = rt.Pattern
	}
	return &RouteHandle{router: r, paths: paths}, nil
}

// register compiles path and validates handler.
func (r *Router) register(path string, handler Handler) error {
	if handler == nil {
		return errors.New("E105").WithDetail("No handler for route " + path + ".")
	}
	if _, ok := r.patterns[path]; ok {
		return nil
	}

	var (
		p   *pattern.Pattern
		err error
	)
	if r.cache != nil {
		p, err = r.cache.Get(path, r.strict)
	} else {
		p, err = pattern.Cached(path, r.strict)
	}
	if err != nil {
		return err
	}
	r.patterns[path] = p
	return nil
}

func (r *Router) subscribe(sub *subscription) {
	r.subscriptions = append(r.subscriptions, sub)
	if r.source == nil {
		return
	}
	r.source.OnFragmentChange(func(ctx context.Context) error {
		return r.evaluate(ctx, sub)
	})
}

// Fragment returns the current fragment, verbatim, without the "#".
func (r *Router) Fragment() string {
	if r.location == nil {
		return ""
	}
	return routepath.FromURL(r.location.Href())
}

// DecodedFragment returns the current fragment with percent escapes decoded.
func (r *Router) DecodedFragment() (string, error) {
	return routepath.Decode(r.Fragment())
}

// Dispatch evaluates every registration, in registration order, against
// the current fragment. It is what a change notification does for all
// subscriptions, for hosts that trigger routing themselves.
func (r *Router) Dispatch(ctx context.Context) error {
	subs := r.subscriptions
	for _, sub := range subs {
		if err := r.evaluate(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}

// Match returns the first registered path matching fragment, in
// registration order, without running any handler.
func (r *Router) Match(fragment string) (string, *pattern.MatchResult, bool) {
	for _, sub := range r.subscriptions {
		for _, path := range sub.paths() {
			if m := r.patterns[path].Match(fragment); m != nil {
				return path, m, true
			}
		}
	}
	return "", nil, false
}

// Routes returns the registered paths in registration order.
func (r *Router) Routes() []string {
	var out []string
	seen := make(map[string]bool)
	for _, sub := range r.subscriptions {
		for _, path := range sub.paths() {
			if !seen[path] {
				seen[path] = true
				out = append(out, path)
			}
		}
	}
	return out
}

func (s *subscription) paths() []string {
	if s.routes == nil {
		return []string{s.path}
	}
	out := make([]string, len(s.routes))
	for i, rt := range s.routes {
		out[i] = rt.Pattern
	}
	return out
}

// evaluate runs one subscription against the current fragment.
func (r *Router) evaluate(ctx context.Context, sub *subscription) error {
	fragment := r.Fragment()

	if sub.routes == nil {
		_, err := r.check(ctx, sub.path, r.handlers[sub.path], fragment)
		return err
	}

	for _, rt := range sub.routes {
		matched, err := r.check(ctx, rt.Pattern, rt.Handler, fragment)
		if err != nil || matched {
			return err
		}
	}
	return nil
}

// check matches one path and, on a match, runs its handler and triggers
// its partial binding once. matched is local to this call so nested
// dispatches started by a handler cannot affect it. The load gets the
// dispatch context: middleware contexts are scoped to the handler.
func (r *Router) check(ctx context.Context, path string, handler Handler, fragment string) (matched bool, err error) {
	m := r.patterns[path].Match(fragment)
	if m == nil {
		return false, nil
	}
	matched = true

	r.logger.Debug("route matched", "pattern", path, "fragment", fragment, "params", len(m.Params))

	ev := &Event{Context: ctx, Pattern: path, Fragment: fragment, Match: m}
	err = ComposeMiddleware(ev, r.middleware, func() error {
		return handler(ev.Context, m.Params, m)
	})
	if err != nil {
		return matched, err
	}

	if partial, ok := r.partials[path]; ok {
		if r.loader == nil {
			r.logger.Warn("partial bound without a loader", "pattern", path, "target", partial.Target)
			return matched, nil
		}
		r.loader.LoadPartial(ctx, partial.Target, partial.URL, partial.OnLoad)
	}
	return matched, nil
}

// RoutesFromMap turns a pattern-to-handler map into a batch ordered by
// pattern, so that batch evaluation does not depend on map iteration.
func RoutesFromMap(m map[string]Handler) []Route {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	routes := make([]Route, len(keys))
	for i, k := range keys {
		routes[i] = Route{Pattern: k, Handler: m[k]}
	}
	return routes
}
