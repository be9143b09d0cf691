package router

// RouteHandle is returned by registration and allows chaining further
// registrations and a single partial binding.
type RouteHandle struct {
	router *Router
	paths  []string
	bound  bool
}

// Load binds a partial to the handle's paths. Whenever one of them
// matches, the router asks its PartialLoader to load url into target and
// calls onLoad when the content is in place.
//
// Load takes effect once per handle. Later calls are ignored and return
// the handle unchanged.
func (h *RouteHandle) Load(target, url string, onLoad func()) *RouteHandle {
	if h.bound {
		return h
	}
	h.bound = true

	p := Partial{Target: target, URL: url, OnLoad: onLoad}
	for _, path := range h.paths {
		h.router.partials[path] = p
	}
	return h
}

// Loaded reports whether Load has been called on this handle.
func (h *RouteHandle) Loaded() bool {
	return h.bound
}

// On registers another route on the same router.
func (h *RouteHandle) On(path string, handler Handler) (*RouteHandle, error) {
	return h.router.On(path, handler)
}

// OnRoutes registers another batch on the same router.
func (h *RouteHandle) OnRoutes(routes ...Route) (*RouteHandle, error) {
	return h.router.OnRoutes(routes...)
}

// Fragment returns the router's current fragment.
func (h *RouteHandle) Fragment() string {
	return h.router.Fragment()
}

// Paths returns the patterns this handle was created for.
func (h *RouteHandle) Paths() []string {
	out := make([]string, len(h.paths))
	copy(out, h.paths)
	return out
}
