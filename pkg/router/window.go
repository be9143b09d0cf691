package router

import (
	"context"

	"github.com/vango-dev/fragment/pkg/routepath"
)

// Window is an in-memory Location and ChangeSource. It stands in for the
// browser's location and hashchange event on the server and in tests.
//
// Like a browser window it is driven from one goroutine and is not safe
// for concurrent use.
type Window struct {
	href      string
	listeners []func(ctx context.Context) error
}

// NewWindow creates a window showing href.
func NewWindow(href string) *Window {
	return &Window{href: href}
}

// Href returns the current URL.
func (w *Window) Href() string {
	return w.href
}

// OnFragmentChange subscribes fn to fragment changes.
func (w *Window) OnFragmentChange(fn func(ctx context.Context) error) {
	w.listeners = append(w.listeners, fn)
}

// Set replaces the current URL without notifying listeners.
func (w *Window) Set(href string) {
	w.href = href
}

// Fire notifies listeners in subscription order and stops at the first
// error. Listeners added while firing are not called until the next Fire.
func (w *Window) Fire(ctx context.Context) error {
	listeners := w.listeners
	for _, fn := range listeners {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Navigate moves to href and fires when the fragment changed. A handler
// may call Navigate; the nested dispatch completes before the outer one
// resumes.
func (w *Window) Navigate(ctx context.Context, href string) error {
	before := routepath.FromURL(w.href)
	w.href = href
	if routepath.FromURL(href) == before {
		return nil
	}
	return w.Fire(ctx)
}

// SetFragment replaces the fragment of the current URL and fires when it
// changed.
func (w *Window) SetFragment(ctx context.Context, fragment string) error {
	return w.Navigate(ctx, routepath.WithFragment(w.href, fragment))
}
