// Package router dispatches URL fragment changes to handlers.
//
// Routes are registered with a pattern and a handler. Patterns use the
// syntax of package pattern:
//
//	/about            literal
//	/user/:id         named parameter
//	/list/:page?      optional parameter
//	/file/:name.:ext  parameter after a dot
//	/n/:id(\d+)       parameter with a custom capture
//	/files/*          wildcard
//
// Every registration subscribes to the router's ChangeSource. When the
// fragment changes, each registration is evaluated in registration order
// and every matching handler runs, synchronously, on the goroutine that
// delivered the change. A batch registered with OnRoutes runs only its
// first matching route.
//
// # Usage
//
//	w := router.NewWindow("http://example.com/#/")
//	r := router.New(router.WithWindow(w), router.WithPartialLoader(loader))
//
//	h, err := r.On("/user/:id", func(ctx context.Context, params map[string]string, m *pattern.MatchResult) error {
//	    log.Println("user", params["id"])
//	    return nil
//	})
//	if err != nil {
//	    return err
//	}
//	h.Load("#main", "/partials/user.html", nil)
//
//	w.SetFragment(ctx, "/user/42")
//
// A handle accepts a single Load; later calls are ignored.
//
// Handler errors stop the dispatch and are returned to whoever fired the
// change. Wrap the router with Recover to turn panics into errors.
package router
