// Package bridge connects browser tabs to fragment routers over WebSocket.
//
// A small client script (ClientScript) reports the tab's URL on connect
// and after every hashchange. The server keeps one router.Window and
// router.Router per connection, dispatches each report, and sends loaded
// partials back for the client to insert.
//
// Frames are JSON text messages:
//
//	client → server  {"type":"hashchange","href":"https://example.com/#/user/42"}
//	server → client  {"type":"partial","target":"#main","url":"...","html":"..."}
//	server → client  {"type":"navigate","href":"#/login"}
//	server → client  {"type":"error","code":"E141","message":"..."}
//
// Usage:
//
//	srv := bridge.New(func(c *bridge.Conn) error {
//	    h, err := c.Router().On("/user/:id", showUser)
//	    if err != nil {
//	        return err
//	    }
//	    h.Load("#main", "/partials/user.html", nil)
//	    return nil
//	}, bridge.WithLoaderOptions(partial.WithBaseURL("file:///"),
//	    partial.WithSource("file", partial.NewFileSource("partials"))))
//
//	mux.Handle("/ws", srv)
package bridge
