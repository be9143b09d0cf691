package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/fragment/pkg/middleware"
	"github.com/vango-dev/fragment/pkg/partial"
	"github.com/vango-dev/fragment/pkg/router"
)

// Conn is one browser connection. Its Window and Router are only used
// from the connection's read loop, so handlers run one at a time.
type Conn struct {
	ws           *websocket.Conn
	window       *router.Window
	router       *router.Router
	loader       *partial.Loader
	logger       *slog.Logger
	remote       string
	request      *http.Request
	readLimit    int64
	writeTimeout time.Duration

	writeMu sync.Mutex
}

func (s *Server) newConn(ws *websocket.Conn, r *http.Request) *Conn {
	c := &Conn{
		ws:           ws,
		window:       router.NewWindow(""),
		logger:       s.logger.With("remote", r.RemoteAddr),
		remote:       r.RemoteAddr,
		request:      r,
		readLimit:    s.readLimit,
		writeTimeout: s.writeTimeout,
	}

	loaderOpts := append([]partial.Option{partial.WithLogger(c.logger)}, s.loaderOptions...)
	c.loader = partial.New(c, loaderOpts...)

	routerOpts := append([]router.Option{
		router.WithWindow(c.window),
		router.WithPartialLoader(c.loader),
		router.WithLogger(c.logger),
	}, s.routerOptions...)
	c.router = router.New(routerOpts...)
	return c
}

// Router returns the connection's router.
func (c *Conn) Router() *router.Router {
	return c.router
}

// Window returns the connection's window.
func (c *Conn) Window() *router.Window {
	return c.window
}

// Request returns the upgrade request.
func (c *Conn) Request() *http.Request {
	return c.request
}

// Navigate asks the client to change its location. The client reports
// the new location with a hashchange frame, which dispatches as usual.
func (c *Conn) Navigate(href string) error {
	return c.send(Frame{Type: FrameNavigate, Href: href})
}

// Deliver sends loaded partial content to the client. It makes Conn the
// sink of its partial loader.
func (c *Conn) Deliver(ctx context.Context, content partial.Content) error {
	return c.send(Frame{
		Type:   FramePartial,
		Target: content.Target,
		URL:    content.URL,
		HTML:   string(content.Body),
	})
}

func (c *Conn) send(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		middleware.RecordBridgeError("write")
		return err
	}
	return nil
}

func (c *Conn) readLoop(ctx context.Context) {
	c.ws.SetReadLimit(c.readLimit)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("bridge read failed", "error", err)
				middleware.RecordBridgeError("read")
			}
			return
		}

		if err := c.handle(ctx, data); err != nil {
			// Only write failures end the connection.
			c.logger.Error("bridge write failed", "error", err)
			return
		}
	}
}

// handle processes one client frame. Frame and dispatch errors are
// reported to the client; the returned error is a failed write.
func (c *Conn) handle(ctx context.Context, data []byte) error {
	f, err := decodeFrame(data)
	if err != nil {
		c.logger.Warn("bridge frame rejected", "error", err)
		middleware.RecordBridgeError("frame")
		return c.send(errorFrame(err, "E140"))
	}

	c.window.Set(f.Href)
	if err := c.window.Fire(ctx); err != nil {
		c.logger.Warn("dispatch failed", "href", f.Href, "error", err)
		middleware.RecordBridgeError("dispatch")
		return c.send(errorFrame(err, "E141"))
	}
	return nil
}
