package bridge

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/fragment/pkg/middleware"
	"github.com/vango-dev/fragment/pkg/partial"
	"github.com/vango-dev/fragment/pkg/router"
)

const (
	defaultReadLimit    = 64 * 1024
	defaultWriteTimeout = 10 * time.Second
)

// Setup registers routes for a new connection. It runs once per
// connection before any frame is read.
type Setup func(c *Conn) error

// Server upgrades HTTP requests to bridge connections. Each connection
// gets its own Window, Router and partial Loader.
type Server struct {
	setup         Setup
	logger        *slog.Logger
	upgrader      websocket.Upgrader
	routerOptions []router.Option
	loaderOptions []partial.Option
	readLimit     int64
	writeTimeout  time.Duration
	onConnect     func(*Conn)
	onDisconnect  func(*Conn)

	mu    sync.RWMutex
	conns map[*Conn]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCheckOrigin sets the origin check used during the upgrade.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// WithAllowedOrigins accepts upgrades whose Origin host is in hosts, or
// any origin when hosts contains "*". Requests without an Origin header
// are accepted.
func WithAllowedOrigins(hosts ...string) Option {
	return WithCheckOrigin(func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		for _, h := range hosts {
			if h == "*" || strings.EqualFold(h, u.Host) {
				return true
			}
		}
		return strings.EqualFold(u.Host, r.Host)
	})
}

// WithRouterOptions adds options for every connection's router.
func WithRouterOptions(opts ...router.Option) Option {
	return func(s *Server) {
		s.routerOptions = append(s.routerOptions, opts...)
	}
}

// WithLoaderOptions adds options for every connection's partial loader.
func WithLoaderOptions(opts ...partial.Option) Option {
	return func(s *Server) {
		s.loaderOptions = append(s.loaderOptions, opts...)
	}
}

// WithReadLimit caps the size of a client frame.
func WithReadLimit(n int64) Option {
	return func(s *Server) {
		s.readLimit = n
	}
}

// WithWriteTimeout bounds each frame write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.writeTimeout = d
	}
}

// OnConnect sets a hook called after setup succeeded.
func OnConnect(fn func(*Conn)) Option {
	return func(s *Server) {
		s.onConnect = fn
	}
}

// OnDisconnect sets a hook called when a connection ends.
func OnDisconnect(fn func(*Conn)) Option {
	return func(s *Server) {
		s.onDisconnect = fn
	}
}

// New creates a bridge server.
func New(setup Setup, opts ...Option) *Server {
	s := &Server{
		setup:        setup,
		readLimit:    defaultReadLimit,
		writeTimeout: defaultWriteTimeout,
		conns:        make(map[*Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// ServeHTTP upgrades the request and serves the connection until the
// client disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("bridge upgrade failed", "remote", r.RemoteAddr, "error", err)
		middleware.RecordBridgeError("upgrade")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := s.newConn(ws, r)
	if s.setup != nil {
		if err := s.setup(c); err != nil {
			s.logger.Error("bridge setup failed", "remote", r.RemoteAddr, "error", err)
			middleware.RecordBridgeError("setup")
			_ = c.send(errorFrame(err, "E141"))
			ws.Close()
			return
		}
	}

	s.track(c, true)
	defer s.track(c, false)

	c.readLoop(ctx)
}

func (s *Server) track(c *Conn, open bool) {
	s.mu.Lock()
	if open {
		s.conns[c] = struct{}{}
	} else {
		delete(s.conns, c)
	}
	s.mu.Unlock()

	if open {
		middleware.RecordBridgeConnect()
		s.logger.Debug("bridge connected", "remote", c.remote)
		if s.onConnect != nil {
			s.onConnect(c)
		}
		return
	}

	c.ws.Close()
	middleware.RecordBridgeDisconnect()
	s.logger.Debug("bridge disconnected", "remote", c.remote)
	if s.onDisconnect != nil {
		s.onDisconnect(c)
	}
}

// ConnCount returns the number of open connections.
func (s *Server) ConnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// Close closes all connections.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.conns {
		c.ws.Close()
		delete(s.conns, c)
	}
}
