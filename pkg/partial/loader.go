package partial

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/vango-dev/fragment/internal/errors"
)

// DefaultTimeout bounds a single fetch when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Content is a fetched partial ready for delivery.
type Content struct {
	Target string
	URL    string
	Body   []byte
}

// Result describes one load attempt.
type Result struct {
	Target   string
	URL      string
	Scheme   string
	Bytes    int
	Duration time.Duration
	Err      error
}

// Source fetches the body behind a URL.
type Source interface {
	Fetch(ctx context.Context, u *url.URL) ([]byte, error)
}

// SourceFunc is a function adapter for Source.
type SourceFunc func(ctx context.Context, u *url.URL) ([]byte, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	return f(ctx, u)
}

// Sink receives loaded content.
type Sink interface {
	Deliver(ctx context.Context, c Content) error
}

// SinkFunc is a function adapter for Sink.
type SinkFunc func(ctx context.Context, c Content) error

// Deliver implements Sink.
func (f SinkFunc) Deliver(ctx context.Context, c Content) error {
	return f(ctx, c)
}

// Loader fetches partials from a Source selected by scheme and delivers
// them to a Sink. It implements router.PartialLoader.
//
// A Loader is safe for concurrent use once configured.
type Loader struct {
	sink    Sink
	sources map[string]Source
	base    *url.URL
	timeout time.Duration
	logger  *slog.Logger
	hooks   []func(Result)
}

// Option configures a Loader.
type Option func(*Loader)

// WithSource registers src for a URL scheme. "http" also covers "https"
// unless "https" is registered separately.
func WithSource(scheme string, src Source) Option {
	return func(l *Loader) {
		l.sources[strings.ToLower(scheme)] = src
	}
}

// WithBaseURL sets the URL relative partial URLs are resolved against.
// An unparsable base is ignored.
func WithBaseURL(base string) Option {
	return func(l *Loader) {
		if u, err := url.Parse(base); err == nil && base != "" {
			l.base = u
		}
	}
}

// WithTimeout bounds each fetch. Zero means DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithHook adds a function called after every load attempt.
func WithHook(fn func(Result)) Option {
	return func(l *Loader) {
		l.hooks = append(l.hooks, fn)
	}
}

// New creates a loader delivering to sink.
func New(sink Sink, opts ...Option) *Loader {
	l := &Loader{
		sink:    sink,
		sources: make(map[string]Source),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.timeout <= 0 {
		l.timeout = DefaultTimeout
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Load fetches rawURL and delivers it to target.
func (l *Loader) Load(ctx context.Context, target, rawURL string) (res Result) {
	start := time.Now()
	res = Result{Target: target, URL: rawURL}
	defer func() {
		res.Duration = time.Since(start)
		for _, hook := range l.hooks {
			hook(res)
		}
	}()

	u, err := l.resolve(rawURL)
	if err != nil {
		res.Err = err
		return res
	}
	res.URL = u.String()
	res.Scheme = u.Scheme

	src, err := l.source(u.Scheme)
	if err != nil {
		res.Err = err
		return res
	}

	fetchCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	body, err := src.Fetch(fetchCtx, u)
	if err != nil {
		res.Err = fetchError(res.URL, err)
		return res
	}
	res.Bytes = len(body)

	if l.sink != nil {
		if err := l.sink.Deliver(ctx, Content{Target: target, URL: res.URL, Body: body}); err != nil {
			res.Err = errors.New("E132").Wrap(err).WithDetail("Delivering " + res.URL + " to " + target + " failed.")
		}
	}
	return res
}

// LoadPartial loads url into target and calls onLoad when delivery
// succeeded. Failures are logged; onLoad is not called for them.
func (l *Loader) LoadPartial(ctx context.Context, target, url string, onLoad func()) {
	res := l.Load(ctx, target, url)
	if res.Err != nil {
		l.logger.Warn("partial load failed",
			"target", target,
			"url", res.URL,
			"error", res.Err,
		)
		return
	}

	l.logger.Debug("partial loaded",
		"target", target,
		"url", res.URL,
		"bytes", res.Bytes,
		"duration", res.Duration,
	)
	if onLoad != nil {
		onLoad()
	}
}

func (l *Loader) resolve(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.New("E130").Wrap(err).WithDetail("Partial URL " + rawURL + " is not a valid URL.")
	}
	if !u.IsAbs() && l.base != nil {
		u = l.base.ResolveReference(u)
	}
	if u.Scheme == "" {
		return nil, errors.New("E130").
			WithDetail("Partial URL " + rawURL + " has no scheme and no base URL is configured.").
			WithSuggestion("Set partials.baseURL in fragment.json")
	}
	return u, nil
}

func (l *Loader) source(scheme string) (Source, error) {
	scheme = strings.ToLower(scheme)
	if src, ok := l.sources[scheme]; ok {
		return src, nil
	}
	if scheme == "https" {
		if src, ok := l.sources["http"]; ok {
			return src, nil
		}
	}
	return nil, errors.New("E130").WithDetail("No partial source is registered for scheme " + scheme + ".")
}

// fetchError keeps coded errors from a source and wraps anything else as E131.
func fetchError(url string, err error) error {
	var fe *errors.FragmentError
	if stderrors.As(err, &fe) {
		return err
	}
	return errors.New("E131").Wrap(err).WithDetail("Fetching " + url + " failed.")
}
