package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jonwraymond/textops/auth"
	"github.com/jonwraymond/textops/diff"
	"github.com/jonwraymond/textops/health"
	"github.com/jonwraymond/textops/memo"
	"github.com/jonwraymond/textops/observe"
	"github.com/jonwraymond/textops/resilience"
)

const component = "server"

// DefaultMaxBodyBytes bounds a request body when no limit is configured.
const DefaultMaxBodyBytes = 4 << 20

// Scopes a bearer token must carry for each route group.
const (
	ScopeRender = "render"
	ScopeDiff   = "diff"
)

// Server serves the textops HTTP API.
type Server struct {
	memo         *memo.Memo
	diffOpts     diff.Options
	mw           *observe.Middleware
	authn        auth.Authenticator
	authz        auth.Authorizer
	bulkhead     *resilience.Bulkhead
	health       *health.Aggregator
	metrics      http.Handler
	maxBodyBytes int64

	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration

	closers []func() error
}

// Option configures a Server.
type Option func(*Server)

// WithDiffOptions sets the options used by the diff routes.
func WithDiffOptions(o diff.Options) Option {
	return func(s *Server) { s.diffOpts = o }
}

// WithObserver sets the middleware that traces, measures and logs each request.
func WithObserver(mw *observe.Middleware) Option {
	return func(s *Server) {
		if mw != nil {
			s.mw = mw
		}
	}
}

// WithAuthenticator guards the /v1 routes with a. Health and metrics stay
// open. Unless WithAuthorizer says otherwise, each route then also requires
// its scope (ScopeRender or ScopeDiff).
func WithAuthenticator(a auth.Authenticator) Option {
	return func(s *Server) { s.authn = a }
}

// WithAuthorizer replaces the scope check applied to authenticated routes.
func WithAuthorizer(a auth.Authorizer) Option {
	return func(s *Server) { s.authz = a }
}

// WithConcurrencyLimit lets at most n render, extract and diff requests run
// at once. A request that finds no slot within wait is answered 503.
// n <= 0 removes the limit.
func WithConcurrencyLimit(n int, wait time.Duration) Option {
	return func(s *Server) {
		if n <= 0 {
			s.bulkhead = nil
			return
		}
		s.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: n, MaxWait: wait})
	}
}

// WithHealth serves the aggregator on the health routes.
func WithHealth(agg *health.Aggregator) Option {
	return func(s *Server) { s.health = agg }
}

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithMaxBodyBytes limits request bodies. n <= 0 means DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithTimeouts sets the listener read and write timeouts and the graceful
// shutdown budget used by Serve. Zero values keep the defaults.
func WithTimeouts(read, write, shutdown time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
		if shutdown > 0 {
			s.shutdownTimeout = shutdown
		}
	}
}

// WithCloser registers fn to run on Close, in reverse registration order.
func WithCloser(fn func() error) Option {
	return func(s *Server) { s.closers = append(s.closers, fn) }
}

// New creates a Server around m.
func New(m *memo.Memo, opts ...Option) (*Server, error) {
	if m == nil {
		return nil, errors.New("server: memo is nil")
	}
	s := &Server{
		memo:            m,
		mw:              observe.NewMiddleware(nil, nil, nil),
		health:          health.NewAggregator(),
		maxBodyBytes:    DefaultMaxBodyBytes,
		readTimeout:     10 * time.Second,
		writeTimeout:    30 * time.Second,
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authn != nil && s.authz == nil {
		s.authz = auth.ScopeAuthorizer{}
	}
	return s, nil
}

type route struct {
	pattern string
	op      string
	scope   string
	bounded bool
	fn      handlerFunc
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	logger := s.mw.Logger()
	routes := []route{
		{"POST /v1/render", "render", ScopeRender, true, s.render},
		{"DELETE /v1/render", "invalidate", ScopeRender, false, s.invalidate},
		{"POST /v1/extract", "extract", ScopeRender, true, s.extract},
		{"POST /v1/diff", "diff", ScopeDiff, true, s.diff},
		{"POST /v1/revisions/diff", "revision_diff", ScopeDiff, true, s.revisionDiff},
	}

	api := http.NewServeMux()
	for _, rt := range routes {
		var h http.Handler = s.handle(rt.op, rt.bounded, rt.fn)
		if s.authz != nil {
			h = auth.Require(s.authz, rt.scope, logger)(h)
		}
		api.Handle(rt.pattern, h)
	}

	authn := s.authn
	if authn == nil {
		authn = auth.Anonymous
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/", auth.Middleware(authn, logger)(api))
	health.RegisterHandlers(mux, s.health)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return mux
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close runs the registered closers.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle runs fn inside the observe middleware and maps its error to a
// JSON error response. Bounded handlers hold a bulkhead slot while they run.
func (s *Server) handle(op string, bounded bool, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
		err := s.mw.Run(r.Context(), observe.OpMeta{Component: component, Op: op},
			func(ctx context.Context, _ observe.OpMeta) error {
				if bounded && s.bulkhead != nil {
					return s.bulkhead.Execute(ctx, func(ctx context.Context) error {
						return fn(w, r.WithContext(ctx))
					})
				}
				return fn(w, r.WithContext(ctx))
			})
		if err != nil {
			writeError(w, err)
		}
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &requestError{code: http.StatusRequestEntityTooLarge, err: err}
		}
		return &requestError{code: http.StatusBadRequest, err: fmt.Errorf("decode request: %w", err)}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
