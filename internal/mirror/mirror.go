// Package mirror serves a local checkout of the component library over HTTP
// in the same layout as the remote library.
//
// The mirror can emulate the remote's rate limiting: with a limit set it
// sends x-ratelimit-remaining and x-ratelimit-reset on every library
// response and answers 403 once the window is exhausted.
package mirror

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/uicli-dev/uicli/internal/catalog"
	"github.com/uicli-dev/uicli/internal/fetch"
	"github.com/uicli-dev/uicli/internal/logging"
	"github.com/uicli-dev/uicli/internal/metrics"
)

// HeaderRateLimitLimit carries the configured requests per window.
const HeaderRateLimitLimit = "X-Ratelimit-Limit"

// Config configures a Server.
type Config struct {
	// Dir is the library checkout to serve.
	Dir string

	// Limit is the number of library requests allowed per Window.
	// Zero disables rate limiting.
	Limit int

	// Window is the rate limit window (default: 1h).
	Window time.Duration

	Logger  *logging.Logger
	Metrics *metrics.Metrics
}

// Server is the library mirror.
type Server struct {
	source  *fetch.DirSource
	limiter *Limiter
	logger  *logging.Logger
	metrics *metrics.Metrics
	router  chi.Router
}

// New creates a Server.
func New(cfg Config) *Server {
	s := &Server{
		source:  &fetch.DirSource{Root: cfg.Dir},
		limiter: NewLimiter(cfg.Limit, cfg.Window),
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Get("/{kind}/{file}", s.serveAsset)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.With("addr", ln.Addr().String()).Info("mirror listening")
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

// assetFor maps a request path onto a library asset.
func assetFor(kind, file string) (fetch.Asset, bool) {
	var asset fetch.Asset
	switch kind {
	case "components":
		name, ok := strings.CutSuffix(file, ".tsx")
		if !ok || !catalog.ValidName(name) {
			return asset, false
		}
		asset = fetch.ComponentAsset(name)
	case "styles":
		name, ok := strings.CutSuffix(file, ".css")
		if !ok || !catalog.ValidName(name) {
			return asset, false
		}
		asset = fetch.StylesheetAsset(name)
	case "utils":
		asset = fetch.UtilityAsset()
	case "app":
		asset = fetch.GlobalStylesheetAsset()
	default:
		return asset, false
	}
	return asset, asset.FileName() == file
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	asset, ok := assetFor(chi.URLParam(r, "kind"), chi.URLParam(r, "file"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	body, err := s.source.Fetch(r.Context(), asset)
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error(err, "read library file")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		remaining, reset, ok := s.limiter.Take()
		h := w.Header()
		h.Set(HeaderRateLimitLimit, strconv.Itoa(s.limiter.Limit()))
		h.Set(fetch.HeaderRateLimitRemaining, strconv.Itoa(remaining))
		h.Set(fetch.HeaderRateLimitReset, strconv.FormatInt(reset.Unix(), 10))

		if !ok {
			http.Error(w, "API rate limit exceeded", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.MirrorRequest(kindLabel(r.URL.Path), status)

		s.logger.WithFields(map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("request")
	})
}

// kindLabel bounds the metrics label to the library's top-level directories.
func kindLabel(path string) string {
	kind, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	switch kind {
	case "components", "styles", "utils", "app", "metrics", "healthz":
		return kind
	default:
		return "other"
	}
}
