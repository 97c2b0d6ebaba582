package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/philly/imageblog/internal/adapters/media"
	"github.com/philly/imageblog/internal/adapters/rest"
	"github.com/philly/imageblog/internal/adapters/rest/middleware"
	"github.com/philly/imageblog/internal/platform/logger"
)

// RouterOptions selects the optional pieces of the HTTP stack
type RouterOptions struct {
	AllowedOrigins string
	TrustProxy     bool                      // take the client address from forwarding headers
	Session        *middleware.JWTMiddleware // nil leaves write endpoints open
	RateLimiter    *middleware.RateLimiter   // nil disables limiting
	MediaFiles     http.Handler              // serves locally stored images when set
}

// NewHTTPServer creates and configures the HTTP server with all routes
func NewHTTPServer(
	config Config,
	api *rest.Server,
	jwtMiddleware *middleware.JWTMiddleware,
	limiter *middleware.RateLimiter,
	backend MediaBackend,
	log logger.Logger,
) *http.Server {
	handler := NewRouter(api, RouterOptions{
		AllowedOrigins: config.AllowedOrigins,
		TrustProxy:     config.TrustProxy,
		Session:        jwtMiddleware,
		RateLimiter:    limiter,
		MediaFiles:     backend.Files,
	}, log)

	return &http.Server{
		Addr:    config.ServerAddress,
		Handler: handler,
		// Multipart uploads need more than the default API budget
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewRouter builds the chi router for the API
func NewRouter(api *rest.Server, opts RouterOptions, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID, observability(log), chimw.Recoverer, middleware.CORS(opts.AllowedOrigins))

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	// Limit first so unauthenticated floods are cheap to reject
	var mutating []func(http.Handler) http.Handler
	if opts.RateLimiter != nil {
		mutating = append(mutating, opts.RateLimiter.Middleware)
	}
	if opts.Session != nil {
		mutating = append(mutating, opts.Session.Middleware)
	}

	api.Routes(r, mutating...)

	if opts.MediaFiles != nil {
		r.Handle(media.LocalPathPrefix+"*", opts.MediaFiles)
	}

	return r
}

// observability logs every request with its status and duration
func observability(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Use chi's response writer wrapper to capture status code and bytes written
			wrr := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(wrr, r)

			var subject string
			if sub, ok := middleware.GetJWTSubject(r.Context()); ok {
				subject = sub
			}

			log.Info(r.Context(), "HTTP request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrr.Status(),
				"bytes", wrr.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimw.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
				"subject", subject,
			)
		})
	}
}
