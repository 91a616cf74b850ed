package httpapi

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/logging"
	"github.com/MrEthical07/goAccount/middleware"
)

// Option configures [NewRouter].
type Option func(*api)

// WithLogger sets the request logger. The default discards.
func WithLogger(l logging.Logger) Option {
	return func(a *api) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(a *api) { a.metrics = h }
}

// WithTrustProxy makes the first X-Forwarded-For hop the client IP.
func WithTrustProxy(trust bool) Option {
	return func(a *api) { a.trustProxy = trust }
}

type api struct {
	engine     *goAccount.Engine
	logger     logging.Logger
	metrics    http.Handler
	trustProxy bool
}

// NewRouter returns a router serving engine's flows.
func NewRouter(engine *goAccount.Engine, opts ...Option) *mux.Router {
	a := &api{engine: engine, logger: logging.Nop()}
	for _, opt := range opts {
		opt(a)
	}

	r := mux.NewRouter()
	r.Use(a.requestContext, a.accessLog)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	if a.metrics != nil {
		r.Handle("/metrics", a.metrics).Methods(http.MethodGet)
	}

	j := r.PathPrefix("/jwt").Subrouter()
	j.Handle("/user", middleware.RequireAccessToken(engine)(http.HandlerFunc(a.userDetail))).Methods(http.MethodGet)
	j.HandleFunc("/login", a.login).Methods(http.MethodPost)
	j.HandleFunc("/register", a.register).Methods(http.MethodPost)
	j.HandleFunc("/confirm/{token}", a.confirm).Methods(http.MethodGet)
	j.HandleFunc("/forgot-password", a.forgotPassword).Methods(http.MethodPost)
	j.HandleFunc("/reset-password/verify/{token}", a.verifyResetToken).Methods(http.MethodGet)
	j.HandleFunc("/reset-password/{token}", a.resetPassword).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}

// requestContext copies the client IP and user agent into the request
// context so published events carry them.
func (a *api) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := goAccount.WithClientIP(r.Context(), a.clientIP(r))
		ctx = goAccount.WithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *api) clientIP(r *http.Request) string {
	if a.trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (a *api) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		a.logger.Debug(r.Context(), "http request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
