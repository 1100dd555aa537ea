package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/metrics"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"

	_ "github.com/aussiebroadwan/tokenauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	guard        *httpx.Guard
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Sessions    *service.SessionManager
	Credentials *service.CredentialService
	Metrics     *metrics.Metrics
	RateLimits  httpx.RateLimitProfiles
}

func NewRouter(
	guard *httpx.Guard,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	requestTimeout time.Duration,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		guard:        guard,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		RateLimits:   httpx.DefaultRateLimitProfiles(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Timeout(requestTimeout),
		httpx.MaxBytes(maxBodyBytes),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Token Authentication Service API
//	@version		0.1.0
//	@description	Registration, password login, refresh token rotation and logout.
//	@description
//	@description				Access tokens are HS256 JWTs valid for a few minutes. Refresh tokens are opaque UUIDs and can be used exactly once.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tokenauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(http.HandlerFunc(r.dispatch), r.middlewares...).ServeHTTP(w, req)
}

// dispatch serves matched routes through the mux and answers unmatched ones
// with the JSON error envelope instead of the mux's plain text.
func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	h, pattern := r.Mux.Handler(req)
	if pattern != "" {
		r.Mux.ServeHTTP(w, req)
		return
	}

	probe := &probeWriter{header: http.Header{}, status: http.StatusOK}
	h.ServeHTTP(probe, req)

	switch probe.status {
	case http.StatusMethodNotAllowed:
		w.Header().Set("Allow", probe.header.Get("Allow"))
		authsdk.ErrMethodNotAllowed.WriteError(w)
	case http.StatusNotFound:
		authsdk.ErrNotFound.WriteError(w)
	default:
		// Path cleaning redirects.
		for k, v := range probe.header {
			w.Header()[k] = v
		}
		w.WriteHeader(probe.status)
	}
}

// probeWriter records what the mux fallback would have written.
type probeWriter struct {
	header http.Header
	status int
}

func (p *probeWriter) Header() http.Header         { return p.header }
func (p *probeWriter) Write(b []byte) (int, error) { return len(b), nil }
func (p *probeWriter) WriteHeader(code int)        { p.status = code }

// handle registers pattern and its trailing-slash twin.
func (r *Router) handle(pattern string, h http.Handler, mws ...httpx.Middleware) {
	wrapped := r.Metrics.Instrument(pattern, httpx.Chain(h, mws...))
	r.Mux.Handle(pattern, wrapped)

	if !strings.HasSuffix(pattern, "/") {
		r.Mux.Handle(pattern+"/{$}", wrapped)
	}
}

func (r *Router) registerAuth() {
	// Login buckets on IP and email.
	r.handle("POST /register", &RegisterHandler{Credentials: r.Credentials},
		httpx.RateLimitByIP(r.RateLimits.Strict),
	)
	r.handle("POST /login", &LoginHandler{Sessions: r.Sessions},
		httpx.RateLimitByIPAndJSONField(r.RateLimits.Strict, "email"),
	)
	r.handle("POST /refresh", &RefreshHandler{Sessions: r.Sessions},
		httpx.RateLimitByIP(r.RateLimits.Strict),
	)
	r.handle("POST /logout", &LogoutHandler{Sessions: r.Sessions},
		httpx.RateLimitByIP(r.RateLimits.Moderate),
	)
}

func (r *Router) registerProfile() {
	h := &MeHandler{Credentials: r.Credentials}

	r.handle("GET /me", http.HandlerFunc(h.HandleGet),
		httpx.AuthnMiddleware(r.guard),
		httpx.RateLimitByUser(r.RateLimits.Lenient),
	)
	r.handle("PUT /me", http.HandlerFunc(h.HandlePut),
		httpx.AuthnMiddleware(r.guard),
		httpx.RateLimitByUser(r.RateLimits.Moderate),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.guard),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)
	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}
