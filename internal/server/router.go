package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/MachineKe/spa-console/internal/config"
	"github.com/MachineKe/spa-console/internal/guard"
	"github.com/MachineKe/spa-console/internal/identity"
	"github.com/MachineKe/spa-console/internal/policy"
	"github.com/MachineKe/spa-console/internal/session"
	"github.com/MachineKe/spa-console/pkg/sdk"
)

// RouterOptions controls the construction of the console HTTP router.
type RouterOptions struct {
	API           *sdk.Client
	Sessions      *session.Repository
	Resolver      *identity.Resolver
	Policy        *policy.Table
	Guard         *guard.Guard
	Cfg           *config.Config
	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
	ExtraRoutes   func(chi.Router)
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type",
			"Accept",
			"X-Requested-With",
		},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, the auth and
// public endpoints, and the guarded dashboard areas mounted. The router can
// be tailored via RouterOptions for CLI usage, tests, or other entrypoints.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	// Apply custom middleware passed from the caller.
	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	cookie := opts.Cfg.Cookie
	bind := CookieStoreBinder(opts.Sessions, cookie.Name)

	// Authentication flow. Sessions only exist once the upstream hands out
	// a token; the two-step flow stays stateless until the code is verified.
	r.Post("/login", HandleLogin(opts.API, opts.Sessions, opts.Policy, cookie))
	r.Post("/login/2fa", HandleVerify2FA(opts.API, opts.Sessions, opts.Policy, cookie))
	r.Post("/logout", HandleLogout(opts.Sessions, opts.Resolver, cookie))
	r.Post("/register", HandleRegister(opts.API))
	r.Get("/api/me", HandleWhoAmI(opts.Resolver, opts.Policy, bind))
	r.Get("/api/language", HandleGetLanguage(opts.Sessions, cookie))
	r.Put("/api/language", HandleSetLanguage(opts.Sessions, cookie))

	// Public surface, no credential attached.
	r.Get("/pagecontent/{page}", HandlePageContent(opts.API))
	r.Get("/tenants/public", HandlePublicTenants(opts.API))
	r.Post("/tenants/register", HandleRegisterTenant(opts.API))
	r.Get("/services/public", HandlePublicServices(opts.API))
	r.Post("/bookings", HandlePublicBooking(opts.API))
	r.Post("/giftcard", HandleGiftCardOrder(opts.API))

	// Guarded dashboard areas. The guard re-evaluates on every request; a
	// decision is never cached across requests.
	shell := NewShell(opts.API, opts.Resolver, bind, opts.Guard.LoginPath())
	gated := opts.Guard.Middleware(bind)

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(gated)
		shell.MountAdminArea(r)
	})
	r.Route("/superadmin", func(r chi.Router) {
		r.Use(gated)
		shell.MountSuperadminArea(r)
	})
	r.Route("/self-service", func(r chi.Router) {
		r.Use(gated)
		shell.MountSelfServiceArea(r)
	})
	r.Route("/customer", func(r chi.Router) {
		r.Use(gated)
		shell.MountCustomerArea(r)
	})

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	if opts.ExtraRoutes != nil {
		opts.ExtraRoutes(r)
	}

	return r
}

// NewH2CHandler wraps the router with an h2c server to provide HTTP/2 over
// cleartext for development setups without TLS termination.
func NewH2CHandler(opts RouterOptions) http.Handler {
	return h2c.NewHandler(NewRouter(opts), &http2.Server{})
}
