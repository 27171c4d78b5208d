// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	dashboardfeature "github.com/dalemusser/stratarefer/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/stratarefer/internal/app/features/errors"
	healthfeature "github.com/dalemusser/stratarefer/internal/app/features/health"
	homefeature "github.com/dalemusser/stratarefer/internal/app/features/home"
	loginfeature "github.com/dalemusser/stratarefer/internal/app/features/login"
	logoutfeature "github.com/dalemusser/stratarefer/internal/app/features/logout"
	referralapifeature "github.com/dalemusser/stratarefer/internal/app/features/referralapi"
	referralsfeature "github.com/dalemusser/stratarefer/internal/app/features/referrals"
	vacanciesfeature "github.com/dalemusser/stratarefer/internal/app/features/vacancies"
	vacancyapifeature "github.com/dalemusser/stratarefer/internal/app/features/vacancyapi"
	appresources "github.com/dalemusser/stratarefer/internal/app/resources"
	profilestore "github.com/dalemusser/stratarefer/internal/app/store/profiles"
	referralstore "github.com/dalemusser/stratarefer/internal/app/store/referrals"
	vacancystore "github.com/dalemusser/stratarefer/internal/app/store/vacancies"
	"github.com/dalemusser/stratarefer/internal/app/system/apicors"
	"github.com/dalemusser/stratarefer/internal/app/system/auth"
	"github.com/dalemusser/stratarefer/internal/app/system/authz"
	"github.com/dalemusser/stratarefer/internal/app/system/gate"
	"github.com/dalemusser/stratarefer/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root router.
//
// Public surface: the vacancy listing at /, the referral intake at
// /api/referencias and the public half of /api/vacantes. Everything under
// /admin passes through the access gate before reaching a handler.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey,
		appCfg.SessionName,
		appCfg.SessionDomain,
		appCfg.SessionMaxAge,
		appCfg.SessionRefreshWindow,
		secure,
		logger,
	)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Dev mode reloads templates from disk on each render.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	errPages := errorsfeature.NewHandler()

	profiles := profilestore.New(deps.MongoDatabase, logger)
	vacancies := vacancystore.New(deps.MongoDatabase)
	referrals := referralstore.New(deps.MongoDatabase)

	g := gate.New(sessionMgr, profiles)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RequestID)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Cookie name is app-specific so sibling services on the same domain
	// do not overwrite each other's token.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("stratarefer_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			if req.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", gate.LoginPath)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)

	// JSON endpoints and the scrape target are called by scripts, not forms.
	csrfMiddleware := func(next http.Handler) http.Handler {
		protected := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.HasPrefix(req.URL.Path, "/api/") || req.URL.Path == "/metrics" {
				next.ServeHTTP(w, req)
				return
			}
			protected.ServeHTTP(w, req)
		})
	}
	r.Use(csrfMiddleware)

	// The gate only acts on /admin paths; everything else passes through.
	r.Use(g.Middleware(logger))

	// ─────────────────────────────────────────────────────────────────────────────
	// Public
	// ─────────────────────────────────────────────────────────────────────────────

	homeHandler := homefeature.NewHandler(vacancies, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	referralAPI := referralapifeature.NewHandler(
		vacancies,
		referrals,
		deps.FileStorage,
		deps.Mailer,
		referralapifeature.Config{
			EmailAdmin: appCfg.EmailAdmin,
			BaseURL:    appCfg.BaseURL,
		},
		errLog,
		logger,
	)
	vacancyAPI := vacancyapifeature.NewHandler(vacancies, errLog, logger)

	publicCORS := apicors.Middleware(appCfg.APICORSOrigins)
	r.Route("/api/referencias", func(sr chi.Router) {
		sr.Use(publicCORS)
		sr.Mount("/", referralapifeature.Routes(referralAPI))
	})
	r.Route("/api/vacantes", func(sr chi.Router) {
		sr.Use(publicCORS)
		sr.Mount("/", vacancyapifeature.Routes(vacancyAPI, authz.RequireAdminAPI(sessionMgr, profiles, logger)))
	})

	// ─────────────────────────────────────────────────────────────────────────────
	// Admin (gated)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Get("/admin", dashboardfeature.RedirectRoot)

	loginHandler := loginfeature.NewHandler(profiles, sessionMgr, errLog, appCfg.TrustProxy, logger)
	r.Mount(gate.LoginPath, loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount(gate.LogoutPath, logoutfeature.Routes(logoutHandler))

	dashboardHandler := dashboardfeature.NewHandler(referrals, vacancies, errLog, logger)
	r.Mount(gate.DefaultPath, dashboardfeature.Routes(dashboardHandler))

	vacanciesHandler := vacanciesfeature.NewHandler(vacancies, referrals, errLog, logger)
	r.Mount("/admin/vacantes", vacanciesfeature.Routes(vacanciesHandler))

	referralsHandler := referralsfeature.NewHandler(referrals, vacancies, errLog, logger)
	r.Mount("/admin/referencias", referralsfeature.Routes(referralsHandler))

	// ─────────────────────────────────────────────────────────────────────────────
	// Infrastructure
	// ─────────────────────────────────────────────────────────────────────────────

	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Mailer.Enabled(), appCfg.StorageType, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	r.Handle("/metrics", metrics.Handler())

	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	// Résumés on local disk are served directly; S3 hands out its own URLs.
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	r.NotFound(errPages.NotFound)

	return r, nil
}
