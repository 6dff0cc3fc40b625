// Package server assembles the HTTP router: Connect services, metrics,
// health checks and the optional static front end.
package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/pricediary/internal/aggregate"
	"github.com/mmynk/pricediary/internal/auth"
	"github.com/mmynk/pricediary/internal/entries"
	"github.com/mmynk/pricediary/internal/family"
	"github.com/mmynk/pricediary/internal/middleware"
	"github.com/mmynk/pricediary/internal/prefs"
	"github.com/mmynk/pricediary/internal/service"
	"github.com/mmynk/pricediary/internal/storage"
	"github.com/mmynk/pricediary/pkg/api/apiconnect"
)

// Options configures the router.
type Options struct {
	Store      storage.Store
	Prefs      prefs.Store
	JWTManager *auth.JWTManager
	Logger     *slog.Logger

	FanoutLimit   int
	PublicBaseURL string
	AllowedOrigin string

	// StaticPath serves a front end build when non-empty.
	StaticPath string
}

// NewRouter wires repositories and services and returns the root handler.
func NewRouter(opts Options) (http.Handler, error) {
	logger := opts.Logger

	entryRepo := entries.NewRepository(opts.Store, logger)
	familyRepo := family.NewRepository(opts.Store, logger)
	resolver := aggregate.NewResolver(entryRepo, familyRepo, logger, opts.FanoutLimit)

	authSvc := service.NewAuthService(auth.NewPasswordAuthenticator(opts.Store), opts.JWTManager, opts.Store, familyRepo, logger)
	entrySvc := service.NewEntryService(entryRepo, resolver, opts.Prefs, logger)
	familySvc := service.NewFamilyService(familyRepo, opts.PublicBaseURL, logger)

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(),
		middleware.RequireAuth(opts.JWTManager),
		middleware.LoggingInterceptor(logger),
	)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(opts.AllowedOrigin))

	for _, mount := range []func() (string, http.Handler){
		func() (string, http.Handler) { return apiconnect.NewAuthServiceHandler(authSvc, interceptors) },
		func() (string, http.Handler) { return apiconnect.NewEntryServiceHandler(entrySvc, interceptors) },
		func() (string, http.Handler) { return apiconnect.NewFamilyServiceHandler(familySvc, interceptors) },
	} {
		path, handler := mount()
		r.Handle(path+"*", handler)
	}

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/healthz", healthz)

	if opts.StaticPath != "" {
		staticDir, err := filepath.Abs(opts.StaticPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Serving static files", "path", staticDir)
		r.NotFound(staticHandler(staticDir))
	}

	return r, nil
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// staticHandler serves files from dir and index.html for unknown paths.
func staticHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/pricediary.v1.") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(dir, filepath.Clean("/"+urlPath))
		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	}
}
