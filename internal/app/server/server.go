package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"nomina/internal/domain/audit"
	"nomina/internal/domain/auth"
	"nomina/internal/domain/autosave"
	"nomina/internal/domain/detect"
	"nomina/internal/domain/draft"
	"nomina/internal/domain/notifications"
	"nomina/internal/domain/period"
	"nomina/internal/domain/reports"
	"nomina/internal/domain/session"
	"nomina/internal/platform/config"
	"nomina/internal/platform/db"
	"nomina/internal/platform/jobs"
	"nomina/internal/platform/metrics"
	"nomina/internal/platform/realtime"
	"nomina/internal/transport/http/api"
	audithandler "nomina/internal/transport/http/handlers/audit"
	authhandler "nomina/internal/transport/http/handlers/auth"
	drafthandler "nomina/internal/transport/http/handlers/draft"
	notificationshandler "nomina/internal/transport/http/handlers/notifications"
	periodshandler "nomina/internal/transport/http/handlers/periods"
	reportshandler "nomina/internal/transport/http/handlers/reports"
	sessionshandler "nomina/internal/transport/http/handlers/sessions"
	"nomina/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	// Stores and domain services.
	authStore := auth.NewStore(pool)
	periodStore := period.NewStore(pool)
	draftStore := draft.NewStore(pool)
	auditSvc := audit.New(pool)
	rules := draft.DefaultRules(cfg.MinimumWage, cfg.TransportAllowance)

	periodSvc := period.NewService(periodStore, draftStore)
	detector := detect.New(periodStore, auditSvc)
	registry := autosave.NewRegistry(cfg.AutoSaveDelay)
	applier := session.NewApplier(draftStore, rules)
	sessions := session.NewManager(periodSvc, applier)

	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Stop()

	notifSvc := notifications.New(notifications.NewStore(pool), hub)
	reportSvc := reports.NewService(periodStore, draftStore)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	jobsSvc := jobs.New(pool, cfg, detector, periodStore, hub, collector)
	jobsSvc.Start(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Get("/ws", realtime.ServeWS(hub, cfg.JWTSecret))

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/auth/me", authHandler.HandleMe)

		periodshandler.NewHandler(periodSvc, detector, auditSvc, hub, authStore).RegisterRoutes(r)
		drafthandler.NewHandler(draftStore, periodSvc, registry, notifSvc, collector, rules, authStore).RegisterRoutes(r)
		sessionshandler.NewHandler(sessions, auditSvc, hub, collector, authStore).RegisterRoutes(r)
		reportshandler.NewHandler(reportSvc, authStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, authStore).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	log.Printf("nomina server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
