package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lingvolab/lingvo/internal/api"
	"github.com/lingvolab/lingvo/internal/app/advice"
	"github.com/lingvolab/lingvo/internal/app/auth"
	"github.com/lingvolab/lingvo/internal/app/progression"
	"github.com/lingvolab/lingvo/internal/app/social"
	"github.com/lingvolab/lingvo/internal/health"
	_ "github.com/lingvolab/lingvo/internal/infra/metrics" // Register Prometheus metrics
	"github.com/lingvolab/lingvo/internal/infra/sqlite"
)

// Daemon is the Lingvo runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Auth   *auth.Service
	Engine *progression.Service
	Social *social.Service
	Advice *advice.Service
	Server *api.Server
	Health *health.Checker
	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dbDir := cfg.Database.Dir
	if dbDir == "" {
		dbDir = lingvoHome()
	}
	db, err := sqlite.Open(dbDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		return nil, fmt.Errorf("no JWT secret configured (set JWT_SECRET or auth.jwt_secret)")
	}

	authSvc := auth.NewService(db, secret, parseDuration(cfg.Auth.TokenTTL, 7*24*time.Hour))
	engine := progression.NewService(db)
	socialSvc := social.NewService(db)

	// The tutor runs without a key; it just answers with the canned
	// fallback and skips Pro chat.
	var gen advice.Generator
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		models := cfg.AI.Models
		if len(models) == 0 {
			models = advice.DefaultModels
		}
		g, err := advice.NewGeminiGenerator(context.Background(), cfg.AI.APIKey, models)
		if err != nil {
			log.Printf("[daemon] WARNING: gemini client init failed: %v (tutor disabled)", err)
		} else {
			gen = g
		}
	}
	adviceSvc := advice.NewService(db, gen)

	checker := health.NewChecker(db, dbDir)

	srv := api.NewServer(db, authSvc, engine, socialSvc, adviceSvc)
	srv.SetAdminPassword(cfg.Auth.AdminPassword)
	srv.SetCORSOrigins(cfg.Server.CORSOrigins)
	srv.SetHealthChecker(checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config: cfg,
		DB:     db,
		Auth:   authSvc,
		Engine: engine,
		Social: socialSvc,
		Advice: adviceSvc,
		Server: srv,
		Health: checker,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.Server.Host, d.Config.Server.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long for SSE chat streams
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		d.Server.Hub().Shutdown()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Lingvo serving on http://%s\n", addr)
	if d.Advice.Enabled() {
		fmt.Printf("  AI tutor: enabled\n")
	}
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Server != nil {
		d.Server.Hub().Shutdown()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
