// Command server runs the diabetes symptom-collection HTTP API.
//
// Startup order:
//  1. Load .env (best effort) and the typed configuration.
//  2. Configure global logging (level, optional pretty console output).
//  3. Open the database, run migrations, and seed the symptom catalog.
//  4. Set up OpenTelemetry tracing (no-op unless enabled).
//  5. Build the scoring invoker and mailer, wire the Gin router.
//  6. Serve until SIGINT/SIGTERM, then shut down gracefully.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/config"
	httpapi "github.com/sharoon-shahzad/go-diabetes-backend/internal/http"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/notify"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/observability"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/repo"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/scoring"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/sysutil"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.ConfigureLogging(cfg.LogLevel, cfg.LogPretty)

	db, err := repo.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	if cfg.SeedDB {
		disease, err := repo.SeedDiabetesCatalog(context.Background(), db)
		if err != nil {
			log.Fatal().Err(err).Msg("seed symptom catalog")
		}
		log.Info().Str("disease_id", disease.ID).Msg("symptom catalog ready")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup otel")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	inv := scoring.NewInvoker(cfg.Scoring.Python, cfg.Scoring.Script, cfg.Scoring.Timeout)

	var mailer notify.Mailer = notify.NopMailer{}
	if cfg.Notify.Enabled {
		m, err := notify.NewSESMailer(ctx, cfg.Notify.AWSRegion, cfg.Notify.Source, cfg.EditingWindow)
		if err != nil {
			log.Fatal().Err(err).Msg("setup ses mailer")
		}
		mailer = m
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, inv, mailer, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
