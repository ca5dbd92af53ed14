package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dejobratic/storefront/internal/auth"
	authhttp "github.com/dejobratic/storefront/internal/auth/adapters/http"
	carthttp "github.com/dejobratic/storefront/internal/cart/adapters/http"
	cartapp "github.com/dejobratic/storefront/internal/cart/app"
	cartmetrics "github.com/dejobratic/storefront/internal/cart/metrics"
	cartports "github.com/dejobratic/storefront/internal/cart/ports"
	cataloghttp "github.com/dejobratic/storefront/internal/catalog/adapters/http"
	"github.com/dejobratic/storefront/internal/catalog/loader"
	catalogports "github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/dejobratic/storefront/internal/catalog/source"
	"github.com/dejobratic/storefront/internal/config"
	"github.com/dejobratic/storefront/internal/database"
	"github.com/dejobratic/storefront/internal/events"
	"github.com/dejobratic/storefront/internal/server"
	memorykv "github.com/dejobratic/storefront/internal/storage/memory"
	postgreskv "github.com/dejobratic/storefront/internal/storage/postgres"
	"github.com/dejobratic/storefront/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(parseLogLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.OTelEndpoint != "" {
		tel, err := telemetry.Initialize(ctx, telemetry.Config{
			ServiceName:    cfg.Service.Name,
			ServiceVersion: cfg.Service.Version,
			Environment:    cfg.Service.Environment,
			OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
			EnableTracing:  cfg.Telemetry.EnableTracing,
			EnableMetrics:  cfg.Telemetry.EnableMetrics,
			SampleRate:     cfg.Telemetry.SampleRate,
		})
		if err != nil {
			logger.Error("failed to initialize telemetry", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tel.Shutdown(shutdownCtx); err != nil {
				logger.Error("telemetry shutdown failed", "error", err)
			}
		}()
	}

	meter := otel.Meter("github.com/dejobratic/storefront")

	kv, pool, err := buildStorage(ctx, cfg, logger, meter)
	if err != nil {
		logger.Error("failed to set up cart storage", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	catalogSource, err := buildCatalogSource(cfg, logger, meter)
	if err != nil {
		logger.Error("failed to set up catalog source", "error", err)
		os.Exit(1)
	}

	cartMetrics, err := cartmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create cart metrics", "error", err)
		os.Exit(1)
	}

	httpMetrics, err := server.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}

	bus := events.NewNoopBus()
	authService := auth.NewService(cfg.Auth.JWTSecret)
	cartManager := cartapp.NewManager(kv, bus, logger, cartMetrics)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := database.CheckHealth(r.Context(), pool); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	cataloghttp.NewHandler(catalogSource, loader.WithDelay(cfg.Catalog.FeedDelay)).Register(mux)
	carthttp.NewHandler(cartManager, authService, bus).Register(mux)
	authhttp.NewHandler(authService).Register(mux)

	handler := withRecovery(withLogging(server.WithMetrics(mux, httpMetrics)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
}

func buildStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger, meter metric.Meter) (cartports.KV, *pgxpool.Pool, error) {
	if cfg.Storage.Driver != "postgres" {
		logger.Info("using in-memory cart storage")
		return memorykv.NewKV(), nil, nil
	}

	pool, err := database.NewPool(ctx, cfg.Storage.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create database pool: %w", err)
	}

	if cfg.Storage.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Storage.MigrationsPath)
		if err := database.RunMigrations(cfg.Storage.DatabaseURL, cfg.Storage.MigrationsPath); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations completed successfully")
	}

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("create database metrics: %w", err)
	}

	return postgreskv.NewKV(pool, postgreskv.WithMetrics(dbMetrics)), pool, nil
}

func buildCatalogSource(cfg *config.Config, logger *slog.Logger, meter metric.Meter) (catalogports.Source, error) {
	client := source.NewClient(cfg.Catalog.BaseURL)
	fallback := source.NewFallbackDataset()

	var src catalogports.Source = source.NewWithFallback(client, fallback, logger)
	src = source.NewCached(src, cfg.Catalog.CacheTTL)

	sourceMetrics, err := source.NewMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create catalog source metrics: %w", err)
	}

	return source.NewObservable(src, sourceMetrics), nil
}

func parseLogLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
