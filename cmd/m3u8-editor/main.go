package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.etcd.io/bbolt"

	"github.com/alorle/m3u8-editor/api"
	"github.com/alorle/m3u8-editor/internal/adapter/driven"
	"github.com/alorle/m3u8-editor/internal/adapter/driver"
	"github.com/alorle/m3u8-editor/internal/application"
	"github.com/alorle/m3u8-editor/internal/circuitbreaker"
	"github.com/alorle/m3u8-editor/internal/config"
	"github.com/alorle/m3u8-editor/internal/playlist"
	port "github.com/alorle/m3u8-editor/internal/port/driven"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Create structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting m3u8-editor",
		"addr", cfg.ListenAddr(),
		"db_path", cfg.Storage.DBPath,
		"guide_url", cfg.Guide.URL,
		"guide_ttl", cfg.Guide.TTL,
		"redis", cfg.Guide.RedisURL != "",
		"log_level", cfg.Log.Level,
	)

	// Open BoltDB
	db, err := bbolt.Open(cfg.Storage.DBPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}()

	// Create driven adapters
	playlistRepo, err := driven.NewPlaylistBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create playlist repository: %v", err)
	}

	guideCache, closeCache, err := newGuideCache(cfg, db)
	if err != nil {
		log.Fatalf("failed to create guide cache: %v", err)
	}
	defer closeCache()

	fetcher := driven.NewGuideXMLTVFetcher(cfg.Guide.URL, &http.Client{Timeout: cfg.Guide.Timeout})
	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:             "guide",
		FailureThreshold: cfg.Guide.FailureThreshold,
		Timeout:          cfg.Guide.BreakerTimeout,
		Logger:           logger,
	})

	// Create application services
	editorService := application.NewEditorService(playlistRepo, playlist.UUIDGenerator{}, logger)
	if err := editorService.Restore(context.Background()); err != nil {
		logger.Error("failed to restore saved playlist, starting empty", "error", err)
	}
	scheduleService := application.NewScheduleService(fetcher, guideCache, breaker, cfg.Guide.TTL, logger)
	healthService := application.NewHealthService(playlistRepo, scheduleService)

	swagger, err := api.GetSwagger()
	if err != nil {
		log.Fatalf("failed to load OpenAPI document: %v", err)
	}

	// Create HTTP handlers
	playlistHandler := driver.NewPlaylistHTTPHandler(editorService, logger)
	groupHandler := driver.NewGroupHTTPHandler(editorService)
	channelHandler := driver.NewChannelHTTPHandler(editorService)
	selectionHandler := driver.NewSelectionHTTPHandler(editorService)
	dragHandler := driver.NewDragHTTPHandler(editorService)
	scheduleHandler := driver.NewScheduleHTTPHandler(scheduleService, logger)
	healthHandler := driver.NewHealthHTTPHandler(healthService)

	// Register API routes
	apiMux := http.NewServeMux()
	apiMux.Handle("/playlist", playlistHandler)
	apiMux.Handle("/groups", groupHandler)
	apiMux.Handle("/groups/", groupHandler)
	apiMux.Handle("/channels/", channelHandler)
	apiMux.Handle("/selection", selectionHandler)
	apiMux.Handle("/selection/", selectionHandler)
	apiMux.Handle("/drag", dragHandler)
	apiMux.Handle("/drag/", dragHandler)
	apiMux.Handle("/schedule", scheduleHandler)
	apiMux.Handle("/schedule/", scheduleHandler)
	apiMux.Handle("/health", healthHandler)
	apiMux.Handle("/openapi.json", driver.NewDocumentationHandler(swagger))

	// Root router: validated API under /api/, export and metrics at root, SPA for everything else
	rootMux := http.NewServeMux()
	rootMux.Handle("/api/", driver.RequestValidator(swagger)(http.StripPrefix("/api", apiMux)))
	rootMux.Handle("/playlist.m3u8", playlistHandler)
	rootMux.Handle("/metrics", promhttp.Handler())
	if spa := newSPAHandler(cfg); spa != nil {
		rootMux.Handle("/", spa)
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      driver.AccessLog(logger, "/metrics")(rootMux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Guide.RefreshOnStart {
		go func() {
			result, err := scheduleService.Refresh(ctx, false)
			if err != nil {
				logger.Error("initial guide refresh failed", "error", err)
				return
			}
			logger.Info("initial guide refresh completed", "source", result.Source, "channels", result.Channels)
		}()
	}

	// Start server in a goroutine
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

// newGuideCache prefers Redis when a URL is configured and falls back to a
// bucket in the editor database.
func newGuideCache(cfg *config.Config, db *bbolt.DB) (port.GuideCache, func(), error) {
	if cfg.Guide.RedisURL != "" {
		cache, err := driven.NewGuideRedisCache(cfg.Guide.RedisURL, cfg.Guide.TTL)
		if err != nil {
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cache.Ping(pingCtx); err != nil {
			slog.Warn("redis not reachable, guide cache will miss until it is", "error", err)
		}
		return cache, func() {
			if err := cache.Close(); err != nil {
				slog.Error("error closing redis client", "error", err)
			}
		}, nil
	}

	cache, err := driven.NewGuideBoltDBCache(db)
	if err != nil {
		return nil, nil, err
	}
	return cache, func() {}, nil
}
