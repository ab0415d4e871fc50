package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iconidentify/farlinker/internal/analytics"
	"github.com/iconidentify/farlinker/internal/api"
	"github.com/iconidentify/farlinker/internal/api/handler"
	"github.com/iconidentify/farlinker/internal/cache"
	"github.com/iconidentify/farlinker/internal/config"
	"github.com/iconidentify/farlinker/internal/fetch"
	"github.com/iconidentify/farlinker/internal/metrics"
	"github.com/iconidentify/farlinker/internal/render"
	"github.com/iconidentify/farlinker/internal/service"
	"github.com/iconidentify/farlinker/pkg/neynar"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("farlinker %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting farlinker",
		"version", Version,
		"build_time", BuildTime,
		"base_url", cfg.Server.BaseURL,
		"image_cache", cfg.Cache.ImageBackend,
	)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Rendered image cache
	var checks []handler.ReadinessCheck
	var imageCache cache.Backend
	switch cfg.Cache.ImageBackend {
	case config.BackendRedis:
		rb, err := cache.NewRedisBackend(context.Background(), cfg.Cache.RedisURL, "farlinker:img:")
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		imageCache = rb
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: rb.Ping})
	default:
		imageCache = cache.NewMemoryBackend(cfg.Cache.ImageCapacity)
	}
	defer imageCache.Close()

	// Initialize dependencies
	neynarClient := neynar.NewClient(cfg.Neynar, logger)
	castCache := cache.NewCastCache(cfg.Cache.CastTTL, cfg.Cache.CastCapacity)
	fetcher := fetch.NewHTTPFetcher(cfg.ImageFetch, logger)
	renderer := render.NewRenderer(render.LayoutFromConfig(cfg.Render), fetcher, logger)
	tracker := analytics.NewLogTracker(logger)

	// Initialize services
	previewSvc := service.NewPreviewService(
		neynarClient,
		castCache,
		tracker,
		m,
		cfg.Server.BaseURL,
		cfg.Server.CanonicalHost,
		logger,
	)
	imageSvc := service.NewImageService(renderer, imageCache, cfg.Cache.ImageTTL, m, logger)

	// Setup router
	router := api.NewRouter(api.Handlers{
		Preview: handler.NewPreviewHandler(previewSvc, logger),
		Image:   handler.NewImageHandler(imageSvc, logger),
		Cast:    handler.NewCastHandler(previewSvc, logger),
		Health:  handler.NewHealthHandler(checks...),
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, logger)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
