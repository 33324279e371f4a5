package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/miradorstack/sentiment-dashboard/internal/api"
	"github.com/miradorstack/sentiment-dashboard/internal/cache"
	"github.com/miradorstack/sentiment-dashboard/internal/config"
	"github.com/miradorstack/sentiment-dashboard/internal/dashboard"
	"github.com/miradorstack/sentiment-dashboard/internal/metrics"
	"github.com/miradorstack/sentiment-dashboard/internal/render"
	"github.com/miradorstack/sentiment-dashboard/internal/repo"
	"github.com/miradorstack/sentiment-dashboard/internal/services"
	"github.com/miradorstack/sentiment-dashboard/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting sentiment-dashboard",
		slog.String("address", cfg.Server.Address),
		slog.String("upstream", cfg.Upstream.BaseURL))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	cacheProvider := newCacheProvider(cfg.Cache, logger)
	defer cacheProvider.Close()

	var limiter *rate.Limiter
	if cfg.Upstream.RateLimit > 0 {
		burst := cfg.Upstream.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.Upstream.RateLimit), burst)
	}

	client := repo.NewSentimentAPIClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.KeywordsPath,
		cfg.Upstream.SentimentPath,
		cfg.Upstream.Timeout,
		cacheProvider,
		cfg.Cache.KeywordsTTL,
		limiter,
	)

	renderer := render.NewRenderer(cfg.Dashboard.Location(), logger)
	controller := dashboard.NewController(client, renderer, dashboard.NewSequencer(), logger, cfg.Dashboard.DefaultKeyword, cfg.Dashboard.WindowDays)
	dashboardService := services.NewDashboardService(logger, controller, client)

	gin.SetMode(gin.ReleaseMode)
	router, err := api.NewRouter(dashboardService, logger)
	if err != nil {
		logger.Error("failed to build router", slog.Any("error", err))
		os.Exit(1)
	}

	httpServer, err := api.NewServer(cfg.Server.Address, router, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	if err != nil {
		logger.Error("failed to create HTTP server", slog.Any("error", err))
		os.Exit(1)
	}

	var healthServer *api.HealthServer
	if cfg.Server.GRPCAddress != "" {
		healthServer, err = api.NewHealthServer(cfg.Server.GRPCAddress)
		if err != nil {
			logger.Error("failed to create gRPC health server", slog.Any("error", err))
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *api.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer, err = api.NewServer(cfg.Server.MetricsAddress, mux, 5*time.Second, 15*time.Second)
		if err != nil {
			logger.Error("failed to create metrics server", slog.Any("error", err))
			os.Exit(1)
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", metricsServer.Address()))
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	if healthServer != nil {
		go func() {
			logger.Info("gRPC health server listening", slog.String("address", healthServer.Address()))
			if err := healthServer.Start(); err != nil {
				logger.Error("gRPC health server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		logger.Info("dashboard listening", slog.String("address", httpServer.Address()))
		if err := httpServer.Start(); err != nil {
			logger.Error("HTTP server exited", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")
	if healthServer != nil {
		healthServer.SetServing(false)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown", slog.Any("error", err))
	}
	if healthServer != nil {
		healthServer.Shutdown(shutdownCtx)
	}

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("sentiment-dashboard stopped", slog.Duration("analysis_p95", dashboardService.LatencyP95()))
}

// newCacheProvider selects the keyword cache. An unreachable Valkey degrades to memory.
func newCacheProvider(cfg config.CacheConfig, logger *slog.Logger) cache.Provider {
	switch cfg.Kind {
	case config.CacheNone:
		return cache.NoopProvider{}
	case config.CacheValkey:
		provider, err := cache.NewValkeyProvider(cache.ValkeyConfig{
			Addr:         cfg.Addr,
			Username:     cfg.Username,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			MaxRetries:   cfg.MaxRetries,
			TLS:          cfg.TLS,
		})
		if err != nil {
			logger.Warn("valkey cache unavailable, falling back to memory", slog.Any("error", err))
			return cache.NewMemoryProvider()
		}
		return provider
	default:
		return cache.NewMemoryProvider()
	}
}
