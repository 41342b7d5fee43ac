package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"textdigest/internal/config"
	"textdigest/internal/infra/fetcher"
	"textdigest/internal/infra/notifier"
	"textdigest/internal/infra/provider"
	"textdigest/internal/infra/summarizer"
	workerPkg "textdigest/internal/infra/worker"
	"textdigest/internal/observability/logging"
	"textdigest/internal/observability/tracing"
	pkgconfig "textdigest/internal/pkg/config"
	"textdigest/internal/usecase/digest"
	"textdigest/internal/usecase/notify"
)

func main() {
	logger := initLogger()

	if err := config.LoadDotEnv(logger); err != nil {
		logger.Error("failed to load .env", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer := tracing.InitTracer("textdigest-worker", nil)
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shut down tracer", slog.Any("error", err))
		}
	}()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics(nil)
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if err := workerConfig.Validate(); err != nil {
		logger.Error("invalid worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.String("sources_file", workerConfig.SourcesFile),
		slog.Int("parallelism", workerConfig.Parallelism),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Duration("digest_timeout", workerConfig.DigestTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	notifyService := setupNotifyService(logger, workerConfig.NotifyMaxConcurrent)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := notifyService.Shutdown(shutdownCtx); err != nil {
			logger.Error("notification shutdown incomplete", slog.Any("error", err))
		}
	}()

	startMetricsServer(ctx, logger, workerConfig.MetricsPort)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger, notifyService)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	job, err := setupJob(logger, workerConfig, workerMetrics, notifyService, healthServer)
	if err != nil {
		logger.Error("failed to set up digest job", slog.Any("error", err))
		os.Exit(1)
	}

	if err := runCronWorker(ctx, logger, job, workerConfig, healthServer); err != nil {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// initLogger initializes the logger on stdout at LOG_LEVEL in LOG_FORMAT.
func initLogger() *slog.Logger {
	logger := logging.NewFromEnv(os.Stdout, logging.LevelFromEnv())
	slog.SetDefault(logger)
	return logger
}

// setupNotifyService creates the notification service with the Slack and
// Discord channels enabled in the environment.
func setupNotifyService(logger *slog.Logger, maxConcurrent int) *notify.Service {
	var channels []notify.Channel

	if slack := config.LoadSlackConfig(logger); slack.Enabled {
		channels = append(channels, notifier.NewSlackNotifier(notifier.SlackConfig{
			Enabled:    true,
			WebhookURL: slack.WebhookURL,
			Timeout:    slack.Timeout,
		}))
		logger.Info("Slack channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Slack channel disabled")
	}

	if discord := config.LoadDiscordConfig(logger); discord.Enabled {
		channels = append(channels, notifier.NewDiscordNotifier(notifier.DiscordConfig{
			Enabled:    true,
			WebhookURL: discord.WebhookURL,
			Timeout:    discord.Timeout,
		}))
		logger.Info("Discord channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Discord channel disabled")
	}

	cfg := notify.DefaultConfig()
	cfg.MaxConcurrent = maxConcurrent
	logger.Info("Notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", maxConcurrent))
	return notify.NewService(channels, cfg)
}

// setupJob wires the summarizer, the source factory and the digest service
// into a scheduled job. The sources file is checked once here so a broken file
// fails at startup instead of at the first run.
func setupJob(logger *slog.Logger, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics,
	notifyService *notify.Service, healthServer *workerPkg.HealthServer) (*workerPkg.Job, error) {
	summaryMetrics := pkgconfig.NewConfigMetrics("textdigest_summary", nil)
	summaryConfig := summarizer.LoadConfigFromEnv(logger, summaryMetrics)
	sum, err := summarizer.New(summaryConfig)
	if err != nil {
		return nil, fmt.Errorf("create summarizer: %w", err)
	}
	logger.Info("summarizer initialized",
		slog.String("method", string(summaryConfig.Method)),
		slog.Float64("ratio", summaryConfig.Ratio),
		slog.Bool("fold_case", summaryConfig.FoldCase))

	fetchConfig, err := fetcher.LoadConfigFromEnv(logger)
	if err != nil {
		logger.Warn("Content fetching disabled due to configuration error", slog.Any("error", err))
		fetchConfig = fetcher.DefaultConfig()
		fetchConfig.Enabled = false
	}

	factory := provider.NewFactory(createHTTPClient(), fetchConfig)
	loader := workerPkg.FileSourceLoader(cfg.SourcesFile, factory)
	sources, err := loader()
	if err != nil {
		return nil, fmt.Errorf("sources file %s: %w", cfg.SourcesFile, err)
	}
	logger.Info("sources loaded", slog.Int("count", len(sources)))

	digestService := digest.NewService(sum, digest.Config{
		Ratio:       summaryConfig.Ratio,
		Parallelism: cfg.Parallelism,
	})

	return &workerPkg.Job{
		Digest:   digestService,
		Sources:  loader,
		Notifier: notifyService,
		Metrics:  metrics,
		Health:   healthServer,
		Timeout:  cfg.DigestTimeout,
		Logger:   logger,
	}, nil
}

// createHTTPClient creates the feed HTTP client with timeouts and connection
// pooling. TLS 1.2+ is enforced.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// runCronWorker schedules the job and blocks until ctx is canceled. A run
// still in progress at shutdown is awaited.
func runCronWorker(ctx context.Context, logger *slog.Logger, job *workerPkg.Job,
	cfg *workerPkg.WorkerConfig, healthServer *workerPkg.HealthServer) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	_, err = c.AddFunc(cfg.CronSchedule, func() {
		_ = job.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", loc.String()))

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("worker stopping")
	<-c.Stop().Done()
	return nil
}
