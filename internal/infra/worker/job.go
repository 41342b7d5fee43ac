package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"textdigest/internal/config"
	"textdigest/internal/infra/provider"
	"textdigest/internal/observability/logging"
	"textdigest/internal/usecase/digest"
)

// SourceLoader returns the sources of the next run.
type SourceLoader func() ([]digest.TextSource, error)

// FileSourceLoader reads the YAML sources file at path on every call, so edits
// apply to the next run without a restart.
func FileSourceLoader(path string, factory *provider.Factory) SourceLoader {
	return func() ([]digest.TextSource, error) {
		file, err := config.LoadSources(path)
		if err != nil {
			return nil, err
		}
		return factory.BuildAll(file.Sources)
	}
}

// ReportNotifier delivers the digests of a finished run.
type ReportNotifier interface {
	NotifyReport(ctx context.Context, report *digest.Report) error
	Flush(ctx context.Context) error
}

// Job runs one scheduled digest.
type Job struct {
	Digest   *digest.Service
	Sources  SourceLoader
	Notifier ReportNotifier // optional
	Metrics  *WorkerMetrics
	Health   *HealthServer // optional
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Run executes a digest of every configured source, hands the report to the
// notifier and waits for the deliveries, all within Timeout.
func (j *Job) Run(ctx context.Context) error {
	startTime := time.Now()
	j.Metrics.RecordJobRun("started")

	ctx = logging.WithRunID(ctx, j.Logger)
	logger := logging.FromContext(ctx)
	logger.Info("digest started")

	ctx, cancel := context.WithTimeout(ctx, j.Timeout)
	defer cancel()

	report, err := j.run(ctx)
	j.Metrics.RecordJobDuration(time.Since(startTime).Seconds())

	summary := RunSummary{RunID: logging.RunIDFromContext(ctx), FinishedAt: time.Now(), Failed: err != nil}
	if report != nil {
		summary.Documents = report.Stats.Documents
	}
	if j.Health != nil {
		j.Health.RecordRun(summary)
	}

	if err != nil {
		logger.Error("digest failed", slog.Any("error", err))
		j.Metrics.RecordJobRun("failure")
		return err
	}

	j.Metrics.RecordJobRun("success")
	j.Metrics.RecordDocuments(report.Stats.Documents)
	j.Metrics.RecordLastSuccess()

	logger.Info("digest completed",
		slog.Int("sources", report.Stats.Sources),
		slog.Int("source_errors", report.Stats.SourceErrors),
		slog.Int("documents", report.Stats.Documents),
		slog.Int("summarized", report.Stats.Summarized),
		slog.Int("empty", report.Stats.Empty),
		slog.Int("failed", report.Stats.Failed),
		slog.Duration("duration", report.Stats.Duration))
	return nil
}

func (j *Job) run(ctx context.Context) (*digest.Report, error) {
	sources, err := j.Sources()
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	report, err := j.Digest.Run(ctx, sources...)
	if err != nil {
		// A run where every source failed still reports, but nothing to send.
		return report, err
	}
	if j.Notifier == nil {
		return report, nil
	}
	if err := j.Notifier.NotifyReport(ctx, report); err != nil {
		return report, fmt.Errorf("notify: %w", err)
	}
	if err := j.Notifier.Flush(ctx); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return report, fmt.Errorf("notify: %w", err)
		}
		logging.FromContext(ctx).Warn("notifications still in flight at digest timeout")
	}
	return report, nil
}
