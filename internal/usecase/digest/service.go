package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"textdigest/internal/domain/entity"
	"textdigest/internal/observability/logging"
	"textdigest/internal/observability/metrics"
	"textdigest/internal/observability/tracing"
	"textdigest/internal/pkg/config"
	"textdigest/internal/summary"
)

// TextSource produces the documents of one configured input.
type TextSource interface {
	// Name is a human-readable label used in logs and reports.
	Name() string

	// Kind names the provider, used as a metrics label.
	Kind() entity.SourceKind

	// Documents returns the documents of the source in their natural order.
	Documents(ctx context.Context) ([]entity.Document, error)
}

// Summarizer produces an extractive summary keeping ratio of the sentences of text.
type Summarizer interface {
	Summarize(ctx context.Context, text string, ratio float64) (summary.Summary, error)
}

// Observer is notified about run progress. Methods may be called concurrently.
type Observer interface {
	// DocumentsFound is called once with the number of documents to summarize.
	DocumentsFound(n int)

	// DocumentDone is called after each document has been summarized.
	DocumentDone(d entity.Digest)
}

// Config holds digest run settings.
type Config struct {
	// Ratio is the share of sentences kept for sources without their own ratio.
	Ratio float64

	// Parallelism bounds concurrent source fetches and concurrent summaries.
	Parallelism int
}

// DefaultConfig returns a ratio of 0.1 and a parallelism of 4.
func DefaultConfig() Config {
	return Config{
		Ratio:       0.1,
		Parallelism: 4,
	}
}

// Validate checks the ratio and parallelism.
func (c Config) Validate() error {
	if err := entity.ValidateRatio(c.Ratio); err != nil {
		return fmt.Errorf("digest ratio: %w", err)
	}
	if err := config.ValidateIntRange(c.Parallelism, 1, 64); err != nil {
		return fmt.Errorf("digest parallelism: %w", err)
	}
	return nil
}

// SourceFailure records a source that could not produce documents.
type SourceFailure struct {
	Source string `json:"source"`
	Err    error  `json:"-"`
}

// Stats contains counts about a digest run.
type Stats struct {
	Sources      int           `json:"sources"`
	SourceErrors int           `json:"source_errors"`
	Documents    int           `json:"documents"`
	Summarized   int           `json:"summarized"`
	Empty        int           `json:"empty"`
	Failed       int           `json:"failed"`
	Duration     time.Duration `json:"duration"`
}

// Report is the result of a digest run. Digests follow source order, then
// document order within each source.
type Report struct {
	RunID    string          `json:"run_id,omitempty"`
	Digests  []entity.Digest `json:"digests"`
	Failures []SourceFailure `json:"-"`
	Stats    Stats           `json:"stats"`
}

// Service runs digests.
type Service struct {
	Summarizer Summarizer
	Observer   Observer

	config Config
	now    func() time.Time
}

// NewService creates a digest Service. cfg is used as given; callers validate it.
func NewService(summarizer Summarizer, cfg Config) *Service {
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	return &Service{
		Summarizer: summarizer,
		config:     cfg,
		now:        time.Now,
	}
}

type ratioOverride interface {
	Ratio() float64
}

type job struct {
	doc    entity.Document
	ratio  float64
	source string
}

// Run fetches every source and summarizes every document.
//
// A failing source is logged, counted and listed in Report.Failures; the
// remaining sources still run. When every source fails Run returns the report
// together with an error wrapping ErrAllSourcesFailed. A document that cannot
// be summarized is logged, counted as failed and left out of the report.
// Cancellation of ctx aborts the run.
func (s *Service) Run(ctx context.Context, sources ...TextSource) (*Report, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	start := s.now()
	ctx, span := tracing.StartSpan(ctx, "digest.run", attribute.Int("sources", len(sources)))
	defer span.End()
	logger := logging.FromContext(ctx)

	report := &Report{
		RunID: logging.RunIDFromContext(ctx),
		Stats: Stats{Sources: len(sources)},
	}

	jobs, err := s.fetchAll(ctx, sources, report)
	if err != nil {
		tracing.RecordError(span, err)
		report.Stats.Duration = s.now().Sub(start)
		metrics.RecordDigestRun(report.Stats.Duration, false)
		return report, err
	}
	report.Stats.Documents = len(jobs)

	if s.Observer != nil {
		s.Observer.DocumentsFound(len(jobs))
	}

	if err := s.summarizeAll(ctx, jobs, report); err != nil {
		tracing.RecordError(span, err)
		report.Stats.Duration = s.now().Sub(start)
		metrics.RecordDigestRun(report.Stats.Duration, false)
		return report, err
	}

	report.Stats.Duration = s.now().Sub(start)
	logger.Info("digest run completed",
		slog.Int("sources", report.Stats.Sources),
		slog.Int("source_errors", report.Stats.SourceErrors),
		slog.Int("documents", report.Stats.Documents),
		slog.Int("summarized", report.Stats.Summarized),
		slog.Int("empty", report.Stats.Empty),
		slog.Int("failed", report.Stats.Failed),
		slog.Duration("duration", report.Stats.Duration),
	)

	if report.Stats.SourceErrors == len(sources) {
		errs := make([]error, 0, len(report.Failures))
		for _, f := range report.Failures {
			errs = append(errs, f.Err)
		}
		err := fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(errs...))
		tracing.RecordError(span, err)
		metrics.RecordDigestRun(report.Stats.Duration, false)
		return report, err
	}

	metrics.RecordDigestRun(report.Stats.Duration, true)
	return report, nil
}

// fetchAll fetches sources concurrently and flattens their documents into
// jobs, keeping source order.
func (s *Service) fetchAll(ctx context.Context, sources []TextSource, report *Report) ([]job, error) {
	batches := make([][]entity.Document, len(sources))
	errs := make([]error, len(sources))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Parallelism)
	for i, src := range sources {
		eg.Go(func() error {
			docs, err := s.fetchSource(egCtx, src)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				errs[i] = err
				return nil
			}
			batches[i] = docs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var jobs []job
	for i, src := range sources {
		if errs[i] != nil {
			report.Stats.SourceErrors++
			report.Failures = append(report.Failures, SourceFailure{Source: src.Name(), Err: errs[i]})
			continue
		}
		ratio := s.config.Ratio
		if o, ok := src.(ratioOverride); ok && o.Ratio() > 0 {
			ratio = o.Ratio()
		}
		for _, doc := range batches[i] {
			jobs = append(jobs, job{doc: doc, ratio: ratio, source: src.Name()})
		}
	}
	return jobs, nil
}

func (s *Service) fetchSource(ctx context.Context, src TextSource) ([]entity.Document, error) {
	logger := logging.FromContext(ctx)
	kind := string(src.Kind())
	ctx, span := tracing.StartSpan(ctx, "digest.source",
		attribute.String("source", src.Name()),
		attribute.String("kind", kind))
	defer span.End()

	logger.Debug("Fetching documents", slog.String("source", src.Name()), slog.String("kind", kind))
	start := s.now()
	docs, err := src.Documents(ctx)
	duration := s.now().Sub(start)
	if err != nil {
		tracing.RecordError(span, err)
		if ctx.Err() == nil {
			metrics.RecordSourceError(kind, "fetch_failed")
			logger.Warn("failed to fetch source",
				slog.String("source", src.Name()),
				slog.String("kind", kind),
				slog.Any("error", err))
		}
		return nil, fmt.Errorf("%w %q: %w", ErrSourceFailed, src.Name(), err)
	}

	metrics.RecordSourceFetched(kind, len(docs), duration)
	span.SetAttributes(attribute.Int("documents", len(docs)))
	if len(docs) == 0 {
		logger.Info("source has no documents", slog.String("source", src.Name()))
	}
	return docs, nil
}

func (s *Service) summarizeAll(ctx context.Context, jobs []job, report *Report) error {
	digests := make([]entity.Digest, len(jobs))
	done := make([]bool, len(jobs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Parallelism)
	for i, j := range jobs {
		eg.Go(func() error {
			d, err := s.summarizeDocument(egCtx, j)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				metrics.RecordDigest("failed")
				logging.FromContext(ctx).Warn("summarization failed, skipping document",
					slog.String("source", j.source),
					slog.String("origin", j.doc.Origin),
					slog.Any("error", err))
				return nil
			}
			digests[i] = d
			done[i] = true
			if s.Observer != nil {
				s.Observer.DocumentDone(d)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	report.Digests = make([]entity.Digest, 0, len(jobs))
	for i, d := range digests {
		if !done[i] {
			report.Stats.Failed++
			continue
		}
		if d.Empty() {
			report.Stats.Empty++
		} else {
			report.Stats.Summarized++
		}
		report.Digests = append(report.Digests, d)
	}
	return nil
}

func (s *Service) summarizeDocument(ctx context.Context, j job) (entity.Digest, error) {
	ctx, span := tracing.StartSpan(ctx, "digest.document",
		attribute.String("source", j.source),
		attribute.String("origin", j.doc.Origin),
		attribute.Float64("ratio", j.ratio))
	defer span.End()

	logging.FromContext(ctx).Debug("Generating summary",
		slog.String("origin", j.doc.Origin),
		slog.String("title", j.doc.Title))

	sum, err := s.Summarizer.Summarize(ctx, j.doc.Text, j.ratio)
	if err != nil {
		tracing.RecordError(span, err)
		return entity.Digest{}, fmt.Errorf("%w %q: %w", ErrSummarizationFailed, j.doc.Origin, err)
	}

	d := entity.Digest{
		Document:          j.doc,
		Summary:           sum.String(),
		TotalSentences:    sum.Total,
		SelectedSentences: len(sum.Sentences),
		Ratio:             j.ratio,
		GeneratedAt:       s.now(),
	}
	status := "summarized"
	if d.Empty() {
		status = "empty"
	}
	metrics.RecordDigest(status)
	span.SetAttributes(
		attribute.Int("sentences.total", d.TotalSentences),
		attribute.Int("sentences.selected", d.SelectedSentences))
	return d, nil
}

// WithRatio wraps src so its documents are summarized at ratio instead of the
// run default. A zero ratio keeps the default.
func WithRatio(src TextSource, ratio float64) TextSource {
	return ratioSource{TextSource: src, ratio: ratio}
}

type ratioSource struct {
	TextSource
	ratio float64
}

func (r ratioSource) Ratio() float64 { return r.ratio }
