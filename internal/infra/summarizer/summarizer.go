// Package summarizer adapts the extractive summary core to the digest pipeline.
// It provides the word-frequency strategy and a lead-sentences baseline, both
// sharing the process-wide English language model, with Prometheus metrics and
// structured debug logging.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"textdigest/internal/nlp"
	"textdigest/internal/summary"
)

// Summarizer turns text into an extractive summary keeping ratio of its sentences.
type Summarizer interface {
	Summarize(ctx context.Context, text string, ratio float64) (summary.Summary, error)
}

// New returns the strategy named by cfg.Method.
func New(cfg Config) (Summarizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Method {
	case MethodLead:
		return NewLead()
	default:
		return NewFrequency(summary.Options{FoldCase: cfg.FoldCase})
	}
}

// Frequency ranks sentences by summed normalized word frequency.
type Frequency struct {
	model           *nlp.Model
	options         summary.Options
	metricsRecorder SummaryMetricsRecorder
}

// NewFrequency creates a frequency summarizer on the shared language model.
func NewFrequency(opts summary.Options) (*Frequency, error) {
	model, err := nlp.Default()
	if err != nil {
		return nil, fmt.Errorf("frequency summarizer: %w", err)
	}
	return &Frequency{
		model:           model,
		options:         opts,
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}, nil
}

// WithMetricsRecorder replaces the metrics recorder.
func (f *Frequency) WithMetricsRecorder(r SummaryMetricsRecorder) *Frequency {
	f.metricsRecorder = r
	return f
}

// Summarize implements Summarizer. Text without any scoring word yields an
// empty Summary and no error.
func (f *Frequency) Summarize(ctx context.Context, text string, ratio float64) (summary.Summary, error) {
	if err := ctx.Err(); err != nil {
		return summary.Summary{}, err
	}
	start := time.Now()

	slog.Debug("Parsing text", slog.Int("bytes", len(text)))
	doc := f.model.Parse(text)

	slog.Debug("Generating summary",
		slog.Int("sentences", len(doc.Sentences)),
		slog.Float64("ratio", ratio))
	s, err := summary.Extract(doc, ratio, f.options)
	f.metricsRecorder.RecordDuration(MethodFrequency, time.Since(start))

	if errors.Is(err, summary.ErrEmptyVocabulary) {
		slog.Debug("No scoring words in text", slog.Int("sentences", len(doc.Sentences)))
		f.metricsRecorder.RecordEmpty(MethodFrequency, "no_vocabulary")
		f.metricsRecorder.RecordSentences(MethodFrequency, s.Total, 0)
		return s, nil
	}
	if err != nil {
		return summary.Summary{}, err
	}

	if len(s.Sentences) == 0 {
		f.metricsRecorder.RecordEmpty(MethodFrequency, "ratio_too_small")
	}
	f.metricsRecorder.RecordSentences(MethodFrequency, s.Total, len(s.Sentences))
	return s, nil
}

// Lead keeps the first sentences of a document in reading order. It is the
// usual baseline extractive summaries are compared against.
type Lead struct {
	model           *nlp.Model
	metricsRecorder SummaryMetricsRecorder
}

// NewLead creates a lead summarizer on the shared language model.
func NewLead() (*Lead, error) {
	model, err := nlp.Default()
	if err != nil {
		return nil, fmt.Errorf("lead summarizer: %w", err)
	}
	return &Lead{
		model:           model,
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}, nil
}

// WithMetricsRecorder replaces the metrics recorder.
func (l *Lead) WithMetricsRecorder(r SummaryMetricsRecorder) *Lead {
	l.metricsRecorder = r
	return l
}

// Summarize implements Summarizer. Every kept sentence has score 0.
func (l *Lead) Summarize(ctx context.Context, text string, ratio float64) (summary.Summary, error) {
	if err := ctx.Err(); err != nil {
		return summary.Summary{}, err
	}
	start := time.Now()

	doc := l.model.Parse(text)
	n := summary.SelectLength(len(doc.Sentences), ratio)

	s := summary.Summary{
		Total:     len(doc.Sentences),
		Scored:    len(doc.Sentences),
		Requested: n,
		Sentences: make([]summary.ScoredSentence, 0, n),
	}
	for _, sent := range doc.Sentences[:n] {
		s.Sentences = append(s.Sentences, summary.ScoredSentence{Index: sent.Index, Text: sent.Text})
	}

	l.metricsRecorder.RecordDuration(MethodLead, time.Since(start))
	if n == 0 {
		l.metricsRecorder.RecordEmpty(MethodLead, "ratio_too_small")
	}
	l.metricsRecorder.RecordSentences(MethodLead, s.Total, n)
	return s, nil
}
