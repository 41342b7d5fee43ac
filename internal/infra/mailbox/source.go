package mailbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"textdigest/internal/domain/entity"
	"textdigest/internal/usecase/digest"
)

// Source is a digest.TextSource producing one document per recent message of
// an mbox file, oldest first.
type Source struct {
	name   string
	path   string
	window time.Duration
	now    func() time.Time
}

var _ digest.TextSource = (*Source)(nil)

// NewSource creates a mailbox source for the mbox file at path. A zero window
// keeps the messages received since the start of yesterday in local time; an
// empty name defaults to path.
func NewSource(name, path string, window time.Duration) *Source {
	if name == "" {
		name = path
	}
	return &Source{name: name, path: path, window: window, now: time.Now}
}

// Name implements digest.TextSource.
func (s *Source) Name() string { return s.name }

// Kind implements digest.TextSource.
func (s *Source) Kind() entity.SourceKind { return entity.SourceKindMailbox }

// Documents implements digest.TextSource. Messages without a parsable Date
// header, older than the window, or without a text body are skipped.
func (s *Source) Documents(ctx context.Context) ([]entity.Document, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMailboxUnreadable, err)
	}
	defer func() {
		_ = f.Close()
	}()

	raws, err := splitMbox(f)
	if err != nil {
		return nil, err
	}

	since := s.since()
	logger := slog.Default().With(slog.String("mailbox", s.name))
	logger.Debug("Reading mailbox",
		slog.Int("messages", len(raws)),
		slog.Time("since", since))

	var docs []entity.Document
	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := parseMessage(raw)
		if err != nil {
			logger.Warn("skipping unparsable message", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		if m.Date.IsZero() || m.Date.Before(since) {
			continue
		}
		if m.Text == "" {
			logger.Debug("skipping message without text body", slog.String("subject", m.Subject))
			continue
		}

		origin := s.path
		if m.ID != "" {
			origin = "mid:" + m.ID
		}
		title := m.Subject
		if title == "" {
			title = "(no subject)"
		}
		docs = append(docs, entity.Document{
			Title:      title,
			Origin:     origin,
			Text:       m.Text,
			ReceivedAt: m.Date,
		})
	}
	return docs, nil
}

// since returns the oldest accepted message date.
func (s *Source) since() time.Time {
	now := s.now()
	if s.window > 0 {
		return now.Add(-s.window)
	}
	y, m, d := now.Date()
	return time.Date(y, m, d-1, 0, 0, 0, 0, now.Location())
}
