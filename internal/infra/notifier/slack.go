package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"textdigest/internal/domain/entity"
	"textdigest/internal/utils/text"
)

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	// Enabled indicates whether Slack notifications are enabled
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration
}

// SlackNotifier sends digests to Slack via Incoming Webhook.
type SlackNotifier struct {
	config  SlackConfig
	webhook *webhook
}

// NewSlackNotifier creates a SlackNotifier limited to 1 request per second,
// the Slack webhook limit.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config: config,
		webhook: &webhook{
			service:     "Slack",
			url:         config.WebhookURL,
			client:      &http.Client{Timeout: config.Timeout},
			rateLimiter: NewRateLimiter(1.0, 1),
			policy:      defaultRetryPolicy(),
		},
	}
}

// SlackWebhookPayload is a Block Kit message.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`               // "section", "context"
	Text     *SlackTextObject  `json:"text,omitempty"`     // Text content (for section)
	Elements []SlackTextObject `json:"elements,omitempty"` // Elements (for context)
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

// Slack Block Kit limits
const (
	maxSectionTextLength = 3000
	maxFallbackLength    = 150
)

// Name implements notify.Channel.
func (s *SlackNotifier) Name() string { return "Slack" }

// IsEnabled implements notify.Channel.
func (s *SlackNotifier) IsEnabled() bool { return s.config.Enabled && s.config.WebhookURL != "" }

// Send implements notify.Channel.
func (s *SlackNotifier) Send(ctx context.Context, d entity.Digest) error {
	return s.webhook.deliver(ctx, d, s.buildBlockKitPayload(d))
}

// buildBlockKitPayload renders the title (linked when the origin is a URL)
// and the summary in a section block, and the sentence counts in a context
// block.
func (s *SlackNotifier) buildBlockKitPayload(d entity.Digest) SlackWebhookPayload {
	title := d.Document.Title
	if title == "" {
		title = d.Document.Origin
	}

	heading := fmt.Sprintf("*%s*", title)
	if isWebURL(d.Document.Origin) {
		heading = fmt.Sprintf("*<%s|%s>*", d.Document.Origin, title)
	}
	summary := d.Summary
	if d.Empty() {
		summary = "_No summary: no sentence scored._"
	}

	contextText := fmt.Sprintf("%d of %d sentences • ratio %.2f", d.SelectedSentences, d.TotalSentences, d.Ratio)
	if !d.Document.ReceivedAt.IsZero() {
		contextText += " • " + d.Document.ReceivedAt.Format(time.RFC3339)
	}

	return SlackWebhookPayload{
		Text: text.Truncate(title, maxFallbackLength),
		Blocks: []SlackBlock{
			{
				Type: "section",
				Text: &SlackTextObject{
					Type: "mrkdwn",
					Text: text.Truncate(heading+"\n\n"+summary, maxSectionTextLength),
				},
			},
			{
				Type:     "context",
				Elements: []SlackTextObject{{Type: "mrkdwn", Text: contextText}},
			},
		},
	}
}
