package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"textdigest/internal/domain/entity"
	"textdigest/internal/utils/text"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	// Enabled indicates whether Discord notifications are enabled
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration
}

// DiscordNotifier sends digests to Discord via webhook.
type DiscordNotifier struct {
	config  DiscordConfig
	webhook *webhook
}

// NewDiscordNotifier creates a DiscordNotifier limited to 0.5 requests per
// second with a burst of 3 (Discord allows 30 requests per minute).
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		config: config,
		webhook: &webhook{
			service:     "Discord",
			url:         config.WebhookURL,
			client:      &http.Client{Timeout: config.Timeout},
			rateLimiter: NewRateLimiter(0.5, 3),
			policy:      defaultRetryPolicy(),
		},
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url,omitempty"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp,omitempty"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	// Discord limits
	maxTitleLength       = 256
	maxDescriptionLength = 4096

	// Discord blue color (#5865F2)
	discordBlueColor = 5793266
)

// Name implements notify.Channel.
func (d *DiscordNotifier) Name() string { return "Discord" }

// IsEnabled implements notify.Channel.
func (d *DiscordNotifier) IsEnabled() bool { return d.config.Enabled && d.config.WebhookURL != "" }

// Send implements notify.Channel.
func (d *DiscordNotifier) Send(ctx context.Context, digest entity.Digest) error {
	return d.webhook.deliver(ctx, digest, d.buildEmbedPayload(digest))
}

func (d *DiscordNotifier) buildEmbedPayload(digest entity.Digest) DiscordWebhookPayload {
	title := digest.Document.Title
	if title == "" {
		title = digest.Document.Origin
	}
	description := digest.Summary
	if digest.Empty() {
		description = "*No summary: no sentence scored.*"
	}

	embed := DiscordEmbed{
		Title:       text.Truncate(title, maxTitleLength),
		Description: text.Truncate(description, maxDescriptionLength),
		Color:       discordBlueColor,
		Footer: DiscordEmbedFooter{
			Text: fmt.Sprintf("%d of %d sentences", digest.SelectedSentences, digest.TotalSentences),
		},
	}
	if isWebURL(digest.Document.Origin) {
		embed.URL = digest.Document.Origin
	}
	if !digest.Document.ReceivedAt.IsZero() {
		embed.Timestamp = digest.Document.ReceivedAt.Format(time.RFC3339)
	}

	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

// isWebURL reports whether origin is an http or https URL.
func isWebURL(origin string) bool {
	u, err := url.Parse(origin)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
