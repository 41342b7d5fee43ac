// Package notifier delivers digests to chat webhooks. Slack and Discord
// notifiers implement notify.Channel; both rate limit their requests, retry
// server errors and honor retry_after on 429 responses.
package notifier

import "textdigest/internal/usecase/notify"

var (
	_ notify.Channel = (*SlackNotifier)(nil)
	_ notify.Channel = (*DiscordNotifier)(nil)
)
