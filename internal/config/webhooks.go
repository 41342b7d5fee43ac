package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	pkgconfig "textdigest/internal/pkg/config"
)

// WebhookConfig is the environment configuration of one chat webhook.
type WebhookConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// webhookRule describes the URLs a webhook service accepts.
type webhookRule struct {
	name       string
	envPrefix  string
	host       string
	pathPrefix string
}

var (
	slackRule   = webhookRule{name: "Slack", envPrefix: "SLACK", host: "hooks.slack.com", pathPrefix: "/services/"}
	discordRule = webhookRule{name: "Discord", envPrefix: "DISCORD", host: "discord.com", pathPrefix: "/api/webhooks/"}
)

// LoadSlackConfig loads SLACK_ENABLED, SLACK_WEBHOOK_URL and SLACK_TIMEOUT.
// An enabled channel with a missing or foreign URL is disabled with a warning.
func LoadSlackConfig(logger *slog.Logger) WebhookConfig {
	return loadWebhookConfig(logger, slackRule)
}

// LoadDiscordConfig loads DISCORD_ENABLED, DISCORD_WEBHOOK_URL and DISCORD_TIMEOUT.
// An enabled channel with a missing or foreign URL is disabled with a warning.
func LoadDiscordConfig(logger *slog.Logger) WebhookConfig {
	return loadWebhookConfig(logger, discordRule)
}

func loadWebhookConfig(logger *slog.Logger, rule webhookRule) WebhookConfig {
	enabled := pkgconfig.LoadEnvBool(rule.envPrefix+"_ENABLED", false)
	pkgconfig.LogFallback(logger, rule.envPrefix+"_ENABLED", enabled)
	if !enabled.Value.(bool) {
		return WebhookConfig{}
	}

	timeout := pkgconfig.LoadEnvDuration(rule.envPrefix+"_TIMEOUT", 30*time.Second, func(d time.Duration) error {
		return pkgconfig.ValidateDuration(d, time.Second, 5*time.Minute)
	})
	pkgconfig.LogFallback(logger, rule.envPrefix+"_TIMEOUT", timeout)

	webhookURL := pkgconfig.LoadEnvString(rule.envPrefix+"_WEBHOOK_URL", "")
	if err := rule.validate(webhookURL); err != nil {
		logger.Warn(rule.name+" webhook disabled", slog.Any("error", err))
		return WebhookConfig{}
	}

	return WebhookConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    timeout.Value.(time.Duration),
	}
}

// validate accepts only HTTPS URLs on the service's own host and path. The
// URL carries the webhook token, so it never appears in the error.
func (r webhookRule) validate(raw string) error {
	if raw == "" {
		return fmt.Errorf("%s_WEBHOOK_URL is empty", r.envPrefix)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s_WEBHOOK_URL is not a valid URL", r.envPrefix)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("%s_WEBHOOK_URL must use HTTPS", r.envPrefix)
	}
	if u.Host != r.host {
		return fmt.Errorf("%s_WEBHOOK_URL host %q is not %s", r.envPrefix, u.Host, r.host)
	}
	if !strings.HasPrefix(u.Path, r.pathPrefix) {
		return fmt.Errorf("%s_WEBHOOK_URL path must start with %s", r.envPrefix, r.pathPrefix)
	}
	return nil
}
