package config

import (
	"fmt"
	"strings"
)

const redactedSuffix = "...redacted"

// FormatRedacted renders the resolved configuration with secrets masked so it
// can be printed by -config-only or logged at startup.
func FormatRedacted(cfg Config) string {
	lines := []string{
		fmt.Sprintf("node_env: %s", cfg.NodeEnv),
		fmt.Sprintf("mode: %s", cfg.Mode()),
		fmt.Sprintf("log_level: %s", cfg.LogLevel),
		fmt.Sprintf("bot_token: %s", maskSecret(cfg.BotToken)),
		fmt.Sprintf("validator_stats_api: %s", cfg.ValidatorStatsAPI),
		fmt.Sprintf("current_epoch_stats_api: %s", cfg.CurrentEpochStatsAPI),
		fmt.Sprintf("top_validators_api: %s", cfg.TopValidatorsAPI),
		fmt.Sprintf("upstream_timeout: %s", cfg.UpstreamTimeout),
	}

	if cfg.Mode() == ModeWebhook {
		lines = append(lines,
			fmt.Sprintf("webhook_url: %s", cfg.WebhookURL),
			fmt.Sprintf("webhook_path: %s", cfg.WebhookPath),
			fmt.Sprintf("secret_token: %s", maskSecret(cfg.SecretToken)),
			fmt.Sprintf("port: %d", cfg.Port),
		)
	}

	return strings.Join(lines, "\n")
}

// maskSecret keeps a short prefix for operators to recognise which token is
// loaded. Values of eight characters or fewer are hidden entirely.
func maskSecret(value string) string {
	if value == "" {
		return "(unset)"
	}
	if len(value) <= 8 {
		return "redacted"
	}
	return value[:4] + redactedSuffix
}
