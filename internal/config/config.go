// Package config defines the configuration contract and handles loading and validating environment configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Canonical environment variable keys.
	KeyBotToken             = "BOT_TOKEN"
	KeySecretToken          = "SECRET_TOKEN"
	KeyWebhookURL           = "WEBHOOK_URL"
	KeyWebhookPath          = "WEBHOOK_PATH"
	KeyPort                 = "PORT"
	KeyNodeEnv              = "NODE_ENV"
	KeyLogLevel             = "LOG_LEVEL"
	KeyValidatorStatsAPI    = "VALIDATOR_STATS_API"
	KeyCurrentEpochStatsAPI = "CURRENT_EPOCH_STATS_API"
	KeyTopValidatorsAPI     = "TOP_VALIDATORS_API"
	KeyUpstreamTimeout      = "UPSTREAM_TIMEOUT"

	// Well-known environment values. Anything other than production runs in
	// long-polling mode.
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// Defaults for optional settings.
	DefaultNodeEnv         = EnvDevelopment
	DefaultLogLevel        = "info"
	DefaultPort            = 8080
	DefaultUpstreamTimeout = 30 * time.Second
)

// Mode selects how updates are delivered by Telegram.
type Mode int

const (
	ModePolling Mode = iota
	ModeWebhook
)

func (m Mode) String() string {
	switch m {
	case ModeWebhook:
		return "webhook"
	default:
		return "polling"
	}
}

// VarSpec describes a single configuration key.
type VarSpec struct {
	Key         string // environment variable name
	Example     string // human-friendly sample value
	Required    bool   // whether the bot must refuse to start without this value
	Default     string // default when unset (empty when required)
	Description string // what the variable controls
	Notes       string // extra guidance or policies
}

// Contract enumerates the authoritative configuration keys for the bot.
// .env loading is skipped when NODE_ENV=production; production must rely on
// environment variables supplied by the runtime.
var Contract = []VarSpec{
	{
		Key:         KeyBotToken,
		Example:     "123:ABC",
		Required:    true,
		Description: "Telegram Bot Token issued by BotFather.",
	},
	{
		Key:         KeyNodeEnv,
		Example:     EnvDevelopment + " / " + EnvProduction,
		Default:     DefaultNodeEnv,
		Description: "Runtime environment; selects webhook (production) or long polling (anything else).",
		Notes:       ".env files are read unless NODE_ENV=" + EnvProduction + ".",
	},
	{
		Key:         KeyLogLevel,
		Example:     DefaultLogLevel,
		Default:     DefaultLogLevel,
		Description: "Overrides default log level.",
	},
	{
		Key:         KeyValidatorStatsAPI,
		Example:     "https://api.example.org/validator",
		Required:    true,
		Description: "Base URL for per-validator stats; the address is appended as a path segment.",
	},
	{
		Key:         KeyCurrentEpochStatsAPI,
		Example:     "https://api.example.org/epoch/current",
		Required:    true,
		Description: "URL returning the current epoch stats.",
	},
	{
		Key:         KeyTopValidatorsAPI,
		Example:     "https://api.example.org/validators/top",
		Required:    true,
		Description: "URL returning the ranked validators; startEpoch/endEpoch are appended.",
	},
	{
		Key:         KeyUpstreamTimeout,
		Example:     DefaultUpstreamTimeout.String(),
		Default:     DefaultUpstreamTimeout.String(),
		Description: "Timeout for each upstream stats request.",
	},
	{
		Key:         KeySecretToken,
		Example:     "s3cr3t",
		Description: "Webhook secret sent by Telegram in x-telegram-bot-api-secret-token.",
		Notes:       "Required when NODE_ENV=" + EnvProduction + ".",
	},
	{
		Key:         KeyWebhookURL,
		Example:     "https://bot.example.org",
		Description: "Public base URL Telegram posts updates to.",
		Notes:       "Required when NODE_ENV=" + EnvProduction + ".",
	},
	{
		Key:         KeyWebhookPath,
		Example:     "telegram-webhook",
		Description: "Path segment of the webhook route.",
		Notes:       "Required when NODE_ENV=" + EnvProduction + ".",
	},
	{
		Key:         KeyPort,
		Example:     strconv.Itoa(DefaultPort),
		Default:     strconv.Itoa(DefaultPort),
		Description: "HTTP port for the webhook, health and metrics routes.",
	},
}

// Config mirrors resolved configuration values after loading.
type Config struct {
	BotToken             string
	SecretToken          string
	WebhookURL           string
	WebhookPath          string
	Port                 int
	NodeEnv              string
	LogLevel             string
	ValidatorStatsAPI    string
	CurrentEpochStatsAPI string
	TopValidatorsAPI     string
	UpstreamTimeout      time.Duration
}

// Load resolves configuration from the environment (with optional dotenv outside production).
func Load() (Config, error) {
	nodeEnv, err := resolveNodeEnv()
	if err != nil {
		return Config{}, err
	}

	if err := loadDotEnv(nodeEnv); err != nil {
		return Config{}, err
	}

	cfg := Config{
		NodeEnv:              firstNonEmpty(normalizeEnv(os.Getenv(KeyNodeEnv)), nodeEnv),
		BotToken:             strings.TrimSpace(os.Getenv(KeyBotToken)),
		SecretToken:          strings.TrimSpace(os.Getenv(KeySecretToken)),
		WebhookURL:           strings.TrimRight(strings.TrimSpace(os.Getenv(KeyWebhookURL)), "/"),
		WebhookPath:          strings.Trim(strings.TrimSpace(os.Getenv(KeyWebhookPath)), "/"),
		LogLevel:             firstNonEmpty(strings.TrimSpace(os.Getenv(KeyLogLevel)), DefaultLogLevel),
		ValidatorStatsAPI:    strings.TrimRight(strings.TrimSpace(os.Getenv(KeyValidatorStatsAPI)), "/"),
		CurrentEpochStatsAPI: strings.TrimSpace(os.Getenv(KeyCurrentEpochStatsAPI)),
		TopValidatorsAPI:     strings.TrimSpace(os.Getenv(KeyTopValidatorsAPI)),
		Port:                 DefaultPort,
		UpstreamTimeout:      DefaultUpstreamTimeout,
	}

	missing := make([]string, 0)

	if cfg.BotToken == "" {
		missing = append(missing, KeyBotToken)
	}
	if cfg.ValidatorStatsAPI == "" {
		missing = append(missing, KeyValidatorStatsAPI)
	}
	if cfg.CurrentEpochStatsAPI == "" {
		missing = append(missing, KeyCurrentEpochStatsAPI)
	}
	if cfg.TopValidatorsAPI == "" {
		missing = append(missing, KeyTopValidatorsAPI)
	}

	if cfg.Mode() == ModeWebhook {
		if cfg.SecretToken == "" {
			missing = append(missing, KeySecretToken)
		}
		if cfg.WebhookURL == "" {
			missing = append(missing, KeyWebhookURL)
		}
		if cfg.WebhookPath == "" {
			missing = append(missing, KeyWebhookPath)
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", "))
	}

	for key, raw := range map[string]string{
		KeyValidatorStatsAPI:    cfg.ValidatorStatsAPI,
		KeyCurrentEpochStatsAPI: cfg.CurrentEpochStatsAPI,
		KeyTopValidatorsAPI:     cfg.TopValidatorsAPI,
	} {
		if err := validateHTTPURL(key, raw); err != nil {
			return Config{}, err
		}
	}

	if cfg.Mode() == ModeWebhook {
		if err := validateHTTPURL(KeyWebhookURL, cfg.WebhookURL); err != nil {
			return Config{}, err
		}
	}

	portRaw := strings.TrimSpace(os.Getenv(KeyPort))
	if portRaw != "" {
		port, parseErr := strconv.Atoi(portRaw)
		if parseErr != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", KeyPort, parseErr)
		}
		if port <= 0 {
			return Config{}, fmt.Errorf("%s must be greater than 0", KeyPort)
		}
		cfg.Port = port
	}

	timeoutRaw := strings.TrimSpace(os.Getenv(KeyUpstreamTimeout))
	if timeoutRaw != "" {
		timeout, parseErr := time.ParseDuration(timeoutRaw)
		if parseErr != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", KeyUpstreamTimeout, parseErr)
		}
		if timeout <= 0 {
			return Config{}, fmt.Errorf("%s must be greater than 0", KeyUpstreamTimeout)
		}
		cfg.UpstreamTimeout = timeout
	}

	return cfg, nil
}

// IsProduction reports if NODE_ENV is production.
func (c Config) IsProduction() bool {
	return c.NodeEnv == EnvProduction
}

// Mode resolves the update delivery transport.
func (c Config) Mode() Mode {
	if c.IsProduction() {
		return ModeWebhook
	}
	return ModePolling
}

// WebhookEndpoint is the full URL registered with Telegram in webhook mode.
func (c Config) WebhookEndpoint() string {
	return c.WebhookURL + "/" + c.WebhookPath
}

func resolveNodeEnv() (string, error) {
	if explicit := normalizeEnv(os.Getenv(KeyNodeEnv)); explicit != "" {
		return explicit, nil
	}

	dotEnvValues, err := godotenv.Read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultNodeEnv, nil
		}
		return "", fmt.Errorf("read .env: %w", err)
	}

	if envFromFile := normalizeEnv(dotEnvValues[KeyNodeEnv]); envFromFile != "" {
		return envFromFile, nil
	}

	return DefaultNodeEnv, nil
}

func loadDotEnv(nodeEnv string) error {
	if nodeEnv == EnvProduction {
		return nil
	}

	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}

func validateHTTPURL(key, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https", key)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid %s: host is required", key)
	}
	return nil
}

func normalizeEnv(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val)
		}
	}
	return ""
}
