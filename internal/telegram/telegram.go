// Package telegram hosts the Telegram client, routing, and handlers.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"validator_stats_bot/internal/config"
	"validator_stats_bot/internal/logging"
)

type botRunner interface {
	commandsSetter

	Start(ctx context.Context)
	StartWebhook(ctx context.Context)
	WebhookHandler() http.HandlerFunc
	SetWebhook(ctx context.Context, params *bot.SetWebhookParams) (bool, error)
	DeleteWebhook(ctx context.Context, params *bot.DeleteWebhookParams) (bool, error)
}

var (
	defaultAllowedUpdates = bot.AllowedUpdates{
		"message",
		"callback_query",
	}

	createBot = func(token string, options ...bot.Option) (botRunner, error) {
		b, err := bot.New(token, options...)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
)

// Client wraps the Telegram bot instance and logging dependencies.
type Client struct {
	bot         botRunner
	logger      *logrus.Entry
	mode        config.Mode
	webhookURL  string
	secretToken string
}

// NewClient initializes the Telegram bot and routes every update to the
// dispatcher. In webhook mode the SDK also verifies the secret token header.
func NewClient(cfg config.Config, logger *logrus.Entry, dispatcher *Dispatcher) (*Client, error) {
	if strings.TrimSpace(cfg.BotToken) == "" {
		return nil, errors.New("telegram token is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if logger == nil {
		logger = logging.Logger()
	}

	options := []bot.Option{
		bot.WithAllowedUpdates(defaultAllowedUpdates),
		bot.WithDefaultHandler(dispatcher.Handler()),
		bot.WithErrorsHandler(errorHandler(logger)),
	}

	mode := cfg.Mode()
	if mode == config.ModeWebhook {
		options = append(options, bot.WithWebhookSecretToken(cfg.SecretToken))
	}

	tgBot, err := createBot(cfg.BotToken, options...)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot client: %w", err)
	}

	client := &Client{
		bot:    tgBot,
		logger: logger,
		mode:   mode,
	}
	if mode == config.ModeWebhook {
		client.webhookURL = cfg.WebhookEndpoint()
		client.secretToken = cfg.SecretToken
	}

	return client, nil
}

// Mode reports the delivery transport the client was built for.
func (c *Client) Mode() config.Mode {
	return c.mode
}

// Run receives updates with the configured transport until ctx is canceled.
func (c *Client) Run(ctx context.Context) error {
	if c.mode == config.ModeWebhook {
		return c.StartWebhook(ctx)
	}

	c.Start(ctx)
	return nil
}

// Start begins receiving updates via long polling until the context is canceled.
// Any webhook left registered from a previous deployment is removed first,
// since Telegram refuses getUpdates while one is set.
func (c *Client) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := c.bot.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		c.logger.WithField("event", "telegram_delete_webhook_error").WithError(err).Warn("could not remove registered webhook")
	}

	SetCommands(ctx, c.bot, c.logger)

	c.logger.WithFields(logging.Fields{
		"event":           "telegram_listen",
		"allowed_updates": defaultAllowedUpdates,
	}).Info("starting telegram long polling")

	c.bot.Start(ctx)

	c.logger.WithField("event", "telegram_stopped").Info("telegram polling stopped")
}

// StartWebhook registers the webhook with Telegram and processes updates
// posted to WebhookHandler until the context is canceled.
func (c *Client) StartWebhook(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.webhookURL == "" {
		return errors.New("webhook url is not configured")
	}

	SetCommands(ctx, c.bot, c.logger)

	if _, err := c.bot.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:            c.webhookURL,
		SecretToken:    c.secretToken,
		AllowedUpdates: defaultAllowedUpdates,
	}); err != nil {
		return fmt.Errorf("set telegram webhook: %w", err)
	}

	c.logger.WithFields(logging.Fields{
		"event":       "telegram_webhook",
		"webhook_url": c.webhookURL,
	}).Info("starting telegram webhook processing")

	c.bot.StartWebhook(ctx)

	c.logger.WithField("event", "telegram_stopped").Info("telegram webhook processing stopped")
	return nil
}

// WebhookHandler decodes Telegram updates posted to the webhook route.
func (c *Client) WebhookHandler() http.Handler {
	return c.bot.WebhookHandler()
}

type updateMeta struct {
	userID     int64
	chatID     int64
	text       string
	updateType string
}

func extractUpdateMeta(update *models.Update) updateMeta {
	switch {
	case update.Message != nil:
		return updateMeta{
			userID:     userID(update.Message.From),
			chatID:     chatID(&update.Message.Chat),
			text:       strings.TrimSpace(update.Message.Text),
			updateType: "message",
		}
	case update.CallbackQuery != nil:
		return updateMeta{
			userID:     userID(&update.CallbackQuery.From),
			chatID:     messageChatID(update.CallbackQuery.Message),
			text:       strings.TrimSpace(update.CallbackQuery.Data),
			updateType: "callback_query",
		}
	default:
		return updateMeta{updateType: "unknown"}
	}
}

func errorHandler(logger *logrus.Entry) bot.ErrorsHandler {
	if logger == nil {
		logger = logging.Logger()
	}

	return func(err error) {
		if err == nil {
			return
		}

		logger.WithField("event", "telegram_error").WithError(err).Error("telegram transport error")
	}
}

func userID(user *models.User) int64 {
	if user == nil {
		return 0
	}

	return user.ID
}

func chatID(chat *models.Chat) int64 {
	if chat == nil {
		return 0
	}

	return chat.ID
}

func messageChatID(msg models.MaybeInaccessibleMessage) int64 {
	switch msg.Type {
	case models.MaybeInaccessibleMessageTypeMessage:
		if msg.Message == nil {
			return 0
		}
		return chatID(&msg.Message.Chat)
	case models.MaybeInaccessibleMessageTypeInaccessibleMessage:
		if msg.InaccessibleMessage == nil {
			return 0
		}
		return chatID(&msg.InaccessibleMessage.Chat)
	default:
		return 0
	}
}
