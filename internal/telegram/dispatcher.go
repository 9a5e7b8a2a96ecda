package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"validator_stats_bot/internal/domain"
	"validator_stats_bot/internal/logging"
	"validator_stats_bot/internal/metrics"
	"validator_stats_bot/internal/render"
	"validator_stats_bot/internal/stats"
)

// API is the subset of the Telegram Bot API the dispatcher replies through.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// StatsFetcher loads statistics from the upstream API.
type StatsFetcher interface {
	ValidatorStats(ctx context.Context, address string) (domain.ValidatorStats, error)
	CurrentEpochStats(ctx context.Context) (domain.EpochStats, error)
	TopValidators(ctx context.Context) (domain.TopValidators, error)
}

// ErrDraining is returned by Drain when it is called twice.
var ErrDraining = errors.New("dispatcher is already draining")

// Dispatcher maps commands and callback queries to their handlers. It keeps no
// per-update state; the only bookkeeping is the in-flight count used to drain
// on shutdown.
type Dispatcher struct {
	fetcher StatsFetcher
	logger  *logrus.Entry

	mu       sync.Mutex
	draining bool
	inflight sync.WaitGroup
}

// NewDispatcher constructs a Dispatcher backed by fetcher.
func NewDispatcher(fetcher StatsFetcher, logger *logrus.Entry) *Dispatcher {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Dispatcher{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Handler adapts the dispatcher to the SDK's handler signature.
func (d *Dispatcher) Handler() bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		d.HandleUpdate(ctx, b, update)
	}
}

// HandleUpdate processes one update. Once started, a handler runs to
// completion even if ctx is canceled by shutdown.
func (d *Dispatcher) HandleUpdate(ctx context.Context, api API, update *models.Update) {
	if update == nil {
		return
	}

	meta := extractUpdateMeta(update)

	d.mu.Lock()
	if d.draining {
		d.mu.Unlock()
		d.logger.WithFields(logging.Fields{
			"event":       "telegram_update_dropped",
			"update_type": meta.updateType,
		}).Warn("dropping update received during shutdown")
		return
	}
	d.inflight.Add(1)
	d.mu.Unlock()
	defer d.inflight.Done()

	ctx = context.WithoutCancel(ctx)

	fields := logging.Fields{
		"event":       "telegram_update",
		"update_type": meta.updateType,
	}
	if meta.text != "" {
		fields["text"] = meta.text
	}
	if meta.userID != 0 {
		fields["user_id"] = meta.userID
	}
	if meta.chatID != 0 {
		fields["chat_id"] = meta.chatID
	}
	d.logger.WithFields(fields).Info("telegram update received")

	switch {
	case update.Message != nil:
		d.handleMessage(ctx, api, update.Message)
	case update.CallbackQuery != nil:
		d.handleCallback(ctx, api, update.CallbackQuery)
	}
}

// Drain stops accepting updates and waits for in-flight handlers to finish or
// for ctx to expire.
func (d *Dispatcher) Drain(ctx context.Context) error {
	d.mu.Lock()
	if d.draining {
		d.mu.Unlock()
		return ErrDraining
	}
	d.draining = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, api API, msg *models.Message) {
	cmd, args, ok := parseCommand(msg.Text)
	if !ok {
		return
	}

	logger := logging.WithContext(d.logger, logging.Context{
		UserID:  userID(msg.From),
		ChatID:  msg.Chat.ID,
		Command: string(cmd),
		Event:   "telegram_command",
	})

	var outcome string
	switch cmd {
	case commandValidator:
		outcome = d.handleValidator(ctx, api, msg, args, logger)
	case commandTop10:
		outcome = d.handleTop10(ctx, api, msg, logger)
	case commandEpoch:
		outcome = d.handleEpoch(ctx, api, msg, logger)
	case commandStart:
		outcome = d.handleStart(ctx, api, msg, logger)
	case commandHelp:
		outcome = d.handleHelp(ctx, api, msg, logger)
	default:
		logger.Debug("ignoring unknown command")
		return
	}

	metrics.ObserveCommand(string(cmd), outcome)
}

func (d *Dispatcher) handleValidator(ctx context.Context, api API, msg *models.Message, args []string, logger *logrus.Entry) string {
	d.typing(ctx, api, msg.Chat.ID, logger)

	var address string
	if len(args) > 0 {
		address = strings.ToLower(args[0])
	}
	if address == "" {
		d.reply(ctx, api, msg.Chat.ID, render.ValidationMessage(), logger)
		return metrics.OutcomeRejected
	}

	validator, err := d.fetcher.ValidatorStats(ctx, address)
	if err != nil {
		d.reply(ctx, api, msg.Chat.ID, render.Error(stats.ErrorMessage(err, logger)), logger)
		return metrics.OutcomeError
	}

	d.reply(ctx, api, msg.Chat.ID, render.ValidatorStats(validator), logger)
	return metrics.OutcomeOK
}

func (d *Dispatcher) handleTop10(ctx context.Context, api API, msg *models.Message, logger *logrus.Entry) string {
	d.typing(ctx, api, msg.Chat.ID, logger)

	top, err := d.fetcher.TopValidators(ctx)
	if err != nil {
		d.reply(ctx, api, msg.Chat.ID, render.Error(stats.ErrorMessage(err, logger)), logger)
		return metrics.OutcomeError
	}

	d.reply(ctx, api, msg.Chat.ID, render.TopValidators(top.Validators), logger, withReplyMarkup(&models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{
					Text:         render.RankCriteriaButton(),
					CallbackData: callbackData(callbackActionInfo, payloadRankScoreCriteria),
				},
			},
		},
	}))
	return metrics.OutcomeOK
}

func (d *Dispatcher) handleEpoch(ctx context.Context, api API, msg *models.Message, logger *logrus.Entry) string {
	d.typing(ctx, api, msg.Chat.ID, logger)

	epoch, err := d.fetcher.CurrentEpochStats(ctx)
	if err != nil {
		d.reply(ctx, api, msg.Chat.ID, render.Error(stats.ErrorMessage(err, logger)), logger)
		return metrics.OutcomeError
	}

	d.reply(ctx, api, msg.Chat.ID, render.EpochStats(epoch), logger)
	return metrics.OutcomeOK
}

func (d *Dispatcher) handleStart(ctx context.Context, api API, msg *models.Message, logger *logrus.Entry) string {
	d.typing(ctx, api, msg.Chat.ID, logger)
	d.reply(ctx, api, msg.Chat.ID, render.Start(displayName(msg.From)), logger, withoutLinkPreview())
	return metrics.OutcomeOK
}

func (d *Dispatcher) handleHelp(ctx context.Context, api API, msg *models.Message, logger *logrus.Entry) string {
	d.typing(ctx, api, msg.Chat.ID, logger)
	d.reply(ctx, api, msg.Chat.ID, render.Help(), logger)
	return metrics.OutcomeOK
}

func (d *Dispatcher) handleCallback(ctx context.Context, api API, query *models.CallbackQuery) {
	action, payload := parseCallbackData(query.Data)

	logger := logging.WithContext(d.logger, logging.Context{
		UserID: query.From.ID,
		ChatID: messageChatID(query.Message),
		Event:  "telegram_callback",
	}).WithFields(logging.Fields{
		"action":  string(action),
		"payload": payload,
	})

	switch action {
	case callbackActionInfo:
		metrics.ObserveCallback(string(action), d.handleInfoCallback(ctx, api, query, payload, logger))
	default:
		logger.Error("no handler found for callback action")
		metrics.ObserveCallback("unknown", metrics.OutcomeIgnored)
	}
}

func (d *Dispatcher) handleInfoCallback(ctx context.Context, api API, query *models.CallbackQuery, payload string, logger *logrus.Entry) string {
	switch payload {
	case payloadRankScoreCriteria:
		if _, err := api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: query.ID,
			Text:            render.RankCriteriaText(),
			ShowAlert:       true,
		}); err != nil {
			logger.WithError(err).Error("failed to answer callback query")
			return metrics.OutcomeError
		}
		return metrics.OutcomeOK
	default:
		logger.Debug("ignoring unknown info payload")
		return metrics.OutcomeIgnored
	}
}

type replyOption func(*bot.SendMessageParams)

func withReplyMarkup(markup models.ReplyMarkup) replyOption {
	return func(params *bot.SendMessageParams) {
		params.ReplyMarkup = markup
	}
}

func withoutLinkPreview() replyOption {
	disabled := true
	return func(params *bot.SendMessageParams) {
		params.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: &disabled}
	}
}

func (d *Dispatcher) reply(ctx context.Context, api API, chatID int64, text string, logger *logrus.Entry, opts ...replyOption) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	}
	for _, opt := range opts {
		opt(params)
	}

	if _, err := api.SendMessage(ctx, params); err != nil {
		logger.WithError(err).Error("failed to send reply")
	}
}

func (d *Dispatcher) typing(ctx context.Context, api API, chatID int64, logger *logrus.Entry) {
	if _, err := api.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	}); err != nil {
		logger.WithError(err).Debug("failed to send typing action")
	}
}

// displayName prefers the first name, then the username, then the numeric id.
func displayName(user *models.User) string {
	switch {
	case user == nil:
		return ""
	case strings.TrimSpace(user.FirstName) != "":
		return user.FirstName
	case strings.TrimSpace(user.Username) != "":
		return user.Username
	case user.ID != 0:
		return strconv.FormatInt(user.ID, 10)
	default:
		return ""
	}
}
