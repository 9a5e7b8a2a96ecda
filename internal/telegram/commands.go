package telegram

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"validator_stats_bot/internal/logging"
	"validator_stats_bot/internal/render"
)

type command string

const (
	commandValidator command = "validator"
	commandTop10     command = "top10"
	commandEpoch     command = "epoch"
	commandStart     command = "start"
	commandHelp      command = "help"
)

type commandsSetter interface {
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

// SetCommands registers the command menu shown by Telegram clients. Failure
// is logged and reported as false; the bot keeps running without a menu.
func SetCommands(ctx context.Context, api commandsSetter, logger *logrus.Entry) bool {
	if logger == nil {
		logger = logging.Logger()
	}

	commands := make([]models.BotCommand, 0, len(render.Commands))
	for _, cmd := range render.Commands {
		commands = append(commands, models.BotCommand{
			Command:     cmd.Name,
			Description: cmd.Description,
		})
	}

	ok, err := api.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands})
	if err != nil || !ok {
		entry := logger.WithField("event", "telegram_commands_menu")
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Warn("bot started without commands menu")
		return false
	}

	logger.WithFields(logging.Fields{
		"event":    "telegram_commands_menu",
		"commands": len(commands),
	}).Info("commands menu registered")

	return true
}

// parseCommand splits "/name@bot arg1 arg2" into the lower-cased command name
// and its whitespace-separated arguments.
func parseCommand(text string) (command, []string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}

	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return "", nil, false
	}

	return command(strings.ToLower(name)), fields[1:], true
}
