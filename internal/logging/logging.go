// Package logging owns the process-wide logrus entry. Every line carries the
// service name, NODE_ENV and, once configuration is loaded, the delivery mode,
// so polling and webhook deployments of the same bot can be told apart in one
// log stream.
package logging

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"validator_stats_bot/internal/config"
)

const serviceName = "validator-stats-bot"

var baseLogger *logrus.Entry

// Context holds the per-update identifiers handlers attach to their logs.
// Zero values are left out.
type Context struct {
	UserID  int64
	ChatID  int64
	Command string
	Event   string
}

// Fields is a shorthand alias for structured log fields.
type Fields = logrus.Fields

// Setup replaces the global entry with one built from cfg. An unknown
// LOG_LEVEL is an error and leaves the previous entry in place.
func Setup(cfg config.Config) (*logrus.Entry, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(formatterForEnv(cfg.NodeEnv))

	fields := baseFields(cfg.NodeEnv)
	fields["mode"] = cfg.Mode().String()
	baseLogger = logger.WithFields(fields)

	return baseLogger, nil
}

// Logger returns the global entry. Before Setup runs (a config error at boot)
// it is a text logger at info level.
func Logger() *logrus.Entry {
	return ensureLogger()
}

// WithContext adds the non-zero identifiers in ctx to base, or to the global
// entry when base is nil.
func WithContext(base *logrus.Entry, ctx Context) *logrus.Entry {
	if base == nil {
		base = ensureLogger()
	}

	fields := logrus.Fields{}

	if ctx.UserID != 0 {
		fields["user_id"] = ctx.UserID
	}
	if ctx.ChatID != 0 {
		fields["chat_id"] = ctx.ChatID
	}
	if command := strings.TrimSpace(ctx.Command); command != "" {
		fields["command"] = command
	}
	if event := strings.TrimSpace(ctx.Event); event != "" {
		fields["event"] = event
	}

	if len(fields) == 0 {
		return base
	}

	return base.WithFields(fields)
}

// Info, Warn and Error log through the global entry; main uses them before a
// configured entry exists.
func Info(msg string, fields logrus.Fields) {
	logWithFields(fields).Info(msg)
}

func Warn(msg string, fields logrus.Fields) {
	logWithFields(fields).Warn(msg)
}

func Error(msg string, fields logrus.Fields) {
	logWithFields(fields).Error(msg)
}

func logWithFields(fields logrus.Fields) *logrus.Entry {
	entry := ensureLogger()
	if len(fields) == 0 {
		return entry
	}

	return entry.WithFields(fields)
}

func ensureLogger() *logrus.Entry {
	if baseLogger != nil {
		return baseLogger
	}

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(formatterForEnv(config.DefaultNodeEnv))

	baseLogger = logger.WithFields(baseFields(config.DefaultNodeEnv))

	return baseLogger
}

func baseFields(nodeEnv string) logrus.Fields {
	return logrus.Fields{
		"service": serviceName,
		"env":     nodeEnv,
	}
}

// formatterForEnv picks JSON for production log shipping and text for a
// terminal; any NODE_ENV other than production counts as a terminal.
func formatterForEnv(nodeEnv string) logrus.Formatter {
	fieldMap := logrus.FieldMap{
		logrus.FieldKeyTime:  "ts",
		logrus.FieldKeyMsg:   "msg",
		logrus.FieldKeyLevel: "level",
	}

	if nodeEnv == config.EnvProduction {
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap:        fieldMap,
		}
	}

	return &logrus.TextFormatter{
		FullTimestamp:          true,
		TimestampFormat:        time.RFC3339Nano,
		FieldMap:               fieldMap,
		DisableLevelTruncation: true,
	}
}

func parseLevel(value string) (logrus.Level, error) {
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", value, err)
	}

	return level, nil
}

// resetLogger drops the global entry between tests.
func resetLogger() {
	baseLogger = nil
}
