package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"validator_stats_bot/internal/config"
)

func TestSetupUsesJSONFormatterInProduction(t *testing.T) {
	resetLogger()

	entry, err := Setup(config.Config{NodeEnv: config.EnvProduction, LogLevel: "info"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jsonFormatter, ok := entry.Logger.Formatter.(*logrus.JSONFormatter)
	if !ok {
		t.Fatalf("expected JSON formatter, got %T", entry.Logger.Formatter)
	}

	if jsonFormatter.FieldMap[logrus.FieldKeyTime] != "ts" {
		t.Fatalf("expected ts field for timestamps, got %q", jsonFormatter.FieldMap[logrus.FieldKeyTime])
	}
	if entry.Data["service"] != serviceName {
		t.Fatalf("expected service field, got %v", entry.Data["service"])
	}
	if entry.Data["env"] != config.EnvProduction {
		t.Fatalf("expected env field to be %q, got %v", config.EnvProduction, entry.Data["env"])
	}
	if entry.Data["mode"] != "webhook" {
		t.Fatalf("expected mode field to be webhook, got %v", entry.Data["mode"])
	}
}

func TestSetupUsesTextFormatterOutsideProduction(t *testing.T) {
	for _, env := range []string{config.EnvDevelopment, "staging"} {
		env := env
		t.Run(env, func(t *testing.T) {
			resetLogger()

			entry, err := Setup(config.Config{NodeEnv: env, LogLevel: "debug"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if _, ok := entry.Logger.Formatter.(*logrus.TextFormatter); !ok {
				t.Fatalf("expected Text formatter, got %T", entry.Logger.Formatter)
			}
			if entry.Logger.Level != logrus.DebugLevel {
				t.Fatalf("expected debug level, got %s", entry.Logger.Level)
			}
			if entry.Data["mode"] != "polling" {
				t.Fatalf("expected mode field to be polling, got %v", entry.Data["mode"])
			}
		})
	}
}

func TestSetupRejectsInvalidLogLevel(t *testing.T) {
	resetLogger()

	if _, err := Setup(config.Config{NodeEnv: config.EnvDevelopment, LogLevel: "loud"}); err == nil {
		t.Fatalf("expected error for invalid log level")
	}

	if baseLogger != nil {
		t.Fatalf("base logger should remain unset after failure")
	}
}

func TestLoggingHelpersIncludeContextAndLevels(t *testing.T) {
	resetLogger()

	logger, hook := test.NewNullLogger()
	logger.SetFormatter(formatterForEnv(config.EnvDevelopment))
	baseLogger = logger.WithFields(logrus.Fields{
		"service": serviceName,
		"env":     config.EnvDevelopment,
	})

	Info("hello world", logrus.Fields{"event": "startup"})
	Warn("careful now", nil)
	Error("boom", logrus.Fields{"error": "fail"})

	entries := hook.AllEntries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}

	if entries[0].Level != logrus.InfoLevel || entries[0].Data["event"] != "startup" {
		t.Fatalf("expected info level with startup event, got level=%s data=%v", entries[0].Level, entries[0].Data)
	}
	if entries[1].Level != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %s", entries[1].Level)
	}
	if entries[2].Level != logrus.ErrorLevel || entries[2].Data["error"] != "fail" {
		t.Fatalf("expected error level with error field, got level=%s data=%v", entries[2].Level, entries[2].Data)
	}

	ctxEntry := WithContext(nil, Context{UserID: 42, ChatID: -1001, Command: "epoch", Event: "command"})
	ctxEntry.Info("ctx log")

	last := hook.LastEntry()
	if last.Data["user_id"] != int64(42) || last.Data["chat_id"] != int64(-1001) || last.Data["event"] != "command" {
		t.Fatalf("expected context fields, got %v", last.Data)
	}
	if last.Data["command"] != "epoch" {
		t.Fatalf("expected command field, got %v", last.Data["command"])
	}
	if last.Data["service"] != serviceName || last.Data["env"] != config.EnvDevelopment {
		t.Fatalf("expected base fields preserved, got %v", last.Data)
	}

	custom, customHook := test.NewNullLogger()
	WithContext(logrus.NewEntry(custom), Context{Event: "callback"}).Warn("explicit base")

	if customHook.LastEntry() == nil || customHook.LastEntry().Data["event"] != "callback" {
		t.Fatalf("expected explicit base logger to receive the entry")
	}
	if len(hook.AllEntries()) != 4 {
		t.Fatalf("expected global logger to be untouched by explicit base, got %d entries", len(hook.AllEntries()))
	}
}

func TestLoggerBeforeSetupHasNoMode(t *testing.T) {
	resetLogger()
	defer resetLogger()

	entry := Logger()
	if entry.Data["service"] != serviceName || entry.Data["env"] != config.DefaultNodeEnv {
		t.Fatalf("expected fallback base fields, got %v", entry.Data)
	}
	if _, ok := entry.Data["mode"]; ok {
		t.Fatalf("expected no mode before configuration is loaded, got %v", entry.Data["mode"])
	}
}
