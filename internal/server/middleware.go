package server

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"validator_stats_bot/internal/logging"
	"validator_stats_bot/internal/metrics"
)

// SecretTokenHeader carries the secret registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// maxUpdateBytes bounds how much of a webhook body is buffered for logging.
const maxUpdateBytes = 1 << 20

func requestLogger(logger *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.WithFields(logging.Fields{
				"event":       "http_request",
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
			}).Debug("http request handled")
		})
	}
}

// secretTokenMiddleware rejects webhook deliveries whose secret header does not
// match secret. An empty secret rejects every request.
func secretTokenMiddleware(secret string, logger *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !validSecret(r.Header.Get(SecretTokenHeader), secret) {
				logger.WithFields(logging.Fields{
					"event":       "webhook_unauthorized",
					"remote_addr": r.RemoteAddr,
				}).Warn("rejected webhook request with invalid secret token")
				metrics.ObserveWebhook(metrics.OutcomeRejected)
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized."}, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func validSecret(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// updateLogger logs a short summary of each accepted update and restores the
// body for the next handler.
func updateLogger(logger *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateBytes))
			_ = r.Body.Close()
			if err != nil {
				logger.WithField("event", "webhook_read_error").WithError(err).Warn("failed to read webhook body")
				metrics.ObserveWebhook(metrics.OutcomeError)
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			var update models.Update
			if err := json.Unmarshal(body, &update); err != nil {
				logger.WithField("event", "webhook_decode_error").WithError(err).Warn("webhook body is not a telegram update")
			} else {
				logger.WithFields(updateFields(&update)).Info("webhook update received")
			}

			metrics.ObserveWebhook(metrics.OutcomeOK)
			next.ServeHTTP(w, r)
		})
	}
}

func updateFields(update *models.Update) logging.Fields {
	fields := logging.Fields{
		"event":     "webhook_update",
		"update_id": update.ID,
	}

	switch {
	case update.Message != nil:
		fields["update_type"] = "message"
		fields["chat_id"] = update.Message.Chat.ID
		if update.Message.From != nil {
			fields["user_id"] = update.Message.From.ID
		}
	case update.CallbackQuery != nil:
		fields["update_type"] = "callback_query"
		fields["user_id"] = update.CallbackQuery.From.ID
	default:
		fields["update_type"] = "unknown"
	}

	return fields
}
