package stats

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"validator_stats_bot/internal/logging"
)

// DefaultErrorMessage is shown to users when no upstream message is available.
const DefaultErrorMessage = "An error occurred. Please try again later."

// UpstreamError reports a failed request to the stats API: either a transport
// failure (StatusCode is 0) or a non-2xx response.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	// Message is the human-readable error supplied by the API, if any.
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s request failed: %v", e.Endpoint, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// UnknownError wraps any other failure, such as a response body that does not
// match the expected shape.
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string {
	return e.Err.Error()
}

func (e *UnknownError) Unwrap() error {
	return e.Err
}

// ErrorMessage maps err to the text shown to the user. The upstream message is
// preferred when the API supplied one.
func ErrorMessage(err error, logger *logrus.Entry) string {
	if logger == nil {
		logger = logging.Logger()
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		logger.WithFields(logging.Fields{
			"event":       "upstream_error",
			"endpoint":    upstream.Endpoint,
			"status_code": upstream.StatusCode,
		}).WithError(err).Error("stats api request failed")

		if upstream.Message != "" {
			return upstream.Message
		}
		return DefaultErrorMessage
	}

	logger.WithField("event", "unknown_error").WithError(err).Error("unexpected error while handling request")

	return DefaultErrorMessage
}
