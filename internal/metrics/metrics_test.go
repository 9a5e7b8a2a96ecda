package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T) string {
	t.Helper()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected HTTP 200, got %d", rr.Code)
	}

	return rr.Body.String()
}

func TestHandlerExposesObservedSeries(t *testing.T) {
	ObserveCommand("epoch", OutcomeOK)
	ObserveCallback("info", OutcomeIgnored)
	ObserveUpstream("epoch_stats", OutcomeError, 25*time.Millisecond)
	ObserveWebhook(OutcomeRejected)

	body := scrape(t)

	for _, series := range []string{
		`validator_bot_commands_total{command="epoch",outcome="ok"}`,
		`validator_bot_callbacks_total{action="info",outcome="ignored"}`,
		`validator_bot_upstream_requests_total{endpoint="epoch_stats",outcome="error"}`,
		`validator_bot_upstream_request_duration_seconds_count{endpoint="epoch_stats"}`,
		`validator_bot_webhook_requests_total{outcome="rejected"}`,
	} {
		if !strings.Contains(body, series) {
			t.Fatalf("expected %s in metrics output", series)
		}
	}
}
