package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

type recordingHandler struct {
	calls int
	body  string
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	body, _ := io.ReadAll(r.Body)
	h.body = string(body)
	w.WriteHeader(http.StatusOK)
}

func newTestServer(t *testing.T, webhook http.Handler) (*Server, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	srv := NewServer(Options{
		Port:        0,
		WebhookPath: "/hook-path",
		SecretToken: "s3cret",
		Webhook:     webhook,
	}, logrus.NewEntry(logger))
	return srv, hook
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthHandlerOK(t *testing.T) {
	srv, _ := newTestServer(t, &recordingHandler{})

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected HTTP 200, got %d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != `{"status":"OK"}` {
		t.Fatalf("unexpected body: %s", body)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "wrong", header: "nope"},
		{name: "prefix", header: "s3c"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			webhook := &recordingHandler{}
			srv, hook := newTestServer(t, webhook)

			req := httptest.NewRequest(http.MethodPost, "/hook-path", strings.NewReader(`{"update_id":1}`))
			if tt.header != "" {
				req.Header.Set(SecretTokenHeader, tt.header)
			}
			rr := serve(srv, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected HTTP 401, got %d", rr.Code)
			}
			if body := strings.TrimSpace(rr.Body.String()); body != `{"error":"Unauthorized."}` {
				t.Fatalf("unexpected body: %s", body)
			}
			if webhook.calls != 0 {
				t.Fatalf("expected webhook handler not to run")
			}

			found := false
			for _, entry := range hook.AllEntries() {
				if entry.Data["event"] == "webhook_unauthorized" {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected rejection to be logged")
			}
		})
	}
}

func TestWebhookForwardsAuthorizedUpdate(t *testing.T) {
	webhook := &recordingHandler{}
	srv, hook := newTestServer(t, webhook)

	payload := `{"update_id":77,"message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"from":{"id":7,"is_bot":false,"first_name":"A"},"text":"/epoch"}}`
	req := httptest.NewRequest(http.MethodPost, "/hook-path", strings.NewReader(payload))
	req.Header.Set(SecretTokenHeader, "s3cret")

	rr := serve(srv, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected HTTP 200, got %d", rr.Code)
	}
	if webhook.calls != 1 || webhook.body != payload {
		t.Fatalf("expected body to reach webhook handler intact, got calls=%d body=%q", webhook.calls, webhook.body)
	}

	var summary *logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Data["event"] == "webhook_update" {
			summary = entry
		}
	}
	if summary == nil {
		t.Fatalf("expected update summary log")
	}
	if summary.Data["update_id"] != int64(77) || summary.Data["chat_id"] != int64(42) || summary.Data["update_type"] != "message" {
		t.Fatalf("unexpected summary fields: %v", summary.Data)
	}
}

func TestWebhookRouteRequiresPost(t *testing.T) {
	srv, _ := newTestServer(t, &recordingHandler{})

	req := httptest.NewRequest(http.MethodGet, "/hook-path", nil)
	req.Header.Set(SecretTokenHeader, "s3cret")

	if rr := serve(srv, req); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected HTTP 405, got %d", rr.Code)
	}
}

func TestWebhookRouteNotMountedWithoutHandler(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/hook-path", strings.NewReader(`{}`))
	req.Header.Set(SecretTokenHeader, "s3cret")

	if rr := serve(srv, req); rr.Code != http.StatusNotFound {
		t.Fatalf("expected HTTP 404, got %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &recordingHandler{})

	rejected := httptest.NewRequest(http.MethodPost, "/hook-path", strings.NewReader(`{}`))
	serve(srv, rejected)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected HTTP 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `validator_bot_webhook_requests_total{outcome="rejected"}`) {
		t.Fatalf("expected webhook counter in metrics output")
	}
}

func TestValidSecret(t *testing.T) {
	if validSecret("", "") {
		t.Fatalf("empty secret must not validate")
	}
	if !validSecret("abc", "abc") {
		t.Fatalf("expected matching secret to validate")
	}
	if validSecret("abd", "abc") {
		t.Fatalf("expected mismatched secret to fail")
	}
}
