package main

import (
	"io"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"

	"validator_stats_bot/internal/config"
)

func TestNewHTTPServerOnlyInWebhookMode(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tests := []struct {
		name       string
		cfg        config.Config
		wantServer bool
	}{
		{
			name:       "polling",
			cfg:        config.Config{NodeEnv: config.EnvDevelopment, Port: config.DefaultPort},
			wantServer: false,
		},
		{
			name: "webhook",
			cfg: config.Config{
				NodeEnv:     config.EnvProduction,
				Port:        config.DefaultPort,
				WebhookPath: "hook",
				SecretToken: "secret",
			},
			wantServer: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			webhook := func() http.Handler {
				calls++
				return http.NotFoundHandler()
			}

			srv := newHTTPServer(tt.cfg, webhook, logrus.NewEntry(logger))

			if (srv != nil) != tt.wantServer {
				t.Fatalf("server built = %v, want %v", srv != nil, tt.wantServer)
			}
			if tt.wantServer && calls != 1 {
				t.Fatalf("expected webhook handler to be requested once, got %d", calls)
			}
			if !tt.wantServer && calls != 0 {
				t.Fatalf("expected no webhook handler in polling mode, got %d calls", calls)
			}
		})
	}
}
