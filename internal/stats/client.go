// Package stats fetches validator and epoch statistics from the upstream API.
// Every call hits the network; nothing is cached or retried.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"validator_stats_bot/internal/config"
	"validator_stats_bot/internal/domain"
	"validator_stats_bot/internal/logging"
	"validator_stats_bot/internal/metrics"
)

// Endpoint names used in logs, errors and metrics.
const (
	EndpointValidatorStats = "validator_stats"
	EndpointEpochStats     = "epoch_stats"
	EndpointTopValidators  = "top_validators"
)

// maxErrorBody bounds how much of a failed response is read looking for an
// error message.
const maxErrorBody = 64 << 10

// Client talks to the stats API.
type Client struct {
	httpClient        *http.Client
	validatorStatsURL string
	epochStatsURL     string
	topValidatorsURL  string
	logger            *logrus.Entry
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient builds a Client for the API URLs in cfg.
func NewClient(cfg config.Config, logger *logrus.Entry, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.ValidatorStatsAPI) == "" {
		return nil, errors.New("validator stats api url is required")
	}
	if strings.TrimSpace(cfg.CurrentEpochStatsAPI) == "" {
		return nil, errors.New("current epoch stats api url is required")
	}
	if strings.TrimSpace(cfg.TopValidatorsAPI) == "" {
		return nil, errors.New("top validators api url is required")
	}
	if logger == nil {
		logger = logging.Logger()
	}

	timeout := cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = config.DefaultUpstreamTimeout
	}

	c := &Client{
		httpClient:        &http.Client{Timeout: timeout},
		validatorStatsURL: strings.TrimRight(cfg.ValidatorStatsAPI, "/"),
		epochStatsURL:     cfg.CurrentEpochStatsAPI,
		topValidatorsURL:  cfg.TopValidatorsAPI,
		logger:            logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ValidatorStats fetches the lifetime record of a validator and attaches the
// current epoch snapshot. A failed epoch lookup is logged and leaves
// CurrentEpochStats nil; it never fails the call.
func (c *Client) ValidatorStats(ctx context.Context, address string) (domain.ValidatorStats, error) {
	var stats domain.ValidatorStats

	endpoint := c.validatorStatsURL + "/" + url.PathEscape(address)
	if err := c.getJSON(ctx, EndpointValidatorStats, endpoint, &stats); err != nil {
		return domain.ValidatorStats{}, err
	}

	epoch, err := c.CurrentEpochStats(ctx)
	if err != nil {
		c.logger.WithFields(logging.Fields{
			"event":   "epoch_stats_attach_failed",
			"address": address,
		}).WithError(err).Error("could not attach current epoch stats to validator stats")
	} else {
		stats.CurrentEpochStats = &epoch
	}

	c.logger.WithFields(logging.Fields{
		"event":   "validator_stats_fetched",
		"address": address,
		"status":  stats.Status,
	}).Info("fetched validator stats")

	return stats, nil
}

// CurrentEpochStats fetches the network-wide snapshot for the current epoch.
func (c *Client) CurrentEpochStats(ctx context.Context) (domain.EpochStats, error) {
	var stats domain.EpochStats

	if err := c.getJSON(ctx, EndpointEpochStats, c.epochStatsURL, &stats); err != nil {
		return domain.EpochStats{}, err
	}

	c.logger.WithFields(logging.Fields{
		"event": "epoch_stats_fetched",
		"epoch": stats.CurrentEpochMetrics.EpochNumber,
	}).Info("fetched current epoch stats")

	return stats, nil
}

// TopValidators fetches the ranking over epochs 1 to the current epoch. The
// current epoch is looked up first; if that fails, so does the whole call.
func (c *Client) TopValidators(ctx context.Context) (domain.TopValidators, error) {
	epoch, err := c.CurrentEpochStats(ctx)
	if err != nil {
		return domain.TopValidators{}, err
	}

	endpoint, err := topValidatorsURL(c.topValidatorsURL, epoch.CurrentEpochMetrics.EpochNumber)
	if err != nil {
		return domain.TopValidators{}, &UnknownError{Err: err}
	}

	var top domain.TopValidators
	if err := c.getJSON(ctx, EndpointTopValidators, endpoint, &top); err != nil {
		return domain.TopValidators{}, err
	}

	c.logger.WithFields(logging.Fields{
		"event":      "top_validators_fetched",
		"end_epoch":  epoch.CurrentEpochMetrics.EpochNumber,
		"validators": len(top.Validators),
	}).Info("fetched top validators")

	return top, nil
}

func topValidatorsURL(base string, endEpoch uint64) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse top validators url: %w", err)
	}

	query := parsed.Query()
	query.Set("startEpoch", "1")
	query.Set("endEpoch", strconv.FormatUint(endEpoch, 10))
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out any) (err error) {
	started := time.Now()
	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.ObserveUpstream(endpoint, outcome, time.Since(started))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &UnknownError{Err: fmt.Errorf("build %s request: %w", endpoint, err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamErr := &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode}

		data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr == nil {
			var body errorBody
			if json.Unmarshal(data, &body) == nil {
				upstreamErr.Message = strings.TrimSpace(body.Error)
			}
		}

		return upstreamErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UnknownError{Err: fmt.Errorf("decode %s response: %w", endpoint, err)}
	}

	return nil
}
