package mbta

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/commutewatch/core/model"
	"github.com/kilianp07/commutewatch/core/prediction"
	"github.com/kilianp07/commutewatch/infra/logger"
)

// DefaultBaseURL is the public MBTA v3 endpoint.
const DefaultBaseURL = "https://api-v3.mbta.com"

const mediaType = "application/vnd.api+json"

// ErrStatus is returned for non-2xx responses.
var ErrStatus = errors.New("unexpected status")

// Config holds the client settings.
type Config struct {
	BaseURL string `json:"base_url" validate:"required,url"`
	APIKey  string `json:"api_key"`
	// Timeout bounds one HTTP round trip.
	Timeout time.Duration `json:"timeout" validate:"gt=0"`
	// InsecureSkipVerify disables TLS certificate verification for networks
	// that intercept HTTPS.
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate checks that the base URL is usable.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("mbta: %w", err)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("mbta.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("mbta.base_url: unsupported scheme %q", u.Scheme)
	}
	return nil
}

// Client queries the predictions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     logger.Logger
}

// NewClient creates a client from cfg. Defaults are applied to a copy.
func NewClient(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("mbta")
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		log.Warnf("TLS certificate verification disabled for %s", cfg.BaseURL)
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}
	if cfg.APIKey == "" || strings.EqualFold(cfg.APIKey, "demo") {
		log.Warnf("no MBTA API key configured; requests are subject to the anonymous rate limit")
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
		log:     log,
	}, nil
}

// Fetch returns the raw prediction records matching q.
func (c *Client) Fetch(ctx context.Context, q model.FeedQuery) ([]model.PredictionRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.predictionsURL(q), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", mediaType)
	if c.apiKey != "" && !strings.EqualFold(c.apiKey, "demo") {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predictions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	recs := make([]model.PredictionRecord, 0, len(doc.Data))
	for _, d := range doc.Data {
		recs = append(recs, model.PredictionRecord{
			DepartureTime: d.Attributes.DepartureTime,
			ArrivalTime:   d.Attributes.ArrivalTime,
		})
	}
	c.log.Debugw("predictions fetched", map[string]any{
		"route":      q.Route,
		"stop":       q.Stop,
		"count":      len(recs),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return recs, nil
}

func (c *Client) predictionsURL(q model.FeedQuery) string {
	v := url.Values{}
	if q.Route != "" {
		v.Set("filter[route]", q.Route)
	}
	if q.Stop != "" {
		v.Set("filter[stop]", q.Stop)
	}
	v.Set("filter[direction_id]", strconv.Itoa(q.Direction))
	if q.RoutePattern != "" {
		v.Set("filter[route_pattern]", q.RoutePattern)
	}
	return c.baseURL + "/predictions?" + v.Encode()
}

// document is the subset of the JSON:API response the monitors use. Times
// are kept as strings so prediction.Normalize owns parsing.
type document struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			ArrivalTime   string `json:"arrival_time"`
			DepartureTime string `json:"departure_time"`
		} `json:"attributes"`
	} `json:"data"`
}

var _ prediction.Source = (*Client)(nil)
