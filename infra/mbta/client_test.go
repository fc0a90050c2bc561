package mbta

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/commutewatch/core/model"
)

const samplePredictions = `{
  "data": [
    {"id": "p1", "type": "prediction", "attributes": {"arrival_time": null, "departure_time": "2025-03-04T15:07:00-05:00"}},
    {"id": "p2", "type": "prediction", "attributes": {"arrival_time": "2025-03-04T15:19:00-05:00", "departure_time": null}},
    {"id": "p3", "type": "prediction", "attributes": {"arrival_time": null, "departure_time": null}}
  ],
  "jsonapi": {"version": "1.0"}
}`

var busQuery = model.FeedQuery{Route: "226", Stop: "place-brntn", Direction: 0, RoutePattern: "226-_-0"}

func TestClientFetch(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", mediaType)
		_, _ = w.Write([]byte(samplePredictions))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret"})
	require.NoError(t, err)

	recs, err := c.Fetch(context.Background(), busQuery)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "2025-03-04T15:07:00-05:00", recs[0].DepartureTime)
	assert.Empty(t, recs[0].ArrivalTime)
	assert.Equal(t, "2025-03-04T15:19:00-05:00", recs[1].ArrivalTime)
	assert.Equal(t, model.PredictionRecord{}, recs[2])

	require.NotNil(t, got)
	assert.Equal(t, "/predictions", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "226", q.Get("filter[route]"))
	assert.Equal(t, "place-brntn", q.Get("filter[stop]"))
	assert.Equal(t, "0", q.Get("filter[direction_id]"))
	assert.Equal(t, "226-_-0", q.Get("filter[route_pattern]"))
	assert.Equal(t, "secret", got.Header.Get("X-API-Key"))
	assert.Equal(t, mediaType, got.Header.Get("Accept"))
}

func TestClientFetchOmitsDemoKey(t *testing.T) {
	var key string
	var hasKey bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasKey = r.Header["X-Api-Key"]
		key = r.Header.Get("X-API-Key")
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "demo"})
	require.NoError(t, err)
	recs, err := c.Fetch(context.Background(), model.FeedQuery{Route: "Red", Stop: "70079", RoutePattern: "Red-3-0"})
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.False(t, hasKey)
	assert.Empty(t, key)
}

func TestClientFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"status":"429"}]}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), busQuery)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Contains(t, err.Error(), "429")
}

func TestClientFetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), busQuery)
	assert.ErrorContains(t, err, "decode predictions")
}

func TestClientFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), busQuery)
	assert.Error(t, err)
}

func TestClientInsecureTransport(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	strict, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = strict.Fetch(context.Background(), busQuery)
	assert.Error(t, err, "self-signed certificate must be rejected by default")

	lax, err := NewClient(Config{BaseURL: srv.URL, InsecureSkipVerify: true})
	require.NoError(t, err)
	_, err = lax.Fetch(context.Background(), busQuery)
	assert.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	var c Config
	c.SetDefaults()
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.NoError(t, c.Validate())
}
