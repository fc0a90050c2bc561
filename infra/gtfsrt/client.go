package gtfsrt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/go-playground/validator/v10"
	"google.golang.org/protobuf/proto"

	"github.com/kilianp07/commutewatch/core/model"
	"github.com/kilianp07/commutewatch/core/prediction"
	"github.com/kilianp07/commutewatch/infra/logger"
)

// DefaultURL is the MBTA TripUpdates feed.
const DefaultURL = "https://cdn.mbta.com/realtime/TripUpdates.pb"

// ErrStatus is returned for non-200 responses.
var ErrStatus = errors.New("unexpected status")

// Config holds the feed location. Stop time updates carry platform (child)
// stop ids, so a parent station such as place-brntn only matches through
// StopAliases, which maps a configured stop to the child ids it stands for.
type Config struct {
	URL         string              `json:"url" validate:"required,url"`
	Timeout     time.Duration       `json:"timeout" validate:"gt=0"`
	StopAliases map[string][]string `json:"stop_aliases"`
}

// ParentStation reports whether stop is an MBTA parent station id.
func ParentStation(stop string) bool { return strings.HasPrefix(stop, "place-") }

// Resolves reports whether stop can match stop time updates: either it is a
// child stop id or it has aliases.
func (c Config) Resolves(stop string) bool {
	return !ParentStation(stop) || len(c.StopAliases[stop]) > 0
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate checks the URL and timeout.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("gtfsrt: %w", err)
	}
	return nil
}

// Client downloads the whole feed on every Fetch and keeps the stop time
// updates matching the query.
type Client struct {
	url     string
	aliases map[string][]string
	http    *http.Client
	log     logger.Logger
}

var _ prediction.Source = (*Client)(nil)

// NewClient creates a client from cfg. Defaults are applied to a copy.
func NewClient(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		url:     cfg.URL,
		aliases: cfg.StopAliases,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     logger.New("gtfsrt"),
	}, nil
}

// Fetch returns one record per trip calling at q.Stop, or one of its
// aliases, on q.Route in q.Direction. Skipped stops are left out.
// RoutePattern has no GTFS-RT equivalent and is ignored.
func (c *Client) Fetch(ctx context.Context, q model.FeedQuery) ([]model.PredictionRecord, error) {
	fm, err := c.feed(ctx)
	if err != nil {
		return nil, err
	}
	return Records(fm, q, c.aliases[q.Stop]...), nil
}

func (c *Client) feed(ctx context.Context) (*gtfsrtpb.FeedMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", c.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrStatus, resp.StatusCode, c.url)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	c.log.Debugf("feed with %d entities", len(fm.GetEntity()))
	return &fm, nil
}

// Records extracts the prediction records for q from a decoded feed. Stop
// ids are compared literally against q.Stop and aliases.
func Records(fm *gtfsrtpb.FeedMessage, q model.FeedQuery, aliases ...string) []model.PredictionRecord {
	stops := make(map[string]struct{}, len(aliases)+1)
	stops[q.Stop] = struct{}{}
	for _, a := range aliases {
		stops[a] = struct{}{}
	}
	var out []model.PredictionRecord
	for _, e := range fm.GetEntity() {
		tu := e.GetTripUpdate()
		if tu == nil || e.GetIsDeleted() {
			continue
		}
		trip := tu.GetTrip()
		if trip.GetRouteId() != q.Route || int(trip.GetDirectionId()) != q.Direction {
			continue
		}
		for _, stu := range tu.GetStopTimeUpdate() {
			if _, ok := stops[stu.GetStopId()]; !ok {
				continue
			}
			if stu.GetScheduleRelationship() == gtfsrtpb.TripUpdate_StopTimeUpdate_SKIPPED {
				continue
			}
			out = append(out, model.PredictionRecord{
				DepartureTime: stamp(stu.GetDeparture()),
				ArrivalTime:   stamp(stu.GetArrival()),
			})
		}
	}
	return out
}

func stamp(ev *gtfsrtpb.TripUpdate_StopTimeEvent) string {
	if ev.GetTime() == 0 {
		return ""
	}
	return time.Unix(ev.GetTime(), 0).Format(prediction.TimeLayout)
}
