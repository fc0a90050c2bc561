package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/commutewatch/core/events"
	coremetrics "github.com/kilianp07/commutewatch/core/metrics"
	"github.com/kilianp07/commutewatch/infra/logger"
)

// InfluxSink writes monitor cycles and alerts to an InfluxDB instance using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordCycle writes one monitor_cycle point.
func (s *InfluxSink) RecordCycle(ev events.CycleEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, cyclePoint(ev))
}

// RecordAlert writes one monitor_alert point.
func (s *InfluxSink) RecordAlert(ev events.AlertEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, alertPoint(ev))
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func cyclePoint(ev events.CycleEvent) *write.Point {
	p := write.NewPointWithMeasurement("monitor_cycle").
		AddTag("monitor", ev.Monitor).
		AddTag("outcome", string(ev.Outcome)).
		AddField("cycle_id", ev.ID).
		AddField("sleep_minutes", int(ev.Sleep/time.Minute))
	if ev.Outcome == events.OutcomeOK {
		p = p.AddTag("alert", ev.Alert.String()).
			AddField("reference_minutes", ev.Reference)
	}
	if ev.Optimal != nil {
		p = p.AddField("train_minutes", ev.Optimal.TrainTime).
			AddField("bus_minutes", ev.Optimal.BusTime).
			AddField("wait_minutes", ev.Optimal.Wait).
			AddField("candidates", len(ev.Connections))
	}
	if ev.Err != nil {
		p = p.AddField("error", ev.Err.Error())
	}
	return p.SetTime(ev.Started)
}

func alertPoint(ev events.AlertEvent) *write.Point {
	return write.NewPointWithMeasurement("monitor_alert").
		AddTag("monitor", ev.Monitor).
		AddTag("class", ev.Class.String()).
		AddTag("delivered", strconv.FormatBool(ev.Delivered)).
		AddField("reference_minutes", ev.Reference).
		AddField("title", ev.Title).
		AddField("message", ev.Message).
		SetTime(ev.Time)
}
