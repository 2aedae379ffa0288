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

	coremetrics "github.com/skyops/fleetmatch/core/metrics"
	"github.com/skyops/fleetmatch/infra/logger"
)

// InfluxSink writes matching events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	base := strings.TrimSuffix(cfg.InfluxURL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
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

// RecordAssignment writes the assignment as a line protocol event.
func (s *InfluxSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("assignment").
		AddTag("mission_id", rec.MissionID).
		AddTag("pilot_id", rec.PilotID).
		AddTag("drone_id", rec.DroneID).
		AddTag("reassigned", strconv.FormatBool(rec.Reassigned)).
		AddField("score", rec.Score).
		SetTime(rec.Timestamp)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSweep writes the sweep summary as a line protocol event.
func (s *InfluxSink) RecordSweep(rec coremetrics.SweepRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("reassignment_sweep").
		AddField("checked", rec.Checked).
		AddField("reassigned", rec.Reassigned).
		AddField("failed", rec.Failed).
		AddField("skipped", rec.Skipped).
		AddField("duration_seconds", rec.Duration.Seconds()).
		SetTime(rec.Timestamp)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close shuts down the InfluxDB client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
