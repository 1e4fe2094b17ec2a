package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sbilibin2017/gophaproxy/internal/logger"
	"github.com/sbilibin2017/gophaproxy/internal/models"
)

// Writer stores one reported metric.
type Writer interface {
	// Save persists the given metric.
	Save(ctx context.Context, metric *models.Metrics) error
}

// Updater ships a batch of reported metrics to a remote server.
type Updater interface {
	// Update sends a batch of metrics.
	Update(ctx context.Context, metrics []*models.Metrics) error
}

// LatestWriter is a Writer holding only the current value of each metric.
// Metrics left out of a report are deleted from it so they are not served stale.
type LatestWriter interface {
	Writer
	// Delete removes the metric; a missing metric is not an error.
	Delete(ctx context.Context, id models.MetricID) error
}

//go:generate mockgen -source=report.go -destination=mock_report.go -package=services

// ReportService turns snapshots into named metrics, logs them and fans them
// out to every configured writer and updater.
type ReportService struct {
	writers  []Writer
	updaters []Updater
}

// NewReportService creates a ReportService. Both lists may be empty, in which
// case snapshots are only logged.
func NewReportService(writers []Writer, updaters []Updater) *ReportService {
	return &ReportService{
		writers:  writers,
		updaters: updaters,
	}
}

// Report delivers one snapshot. Every writer and updater is attempted; the
// returned error joins all failures.
func (svc *ReportService) Report(ctx context.Context, snapshot models.Snapshot) error {
	metrics := BuildMetrics(snapshot)

	for _, m := range metrics {
		logger.Log.Info(fmt.Sprintf("%s[%s] = %s", m.ID, m.Unit, formatNumber(m)))
	}

	skipped := SkippedMetrics(snapshot)

	var errs []error
	for _, w := range svc.writers {
		if err := saveAll(ctx, w, metrics); err != nil {
			errs = append(errs, err)
		}
		lw, ok := w.(LatestWriter)
		if !ok {
			continue
		}
		for _, id := range skipped {
			if err := lw.Delete(ctx, id); err != nil {
				errs = append(errs, fmt.Errorf("delete %s: %w", id.ID, err))
			}
		}
	}
	for _, u := range svc.updaters {
		if err := u.Update(ctx, metrics); err != nil {
			errs = append(errs, fmt.Errorf("update: %w", err))
		}
	}

	if len(errs) > 0 {
		logger.Log.Warn("snapshot delivered partially", zap.Int("failures", len(errs)))
	}
	return errors.Join(errs...)
}

func saveAll(ctx context.Context, w Writer, metrics []*models.Metrics) error {
	for _, m := range metrics {
		if err := w.Save(ctx, m); err != nil {
			return fmt.Errorf("save %s: %w", m.ID, err)
		}
	}
	return nil
}

func formatNumber(m *models.Metrics) string {
	if m.Delta != nil {
		return fmt.Sprintf("%d", *m.Delta)
	}
	if m.Value != nil {
		return fmt.Sprintf("%g", *m.Value)
	}
	return ""
}

// Metric units.
const (
	UnitRequests     = "requests"
	UnitResponses    = "responses"
	UnitMilliseconds = "milliseconds"
	UnitErrors       = "errors"
	UnitBytes        = "bytes"
	UnitSessions     = "sessions"
	UnitServers      = "servers"
	UnitStatus       = "status"
)

// Reported metric names.
const (
	MetricRequests         = "Requests"
	MetricResponses1xx     = "Response/Codes/1xx"
	MetricResponses2xx     = "Response/Codes/2xx"
	MetricResponses3xx     = "Response/Codes/3xx"
	MetricResponses4xx     = "Response/Codes/4xx"
	MetricResponses5xx     = "Response/Codes/5xx"
	MetricResponsesOther   = "Response/Codes/Other"
	MetricResponseFailures = "Response/Failures"
	MetricTimeConnect      = "Response/Time/Connect"
	MetricTimeQueue        = "Response/Time/Queue"
	MetricTimeResponse     = "Response/Time/Response"
	MetricTimeTotal        = "Response/Time/Total"
	MetricErrorsRequest    = "Errors/Request"
	MetricErrorsResponse   = "Errors/Response"
	MetricErrorsConnection = "Errors/Connection"
	MetricBytesReceived    = "Bytes/Received"
	MetricBytesSent        = "Bytes/Sent"
	MetricSessionsActive   = "Sessions/Active"
	MetricSessionsQueued   = "Sessions/Queued"
	MetricServersActive    = "Servers/Active"
	MetricServersBackup    = "Servers/Backup"
	MetricProxyUp          = "ProxyUp"
)

type metricDef struct {
	name     string
	unit     string
	key      models.MetricKey
	positive bool // report only values above zero
}

var counterDefs = []metricDef{
	{name: MetricRequests, unit: UnitRequests, key: models.KeyTotalSessions},
	{name: MetricResponses1xx, unit: UnitResponses, key: models.KeyResponses1xx},
	{name: MetricResponses2xx, unit: UnitResponses, key: models.KeyResponses2xx},
	{name: MetricResponses3xx, unit: UnitResponses, key: models.KeyResponses3xx},
	{name: MetricResponses4xx, unit: UnitResponses, key: models.KeyResponses4xx},
	{name: MetricResponses5xx, unit: UnitResponses, key: models.KeyResponses5xx},
	{name: MetricResponsesOther, unit: UnitResponses, key: models.KeyResponsesOther},
}

var failureKeys = []models.MetricKey{
	models.KeyResponses3xx,
	models.KeyResponses4xx,
	models.KeyResponses5xx,
	models.KeyResponsesOther,
}

var timingDefs = []metricDef{
	{name: MetricTimeConnect, unit: UnitMilliseconds, key: models.KeyConnectTime, positive: true},
	{name: MetricTimeQueue, unit: UnitMilliseconds, key: models.KeyQueueTime, positive: true},
	{name: MetricTimeResponse, unit: UnitMilliseconds, key: models.KeyResponseTime, positive: true},
	{name: MetricTimeTotal, unit: UnitMilliseconds, key: models.KeyTotalTime, positive: true},
}

var trailingCounterDefs = []metricDef{
	{name: MetricErrorsRequest, unit: UnitErrors, key: models.KeyRequestErrors},
	{name: MetricErrorsResponse, unit: UnitErrors, key: models.KeyResponseErrors},
	{name: MetricErrorsConnection, unit: UnitErrors, key: models.KeyConnErrors},
	{name: MetricBytesReceived, unit: UnitBytes, key: models.KeyBytesIn},
	{name: MetricBytesSent, unit: UnitBytes, key: models.KeyBytesOut},
}

var trailingGaugeDefs = []metricDef{
	{name: MetricSessionsActive, unit: UnitSessions, key: models.KeyCurrentSessions},
	{name: MetricSessionsQueued, unit: UnitSessions, key: models.KeyQueuedSessions},
	{name: MetricServersActive, unit: UnitServers, key: models.KeyActiveServers},
	{name: MetricServersBackup, unit: UnitServers, key: models.KeyBackupServers},
	{name: MetricProxyUp, unit: UnitStatus, key: models.KeyStatus},
}

// BuildMetrics names the values of a snapshot for reporting. Counter keys
// become counter metrics carrying the interval delta; the rest become gauges.
// Response/Failures adds up the 3xx, 4xx, 5xx and other responses. Timing
// gauges are left out when they are not positive.
func BuildMetrics(snapshot models.Snapshot) []*models.Metrics {
	at := snapshot.CollectedAt
	metrics := make([]*models.Metrics, 0, 22)

	for _, d := range counterDefs {
		metrics = append(metrics, models.NewCounter(d.name, d.unit, snapshot.Get(d.key), at))
	}

	var failures int64
	for _, k := range failureKeys {
		failures += snapshot.Get(k)
	}
	metrics = append(metrics, models.NewCounter(MetricResponseFailures, UnitResponses, failures, at))

	for _, d := range timingDefs {
		v := snapshot.Get(d.key)
		if d.positive && v <= 0 {
			continue
		}
		metrics = append(metrics, models.NewGauge(d.name, d.unit, float64(v), at))
	}

	for _, d := range trailingCounterDefs {
		metrics = append(metrics, models.NewCounter(d.name, d.unit, snapshot.Get(d.key), at))
	}

	for _, d := range trailingGaugeDefs {
		metrics = append(metrics, models.NewGauge(d.name, d.unit, float64(snapshot.Get(d.key)), at))
	}

	return metrics
}

// SkippedMetrics lists the gauges BuildMetrics leaves out of the snapshot.
func SkippedMetrics(snapshot models.Snapshot) []models.MetricID {
	var ids []models.MetricID
	for _, d := range timingDefs {
		if d.positive && snapshot.Get(d.key) <= 0 {
			ids = append(ids, models.MetricID{ID: d.name, MType: models.Gauge})
		}
	}
	return ids
}
