package models

import "time"

// Metric types.
const (
	Counter = "counter" // Counter carries the per-interval delta of a cumulative stat.
	Gauge   = "gauge"   // Gauge represents a value at a specific point in time.
)

// MetricID represents a metric identifier.
type MetricID struct {
	ID    string `json:"id"`   // Reported metric name, e.g. "Response/Codes/2xx".
	MType string `json:"type"` // Metric type: "counter" or "gauge".
}

// Metrics is one reported value derived from a Snapshot.
type Metrics struct {
	ID        string    `json:"id" db:"id"`                           // Reported metric name.
	MType     string    `json:"type" db:"type"`                       // Metric type: "counter" or "gauge".
	Unit      string    `json:"unit,omitempty" db:"unit"`             // Unit label, e.g. "responses".
	Delta     *int64    `json:"delta,omitempty" db:"delta"`           // Interval delta for counters.
	Value     *float64  `json:"value,omitempty" db:"value"`           // Current value for gauges.
	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"` // Snapshot collection time.
}

// NewCounter builds a counter metric carrying delta.
func NewCounter(id, unit string, delta int64, at time.Time) *Metrics {
	return &Metrics{ID: id, MType: Counter, Unit: unit, Delta: &delta, CreatedAt: at}
}

// NewGauge builds a gauge metric carrying value.
func NewGauge(id, unit string, value float64, at time.Time) *Metrics {
	return &Metrics{ID: id, MType: Gauge, Unit: unit, Value: &value, CreatedAt: at}
}

// Number returns the metric payload as a float regardless of its type.
func (m *Metrics) Number() float64 {
	switch {
	case m.Delta != nil:
		return float64(*m.Delta)
	case m.Value != nil:
		return *m.Value
	default:
		return 0
	}
}
