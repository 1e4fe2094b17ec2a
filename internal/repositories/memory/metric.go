package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sbilibin2017/gophaproxy/internal/models"
)

// MetricRepository keeps the latest reported value of every metric.
type MetricRepository struct {
	mu   sync.RWMutex
	data map[models.MetricID]models.Metrics
}

// NewMetricRepository creates an empty MetricRepository.
func NewMetricRepository() *MetricRepository {
	return &MetricRepository{data: make(map[models.MetricID]models.Metrics)}
}

// Save replaces the stored value of the metric.
func (r *MetricRepository) Save(
	ctx context.Context,
	metric *models.Metrics,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[models.MetricID{ID: metric.ID, MType: metric.MType}] = copyMetric(metric)
	return nil
}

// Get returns the stored metric, or nil if it was never saved.
func (r *MetricRepository) Get(
	ctx context.Context,
	id models.MetricID,
) (*models.Metrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metric, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	out := copyMetric(&metric)
	return &out, nil
}

// List returns all stored metrics sorted by ID.
func (r *MetricRepository) List(
	ctx context.Context,
) ([]*models.Metrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metrics := make([]*models.Metrics, 0, len(r.data))
	for _, m := range r.data {
		metric := copyMetric(&m)
		metrics = append(metrics, &metric)
	}

	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].ID < metrics[j].ID
	})

	return metrics, nil
}

// Delete removes the stored value of the metric.
func (r *MetricRepository) Delete(
	ctx context.Context,
	id models.MetricID,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.data, id)
	return nil
}

// copyMetric detaches the Delta and Value pointers from the caller's metric.
func copyMetric(m *models.Metrics) models.Metrics {
	out := *m
	if m.Delta != nil {
		d := *m.Delta
		out.Delta = &d
	}
	if m.Value != nil {
		v := *m.Value
		out.Value = &v
	}
	return out
}
