package services

import (
	"context"
	"errors"

	"github.com/sbilibin2017/gophaproxy/internal/models"
)

//go:generate mockgen -source=metric.go -destination=mock_metric.go -package=services

// ErrHistoryDisabled is returned by History when no history store is configured.
var ErrHistoryDisabled = errors.New("metric history is not configured")

// Reader retrieves the most recently reported metrics.
type Reader interface {
	// Get retrieves a metric by its MetricID.
	Get(ctx context.Context, id models.MetricID) (*models.Metrics, error)
	// List retrieves all stored metrics.
	List(ctx context.Context) ([]*models.Metrics, error)
}

// HistoryReader retrieves past values of one metric, newest first.
type HistoryReader interface {
	History(ctx context.Context, id string, limit int) ([]*models.Metrics, error)
}

// MetricService serves reported metrics to the status endpoints.
type MetricService struct {
	reader  Reader
	history HistoryReader
}

// NewMetricService creates a MetricService. history may be nil.
func NewMetricService(
	reader Reader,
	history HistoryReader,
) *MetricService {
	return &MetricService{
		reader:  reader,
		history: history,
	}
}

// Get returns the latest value of a metric, or nil if it was never reported.
func (svc *MetricService) Get(
	ctx context.Context,
	id *models.MetricID,
) (*models.Metrics, error) {
	return svc.reader.Get(ctx, *id)
}

// List returns the latest value of every reported metric.
func (svc *MetricService) List(
	ctx context.Context,
) ([]*models.Metrics, error) {
	return svc.reader.List(ctx)
}

// History returns up to limit past values of the metric named id.
func (svc *MetricService) History(
	ctx context.Context,
	id string,
	limit int,
) ([]*models.Metrics, error) {
	if svc.history == nil {
		return nil, ErrHistoryDisabled
	}
	return svc.history.History(ctx, id, limit)
}
