package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sbilibin2017/gophaproxy/internal/logger"
	"github.com/sbilibin2017/gophaproxy/internal/models"
)

// MetricRepository records every reported metric in the metric_history table.
type MetricRepository struct {
	db *sqlx.DB
}

// NewMetricRepository creates a MetricRepository on an already migrated database.
func NewMetricRepository(db *sqlx.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

// Save inserts one history row.
func (r *MetricRepository) Save(
	ctx context.Context,
	metric *models.Metrics,
) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO metric_history (id, type, unit, delta, value, created_at)
		VALUES (:id, :type, :unit, :delta, :value, :created_at)
	`, metric)
	if err != nil {
		logger.Log.Error("saving metric history",
			zap.String("id", metric.ID),
			zap.Error(err),
		)
	}
	return err
}

// Get returns the newest row of a metric, or nil.
func (r *MetricRepository) Get(ctx context.Context, id models.MetricID) (*models.Metrics, error) {
	var metric models.Metrics
	query := r.db.Rebind(`
		SELECT id, type, unit, delta, value, created_at
		FROM metric_history
		WHERE id = ? AND type = ?
		ORDER BY created_at DESC
		LIMIT 1
	`)

	err := r.db.GetContext(ctx, &metric, query, id.ID, id.MType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &metric, nil
}

// List returns the newest row of every metric, sorted by ID.
func (r *MetricRepository) List(ctx context.Context) ([]*models.Metrics, error) {
	var metrics []models.Metrics
	query := `
		SELECT h.id, h.type, h.unit, h.delta, h.value, h.created_at
		FROM metric_history h
		JOIN (
			SELECT id, type, MAX(created_at) AS created_at
			FROM metric_history
			GROUP BY id, type
		) latest
		ON h.id = latest.id AND h.type = latest.type AND h.created_at = latest.created_at
		ORDER BY h.id
	`

	if err := r.db.SelectContext(ctx, &metrics, query); err != nil {
		return nil, err
	}
	return toPointers(metrics), nil
}

// History returns up to limit rows of the metric named id, newest first.
// A non-positive limit returns every row.
func (r *MetricRepository) History(ctx context.Context, id string, limit int) ([]*models.Metrics, error) {
	var metrics []models.Metrics
	query := `
		SELECT id, type, unit, delta, value, created_at
		FROM metric_history
		WHERE id = ?
		ORDER BY created_at DESC
	`
	args := []any{id}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	if err := r.db.SelectContext(ctx, &metrics, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return toPointers(metrics), nil
}

// Prune deletes rows created before cutoff and returns how many were removed.
func (r *MetricRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM metric_history WHERE created_at < ?`), cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func toPointers(metrics []models.Metrics) []*models.Metrics {
	out := make([]*models.Metrics, 0, len(metrics))
	for i := range metrics {
		out = append(out, &metrics[i])
	}
	return out
}
