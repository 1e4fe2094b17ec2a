package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sbilibin2017/gophaproxy/internal/logger"
	"github.com/sbilibin2017/gophaproxy/internal/models"
)

//go:generate mockgen -source=worker.go -destination=mock_worker.go -package=worker

// HistoryReader lists the newest recorded value of every metric.
type HistoryReader interface {
	List(ctx context.Context) ([]*models.Metrics, error)
}

// HistoryPruner drops history recorded before a cutoff.
type HistoryPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// LatestWriter stores the value served by the status endpoints.
type LatestWriter interface {
	Save(ctx context.Context, metric *models.Metrics) error
}

// HistoryWorker seeds the latest-value store from history and enforces the
// history retention window.
type HistoryWorker struct {
	history     HistoryReader
	latest      LatestWriter
	pruners     []HistoryPruner
	retention   time.Duration
	pruneTicker *time.Ticker // nil disables pruning
	now         func() time.Time
}

// NewHistoryWorker creates a HistoryWorker restoring from history and pruning
// every store in pruners. A nil pruneTicker, no pruners or a non-positive
// retention keeps history forever.
func NewHistoryWorker(
	history HistoryReader,
	latest LatestWriter,
	retention time.Duration,
	pruneTicker *time.Ticker,
	pruners ...HistoryPruner,
) *HistoryWorker {
	return &HistoryWorker{
		history:     history,
		latest:      latest,
		pruners:     pruners,
		retention:   retention,
		pruneTicker: pruneTicker,
		now:         time.Now,
	}
}

// Start prunes immediately and then once per tick until ctx is done.
func (w *HistoryWorker) Start(ctx context.Context) error {
	if w.pruneTicker == nil || len(w.pruners) == 0 || w.retention <= 0 {
		<-ctx.Done()
		return nil
	}

	w.pruneAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.pruneTicker.C:
			w.pruneAndLog(ctx)
		}
	}
}

// Restore copies the newest recorded value of every metric into the latest
// store. Call it before the first poll cycle so it cannot overwrite fresh values.
func (w *HistoryWorker) Restore(ctx context.Context) error {
	metrics, err := w.history.List(ctx)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		if err := w.latest.Save(ctx, m); err != nil {
			return err
		}
	}
	if len(metrics) > 0 {
		logger.Log.Info("restored last snapshot", zap.Int("metrics", len(metrics)))
	}
	return nil
}

// Prune drops history older than the retention window from every store and
// returns the total removed. Every store is attempted.
func (w *HistoryWorker) Prune(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.retention)

	var (
		total int64
		errs  []error
	)
	for _, p := range w.pruners {
		removed, err := p.Prune(ctx, cutoff)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total += removed
	}
	return total, errors.Join(errs...)
}

func (w *HistoryWorker) pruneAndLog(ctx context.Context) {
	removed, err := w.Prune(ctx)
	if err != nil {
		logger.Log.Error("pruning history", zap.Error(err))
		return
	}
	if removed > 0 {
		logger.Log.Debug("pruned history", zap.Int64("records", removed))
	}
}
