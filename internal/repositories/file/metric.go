package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sbilibin2017/gophaproxy/internal/models"
)

// MetricRepository appends every reported metric to a JSON Lines file and
// reads the latest values and history back from it.
type MetricRepository struct {
	path string
	mu   sync.RWMutex
}

// NewMetricRepository creates a repository backed by the file at path.
// The file is created on the first Save.
func NewMetricRepository(path string) *MetricRepository {
	return &MetricRepository{path: path}
}

// Save appends a metric to the file.
func (r *MetricRepository) Save(ctx context.Context, metric *models.Metrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := json.NewEncoder(writer).Encode(metric); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	return file.Sync()
}

// List returns the last saved value of every metric, sorted by ID.
func (r *MetricRepository) List(ctx context.Context) ([]*models.Metrics, error) {
	latest := make(map[models.MetricID]*models.Metrics)
	err := r.scan(func(m *models.Metrics) {
		latest[models.MetricID{ID: m.ID, MType: m.MType}] = m
	})
	if err != nil {
		return nil, err
	}

	metrics := make([]*models.Metrics, 0, len(latest))
	for _, m := range latest {
		metrics = append(metrics, m)
	}
	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].ID < metrics[j].ID
	})
	return metrics, nil
}

// Get returns the last saved value of a metric, or nil.
func (r *MetricRepository) Get(ctx context.Context, id models.MetricID) (*models.Metrics, error) {
	var result *models.Metrics
	err := r.scan(func(m *models.Metrics) {
		if m.ID == id.ID && m.MType == id.MType {
			result = m
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// History returns up to limit saved values of the metric named id, newest
// first. A non-positive limit returns every value.
func (r *MetricRepository) History(ctx context.Context, id string, limit int) ([]*models.Metrics, error) {
	var history []*models.Metrics
	err := r.scan(func(m *models.Metrics) {
		if m.ID == id {
			history = append(history, m)
		}
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

// Prune rewrites the file without records created before cutoff and returns
// how many were dropped.
func (r *MetricRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	var (
		kept    bytes.Buffer
		removed int64
	)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var m models.Metrics
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			return 0, err
		}
		if m.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept.Write(scanner.Bytes())
		kept.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, kept.Bytes(), 0644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return 0, err
	}
	return removed, nil
}

// scan calls fn for every record in file order. A missing file has no records.
func (r *MetricRepository) scan(fn func(*models.Metrics)) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var m models.Metrics
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			return err
		}
		fn(&m)
	}
	return scanner.Err()
}
