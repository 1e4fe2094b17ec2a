package stats

import (
	"time"

	"github.com/sbilibin2017/gophaproxy/internal/delta"
	"github.com/sbilibin2017/gophaproxy/internal/models"
)

// Status values that count a row as up.
const (
	StatusUp   = "UP"
	StatusOpen = "OPEN"
)

type counterKey struct {
	source models.Source
	key    models.MetricKey
}

// Aggregator folds the selected rows of every configured source into one
// Snapshot per cycle. It owns the delta state of every (source, counter) pair
// and must be driven by one caller at a time.
type Aggregator struct {
	sources  []models.Source
	counters map[counterKey]*delta.Counter
	now      func() time.Time
}

// NewAggregator creates an Aggregator for the configured sources.
func NewAggregator(sources []models.Source) *Aggregator {
	a := &Aggregator{
		sources:  append([]models.Source(nil), sources...),
		counters: make(map[counterKey]*delta.Counter, len(sources)*len(models.CounterKeys)),
		now:      time.Now,
	}
	for _, src := range a.sources {
		for _, key := range models.CounterKeys {
			a.counters[counterKey{src, key}] = &delta.Counter{}
		}
	}
	return a
}

// RunCycle aggregates one cycle. perSource holds the rows already selected for
// each source; a missing or empty entry means the source had no data. Sources
// that were not configured are ignored.
//
// Every counter field of every row passes through the source's delta counter
// for that field, in row order, and the available deltas are summed. Gauges are
// summed over all rows; timings, server counts and status are then divided by
// the configured source count.
func (a *Aggregator) RunCycle(perSource map[models.Source][]models.StatsRow) models.Snapshot {
	values := make(map[models.MetricKey]int64, len(models.CounterKeys)+len(models.GaugeKeys))
	for _, key := range models.CounterKeys {
		values[key] = 0
	}
	for _, key := range models.GaugeKeys {
		values[key] = 0
	}

	var reporting int
	for _, src := range a.sources {
		rows := perSource[src]
		if len(rows) == 0 {
			continue
		}
		reporting++

		for _, row := range rows {
			for _, key := range models.CounterKeys {
				raw := parseInt(row, key)
				if d, ok := a.counters[counterKey{src, key}].Process(&raw); ok {
					values[key] += d
				}
			}
			for _, key := range models.GaugeKeys {
				if key == models.KeyStatus {
					values[key] += statusUp(row)
					continue
				}
				values[key] += parseInt(row, key)
			}
		}
	}

	n := int64(len(a.sources))
	for _, key := range models.AveragedKeys {
		if n == 0 {
			values[key] = 0
			continue
		}
		values[key] /= n
	}

	return models.Snapshot{
		Values:      values,
		Sources:     len(a.sources),
		Reporting:   reporting,
		CollectedAt: a.now(),
	}
}

func statusUp(row models.StatsRow) int64 {
	switch row[string(models.KeyStatus)] {
	case StatusUp, StatusOpen:
		return 1
	default:
		return 0
	}
}
