package agent

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sbilibin2017/gophaproxy/internal/logger"
	"github.com/sbilibin2017/gophaproxy/internal/models"
	"github.com/sbilibin2017/gophaproxy/internal/stats"
)

//go:generate mockgen -source=agent.go -destination=mock_agent.go -package=agent

// Fetcher loads the stats rows of one source.
type Fetcher interface {
	// Fetch never fails; an unavailable source is reported through FetchResult.Err.
	Fetch(ctx context.Context, source models.Source) *models.FetchResult
}

// Reporter receives the snapshot of every poll cycle.
type Reporter interface {
	// Report delivers a snapshot downstream.
	Report(ctx context.Context, snapshot models.Snapshot) error
}

// Poller runs poll cycles over a fixed set of sources.
type Poller struct {
	sources    []models.Source
	selector   stats.Selector
	aggregator *stats.Aggregator
	fetcher    Fetcher
	reporter   Reporter
	pollTicker *time.Ticker
}

// NewPoller creates a Poller. pollTicker drives Start; it may be nil when only
// RunCycle is used.
func NewPoller(
	sources []models.Source,
	selector stats.Selector,
	fetcher Fetcher,
	reporter Reporter,
	pollTicker *time.Ticker,
) *Poller {
	return &Poller{
		sources:    sources,
		selector:   selector,
		aggregator: stats.NewAggregator(sources),
		fetcher:    fetcher,
		reporter:   reporter,
		pollTicker: pollTicker,
	}
}

// Start runs a cycle immediately and then one per tick until ctx is done.
// Fetch and report failures are logged and do not stop the loop.
func (p *Poller) Start(ctx context.Context) error {
	p.runAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.pollTicker.C:
			p.runAndLog(ctx)
		}
	}
}

func (p *Poller) runAndLog(ctx context.Context) {
	snapshot, err := p.RunCycle(ctx)
	if err != nil {
		logger.Log.Error("report failed",
			zap.Int("sources", snapshot.Sources),
			zap.Int("reporting", snapshot.Reporting),
			zap.Error(err),
		)
	}
}

// RunCycle fetches every source in parallel, aggregates the selected rows and
// hands the snapshot to the reporter. The returned error is the reporter's.
func (p *Poller) RunCycle(ctx context.Context) (models.Snapshot, error) {
	perSource := p.collect(ctx)
	snapshot := p.aggregator.RunCycle(perSource)
	return snapshot, p.reporter.Report(ctx, snapshot)
}

// collect waits for every fetch before returning so aggregation never sees a
// partial cycle.
func (p *Poller) collect(ctx context.Context) map[models.Source][]models.StatsRow {
	results := make([]*models.FetchResult, len(p.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range p.sources {
		g.Go(func() error {
			results[i] = p.fetcher.Fetch(gctx, src)
			return nil
		})
	}
	_ = g.Wait()

	perSource := make(map[models.Source][]models.StatsRow, len(p.sources))
	for i, src := range p.sources {
		res := results[i]
		if res == nil {
			continue
		}
		if res.Err != nil {
			logger.Log.Error("unable to read stats page",
				zap.String("source", string(src)),
				zap.Error(res.Err),
			)
			continue
		}

		rows := p.selector.Rows(res.Rows)
		if len(rows) == 0 {
			logger.Log.Debug("no matching rows",
				zap.String("source", string(src)),
				zap.String("proxy", p.selector.ProxyName),
			)
			continue
		}

		logger.Log.Info("Collecting data from",
			zap.String("source", string(src)),
			zap.Int("rows", len(rows)),
		)
		perSource[src] = rows
	}
	return perSource
}
