package agent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gophaproxy/internal/models"
	"github.com/sbilibin2017/gophaproxy/internal/stats"
)

const (
	lbA models.Source = "http://lb-a/stats;csv"
	lbB models.Source = "http://lb-b/stats;csv"
)

func rowsWith(stot, act string) []models.StatsRow {
	return []models.StatsRow{
		{"pxname": "web", "svname": "FRONTEND", "stot": stot, "act": act, "status": "OPEN"},
		{"pxname": "web", "svname": "BACKEND", "stot": "999", "act": "9", "status": "UP"},
		{"pxname": "stats", "svname": "FRONTEND", "stot": "5"},
	}
}

func TestPoller_RunCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := NewMockFetcher(ctrl)
	reporter := NewMockReporter(ctrl)

	gomock.InOrder(
		fetcher.EXPECT().Fetch(gomock.Any(), lbA).Return(&models.FetchResult{Source: lbA, Rows: rowsWith("100", "2")}),
		fetcher.EXPECT().Fetch(gomock.Any(), lbA).Return(&models.FetchResult{Source: lbA, Rows: rowsWith("150", "2")}),
	)
	gomock.InOrder(
		fetcher.EXPECT().Fetch(gomock.Any(), lbB).Return(&models.FetchResult{Source: lbB, Rows: rowsWith("200", "4")}),
		fetcher.EXPECT().Fetch(gomock.Any(), lbB).Return(&models.FetchResult{Source: lbB, Rows: rowsWith("170", "4")}),
	)

	var reported []models.Snapshot
	reporter.EXPECT().Report(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, s models.Snapshot) error {
			reported = append(reported, s)
			return nil
		},
	).Times(2)

	p := NewPoller(
		[]models.Source{lbA, lbB},
		stats.Selector{ProxyName: "web", ServiceType: "frontend"},
		fetcher, reporter, nil,
	)

	first, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	second, err := p.RunCycle(context.Background())
	require.NoError(t, err)

	require.Len(t, reported, 2)
	assert.Equal(t, first, reported[0])
	assert.Equal(t, int64(0), first.Get(models.KeyTotalSessions))
	assert.Equal(t, int64(50), second.Get(models.KeyTotalSessions))
	assert.Equal(t, int64(3), second.Get(models.KeyActiveServers))
	assert.Equal(t, int64(1), second.Get(models.KeyStatus))
	assert.Equal(t, 2, second.Reporting)
}

func TestPoller_RunCycle_UnavailableSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := NewMockFetcher(ctrl)
	reporter := NewMockReporter(ctrl)

	fetcher.EXPECT().Fetch(gomock.Any(), lbA).
		Return(&models.FetchResult{Source: lbA, Rows: rowsWith("10", "2")})
	fetcher.EXPECT().Fetch(gomock.Any(), lbB).
		Return(&models.FetchResult{Source: lbB, Err: errors.New("connection refused")})
	reporter.EXPECT().Report(gomock.Any(), gomock.Any()).Return(nil)

	p := NewPoller(
		[]models.Source{lbA, lbB},
		stats.Selector{ProxyName: "web", ServiceType: "frontend"},
		fetcher, reporter, nil,
	)

	snap, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Reporting)
	assert.Equal(t, 2, snap.Sources)
	assert.Equal(t, int64(1), snap.Get(models.KeyActiveServers))
}

func TestPoller_RunCycle_NilResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := NewMockFetcher(ctrl)
	reporter := NewMockReporter(ctrl)

	fetcher.EXPECT().Fetch(gomock.Any(), lbA).Return(nil)
	reporter.EXPECT().Report(gomock.Any(), gomock.Any()).Return(nil)

	p := NewPoller([]models.Source{lbA}, stats.Selector{ProxyName: "web"}, fetcher, reporter, nil)

	snap, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Reporting)
}

func TestPoller_RunCycle_ReportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := NewMockFetcher(ctrl)
	reporter := NewMockReporter(ctrl)
	reportErr := errors.New("server unavailable")

	fetcher.EXPECT().Fetch(gomock.Any(), lbA).Return(&models.FetchResult{Source: lbA})
	reporter.EXPECT().Report(gomock.Any(), gomock.Any()).Return(reportErr)

	p := NewPoller([]models.Source{lbA}, stats.Selector{ProxyName: "web"}, fetcher, reporter, nil)

	_, err := p.RunCycle(context.Background())
	assert.ErrorIs(t, err, reportErr)
}

func TestPoller_Start(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := NewMockFetcher(ctrl)
	reporter := NewMockReporter(ctrl)

	var cycles atomic.Int32
	fetcher.EXPECT().Fetch(gomock.Any(), lbA).
		Return(&models.FetchResult{Source: lbA, Rows: rowsWith("1", "1")}).
		MinTimes(2)
	reporter.EXPECT().Report(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, models.Snapshot) error {
			cycles.Add(1)
			return errors.New("report failures do not stop the loop")
		}).
		MinTimes(2)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	p := NewPoller([]models.Source{lbA}, stats.Selector{ProxyName: "web"}, fetcher, reporter, ticker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	require.Eventually(t, func() bool { return cycles.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
