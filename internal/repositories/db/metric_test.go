package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbConfig "github.com/sbilibin2017/gophaproxy/internal/configs/db"
	"github.com/sbilibin2017/gophaproxy/internal/models"
)

func setupSQLite(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := dbConfig.New(dbConfig.DriverSQLite, filepath.Join(t.TempDir(), "history.db"), dbConfig.WithMaxOpenConns(1))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, dbConfig.Migrate(conn, filepath.Join("..", "..", "..", "migrations")))
	return conn
}

func TestMetricRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMetricRepository(setupSQLite(t))
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, models.NewCounter("Requests", "requests", 5, at)))
	require.NoError(t, repo.Save(ctx, models.NewCounter("Requests", "requests", 8, at.Add(time.Minute))))
	require.NoError(t, repo.Save(ctx, models.NewGauge("ProxyUp", "status", 1, at)))

	got, err := repo.Get(ctx, models.MetricID{ID: "Requests", MType: models.Counter})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "requests", got.Unit)
	require.NotNil(t, got.Delta)
	assert.Equal(t, int64(8), *got.Delta)
	assert.Nil(t, got.Value)

	gauge, err := repo.Get(ctx, models.MetricID{ID: "ProxyUp", MType: models.Gauge})
	require.NoError(t, err)
	require.NotNil(t, gauge.Value)
	assert.Equal(t, 1.0, *gauge.Value)

	missing, err := repo.Get(ctx, models.MetricID{ID: "Bytes/Sent", MType: models.Counter})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMetricRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewMetricRepository(setupSQLite(t))
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, models.NewGauge("Servers/Active", "servers", 2, at)))
	require.NoError(t, repo.Save(ctx, models.NewGauge("Servers/Active", "servers", 3, at.Add(time.Minute))))
	require.NoError(t, repo.Save(ctx, models.NewCounter("Bytes/Sent", "bytes", 100, at)))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bytes/Sent", list[0].ID)
	assert.Equal(t, "Servers/Active", list[1].ID)
	assert.Equal(t, 3.0, *list[1].Value)
}

func TestMetricRepository_History(t *testing.T) {
	ctx := context.Background()
	repo := NewMetricRepository(setupSQLite(t))
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, repo.Save(ctx, models.NewCounter("Errors/Request", "errors", i, at.Add(time.Duration(i)*time.Minute))))
	}

	history, err := repo.History(ctx, "Errors/Request", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(5), *history[0].Delta)
	assert.Equal(t, int64(4), *history[1].Delta)

	all, err := repo.History(ctx, "Errors/Request", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := repo.History(ctx, "Errors/Response", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMetricRepository_Prune(t *testing.T) {
	ctx := context.Background()
	repo := NewMetricRepository(setupSQLite(t))
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, models.NewCounter("Requests", "requests", 1, at.Add(-2*time.Hour))))
	require.NoError(t, repo.Save(ctx, models.NewCounter("Requests", "requests", 2, at.Add(-time.Hour))))
	require.NoError(t, repo.Save(ctx, models.NewGauge("ProxyUp", "status", 1, at)))

	removed, err := repo.Prune(ctx, at.Add(-90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	history, err := repo.History(ctx, "Requests", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(2), *history[0].Delta)
}
