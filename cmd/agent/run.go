package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sbilibin2017/gophaproxy/internal/agent"
	"github.com/sbilibin2017/gophaproxy/internal/configs"
	"github.com/sbilibin2017/gophaproxy/internal/configs/address"
	"github.com/sbilibin2017/gophaproxy/internal/configs/compressor"
	"github.com/sbilibin2017/gophaproxy/internal/configs/db"
	"github.com/sbilibin2017/gophaproxy/internal/configs/hasher"
	"github.com/sbilibin2017/gophaproxy/internal/logger"
	"github.com/sbilibin2017/gophaproxy/internal/repositories/file"
	"github.com/sbilibin2017/gophaproxy/internal/repositories/memory"
	"github.com/sbilibin2017/gophaproxy/internal/runner"
	"github.com/sbilibin2017/gophaproxy/internal/services"
	"github.com/sbilibin2017/gophaproxy/internal/stats"
	"github.com/sbilibin2017/gophaproxy/internal/worker"
	"github.com/sbilibin2017/gophaproxy/migrations"

	httpClient "github.com/sbilibin2017/gophaproxy/internal/configs/transport/http"
	httpFacades "github.com/sbilibin2017/gophaproxy/internal/facades/http"
	httpHandlers "github.com/sbilibin2017/gophaproxy/internal/handlers/http"
	httpMiddlewares "github.com/sbilibin2017/gophaproxy/internal/middlewares/http"
	dbRepo "github.com/sbilibin2017/gophaproxy/internal/repositories/db"
)

// Stats pages are fetched once per cycle; a slow source must not stall the next one.
var statsRetry = httpClient.RetryPolicy{
	Count:   2,
	Wait:    200 * time.Millisecond,
	MaxWait: time.Second,
}

// Pushes to the metrics server retry longer since a lost batch is a lost interval.
var reportRetry = httpClient.RetryPolicy{
	Count:   3,
	Wait:    500 * time.Millisecond,
	MaxWait: 5 * time.Second,
}

const (
	requestTimeout = 5 * time.Second
	pruneEvery     = 10 * time.Minute
)

// historyStore is a sink that also keeps past values.
type historyStore interface {
	services.Writer
	services.HistoryReader
	worker.HistoryReader
	worker.HistoryPruner
}

// run wires the poller, its report sinks and the optional status server,
// then blocks until ctx is done or one of them fails.
func run(ctx context.Context, cfg *configs.AgentConfig) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Log.Sync()

	sources, err := cfg.Sources()
	if err != nil {
		return err
	}

	statsClient, err := httpClient.New("",
		httpClient.WithRetryPolicy(statsRetry),
		httpClient.WithTimeout(requestTimeout),
		httpClient.WithBasicAuth(cfg.User, cfg.Password),
	)
	if err != nil {
		return err
	}
	fetcher := httpFacades.NewStatsHTTPFacade(statsClient)

	latest := memory.NewMetricRepository()
	writers := []services.Writer{latest}
	var (
		updaters []services.Updater
		stores   []historyStore
		pinger   httpHandlers.Pinger
	)

	if cfg.SnapshotFile != "" {
		stores = append(stores, file.NewMetricRepository(cfg.SnapshotFile))
	}

	if cfg.DatabaseDSN != "" {
		conn, err := db.New(db.Driver(cfg.DatabaseDSN), cfg.DatabaseDSN,
			db.WithMaxOpenConns(10),
			db.WithMaxIdleConns(5),
			db.WithConnMaxLifetime(30*time.Minute),
		)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := migrate(conn, cfg.MigrationsDir); err != nil {
			return err
		}

		stores = append(stores, dbRepo.NewMetricRepository(conn))
		pinger = conn
	}

	// The last configured store, the database when present, answers /history.
	var history services.HistoryReader
	var historyWorker *worker.HistoryWorker
	if len(stores) > 0 {
		preferred := stores[len(stores)-1]
		history = preferred

		pruners := make([]worker.HistoryPruner, 0, len(stores))
		for _, st := range stores {
			writers = append(writers, st)
			pruners = append(pruners, st)
		}

		var pruneTicker *time.Ticker
		if cfg.Retention > 0 {
			pruneTicker = time.NewTicker(pruneEvery)
			defer pruneTicker.Stop()
		}
		historyWorker = worker.NewHistoryWorker(preferred, latest, cfg.RetentionWindow(), pruneTicker, pruners...)

		if err := historyWorker.Restore(ctx); err != nil {
			return err
		}
	}

	if cfg.Address != "" {
		updater, err := newMetricUpdater(cfg)
		if err != nil {
			return err
		}
		updaters = append(updaters, updater)
	}

	pollTicker := time.NewTicker(cfg.PollEvery())
	defer pollTicker.Stop()

	poller := agent.NewPoller(
		sources,
		stats.Selector{ProxyName: cfg.Proxy, ServiceType: cfg.ProxyType},
		fetcher,
		services.NewReportService(writers, updaters),
		pollTicker,
	)

	r := runner.NewRunner()
	r.AddWorker(poller)
	if historyWorker != nil {
		r.AddWorker(historyWorker)
	}

	if cfg.Listen != "" {
		router, err := newRouter(cfg, services.NewMetricService(latest, history), pinger)
		if err != nil {
			return err
		}
		r.AddHTTPServer(&http.Server{
			Addr:              cfg.Listen,
			Handler:           router,
			ReadHeaderTimeout: requestTimeout,
		})
	}

	if cfg.ConfigFile != "" {
		r.AddWorker(runner.WorkerFunc(func(ctx context.Context) error {
			return configs.Watch(ctx, cfg.ConfigFile, applyReload)
		}))
	}

	logger.Log.Info("agent started",
		zap.String("name", cfg.Name),
		zap.String("proxy", cfg.Proxy),
		zap.Int("sources", len(sources)),
		zap.Duration("poll_interval", cfg.PollEvery()),
	)

	return r.Run(ctx)
}

// newMetricUpdater builds the client pushing gzip JSON batches to the metrics server.
func newMetricUpdater(cfg *configs.AgentConfig) (*httpFacades.MetricHTTPFacade, error) {
	target, err := address.Parse(cfg.Address)
	if err != nil {
		return nil, err
	}

	client, err := httpClient.New(target.String(),
		httpClient.WithRetryPolicy(reportRetry),
		httpClient.WithTimeout(requestTimeout),
	)
	if err != nil {
		return nil, err
	}

	opts := []httpFacades.MetricFacadeOpt{httpFacades.WithCompressor(compressor.New())}
	if h := hasher.New(cfg.Key); h != nil {
		opts = append(opts, httpFacades.WithHasher(h))
	}
	return httpFacades.NewMetricHTTPFacade(client, opts...), nil
}

// newRouter builds the status server routes.
func newRouter(cfg *configs.AgentConfig, svc *services.MetricService, pinger httpHandlers.Pinger) (http.Handler, error) {
	subnet, err := httpMiddlewares.TrustedSubnetMiddleware(cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	var signer httpMiddlewares.Hasher
	if h := hasher.New(cfg.Key); h != nil {
		signer = h
	}

	r := chi.NewRouter()
	r.Use(httpMiddlewares.LoggingMiddleware)
	r.Use(subnet)
	r.Use(httpMiddlewares.GzipMiddleware(compressor.New()))
	r.Use(httpMiddlewares.HashMiddleware(signer, hasher.Header))

	r.Get("/", httpHandlers.NewMetricListHTMLHandler(svc))
	r.Get("/snapshot", httpHandlers.NewSnapshotJSONHandler(svc))
	r.Get("/metrics", httpHandlers.NewMetricsExpositionHandler(svc, cfg.Name))
	r.Get("/history", httpHandlers.NewMetricHistoryHandler(svc))
	r.Get("/value/{type}/*", httpHandlers.NewMetricGetPathHandler(svc))
	r.Get("/ping", httpHandlers.NewPingHandler(pinger))

	return r, nil
}

// applyReload applies the settings that can change without a restart.
func applyReload(cfg *configs.AgentConfig) {
	if cfg.LogLevel == "" {
		return
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Log.Error("invalid log level in config", zap.String("level", cfg.LogLevel), zap.Error(err))
		return
	}
	logger.Log.Info("log level changed", zap.String("level", cfg.LogLevel))
}

// migrate applies the migrations in dir, or the embedded set when dir is empty.
func migrate(conn *sqlx.DB, dir string) error {
	if dir != "" {
		return db.Migrate(conn, dir)
	}
	return db.MigrateFS(conn, migrations.FS)
}
