package runner

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sbilibin2017/gophaproxy/internal/logger"
)

//go:generate mockgen -source=runner.go -destination=mock_runner.go -package=runner

// ShutdownTimeout bounds graceful HTTP server shutdown.
const ShutdownTimeout = 5 * time.Second

// Worker defines something that runs until its context is done.
type Worker interface {
	Start(ctx context.Context) error
}

// WorkerFunc adapts a function to Worker.
type WorkerFunc func(ctx context.Context) error

// Start calls f(ctx).
func (f WorkerFunc) Start(ctx context.Context) error {
	return f(ctx)
}

// HTTPServer defines HTTP server interface.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// Runner runs workers and HTTP servers together. The first failure stops
// the rest.
type Runner struct {
	mu      sync.Mutex
	workers []Worker
	servers []HTTPServer
}

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// AddWorker adds a Worker to be run later.
func (r *Runner) AddWorker(worker Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers = append(r.workers, worker)
}

// AddHTTPServer adds an HTTPServer to be run later.
func (r *Runner) AddHTTPServer(srv HTTPServer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.servers = append(r.servers, srv)
}

// Run starts everything added so far and blocks until all of it has
// stopped. It returns the first error, or nil when ctx ended the run.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	workers := append([]Worker(nil), r.workers...)
	servers := append([]HTTPServer(nil), r.servers...)
	r.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	for _, w := range workers {
		g.Go(func() error {
			return w.Start(gctx)
		})
	}
	for _, srv := range servers {
		g.Go(func() error {
			return serve(gctx, srv)
		})
	}

	return g.Wait()
}

// serve runs srv until it fails or ctx is done, then shuts it down.
func serve(ctx context.Context, srv HTTPServer) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("http server shutdown", zap.Error(err))
			return err
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
