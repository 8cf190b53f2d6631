package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rosterhq/roster/internal/api"
	"github.com/rosterhq/roster/internal/app/roster"
	"github.com/rosterhq/roster/internal/domain"
	"github.com/rosterhq/roster/internal/health"
	"github.com/rosterhq/roster/internal/infra/bandit"
	"github.com/rosterhq/roster/internal/infra/embedding"
	"github.com/rosterhq/roster/internal/infra/scheduler"
	"github.com/rosterhq/roster/internal/infra/sqlite"
)

// Daemon is the core roster runtime. It wires together the storage
// layer, the embedding provider, the Engine, the health checker, and
// the ops API server — the domain equivalent of the teacher's
// daemon.Daemon.
type Daemon struct {
	Config     Config
	DB         *sqlite.DB
	Embeddings domain.EmbeddingProvider
	Clock      domain.Clock
	Engine     *roster.Engine
	Health     *health.Checker
	Server     *api.Server

	// Scheduler is the intake queue a backlog-processing command (or a
	// future background worker) drains through Engine.AssignTask. It is
	// deliberately not on the synchronous assign/complete path (§4.5,
	// §4.7 run directly against the store).
	Scheduler *scheduler.Scheduler

	cancel  context.CancelFunc
	started time.Time
}

// New creates and initializes a Daemon using the on-disk config.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	storageDir := cfg.Storage.Dir
	if storageDir == "" {
		storageDir = rosterHome()
	}
	db, err := sqlite.Open(storageDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	provider := newEmbeddingProvider(cfg.Embedding)
	clock := domain.SystemClock{}
	started := time.Now()

	engCfg := roster.Config{
		EmbeddingDim: cfg.Embedding.Dim,
		SimilarityK:  cfg.Similarity.K,
		Bandit:       bandit.Config{Alpha: cfg.Bandit.Alpha, Lambda: cfg.Bandit.Lambda},
	}
	eng := roster.New(db, clock, provider, engCfg)

	minArmsAfter := time.Duration(cfg.Health.MinArmsAfterMinutes) * time.Minute
	checker := health.NewChecker(db, minArmsAfter, started)

	srv := api.NewServer(checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:     cfg,
		DB:         db,
		Embeddings: provider,
		Clock:      clock,
		Engine:     eng,
		Health:     checker,
		Server:     srv,
		Scheduler:  scheduler.NewScheduler(scheduler.DefaultConfig()),
		started:    started,
	}, nil
}

// newEmbeddingProvider builds the configured domain.EmbeddingProvider,
// always wrapped in the caching/circuit-breaker layer (§5 "Embedding
// Provider calls carry a bounded timeout").
func newEmbeddingProvider(cfg EmbeddingConfig) domain.EmbeddingProvider {
	dim := cfg.Dim
	if dim <= 0 {
		dim = 1536
	}
	var inner domain.EmbeddingProvider = embedding.NewDeterministicProvider(dim)
	return embedding.NewCachingProvider(inner, dim)
}

// Serve starts the ops HTTP server and the health check loop, and
// blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("roster ops server listening on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
