package cart

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

const (
	defaultSweepInterval  = 1 * time.Hour
	defaultSweepBatchSize = 500
	defaultCartRetention  = 7 * 24 * time.Hour
)

var (
	cartSweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_cart_sweep_runs_total",
		Help: "Total number of abandoned cart sweep runs grouped by result.",
	}, []string{"result"})
	cartSweepDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookstore_cart_sweep_deleted_total",
		Help: "Total number of deleted abandoned carts.",
	})
	cartSweepLastDeleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookstore_cart_sweep_last_deleted",
		Help: "Number of deleted carts during the last sweep run.",
	})
)

// SweepOptions задает параметры воркера очистки брошенных корзин.
type SweepOptions struct {
	Logger    *log.Entry
	Interval  time.Duration
	BatchSize int
	Retention time.Duration
}

// SweepOption настраивает SweepWorker.
type SweepOption func(*SweepOptions)

// WithLogger задает logger для воркера.
func WithLogger(logger *log.Entry) SweepOption {
	return func(opts *SweepOptions) {
		opts.Logger = logger
	}
}

// WithInterval задает интервал между sweep-циклами.
func WithInterval(interval time.Duration) SweepOption {
	return func(opts *SweepOptions) {
		opts.Interval = interval
	}
}

// WithBatchSize задает размер batch для одного удаления.
func WithBatchSize(batchSize int) SweepOption {
	return func(opts *SweepOptions) {
		opts.BatchSize = batchSize
	}
}

// WithRetention задает срок, после которого корзина считается брошенной.
func WithRetention(retention time.Duration) SweepOption {
	return func(opts *SweepOptions) {
		opts.Retention = retention
	}
}

// SweepWorker периодически удаляет корзины, не менявшиеся дольше retention.
type SweepWorker struct {
	repo      domain.CartRepository
	logger    *log.Entry
	interval  time.Duration
	batchSize int
	retention time.Duration
}

// NewSweepWorker создает воркер очистки брошенных корзин.
func NewSweepWorker(repo domain.CartRepository, options ...SweepOption) *SweepWorker {
	opts := SweepOptions{
		Interval:  defaultSweepInterval,
		BatchSize: defaultSweepBatchSize,
		Retention: defaultCartRetention,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "cart-sweep-worker")
	}

	if opts.Interval <= 0 {
		opts.Interval = defaultSweepInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultSweepBatchSize
	}
	if opts.Retention <= 0 {
		opts.Retention = defaultCartRetention
	}

	return &SweepWorker{
		repo:      repo,
		logger:    logger,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
		retention: opts.Retention,
	}
}

// Run запускает периодическую очистку до отмены ctx.
func (w *SweepWorker) Run(ctx context.Context) {
	if w.repo == nil {
		w.logger.Warn("cart sweep worker is disabled: repo is nil")
		return
	}

	w.sweep(ctx, time.Now().UTC().Add(-w.retention))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx, time.Now().UTC().Add(-w.retention))
		}
	}
}

func (w *SweepWorker) sweep(ctx context.Context, before time.Time) {
	deleted, err := w.DeleteExpired(ctx, before)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		cartSweepRunsTotal.WithLabelValues("error").Inc()
		w.logger.WithError(err).Warn("cart sweep run failed")
		return
	}

	cartSweepRunsTotal.WithLabelValues("ok").Inc()
	cartSweepLastDeleted.Set(float64(deleted))
	if deleted > 0 {
		w.logger.WithField("deleted", deleted).Info("cart sweep completed")
	}
}

// DeleteExpired удаляет все корзины с updated_at < before порциями batchSize.
func (w *SweepWorker) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC().Add(-w.retention)
	}

	totalDeleted := 0
	for {
		if err := ctx.Err(); err != nil {
			return totalDeleted, err
		}

		deleted, err := w.repo.DeleteExpired(before, w.batchSize)
		if err != nil {
			return totalDeleted, err
		}

		totalDeleted += deleted
		if deleted > 0 {
			cartSweepDeletedTotal.Add(float64(deleted))
		}

		if deleted < w.batchSize {
			break
		}
	}

	return totalDeleted, nil
}
