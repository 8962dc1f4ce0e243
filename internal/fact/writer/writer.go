// Package writer accumulates normalized facts and flushes them in bulk.
package writer

import (
	"context"
	"fmt"
	"sync"

	"github.com/costlens/costlens/internal/config"
	factdomain "github.com/costlens/costlens/internal/fact/domain"
	obsmetrics "github.com/costlens/costlens/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// DefaultBatchSize is the flush threshold used when config leaves it unset.
const DefaultBatchSize = 2000

type Params struct {
	fx.In

	Log     *zap.Logger
	Store   factdomain.BulkStore
	Config  config.Config
	Metrics *obsmetrics.Metrics `optional:"true"`
}

// BatchWriter buffers facts up to a threshold and writes each full batch as
// one duplicate-tolerant bulk insert. The buffer is explicit instance state,
// never package-global, so concurrent uploads own independent writers and
// tests can reset cleanly.
type BatchWriter struct {
	log     *zap.Logger
	store   factdomain.BulkStore
	metrics *obsmetrics.Metrics

	mu        sync.Mutex
	buf       []*factdomain.BillingUsageFact
	threshold int
	attempted int64
}

func New(p Params) *BatchWriter {
	threshold := p.Config.FlushBatchSize
	if threshold <= 0 {
		threshold = DefaultBatchSize
	}
	return &BatchWriter{
		log:       p.Log.Named("fact.writer"),
		store:     p.Store,
		metrics:   p.Metrics,
		threshold: threshold,
		buf:       make([]*factdomain.BillingUsageFact, 0, threshold),
	}
}

// NewWithThreshold builds a writer outside the fx graph, mainly for pipelines
// that size batches per upload.
func NewWithThreshold(log *zap.Logger, store factdomain.BulkStore, threshold int) *BatchWriter {
	if threshold <= 0 {
		threshold = DefaultBatchSize
	}
	return &BatchWriter{
		log:       log.Named("fact.writer"),
		store:     store,
		threshold: threshold,
		buf:       make([]*factdomain.BillingUsageFact, 0, threshold),
	}
}

// Append buffers one fact. Reaching the threshold triggers exactly one
// automatic flush of the full buffer; the flush-threshold check and the
// buffer swap happen under the lock so concurrent appends cannot race into
// two overlapping flushes of the same rows.
func (w *BatchWriter) Append(ctx context.Context, fact *factdomain.BillingUsageFact) error {
	if fact == nil {
		return nil
	}

	w.mu.Lock()
	w.buf = append(w.buf, fact)
	w.attempted++
	var batch []*factdomain.BillingUsageFact
	if len(w.buf) >= w.threshold {
		batch = w.buf
		w.buf = make([]*factdomain.BillingUsageFact, 0, w.threshold)
	}
	w.mu.Unlock()

	if batch == nil {
		return nil
	}
	return w.write(ctx, batch)
}

// Flush writes whatever is buffered, swapping the buffer out first so new
// appends never block on the bulk insert.
func (w *BatchWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	batch := w.buf
	w.buf = make([]*factdomain.BillingUsageFact, 0, w.threshold)
	w.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return w.write(ctx, batch)
}

func (w *BatchWriter) write(ctx context.Context, batch []*factdomain.BillingUsageFact) error {
	if err := w.store.BulkInsert(ctx, batch); err != nil {
		w.metrics.RecordFlushFailure(ctx)
		w.log.Error("fact batch flush failed",
			zap.Int("batch_size", len(batch)),
			zap.Error(err),
		)
		// The buffer was already swapped, so the caller must re-submit the
		// batch's source rows to retry. Partial success is not modeled.
		return fmt.Errorf("%w: batch of %d rows: %v", factdomain.ErrFlushFailed, len(batch), err)
	}

	w.metrics.RecordFlush(ctx, len(batch))
	w.log.Debug("fact batch flushed", zap.Int("batch_size", len(batch)))
	return nil
}

// Buffered returns the number of facts waiting for the next flush.
func (w *BatchWriter) Buffered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buf)
}

// Attempted returns the running count of appended rows. Across a run it
// equals buffered plus flushed rows.
func (w *BatchWriter) Attempted() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attempted
}

// Reset discards the buffer and counter for test isolation.
func (w *BatchWriter) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = make([]*factdomain.BillingUsageFact, 0, w.threshold)
	w.attempted = 0
}
