// Package correctionstore keeps a history of applied corrections.
package correctionstore

import (
	"codeberg.org/smarttype/smarttype/pkg/smarttype"
	"context"
	"go.uber.org/zap"
	"time"
)

const DefaultQueueSize = 64

// AsyncRecorder queues corrections so the device listeners never wait on
// the store.
type AsyncRecorder struct {
	store smarttype.CorrectionStore
	queue chan smarttype.CorrectionRecord
	now   func() time.Time

	log *zap.SugaredLogger
}

func NewAsyncRecorder(store smarttype.CorrectionStore, queueSize int, log *zap.SugaredLogger) *AsyncRecorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &AsyncRecorder{
		store: store,
		queue: make(chan smarttype.CorrectionRecord, queueSize),
		now:   time.Now,
		log:   log,
	}
}

// Record queues pair, dropping it if the queue is full.
func (r *AsyncRecorder) Record(pair smarttype.CorrectionPair) {
	select {
	case r.queue <- smarttype.CorrectionRecord{Pair: pair, At: r.now()}:
	default:
		r.log.Warnw("correction history queue full, dropping record", "correction", pair.String())
	}
}

// SaveLooper writes queued records until ctx is done, then flushes what is
// left in the queue.
func (r *AsyncRecorder) SaveLooper(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return ctx.Err()
		case record := <-r.queue:
			r.save(record)
		}
	}
}

func (r *AsyncRecorder) drain() {
	for {
		select {
		case record := <-r.queue:
			r.save(record)
		default:
			return
		}
	}
}

func (r *AsyncRecorder) save(record smarttype.CorrectionRecord) {
	if err := r.store.AddCorrection(record); err != nil {
		r.log.Warnw("save correction", "correction", record.Pair.String(), "error", err)
	}
}
