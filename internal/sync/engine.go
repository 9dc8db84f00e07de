// Package sync moves records from the WhatsApp event loop into the store
// on a worker goroutine, so slow SQLite writes never stall whatsmeow.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"sync/atomic"

	"github.com/matheus3301/wppview/internal/store"
	"go.uber.org/zap"
)

// ErrStopped is returned for writes submitted after Stop.
var ErrStopped = errors.New("ingest engine stopped")

// DefaultQueueSize is the number of pending jobs before writers block.
const DefaultQueueSize = 256

// Store is where the engine writes.
type Store interface {
	UpsertRecords(recs []*store.Record) error
	SetCheckpoint(key, value string) error
}

// Stats counts what the engine has written.
type Stats struct {
	Records int64
	Batches int64
	Failed  int64
}

type job struct {
	recs []*store.Record
	key  string
	val  string
}

// Engine queues writes and applies them in order on one goroutine. It
// satisfies wa.Sink.
type Engine struct {
	store  Store
	logger *zap.Logger
	queue  chan job
	done   chan struct{}

	mu      gosync.RWMutex
	started bool
	stopped bool

	records atomic.Int64
	batches atomic.Int64
	failed  atomic.Int64
}

// NewEngine creates a new ingest engine. queueSize <= 0 uses DefaultQueueSize.
func NewEngine(st Store, queueSize int, logger *zap.Logger) *Engine {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  st,
		logger: logger,
		queue:  make(chan job, queueSize),
		done:   make(chan struct{}),
	}
}

// Start runs the worker until Stop drains the queue. Calls after the
// first, or after Stop, do nothing.
func (e *Engine) Start(_ context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	go e.run()
}

// Stop rejects new writes, applies everything queued and waits for the
// worker. Without a prior Start the queue is applied on the caller's
// goroutine. It is safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.stopped = true
	close(e.queue)
	started := e.started
	e.mu.Unlock()
	if !started {
		e.run()
	}
	<-e.done
}

func (e *Engine) run() {
	defer close(e.done)
	for j := range e.queue {
		e.apply(j)
	}
}

// UpsertRecord queues one record.
func (e *Engine) UpsertRecord(r *store.Record) error {
	return e.enqueue(job{recs: []*store.Record{r}})
}

// UpsertRecords queues a batch written in one transaction.
func (e *Engine) UpsertRecords(recs []*store.Record) error {
	if len(recs) == 0 {
		return nil
	}
	return e.enqueue(job{recs: recs})
}

// SetCheckpoint queues a checkpoint update, applied after every write
// queued before it.
func (e *Engine) SetCheckpoint(key, value string) error {
	return e.enqueue(job{key: key, val: value})
}

// Stats returns the counters so far.
func (e *Engine) Stats() Stats {
	return Stats{
		Records: e.records.Load(),
		Batches: e.batches.Load(),
		Failed:  e.failed.Load(),
	}
}

func (e *Engine) enqueue(j job) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.stopped {
		return ErrStopped
	}
	e.queue <- j
	return nil
}

func (e *Engine) apply(j job) {
	if j.key != "" {
		if err := e.store.SetCheckpoint(j.key, j.val); err != nil {
			e.logger.Warn("failed to update checkpoint", zap.String("key", j.key), zap.Error(err))
		}
		return
	}
	if err := e.store.UpsertRecords(j.recs); err != nil {
		e.failed.Add(int64(len(j.recs)))
		e.logger.Error("failed to ingest records",
			zap.Error(fmt.Errorf("upsert %d records: %w", len(j.recs), err)),
			zap.String("first_msg_id", j.recs[0].MsgID))
		return
	}
	e.records.Add(int64(len(j.recs)))
	e.batches.Add(1)
	if len(j.recs) > 1 {
		e.logger.Info("history batch ingested", zap.Int("records", len(j.recs)))
	}
}
