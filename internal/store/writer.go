package store

import (
	"context"
	"sync"
	"time"

	"notes/internal/errors"
	"notes/internal/storage"

	"go.uber.org/zap"
)

// writer owns every durable write after the store is loaded. Only the newest
// pending snapshot is kept, so a burst of mutations costs one or two puts.
type writer struct {
	kv      storage.KV
	key     string
	timeout time.Duration
	log     *zap.Logger
	warn    func(error)

	mu         sync.Mutex
	pending    []byte
	hasPending bool
	enqueued   uint64
	written    uint64
	advanced   chan struct{}
	lastErr    error
	closed     bool

	wake   chan struct{}
	stop   chan struct{}
	exited chan struct{}
}

func newWriter(kv storage.KV, key string, timeout time.Duration, log *zap.Logger, warn func(error)) *writer {
	w := &writer{
		kv:       kv,
		key:      key,
		timeout:  timeout,
		log:      log,
		warn:     warn,
		advanced: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue replaces the pending snapshot. It returns false once the writer
// has been closed.
func (w *writer) enqueue(data []byte) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	w.pending = data
	w.hasPending = true
	w.enqueued++
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return true
}

func (w *writer) run() {
	defer close(w.exited)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		if !w.hasPending {
			w.mu.Unlock()
			return
		}
		data, gen := w.pending, w.enqueued
		w.pending, w.hasPending = nil, false
		w.mu.Unlock()

		err := putWithTimeout(w.kv, w.key, data, w.timeout)

		w.mu.Lock()
		w.written = gen
		w.lastErr = err
		close(w.advanced)
		w.advanced = make(chan struct{})
		w.mu.Unlock()

		if err != nil {
			w.warn(err)
		} else {
			w.log.Debug("items written", zap.String("key", w.key), zap.Int("bytes", len(data)), zap.Uint64("generation", gen))
		}
	}
}

// flush waits until every snapshot enqueued before the call was attempted and
// returns the error of the most recent attempt.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.enqueued
	for w.written < target {
		ch := w.advanced
		w.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return errors.NewTimeoutError("flush", ctx.Err().Error())
		}
		w.mu.Lock()
	}
	err := w.lastErr
	w.mu.Unlock()
	return err
}

func (w *writer) close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.stop)
	}
	w.mu.Unlock()

	select {
	case <-w.exited:
	case <-ctx.Done():
		return errors.NewTimeoutError("close", ctx.Err().Error())
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// writeInline puts data on the caller's goroutine once the background loop
// has exited. The result becomes the most recent write seen by flush.
func (w *writer) writeInline(data []byte) error {
	<-w.exited
	err := putWithTimeout(w.kv, w.key, data, w.timeout)

	w.mu.Lock()
	w.lastErr = err
	w.mu.Unlock()
	return err
}

func putWithTimeout(kv storage.KV, key string, data []byte, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := kv.Put(ctx, key, data); err != nil {
		return storageError("write "+key, err)
	}
	return nil
}
