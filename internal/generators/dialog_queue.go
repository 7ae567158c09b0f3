package generators

import (
	"context"
	"fmt"
	"log"
	"sync"

	"go.uber.org/atomic"

	"wayfarer/internal/interfaces"
)

const defaultQueueSize = 100

// DialogQueue bounds concurrent generation work: requests queue up and a
// fixed worker pool drains them. The queue itself implements
// interfaces.DialogGenerator, so the engine never sees the pooling.
type DialogQueue struct {
	inner    interfaces.DialogGenerator
	requests chan *queueItem
	workers  int
	active   atomic.Int64

	startOnce sync.Once
	stopOnce  sync.Once
}

type queueItem struct {
	ctx    context.Context
	req    *interfaces.DialogRequest
	result chan queueResult
}

type queueResult struct {
	res *interfaces.DialogResult
	err error
}

// NewDialogQueue wraps a generator with a worker pool of the given size.
func NewDialogQueue(inner interfaces.DialogGenerator, workers, queueSize int) *DialogQueue {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &DialogQueue{
		inner:    inner,
		requests: make(chan *queueItem, queueSize),
		workers:  workers,
	}
}

// Start launches the workers. ctx stops them.
func (q *DialogQueue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		for i := 0; i < q.workers; i++ {
			go q.worker(ctx)
		}
		log.Printf("[DialogQueue] started %d workers", q.workers)
	})
}

// Stop closes the queue; queued requests still drain.
func (q *DialogQueue) Stop() {
	q.stopOnce.Do(func() {
		close(q.requests)
	})
}

// Active returns the number of requests currently being generated.
func (q *DialogQueue) Active() int64 {
	return q.active.Load()
}

func (q *DialogQueue) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-q.requests:
			if !ok {
				return
			}
			q.active.Inc()
			res, err := q.inner.GenerateDialog(item.ctx, item.req)
			q.active.Dec()

			select {
			case item.result <- queueResult{res: res, err: err}:
			case <-item.ctx.Done():
			}
		}
	}
}

// GenerateDialog implements interfaces.DialogGenerator: enqueue and wait.
// A full queue fails fast instead of blocking the engine.
func (q *DialogQueue) GenerateDialog(ctx context.Context, req *interfaces.DialogRequest) (*interfaces.DialogResult, error) {
	item := &queueItem{
		ctx:    ctx,
		req:    req,
		result: make(chan queueResult, 1),
	}

	select {
	case q.requests <- item:
	default:
		return nil, fmt.Errorf("dialog queue is full")
	}

	select {
	case r := <-item.result:
		return r.res, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
