package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// GenericQueue is a generic queue that can hold any comparable type of items.
// Items are processed in the order they were enqueued.
type GenericQueue[T comparable] struct {
	sync.RWMutex
	hasStarted  bool
	hasFinished bool
	startTime   time.Time
	finishTime  time.Time
	head        int
	items       []T
	success     []T
	skipped     []T
	inProgress  map[T]struct{}
}

// NewGenericQueue returns a pointer to a new [GenericQueue].
func NewGenericQueue[T comparable]() *GenericQueue[T] {
	return &GenericQueue[T]{
		inProgress: make(map[T]struct{}),
	}
}

// HasRemainingItems returns whether a queue has remaining items to process.
func (q *GenericQueue[T]) HasRemainingItems() bool {
	q.RLock()
	defer q.RUnlock()

	return q.head < len(q.items)
}

// GetSkipped returns a copy of all skipped items.
func (q *GenericQueue[T]) GetSkipped() []T {
	q.RLock()
	defer q.RUnlock()

	return append([]T(nil), q.skipped...)
}

// Enqueue adds items to the end of the queue. A finished queue is reopened.
func (q *GenericQueue[T]) Enqueue(items ...T) {
	q.Lock()
	defer q.Unlock()

	if q.hasFinished && len(items) > 0 {
		q.finishTime = time.Time{}
		q.hasFinished = false
	}

	for _, item := range items {
		delete(q.inProgress, item)
		q.items = append(q.items, item)
	}
}

// Dequeue returns the item at the head of the queue and advances the head.
func (q *GenericQueue[T]) Dequeue() (T, bool) { //nolint:ireturn
	q.Lock()
	defer q.Unlock()

	var item T

	if q.head >= len(q.items) {
		return item, false
	}

	if !q.hasStarted {
		q.startTime = time.Now()
		q.hasStarted = true
	}

	item = q.items[q.head]
	q.head++

	return item, true
}

// SetProcessing sets given items as in progress (processing).
func (q *GenericQueue[T]) SetProcessing(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		q.inProgress[item] = struct{}{}
	}
}

// SetSuccess sets given in-progress items as successfully processed.
func (q *GenericQueue[T]) SetSuccess(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.success = append(q.success, item)
	}

	q.checkFinished()
}

// SetSkipped sets given in-progress items as skipped.
func (q *GenericQueue[T]) SetSkipped(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.skipped = append(q.skipped, item)
	}

	q.checkFinished()
}

func (q *GenericQueue[T]) checkFinished() {
	if q.hasFinished || q.head < len(q.items) || len(q.inProgress) > 0 {
		return
	}

	q.finishTime = time.Now()
	q.hasFinished = true
}

// Progress returns the [Progress] for the [GenericQueue].
func (q *GenericQueue[T]) Progress() Progress {
	q.RLock()
	defer q.RUnlock()

	totalItems := len(q.items)

	return Progress{
		HasStarted:      q.hasStarted,
		HasFinished:     q.hasFinished,
		StartTime:       q.startTime,
		FinishTime:      q.finishTime,
		TotalItems:      totalItems,
		ProcessedItems:  min(len(q.success)+len(q.skipped), totalItems),
		InProgressItems: len(q.inProgress),
		SuccessItems:    len(q.success),
		SkippedItems:    len(q.skipped),
	}
}

// DequeueAndProcess sequentially dequeues and processes items using the given
// processFunc, until the queue is empty or the context is cancelled. An error
// is only returned in case of a context cancellation.
func (q *GenericQueue[T]) DequeueAndProcess(ctx context.Context, processFunc func(T) Decision) error {
	for ctx.Err() == nil {
		item, ok := q.Dequeue()
		if !ok {
			break
		}

		q.SetProcessing(item)

		switch processFunc(item) {
		case DecisionSkipped:
			q.SetSkipped(item)

		case DecisionSuccess:
			q.SetSuccess(item)
		}
	}

	if ctx.Err() != nil {
		return fmt.Errorf("(queue-proc) %w", ctx.Err())
	}

	return nil
}
