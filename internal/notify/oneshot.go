// Package notify provides the one-shot completion primitive used to wait
// for asynchronous platform operations.
package notify

import (
	"context"
	"sync"
)

// OneShot delivers a single value or error to any number of waiters.
// Resolve and Reject are idempotent: only the first call wins, later calls
// are ignored.
type OneShot[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

func NewOneShot[T any]() *OneShot[T] {
	return &OneShot[T]{done: make(chan struct{})}
}

// Resolve completes the one-shot with a value.
func (o *OneShot[T]) Resolve(val T) {
	o.once.Do(func() {
		o.val = val
		close(o.done)
	})
}

// Reject completes the one-shot with an error.
func (o *OneShot[T]) Reject(err error) {
	o.once.Do(func() {
		o.err = err
		close(o.done)
	})
}

// Wait blocks until the one-shot completes or the context is done.
func (o *OneShot[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-o.done:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done exposes the completion channel for select loops.
func (o *OneShot[T]) Done() <-chan struct{} { return o.done }
