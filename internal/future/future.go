// Package future provides a value that may not have been computed yet.
//
// Resolvers and type-resolution hooks return a *Future when their answer is
// produced asynchronously. The executor either waits for it (asynchronous
// execution) or polls it once and refuses to wait (synchronous execution).
// A Future completes exactly once; later completions are ignored.
package future

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Awaitable is implemented by every *Future regardless of its type parameter,
// which lets the executor recognize a pending value stored in an `any`.
type Awaitable interface {
	// Done returns a channel that is closed once the result is available.
	Done() <-chan struct{}
	// Result returns the value boxed as any. It must only be called after Done
	// is closed.
	Result() (any, error)
}

type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

var _ Awaitable = (*Future[any])(nil)

// New returns a pending future and the function that completes it.
func New[T any]() (*Future[T], func(T, error)) {
	f := &Future[T]{done: make(chan struct{})}
	return f, f.complete
}

// Ready returns a future that is already completed with v.
func Ready[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: v}
	close(f.done)
	f.once.Do(func() {})
	return f
}

// Err returns a future that is already completed with err.
func Err[T any](err error) *Future[T] {
	if err == nil {
		err = errors.New("future: nil error")
	}
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	f.once.Do(func() {})
	return f
}

// Go runs fn on a new goroutine and returns a future for its result. A panic
// in fn completes the future with an error.
func Go[T any](fn func() (T, error)) *Future[T] {
	f, complete := New[T]()
	go func() {
		var (
			v   T
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				complete(zero, fmt.Errorf("panic: %v", r))
				return
			}
			complete(v, err)
		}()
		v, err = fn()
	}()
	return f
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.value, f.err = v, err
		close(f.done)
	})
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Done returns a channel closed on completion. A nil future counts as
// completed with a zero value.
func (f *Future[T]) Done() <-chan struct{} {
	if f == nil {
		return closedChan
	}
	return f.done
}

// Poll returns the result without blocking. ok is false while the future is
// still pending.
func (f *Future[T]) Poll() (v T, ok bool, err error) {
	select {
	case <-f.done:
		return f.value, true, f.err
	default:
		var zero T
		return zero, false, nil
	}
}

// Await blocks until the future completes or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) Result() (any, error) {
	if f == nil {
		return nil, nil
	}
	<-f.done
	return f.value, f.err
}
