// Package future provides a single-assignment future with attachable
// continuations and a wait-for-all join.
package future

import (
	"context"
	"errors"
	"sync"
)

// ErrPending is returned by Now when the future has not resolved yet.
var ErrPending = errors.New("future: not resolved")

// Future holds a value or an error that becomes available exactly once.
// It is safe for one resolver and any number of readers.
type Future[T any] struct {
	mu   sync.Mutex
	done chan struct{}
	val  T
	err  error
	subs []func(T, error)
}

func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a future already resolved with v.
func Completed[T any](v T) *Future[T] {
	f := New[T]()
	f.Complete(v)
	return f
}

// Failed returns a future already resolved with err.
func Failed[T any](err error) *Future[T] {
	f := New[T]()
	f.Fail(err)
	return f
}

// Complete resolves the future with v. It reports whether this call won
// the resolution; later calls are no-ops.
func (f *Future[T]) Complete(v T) bool {
	return f.resolve(v, nil)
}

// Fail resolves the future with err.
func (f *Future[T]) Fail(err error) bool {
	if err == nil {
		err = errors.New("future: failed with nil error")
	}
	var zero T
	return f.resolve(zero, err)
}

func (f *Future[T]) resolve(v T, err error) bool {
	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		return false
	default:
	}
	f.val, f.err = v, err
	subs := f.subs
	f.subs = nil
	close(f.done)
	f.mu.Unlock()

	// run continuations outside the lock; resolution already published
	for _, fn := range subs {
		fn(v, err)
	}
	return true
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the future resolves or ctx ends. A ctx error abandons
// the wait only; the future itself is unaffected.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Now returns the resolved value or error, or ErrPending if unresolved.
func (f *Future[T]) Now() (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	default:
		var zero T
		return zero, ErrPending
	}
}

// Subscribe registers fn to run once the future resolves. If it already
// has, fn runs synchronously. Each registration fires exactly once.
func (f *Future[T]) Subscribe(fn func(T, error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		v, err := f.val, f.err
		f.mu.Unlock()
		fn(v, err)
		return
	default:
	}
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
}

// ThenApply returns a future resolved by applying fn to f's value. A
// failure of f propagates without invoking fn.
func ThenApply[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := New[U]()
	f.Subscribe(func(v T, err error) {
		if err != nil {
			out.Fail(err)
			return
		}
		u, err := fn(v)
		if err != nil {
			out.Fail(err)
			return
		}
		out.Complete(u)
	})
	return out
}

// AllOf returns a future that resolves only after every input has
// resolved. If any input failed, the join fails with the error of the
// earliest failed input in argument order; otherwise it succeeds. An
// empty input set resolves immediately.
func AllOf[T any](fs ...*Future[T]) *Future[struct{}] {
	out := New[struct{}]()
	if len(fs) == 0 {
		out.Complete(struct{}{})
		return out
	}

	remaining := len(fs)
	var mu sync.Mutex
	finish := func() {
		for _, f := range fs {
			if _, err := f.Now(); err != nil {
				out.Fail(err)
				return
			}
		}
		out.Complete(struct{}{})
	}
	for _, f := range fs {
		f.Subscribe(func(T, error) {
			mu.Lock()
			remaining--
			last := remaining == 0
			mu.Unlock()
			if last {
				finish()
			}
		})
	}
	return out
}
