package future

import (
	"sync"
	"time"
)

type result[T any] struct {
	v   T
	err error
}

// Future is a single-shot result that completes exactly once.
type Future[T any] struct {
	doneChannel chan struct{}
	res         result[T]
	once        sync.Once
}

// New runs fn in a goroutine and completes the Future when fn returns.
func New[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{doneChannel: make(chan struct{})}
	go func() {
		v, err := fn()
		f.complete(v, err)
	}()
	return f
}

// Await blocks until completion and returns the result.
func (f *Future[T]) Await() (T, error) {
	<-f.doneChannel
	return f.res.v, f.res.err
}

// AwaitTimeout waits up to d for completion.
// Returns (value, err, ok). ok=false if timed out.
func (f *Future[T]) AwaitTimeout(d time.Duration) (T, error, bool) {
	select {
	case <-f.doneChannel:
		return f.res.v, f.res.err, true
	default:
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.doneChannel:
		return f.res.v, f.res.err, true
	case <-timer.C:
		var zero T
		return zero, nil, false
	}
}

// Done returns a channel closed when the Future completes.
func (f *Future[T]) Done() <-chan struct{} { return f.doneChannel }

// Then runs fn with the successful value of in, producing a new Future.
// If in failed, the error is propagated and fn never runs.
func Then[T, U any](in *Future[T], fn func(T) (U, error)) *Future[U] {
	return New(func() (U, error) {
		v, err := in.Await()
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v)
	})
}

// Group tracks in-flight futures so a caller can wait for all of them.
// The zero value is ready to use.
type Group[T any] struct {
	mu      sync.Mutex
	pending []*Future[T]
	failed  []error // errors of futures pruned before Wait saw them
}

// Add registers f and returns it. Futures that already completed are
// dropped from the group; only their errors are kept for Wait.
func (g *Group[T]) Add(f *Future[T]) *Future[T] {
	g.mu.Lock()
	defer g.mu.Unlock()

	live := g.pending[:0]
	for _, p := range g.pending {
		select {
		case <-p.Done():
			if p.res.err != nil {
				g.failed = append(g.failed, p.res.err)
			}
		default:
			live = append(live, p)
		}
	}
	clear(g.pending[len(live):])
	g.pending = append(live, f)
	return f
}

// Wait blocks until every registered future completes, or until d elapses.
// It returns the errors of the futures that failed and the number still
// outstanding. Completed futures are dropped from the group.
func (g *Group[T]) Wait(d time.Duration) (errs []error, outstanding int) {
	g.mu.Lock()
	pending := g.pending
	errs = g.failed
	g.pending = nil
	g.failed = nil
	g.mu.Unlock()

	deadline := time.Now().Add(d)
	var unfinished []*Future[T]
	for _, f := range pending {
		_, err, ok := f.AwaitTimeout(time.Until(deadline))
		if !ok {
			unfinished = append(unfinished, f)
			continue
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if len(unfinished) > 0 {
		g.mu.Lock()
		g.pending = append(unfinished, g.pending...)
		g.mu.Unlock()
	}
	return errs, len(unfinished)
}

// complete sets the result exactly once and closes doneChannel.
func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.res = result[T]{v: v, err: err}
		close(f.doneChannel)
	})
}
