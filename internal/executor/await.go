package executor

import (
	"github.com/hanpama/gqlexec/internal/future"
	"github.com/hanpama/gqlexec/internal/respath"
)

// await unwraps v when it is a future. In synchronous mode a future must
// already be complete; in asynchronous mode await blocks until it completes or
// the request context is done. Futures resolving to futures are unwrapped
// until a plain value appears.
func (ec *executionContext) await(v any, path *respath.Path) (any, error) {
	for {
		f, ok := v.(future.Awaitable)
		if !ok {
			return v, nil
		}
		if ec.sync {
			select {
			case <-f.Done():
			default:
				return nil, pendingError(path)
			}
		} else {
			select {
			case <-f.Done():
			case <-ec.ctx.Done():
				return nil, ec.ctx.Err()
			}
		}
		var err error
		v, err = f.Result()
		if err != nil {
			return nil, err
		}
	}
}

// awaitFuture is await for typed futures returned by capability hooks. A nil
// future yields the zero value.
func awaitFuture[T any](ec *executionContext, f *future.Future[T], path *respath.Path) (T, error) {
	var zero T
	if f == nil {
		return zero, nil
	}
	if ec.sync {
		v, ok, err := f.Poll()
		if !ok {
			return zero, pendingError(path)
		}
		return v, err
	}
	return f.Await(ec.ctx)
}

func pendingError(path *respath.Path) *InvariantError {
	return &InvariantError{
		Message: "cannot await a pending value in synchronous execution",
		Path:    path,
	}
}
