package graph

import (
	"context"
	"fmt"
)

// Call is any Client operation bound to its arguments.
type Call func(ctx context.Context) (*Result, error)

// Callback receives the outcome of an asynchronous call. Exactly one of
// result and err is non-nil.
type Callback func(result *Result, err error)

// Outcome is the value delivered by Async.
type Outcome struct {
	Result *Result
	Err    error
}

// Go runs call on its own goroutine and invokes cb exactly once with the
// outcome. It returns immediately.
func Go(ctx context.Context, call Call, cb Callback) {
	go func() {
		result, err := run(ctx, call)
		cb(result, err)
	}()
}

// Async runs call on its own goroutine. The returned channel yields exactly
// one Outcome and is then closed.
func Async(ctx context.Context, call Call) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		result, err := run(ctx, call)
		ch <- Outcome{Result: result, Err: err}
	}()
	return ch
}

// run turns a panicking call into an error so callers always get an outcome.
func run(ctx context.Context, call Call) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("graph call panicked: %v", r)
		}
	}()
	result, err = call(ctx)
	if result == nil && err == nil {
		err = fmt.Errorf("graph call returned neither result nor error")
	}
	if err != nil {
		result = nil
	}
	return result, err
}
