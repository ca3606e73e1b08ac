package rados

import "sync"

// Completion wraps one asynchronous invocation of a synchronous verb. The
// core engine always returns synchronously; this adapter runs the verb on
// its own goroutine, records the integer result code, translates it to a
// typed error and invokes an optional callback.
//
// The zero value is not usable; obtain completions from Async.
type Completion struct {
	wg   sync.WaitGroup
	code int
	err  error
}

// Async runs fn on a new goroutine and returns its completion. op and
// object annotate the translated error. The callback, if non-nil, runs on
// the verb's goroutine after the result is recorded.
func Async(op, object string, fn func() int, cb func(*Completion)) *Completion {
	c := &Completion{}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.code = fn()
		c.err = CodeError(c.code, op, object)
		if cb != nil {
			cb(c)
		}
	}()
	return c
}

// Wait blocks until the verb finishes and returns the raw result code.
func (c *Completion) Wait() int {
	c.wg.Wait()
	return c.code
}

// Err blocks until the verb finishes and returns the typed error, nil on
// success.
func (c *Completion) Err() error {
	c.wg.Wait()
	return c.err
}
