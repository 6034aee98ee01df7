// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package irc

import (
	"log/slog"
	"sync"
	"time"
)

// Forever makes Await block until a matching message arrives or the request
// is cancelled. Callers opt into it explicitly; there is no implicit
// block-forever default.
const Forever time.Duration = -1

// Predicate tests one inbound message. Predicates run while the registry
// lock is held, on the reader loop's goroutine: they must be fast and must
// not mutate shared state or call back into the registry.
type Predicate func(msg Message) bool

// Request is one outstanding "wait for the next matching message" entry.
// Its outcome is written exactly once, under the registry lock.
type Request struct {
	predicate Predicate
	done      chan struct{}
	msg       Message
	err       error
	resolved  bool
}

// Registry correlates inbound messages against pending requests. A single
// mutex guards the request list; registration, dispatch and cancellation are
// mutually exclusive.
type Registry struct {
	mu       sync.Mutex
	requests []*Request
	logger   *slog.Logger
}

// NewRegistry returns an empty registry. A nil logger falls back to
// slog.Default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger,
	}
}

// Add registers a pending request without blocking on it. Most callers want
// Await; Add exists for code that needs to cancel from another goroutine.
func (registry *Registry) Add(predicate Predicate) *Request {
	request := &Request{
		predicate: predicate,
		done:      make(chan struct{}),
	}

	registry.mu.Lock()
	registry.requests = append(registry.requests, request)
	registry.mu.Unlock()

	return request
}

// Await blocks the calling goroutine until a message matching the predicate
// is dispatched, the timeout elapses, or the request is cancelled. A timeout
// of Forever blocks indefinitely; a timeout of zero fails immediately unless
// a dispatch already raced it. No message is consumed by a timed-out or
// cancelled request.
func (registry *Registry) Await(predicate Predicate, timeout time.Duration) (Message, error) {
	request := registry.Add(predicate)

	if timeout < 0 {
		<-request.done
		return request.msg, request.err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-request.done:
	case <-timer.C:
		registry.resolve(request, Message{}, ErrTimeout)
	}

	// If the timer lost the race against a concurrent dispatch, resolve was a
	// no-op and the request completed with the matched message instead.
	<-request.done
	return request.msg, request.err
}

// Dispatch runs one match pass for an inbound message. Every pending request
// whose predicate matches is resolved with the message and removed; a single
// message may resolve any number of requests. Requests registered while a
// pass is running are not considered for that message.
func (registry *Registry) Dispatch(msg Message) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	kept := registry.requests[:0]
	for _, request := range registry.requests {
		if registry.matches(request, msg) {
			request.msg = msg
			request.resolved = true
			close(request.done)
		} else {
			kept = append(kept, request)
		}
	}
	for i := len(kept); i < len(registry.requests); i++ {
		registry.requests[i] = nil
	}
	registry.requests = kept
}

// Cancel resolves a request with ErrCancelled and removes it. It reports
// whether the cancellation won; false means the request had already been
// resolved by a dispatch or timeout.
func (registry *Registry) Cancel(request *Request) bool {
	return registry.resolve(request, Message{}, ErrCancelled)
}

// CancelAll resolves every pending request with the given error. Used on
// connection teardown so that no waiter blocks forever on a dead stream.
func (registry *Registry) CancelAll(err error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	for i, request := range registry.requests {
		request.err = err
		request.resolved = true
		close(request.done)
		registry.requests[i] = nil
	}
	registry.requests = registry.requests[:0]
}

// Pending returns the number of outstanding requests.
func (registry *Registry) Pending() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.requests)
}

// resolve writes the request's outcome if nothing else has. The first writer
// under the lock wins; the loser's effect is discarded.
func (registry *Registry) resolve(request *Request, msg Message, err error) bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if request.resolved {
		return false
	}
	request.msg = msg
	request.err = err
	request.resolved = true

	for i, pending := range registry.requests {
		if pending == request {
			registry.requests = append(registry.requests[:i], registry.requests[i+1:]...)
			break
		}
	}

	close(request.done)
	return true
}

// matches evaluates a predicate, containing any panic so one bad predicate
// cannot take down the dispatch pass for everyone else.
func (registry *Registry) matches(request *Request, msg Message) (matched bool) {
	defer func() {
		if reason := recover(); reason != nil {
			registry.logger.Warn("predicate panicked during dispatch", "panic", reason, "line", msg.Raw)
			matched = false
		}
	}()
	return request.predicate(msg)
}
