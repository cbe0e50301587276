package paging

import (
	"sync"

	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// Delegate receives a DataSource's fetch lifecycle events. A DataSource has
// at most one delegate. Callbacks run on the dispatcher and must not block
// for long; they may call back into the DataSource.
type Delegate interface {
	WillStartFetching(ds *DataSource)
	DidFetchItems(ds *DataSource, items []domain.Photo)
	FetchFailed(ds *DataSource, err error)
}

// Dispatcher runs the function that drains a DataSource's event queue.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) {
	f(fn)
}

// Inline delivers events on whichever goroutine emitted them.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// Async delivers events on a fresh goroutine.
var Async Dispatcher = DispatcherFunc(func(fn func()) { go fn() })

// EventKind identifies an Event.
type EventKind int

// Event kinds.
const (
	EventWillStartFetching EventKind = iota
	EventDidFetchItems
	EventFetchFailed
)

func (k EventKind) String() string {
	switch k {
	case EventWillStartFetching:
		return "will_start_fetching"
	case EventDidFetchItems:
		return "did_fetch_items"
	case EventFetchFailed:
		return "fetch_failed"
	default:
		return "unknown"
	}
}

// Event is a delegate callback captured as a value.
type Event struct {
	Kind   EventKind
	Source *DataSource
	Items  []domain.Photo
	Err    error
}

// ChannelDelegate forwards every callback to a channel. Sends block once
// the buffer is full, which stalls further delivery for that DataSource.
type ChannelDelegate struct {
	ch chan Event
}

// NewChannelDelegate creates a ChannelDelegate with the given buffer size.
func NewChannelDelegate(buffer int) *ChannelDelegate {
	return &ChannelDelegate{ch: make(chan Event, buffer)}
}

// Events returns the channel events are sent on.
func (c *ChannelDelegate) Events() <-chan Event {
	return c.ch
}

func (c *ChannelDelegate) WillStartFetching(ds *DataSource) {
	c.ch <- Event{Kind: EventWillStartFetching, Source: ds}
}

func (c *ChannelDelegate) DidFetchItems(ds *DataSource, items []domain.Photo) {
	c.ch <- Event{Kind: EventDidFetchItems, Source: ds, Items: items}
}

func (c *ChannelDelegate) FetchFailed(ds *DataSource, err error) {
	c.ch <- Event{Kind: EventFetchFailed, Source: ds, Err: err}
}

// queued is an event waiting for delivery, tagged with the generation it
// was emitted in.
type queued struct {
	generation uint64
	deliver    func(Delegate)
}

// eventQueue serializes delivery: at most one drain runs at a time, and
// events leave in the order they were pushed.
type eventQueue struct {
	mu       sync.Mutex
	pending  []queued
	draining bool
}

// push appends ev and reports whether the caller must start a drain.
func (q *eventQueue) push(ev queued) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, ev)
	if q.draining {
		return false
	}
	q.draining = true
	return true
}

// pop removes the next event. When the queue is empty it ends the drain and
// returns false.
func (q *eventQueue) pop() (queued, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		q.draining = false
		return queued{}, false
	}
	ev := q.pending[0]
	q.pending[0] = queued{}
	q.pending = q.pending[1:]
	return ev, true
}
