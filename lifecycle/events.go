package lifecycle

import "sync"

// Event is a single emission on the lifecycle event bus.
type Event struct {
	Name    string
	Payload interface{}
}

// Handler receives emitted events.
type Handler func(Event)

// deferredNames holds the event names whose emission is deferred onto the
// background drain loop rather than delivered synchronously, so a caller
// that subscribes immediately after triggering an operation still observes
// the event.
var deferredNames = map[string]bool{
	"asset:created":     true,
	"credential:issued": true,
}

type subscription struct {
	id      uint64
	handler Handler
	once    bool
}

// EventEmitter is an in-process pub/sub bus for lifecycle notifications
// (asset:created, resource:published, credential:issued, batch:*).
// Deferred events are queued onto a buffered channel and delivered by a
// background goroutine, the Go equivalent of a "next microtask" deferral.
type EventEmitter struct {
	mu       sync.Mutex
	handlers map[string][]*subscription
	nextID   uint64
	queue    chan Event
	done     chan struct{}
}

// NewEventEmitter starts an EventEmitter with its drain goroutine running.
func NewEventEmitter() *EventEmitter {
	e := &EventEmitter{
		handlers: make(map[string][]*subscription),
		queue:    make(chan Event, 256),
		done:     make(chan struct{}),
	}
	go e.drain()
	return e
}

func (e *EventEmitter) drain() {
	for {
		select {
		case evt := <-e.queue:
			e.dispatch(evt)
		case <-e.done:
			return
		}
	}
}

// Close stops the background drain goroutine. Safe to call once.
func (e *EventEmitter) Close() {
	close(e.done)
}

// On registers handler for every emission of name, returning its
// subscription id for later Off.
func (e *EventEmitter) On(name string, handler Handler) uint64 {
	return e.subscribe(name, handler, false)
}

// Once registers handler for exactly one emission of name.
func (e *EventEmitter) Once(name string, handler Handler) uint64 {
	return e.subscribe(name, handler, true)
}

func (e *EventEmitter) subscribe(name string, handler Handler, once bool) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	e.handlers[name] = append(e.handlers[name], &subscription{id: id, handler: handler, once: once})
	return id
}

// Off removes the subscription registered under id for name.
func (e *EventEmitter) Off(name string, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	subs := e.handlers[name]
	for i, s := range subs {
		if s.id == id {
			e.handlers[name] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Emit delivers name/payload to its subscribers. Events named in
// deferredNames are queued for asynchronous delivery; all others are
// delivered synchronously before Emit returns.
func (e *EventEmitter) Emit(name string, payload interface{}) {
	evt := Event{Name: name, Payload: payload}
	if deferredNames[name] {
		select {
		case e.queue <- evt:
		default:
			// Queue saturated: fall back to synchronous delivery rather than
			// silently dropping the event.
			e.dispatch(evt)
		}
		return
	}
	e.dispatch(evt)
}

func (e *EventEmitter) dispatch(evt Event) {
	e.mu.Lock()
	subs := append([]*subscription(nil), e.handlers[evt.Name]...)
	var remaining []*subscription
	for _, s := range e.handlers[evt.Name] {
		if !s.once {
			remaining = append(remaining, s)
		}
	}
	e.handlers[evt.Name] = remaining
	e.mu.Unlock()

	for _, s := range subs {
		s.handler(evt)
	}
}
