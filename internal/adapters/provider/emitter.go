package provider

import (
	"encoding/json"
	"sync"
)

// Emitter fans provider events out to subscribers
type Emitter struct {
	mu       sync.Mutex
	handlers map[string]map[uint64]func(json.RawMessage)
	next     uint64
}

// On registers handler for event and returns its unsubscribe func
func (e *Emitter) On(event string, handler func(payload json.RawMessage)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handlers == nil {
		e.handlers = make(map[string]map[uint64]func(json.RawMessage))
	}
	if e.handlers[event] == nil {
		e.handlers[event] = make(map[uint64]func(json.RawMessage))
	}
	id := e.next
	e.next++
	e.handlers[event][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.handlers[event], id)
		})
	}
}

// Emit marshals payload and calls every handler of event.
// Handlers run on the caller's goroutine, outside the lock.
func (e *Emitter) Emit(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	e.mu.Lock()
	handlers := make([]func(json.RawMessage), 0, len(e.handlers[event]))
	for _, h := range e.handlers[event] {
		handlers = append(handlers, h)
	}
	e.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
}

// Subscribers returns the number of registered handlers
func (e *Emitter) Subscribers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, hs := range e.handlers {
		n += len(hs)
	}
	return n
}
