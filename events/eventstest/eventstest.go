// Package eventstest records published order events for tests.
package eventstest

import (
	"context"
	"sync"

	"github.com/yeremiapane/food-delivery/events"
)

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []events.Event
}

func (r *Recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
	return nil
}

// All returns a copy of what was published so far.
func (r *Recorder) All() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.Events...)
}
