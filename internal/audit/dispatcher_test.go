package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type memorySink struct {
	mu     sync.Mutex
	events []Event
	err    error
	block  chan struct{}
}

func (s *memorySink) Log(_ context.Context, ev Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func TestDispatcherWritesQueuedEventsBeforeClose(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink, 10, nil)

	d.Dispatch(Event{Action: "appointment_confirmed", EntityID: "A1"})
	d.Dispatch(Event{Action: "appointment_cancelled", EntityID: "A2"})
	d.Close()

	assert.Len(t, sink.events, 2)
	assert.Equal(t, "A1", sink.events[0].EntityID)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &memorySink{block: make(chan struct{})}
	d := NewDispatcher(sink, 1, nil)

	// the worker takes the first event and blocks on it, the second fills
	// the queue and the rest are dropped
	for i := 0; i < 5; i++ {
		d.Dispatch(Event{Action: "appointment_confirmed"})
	}
	close(sink.block)
	d.Close()

	assert.LessOrEqual(t, len(sink.events), 2)
	assert.GreaterOrEqual(t, len(sink.events), 1)
}

func TestDispatcherSurvivesSinkErrorsAndLateDispatch(t *testing.T) {
	sink := &memorySink{err: errors.New("db down")}
	d := NewDispatcher(sink, 10, nil)

	d.Dispatch(Event{Action: "appointment_no_show"})
	d.Close()
	d.Close()
	d.Dispatch(Event{Action: "ignored"})

	assert.Len(t, sink.events, 1)
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Event{Action: "x"})
}
