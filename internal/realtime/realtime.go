// Package realtime delivers the backend's push events to the terminal. The
// terminal only listens; nothing is ever published from here.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type Event struct {
	Name       string          `json:"event"`
	Payload    json.RawMessage `json:"data,omitempty"`
	ReceivedAt time.Time       `json:"-"`
}

// Channel subscribes to named events. Subscriptions stop when their ctx is
// cancelled or when they are closed, whichever happens first.
type Channel interface {
	Subscribe(ctx context.Context, names ...string) (*Subscription, error)
}

const eventBuffer = 64

// Subscription is one live listener. Events is closed once the
// subscription has stopped.
type Subscription struct {
	events chan Event
	names  map[string]struct{}
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	closer func() error
	err    error
}

// receiveFunc reads from a source until ctx ends, handing every event to
// emit. emit returns false once nobody listens anymore.
type receiveFunc func(ctx context.Context, emit func(Event) bool)

func newSubscription(ctx context.Context, names []string, receive receiveFunc, closer func() error) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		events: make(chan Event, eventBuffer),
		names:  make(map[string]struct{}, len(names)),
		cancel: cancel,
		done:   make(chan struct{}),
		closer: closer,
	}
	for _, n := range names {
		s.names[n] = struct{}{}
	}

	go func() {
		defer close(s.done)
		defer close(s.events)
		receive(ctx, func(e Event) bool {
			if !s.wants(e.Name) {
				return true
			}
			if e.ReceivedAt.IsZero() {
				e.ReceivedAt = time.Now()
			}
			select {
			case s.events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()
	go func() {
		<-ctx.Done()
		s.release()
	}()
	return s
}

func (s *Subscription) Events() <-chan Event { return s.events }

// Close stops the subscription and releases its connection. It waits for
// the receive loop to exit and is safe to call more than once.
func (s *Subscription) Close() error {
	s.cancel()
	<-s.done
	s.release()
	return s.err
}

func (s *Subscription) release() {
	s.once.Do(func() {
		if s.closer != nil {
			s.err = s.closer()
		}
	})
}

// An empty name set accepts everything.
func (s *Subscription) wants(name string) bool {
	if len(s.names) == 0 {
		return true
	}
	_, ok := s.names[name]
	return ok
}

// Nop never emits. It backs the "none" driver.
type Nop struct{}

func (Nop) Subscribe(ctx context.Context, names ...string) (*Subscription, error) {
	return newSubscription(ctx, names, func(ctx context.Context, _ func(Event) bool) {
		<-ctx.Done()
	}, nil), nil
}
