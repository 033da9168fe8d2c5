package console

import (
	"context"
	"errors"
	"sync"

	"config-console/shared/messaging"

	"go.uber.org/zap"
)

// ErrAckCancelled is returned by Wait after Cancel.
var ErrAckCancelled = errors.New("acknowledgment cancelled")

// AckRegistry matches config update events to saves waiting for them. It is
// fed by messaging.ConfigUpdateConsumer.
type AckRegistry struct {
	logger *zap.Logger

	mu      sync.Mutex
	waiting map[string]map[*Ack]struct{} // by config name
}

// NewAckRegistry creates an empty registry.
func NewAckRegistry(logger *zap.Logger) *AckRegistry {
	return &AckRegistry{
		logger:  logger.Named("AckRegistry"),
		waiting: make(map[string]map[*Ack]struct{}),
	}
}

// Ack is one pending expectation of a (name, value) event.
type Ack struct {
	registry *AckRegistry
	name     string
	value    string
	done     chan struct{}
	err      error
	once     sync.Once
}

// Expect registers interest in name being set to value. Call it before the
// write so that an event arriving early is not missed.
func (r *AckRegistry) Expect(name, value string) *Ack {
	a := &Ack{registry: r, name: name, value: value, done: make(chan struct{})}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.waiting[name]
	if !ok {
		set = make(map[*Ack]struct{})
		r.waiting[name] = set
	}
	set[a] = struct{}{}
	return a
}

// HandleConfigUpdate releases every waiter expecting this exact value.
func (r *AckRegistry) HandleConfigUpdate(payload messaging.ConfigUpdatePayload) {
	r.mu.Lock()
	var matched []*Ack
	for a := range r.waiting[payload.Name] {
		if a.value == payload.Value {
			matched = append(matched, a)
			delete(r.waiting[payload.Name], a)
		}
	}
	if len(r.waiting[payload.Name]) == 0 {
		delete(r.waiting, payload.Name)
	}
	r.mu.Unlock()

	for _, a := range matched {
		a.finish(nil)
	}
	r.logger.Debug("Config update event", zap.String("name", payload.Name), zap.Int("released", len(matched)))
}

// Pending returns the number of outstanding expectations.
func (r *AckRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, set := range r.waiting {
		n += len(set)
	}
	return n
}

func (r *AckRegistry) remove(a *Ack) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.waiting[a.name]; ok {
		delete(set, a)
		if len(set) == 0 {
			delete(r.waiting, a.name)
		}
	}
}

// Wait blocks until the event arrives, Cancel is called or ctx is done.
func (a *Ack) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		a.registry.remove(a)
		return ctx.Err()
	}
}

// Cancel drops the expectation.
func (a *Ack) Cancel() {
	a.registry.remove(a)
	a.finish(ErrAckCancelled)
}

func (a *Ack) finish(err error) {
	a.once.Do(func() {
		a.err = err
		close(a.done)
	})
}
