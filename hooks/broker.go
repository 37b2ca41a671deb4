// Package hooks fans simulation events out to registered observers: the
// animation controller, telemetry, metrics and any future instrumentation
// subscribe here instead of being wired into the engine.
package hooks

import (
	"sync"

	"github.com/example/epidemic_sim/epidemic"
)

// ObserverCategory describes the high-level role of an observer.
type ObserverCategory string

const (
	// CategoryPresentation covers placement, animation and display observers.
	CategoryPresentation ObserverCategory = "presentation"
	// CategoryInstrumentation covers metrics, telemetry and diagnostics.
	CategoryInstrumentation ObserverCategory = "instrumentation"
)

// ObserverDescriptor names an observer registered with the broker.
type ObserverDescriptor struct {
	Name        string           `json:"name"`
	Category    ObserverCategory `json:"category"`
	Description string           `json:"description"`
}

// TransitionContext carries one compartment change to transition hooks.
type TransitionContext struct {
	Individual *epidemic.Individual
	From       epidemic.Compartment
	To         epidemic.Compartment
	Step       int
}

// StepContext carries the post-step census to step hooks.
type StepContext struct {
	Step   int
	Counts epidemic.Counts
}

// TransitionHook observes a single compartment change.
type TransitionHook func(ctx *TransitionContext) error

// StepHook observes a completed step.
type StepHook func(ctx *StepContext) error

// Broker coordinates hook registration and dispatch.
type Broker struct {
	mu sync.RWMutex

	transitionHooks []TransitionHook
	stepHooks       []StepHook

	catalog map[string]ObserverDescriptor
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{catalog: make(map[string]ObserverDescriptor)}
}

// RegisterTransition adds a hook invoked for every compartment change.
func (b *Broker) RegisterTransition(h TransitionHook) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitionHooks = append(b.transitionHooks, h)
}

// RegisterStep adds a hook invoked once per completed step.
func (b *Broker) RegisterStep(h StepHook) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stepHooks = append(b.stepHooks, h)
}

// RegisterObserver stores observer metadata for introspection endpoints.
func (b *Broker) RegisterObserver(desc ObserverDescriptor) {
	if b == nil || desc.Name == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.catalog[desc.Name]; exists {
		return
	}
	b.catalog[desc.Name] = desc
}

// Observers returns descriptors of every registered observer.
func (b *Broker) Observers() []ObserverDescriptor {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]ObserverDescriptor, 0, len(b.catalog))
	for _, desc := range b.catalog {
		out = append(out, desc)
	}
	return out
}

// EmitTransition dispatches one compartment change to all transition hooks.
// The first hook error stops dispatch and is returned.
func (b *Broker) EmitTransition(ctx *TransitionContext) error {
	if b == nil || ctx == nil {
		return nil
	}
	b.mu.RLock()
	handlers := make([]TransitionHook, len(b.transitionHooks))
	copy(handlers, b.transitionHooks)
	b.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// EmitStep dispatches a completed step to all step hooks.
func (b *Broker) EmitStep(ctx *StepContext) error {
	if b == nil || ctx == nil {
		return nil
	}
	b.mu.RLock()
	handlers := make([]StepHook, len(b.stepHooks))
	copy(handlers, b.stepHooks)
	b.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}
