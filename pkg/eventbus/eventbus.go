// Package eventbus publishes batch-engine health events on a
// github.com/borud/broker topic, the same pub/sub primitive the teacher
// uses to fan out Varnish lifecycle events (pkg/cache, pkg/vcl). It is an
// opt-in observability side channel: the evaluator's hot path never
// depends on it, and a nil *Bus is a documented no-op.
package eventbus

import (
	"time"

	"github.com/borud/broker"
)

// Topic is the single topic this package publishes on.
const Topic = "/expreval/cycle"

const publishTimeout = 1 * time.Second

// EvalCycle reports the outcome of one batch-engine Eval call.
type EvalCycle struct {
	Cycle    uint64
	Duration time.Duration
	Err      error
}

// Bus wraps a *broker.Broker for EvalCycle publication. The zero value
// has no broker and behaves like New(nil); leaving a *Bus field nil also
// disables publishing (Publish on a nil *Bus is a no-op).
type Bus struct {
	b *broker.Broker
}

// New wraps an existing broker. Passing nil is valid and yields a Bus whose
// Publish calls are no-ops, so callers can construct one unconditionally
// and let configuration decide whether a real broker backs it.
func New(b *broker.Broker) *Bus {
	return &Bus{b: b}
}

// Publish sends an EvalCycle event. Errors are swallowed (matching the
// teacher's own `_ = broker.Publish(...)` call sites): a slow or absent
// subscriber must never affect batch-engine evaluation.
func (bus *Bus) Publish(evt EvalCycle) {
	if bus == nil || bus.b == nil {
		return
	}
	_ = bus.b.Publish(Topic, evt, publishTimeout)
}

// Subscribe returns a channel of EvalCycle events published on b's Topic.
// It takes the broker itself, not a Bus, and does not accept a nil broker.
// Intended for CLI/bench harnesses observing a batch engine's health,
// never for the evaluator itself.
func Subscribe(b *broker.Broker) (<-chan EvalCycle, error) {
	sub, err := b.Subscribe(Topic)
	if err != nil {
		return nil, err
	}
	out := make(chan EvalCycle)
	go func() {
		defer close(out)
		for msg := range sub.Messages() {
			if evt, ok := msg.Payload.(EvalCycle); ok {
				out <- evt
			}
		}
	}()
	return out, nil
}
