package eventbus

import (
	"testing"
	"time"

	"github.com/borud/broker"
)

func TestNilBusPublishIsNoOp(t *testing.T) {
	var bus *Bus
	bus.Publish(EvalCycle{Cycle: 1})

	bus = New(nil)
	bus.Publish(EvalCycle{Cycle: 2})
}

func TestPublishAndSubscribeRoundTrip(t *testing.T) {
	b := broker.New(broker.Config{})
	bus := New(b)

	events, err := Subscribe(b)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	bus.Publish(EvalCycle{Cycle: 7, Duration: 5 * time.Millisecond})

	select {
	case evt := <-events:
		if evt.Cycle != 7 {
			t.Errorf("received Cycle = %d, want 7", evt.Cycle)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published EvalCycle event")
	}
}
