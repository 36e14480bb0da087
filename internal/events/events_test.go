package events

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestEmitAndSubscribe(t *testing.T) {
	h := NewHub(WithSyncDelivery())
	defer h.Close()

	got := make(chan Decision, 1)
	Subscribe(h, TopicDecision, func(_ context.Context, d Decision) error {
		got <- d
		return nil
	})

	if err := Emit(h, TopicDecision, Decision{Class: 1, Label: "right"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	select {
	case d := <-got:
		if d.Label != "right" || d.Class != 1 {
			t.Errorf("got %+v", d)
		}
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
}

func TestTopicIsolation(t *testing.T) {
	h := NewHub(WithSyncDelivery())
	defer h.Close()

	var mu sync.Mutex
	calls := 0
	Subscribe(h, TopicGate, func(_ context.Context, _ GateChange) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})

	done := make(chan struct{})
	Subscribe(h, TopicStatus, func(_ context.Context, _ Status) error {
		close(done)
		return nil
	})

	Emit(h, TopicStatus, Status{Text: "training"})
	<-done

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("gate handler called %d times for a status event", calls)
	}
}

func TestUnsubscribe(t *testing.T) {
	h := NewHub(WithSyncDelivery())
	defer h.Close()

	calls := make(chan struct{}, 4)
	sub := Subscribe(h, TopicPrediction, func(_ context.Context, _ Prediction) error {
		calls <- struct{}{}
		return nil
	})

	Emit(h, TopicPrediction, Prediction{Class: 0, Label: "left", Confidence: 0.8})
	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("first event never delivered")
	}

	sub.Unsubscribe()
	Emit(h, TopicPrediction, Prediction{Class: 1, Label: "right", Confidence: 0.9})

	// Flush the dispatch loop with a fresh subscriber.
	flushed := make(chan struct{})
	Subscribe(h, TopicStatus, func(_ context.Context, _ Status) error {
		close(flushed)
		return nil
	})
	Emit(h, TopicStatus, Status{})
	<-flushed

	select {
	case <-calls:
		t.Error("handler called after Unsubscribe")
	default:
	}
}

func TestEmitAfterClose(t *testing.T) {
	h := NewHub()
	h.Close()
	if err := Emit(h, TopicDecision, Decision{}); err == nil {
		t.Error("Emit after Close should fail")
	}
}

func TestCloseIdempotent(t *testing.T) {
	h := NewHub()
	h.Close()
	h.Close()
}
