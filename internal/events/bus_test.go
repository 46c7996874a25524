package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan FrameSentEvent, 1)

	unsub := bus.Subscribe(func(e FrameSentEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(FrameSentEvent{Frame: 7, Bytes: 12474})

	got := <-received
	if got.Frame != 7 || got.Bytes != 12474 {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan LoopStateChangedEvent, 1)
	received2 := make(chan LoopStateChangedEvent, 1)

	unsub1 := bus.Subscribe(func(e LoopStateChangedEvent) { received1 <- e })
	defer unsub1()
	unsub2 := bus.Subscribe(func(e LoopStateChangedEvent) { received2 <- e })
	defer unsub2()

	bus.Publish(LoopStateChangedEvent{From: "ready", To: "capturing"})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan CaptureErrorEvent, 1)

	unsub := bus.Subscribe(func(e CaptureErrorEvent) {
		received <- e
	})

	bus.Publish(CaptureErrorEvent{Op: "capture", Frame: 1})
	<-received

	unsub()

	bus.Publish(CaptureErrorEvent{Op: "capture", Frame: 2})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	frameReceived := make(chan bool, 1)
	memoryReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ FrameSentEvent) { frameReceived <- true })
	defer unsub1()
	unsub2 := bus.Subscribe(func(_ MemoryReclaimedEvent) { memoryReceived <- true })
	defer unsub2()

	bus.Publish(FrameSentEvent{Frame: 1})
	<-frameReceived

	select {
	case <-memoryReceived:
		t.Fatal("Memory subscriber should NOT have received FrameSentEvent")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_UnknownHandler(_ *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	unsub()
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 100
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)

	unsub := bus.Subscribe(func(_ MemoryReclaimedEvent) {
		receivedCh <- true
	})
	defer unsub()

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range eventsPerGoroutine {
				bus.Publish(MemoryReclaimedEvent{FreeBytes: 1024, Timestamp: time.Now()})
			}
		}()
	}

	wg.Wait()

	for range expected {
		<-receivedCh
	}
}

func TestEventJSONSerialization(t *testing.T) {
	data, err := json.Marshal(CaptureErrorEvent{Op: "capture", Frame: 3, Error: "bus fault", Fatal: true})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	for _, key := range []string{"op", "frame", "error", "retryable", "fatal", "timestamp"} {
		if _, ok := result[key]; !ok {
			t.Errorf("missing JSON key %q in %s", key, data)
		}
	}
}
