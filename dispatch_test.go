package main

import "testing"

type mockSink struct {
	writes []struct{ endpoint, payload string }
}

func (m *mockSink) Write(endpoint, payload string) {
	if endpoint == "" {
		return // absent endpoint: silent drop, as a real sink would also do
	}
	m.writes = append(m.writes, struct{ endpoint, payload string }{endpoint, payload})
}

func TestDispatcherSendOneDelivers(t *testing.T) {
	sink := &mockSink{}
	d := NewDispatcher(sink, 4)

	d.Enqueue(SendOne("ep1", "hello"))
	if !d.DrainOne() {
		t.Fatal("expected a signal to drain")
	}
	if len(sink.writes) != 1 || sink.writes[0].endpoint != "ep1" {
		t.Errorf("unexpected writes: %+v", sink.writes)
	}
}

func TestDispatcherSendOneEmptyEndpointSilentlyDropped(t *testing.T) {
	sink := &mockSink{}
	d := NewDispatcher(sink, 4)

	d.Enqueue(SendOne("", "payload"))
	d.DrainOne()
	if len(sink.writes) != 0 {
		t.Errorf("expected no writes for empty endpoint, got %+v", sink.writes)
	}
}

func TestDispatcherSyncPairDeliversBoth(t *testing.T) {
	sink := &mockSink{}
	d := NewDispatcher(sink, 4)

	d.Enqueue(SyncPair("ep1", "ep2", "payload"))
	d.DrainOne()
	if len(sink.writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(sink.writes))
	}
}

func TestDispatcherSyncPairOneEndpointAbsent(t *testing.T) {
	sink := &mockSink{}
	d := NewDispatcher(sink, 4)

	d.Enqueue(SyncPair("ep1", "", "payload")) // bot opponent has no endpoint
	d.DrainOne()
	if len(sink.writes) != 1 || sink.writes[0].endpoint != "ep1" {
		t.Errorf("expected only ep1 delivered, got %+v", sink.writes)
	}
}

func TestDispatcherDrainAll(t *testing.T) {
	sink := &mockSink{}
	d := NewDispatcher(sink, 4)

	d.Enqueue(SendOne("ep1", "a"))
	d.Enqueue(SendOne("ep2", "b"))

	n := d.DrainAll()
	if n != 2 {
		t.Errorf("expected 2 drained, got %d", n)
	}
	if len(sink.writes) != 2 {
		t.Errorf("expected 2 writes, got %d", len(sink.writes))
	}
}

func TestDispatcherDrainOneEmpty(t *testing.T) {
	sink := &mockSink{}
	d := NewDispatcher(sink, 4)

	if d.DrainOne() {
		t.Fatal("expected false on empty queue")
	}
}

func TestDispatcherEnqueueDropsWhenFull(t *testing.T) {
	sink := &mockSink{}
	d := NewDispatcher(sink, 1)

	d.Enqueue(SendOne("ep1", "a"))
	d.Enqueue(SendOne("ep2", "b")) // queue full, should be dropped, not block

	if d.QueueLen() != 1 {
		t.Errorf("expected queue len 1, got %d", d.QueueLen())
	}
}
