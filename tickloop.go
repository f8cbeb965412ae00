package main

import "log"

// InboundMessage is one frame handed to the Tick Loop by the transport
// layer: an endpoint and its raw (still-encoded) payload.
type InboundMessage struct {
	Endpoint string
	Payload  string
}

// TickLoop is the single-threaded Game thread: it drains
// inbound messages, runs the Matchmaker and Round Engine at a bounded
// cadence, and forwards outbound signals to the dispatcher. It is the sole
// mutator of Matchmaker and Round Engine state.
type TickLoop struct {
	clock      Clock
	inbound    chan InboundMessage
	matchmaker *Matchmaker
	engine     *RoundEngine
	persist    *PersistenceWriter
	tickMs     int64
	lastTickMs int64
	stop       chan struct{}
}

// NewTickLoop wires the coordinator to its collaborators. tickMs is the
// cadence period (spec: ~33ms).
func NewTickLoop(clock Clock, inboundCapacity int, matchmaker *Matchmaker, engine *RoundEngine, persist *PersistenceWriter, tickMs int64) *TickLoop {
	return &TickLoop{
		clock:      clock,
		inbound:    make(chan InboundMessage, inboundCapacity),
		matchmaker: matchmaker,
		engine:     engine,
		persist:    persist,
		tickMs:     tickMs,
		lastTickMs: clock.NowMs(),
		stop:       make(chan struct{}),
	}
}

// Push offers an inbound message to the loop without blocking the
// transport, back-pressuring by drop when the queue is full.
func (t *TickLoop) Push(msg InboundMessage) {
	select {
	case t.inbound <- msg:
	default:
		log.Printf("[tick] inbound queue full, dropping message from %s", msg.Endpoint)
	}
}

// Step runs exactly one iteration of the loop: a non-blocking drain of up
// to one inbound message, then — unconditionally, not gated on whether a
// message arrived — a bounded-cadence
// matchmaker+engine update once tickMs has elapsed since the last one, and
// finally forwarding of every queued signal.
func (t *TickLoop) Step(handle func(InboundMessage)) {
	select {
	case msg := <-t.inbound:
		handle(msg)
	default:
	}

	now := t.clock.NowMs()
	if now-t.lastTickMs >= t.tickMs {
		t.lastTickMs = now

		t.engine.Update(now)

		if out := t.matchmaker.Tick(now); out != nil {
			switch {
			case out.Pair != nil:
				t.engine.CreatePair(out.Pair.A, out.Pair.B, now)
			case out.Solo != nil:
				t.engine.CreateSolo(*out.Solo, now)
			}
		}
	}

	t.engine.DrainSignals()
}

// InboundLen reports the current inbound queue depth (for metrics).
func (t *TickLoop) InboundLen() int {
	return len(t.inbound)
}
