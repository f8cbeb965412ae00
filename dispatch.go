package main

import "log"

// Signal is an outbound message addressed to one or two endpoints, carrying
// an already-encoded payload. The Tick Loop enqueues these; the transport
// layer consumes them and writes frames.
type Signal struct {
	SendTo   string // set for SendOne
	SyncA    string // set for SyncPair (may be empty)
	SyncB    string // set for SyncPair (may be empty)
	IsSync   bool
	Payload  string
}

// SendOne builds a Signal addressed to a single endpoint.
func SendOne(endpoint, payload string) Signal {
	return Signal{SendTo: endpoint, Payload: payload}
}

// SyncPair builds a Signal addressed to up to two endpoints.
func SyncPair(epA, epB, payload string) Signal {
	return Signal{SyncA: epA, SyncB: epB, IsSync: true, Payload: payload}
}

// EndpointSink is the transport-facing output of the Signal Dispatcher: the
// only thing the core's dispatcher needs to know about a transport is "can
// I write a payload to this endpoint".
type EndpointSink interface {
	// Write delivers payload to endpoint if it is live. Missing/unknown
	// endpoints must be silently ignored.
	Write(endpoint, payload string)
}

// Dispatcher drains a bounded channel of Signals and forwards each to the
// sink, silently dropping recipients whose endpoint is absent.
type Dispatcher struct {
	sink EndpointSink
	in   chan Signal
}

// NewDispatcher constructs a Dispatcher with the given outbound queue
// capacity. sink may be nil if the transport isn't constructed yet;
// SetSink must be called before the first DrainOne/DrainAll.
func NewDispatcher(sink EndpointSink, capacity int) *Dispatcher {
	return &Dispatcher{sink: sink, in: make(chan Signal, capacity)}
}

// SetSink wires (or rewires) the transport-facing sink, used at startup
// when the Dispatcher is constructed before the transport that depends on
// it (main.go's wiring order).
func (d *Dispatcher) SetSink(sink EndpointSink) {
	d.sink = sink
}

// Enqueue offers s to the dispatcher's outbound queue without blocking,
// preferring to drop work over growing unbounded memory.
func (d *Dispatcher) Enqueue(s Signal) {
	select {
	case d.in <- s:
	default:
		log.Printf("[dispatch] outbound queue full, dropping signal")
	}
}

// DrainOne delivers up to one pending signal to the sink, returning whether
// one was delivered. It never blocks; DrainAll is built on it.
func (d *Dispatcher) DrainOne() bool {
	select {
	case s := <-d.in:
		d.deliver(s)
		return true
	default:
		return false
	}
}

// DrainAll delivers every currently queued signal without blocking. The
// Tick Loop uses this at the end of every iteration (after the
// engine/matchmaker update, when one ran) so queued signals reach the
// transport promptly.
func (d *Dispatcher) DrainAll() int {
	n := 0
	for d.DrainOne() {
		n++
	}
	return n
}

func (d *Dispatcher) deliver(s Signal) {
	if s.IsSync {
		if s.SyncA != "" {
			d.sink.Write(s.SyncA, s.Payload)
		}
		if s.SyncB != "" {
			d.sink.Write(s.SyncB, s.Payload)
		}
		return
	}
	if s.SendTo != "" {
		d.sink.Write(s.SendTo, s.Payload)
	}
}

// QueueLen reports the current depth of the outbound queue (for metrics).
func (d *Dispatcher) QueueLen() int {
	return len(d.in)
}
