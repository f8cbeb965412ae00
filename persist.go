package main

import (
	"log"

	"poemrace/store"
)

// PersistEvent is a typed event consumed by the Persistence Writer's
// background worker. Exactly one of the three fields is set.
type PersistEvent struct {
	PlayerProgress *PlayerProgressEvent
	GameCount      *int64
	ServerStatus   *int64
}

// PlayerProgressEvent upserts a player's level into the external
// leaderboard sorted set.
type PlayerProgressEvent struct {
	PlayerKey string
	NewLevel  int
}

// LeaderboardStore is the external collaborator the Persistence Writer
// writes through.
type LeaderboardStore interface {
	UpsertLeaderboard(playerKey string, level int) error
	SetCounter(name string, value int64) error
}

// PersistenceWriter is a background worker thread: it blocks on its own
// event channel and writes serially to the store.
// All writes are fire-and-forget from the caller's perspective; failures
// are logged but never propagate back to the game loop.
type PersistenceWriter struct {
	store       LeaderboardStore
	leaderboardKey string
	in          chan PersistEvent
	done        chan struct{}
}

// NewPersistenceWriter constructs a writer with the given outbound queue
// capacity. leaderboardKey names the sorted set (config's
// match_data_key_name), used purely for logging/diagnostics since the
// concrete store already scopes its own table.
func NewPersistenceWriter(store LeaderboardStore, leaderboardKey string, capacity int) *PersistenceWriter {
	return &PersistenceWriter{
		store:          store,
		leaderboardKey: leaderboardKey,
		in:             make(chan PersistEvent, capacity),
		done:           make(chan struct{}),
	}
}

// Enqueue offers ev to the writer's queue without blocking the caller.
func (w *PersistenceWriter) Enqueue(ev PersistEvent) {
	select {
	case w.in <- ev:
	default:
		log.Printf("[persist] queue full, dropping event")
	}
}

// EnqueuePlayerProgress enqueues a PlayerProgress event. Ordering of the two
// PlayerProgress writes for a single game is preserved because both are
// enqueued from the same goroutine (the Tick Loop) in sequence onto a
// single channel.
func (w *PersistenceWriter) EnqueuePlayerProgress(playerKey string, newLevel int) {
	w.Enqueue(PersistEvent{PlayerProgress: &PlayerProgressEvent{PlayerKey: playerKey, NewLevel: newLevel}})
}

// EnqueueGameCount enqueues a GameCount counter update.
func (w *PersistenceWriter) EnqueueGameCount(n int64) {
	w.Enqueue(PersistEvent{GameCount: &n})
}

// EnqueueServerStatus enqueues a ServerStatus (connection count) update.
func (w *PersistenceWriter) EnqueueServerStatus(n int64) {
	w.Enqueue(PersistEvent{ServerStatus: &n})
}

// Run blocks, consuming events until the channel is closed. Intended to be
// launched as the sole persistence goroutine.
func (w *PersistenceWriter) Run() {
	for ev := range w.in {
		w.process(ev)
	}
	close(w.done)
}

// Stop closes the input channel, letting Run drain and exit.
func (w *PersistenceWriter) Stop() {
	close(w.in)
	<-w.done
}

func (w *PersistenceWriter) process(ev PersistEvent) {
	switch {
	case ev.PlayerProgress != nil:
		p := ev.PlayerProgress
		if err := w.store.UpsertLeaderboard(p.PlayerKey, p.NewLevel); err != nil {
			log.Printf("[persist] PlayerProgress(%s, %s, %d): %v", w.leaderboardKey, p.PlayerKey, p.NewLevel, err)
		}
	case ev.GameCount != nil:
		if err := w.store.SetCounter(store.CounterGameNum, *ev.GameCount); err != nil {
			log.Printf("[persist] GameCount(%d): %v", *ev.GameCount, err)
		}
	case ev.ServerStatus != nil:
		if err := w.store.SetCounter(store.CounterClientNum, *ev.ServerStatus); err != nil {
			log.Printf("[persist] ServerStatus(%d): %v", *ev.ServerStatus, err)
		}
	}
}
