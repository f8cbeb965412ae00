package main

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// BotFactory synthesizes a Bot opponent for solo (bot-fallback) matches.
type BotFactory struct {
	pool *BotPool
	rng  *rand.Rand
}

// NewBotFactory constructs a BotFactory drawing identities from pool.
// rng seeds the jitter/accuracy/offset draws; pass a fixed-seed *rand.Rand
// in tests for reproducibility.
func NewBotFactory(pool *BotPool, rng *rand.Rand) *BotFactory {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &BotFactory{pool: pool, rng: rng}
}

// Spawn synthesizes a Bot opponent for a human with the given Elo, using
// question_ms (Q) to size the initial early-answer offset.
func (f *BotFactory) Spawn(opponentElo int, questionMs int64) Bot {
	elo := opponentElo + (f.rng.Intn(21) - 10) // U[-10,10]
	if elo < 0 {
		elo = 0
	}
	accuracy := 40 + f.rng.Intn(41) // U[40,80]

	id, name, fromPool := f.identity()

	return Bot{
		PlayerID:            id,
		DisplayName:         name,
		Level:               1,
		Elo:                 elo,
		Accuracy:            accuracy,
		EarlyAnswerOffsetMs: f.sampleOffset(questionMs),
		FromPool:            fromPool,
	}
}

// sampleOffset draws a new early-answer offset uniformly from [1, Q/2] ms,
// used both at bot creation and after each question the bot answers.
func (f *BotFactory) sampleOffset(questionMs int64) int64 {
	maxOffset := questionMs / 2
	if maxOffset < 1 {
		maxOffset = 1
	}
	return 1 + int64(f.rng.Int63n(maxOffset))
}

// identity takes the next pool identity if available, else falls back to a
// synthesized UUID-based identity.
func (f *BotFactory) identity() (id, name string, fromPool bool) {
	if f.pool != nil {
		if bi, ok := f.pool.Take(); ok {
			return bi.ID, bi.Name, true
		}
	}
	u := uuid.New()
	return u.String(), fmt.Sprintf("Bot-%s", u.String()[:8]), false
}

// Release returns a bot's pool-issued identity to the pool once its game
// ends. UUID-fallback identities were never pool members and are dropped.
func (f *BotFactory) Release(b Bot) {
	if f.pool == nil || !b.FromPool {
		return
	}
	f.pool.Return(BotIdentity{ID: b.PlayerID, Name: b.DisplayName})
}
