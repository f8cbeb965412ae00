package main

// PlayerIdentity is the immutable-within-a-round identity and rating record
// for a human player.
type PlayerIdentity struct {
	PlayerID    string
	DisplayName string
	Level       int
	Elo         int
	Accuracy    float64 // carried end-to-end from CGStartMatch.correct_rate; not consumed by matchmaking
}

// MatchRequest is a pending matchmaking entry: a player waiting to be
// paired, optionally with a live endpoint (always present for humans).
type MatchRequest struct {
	Endpoint    string // empty if absent
	Identity    PlayerIdentity
	EnqueuedMs  int64
	arrivalSeq  int // monotonically increasing arrival index, used for tie-breaks
}

// Bot is a synthesized opponent, owned by its parent PlayerSlot. The
// identity is either pool-issued or UUID-synthesized; FromPool records
// which, so its identity can be returned to the pool (or not) at game end.
type Bot struct {
	PlayerID            string
	DisplayName         string
	Level               int
	Elo                 int
	Accuracy            int // [40,80]
	EarlyAnswerOffsetMs int64
	FromPool            bool
}

// PlayerSlot is one side of an in-progress Game.
type PlayerSlot struct {
	Identity    PlayerIdentity
	Endpoint    string // empty for bots and disconnected humans
	IsBot       bool
	Bot         Bot
	NextIndex   int
	NextDeadlineMs int64
	OptBitmap   uint32
	Score       int
	Dirty       bool
}

// Finished reports whether this slot has answered (or timed out on) every
// question.
func (s *PlayerSlot) Finished(n int) bool {
	return s.NextIndex >= n
}

// Game is one head-to-head round in progress.
type Game struct {
	GameID     string
	StartMs    int64
	P1, P2     PlayerSlot
	Questions  []QuestionRecord
	InProgress bool
	Dirty      bool
}
