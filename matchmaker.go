package main

// MatchOutcome is the result of one Matchmaker.Tick call: at most one of
// Pair or Solo is set.
type MatchOutcome struct {
	Pair *PairResult
	Solo *MatchRequest
}

// PairResult carries the two matched requests, in arrival order (A is
// always the earlier of the two by arrival index; that ordering has no
// semantic meaning beyond making test assertions stable).
type PairResult struct {
	A, B MatchRequest
}

// botFallbackWaitMs is the wait threshold past which a lone pending request
// is handed to the Bot Factory instead of a human opponent.
const botFallbackWaitMs = 4500

// Matchmaker holds the pending pool and the admission rules for pairing
// players by Elo proximity under time-escalating tolerance.
type Matchmaker struct {
	et      *ExpectationTable
	pending []MatchRequest
	active  map[string]int64 // player_id -> enqueued_at; held while matching AND while in a game
	nextSeq int
}

// NewMatchmaker constructs an empty Matchmaker backed by et for tolerance
// lookups.
func NewMatchmaker(et *ExpectationTable) *Matchmaker {
	return &Matchmaker{
		et:     et,
		active: make(map[string]int64),
	}
}

// Enqueue admits req iff its player is not already active. Returns 0
// (accepted) or -1 (already active, the GCStartMatch rejection code).
func (m *Matchmaker) Enqueue(req MatchRequest, nowMs int64) int {
	if _, dup := m.active[req.Identity.PlayerID]; dup {
		return -1
	}
	req.EnqueuedMs = nowMs
	req.arrivalSeq = m.nextSeq
	m.nextSeq++
	m.pending = append(m.pending, req)
	m.active[req.Identity.PlayerID] = nowMs
	return 0
}

// Release drops a player from the active set once its game ends, so a
// rematch request can be accepted again. Until this is called the player
// is rejected by Enqueue whether it is still matching or already playing.
func (m *Matchmaker) Release(playerID string) {
	delete(m.active, playerID)
}

// Tick evaluates the pending pool and returns at most one pairing/bot
// outcome. Only one emission is permitted per tick; the caller
// is expected to invoke Tick once per cadence period.
func (m *Matchmaker) Tick(nowMs int64) *MatchOutcome {
	for i := range m.pending {
		a := m.pending[i]

		bestJ := -1
		bestGap := 0
		for j := range m.pending {
			if j == i {
				continue
			}
			b := m.pending[j]
			gap := a.Identity.Elo - b.Identity.Elo
			if gap < 0 {
				gap = -gap
			}
			if bestJ == -1 || gap < bestGap ||
				(gap == bestGap && b.arrivalSeq > m.pending[bestJ].arrivalSeq) {
				bestJ = j
				bestGap = gap
			}
		}

		wait := nowMs - a.EnqueuedMs

		if bestJ != -1 {
			group := m.et.Group(bestGap)
			if admitsPair(wait, group) {
				b := m.pending[bestJ]
				m.removePair(i, bestJ)
				return &MatchOutcome{Pair: &PairResult{A: a, B: b}}
			}
			continue
		}

		if wait > botFallbackWaitMs {
			m.removeAt(i)
			return &MatchOutcome{Solo: &a}
		}
	}
	return nil
}

// admitsPair applies the wait/Elo-group escalation table: players tolerate
// a wider Elo gap the longer they have waited.
func admitsPair(wait int64, group int) bool {
	switch {
	case wait <= 1000 && group <= 0:
		return true
	case wait <= 2500 && group <= 1:
		return true
	case wait <= 3500 && group <= 2:
		return true
	case wait <= 4500 && group <= 3:
		return true
	case wait > 4500 && group <= 4:
		return true
	default:
		return false
	}
}

// removePair deletes two pending entries by index, removing the
// higher-indexed one first so the lower index remains valid.
func (m *Matchmaker) removePair(i, j int) {
	if i > j {
		i, j = j, i
	}
	m.removeAt(j)
	m.removeAt(i)
}

func (m *Matchmaker) removeAt(i int) {
	m.pending = append(m.pending[:i], m.pending[i+1:]...)
}

// PendingLen reports the current size of the pending pool (for metrics).
func (m *Matchmaker) PendingLen() int {
	return len(m.pending)
}
