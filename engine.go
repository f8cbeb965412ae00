package main

import (
	"fmt"
	"log"
	"math"
)

// RoundEngine owns every in-progress Game. It is mutated exclusively by the
// Tick Loop — no locking.
type RoundEngine struct {
	games      map[string]*Game
	qb         *QuestionBank
	et         *ExpectationTable
	botFactory *BotFactory
	dispatcher *Dispatcher
	persist    *PersistenceWriter
	matchmaker *Matchmaker

	questionMs int64
	poemScore  int
	gameCount  int64
}

// NewRoundEngine wires the Round Engine to its collaborators and the
// per-config timing constants (Q, S). matchmaker is released per player at
// end-of-game so the active-player set covers matching and playing alike.
func NewRoundEngine(qb *QuestionBank, et *ExpectationTable, botFactory *BotFactory, dispatcher *Dispatcher, persist *PersistenceWriter, matchmaker *Matchmaker, questionMs int64, poemScore int) *RoundEngine {
	return &RoundEngine{
		games:      make(map[string]*Game),
		qb:         qb,
		et:         et,
		botFactory: botFactory,
		dispatcher: dispatcher,
		persist:    persist,
		matchmaker: matchmaker,
		questionMs: questionMs,
		poemScore:  poemScore,
	}
}

// ActiveGameCount reports the number of in-progress games (for metrics).
func (e *RoundEngine) ActiveGameCount() int {
	return len(e.games)
}

// DrainSignals forwards every signal the engine emitted this tick to the
// dispatcher's sink. The Tick Loop calls this once per
// iteration, after the engine/matchmaker update.
func (e *RoundEngine) DrainSignals() int {
	return e.dispatcher.DrainAll()
}

// CreatePair creates a new Game for a matched pair of human players,
// dispatches GameStart to both, and enqueues a GameCount persistence event.
func (e *RoundEngine) CreatePair(a, b MatchRequest, nowMs int64) {
	questions, err := e.qb.Sample(a.Identity.Level, RoundLength)
	if err != nil {
		log.Printf("[engine] question sampling failed for pair %s/%s: %v", a.Identity.PlayerID, b.Identity.PlayerID, err)
		return
	}

	gameID := fmt.Sprintf("%s_%s_%d", a.Identity.PlayerID, b.Identity.PlayerID, nowMs)
	game := &Game{
		GameID:     gameID,
		StartMs:    nowMs,
		P1:         newSlot(a.Identity, a.Endpoint, e.questionMs, nowMs),
		P2:         newSlot(b.Identity, b.Endpoint, e.questionMs, nowMs),
		Questions:  questions,
		InProgress: true,
	}
	e.games[gameID] = game
	e.emitGameStart(game)
	e.recordGameCreated()
}

// CreateSolo creates a Game for a lone player matched against a
// synthesized bot.
func (e *RoundEngine) CreateSolo(req MatchRequest, nowMs int64) {
	questions, err := e.qb.Sample(req.Identity.Level, RoundLength)
	if err != nil {
		log.Printf("[engine] question sampling failed for solo %s: %v", req.Identity.PlayerID, err)
		return
	}

	bot := e.botFactory.Spawn(req.Identity.Elo, e.questionMs)
	gameID := fmt.Sprintf("%s_%s_%d", req.Identity.PlayerID, bot.PlayerID, nowMs)
	game := &Game{
		GameID:     gameID,
		StartMs:    nowMs,
		P1:         newSlot(req.Identity, req.Endpoint, e.questionMs, nowMs),
		P2:         newBotSlot(bot, nowMs, e.questionMs),
		Questions:  questions,
		InProgress: true,
	}
	e.games[gameID] = game
	e.emitGameStart(game)
	e.recordGameCreated()
}

func (e *RoundEngine) recordGameCreated() {
	e.gameCount++
	e.persist.EnqueueGameCount(e.gameCount)
}

func (e *RoundEngine) emitGameStart(g *Game) {
	poemDataStr, err := EncodePoemDataStr(g.Questions)
	if err != nil {
		log.Printf("[engine] encode poem data for %s: %v", g.GameID, err)
		return
	}
	payload, err := EncodeEnvelope(ProtoGCStartGame, GCStartGame{
		GameID:      g.GameID,
		Player1ID:   g.P1.Identity.PlayerID,
		Player1Name: g.P1.Identity.DisplayName,
		Player2ID:   g.P2.Identity.PlayerID,
		Player2Name: g.P2.Identity.DisplayName,
		PoemDataStr: poemDataStr,
	})
	if err != nil {
		log.Printf("[engine] encode GameStart for %s: %v", g.GameID, err)
		return
	}
	e.dispatcher.Enqueue(SyncPair(g.P1.Endpoint, g.P2.Endpoint, envelopeString(payload)))
}

// ApplyClientOp routes an inbound CGMatchGameOpt to the matching slot.
// Out-of-order or unknown-game ops are logged and ignored.
func (e *RoundEngine) ApplyClientOp(op CGMatchGameOpt, nowMs int64) {
	g, ok := e.games[op.GameID]
	if !ok {
		log.Printf("[engine] op for unknown game %s", op.GameID)
		return
	}
	slot := e.slotFor(g, op.ID)
	if slot == nil {
		log.Printf("[engine] op from unknown player %s in game %s", op.ID, op.GameID)
		return
	}
	correct := op.OptResult == 0
	if !applyClientOp(slot, op.OptIndex, correct, nowMs, e.questionMs, e.poemScore) {
		log.Printf("[engine] out-of-order or late op: player=%s game=%s opt_index=%d next=%d", op.ID, op.GameID, op.OptIndex, slot.NextIndex)
	}
}

func (e *RoundEngine) slotFor(g *Game, playerID string) *PlayerSlot {
	if g.P1.Identity.PlayerID == playerID {
		return &g.P1
	}
	if g.P2.Identity.PlayerID == playerID {
		return &g.P2
	}
	return nil
}

// Update advances every in-progress game by one tick: bot synthesis,
// timeout check, end-of-game check, emit GameUpdate if dirty, then (if
// finished) compute Elo, emit GameEnd, persist, and destroy.
func (e *RoundEngine) Update(nowMs int64) {
	for id, g := range e.games {
		e.tickGame(g, nowMs)
		if !g.InProgress {
			delete(e.games, id)
		}
	}
}

func (e *RoundEngine) tickGame(g *Game, nowMs int64) {
	synthesizeBotOp(&g.P1, e.botFactory, nowMs, e.questionMs, e.poemScore)
	synthesizeBotOp(&g.P2, e.botFactory, nowMs, e.questionMs, e.poemScore)

	if checkTimeout(&g.P1, nowMs, e.questionMs) {
		g.Dirty = true
	}
	if checkTimeout(&g.P2, nowMs, e.questionMs) {
		g.Dirty = true
	}

	if g.P1.Dirty || g.P2.Dirty {
		g.Dirty = true
	}

	finished := g.P1.Finished(RoundLength) && g.P2.Finished(RoundLength)
	g.InProgress = !finished

	if g.Dirty {
		e.emitGameUpdate(g)
	}
	g.P1.Dirty, g.P2.Dirty, g.Dirty = false, false, false

	if finished {
		e.endGame(g)
	}
}

func (e *RoundEngine) emitGameUpdate(g *Game) {
	payload, err := EncodeEnvelope(ProtoGCUpdateGame, GCUpdateGame{
		GameID: g.GameID,
		Players: []GameUpdatePlayer{
			{ID: g.P1.Identity.PlayerID, Name: g.P1.Identity.DisplayName, NextOptIndex: g.P1.NextIndex, OptBitmap: g.P1.OptBitmap},
			{ID: g.P2.Identity.PlayerID, Name: g.P2.Identity.DisplayName, NextOptIndex: g.P2.NextIndex, OptBitmap: g.P2.OptBitmap},
		},
	})
	if err != nil {
		log.Printf("[engine] encode GameUpdate for %s: %v", g.GameID, err)
		return
	}
	e.dispatcher.Enqueue(SyncPair(g.P1.Endpoint, g.P2.Endpoint, envelopeString(payload)))
}

// endGame computes the Elo update, emits GameEnd, persists both players'
// progress, releases a bot identity if one was used, and drops the game
// from the live map (the caller does the map deletion).
func (e *RoundEngine) endGame(g *Game) {
	newElo1, newLevel1, newElo2, newLevel2 := computeEloUpdate(e.et, g.P1.Identity.Elo, g.P1.Identity.Level, g.P1.Score, g.P2.Identity.Elo, g.P2.Identity.Level, g.P2.Score)

	payload, err := EncodeEnvelope(ProtoGCEndGame, GCEndGame{
		GameID: g.GameID,
		Players: []GameEndPlayer{
			{ID: g.P1.Identity.PlayerID, Name: g.P1.Identity.DisplayName, OptBitmap: g.P1.OptBitmap, GameScore: g.P1.Score, NewEloScore: newElo1, NewLevel: newLevel1},
			{ID: g.P2.Identity.PlayerID, Name: g.P2.Identity.DisplayName, OptBitmap: g.P2.OptBitmap, GameScore: g.P2.Score, NewEloScore: newElo2, NewLevel: newLevel2},
		},
	})
	if err != nil {
		log.Printf("[engine] encode GameEnd for %s: %v", g.GameID, err)
	} else {
		e.dispatcher.Enqueue(SyncPair(g.P1.Endpoint, g.P2.Endpoint, envelopeString(payload)))
	}

	if !g.P1.IsBot {
		e.persist.EnqueuePlayerProgress(g.P1.Identity.PlayerID, newLevel1)
		e.matchmaker.Release(g.P1.Identity.PlayerID)
	} else {
		e.botFactory.Release(g.P1.Bot)
	}
	if !g.P2.IsBot {
		e.persist.EnqueuePlayerProgress(g.P2.Identity.PlayerID, newLevel2)
		e.matchmaker.Release(g.P2.Identity.PlayerID)
	} else {
		e.botFactory.Release(g.P2.Bot)
	}
}

// computeEloUpdate applies the end-of-game Elo and level update. The
// outcome comparison is S_a > S_b (the source's `S_a > S_a` was a
// documented typo; this is the corrected form).
func computeEloUpdate(et *ExpectationTable, eloA, levelA, scoreA, eloB, levelB, scoreB int) (newEloA, newLevelA, newEloB, newLevelB int) {
	var oA, oB float64
	switch {
	case scoreA > scoreB:
		oA, oB = 1, 0
	case scoreB > scoreA:
		oA, oB = 0, 1
	default:
		oA, oB = 0.5, 0.5
	}

	eA, eB, _ := et.Lookup(eloA - eloB)

	newEloA = eloA + int(math.Floor(float64(EloK)*(oA-eA)))
	newEloB = eloB + int(math.Floor(float64(EloK)*(oB-eB)))
	if newEloA < 0 {
		newEloA = 0
	}
	if newEloB < 0 {
		newEloB = 0
	}

	newLevelA, newLevelB = levelA, levelB
	if oA > oB {
		newLevelA++
	} else if oB > oA {
		newLevelB++
	}
	return
}

// envelopeString renders an Envelope as its JSON wire form (what the
// transport actually writes to the socket).
func envelopeString(env Envelope) string {
	raw, err := envelopeMarshal(env)
	if err != nil {
		log.Printf("[engine] marshal envelope: %v", err)
		return ""
	}
	return raw
}
