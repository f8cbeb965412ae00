package main

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func newTestEngine(t *testing.T) (*RoundEngine, *mockSink) {
	t.Helper()

	dir := t.TempDir()
	poemPath := filepath.Join(dir, "poem.csv")
	var lines string
	for id := 1; id <= 25; id++ {
		lines += csvLine(id)
	}
	if err := os.WriteFile(poemPath, []byte(lines), 0o644); err != nil {
		t.Fatalf("write poem.csv: %v", err)
	}
	qb, err := LoadQuestionBank(poemPath, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("LoadQuestionBank: %v", err)
	}

	et := testExpectationTable(t)
	botFactory := NewBotFactory(nil, rand.New(rand.NewSource(2)))

	sink := &mockSink{}
	dispatcher := NewDispatcher(sink, 16)

	store := newMockLeaderboardStore()
	persist := NewPersistenceWriter(store, "leaderboard", 16)
	go persist.Run()
	t.Cleanup(func() { persist.Stop() })

	mm := NewMatchmaker(et)
	engine := NewRoundEngine(qb, et, botFactory, dispatcher, persist, mm, 8000, 100)
	return engine, sink
}

func TestEngineCreatePairEmitsGameStart(t *testing.T) {
	engine, sink := newTestEngine(t)

	a := mkReq("p1", 1000)
	a.Identity.Level = 1
	b := mkReq("p2", 1000)
	b.Identity.Level = 1

	engine.CreatePair(a, b, 0)
	if len(engine.games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(engine.games))
	}
	engine.dispatcher.DrainAll()
	if len(sink.writes) != 2 {
		t.Fatalf("expected GameStart delivered to both endpoints, got %d writes", len(sink.writes))
	}
}

func TestEngineApplyClientOpOutOfOrderLogged(t *testing.T) {
	engine, _ := newTestEngine(t)

	a := mkReq("p1", 1000)
	a.Identity.Level = 1
	b := mkReq("p2", 1000)
	b.Identity.Level = 1
	engine.CreatePair(a, b, 0)

	var gameID string
	for id := range engine.games {
		gameID = id
	}

	engine.ApplyClientOp(CGMatchGameOpt{ID: "p1", GameID: gameID, OptIndex: 5, OptResult: 0}, 100)

	g := engine.games[gameID]
	if g.P1.NextIndex != 0 {
		t.Errorf("expected slot unchanged after out-of-order op, got %d", g.P1.NextIndex)
	}
}

func TestEngineUpdateAdvancesOnTimeout(t *testing.T) {
	engine, sink := newTestEngine(t)

	a := mkReq("p1", 1000)
	a.Identity.Level = 1
	b := mkReq("p2", 1000)
	b.Identity.Level = 1
	engine.CreatePair(a, b, 0)
	engine.dispatcher.DrainAll()
	sink.writes = nil

	var g *Game
	for _, game := range engine.games {
		g = game
	}
	deadline := g.P1.NextDeadlineMs

	engine.Update(deadline + 1)
	engine.dispatcher.DrainAll()

	if g.P1.NextIndex != 1 {
		t.Errorf("expected timeout advance to index 1, got %d", g.P1.NextIndex)
	}
	if len(sink.writes) == 0 {
		t.Error("expected a GameUpdate signal dispatched after timeout")
	}
}

func TestComputeEloUpdateTieLeavesLevelsUnchanged(t *testing.T) {
	et := testExpectationTable(t)
	newEloA, newLevelA, newEloB, newLevelB := computeEloUpdate(et, 1000, 3, 500, 1000, 3, 500)

	if newLevelA != 3 || newLevelB != 3 {
		t.Errorf("expected levels unchanged on tie, got %d %d", newLevelA, newLevelB)
	}
	if newEloA != 1000 || newEloB != 1000 {
		t.Errorf("expected elo unchanged for equal-elo tie, got %d %d", newEloA, newEloB)
	}
}

func TestComputeEloUpdateWinnerGainsLevel(t *testing.T) {
	et := testExpectationTable(t)
	newEloA, newLevelA, _, newLevelB := computeEloUpdate(et, 1000, 3, 900, 1000, 5, 100)

	if newLevelA != 4 {
		t.Errorf("expected winner level+1, got %d", newLevelA)
	}
	if newLevelB != 5 {
		t.Errorf("expected loser level unchanged, got %d", newLevelB)
	}
	if newEloA <= 1000 {
		t.Errorf("expected winner elo to increase, got %d", newEloA)
	}
}

func TestComputeEloUpdateClampedAtZero(t *testing.T) {
	et := testExpectationTable(t)
	_, _, newEloB, _ := computeEloUpdate(et, 1000, 1, 1000, 5, 1, 0)
	if newEloB < 0 {
		t.Errorf("expected elo clamped at zero, got %d", newEloB)
	}
}
