package main

import "testing"

func TestNewSlotInitialDeadline(t *testing.T) {
	slot := newSlot(PlayerIdentity{PlayerID: "p1"}, "ep1", 8000, 1000)
	if slot.NextDeadlineMs != 1000+8000+postResultWaitMs {
		t.Errorf("unexpected initial deadline: %d", slot.NextDeadlineMs)
	}
	if slot.NextIndex != 0 {
		t.Errorf("expected next index 0, got %d", slot.NextIndex)
	}
}

func TestApplyClientOpCorrectAnswerScoresAndAdvances(t *testing.T) {
	slot := newSlot(PlayerIdentity{PlayerID: "p1"}, "ep1", 8000, 0)
	deadline := slot.NextDeadlineMs

	// Answer with half the question time remaining.
	t_ := deadline - 4000
	ok := applyClientOp(&slot, 0, true, t_, 8000, 100)
	if !ok {
		t.Fatal("expected transition")
	}
	if slot.NextIndex != 1 {
		t.Errorf("expected next index 1, got %d", slot.NextIndex)
	}
	if slot.Score != 50 {
		t.Errorf("expected score 50 (100*4000/8000), got %d", slot.Score)
	}
	if slot.OptBitmap != 0 {
		t.Errorf("expected bitmap 0 for correct answer, got %d", slot.OptBitmap)
	}
}

func TestApplyClientOpIncorrectSetsBit(t *testing.T) {
	slot := newSlot(PlayerIdentity{PlayerID: "p1"}, "ep1", 8000, 0)
	ok := applyClientOp(&slot, 0, false, 1000, 8000, 100)
	if !ok {
		t.Fatal("expected transition")
	}
	if slot.OptBitmap != 1 {
		t.Errorf("expected bit 0 set, got %d", slot.OptBitmap)
	}
	if slot.Score != 0 {
		t.Errorf("expected no score for incorrect answer, got %d", slot.Score)
	}
}

func TestApplyClientOpOutOfOrderIgnored(t *testing.T) {
	slot := newSlot(PlayerIdentity{PlayerID: "p1"}, "ep1", 8000, 0)
	ok := applyClientOp(&slot, 5, true, 1000, 8000, 100)
	if ok {
		t.Fatal("expected no transition for mismatched opt_index")
	}
	if slot.NextIndex != 0 {
		t.Errorf("expected slot unchanged, got next_index=%d", slot.NextIndex)
	}
}

func TestCheckTimeoutAdvancesWithZeroScore(t *testing.T) {
	slot := newSlot(PlayerIdentity{PlayerID: "p1"}, "ep1", 8000, 0)
	deadline := slot.NextDeadlineMs

	if checkTimeout(&slot, deadline, 8000) {
		t.Fatal("should not time out exactly at deadline")
	}
	if !checkTimeout(&slot, deadline+1, 8000) {
		t.Fatal("expected timeout past deadline")
	}
	if slot.NextIndex != 1 {
		t.Errorf("expected advance to index 1, got %d", slot.NextIndex)
	}
	if slot.OptBitmap&1 == 0 {
		t.Error("expected bit 0 set on timeout")
	}
	if slot.Score != 0 {
		t.Errorf("expected zero score on timeout, got %d", slot.Score)
	}
}

func TestCheckTimeoutNoOpWhenFinished(t *testing.T) {
	slot := newSlot(PlayerIdentity{PlayerID: "p1"}, "ep1", 8000, 0)
	slot.NextIndex = RoundLength
	if checkTimeout(&slot, slot.NextDeadlineMs+100000, 8000) {
		t.Error("expected no timeout transition once finished")
	}
}

func TestScoringMonotonicityInLatency(t *testing.T) {
	slotEarly := newSlot(PlayerIdentity{PlayerID: "p1"}, "ep1", 8000, 0)
	slotLate := newSlot(PlayerIdentity{PlayerID: "p2"}, "ep2", 8000, 0)

	// Deadline is 0+8000+2500 = 10500; both answers fall inside the last 8000ms.
	applyClientOp(&slotEarly, 0, true, 3500, 8000, 100)  // answered early, more time remaining
	applyClientOp(&slotLate, 0, true, 9500, 8000, 100)   // answered late, less time remaining

	if slotEarly.Score <= slotLate.Score {
		t.Errorf("expected earlier answer to score more: early=%d late=%d", slotEarly.Score, slotLate.Score)
	}
}
