package main

import "log"

// Round length and timing constants.
const (
	RoundLength  = 10   // N
	postResultWaitMs = 2500 // R
	EloK         = 32
)

// newSlot builds a PlayerSlot in its initial awaiting(0) state, with
// deadline D_0 = startMs + Q + R.
func newSlot(identity PlayerIdentity, endpoint string, questionMs int64, startMs int64) PlayerSlot {
	return PlayerSlot{
		Identity:       identity,
		Endpoint:       endpoint,
		NextIndex:      0,
		NextDeadlineMs: startMs + questionMs + postResultWaitMs,
	}
}

// newBotSlot builds a bot PlayerSlot.
func newBotSlot(bot Bot, startMs int64, questionMs int64) PlayerSlot {
	return PlayerSlot{
		Identity: PlayerIdentity{
			PlayerID:    bot.PlayerID,
			DisplayName: bot.DisplayName,
			Level:       bot.Level,
			Elo:         bot.Elo,
		},
		IsBot:          true,
		Bot:            bot,
		NextIndex:      0,
		NextDeadlineMs: startMs + questionMs + postResultWaitMs,
	}
}

// applyClientOp applies a validated client answer at opt_index i, arriving
// at time t. Returns false if opt_index doesn't match the slot's current
// awaiting index.
func applyClientOp(slot *PlayerSlot, optIndex int, correct bool, nowMs int64, questionMs int64, poemScore int) bool {
	if slot.Finished(RoundLength) || optIndex != slot.NextIndex {
		return false
	}
	if nowMs > slot.NextDeadlineMs {
		return false // already past deadline; let the timeout path handle it
	}

	if correct {
		remaining := slot.NextDeadlineMs - nowMs
		if remaining > questionMs {
			log.Printf("[engine] remaining %dms outside [0,%d] for player %s, score skipped", remaining, questionMs, slot.Identity.PlayerID)
		}
		addScore(slot, remaining, questionMs, poemScore)
	} else {
		slot.OptBitmap |= 1 << uint(optIndex)
	}

	advanceSlot(slot, nowMs, questionMs)
	return true
}

// addScore implements the scoring formula: score += floor(S * (D_i - t) /
// Q), clamped to the [0,Q] remaining-time window; out-of-range remaining
// is logged by the caller and simply skipped here.
func addScore(slot *PlayerSlot, remainingMs int64, questionMs int64, poemScore int) {
	if remainingMs < 0 || remainingMs > questionMs {
		return
	}
	slot.Score += int(int64(poemScore) * remainingMs / questionMs)
}

// advanceSlot moves the slot to awaiting(i+1) with a fresh deadline and
// marks it dirty.
func advanceSlot(slot *PlayerSlot, nowMs int64, questionMs int64) {
	slot.NextIndex++
	slot.NextDeadlineMs = nowMs + questionMs + postResultWaitMs
	slot.Dirty = true
}

// checkTimeout advances a slot past a missed deadline, scoring zero and
// setting the bit. Returns true if a timeout transition
// happened this call.
func checkTimeout(slot *PlayerSlot, nowMs int64, questionMs int64) bool {
	if slot.Finished(RoundLength) || nowMs <= slot.NextDeadlineMs {
		return false
	}
	slot.OptBitmap |= 1 << uint(slot.NextIndex)
	advanceSlot(slot, nowMs, questionMs)
	return true
}

// synthesizeBotOp evaluates whether a bot slot should answer this tick: it
// commits once t >= D_i - early_answer_offset_ms, with correctness drawn
// from the bot's accuracy and score computed as if answered with
// `early_answer_offset_ms` of remaining time. It resamples the offset for
// the next question. Returns true if the bot answered this tick.
func synthesizeBotOp(slot *PlayerSlot, f *BotFactory, nowMs int64, questionMs int64, poemScore int) bool {
	if !slot.IsBot || slot.Finished(RoundLength) {
		return false
	}
	triggerAt := slot.NextDeadlineMs - slot.Bot.EarlyAnswerOffsetMs
	if nowMs < triggerAt {
		return false
	}

	correct := f.rng.Intn(100) < slot.Bot.Accuracy
	if !correct {
		slot.OptBitmap |= 1 << uint(slot.NextIndex)
	}
	addScore(slot, slot.Bot.EarlyAnswerOffsetMs, questionMs, poemScore)

	slot.Bot.EarlyAnswerOffsetMs = f.sampleOffset(questionMs)
	advanceSlot(slot, nowMs, questionMs)
	return true
}
