package main

import (
	"context"
	"log"
	"time"
)

// RunMetrics logs game-thread stats every interval until ctx is canceled.
// An interval with no clients, pending requests or games logs nothing.
func RunMetrics(ctx context.Context, loop *TickLoop, mm *Matchmaker, engine *RoundEngine, transport *WSTransport, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			clients := transport.ClientCount()
			pending := mm.PendingLen()
			games := engine.ActiveGameCount()
			if clients > 0 || pending > 0 || games > 0 {
				log.Printf("[metrics] clients=%d pending=%d active_games=%d inbound=%d outbound=%d",
					clients, pending, games, loop.InboundLen(), engine.dispatcher.QueueLen())
			}
		}
	}
}
