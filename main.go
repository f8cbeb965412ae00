package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"poemrace/store"
)

// Version is the build identifier surfaced by the "version" and "status"
// CLI subcommands.
const Version = "0.1.0"

func main() {
	// Check for CLI subcommands before parsing server flags.
	if len(os.Args) > 1 {
		cliDB := DefaultConfig().DBPath
		if RunCLI(os.Args[1:], cliDB) {
			return
		}
	}

	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("[config] %v", err)
	}

	et, err := LoadExpectationTable(cfg.PetCSV)
	if err != nil {
		log.Fatalf("[startup] load expectation table: %v", err)
	}
	qb, err := LoadQuestionBank(cfg.PoemCSV, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		log.Fatalf("[startup] load question bank: %v", err)
	}
	botPool, err := LoadBotPool(cfg.RobotCSV)
	if err != nil {
		log.Fatalf("[startup] load bot pool: %v", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("[store] %v", err)
	}
	defer st.Close()

	clock := NewSystemClock()
	botFactory := NewBotFactory(botPool, rand.New(rand.NewSource(time.Now().UnixNano()+1)))
	persist := NewPersistenceWriter(st, cfg.MatchDataKeyName, 256)
	go persist.Run()
	defer persist.Stop()

	mm := NewMatchmaker(et)
	dispatcher := NewDispatcher(nil, 1024) // sink wired to the transport below
	engine := NewRoundEngine(qb, et, botFactory, dispatcher, persist, mm, cfg.PoemMillTime, cfg.PoemScore)

	loop := NewTickLoop(clock, 1024, mm, engine, persist, cfg.TickMs)
	handler := NewHandler(clock, mm, engine, dispatcher)

	transport := NewWSTransport(loop, persist)
	dispatcher.SetSink(transport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Println("[server] shutting down...")
		cancel()
	}()

	go RunMetrics(ctx, loop, mm, engine, transport, 5*time.Second)

	// The Game thread: the single goroutine that ever mutates Matchmaker
	// or Round Engine state.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			loop.Step(handler.Handle)
			if loop.InboundLen() == 0 {
				time.Sleep(time.Millisecond)
			}
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/ws", transport)
	wsServer := &http.Server{Addr: portAddr(cfg.Port), Handler: mux}

	go func() {
		log.Printf("[server] websocket listening on %s", wsServer.Addr)
		if err := wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] ws listen: %v", err)
		}
	}()

	api := NewAPIServer(cfg, loop, mm, engine, transport, st)
	go func() {
		log.Printf("[server] admin API listening on :%d", cfg.APIPort)
		if err := api.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[api] %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	wsServer.Shutdown(shutdownCtx)
	api.Shutdown(shutdownCtx)
}

func portAddr(port int) string {
	return ":" + strconv.Itoa(port)
}
