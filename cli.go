package main

import (
	"fmt"
	"os"

	"poemrace/store"
)

// RunCLI handles subcommand execution before the server starts listening.
// Returns true if a subcommand was handled.
func RunCLI(args []string, dbPath string) bool {
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "version":
		fmt.Printf("poemrace server %s\n", Version)
		return true
	case "status":
		return cliStatus(dbPath)
	case "leaderboard":
		return cliLeaderboard(args[1:], dbPath)
	default:
		return false
	}
}

func cliStatus(dbPath string) bool {
	st, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	games, _ := st.GetCounter(store.CounterGameNum)
	clients, _ := st.GetCounter(store.CounterClientNum)
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("Games played: %d\n", games)
	fmt.Printf("Last connection count: %d\n", clients)
	fmt.Printf("Version: %s\n", Version)
	return true
}

func cliLeaderboard(args []string, dbPath string) bool {
	st, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	limit := 20
	if len(args) > 0 {
		fmt.Sscanf(args[0], "%d", &limit)
	}

	top, err := st.TopLeaderboard(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(top) == 0 {
		fmt.Println("No leaderboard entries yet.")
		return true
	}
	for i, e := range top {
		fmt.Printf("%3d. %-24s level %d\n", i+1, e.PlayerKey, e.Level)
	}
	return true
}
