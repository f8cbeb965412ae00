package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// BotIdentity is one pre-named entry in the bot identity pool.
type BotIdentity struct {
	ID   string
	Name string
}

// BotPool is a finite, reusable pool of bot identities: Take removes one
// from the front, Return puts one back at the end once its game ends.
// Once exhausted, callers fall back to a synthesized identity (see
// botfactory.go).
type BotPool struct {
	available []BotIdentity
}

// LoadBotPool reads robot_info.csv: columns id, name.
func LoadBotPool(path string) (*BotPool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open robot_info.csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	var pool []BotIdentity
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read robot_info.csv: %w", err)
		}
		pool = append(pool, BotIdentity{ID: rec[0], Name: rec[1]})
	}
	return &BotPool{available: pool}, nil
}

// Take removes and returns the next available identity. ok is false if the
// pool is exhausted.
func (p *BotPool) Take() (BotIdentity, bool) {
	if len(p.available) == 0 {
		return BotIdentity{}, false
	}
	id := p.available[0]
	p.available = p.available[1:]
	return id, true
}

// Return hands an identity back to the pool once its game ends.
func (p *BotPool) Return(id BotIdentity) {
	p.available = append(p.available, id)
}

// Len reports the number of identities currently available.
func (p *BotPool) Len() int {
	return len(p.available)
}
