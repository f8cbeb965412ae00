package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestRobotCSV(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "robot_info.csv")
	content := "bot-1,Sparrow\nbot-2,Lantern\nbot-3,Willow\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write robot_info.csv: %v", err)
	}
	return path
}

func TestBotPoolTakeAndReturn(t *testing.T) {
	pool, err := LoadBotPool(writeTestRobotCSV(t))
	if err != nil {
		t.Fatalf("LoadBotPool: %v", err)
	}
	if pool.Len() != 3 {
		t.Fatalf("expected 3, got %d", pool.Len())
	}

	id, ok := pool.Take()
	if !ok {
		t.Fatal("expected an identity")
	}
	if id.ID != "bot-1" {
		t.Errorf("expected bot-1 first (FIFO), got %s", id.ID)
	}
	if pool.Len() != 2 {
		t.Errorf("expected 2 remaining, got %d", pool.Len())
	}

	pool.Return(id)
	if pool.Len() != 3 {
		t.Errorf("expected 3 after return, got %d", pool.Len())
	}
}

func TestBotPoolExhaustion(t *testing.T) {
	pool, err := LoadBotPool(writeTestRobotCSV(t))
	if err != nil {
		t.Fatalf("LoadBotPool: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, ok := pool.Take(); !ok {
			t.Fatalf("expected identity at iteration %d", i)
		}
	}

	if _, ok := pool.Take(); ok {
		t.Fatal("expected pool to be exhausted")
	}
}
