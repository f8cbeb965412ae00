package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestPetCSV(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pet.csv")
	content := "0,50,0.5,0.5,0\n51,150,0.6,0.4,1\n151,300,0.7,0.3,2\n301,500,0.8,0.2,3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write pet.csv: %v", err)
	}
	return path
}

func TestExpectationTableLookup(t *testing.T) {
	et, err := LoadExpectationTable(writeTestPetCSV(t))
	if err != nil {
		t.Fatalf("LoadExpectationTable: %v", err)
	}

	eA, eB, group := et.Lookup(0)
	if eA != 0.5 || eB != 0.5 || group != 0 {
		t.Errorf("gap=0: got (%v,%v,%v)", eA, eB, group)
	}

	_, _, group = et.Lookup(400)
	if group != 3 {
		t.Errorf("gap=400: expected group 3, got %d", group)
	}
}

func TestExpectationTableSentinelOnUncoveredGap(t *testing.T) {
	et, err := LoadExpectationTable(writeTestPetCSV(t))
	if err != nil {
		t.Fatalf("LoadExpectationTable: %v", err)
	}

	eA, eB, group := et.Lookup(10000)
	if eA != 1.0 || eB != 0.0 || group != 9 {
		t.Errorf("expected sentinel, got (%v,%v,%v)", eA, eB, group)
	}
}

func TestExpectationTableAbsoluteGap(t *testing.T) {
	et, err := LoadExpectationTable(writeTestPetCSV(t))
	if err != nil {
		t.Fatalf("LoadExpectationTable: %v", err)
	}

	_, _, posGroup := et.Lookup(200)
	_, _, negGroup := et.Lookup(-200)
	if posGroup != negGroup {
		t.Errorf("expected symmetric lookup, got %d vs %d", posGroup, negGroup)
	}
}

func TestLoadExpectationTableMissingFile(t *testing.T) {
	if _, err := LoadExpectationTable("/nonexistent/pet.csv"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
