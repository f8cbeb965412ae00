package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// expectationRow is one band of the Elo-expectation table: an Elo-gap range
// mapped to expected-score fractions for both sides plus a coarse tolerance
// group used by the matchmaker's wait-escalation rules.
type expectationRow struct {
	dMin, dMax int
	eA, eB     float64
	group      int
}

// ExpectationTable partitions the absolute Elo gap into disjoint bands.
// Loaded once at startup; read-only thereafter.
type ExpectationTable struct {
	rows []expectationRow
}

// sentinelRow is returned when no configured band covers the gap.
var sentinelRow = expectationRow{eA: 1.0, eB: 0.0, group: 9}

// LoadExpectationTable reads pet.csv: columns dmin, dmax, e_a, e_b, group.
func LoadExpectationTable(path string) (*ExpectationTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pet.csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5

	var rows []expectationRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read pet.csv: %w", err)
		}
		row, err := parseExpectationRow(rec)
		if err != nil {
			return nil, fmt.Errorf("parse pet.csv row %v: %w", rec, err)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("pet.csv: no rows loaded")
	}
	return &ExpectationTable{rows: rows}, nil
}

func parseExpectationRow(rec []string) (expectationRow, error) {
	dMin, err := strconv.Atoi(rec[0])
	if err != nil {
		return expectationRow{}, err
	}
	dMax, err := strconv.Atoi(rec[1])
	if err != nil {
		return expectationRow{}, err
	}
	eA, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return expectationRow{}, err
	}
	eB, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return expectationRow{}, err
	}
	group, err := strconv.Atoi(rec[4])
	if err != nil {
		return expectationRow{}, err
	}
	return expectationRow{dMin: dMin, dMax: dMax, eA: eA, eB: eB, group: group}, nil
}

// Lookup returns the expectation row covering the given absolute Elo gap,
// or the (1.0, 0.0, group=9) sentinel if no row covers it.
func (t *ExpectationTable) Lookup(gap int) (eA, eB float64, group int) {
	if gap < 0 {
		gap = -gap
	}
	for _, row := range t.rows {
		if gap >= row.dMin && gap <= row.dMax {
			return row.eA, row.eB, row.group
		}
	}
	return sentinelRow.eA, sentinelRow.eB, sentinelRow.group
}

// Group is a convenience wrapper returning just the tolerance group for a
// gap, used by the matchmaker's admission check.
func (t *ExpectationTable) Group(gap int) int {
	_, _, g := t.Lookup(gap)
	return g
}
