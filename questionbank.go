package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
)

// QuestionRecord is one row of the question bank: a poem fragment with four
// answer-sign candidates, the correct one identified by q_sign matching one
// of the a_sign slots at runtime via the wire protocol's own opt_result bit,
// not stored here.
type QuestionRecord struct {
	LevelID int
	PoemID  int
	QSign   string
	ASigns  [4]string
}

// bandBound is one row of the level→question-band lookup table: levels in
// [loLevel, hiLevel] map to band, whose eligible level-id pool is
// [loID, hiID].
type bandBound struct {
	loLevel, hiLevel int
	band             int
	loID, hiID       int
}

// questionBandBounds implements the fixed level-to-id-range mapping. Bands
// are named by their starting level (1, 11, 21, ... 71); the last band's id
// range extends to whatever level-id the loaded CSV actually tops out at.
var questionBandBounds = []bandBound{
	{1, 10, 1, 1, 20},
	{11, 20, 11, 100, 300},
	{21, 30, 21, 200, 400},
	{31, 40, 31, 300, 500},
	{41, 50, 41, 400, 600},
	{51, 60, 51, 500, 700},
	{61, 70, 61, 600, 800},
	{71, 1 << 30, 71, 300, 0}, // hiID resolved to the bank's max level-id at load time
}

// levelBucket groups one level-id's question records by q_sign, preserving
// first-seen sign order so Sample can shuffle a stable slice of keys.
type levelBucket struct {
	signs  []string
	bySign map[string][]QuestionRecord
}

func (b *levelBucket) add(q QuestionRecord) {
	if _, ok := b.bySign[q.QSign]; !ok {
		b.signs = append(b.signs, q.QSign)
		b.bySign[q.QSign] = nil
	}
	b.bySign[q.QSign] = append(b.bySign[q.QSign], q)
}

// QuestionBank is the level-keyed pool of question records, bucketed by
// q_sign within each level-id, loaded once at startup from poem.csv.
type QuestionBank struct {
	byLevelID map[int]*levelBucket
	maxLevel  int
	rng       *rand.Rand
}

// LoadQuestionBank reads poem.csv: columns level_id, poem_id, q_sign,
// a_sign1..4. rng seeds the sampler; pass a fixed-seed *rand.Rand in tests
// for reproducibility.
func LoadQuestionBank(path string, rng *rand.Rand) (*QuestionBank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open poem.csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 7

	byLevelID := make(map[int]*levelBucket)
	maxLevel := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read poem.csv: %w", err)
		}
		q, err := parseQuestionRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("parse poem.csv row %v: %w", rec, err)
		}
		bucket, ok := byLevelID[q.LevelID]
		if !ok {
			bucket = &levelBucket{bySign: make(map[string][]QuestionRecord)}
			byLevelID[q.LevelID] = bucket
		}
		bucket.add(q)
		if q.LevelID > maxLevel {
			maxLevel = q.LevelID
		}
	}
	if len(byLevelID) == 0 {
		return nil, fmt.Errorf("poem.csv: no rows loaded")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &QuestionBank{byLevelID: byLevelID, maxLevel: maxLevel, rng: rng}, nil
}

func parseQuestionRecord(rec []string) (QuestionRecord, error) {
	levelID, err := strconv.Atoi(rec[0])
	if err != nil {
		return QuestionRecord{}, err
	}
	poemID, err := strconv.Atoi(rec[1])
	if err != nil {
		return QuestionRecord{}, err
	}
	return QuestionRecord{
		LevelID: levelID,
		PoemID:  poemID,
		QSign:   rec[2],
		ASigns:  [4]string{rec[3], rec[4], rec[5], rec[6]},
	}, nil
}

// band returns the level-id range eligible for sampling questions for the
// given player level.
func (qb *QuestionBank) band(level int) (loID, hiID int) {
	for _, b := range questionBandBounds {
		if level >= b.loLevel && level <= b.hiLevel {
			hi := b.hiID
			if hi == 0 {
				hi = qb.maxLevel
			}
			return b.loID, hi
		}
	}
	return 1, qb.maxLevel
}

// Sample draws N question records for the given player level: it shuffles
// the eligible level-id set (Fisher-Yates) and draws N without replacement,
// picking one record per chosen level-id.
func (qb *QuestionBank) Sample(level, n int) ([]QuestionRecord, error) {
	loID, hiID := qb.band(level)

	var ids []int
	for id := loID; id <= hiID; id++ {
		if _, ok := qb.byLevelID[id]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) < n {
		return nil, fmt.Errorf("question bank: only %d eligible level-ids for level %d, need %d", len(ids), level, n)
	}

	fisherYatesShuffle(ids, qb.rng)

	out := make([]QuestionRecord, 0, n)
	for _, id := range ids[:n] {
		bucket := qb.byLevelID[id]
		out = append(out, bucket.randomRecord(qb.rng))
	}
	return out, nil
}

// randomRecord picks a q_sign bucket uniformly at random, then a record
// uniformly within it, so no q_sign is favored by having more lines.
func (b *levelBucket) randomRecord(rng *rand.Rand) QuestionRecord {
	signs := append([]string(nil), b.signs...)
	fisherYatesShuffleStrings(signs, rng)
	recs := b.bySign[signs[0]]
	return recs[rng.Intn(len(recs))]
}

// fisherYatesShuffle performs a standard in-place Fisher-Yates shuffle.
func fisherYatesShuffle(s []int, rng *rand.Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// fisherYatesShuffleStrings is fisherYatesShuffle's string-slice twin, used
// to pick a random q_sign bucket.
func fisherYatesShuffleStrings(s []string, rng *rand.Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
