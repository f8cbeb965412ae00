package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Protocol message IDs.
const (
	ProtoCGStartMatch    = 1001
	ProtoGCStartMatch    = 2001
	ProtoCGMatchGameOpt  = 1002
	ProtoGCStartGame     = 2002
	ProtoGCUpdateGame    = 2003
	ProtoGCEndGame       = 2004
)

// Envelope is the wire-level wrapper every inbound and outbound payload is
// framed in: an opaque proto_id tag plus the base64 encoding of the inner
// record's JSON.
type Envelope struct {
	ProtoID      uint64 `json:"proto_id"`
	ProtoJSONStr string `json:"proto_json_str"`
}

// EncodeEnvelope marshals record as JSON, base64-encodes it, and wraps it
// in an Envelope tagged with protoID.
func EncodeEnvelope(protoID uint64, record any) (Envelope, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode record: %w", err)
	}
	return Envelope{
		ProtoID:      protoID,
		ProtoJSONStr: base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// DecodeEnvelope base64-decodes env's inner payload and unmarshals it into
// out (a pointer to the expected record type).
func DecodeEnvelope(env Envelope, out any) error {
	raw, err := base64.StdEncoding.DecodeString(env.ProtoJSONStr)
	if err != nil {
		return fmt.Errorf("decode base64 payload: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode record json: %w", err)
	}
	return nil
}

// --- Client -> Server records ---

// CGStartMatch requests matchmaking.
type CGStartMatch struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Level       int     `json:"level"`
	EloScore    int     `json:"elo_score"`
	CorrectRate float64 `json:"correct_rate"`
}

// CGMatchGameOpt reports the client's answer to one question.
type CGMatchGameOpt struct {
	ID        string `json:"id"`
	GameID    string `json:"game_id"`
	OptIndex  int    `json:"opt_index"`
	OptResult int    `json:"opt_result"` // 0=correct, 1=incorrect
}

// --- Server -> Client records ---

// GCStartMatch replies to a CGStartMatch. Code 0=accepted, -1=already active.
type GCStartMatch struct {
	Code int `json:"code"`
}

// GCStartGame announces a new game to both participants.
type GCStartGame struct {
	GameID       string `json:"game_id"`
	Player1ID    string `json:"player1_id"`
	Player1Name  string `json:"player1_name"`
	Player2ID    string `json:"player2_id"`
	Player2Name  string `json:"player2_name"`
	PoemDataStr  string `json:"poem_data_str"` // embedded JSON string of the N-question script
}

// GameUpdatePlayer is one player's projection in a GCUpdateGame signal.
type GameUpdatePlayer struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	NextOptIndex  int    `json:"next_opt_index"`
	OptBitmap     uint32 `json:"opt_bitmap"`
}

// GCUpdateGame carries incremental per-question state for both players.
type GCUpdateGame struct {
	GameID  string             `json:"game_id"`
	Players []GameUpdatePlayer `json:"players"`
}

// GameEndPlayer is one player's final projection in a GCEndGame signal.
type GameEndPlayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	OptBitmap   uint32 `json:"opt_bitmap"`
	GameScore   int    `json:"game_score"`
	NewEloScore int    `json:"new_elo_score"`
	NewLevel    int    `json:"new_level"`
}

// GCEndGame announces the final outcome to both participants.
type GCEndGame struct {
	GameID  string          `json:"game_id"`
	Players []GameEndPlayer `json:"players"`
}

// poemDataScript is the embedded-JSON payload of GCStartGame.PoemDataStr:
// the N-question script for this game.
type poemDataScript struct {
	Questions []QuestionRecord `json:"questions"`
}

// envelopeMarshal renders an Envelope as the JSON string written to the
// wire by the transport layer.
func envelopeMarshal(env Envelope) (string, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return string(raw), nil
}

// EncodePoemDataStr serializes the question script for embedding in
// GCStartGame.PoemDataStr.
func EncodePoemDataStr(questions []QuestionRecord) (string, error) {
	raw, err := json.Marshal(poemDataScript{Questions: questions})
	if err != nil {
		return "", fmt.Errorf("encode poem data: %w", err)
	}
	return string(raw), nil
}
