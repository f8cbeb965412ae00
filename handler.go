package main

import (
	"encoding/json"
	"log"
)

// Handler decodes inbound envelopes and routes them to the Matchmaker or
// Round Engine, the single variant-dispatch point the Tick Loop calls into.
type Handler struct {
	clock      Clock
	matchmaker *Matchmaker
	engine     *RoundEngine
	dispatcher *Dispatcher
}

// NewHandler wires a Handler to its collaborators.
func NewHandler(clock Clock, matchmaker *Matchmaker, engine *RoundEngine, dispatcher *Dispatcher) *Handler {
	return &Handler{clock: clock, matchmaker: matchmaker, engine: engine, dispatcher: dispatcher}
}

// Handle decodes msg's envelope and dispatches on proto_id. Decode failures
// and unknown proto_ids are logged and dropped — a single bad message never disrupts the loop.
func (h *Handler) Handle(msg InboundMessage) {
	var env Envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		log.Printf("[handler] malformed envelope from %s: %v", msg.Endpoint, err)
		return
	}

	switch env.ProtoID {
	case ProtoCGStartMatch:
		h.handleStartMatch(msg.Endpoint, env)
	case ProtoCGMatchGameOpt:
		h.handleMatchGameOpt(env)
	default:
		log.Printf("[handler] unknown proto_id %d from %s", env.ProtoID, msg.Endpoint)
	}
}

func (h *Handler) handleStartMatch(endpoint string, env Envelope) {
	var in CGStartMatch
	if err := DecodeEnvelope(env, &in); err != nil {
		log.Printf("[handler] decode CGStartMatch: %v", err)
		return
	}

	req := MatchRequest{
		Endpoint: endpoint,
		Identity: PlayerIdentity{
			PlayerID:    in.ID,
			DisplayName: in.Name,
			Level:       in.Level,
			Elo:         in.EloScore,
			Accuracy:    in.CorrectRate,
		},
	}

	code := h.matchmaker.Enqueue(req, h.clock.NowMs())

	payload, err := EncodeEnvelope(ProtoGCStartMatch, GCStartMatch{Code: code})
	if err != nil {
		log.Printf("[handler] encode GCStartMatch for %s: %v", in.ID, err)
		return
	}
	h.dispatcher.Enqueue(SendOne(endpoint, envelopeString(payload)))
}

func (h *Handler) handleMatchGameOpt(env Envelope) {
	var in CGMatchGameOpt
	if err := DecodeEnvelope(env, &in); err != nil {
		log.Printf("[handler] decode CGMatchGameOpt: %v", err)
		return
	}
	h.engine.ApplyClientOp(in, h.clock.NowMs())
}
