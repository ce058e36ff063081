// Package eventlog is the single source of truth: an append-only ordered
// sequence of typed intents, plus the persistence-boundary interface a host
// implements.
package eventlog

import (
	"encoding/json"
	"time"
)

// IntentType is the closed discriminant set of every intent the engine accepts.
type IntentType string

const (
	RNGSeed             IntentType = "rngSeed"
	Join                IntentType = "join"
	SetCommander        IntentType = "setCommander"
	DeckImportResolved  IntentType = "deckImportResolved"
	ShuffleLibrary      IntentType = "shuffleLibrary"
	DrawCards           IntentType = "drawCards"
	MulliganDecision    IntentType = "mulliganDecision"
	MulliganBottomCards IntentType = "mulliganBottomCards"
	PassPriority        IntentType = "passPriority"
	CastSpell           IntentType = "castSpell"
	ActivateAbility     IntentType = "activateAbility"
	PlayLand            IntentType = "playLand"
	PushStack           IntentType = "pushStack"
	ResolveTop          IntentType = "resolveTop"
	DeclareAttackers    IntentType = "declareAttackers"
	DeclareBlockers     IntentType = "declareBlockers"
	DealCombatDamage    IntentType = "dealCombatDamage"
	NextStep            IntentType = "nextStep"
	NextTurn            IntentType = "nextTurn"
	SubmitDecision      IntentType = "submitDecision"
	Concede             IntentType = "concede"
	DealDamage          IntentType = "dealDamage" // engine-level, used by replay
	SetCounters         IntentType = "setCounters"
	CreateToken         IntentType = "createToken"
	TapPermanent        IntentType = "tapPermanent"
	UntapPermanent      IntentType = "untapPermanent"
	Timeout             IntentType = "timeout"
)

// Intent is a request from an actor: a human player, an AI, or the timer
// collaborator. Payload is kept as json.RawMessage so the engine
// can accept either a flat or nested payload shape from older log formats
// and normalise at dispatch time.
type Intent struct {
	ID        string          `json:"id"`
	GameID    string          `json:"gameId"`
	Type      IntentType      `json:"type"`
	PlayerID  string          `json:"playerId,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	ReplyTo   string          `json:"replyTo,omitempty"` // decision ID this intent answers, if any
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// Record is a committed, persisted entry: an intent plus the sequence
// number it was assigned when accepted.
type Record struct {
	Seq    int64  `json:"seq"`
	GameID string `json:"gameId"`
	Intent Intent `json:"intent"`
}

// Normalise accepts either a flat payload object or one nested one level
// under a "payload" key, and returns the flat form, since the replay driver
// and live hosts do not always agree on which shape they send.
func Normalise(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return json.RawMessage("{}"), nil
	}
	var wrapper struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Payload) > 0 {
		return wrapper.Payload, nil
	}
	return raw, nil
}
