// Package errors defines the engine's closed error taxonomy.
//
// Every error the tick loop produces is one of the five kinds below. Host
// code should use errors.As to recover the kind and decide how to react
// (surface to the submitter, roll back, or fail the game).
package errors

import "fmt"

// Code identifies which branch of the taxonomy an error belongs to.
type Code string

const (
	CodeIllegalIntent   Code = "illegal_intent"
	CodeMalformedIntent Code = "malformed_intent"
	CodeUnknownDecision Code = "unknown_decision"
	CodeInconsistent    Code = "inconsistent"
	CodeFatal           Code = "fatal"
)

// IllegalIntentError means the intent violates a rule: wrong phase, not the
// actor's priority, illegal target, insufficient mana, and so on. The intent
// is rejected, state is unchanged, and the error is surfaced only to the
// submitter.
type IllegalIntentError struct {
	Reason   string
	IntentID string
}

func (e *IllegalIntentError) Error() string {
	return fmt.Sprintf("illegal intent %s: %s", e.IntentID, e.Reason)
}

func (e *IllegalIntentError) Code() Code { return CodeIllegalIntent }

// MalformedIntentError means the intent failed schema validation before any
// rule was even consulted. Handled identically to IllegalIntentError.
type MalformedIntentError struct {
	Reason   string
	IntentID string
}

func (e *MalformedIntentError) Error() string {
	return fmt.Sprintf("malformed intent %s: %s", e.IntentID, e.Reason)
}

func (e *MalformedIntentError) Code() Code { return CodeMalformedIntent }

// UnknownDecisionError means a submitDecision intent referenced a decision ID
// that does not exist, belongs to another player, or has already been
// answered/closed.
type UnknownDecisionError struct {
	DecisionID string
}

func (e *UnknownDecisionError) Error() string {
	return fmt.Sprintf("unknown or expired decision %s", e.DecisionID)
}

func (e *UnknownDecisionError) Code() Code { return CodeUnknownDecision }

// InconsistentError means an internal invariant was violated mid-tick (an
// object claimed a zone it isn't in, a counter went negative, and so on).
// The tick that produced it is rolled back to the pre-tick snapshot; the
// game continues serving subsequent intents.
type InconsistentError struct {
	Invariant string
	Detail    string
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("invariant violated (%s): %s", e.Invariant, e.Detail)
}

func (e *InconsistentError) Code() Code { return CodeInconsistent }

// FatalError means unrecoverable corruption (a sequence-number gap in the
// log, for instance). The game is marked failed and accepts no further
// intents.
type FatalError struct {
	Reason string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s", e.Reason)
}

func (e *FatalError) Code() Code { return CodeFatal }

// Coder is implemented by every error in the taxonomy.
type Coder interface {
	error
	Code() Code
}
