// Package replace implements the replacement-effect pipeline: rewriters
// over a distinguished set of events, applied to fixpoint before the event
// reaches its applier.
package replace

import "github.com/forgewright/mtgcore/internal/engine/zone"

// EventKind is one of the distinguished replaceable events.
type EventKind string

const (
	EntersBattlefield EventKind = "enters_battlefield"
	DamageIsDealt     EventKind = "damage_is_dealt"
	LifeIsLost        EventKind = "life_is_lost"
	CardsAreDrawn     EventKind = "cards_are_drawn"
	PutIntoGraveyard  EventKind = "is_put_into_graveyard"
	PlayerLoses       EventKind = "player_loses"
	PlayerWins        EventKind = "player_wins"
)

// Event is a would-be occurrence, rewritable before it is applied.
type Event struct {
	Kind          EventKind
	AffectedPlayer zone.PlayerID // ambiguous-affected-player resolution target, when relevant
	Object        zone.ObjectID
	Amount        int
	EntersTapped  bool
	EnterCounters map[string]int
	Prevented     bool
	Redirected    *zone.PlayerID
	ReplacedWin   bool // set when a "would draw from empty library" effect converts the event to a win
	ReplacedNoLose bool // set when a "would lose" effect suppresses the loss
	ReplacedNoWin  bool // set when a "that player can't win the game" effect blocks a pending win
	LibraryEmpty  bool
}

// Applicable is implemented by a replacement effect: it decides whether it
// applies to the current event and, if so, rewrites it.
type Applicable interface {
	// Matches reports whether this replacement effect applies to ev.
	Matches(ev Event) bool
	// Apply rewrites ev and returns the new event. It is called at most once
	// per occurrence of the original event: a replacement effect applies to
	// each occurrence of an event at most once.
	Apply(ev Event) Event
	// ID identifies the effect so the pipeline can mark it used-up.
	ID() string
}

// ChooseApplier is consulted when more than one replacement effect applies
// and the affected player is ambiguous: it returns the ID
// of the effect the affected player chooses to apply first. With a nil
// ChooseApplier the first candidate in registration order is applied, which
// keeps replay reproducible even without a live decision.
type ChooseApplier func(candidates []Applicable, ev Event) string

// Pipeline runs the fixpoint rewrite loop over the registered replacement
// effects.
type Pipeline struct {
	effects []Applicable
	choose  ChooseApplier
}

// New returns a pipeline over the given candidate replacement effects.
func New(effects []Applicable, choose ChooseApplier) *Pipeline {
	return &Pipeline{effects: effects, choose: choose}
}

// Run applies every eligible, not-yet-used replacement effect to ev,
// looping to fixpoint, and returns the final rewritten event plus the IDs
// of the effects that were consumed (so the caller can mark them used-up
// for the rest of this occurrence).
func (p *Pipeline) Run(ev Event) (Event, []string) {
	used := make(map[string]bool)
	var usedOrder []string

	for {
		var candidates []Applicable
		for _, e := range p.effects {
			if used[e.ID()] {
				continue
			}
			if e.Matches(ev) {
				candidates = append(candidates, e)
			}
		}
		if len(candidates) == 0 {
			return ev, usedOrder
		}

		var chosenID string
		if len(candidates) == 1 || p.choose == nil {
			chosenID = candidates[0].ID()
		} else {
			chosenID = p.choose(candidates, ev)
		}

		var chosen Applicable
		for _, c := range candidates {
			if c.ID() == chosenID {
				chosen = c
				break
			}
		}
		if chosen == nil {
			chosen = candidates[0]
		}

		ev = chosen.Apply(ev)
		used[chosen.ID()] = true
		usedOrder = append(usedOrder, chosen.ID())
	}
}
