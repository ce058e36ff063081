// Package effectir implements the structured effect intermediate
// representation that drives deterministic card-effect resolution.
package effectir

import (
	"github.com/forgewright/mtgcore/internal/engine/decision"
	"github.com/forgewright/mtgcore/internal/engine/mana"
	"github.com/forgewright/mtgcore/internal/engine/zone"
)

// StepKind is the closed set of executable step shapes.
type StepKind string

const (
	Draw             StepKind = "draw"
	Mill             StepKind = "mill"
	Scry             StepKind = "scry"
	Surveil          StepKind = "surveil"
	ExileTop         StepKind = "exile_top"
	ImpulseExileTop  StepKind = "impulse_exile_top"
	ModifyPT         StepKind = "modify_pt"
	AddMana          StepKind = "add_mana"
	CreateToken      StepKind = "create_token"
	Destroy          StepKind = "destroy"
	Exile            StepKind = "exile"
	Bounce           StepKind = "bounce"
	Sacrifice        StepKind = "sacrifice"
	GainLife         StepKind = "gain_life"
	LoseLife         StepKind = "lose_life"
	DealDamage       StepKind = "deal_damage"
	MoveZone         StepKind = "move_zone"
)

// Selector names a group of players/objects relative to the execution
// context: you, each opponent, each player, target player, or each of
// those opponents.
type Selector string

const (
	SelectorYou                 Selector = "you"
	SelectorEachOpponent        Selector = "each_opponent"
	SelectorEachPlayer          Selector = "each_player"
	SelectorTargetPlayer        Selector = "target_player"
	SelectorEachOfThoseOpponents Selector = "each_of_those_opponents"
)

// Context carries everything a step needs to resolve deterministically
// against the current game state.
type Context struct {
	Controller      zone.PlayerID
	SourceID        zone.ObjectID
	SourceName      string
	ReferenceTypes  []string // for type-matching clauses ("until you exile an instant or sorcery card")
	TargetPlayer    *zone.PlayerID
	TargetOpponent  *zone.PlayerID
	ThoseOpponents  []zone.PlayerID // antecedent set bound by "each of those opponents"
	AllPlayers      []zone.PlayerID // every player, in the order the caller supplies (the engine sorts them by player ID)
}

// ResolvePlayers expands a Selector against ctx into a concrete, ordered
// player list.
func (c Context) ResolvePlayers(s Selector) []zone.PlayerID {
	switch s {
	case SelectorYou:
		return []zone.PlayerID{c.Controller}
	case SelectorTargetPlayer:
		if c.TargetPlayer == nil {
			return nil
		}
		return []zone.PlayerID{*c.TargetPlayer}
	case SelectorEachPlayer:
		return append([]zone.PlayerID(nil), c.AllPlayers...)
	case SelectorEachOpponent:
		var out []zone.PlayerID
		for _, p := range c.AllPlayers {
			if p != c.Controller {
				out = append(out, p)
			}
		}
		return out
	case SelectorEachOfThoseOpponents:
		return append([]zone.PlayerID(nil), c.ThoseOpponents...)
	default:
		return nil
	}
}

// SkipReason records why a step did not execute in hints-only mode, instead
// of halting with a decision ("skip and record a skip reason").
type SkipReason string

// Step is one instruction in the executor's IR; concrete step payloads are
// the StepXxx types below. The executor dispatches on a type switch over
// the closed set of step kinds.
type Step interface {
	Kind() StepKind
}

// Result is what running a Step produced.
type Result struct {
	Decision   *decision.Pending // non-nil if the step halted for a player choice
	Skipped    bool
	SkipReason SkipReason
	Applied    bool
}

// Executor runs Steps against live game state via the hook functions it is
// constructed with; it has no game-state fields of its own so the same
// executor can run any game's steps (spec's "deliberately conservative"
// executor).
type Executor struct {
	HintsOnly bool
	Hooks     Hooks
}

// Hooks are the state-mutating primitives the executor calls into. Each
// corresponds to one or more StepKinds.
type Hooks struct {
	DrawCards        func(player zone.PlayerID, n int) (drawn int, emptyLibrary bool)
	MillCards        func(player zone.PlayerID, n int) []zone.ObjectID
	Scry             func(player zone.PlayerID, n int) *decision.Pending
	Surveil          func(player zone.PlayerID, n int) *decision.Pending
	ExileFromTopOf   func(player zone.PlayerID, n int) []zone.ObjectID
	ModifyPT         func(target zone.ObjectID, power, toughness int)
	AddMana          func(player zone.PlayerID, pool mana.Pool)
	CreateToken      func(owner zone.PlayerID, base zone.CardRecord, amount int, tapped bool, counters zone.Counters) []zone.ObjectID
	Destroy          func(target zone.ObjectID)
	ExileObject      func(target zone.ObjectID)
	Bounce           func(target zone.ObjectID) // return to owner's hand
	SacrificeOptions func(player zone.PlayerID, matching func(zone.ObjectID) bool) *decision.Pending
	GainLife         func(player zone.PlayerID, amount int)
	LoseLife         func(player zone.PlayerID, amount int)
	DealDamage       func(source zone.ObjectID, target zone.ObjectID, targetPlayer zone.PlayerID, amount int)
	MoveZone         func(from zone.Name, to zone.Name, matching func(*zone.Object) bool, entersTapped bool, newController *zone.PlayerID) []zone.ObjectID
	ScanLibraryUntil func(player zone.PlayerID, matches func(zone.CardRecord) bool) (count int, found bool)
}

// StepDraw draws N cards for each player the selector resolves to.
type StepDraw struct {
	Who    Selector
	Amount int
}

func (StepDraw) Kind() StepKind { return Draw }

// StepMill mills N cards.
type StepMill struct {
	Who    Selector
	Amount int
}

func (StepMill) Kind() StepKind { return Mill }

// StepScry halts with a scry decision.
type StepScry struct {
	Who    Selector
	Amount int
}

func (StepScry) Kind() StepKind { return Scry }

// StepSurveil halts with a surveil decision.
type StepSurveil struct {
	Who    Selector
	Amount int
}

func (StepSurveil) Kind() StepKind { return Surveil }

// StepExileTop exiles the top N cards of the selected players' libraries.
type StepExileTop struct {
	Who    Selector
	Amount int
}

func (StepExileTop) Kind() StepKind { return ExileTop }

// StepImpulseExileTop describes exiling the top card with permission to
// play it for Duration, optionally gated by Condition. The executor exiles
// the top card of each selected player's library; it does not read
// Permission, Duration or Condition, so no play permission is granted.
type StepImpulseExileTop struct {
	Who       Selector
	Permission string // e.g. "play", "cast"
	Duration  string  // e.g. "this_turn", "until_end_of_next_turn"
	Condition func(zone.CardRecord) bool
}

func (StepImpulseExileTop) Kind() StepKind { return ImpulseExileTop }

// StepModifyPT applies a power/toughness delta, optionally scaled by a
// where-X count.
type StepModifyPT struct {
	Targets     []zone.ObjectID
	Power       int
	Toughness   int
	WhereX      func() int // evaluated once, multiplies Power/Toughness if non-nil
	PerScaler   int        // multiplier already baked into Power/Toughness when WhereX is nil
}

func (StepModifyPT) Kind() StepKind { return ModifyPT }

// StepAddMana adds the given pool contents to a player's mana pool.
type StepAddMana struct {
	Who  Selector
	Pool mana.Pool
}

func (StepAddMana) Kind() StepKind { return AddMana }

// StepCreateToken creates Amount copies of Base under the selected owner.
type StepCreateToken struct {
	Owner    Selector
	Base     zone.CardRecord
	Amount   int
	Tapped   bool
	Counters zone.Counters
}

func (StepCreateToken) Kind() StepKind { return CreateToken }

// StepDestroy destroys the given permanents (subject to indestructible,
// enforced by the caller's Destroy hook).
type StepDestroy struct {
	Targets []zone.ObjectID
}

func (StepDestroy) Kind() StepKind { return Destroy }

// StepExile exiles the given objects from wherever they currently are.
type StepExile struct {
	Targets []zone.ObjectID
}

func (StepExile) Kind() StepKind { return Exile }

// StepBounce returns the given permanents to their owners' hands.
type StepBounce struct {
	Targets []zone.ObjectID
}

func (StepBounce) Kind() StepKind { return Bounce }

// StepSacrifice halts with a sacrifice decision unless the player controls
// exactly one legal permanent, in which case the automation hint applies.
type StepSacrifice struct {
	Who     Selector
	Matches func(zone.ObjectID) bool
}

func (StepSacrifice) Kind() StepKind { return Sacrifice }

// StepGainLife / StepLoseLife adjust life totals.
type StepGainLife struct {
	Who    Selector
	Amount int
}

func (StepGainLife) Kind() StepKind { return GainLife }

type StepLoseLife struct {
	Who    Selector
	Amount int
}

func (StepLoseLife) Kind() StepKind { return LoseLife }

// StepDealDamage deals damage to players, creatures, planeswalkers,
// battles, or a group selector.
type StepDealDamage struct {
	Source        zone.ObjectID
	TargetObjects []zone.ObjectID
	TargetPlayers Selector
	Amount        int
}

func (StepDealDamage) Kind() StepKind { return DealDamage }

// StepMoveZone moves all cards of a class from one zone to another,
// optionally entering tapped, optionally with a new-controller override
//.
type StepMoveZone struct {
	From          zone.Name
	To            zone.Name
	Matches       func(*zone.Object) bool
	EntersTapped  bool
	NewController *zone.PlayerID
}

func (StepMoveZone) Kind() StepKind { return MoveZone }
