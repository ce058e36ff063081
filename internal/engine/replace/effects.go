package replace

import "github.com/forgewright/mtgcore/internal/engine/zone"

// This file supplies the supported core set of replacement rewrites:
// enters tapped, enters with N counters of a named type,
// empty-library-draw-is-a-win, can't-lose, damage prevention shields, and
// damage redirection.

// EntersTapped makes a permanent matching Matcher enter tapped. Multiple
// "enters tapped" effects applying to the same event all apply and the
// union is simply "tapped"; EntersTapped is
// idempotent so stacking several has no extra effect beyond the first.
type EntersTapped struct {
	EffectID string
	Matcher  func(zone.ObjectID) bool
}

func (e EntersTapped) ID() string { return e.EffectID }

func (e EntersTapped) Matches(ev Event) bool {
	return ev.Kind == EntersBattlefield && (e.Matcher == nil || e.Matcher(ev.Object))
}

func (e EntersTapped) Apply(ev Event) Event {
	ev.EntersTapped = true
	return ev
}

// EntersWithCounters puts N counters of Name on the entering permanent.
type EntersWithCounters struct {
	EffectID string
	Matcher  func(zone.ObjectID) bool
	Name     string
	Count    int
}

func (e EntersWithCounters) ID() string { return e.EffectID }

func (e EntersWithCounters) Matches(ev Event) bool {
	if ev.Kind != EntersBattlefield {
		return false
	}
	if e.Matcher != nil && !e.Matcher(ev.Object) {
		return false
	}
	return ev.EnterCounters == nil || ev.EnterCounters[e.Name] == 0
}

func (e EntersWithCounters) Apply(ev Event) Event {
	if ev.EnterCounters == nil {
		ev.EnterCounters = map[string]int{}
	}
	ev.EnterCounters[e.Name] += e.Count
	return ev
}

// EmptyLibraryWin converts a draw-with-empty-library event into a win for
// the effect's controller. The rewrite only marks the draw as a win; the
// game records it as a pending win, and the state-based-action pass checks
// any "can't win" effect before finalising it.
type EmptyLibraryWin struct {
	EffectID string
	Owner    zone.PlayerID
}

func (e EmptyLibraryWin) ID() string { return e.EffectID }

func (e EmptyLibraryWin) Matches(ev Event) bool {
	return ev.Kind == CardsAreDrawn && ev.LibraryEmpty && ev.AffectedPlayer == e.Owner && !ev.ReplacedWin
}

func (e EmptyLibraryWin) Apply(ev Event) Event {
	ev.ReplacedWin = true
	return ev
}

// CantLose suppresses a would-be loss for the protected player (Platinum
// Angel, Angel's Grace for the turn).
type CantLose struct {
	EffectID string
	Player   zone.PlayerID
}

func (e CantLose) ID() string { return e.EffectID }

func (e CantLose) Matches(ev Event) bool {
	return ev.Kind == PlayerLoses && ev.AffectedPlayer == e.Player && !ev.ReplacedNoLose
}

func (e CantLose) Apply(ev Event) Event {
	ev.ReplacedNoLose = true
	return ev
}

// CantWin suppresses a would-be win for the named player (Mogg Infestation,
// "Sundering Titan's controller can't win" style effects).
type CantWin struct {
	EffectID string
	Player   zone.PlayerID
}

func (e CantWin) ID() string { return e.EffectID }

func (e CantWin) Matches(ev Event) bool {
	return ev.Kind == PlayerWins && ev.AffectedPlayer == e.Player && !ev.ReplacedNoWin
}

func (e CantWin) Apply(ev Event) Event {
	ev.ReplacedNoWin = true
	return ev
}

// DamagePrevention prevents up to Amount damage of each matching damage
// event: the pipeline marks this effect's ID used for that occurrence only.
// Amount is not reduced by the damage it prevents, and the shield neither
// re-registers nor expires by itself.
type DamagePrevention struct {
	EffectID string
	Matcher  func(ev Event) bool
	Amount   int
}

func (e DamagePrevention) ID() string { return e.EffectID }

func (e DamagePrevention) Matches(ev Event) bool {
	return ev.Kind == DamageIsDealt && !ev.Prevented && e.Matcher(ev)
}

func (e DamagePrevention) Apply(ev Event) Event {
	if ev.Amount <= e.Amount {
		ev.Amount = 0
	} else {
		ev.Amount -= e.Amount
	}
	ev.Prevented = true
	return ev
}

// DamageRedirection sends damage matching Matcher to NewTarget instead.
type DamageRedirection struct {
	EffectID  string
	Matcher   func(ev Event) bool
	NewTarget zone.PlayerID
}

func (e DamageRedirection) ID() string { return e.EffectID }

func (e DamageRedirection) Matches(ev Event) bool {
	return ev.Kind == DamageIsDealt && ev.Redirected == nil && e.Matcher(ev)
}

func (e DamageRedirection) Apply(ev Event) Event {
	target := e.NewTarget
	ev.Redirected = &target
	return ev
}
