// Package trigger implements triggered-ability collection, intervening-if
// evaluation, and per-controller ordering onto the stack.
package trigger

import (
	"errors"

	"github.com/forgewright/mtgcore/internal/engine/zone"
)

// ErrOrderMismatch is returned by Drain when the caller-supplied order does
// not name exactly the set of source IDs currently queued for the
// controller — the shape a malformed or stale ordering-decision reply takes.
var ErrOrderMismatch = errors.New("trigger: ordering reply does not match the queued source IDs")

// GameEventKind is one of the internal events offered to triggered
// abilities.
type GameEventKind string

const (
	EnterBattlefield GameEventKind = "ENTER_BATTLEFIELD"
	LeaveBattlefield GameEventKind = "LEAVE_BATTLEFIELD"
	Dies             GameEventKind = "DIES"
	Attacks          GameEventKind = "ATTACKS"
	Blocks           GameEventKind = "BLOCKS"
	DealsDamage      GameEventKind = "DEALS_DAMAGE"
	IsCast           GameEventKind = "IS_CAST"
	Draws            GameEventKind = "DRAWS"
	Discards         GameEventKind = "DISCARDS"
	BeginStep        GameEventKind = "BEGIN_STEP"
)

// GameEvent is a single internal occurrence offered to every source.
type GameEvent struct {
	Kind     GameEventKind
	StepName string // populated for BeginStep
	Object   zone.ObjectID
	Source   zone.ObjectID
	Player   zone.PlayerID
	Amount   int
	Extra    map[string]string
}

// Tristate is the result of evaluating an intervening-if clause: true,
// false, or undetermined (a replay-stable false) because the marker it
// depends on was never persisted.
type Tristate int

const (
	Undetermined Tristate = iota
	True
	False
)

// Matcher decides whether ev fires this ability.
type Matcher func(ev GameEvent) bool

// InterveningIf evaluates a trigger's intervening-if clause against the
// engine state at the moment it is called; called once at trigger time and
// again at resolution time.
type InterveningIf func() Tristate

// Source describes one triggered ability registered on an object.
type Source struct {
	ID            string
	ObjectID      zone.ObjectID
	Controller    zone.PlayerID
	Matches       Matcher
	InterveningIf InterveningIf // nil means "always true"
	// OffBattlefield permits this source to be checked even when its object
	// is not on the battlefield (e.g. "dies" triggers that function from
	// the graveyard-in-waiting moment, or command-zone static triggers).
	OffBattlefield bool
}

// Collected is a trigger that matched at trigger time and is waiting to be
// ordered onto the stack.
type Collected struct {
	SourceID      string
	ObjectID      zone.ObjectID
	Controller    zone.PlayerID
	InterveningIf InterveningIf
}

// Queue holds collected-but-not-yet-stacked triggers, keyed by controller
// ("wait in a queue keyed by controller").
type Queue struct {
	bySources map[zone.PlayerID][]Collected
}

// NewQueue returns an empty trigger queue.
func NewQueue() *Queue {
	return &Queue{bySources: map[zone.PlayerID][]Collected{}}
}

// Offer presents ev to every registered source. A source is collected if
// its matcher matches and, when it has an intervening-if clause, that
// clause evaluates to True at trigger time. An Undetermined clause is
// still collected rather than dropped, since collection only reflects what
// can currently be shown to be live; it is re-checked at resolution time
// (matching rules 603.4: an ability with an intervening-if clause triggers
// only if the clause is
// true; absent evidence, the engine defers the decision to resolution by
// treating Undetermined as provisionally collectible).
func (q *Queue) Offer(sources []Source, ev GameEvent, onBattlefield func(zone.ObjectID) bool) {
	for _, s := range sources {
		if !s.OffBattlefield && !onBattlefield(s.ObjectID) {
			continue
		}
		if !s.Matches(ev) {
			continue
		}
		if s.InterveningIf != nil && s.InterveningIf() == False {
			continue
		}
		q.bySources[s.Controller] = append(q.bySources[s.Controller], Collected{
			SourceID:      s.ID,
			ObjectID:      s.ObjectID,
			Controller:    s.Controller,
			InterveningIf: s.InterveningIf,
		})
	}
}

// Pending reports the controllers with at least one collected trigger
// awaiting an ordering decision.
func (q *Queue) Pending() []zone.PlayerID {
	var out []zone.PlayerID
	for p, cs := range q.bySources {
		if len(cs) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// ForController returns the collected triggers waiting for the given
// controller, in collection order.
func (q *Queue) ForController(p zone.PlayerID) []Collected {
	return q.bySources[p]
}

// NeedsOrderingDecision reports whether the controller has more than one
// collected trigger and must submit an explicit ordering. A controller with
// a single collected trigger has no choice to make.
func (q *Queue) NeedsOrderingDecision(p zone.PlayerID) bool {
	return len(q.bySources[p]) > 1
}

// Drain removes and returns this controller's collected triggers in the
// given order (by SourceID), clearing the queue entry. order must name
// exactly the set of source IDs currently queued for p, no more, no fewer,
// no duplicates; otherwise it returns ErrOrderMismatch and leaves the queue
// untouched, since that shape of input reaches here directly from a
// submitted decision reply and must be rejected, not trusted.
func (q *Queue) Drain(p zone.PlayerID, order []string) ([]Collected, error) {
	pending := q.bySources[p]
	if len(order) != len(pending) {
		return nil, ErrOrderMismatch
	}
	byID := make(map[string]Collected, len(pending))
	for _, c := range pending {
		byID[c.SourceID] = c
	}
	out := make([]Collected, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return nil, ErrOrderMismatch
		}
		c, ok := byID[id]
		if !ok {
			return nil, ErrOrderMismatch
		}
		seen[id] = true
		out = append(out, c)
	}
	delete(q.bySources, p)
	return out, nil
}

// StackOrder resolves the push order for one controller's collected
// triggers given their chosen stacking order: the first element is stacked
// first, so it resolves last. It returns the Collected slice already in
// the order they must be pushed.
func StackOrder(chosen []Collected) []Collected {
	return chosen
}

// APNAPOrder returns the controllers with pending triggers in
// active-player-non-active-player order, starting from active.
func APNAPOrder(active zone.PlayerID, all []zone.PlayerID, pending map[zone.PlayerID]bool) []zone.PlayerID {
	var out []zone.PlayerID
	idx := 0
	for i, p := range all {
		if p == active {
			idx = i
			break
		}
	}
	n := len(all)
	for i := 0; i < n; i++ {
		p := all[(idx+i)%n]
		if pending[p] {
			out = append(out, p)
		}
	}
	return out
}

// ResolutionCheck re-evaluates a triggered ability's intervening-if clause
// at resolution time; if it is False the ability fizzles without needing
// targets. Undetermined is treated as live, matching Offer's treatment at
// trigger time.
func ResolutionCheck(c InterveningIf) bool {
	if c == nil {
		return true
	}
	return c() != False
}
