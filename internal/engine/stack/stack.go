// Package stack models turn structure, priority rotation, and the LIFO
// stack of spells and abilities.
package stack

import (
	"github.com/forgewright/mtgcore/internal/engine/trigger"
	"github.com/forgewright/mtgcore/internal/engine/zone"
)

// Phase is one of the five rule-faithful phases.
type Phase string

const (
	Beginning  Phase = "beginning"
	Precombat  Phase = "precombat_main"
	Combat     Phase = "combat"
	Postcombat Phase = "postcombat_main"
	Ending     Phase = "ending"
)

// Step is one of the rule-faithful steps within a phase.
type Step string

const (
	Untap             Step = "untap"
	Upkeep            Step = "upkeep"
	Draw              Step = "draw"
	MainPhaseStep     Step = "main"
	BeginCombat       Step = "begin_combat"
	DeclareAttackers  Step = "declare_attackers"
	DeclareBlockers   Step = "declare_blockers"
	FirstStrikeDamage Step = "first_strike_damage"
	CombatDamage      Step = "combat_damage"
	EndCombat         Step = "end_combat"
	End               Step = "end"
	Cleanup           Step = "cleanup"
)

// sequence is the fixed rules order of phases/steps for one turn.
var sequence = []struct {
	Phase Phase
	Step  Step
}{
	{Beginning, Untap},
	{Beginning, Upkeep},
	{Beginning, Draw},
	{Precombat, MainPhaseStep},
	{Combat, BeginCombat},
	{Combat, DeclareAttackers},
	{Combat, DeclareBlockers},
	{Combat, FirstStrikeDamage},
	{Combat, CombatDamage},
	{Combat, EndCombat},
	{Postcombat, MainPhaseStep},
	{Ending, End},
	{Ending, Cleanup},
}

// Next returns the phase/step following (phase, step) in turn order, and
// whether advancing past it wraps into a new turn.
func Next(phase Phase, step Step) (Phase, Step, bool) {
	for i, ps := range sequence {
		if ps.Phase == phase && ps.Step == step {
			if i == len(sequence)-1 {
				return sequence[0].Phase, sequence[0].Step, true
			}
			return sequence[i+1].Phase, sequence[i+1].Step, false
		}
	}
	return sequence[0].Phase, sequence[0].Step, true
}

// NoPriorityStep reports whether the active player does not receive
// priority automatically at the start of this step (untap and cleanup),
// unless a triggered ability or SBA gives cleanup a priority round per the
// normal rules exception (handled by the caller, not here).
func NoPriorityStep(s Step) bool {
	return s == Untap || s == Cleanup
}

// Kind tags what a StackItem represents.
type Kind string

const (
	SpellKind           Kind = "spell"
	ActivatedAbility    Kind = "activated_ability"
	TriggeredAbilityKind Kind = "triggered_ability"
	ManaAbility         Kind = "mana_ability"
)

// SpentSnapshot records the colors of mana spent and amount spent per color
// at cast time, used later by X-is-... expressions.
type SpentSnapshot map[zone.Color]int

// Item is a single entry on the stack.
type Item struct {
	ID               string
	Kind             Kind
	Controller       zone.PlayerID
	Source           zone.ObjectID // the card/ability's source object
	CardName         string        // for spells: the card this represents
	Targets          []string
	Modes            []string
	XValue           int
	AlternativeCost  string
	CanBeCountered   bool
	Timestamp        int64
	Spent            SpentSnapshot
	InterveningIf    func(ctx interface{}) bool `json:"-"`

	// TriggerCheck re-evaluates a triggered ability's intervening-if clause
	// at resolution time; nil means the ability has none and always resolves.
	TriggerCheck trigger.InterveningIf `json:"-"`
}

// Stack is the shared LIFO zone holding spells and abilities.
type Stack struct {
	items []*Item
}

// New returns an empty stack.
func New() *Stack { return &Stack{} }

// Push places an item on top of the stack.
func (s *Stack) Push(item *Item) { s.items = append(s.items, item) }

// Pop removes and returns the top item, or nil if empty.
func (s *Stack) Pop() *Item {
	if len(s.items) == 0 {
		return nil
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top
}

// Peek returns the top item without removing it.
func (s *Stack) Peek() *Item {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

// Remove deletes the item with the given ID from anywhere in the stack
// (used by "counter target spell/ability").
func (s *Stack) Remove(id string) *Item {
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return it
		}
	}
	return nil
}

// Empty reports whether the stack has no items.
func (s *Stack) Empty() bool { return len(s.items) == 0 }

// Len returns the number of items on the stack.
func (s *Stack) Len() int { return len(s.items) }

// Items returns a read-only copy of the stack, top-last.
func (s *Stack) Items() []*Item {
	out := make([]*Item, len(s.items))
	copy(out, s.items)
	return out
}

// Clone returns a deep copy of the stack, used to snapshot game state
// before a tick so an InconsistentError can roll back cleanly.
func (s *Stack) Clone() *Stack {
	clone := &Stack{items: make([]*Item, len(s.items))}
	for i, it := range s.items {
		copied := *it
		copied.Targets = append([]string(nil), it.Targets...)
		copied.Modes = append([]string(nil), it.Modes...)
		if it.Spent != nil {
			copied.Spent = make(SpentSnapshot, len(it.Spent))
			for c, n := range it.Spent {
				copied.Spent[c] = n
			}
		}
		clone.items[i] = &copied
	}
	return clone
}
