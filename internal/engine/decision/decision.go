// Package decision models pending-decision descriptors: the points where
// the tick loop halts because a legal action requires a player's choice
//.
package decision

import "github.com/forgewright/mtgcore/internal/engine/zone"

// Kind is the closed set of decision kinds.
type Kind string

const (
	Mulligan               Kind = "mulligan"
	MulliganBottom         Kind = "mulligan_bottom"
	SelectTarget           Kind = "select_target"
	ChooseMode             Kind = "choose_mode"
	ChooseX                Kind = "choose_x"
	DeclareAttackers       Kind = "declare_attackers"
	DeclareBlockers        Kind = "declare_blockers"
	OrderTriggers          Kind = "order_triggers"
	May                    Kind = "may"
	Sacrifice              Kind = "sacrifice"
	Discard                Kind = "discard"
	PayCost                Kind = "pay_cost"
	TriggeredAbilityYesNo  Kind = "triggered_ability_yes_no"
	ChooseReplacement      Kind = "choose_replacement" // ambiguous affected player chooses which replacement applies first
	Scry                   Kind = "scry"               // keep-on-top/bottom ordering of the revealed cards
	Surveil                Kind = "surveil"             // keep-on-top/graveyard ordering of the revealed cards
)

// Constraints bounds a decision's legal replies.
type Constraints struct {
	Min       int
	Max       int
	Options   []string // candidate IDs (targets, cards, trigger IDs, modes...)
	PerMode   map[string][2]int // mode key -> [min,max] for choose_mode
	Predicate func(choice string) bool
}

// LegalReplyCount reports the number of individually-legal single options,
// used as an automation hint: when exactly one legal reply exists, the
// engine may auto-reply.
func (c Constraints) LegalReplyCount() int {
	if c.Predicate == nil {
		return len(c.Options)
	}
	n := 0
	for _, o := range c.Options {
		if c.Predicate(o) {
			n++
		}
	}
	return n
}

// Pending is a single outstanding decision.
type Pending struct {
	ID          string
	Player      zone.PlayerID
	Kind        Kind
	Constraints Constraints
	Context     map[string]string // free-form hints (source object, card name, etc.)
}

// Reply is a player's answer to a Pending decision, matched by ID.
type Reply struct {
	DecisionID string
	Values     []string // ordered list: target IDs, trigger order, card IDs, etc.
	Accept     *bool    // for may/mulligan-keep/triggered_ability_yes_no
	X          *int     // for choose_x
	Mapping    map[string]string // for declare_attackers/declare_blockers: entity -> target/order
}
