package stack

import "github.com/forgewright/mtgcore/internal/engine/zone"

// Priority tracks whose turn it is to act, the rotation order, and the set
// of players who have passed since the last state change.
type Priority struct {
	order   []zone.PlayerID // rotation order as passed to NewPriority
	holder  int             // index into order of the player who currently holds priority
	passed  map[zone.PlayerID]bool
}

// NewPriority sets up priority rotation over order; the holder starts at
// order[0] until GrantTo hands priority to someone else.
func NewPriority(order []zone.PlayerID) *Priority {
	return &Priority{order: order, passed: make(map[zone.PlayerID]bool)}
}

// Holder returns the player who currently holds priority.
func (p *Priority) Holder() zone.PlayerID {
	if len(p.order) == 0 {
		return ""
	}
	return p.order[p.holder]
}

// Reset clears the passed set; called on every game-state change, since
// the set of has-passed-since-last-state-change resets whenever state
// changes.
func (p *Priority) Reset() {
	for k := range p.passed {
		delete(p.passed, k)
	}
}

// GrantTo hands priority to a specific player (used after a resolution, or
// to the next actor after a cast/activation).
func (p *Priority) GrantTo(player zone.PlayerID) {
	for i, pl := range p.order {
		if pl == player {
			p.holder = i
			return
		}
	}
}

// PassResult is the contract returned by Pass.
type PassResult struct {
	Changed     bool // true if the passer held priority and yielded it
	AllPassed   bool // true if every player has now passed since the last state change
}

// Pass records that player has passed priority, advances the holder to the
// next player in rotation, and reports whether every player has now passed.
func (p *Priority) Pass(player zone.PlayerID) PassResult {
	if p.Holder() != player {
		return PassResult{Changed: false}
	}
	p.passed[player] = true

	next := (p.holder + 1) % len(p.order)
	p.holder = next

	allPassed := true
	for _, pl := range p.order {
		if !p.passed[pl] {
			allPassed = false
			break
		}
	}

	return PassResult{Changed: true, AllPassed: allPassed}
}

// Order returns the rotation order passed to NewPriority.
func (p *Priority) Order() []zone.PlayerID { return p.order }
