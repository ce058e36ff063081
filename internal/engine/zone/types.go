// Package zone holds the core data model: players, zones, and objects, and
// the rule for how object identity behaves across zone changes.
package zone

import "github.com/forgewright/mtgcore/internal/engine/mana"

// PlayerID is a stable string identifying a player.
type PlayerID string

// ObjectID is an engine-minted object identity. It is stable across zone
// moves for non-token cards, except that leaving the battlefield or stack
// mints a fresh ID, and freshly minted for every token.
type ObjectID string

// Name is one of the closed set of zone kinds.
type Name string

const (
	Library     Name = "library"
	Hand        Name = "hand"
	Battlefield Name = "battlefield"
	Graveyard   Name = "graveyard"
	Exile       Name = "exile"
	Stack       Name = "stack"
	Command     Name = "command"
)

// Shared reports whether a zone of this kind is a single shared instance
// (battlefield, stack) as opposed to per-player.
func (n Name) Shared() bool {
	return n == Battlefield || n == Stack
}

// Color is reexported from mana for convenience in card/object definitions.
type Color = mana.Color

// Counters is a bag of named counters with non-negative multiplicity.
type Counters map[string]int

// Add applies a delta, clamping at zero (annihilation of +1/+1 and -1/-1 is
// handled explicitly by the state-based-action pass, not here, so that the
// replacement-effect pipeline can still see the raw pre-SBA counts).
func (c Counters) Add(name string, delta int) {
	n := c[name] + delta
	if n < 0 {
		n = 0
	}
	c[name] = n
}

// CardRecord is an immutable reference to a printed card. Card
// records never mutate; overlays live on the Object.
type CardRecord struct {
	Name          string
	TypeLine      string
	Supertypes    []string
	Types         []string
	Subtypes      []string
	ManaCostText  string
	OracleText    string
	BasePower     int
	BaseToughness int
	HasPT         bool
	BaseLoyalty   int
	HasLoyalty    bool
	Colors        []Color
	Keywords      []string
	Image         string
}

// PerTurnStats tracks counters that reset each turn.
type PerTurnStats struct {
	LifeGained  int
	LifeLost    int
	CardsDrawn  int
	SpellsCast  int
	LandsPlayed int
	Discards    int
}

// Player is a participant.
type Player struct {
	ID              PlayerID
	Life            int
	StartingLife    int
	ManaPool        *mana.Pool
	CounterBag      Counters // poison, energy, experience, radiation, ticket, open bag
	Lost            bool
	Won             bool
	WinPending      bool // set when a replacement effect (e.g. Laboratory Maniac) converts a would-be loss into a win still subject to an opposing "can't win" effect
	TriedEmptyDraw  bool
	Stats           PerTurnStats
	CommanderDamage map[ObjectID]int // commander -> damage taken by this player, monotonic non-decreasing
}

// NewPlayer creates a player at the given starting life.
func NewPlayer(id PlayerID, startingLife int) *Player {
	return &Player{
		ID:              id,
		Life:            startingLife,
		StartingLife:    startingLife,
		ManaPool:        mana.NewPool(),
		CounterBag:      Counters{},
		CommanderDamage: map[ObjectID]int{},
	}
}

// RecordCommanderDamage adds damage from the given commander, enforcing the
// monotonic non-decreasing invariant by construction (amount must
// be >= 0), and returns the new total.
func (p *Player) RecordCommanderDamage(commander ObjectID, amount int) int {
	if amount < 0 {
		panic("zone: commander damage must be non-negative")
	}
	p.CommanderDamage[commander] += amount
	return p.CommanderDamage[commander]
}

// TotalCommanderDamageFrom returns the cumulative damage this player has
// taken from the given commander.
func (p *Player) TotalCommanderDamageFrom(commander ObjectID) int {
	return p.CommanderDamage[commander]
}

// Clone returns a deep copy of the player, used to snapshot game state
// before a tick so an InconsistentError can roll back cleanly.
func (p *Player) Clone() *Player {
	clone := *p
	clone.ManaPool = p.ManaPool.Clone()
	clone.CounterBag = Counters{}
	for k, v := range p.CounterBag {
		clone.CounterBag[k] = v
	}
	clone.CommanderDamage = make(map[ObjectID]int, len(p.CommanderDamage))
	for k, v := range p.CommanderDamage {
		clone.CommanderDamage[k] = v
	}
	return &clone
}
