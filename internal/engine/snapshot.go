package engine

import (
	"github.com/forgewright/mtgcore/internal/engine/decision"
	"github.com/forgewright/mtgcore/internal/engine/layers"
	"github.com/forgewright/mtgcore/internal/engine/stack"
	"github.com/forgewright/mtgcore/internal/engine/zone"
)

// CardView is one card's per-viewer visible state. A card hidden from the
// viewer (an opponent's library or hand) is reduced to an opaque handle:
// only ID is populated, so the transport never leaks a name or
// characteristic the viewer is not entitled to see.
type CardView struct {
	ID         zone.ObjectID `json:"id"`
	Name       string        `json:"name,omitempty"`
	Tapped     bool          `json:"tapped,omitempty"`
	Power      int           `json:"power,omitempty"`
	Toughness  int           `json:"toughness,omitempty"`
	HasPT      bool          `json:"hasPt,omitempty"`
	Loyalty    int           `json:"loyalty,omitempty"`
	Counters   zone.Counters `json:"counters,omitempty"`
	AttachedTo zone.ObjectID `json:"attachedTo,omitempty"`
	Controller zone.PlayerID `json:"controller,omitempty"`
	IsToken    bool          `json:"isToken,omitempty"`
}

// ZoneView is the ordered set of cards in one zone, from one viewer's
// perspective.
type ZoneView []CardView

// PlayerView is one player's publicly-known state plus their own
// hidden-zone contents, included only when the snapshot is built for them.
type PlayerView struct {
	ID             zone.PlayerID    `json:"id"`
	Life           int              `json:"life"`
	Poison         int              `json:"poison"`
	Lost           bool             `json:"lost"`
	Won            bool             `json:"won"`
	Library        ZoneView         `json:"library"`
	Hand           ZoneView         `json:"hand"`
	Graveyard      ZoneView         `json:"graveyard"`
	Exile          ZoneView         `json:"exile"`
	Command        ZoneView         `json:"command"`
	ManaFloating    map[string]int  `json:"manaFloating,omitempty"`
}

// StackEntryView is a stack item's public-only fields: controller, source,
// and targets are always public; only hidden cards on the stack, e.g.
// foretold spells, would need redaction, which this illustrative
// implementation treats as out of scope.
type StackEntryView struct {
	ID         string        `json:"id"`
	Kind       stack.Kind    `json:"kind"`
	Controller zone.PlayerID `json:"controller"`
	Source     zone.ObjectID `json:"source"`
	CardName   string        `json:"cardName,omitempty"`
	Targets    []string      `json:"targets,omitempty"`
	Modes      []string      `json:"modes,omitempty"`
}

// CombatView is the public combat state for the current turn.
type CombatView struct {
	Attackers map[zone.ObjectID]zone.PlayerID `json:"attackers,omitempty"`
	Blockers  map[zone.ObjectID]zone.ObjectID `json:"blockers,omitempty"`
}

// Snapshot is the engine's per-tick state view (the only thing a host ever
// broadcasts): game ID, sequence number, turn number, active player,
// priority holder, phase/step, the public stack, per-player zone views
// with hidden-information filtering, the battlefield with effective
// characteristics, combat state, the viewer's pending decisions, and a
// tail of log messages produced by this tick.
type Snapshot struct {
	GameID         string                     `json:"gameId"`
	Seq            int64                      `json:"seq"`
	Turn           int64                      `json:"turn"`
	ActivePlayer   zone.PlayerID              `json:"activePlayer"`
	PriorityHolder zone.PlayerID              `json:"priorityHolder,omitempty"`
	Phase          stack.Phase                `json:"phase"`
	Step           stack.Step                 `json:"step"`
	Stack          []StackEntryView           `json:"stack"`
	Players        map[zone.PlayerID]*PlayerView `json:"players"`
	Battlefield    ZoneView                   `json:"battlefield"`
	Combat         CombatView                 `json:"combat"`
	Decisions      []decision.Pending         `json:"decisions"`
	Messages       []string                   `json:"messages,omitempty"`
}

// Snapshot builds the state view for a single viewer. An empty viewerID
// means "the omniscient view"; a non-empty one redacts only the library and
// hand contents of the viewer's opponents (and their floating mana), while
// the battlefield, graveyards, exile and command zones are always public.
func (g *Game) Snapshot(viewerID string) *Snapshot {
	viewer := zone.PlayerID(viewerID)
	omniscient := viewerID == ""

	effective := g.computeEffective()

	s := &Snapshot{
		GameID:       g.ID,
		Seq:          g.clock.Seq(),
		Turn:         g.turn,
		ActivePlayer: g.activePlayer,
		Phase:        g.phase,
		Step:         g.step,
		Players:      map[zone.PlayerID]*PlayerView{},
		Combat: CombatView{
			Attackers: g.attackers,
			Blockers:  g.blockers,
		},
	}
	if g.priority != nil {
		s.PriorityHolder = g.priority.Holder()
	}

	for _, item := range g.stack.Items() {
		s.Stack = append(s.Stack, StackEntryView{
			ID:         item.ID,
			Kind:       item.Kind,
			Controller: item.Controller,
			Source:     item.Source,
			CardName:   item.CardName,
			Targets:    item.Targets,
			Modes:      item.Modes,
		})
	}

	for _, pid := range g.sortedPlayerIDs() {
		player := g.players[pid]
		visible := omniscient || pid == viewer
		pv := &PlayerView{
			ID:     pid,
			Life:   player.Life,
			Poison: player.CounterBag["poison"],
			Lost:   player.Lost,
			Won:    player.Won,
		}
		pv.Library = g.zoneView(zone.Library, pid, effective, visible)
		pv.Hand = g.zoneView(zone.Hand, pid, effective, visible)
		pv.Graveyard = g.zoneView(zone.Graveyard, pid, effective, true) // graveyard is always public
		pv.Exile = g.zoneView(zone.Exile, pid, effective, true)         // exile is always public
		pv.Command = g.zoneView(zone.Command, pid, effective, true)     // command zone is always public
		if visible {
			pv.ManaFloating = map[string]int{}
			for _, c := range []zone.Color{"W", "U", "B", "R", "G", "C"} {
				if n := player.ManaPool.Amount(c); n != 0 {
					pv.ManaFloating[string(c)] = n
				}
			}
		}
		s.Players[pid] = pv
	}

	s.Battlefield = g.zoneView(zone.Battlefield, "", effective, true)

	for _, id := range g.decisionSeq {
		d, ok := g.decisions[id]
		if ok && (omniscient || d.Player == viewer) {
			s.Decisions = append(s.Decisions, d)
		}
	}

	s.Messages = append([]string(nil), g.lastMessages...)

	return s
}

// zoneView builds a ZoneView for one (name, owner) zone. owner is ignored
// for the shared battlefield. When visible is false, every card is reduced
// to its opaque ID handle.
func (g *Game) zoneView(name zone.Name, owner zone.PlayerID, effective map[zone.ObjectID]*layers.Characteristics, visible bool) ZoneView {
	ids, err := g.zones.Iterate(name, owner)
	if err != nil {
		return nil
	}
	out := make(ZoneView, 0, len(ids))
	for _, id := range ids {
		o, ok := g.zones.Object(id)
		if !ok {
			continue
		}
		if !visible {
			out = append(out, CardView{ID: id})
			continue
		}
		cv := CardView{
			ID:         id,
			Name:       o.Base.Name,
			Tapped:     o.Tapped,
			Counters:   o.Counters,
			Controller: o.Controller,
			IsToken:    o.IsToken,
		}
		if o.AttachedTo != nil {
			cv.AttachedTo = *o.AttachedTo
		}
		cv.HasPT = o.Base.HasPT
		if eff, ok := effective[id]; ok {
			cv.Power = eff.Power
			cv.Toughness = eff.Toughness
		} else {
			cv.Power = o.Base.BasePower
			cv.Toughness = o.Base.BaseToughness
		}
		if o.Base.HasLoyalty {
			cv.Loyalty = o.Counters["loyalty"]
		}
		out = append(out, cv)
	}
	return out
}
