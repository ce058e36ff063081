// Package sba implements the state-based-action fixpoint loop that runs
// after every stack application and between priority grants.
package sba

import (
	"sort"

	"github.com/forgewright/mtgcore/internal/engine/layers"
	"github.com/forgewright/mtgcore/internal/engine/zone"
)

// Action is one state-based action applied during a single pass.
type Action struct {
	Kind     Kind
	Object   zone.ObjectID
	Player   zone.PlayerID
	Detail   string
}

// Kind is the closed set of SBA outcomes, in the fixed order they are
// checked each pass (ties within a pass are all applied simultaneously;
// Kind only labels what happened, it does not impose an application order
// beyond
// the check order already encoded in Run).
type Kind string

const (
	PlayerLosesZeroLife        Kind = "player_loses_zero_life"
	PlayerLosesPoison          Kind = "player_loses_poison"
	PlayerLosesEmptyDraw       Kind = "player_loses_empty_draw"
	PlayerLosesCommanderDamage Kind = "player_loses_commander_damage"
	CreatureDiesZeroTough      Kind = "creature_dies_zero_toughness"
	CreatureDiesLethal         Kind = "creature_dies_lethal_damage"
	PlaneswalkerDies           Kind = "planeswalker_dies_zero_loyalty"
	BattleDies                 Kind = "battle_dies_zero_defense"
	TokenCeasesToExist         Kind = "token_ceases_to_exist"
	LegendRuleApplied          Kind = "legend_rule"
	CountersAnnihilated        Kind = "counters_annihilated"
	AttachmentDetached         Kind = "attachment_detached"
	PlayerWinsCondition        Kind = "player_wins_condition"
)

// CommanderDamageLethal is the cumulative combat damage from a single
// commander that causes its controller's opponent to lose the game.
const CommanderDamageLethal = 21

// Loyalty, damage, and defense-counter bookkeeping that the layers package
// does not itself track are read from these hook functions so sba stays
// independent of where the caller stores them.
type Hooks struct {
	Loyalty         func(zone.ObjectID) int
	DeathtouchSource func(zone.ObjectID) bool // true if the damage on this object came from a deathtouch source
	DefenseCounters func(zone.ObjectID) int
	IsBattle        func(zone.ObjectID) bool
	IsPlaneswalker  func(zone.ObjectID) bool
	CantLose        func(zone.PlayerID) bool
	OpponentsCantWin func(zone.PlayerID) bool // blocks a would-be win for the player named
	LegalAttachment func(attachment *zone.Object, host *zone.Object) bool
	ChooseLegendToKeep func(player zone.PlayerID, legends []zone.ObjectID) zone.ObjectID
}

// Run executes the fixpoint loop: repeated passes, each applying every
// triggered action simultaneously, until a pass makes no change. It runs
// to a fixpoint before any player receives priority. m mints the fresh
// object IDs required for zone changes into the graveyard, keeping ID
// generation tied to the game's own clock.
func Run(m zone.Minter, z *zone.Zones, players map[zone.PlayerID]*zone.Player, effective map[zone.ObjectID]*layers.Characteristics, h Hooks) []Action {
	var all []Action
	for {
		actions := onePass(m, z, players, effective, h)
		if len(actions) == 0 {
			return all
		}
		all = append(all, actions...)
	}
}

func onePass(m zone.Minter, z *zone.Zones, players map[zone.PlayerID]*zone.Player, effective map[zone.ObjectID]*layers.Characteristics, h Hooks) []Action {
	var actions []Action

	// Player-loss checks, in spec order, all evaluated against the
	// pre-pass state and applied simultaneously.
	playerIDs := sortedPlayerIDs(players)
	for _, pid := range playerIDs {
		p := players[pid]
		if p.Lost {
			continue
		}
		if h.CantLose != nil && h.CantLose(pid) {
			continue
		}
		switch {
		case p.Life <= 0:
			p.Lost = true
			actions = append(actions, Action{Kind: PlayerLosesZeroLife, Player: pid})
		case p.CounterBag["poison"] >= 10:
			p.Lost = true
			actions = append(actions, Action{Kind: PlayerLosesPoison, Player: pid})
		case p.TriedEmptyDraw:
			p.Lost = true
			actions = append(actions, Action{Kind: PlayerLosesEmptyDraw, Player: pid})
		case hasLethalCommanderDamage(p):
			p.Lost = true
			actions = append(actions, Action{Kind: PlayerLosesCommanderDamage, Player: pid})
		}
	}

	// A replacement effect (e.g. Laboratory Maniac) may have converted a
	// would-be loss into a pending win; finalise it here. If an opposing
	// "that player can't win the game" effect blocks it, the replaced draw
	// counts as an attempted draw from an empty library and the player
	// loses, unless a "can't lose" effect applies.
	for _, pid := range playerIDs {
		p := players[pid]
		if !p.WinPending || p.Won || p.Lost {
			continue
		}
		if h.OpponentsCantWin != nil && h.OpponentsCantWin(pid) {
			p.WinPending = false
			p.TriedEmptyDraw = true
			if h.CantLose == nil || !h.CantLose(pid) {
				p.Lost = true
				actions = append(actions, Action{Kind: PlayerLosesEmptyDraw, Player: pid})
			}
			continue
		}
		p.Won = true
		p.WinPending = false
		actions = append(actions, Action{Kind: PlayerWinsCondition, Player: pid})
	}

	objIDs := sortedObjectIDs(z.AllObjects())

	// Creature / planeswalker / battle death checks.
	for _, id := range objIDs {
		o, ok := z.Object(id)
		if !ok || o.CurrentZone != zone.Battlefield {
			continue
		}
		ch := effective[id]
		if ch == nil {
			continue
		}
		isCreature := containsStr(ch.Types, "Creature")
		if isCreature {
			lethal := o.DamageMarked >= ch.Toughness && ch.Toughness > 0
			deathtouched := o.DamageMarked > 0 && h.DeathtouchSource != nil && h.DeathtouchSource(id)
			switch {
			case ch.Toughness <= 0:
				actions = append(actions, Action{Kind: CreatureDiesZeroTough, Object: id})
				moveToGraveyard(m, z, o)
				continue
			case lethal || deathtouched:
				actions = append(actions, Action{Kind: CreatureDiesLethal, Object: id})
				moveToGraveyard(m, z, o)
				continue
			}
		}
		if h.IsPlaneswalker != nil && h.IsPlaneswalker(id) && h.Loyalty != nil && h.Loyalty(id) <= 0 {
			actions = append(actions, Action{Kind: PlaneswalkerDies, Object: id})
			moveToGraveyard(m, z, o)
			continue
		}
		if h.IsBattle != nil && h.IsBattle(id) && h.DefenseCounters != nil && h.DefenseCounters(id) <= 0 {
			actions = append(actions, Action{Kind: BattleDies, Object: id})
			moveToGraveyard(m, z, o)
			continue
		}
	}

	// Token cleanup: a token anywhere other than the battlefield ceases to
	// exist.
	for _, id := range objIDs {
		o, ok := z.Object(id)
		if !ok || !o.IsToken || o.CurrentZone == zone.Battlefield {
			continue
		}
		actions = append(actions, Action{Kind: TokenCeasesToExist, Object: id})
		_ = z.Remove(o.CurrentZone, ownerOf(o), id)
		z.Unregister(id)
	}

	// Legend rule: among each player's legendary permanents sharing a name,
	// all but one chosen survivor go to the graveyard.
	actions = append(actions, applyLegendRule(m, z, h)...)

	// +1/+1 / -1/-1 counter annihilation.
	for _, id := range objIDs {
		o, ok := z.Object(id)
		if !ok {
			continue
		}
		plus := o.Counters["+1/+1"]
		minus := o.Counters["-1/-1"]
		if plus > 0 && minus > 0 {
			n := plus
			if minus < n {
				n = minus
			}
			o.Counters["+1/+1"] -= n
			o.Counters["-1/-1"] -= n
			actions = append(actions, Action{Kind: CountersAnnihilated, Object: id})
		}
	}

	// Attachment integrity.
	if h.LegalAttachment != nil {
		for _, id := range objIDs {
			o, ok := z.Object(id)
			if !ok || o.AttachedTo == nil {
				continue
			}
			host, hostOK := z.Object(*o.AttachedTo)
			if !hostOK || !h.LegalAttachment(o, host) {
				if hostOK {
					o.Detach(host)
				} else {
					o.AttachedTo = nil
				}
				actions = append(actions, Action{Kind: AttachmentDetached, Object: id})
				if isAura(o) {
					moveToGraveyard(m, z, o)
				}
			}
		}
	}

	return actions
}

func applyLegendRule(m zone.Minter, z *zone.Zones, h Hooks) []Action {
	var actions []Action
	type key struct {
		owner zone.PlayerID
		name  string
	}
	groups := map[key][]zone.ObjectID{}
	for id, o := range z.AllObjects() {
		if o.CurrentZone != zone.Battlefield || !o.IsCommander && !isLegendary(o) {
			continue
		}
		k := key{owner: o.Controller, name: o.Base.Name}
		groups[k] = append(groups[k], id)
	}
	var keys []key
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].owner != keys[j].owner {
			return keys[i].owner < keys[j].owner
		}
		return keys[i].name < keys[j].name
	})
	for _, k := range keys {
		ids := groups[k]
		if len(ids) < 2 {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		keep := ids[0]
		if h.ChooseLegendToKeep != nil {
			keep = h.ChooseLegendToKeep(k.owner, ids)
		}
		for _, id := range ids {
			if id == keep {
				continue
			}
			o, ok := z.Object(id)
			if !ok {
				continue
			}
			actions = append(actions, Action{Kind: LegendRuleApplied, Object: id, Player: k.owner})
			moveToGraveyard(m, z, o)
		}
	}
	return actions
}

// hasLethalCommanderDamage reports whether p has taken CommanderDamageLethal
// or more combat damage from any single commander. CommanderDamage already
// lives on zone.Player, so this reads it directly rather than through a
// Hooks accessor (unlike loyalty/defense counters, which live on the
// Object's Counters bag that sba has no other way to reach).
func hasLethalCommanderDamage(p *zone.Player) bool {
	for _, amount := range p.CommanderDamage {
		if amount >= CommanderDamageLethal {
			return true
		}
	}
	return false
}

func isLegendary(o *zone.Object) bool {
	for _, s := range o.Base.Supertypes {
		if s == "Legendary" {
			return true
		}
	}
	return false
}

func isAura(o *zone.Object) bool {
	for _, t := range o.Base.Types {
		if t == "Aura" {
			return true
		}
	}
	for _, t := range o.Base.Subtypes {
		if t == "Aura" {
			return true
		}
	}
	return false
}

func moveToGraveyard(m zone.Minter, z *zone.Zones, o *zone.Object) {
	_, _ = z.Move(m, o.ID, zone.Graveyard, zone.MoveOptions{})
}

func ownerOf(o *zone.Object) zone.PlayerID {
	if o.CurrentZone.Shared() {
		return ""
	}
	return o.Owner
}

func containsStr(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}

func sortedPlayerIDs(players map[zone.PlayerID]*zone.Player) []zone.PlayerID {
	out := make([]zone.PlayerID, 0, len(players))
	for id := range players {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedObjectIDs(objects map[zone.ObjectID]*zone.Object) []zone.ObjectID {
	out := make([]zone.ObjectID, 0, len(objects))
	for id := range objects {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
