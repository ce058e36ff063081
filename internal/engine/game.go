// Package engine ties the core components together into a single tick
// loop: Apply consumes one intent and produces a state-view snapshot or an
// error from the closed taxonomy.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/forgewright/mtgcore/internal/engine/cards"
	"github.com/forgewright/mtgcore/internal/engine/clock"
	"github.com/forgewright/mtgcore/internal/engine/decision"
	"github.com/forgewright/mtgcore/internal/engine/effectir"
	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/forgewright/mtgcore/internal/engine/layers"
	"github.com/forgewright/mtgcore/internal/engine/mana"
	"github.com/forgewright/mtgcore/internal/engine/replace"
	"github.com/forgewright/mtgcore/internal/engine/sba"
	"github.com/forgewright/mtgcore/internal/engine/stack"
	"github.com/forgewright/mtgcore/internal/engine/trigger"
	"github.com/forgewright/mtgcore/internal/engine/zone"
	engerr "github.com/forgewright/mtgcore/internal/errors"
	"github.com/forgewright/mtgcore/internal/logger"
	"go.uber.org/zap"
)

// Game is one running match: every component's live state plus the
// wiring that drives a single tick of the game loop.
type Game struct {
	ID string

	clock  *clock.Clock
	zones  *zone.Zones
	store  eventlog.Store
	cards  *cards.Registry
	logger *zap.Logger

	players      map[zone.PlayerID]*zone.Player
	playerOrder  []zone.PlayerID
	activePlayer zone.PlayerID
	turn         int64
	phase        stack.Phase
	step         stack.Step

	stack    *stack.Stack
	priority *stack.Priority

	continuousEffects []layers.Effect
	replacements      []replace.Applicable
	triggerSources    []trigger.Source
	triggerQueue      *trigger.Queue

	decisions    map[string]decision.Pending
	decisionSeq  []string // insertion order, for deterministic snapshot iteration

	attackers map[zone.ObjectID]zone.PlayerID // attacker -> defending player
	blockers  map[zone.ObjectID]zone.ObjectID // blocker -> attacker

	lastMessages []string
	failed       bool // set by a FatalError; the game accepts no further intents
}

// NewGame constructs a fresh, empty game. Players are added by Join
// intents; the PRNG is armed by a RNGSeed intent.
func NewGame(id string, store eventlog.Store, registry *cards.Registry) *Game {
	return &Game{
		ID:           id,
		clock:        clock.New(),
		zones:        zone.New(nil),
		store:        store,
		cards:        registry,
		logger:       logger.WithGameContext(id, ""),
		players:      map[zone.PlayerID]*zone.Player{},
		stack:        stack.New(),
		decisions:    map[string]decision.Pending{},
		triggerQueue: trigger.NewQueue(),
		phase:        stack.Beginning,
		step:         stack.Untap,
		attackers:    map[zone.ObjectID]zone.PlayerID{},
		blockers:     map[zone.ObjectID]zone.ObjectID{},
	}
}

// Apply is the tick loop's entry point: it normalises, validates,
// and dispatches intent, and on success appends the record and returns a
// fresh Snapshot. On IllegalIntentError/MalformedIntentError, state is left
// unchanged. On InconsistentError, a snapshot taken at entry is restored.
func (g *Game) Apply(ctx context.Context, intent eventlog.Intent) (*Snapshot, error) {
	if g.failed {
		return nil, &engerr.FatalError{Reason: "game " + g.ID + " previously failed and accepts no further intents"}
	}

	intentLog := logger.WithIntentContext(g.ID, string(intent.Type), intent.ID)

	payload, err := eventlog.Normalise(intent.Payload)
	if err != nil {
		intentLog.Warn("intent malformed", zap.Error(err))
		return nil, &engerr.MalformedIntentError{Reason: err.Error(), IntentID: intent.ID}
	}

	pre := g.snapshotState()

	handler, ok := dispatch[intent.Type]
	if !ok {
		intentLog.Warn("intent type unknown")
		return nil, &engerr.MalformedIntentError{Reason: "unknown intent type " + string(intent.Type), IntentID: intent.ID}
	}

	if err := g.runHandler(handler, intent, payload); err != nil {
		if inconsistent, is := err.(*engerr.InconsistentError); is {
			g.restoreState(pre)
			g.logger.Error("tick rolled back", zap.String("invariant", inconsistent.Invariant), zap.String("detail", inconsistent.Detail))
			return nil, inconsistent
		}
		if fatal, is := err.(*engerr.FatalError); is {
			g.failed = true
			intentLog.Error("game failed fatally", zap.String("reason", fatal.Reason))
			return nil, fatal
		}
		g.restoreState(pre)
		intentLog.Warn("intent rejected", zap.Error(err))
		return nil, err
	}

	seq := g.clock.Advance()
	if g.store != nil {
		if err := g.store.Append(ctx, g.ID, seq, intent); err != nil {
			return nil, &engerr.FatalError{Reason: "append to event log: " + err.Error()}
		}
	}

	g.runStateBasedActions()

	g.lastMessages = []string{string(intent.Type) + " applied at seq " + fmtInt(seq)}
	logger.WithTickContext(g.ID, seq).Debug("intent applied", zap.String("intent_type", string(intent.Type)))

	return g.Snapshot(""), nil
}

func fmtInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// runHandler invokes one intent handler with a recover() at the tick
// boundary: an unexpected panic deep in SBA/resolution internals is
// converted to an InconsistentError instead of taking the whole process
// down, the same defense-in-depth a long-running worker goroutine needs
// since there is no per-intent process boundary to restart behind.
func (g *Game) runHandler(handler handlerFunc, intent eventlog.Intent, payload json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &engerr.InconsistentError{Invariant: "handler panic", Detail: fmt.Sprintf("%v", r)}
		}
	}()
	return handler(g, intent, payload)
}

// runStateBasedActions recomputes effective characteristics and runs the
// SBA fixpoint loop. It is invoked after every Apply and
// between priority grants (the NextStep/PassPriority handlers also call
// this indirectly via Apply).
func (g *Game) runStateBasedActions() {
	effective := g.computeEffective()
	sba.Run(g.clock, g.zones, g.players, effective, sba.Hooks{
		Loyalty: func(id zone.ObjectID) int {
			if o, ok := g.zones.Object(id); ok {
				return o.Counters["loyalty"]
			}
			return 0
		},
		DefenseCounters: func(id zone.ObjectID) int {
			if o, ok := g.zones.Object(id); ok {
				return o.Counters["defense"]
			}
			return 0
		},
		IsPlaneswalker: func(id zone.ObjectID) bool {
			o, ok := g.zones.Object(id)
			return ok && o.Base.HasLoyalty
		},
		IsBattle: func(id zone.ObjectID) bool {
			o, ok := g.zones.Object(id)
			if !ok {
				return false
			}
			for _, t := range o.Base.Types {
				if t == "Battle" {
					return true
				}
			}
			return false
		},
		DeathtouchSource: func(id zone.ObjectID) bool {
			o, ok := g.zones.Object(id)
			return ok && o.DamagedByDeathtouch
		},
		CantLose: func(pid zone.PlayerID) bool {
			ev, _ := replace.New(g.replacements, nil).Run(replace.Event{Kind: replace.PlayerLoses, AffectedPlayer: pid})
			return ev.ReplacedNoLose
		},
		OpponentsCantWin: func(pid zone.PlayerID) bool {
			ev, _ := replace.New(g.replacements, nil).Run(replace.Event{Kind: replace.PlayerWins, AffectedPlayer: pid})
			return ev.ReplacedNoWin
		},
		LegalAttachment: func(a, host *zone.Object) bool {
			return host.CurrentZone == zone.Battlefield
		},
	})
}

func (g *Game) computeEffective() map[zone.ObjectID]*layers.Characteristics {
	return layers.Compute(g.continuousEffects, g.zones.AllObjects())
}

// registerNewDecision mints a decision ID and stores it as pending.
func (g *Game) registerNewDecision(p zone.PlayerID, kind decision.Kind, constraints decision.Constraints, context map[string]string) decision.Pending {
	id := g.clock.Mint("decision")
	pending := decision.Pending{ID: id, Player: p, Kind: kind, Constraints: constraints, Context: context}
	g.decisions[id] = pending
	g.decisionSeq = append(g.decisionSeq, id)
	return pending
}

func (g *Game) resolveDecision(id string) (decision.Pending, bool) {
	p, ok := g.decisions[id]
	return p, ok
}

func (g *Game) closeDecision(id string) {
	delete(g.decisions, id)
	for i, d := range g.decisionSeq {
		if d == id {
			g.decisionSeq = append(g.decisionSeq[:i], g.decisionSeq[i+1:]...)
			break
		}
	}
}

// sortedPlayerIDs is used anywhere a deterministic iteration order over
// players is needed for a snapshot or APNAP-adjacent computation.
func (g *Game) sortedPlayerIDs() []zone.PlayerID {
	out := append([]zone.PlayerID(nil), g.playerOrder...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type gameStateSnapshot struct {
	clock        clock.Clock
	zones        *zone.Zones
	players      map[zone.PlayerID]*zone.Player
	playerOrder  []zone.PlayerID
	activePlayer zone.PlayerID
	turn         int64
	phase        stack.Phase
	step         stack.Step
	stack        *stack.Stack
	decisions    map[string]decision.Pending
	decisionSeq  []string
}

func (g *Game) snapshotState() gameStateSnapshot {
	players := make(map[zone.PlayerID]*zone.Player, len(g.players))
	for id, p := range g.players {
		players[id] = p.Clone()
	}
	decisions := make(map[string]decision.Pending, len(g.decisions))
	for id, d := range g.decisions {
		decisions[id] = d
	}
	return gameStateSnapshot{
		clock:        *g.clock,
		zones:        g.zones.Clone(),
		players:      players,
		playerOrder:  append([]zone.PlayerID(nil), g.playerOrder...),
		activePlayer: g.activePlayer,
		turn:         g.turn,
		phase:        g.phase,
		step:         g.step,
		stack:        g.stack.Clone(),
		decisions:    decisions,
		decisionSeq:  append([]string(nil), g.decisionSeq...),
	}
}

func (g *Game) restoreState(s gameStateSnapshot) {
	*g.clock = s.clock
	g.zones = s.zones
	g.players = s.players
	g.playerOrder = s.playerOrder
	g.activePlayer = s.activePlayer
	g.turn = s.turn
	g.phase = s.phase
	g.step = s.step
	g.stack = s.stack
	g.decisions = s.decisions
	g.decisionSeq = s.decisionSeq
}

// bindCardEffects instantiates a card definition's static layer effects and
// replacement effects onto a concrete object, appending them to the game's
// live effect lists. Effects are tied to their source object's identity
// so they vanish when the source leaves.
func (g *Game) bindCardEffects(o *zone.Object, def cards.Def) {
	for _, tmpl := range def.StaticLayerEffects {
		e := tmpl
		e.SourceID = o.ID
		e.ID = g.clock.Mint("fx")
		e.Timestamp = g.clock.Seq()
		g.continuousEffects = append(g.continuousEffects, e)
	}
	for _, r := range def.Replacements {
		g.replacements = append(g.replacements, r)
	}
	for _, tmpl := range def.TriggeredAbilities {
		src := tmpl
		src.ObjectID = o.ID
		src.Controller = o.Controller
		objID, userMatch := o.ID, tmpl.Matches
		// A self-referential trigger (entering/leaving the battlefield, dying)
		// only fires for its own object; the card definition's matcher only
		// describes the event kind, so the binder adds the identity check
		// here rather than asking every card to repeat it.
		src.Matches = func(ev trigger.GameEvent) bool {
			switch ev.Kind {
			case trigger.EnterBattlefield, trigger.LeaveBattlefield, trigger.Dies:
				if ev.Object != objID {
					return false
				}
			case trigger.DealsDamage, trigger.Attacks, trigger.Blocks, trigger.IsCast:
				if ev.Source != objID {
					return false
				}
			}
			return userMatch(ev)
		}
		g.triggerSources = append(g.triggerSources, src)
	}
}

// unbindCardEffects removes every effect/replacement/trigger source keyed
// to the given object, used when it leaves the zone that granted them
// (e.g. leaving the battlefield).
func (g *Game) unbindCardEffects(id zone.ObjectID) {
	filtered := g.continuousEffects[:0]
	for _, e := range g.continuousEffects {
		if e.SourceID != id {
			filtered = append(filtered, e)
		}
	}
	g.continuousEffects = filtered

	var filteredTriggers []trigger.Source
	for _, s := range g.triggerSources {
		if s.ObjectID != id {
			filteredTriggers = append(filteredTriggers, s)
		}
	}
	g.triggerSources = filteredTriggers
}

func (g *Game) onBattlefield(id zone.ObjectID) bool {
	o, ok := g.zones.Object(id)
	return ok && o.CurrentZone == zone.Battlefield
}

// offerTriggers presents an internal event to every registered trigger
// source and resolves whatever it collects: a controller with exactly one
// collected trigger has it stacked immediately (there is no choice to make),
// while a controller with more than one must submit an order_triggers
// decision before any of them reach the stack. Controllers are processed in
// active-player-non-active-player order.
func (g *Game) offerTriggers(ev trigger.GameEvent) {
	g.triggerQueue.Offer(g.triggerSources, ev, g.onBattlefield)

	pending := map[zone.PlayerID]bool{}
	for _, p := range g.triggerQueue.Pending() {
		pending[p] = true
	}
	if len(pending) == 0 {
		return
	}
	for _, p := range trigger.APNAPOrder(g.activePlayer, g.sortedPlayerIDs(), pending) {
		collected := g.triggerQueue.ForController(p)
		if g.triggerQueue.NeedsOrderingDecision(p) {
			ids := make([]string, len(collected))
			for i, c := range collected {
				ids[i] = c.SourceID
			}
			g.registerNewDecision(p, decision.OrderTriggers, decision.Constraints{Min: len(ids), Max: len(ids), Options: ids}, nil)
			continue
		}
		drained, err := g.triggerQueue.Drain(p, []string{collected[0].SourceID})
		if err != nil {
			// The order passed here is always exactly the one collected
			// source's own ID, so a mismatch means the queue state is
			// corrupted rather than a bad player input.
			g.logger.Error("single-trigger auto-drain failed", zap.Error(err))
			continue
		}
		g.stackTriggers(drained)
	}
}

// stackTriggers pushes already-ordered collected triggers onto the stack (the
// first element is stacked first, so it resolves last) and opens a fresh
// priority round.
func (g *Game) stackTriggers(ordered []trigger.Collected) {
	for _, c := range trigger.StackOrder(ordered) {
		item := &stack.Item{
			ID:           g.clock.Mint("stack"),
			Kind:         stack.TriggeredAbilityKind,
			Controller:   c.Controller,
			Source:       c.ObjectID,
			Timestamp:    g.clock.Seq(),
			TriggerCheck: c.InterveningIf,
		}
		if o, ok := g.zones.Object(c.ObjectID); ok {
			item.CardName = o.Base.Name
		}
		g.stack.Push(item)
	}
	g.openPriorityRound()
}

// executorContext builds the effectir.Context a card's ResolutionSteps run
// under: the controller, the source object, and every player sorted by ID.
func (g *Game) executorContext(controller zone.PlayerID, source *zone.Object) effectir.Context {
	return effectir.Context{
		Controller: controller,
		SourceID:   source.ID,
		SourceName: source.Base.Name,
		AllPlayers: g.sortedPlayerIDs(),
	}
}

func (g *Game) executor() effectir.Executor {
	return effectir.Executor{Hooks: effectir.Hooks{
		DrawCards: func(p zone.PlayerID, n int) (int, bool) {
			return g.drawCards(p, n)
		},
		GainLife: func(p zone.PlayerID, amount int) {
			if player, ok := g.players[p]; ok {
				player.Life += amount
			}
		},
		LoseLife: func(p zone.PlayerID, amount int) {
			if player, ok := g.players[p]; ok {
				player.Life -= amount
			}
		},
		ModifyPT: func(target zone.ObjectID, power, toughness int) {
			// Permanent P/T modification from a resolved effect is modeled
			// as a new continuous effect bound to the resolving source,
			// rather than mutating the object directly, to stay consistent
			// with the layer system.
			g.continuousEffects = append(g.continuousEffects, layers.Effect{
				ID:        g.clock.Mint("fx"),
				SourceID:  target,
				Layer:     layers.Layer7cModifyPT,
				Timestamp: g.clock.Seq(),
				Filter:    layers.SelfOnly(),
				Apply:     layers.PumpPT(power, toughness),
			})
		},
		Destroy: func(target zone.ObjectID) {
			if ch, ok := g.computeEffective()[target]; ok && ch.Keywords["indestructible"] {
				return
			}
			if o, ok := g.zones.Object(target); ok {
				_, _ = g.zones.Move(g.clock, target, zone.Graveyard, zone.MoveOptions{})
				g.unbindCardEffects(o.ID)
			}
		},
		ExileObject: func(target zone.ObjectID) {
			if o, ok := g.zones.Object(target); ok {
				_, _ = g.zones.Move(g.clock, target, zone.Exile, zone.MoveOptions{})
				g.unbindCardEffects(o.ID)
			}
		},
		Bounce: func(target zone.ObjectID) {
			if o, ok := g.zones.Object(target); ok {
				_, _ = g.zones.Move(g.clock, target, zone.Hand, zone.MoveOptions{})
				g.unbindCardEffects(o.ID)
			}
		},
		DealDamage: func(source, target zone.ObjectID, player zone.PlayerID, amount int) {
			g.dealDamage(source, target, player, amount)
		},
		MillCards: func(p zone.PlayerID, n int) []zone.ObjectID {
			return g.moveFromTopOfLibrary(p, n, zone.Graveyard)
		},
		ExileFromTopOf: func(p zone.PlayerID, n int) []zone.ObjectID {
			return g.moveFromTopOfLibrary(p, n, zone.Exile)
		},
		AddMana: func(p zone.PlayerID, pool mana.Pool) {
			if player, ok := g.players[p]; ok {
				player.ManaPool.AddFrom(&pool)
			}
		},
		CreateToken: func(owner zone.PlayerID, base zone.CardRecord, amount int, tapped bool, counters zone.Counters) []zone.ObjectID {
			return g.createTokens(owner, base, amount, tapped, counters)
		},
		SacrificeOptions: func(p zone.PlayerID, matching func(zone.ObjectID) bool) *decision.Pending {
			return g.sacrificeOrHalt(p, matching)
		},
		MoveZone: func(from, to zone.Name, matching func(*zone.Object) bool, entersTapped bool, newController *zone.PlayerID) []zone.ObjectID {
			return g.moveMatchingBetweenZones(from, to, matching, entersTapped, newController)
		},
		ScanLibraryUntil: func(p zone.PlayerID, matches func(zone.CardRecord) bool) (int, bool) {
			return g.scanLibraryUntil(p, matches)
		},
		Scry: func(p zone.PlayerID, n int) *decision.Pending {
			return g.scryOrSurveil(p, n, decision.Scry)
		},
		Surveil: func(p zone.PlayerID, n int) *decision.Pending {
			return g.scryOrSurveil(p, n, decision.Surveil)
		},
	}}
}

// moveFromTopOfLibrary moves the top n cards of p's library into dest (mill
// into the graveyard, or exile_top into exile), stopping early if the
// library empties first.
func (g *Game) moveFromTopOfLibrary(p zone.PlayerID, n int, dest zone.Name) []zone.ObjectID {
	var moved []zone.ObjectID
	for i := 0; i < n; i++ {
		items, _ := g.zones.Iterate(zone.Library, p)
		if len(items) == 0 {
			break
		}
		top := items[len(items)-1]
		next, err := g.zones.Move(g.clock, top, dest, zone.MoveOptions{})
		if err != nil {
			break
		}
		moved = append(moved, next.ID)
	}
	return moved
}

// createTokens mints amount fresh token objects of base directly onto the
// battlefield under owner, applying the starting tapped state and counters.
func (g *Game) createTokens(owner zone.PlayerID, base zone.CardRecord, amount int, tapped bool, counters zone.Counters) []zone.ObjectID {
	out := make([]zone.ObjectID, 0, amount)
	for i := 0; i < amount; i++ {
		id := zone.ObjectID(g.clock.Mint("tok"))
		obj := zone.NewObject(id, base, owner, zone.Battlefield)
		obj.IsToken = true
		obj.Tapped = tapped
		for name, n := range counters {
			obj.Counters.Add(name, n)
		}
		g.zones.Register(obj)
		if err := g.zones.AddTop(zone.Battlefield, owner, id); err != nil {
			g.zones.Unregister(id)
			continue
		}
		g.offerTriggers(trigger.GameEvent{Kind: trigger.EnterBattlefield, Object: id, Player: owner})
		out = append(out, id)
	}
	return out
}

// sacrificeOrHalt resolves a "sacrifice a permanent matching" effect: when p
// controls exactly one legal permanent the choice is forced and it is
// sacrificed directly with no decision; otherwise a Sacrifice decision is
// registered, listing the legal permanents as its options.
func (g *Game) sacrificeOrHalt(p zone.PlayerID, matching func(zone.ObjectID) bool) *decision.Pending {
	var options []string
	for _, id := range g.battlefieldControlledBy(p) {
		if matching == nil || matching(id) {
			options = append(options, string(id))
		}
	}
	if len(options) == 0 {
		return nil
	}
	if len(options) == 1 {
		g.sacrifice(zone.ObjectID(options[0]))
		return nil
	}
	pending := g.registerNewDecision(p, decision.Sacrifice, decision.Constraints{Min: 1, Max: 1, Options: options}, nil)
	return &pending
}

// sacrifice moves a permanent controlled by its owner to the graveyard,
// unbinding any effects bound to it.
func (g *Game) sacrifice(id zone.ObjectID) {
	if _, ok := g.zones.Object(id); !ok {
		return
	}
	_, _ = g.zones.Move(g.clock, id, zone.Graveyard, zone.MoveOptions{})
	g.unbindCardEffects(id)
}

// battlefieldControlledBy lists the battlefield objects currently
// controlled by p.
func (g *Game) battlefieldControlledBy(p zone.PlayerID) []zone.ObjectID {
	ids, _ := g.zones.Iterate(zone.Battlefield, "")
	var out []zone.ObjectID
	for _, id := range ids {
		if o, ok := g.zones.Object(id); ok && o.Controller == p {
			out = append(out, id)
		}
	}
	return out
}

// moveMatchingBetweenZones moves every object in from (scanning every
// owner for a per-player zone) matching the predicate into to, applying the
// post-move tapped state and controller override.
func (g *Game) moveMatchingBetweenZones(from, to zone.Name, matching func(*zone.Object) bool, entersTapped bool, newController *zone.PlayerID) []zone.ObjectID {
	var candidates []zone.ObjectID
	if from.Shared() {
		ids, _ := g.zones.Iterate(from, "")
		candidates = append(candidates, ids...)
	} else {
		for p := range g.players {
			ids, _ := g.zones.Iterate(from, p)
			candidates = append(candidates, ids...)
		}
	}

	var moved []zone.ObjectID
	for _, id := range candidates {
		o, ok := g.zones.Object(id)
		if !ok || (matching != nil && !matching(o)) {
			continue
		}
		next, err := g.zones.Move(g.clock, id, to, zone.MoveOptions{NewController: newController})
		if err != nil {
			continue
		}
		if entersTapped && to == zone.Battlefield {
			next.Tapped = true
		}
		moved = append(moved, next.ID)
	}
	return moved
}

// scanLibraryUntil counts down from the top of p's library until a card
// matching the predicate is found, used to resolve "reveal cards from the
// top of your library until you reveal a [type] card" deterministically.
func (g *Game) scanLibraryUntil(p zone.PlayerID, matches func(zone.CardRecord) bool) (int, bool) {
	items, _ := g.zones.Iterate(zone.Library, p)
	count := 0
	for i := len(items) - 1; i >= 0; i-- {
		count++
		o, ok := g.zones.Object(items[i])
		if !ok {
			continue
		}
		if matches != nil && matches(o.Base) {
			return count, true
		}
	}
	return count, false
}

// scryOrSurveil registers a decision over the top n cards of p's library,
// tagging it with kind (Scry or Surveil) so the reply handler knows whether
// a "sent to bottom" or a "sent to graveyard" ordering applies to cards not
// kept on top.
func (g *Game) scryOrSurveil(p zone.PlayerID, n int, kind decision.Kind) *decision.Pending {
	items, _ := g.zones.Iterate(zone.Library, p)
	if len(items) > n {
		items = items[len(items)-n:]
	}
	if len(items) == 0 {
		return nil
	}
	options := make([]string, len(items))
	for i, id := range items {
		options[i] = string(id)
	}
	pending := g.registerNewDecision(p, kind, decision.Constraints{Min: 0, Max: len(options), Options: options}, nil)
	return &pending
}

func (g *Game) dealDamage(source, target zone.ObjectID, player zone.PlayerID, amount int) {
	ev := replace.Event{Kind: replace.DamageIsDealt, Object: target, Amount: amount}
	ev, _ = replace.New(g.replacements, nil).Run(ev)
	if ev.Prevented && ev.Amount == 0 {
		return
	}
	if ev.Redirected != nil {
		target, player = "", *ev.Redirected
	}
	if target != "" {
		if o, ok := g.zones.Object(target); ok {
			o.DamageMarked += ev.Amount
			if ev.Amount > 0 && g.sourceHasDeathtouch(source) {
				o.DamagedByDeathtouch = true
			}
		}
		return
	}
	if p, ok := g.players[player]; ok {
		p.Life -= ev.Amount
	}
	g.offerTriggers(trigger.GameEvent{Kind: trigger.DealsDamage, Source: source, Player: player, Amount: ev.Amount})
}

// sourceHasDeathtouch reports whether the damage source's effective
// characteristics grant deathtouch, read fresh each call since layer
// effects can grant or strip the keyword mid-game.
func (g *Game) sourceHasDeathtouch(source zone.ObjectID) bool {
	if source == "" {
		return false
	}
	ch, ok := g.computeEffective()[source]
	return ok && ch.Keywords["deathtouch"]
}

func (g *Game) drawCards(p zone.PlayerID, n int) (int, bool) {
	player, ok := g.players[p]
	if !ok {
		return 0, false
	}
	drawn := 0
	emptyLibrary := false
	for i := 0; i < n; i++ {
		items, _ := g.zones.Iterate(zone.Library, p)
		if len(items) == 0 {
			player.TriedEmptyDraw = true
			emptyLibrary = true
			break
		}
		top := items[len(items)-1]
		_, err := g.zones.Move(g.clock, top, zone.Hand, zone.MoveOptions{})
		if err != nil {
			break
		}
		drawn++
		player.Stats.CardsDrawn++
	}
	return drawn, emptyLibrary
}

// openPriorityRound starts (or restarts) a priority round with the active
// player first, used whenever a spell/ability is put on the stack: priority
// passes to the active player after any state change.
func (g *Game) openPriorityRound() {
	if g.priority == nil {
		g.priority = stack.NewPriority(g.playerOrder)
	} else {
		g.priority.Reset()
	}
	g.priority.GrantTo(g.activePlayer)
}

// resolveStackItem applies a popped stack item's effect: a spell becomes a
// permanent (if its card types say so) or goes to the graveyard, and any
// known card's resolution steps run through the effect IR executor.
func (g *Game) resolveStackItem(item *stack.Item) {
	if item == nil {
		return
	}
	def, known := g.cards.Lookup(normaliseCardKey(item.CardName))
	src, hasSrc := g.zones.Object(item.Source)

	resolved := false
	if item.Kind == stack.SpellKind && hasSrc {
		if src.IsPermanent() {
			next, err := g.zones.Move(g.clock, item.Source, zone.Battlefield, zone.MoveOptions{})
			if err == nil && known {
				g.bindCardEffects(next, def)
				g.offerTriggers(trigger.GameEvent{Kind: trigger.EnterBattlefield, Object: next.ID, Player: next.Controller})
			}
			resolved = true
		} else {
			_, _ = g.zones.Move(g.clock, item.Source, zone.Graveyard, zone.MoveOptions{})
			if known && def.CountersTargetSpell {
				g.counterTargetedSpell(item)
				resolved = true
			}
		}
	}

	if item.Kind == stack.TriggeredAbilityKind && !trigger.ResolutionCheck(item.TriggerCheck) {
		// the intervening-if clause is no longer true: the ability fizzles
		// without running its resolution steps.
		resolved = true
	}

	if !resolved && known && hasSrc && len(def.ResolutionSteps) > 0 {
		ctx := g.executorContext(item.Controller, src)
		exec := g.executor()
		for _, step := range def.ResolutionSteps {
			result := exec.Run(ctx, step)
			if result.Decision != nil {
				// The hook itself already registered the pending decision;
				// the remaining steps of this resolution are not run.
				g.logger.Debug("resolution halted on a pending decision",
					zap.String("source", string(src.ID)), zap.String("decision_id", result.Decision.ID))
				break
			}
		}
	}

	if g.priority != nil {
		g.priority.GrantTo(g.activePlayer)
	}
}

// counterTargetedSpell resolves a "counter target spell" effect: it pulls
// the targeted item off the stack directly (bypassing the normal resolve
// path) and sends its source to its owner's graveyard. A spell that has
// already resolved, or whose target was itself countered earlier, is left
// alone rather than treated as an error.
func (g *Game) counterTargetedSpell(item *stack.Item) {
	if len(item.Targets) == 0 {
		return
	}
	targetID := item.Targets[0]
	var target *stack.Item
	for _, it := range g.stack.Items() {
		if it.ID == targetID {
			target = it
			break
		}
	}
	if target == nil || !target.CanBeCountered {
		return
	}
	g.stack.Remove(targetID)
	if _, ok := g.zones.Object(target.Source); ok {
		_, _ = g.zones.Move(g.clock, target.Source, zone.Graveyard, zone.MoveOptions{})
	}
}

// advanceStep moves the turn structure to the next step, rolling into the
// next turn's untap step when it runs off the end.
func (g *Game) advanceStep() {
	next, nextStep, wrapped := stack.Next(g.phase, g.step)
	g.phase = next
	g.step = nextStep
	if next == stack.Postcombat {
		g.attackers = map[zone.ObjectID]zone.PlayerID{}
		g.blockers = map[zone.ObjectID]zone.ObjectID{}
	}
	if wrapped {
		g.turn++
		g.activePlayer = g.nextPlayer(g.activePlayer)
		for _, p := range g.players {
			p.Stats = zone.PerTurnStats{}
			p.ManaPool.Empty()
		}
	}
	g.offerTriggers(trigger.GameEvent{Kind: trigger.BeginStep, StepName: string(g.step), Player: g.activePlayer})
	if !stack.NoPriorityStep(g.step) {
		g.openPriorityRound()
	}
}

// nextPlayer returns the player following p in turn order, wrapping around.
func (g *Game) nextPlayer(p zone.PlayerID) zone.PlayerID {
	for i, pl := range g.playerOrder {
		if pl == p {
			return g.playerOrder[(i+1)%len(g.playerOrder)]
		}
	}
	if len(g.playerOrder) > 0 {
		return g.playerOrder[0]
	}
	return p
}

// normaliseCardKey maps a printed card name to its registry lookup key
// (the registry is keyed by normalised name).
func normaliseCardKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// decodePayload is a tiny helper so intent handlers can decode a typed
// payload with one line instead of repeating json.Unmarshal's error
// wrapping at every call site.
func decodePayload(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, v)
}
