package engine

import (
	"encoding/json"
	"fmt"

	"github.com/forgewright/mtgcore/internal/engine/decision"
	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/forgewright/mtgcore/internal/engine/replace"
	"github.com/forgewright/mtgcore/internal/engine/stack"
	"github.com/forgewright/mtgcore/internal/engine/trigger"
	"github.com/forgewright/mtgcore/internal/engine/zone"
	engerr "github.com/forgewright/mtgcore/internal/errors"
)

type handlerFunc func(g *Game, intent eventlog.Intent, payload json.RawMessage) error

var dispatch = map[eventlog.IntentType]handlerFunc{
	eventlog.RNGSeed:             handleRNGSeed,
	eventlog.Join:                handleJoin,
	eventlog.SetCommander:        handleSetCommander,
	eventlog.DeckImportResolved:  handleDeckImportResolved,
	eventlog.ShuffleLibrary:      handleShuffleLibrary,
	eventlog.DrawCards:           handleDrawCards,
	eventlog.MulliganDecision:    handleMulliganDecision,
	eventlog.MulliganBottomCards: handleMulliganBottomCards,
	eventlog.PassPriority:        handlePassPriority,
	eventlog.CastSpell:           handleCastSpell,
	eventlog.ActivateAbility:     handleActivateAbility,
	eventlog.PlayLand:            handlePlayLand,
	eventlog.PushStack:           handlePushStack,
	eventlog.ResolveTop:          handleResolveTop,
	eventlog.DeclareAttackers:    handleDeclareAttackers,
	eventlog.DeclareBlockers:     handleDeclareBlockers,
	eventlog.DealCombatDamage:    handleDealCombatDamage,
	eventlog.NextStep:            handleNextStep,
	eventlog.NextTurn:            handleNextTurn,
	eventlog.SubmitDecision:      handleSubmitDecision,
	eventlog.Concede:             handleConcede,
	eventlog.DealDamage:          handleDealDamageIntent,
	eventlog.SetCounters:         handleSetCounters,
	eventlog.CreateToken:         handleCreateToken,
	eventlog.TapPermanent:        handleTapPermanent,
	eventlog.UntapPermanent:      handleUntapPermanent,
	eventlog.Timeout:             handleTimeout,
}

func illegal(intent eventlog.Intent, reason string) error {
	return &engerr.IllegalIntentError{Reason: reason, IntentID: intent.ID}
}

func malformed(intent eventlog.Intent, reason string) error {
	return &engerr.MalformedIntentError{Reason: reason, IntentID: intent.ID}
}

func handleRNGSeed(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		Seed uint64 `json:"seed"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	if g.clock.Seeded() {
		return illegal(intent, "rng already seeded for this game")
	}
	g.clock.Seed(body.Seed)
	return nil
}

func handleJoin(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		PlayerID     string `json:"playerId"`
		StartingLife int    `json:"startingLife"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	if body.PlayerID == "" {
		return malformed(intent, "join requires a playerId")
	}
	pid := zone.PlayerID(body.PlayerID)
	if _, exists := g.players[pid]; exists {
		return illegal(intent, "player already joined")
	}
	life := body.StartingLife
	if life == 0 {
		life = 20
	}
	g.players[pid] = zone.NewPlayer(pid, life)
	g.playerOrder = append(g.playerOrder, pid)
	g.zones = zone.New(g.playerOrder)
	if g.activePlayer == "" {
		g.activePlayer = pid
	}
	return nil
}

func handleSetCommander(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		PlayerID string `json:"playerId"`
		CardName string `json:"cardName"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	pid := zone.PlayerID(body.PlayerID)
	player, ok := g.players[pid]
	if !ok {
		return illegal(intent, "unknown player")
	}
	def, ok := g.cards.Lookup(normaliseCardKey(body.CardName))
	if !ok {
		return illegal(intent, "unknown card "+body.CardName)
	}
	id := zone.ObjectID(g.clock.Mint("obj"))
	o := zone.NewObject(id, def.Base, pid, zone.Command)
	o.IsCommander = true
	g.zones.Register(o)
	if err := g.zones.AddTop(zone.Command, pid, id); err != nil {
		return &engerr.InconsistentError{Invariant: "zone membership", Detail: err.Error()}
	}
	_ = player
	return nil
}

func handleDeckImportResolved(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		PlayerID  string   `json:"playerId"`
		CardNames []string `json:"cardNames"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	pid := zone.PlayerID(body.PlayerID)
	if _, ok := g.players[pid]; !ok {
		return illegal(intent, "unknown player")
	}
	for _, name := range body.CardNames {
		def, ok := g.cards.Lookup(normaliseCardKey(name))
		if !ok {
			return illegal(intent, "unknown card "+name)
		}
		id := zone.ObjectID(g.clock.Mint("obj"))
		o := zone.NewObject(id, def.Base, pid, zone.Library)
		g.zones.Register(o)
		if err := g.zones.AddTop(zone.Library, pid, id); err != nil {
			return &engerr.InconsistentError{Invariant: "zone membership", Detail: err.Error()}
		}
	}
	return nil
}

func handleShuffleLibrary(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		PlayerID string `json:"playerId"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	pid := zone.PlayerID(body.PlayerID)
	if !g.clock.Seeded() {
		return illegal(intent, "cannot shuffle before the rng is seeded")
	}
	items, err := g.zones.Iterate(zone.Library, pid)
	if err != nil {
		return illegal(intent, err.Error())
	}
	g.clock.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	libZone, err := g.zones.ZoneOf(zone.Library, pid)
	if err != nil {
		return &engerr.InconsistentError{Invariant: "zone lookup", Detail: err.Error()}
	}
	libZone.Objects = items
	return nil
}

func handleDrawCards(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		PlayerID string `json:"playerId"`
		Amount   int    `json:"amount"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	pid := zone.PlayerID(body.PlayerID)
	if _, ok := g.players[pid]; !ok {
		return illegal(intent, "unknown player")
	}
	amount := body.Amount
	if amount <= 0 {
		amount = 1
	}
	ev := replace.Event{Kind: replace.CardsAreDrawn, AffectedPlayer: pid}
	items, _ := g.zones.Iterate(zone.Library, pid)
	ev.LibraryEmpty = len(items) == 0
	rewritten, _ := replace.New(g.replacements, nil).Run(ev)
	if rewritten.ReplacedWin {
		g.players[pid].WinPending = true
		return nil
	}
	g.drawCards(pid, amount)
	return nil
}

func handleMulliganDecision(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		PlayerID string `json:"playerId"`
		Keep     bool   `json:"keep"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	pid := zone.PlayerID(body.PlayerID)
	if _, ok := g.players[pid]; !ok {
		return illegal(intent, "unknown player")
	}
	if !body.Keep {
		items, _ := g.zones.Iterate(zone.Hand, pid)
		for _, id := range items {
			if _, err := g.zones.Move(g.clock, id, zone.Library, zone.MoveOptions{ToBottom: true}); err != nil {
				return &engerr.InconsistentError{Invariant: "zone membership", Detail: err.Error()}
			}
		}
		libZone, err := g.zones.ZoneOf(zone.Library, pid)
		if err == nil {
			g.clock.Shuffle(len(libZone.Objects), func(i, j int) {
				libZone.Objects[i], libZone.Objects[j] = libZone.Objects[j], libZone.Objects[i]
			})
		}
		g.drawCards(pid, 7)
	}
	return nil
}

func handleMulliganBottomCards(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		PlayerID string   `json:"playerId"`
		CardIDs  []string `json:"cardIds"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	pid := zone.PlayerID(body.PlayerID)
	for _, id := range body.CardIDs {
		if _, err := g.zones.Move(g.clock, zone.ObjectID(id), zone.Library, zone.MoveOptions{ToBottom: true}); err != nil {
			return illegal(intent, err.Error())
		}
	}
	_ = pid
	return nil
}

func handlePassPriority(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		PlayerID string `json:"playerId"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	if g.priority == nil {
		return illegal(intent, "no priority round is open")
	}
	pid := zone.PlayerID(body.PlayerID)
	if g.priority.Holder() != pid {
		return illegal(intent, "player does not hold priority")
	}
	result := g.priority.Pass(pid)
	if result.AllPassed {
		if !g.stack.Empty() {
			item := g.stack.Pop()
			g.resolveStackItem(item)
		} else {
			g.advanceStep()
		}
		g.priority.Reset()
	}
	return nil
}

func handleCastSpell(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		PlayerID string   `json:"playerId"`
		CardID   string   `json:"cardId"`
		Targets  []string `json:"targets"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	pid := zone.PlayerID(body.PlayerID)
	if _, ok := g.players[pid]; !ok {
		return illegal(intent, "unknown player")
	}
	cardID := zone.ObjectID(body.CardID)
	o, ok := g.zones.Object(cardID)
	if !ok {
		return illegal(intent, "unknown card")
	}
	if _, err := g.zones.Move(g.clock, cardID, zone.Stack, zone.MoveOptions{}); err != nil {
		return &engerr.InconsistentError{Invariant: "zone membership", Detail: err.Error()}
	}
	item := &stack.Item{
		ID:             g.clock.Mint("stack"),
		Kind:           stack.SpellKind,
		Controller:     pid,
		Source:         o.ID,
		CardName:       o.Base.Name,
		Targets:        body.Targets,
		CanBeCountered: true,
		Timestamp:      g.clock.Seq(),
	}
	g.stack.Push(item)
	g.openPriorityRound()
	return nil
}

func handleActivateAbility(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		PlayerID string `json:"playerId"`
		SourceID string `json:"sourceId"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	pid := zone.PlayerID(body.PlayerID)
	source := zone.ObjectID(body.SourceID)
	if !g.onBattlefield(source) {
		return illegal(intent, "ability source is not on the battlefield")
	}
	item := &stack.Item{
		ID:         g.clock.Mint("stack"),
		Kind:       stack.ActivatedAbility,
		Controller: pid,
		Source:     source,
		Timestamp:  g.clock.Seq(),
	}
	g.stack.Push(item)
	g.openPriorityRound()
	return nil
}

func handlePlayLand(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		PlayerID string `json:"playerId"`
		CardID   string `json:"cardId"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	pid := zone.PlayerID(body.PlayerID)
	player, ok := g.players[pid]
	if !ok {
		return illegal(intent, "unknown player")
	}
	o, ok := g.zones.Object(zone.ObjectID(body.CardID))
	if !ok {
		return illegal(intent, "unknown card")
	}
	next, err := g.zones.Move(g.clock, o.ID, zone.Battlefield, zone.MoveOptions{})
	if err != nil {
		return &engerr.InconsistentError{Invariant: "zone membership", Detail: err.Error()}
	}
	player.Stats.LandsPlayed++
	if def, ok := g.cards.Lookup(normaliseCardKey(next.Base.Name)); ok {
		g.bindCardEffects(next, def)
		g.offerTriggers(trigger.GameEvent{Kind: trigger.EnterBattlefield, Object: next.ID, Player: next.Controller})
	}
	return nil
}

func handlePushStack(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		PlayerID string `json:"playerId"`
		ItemID   string `json:"itemId"`
		SourceID string `json:"sourceId"`
		Kind     string `json:"kind"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	item := &stack.Item{
		ID:         body.ItemID,
		Kind:       stack.Kind(body.Kind),
		Controller: zone.PlayerID(body.PlayerID),
		Source:     zone.ObjectID(body.SourceID),
		Timestamp:  g.clock.Seq(),
	}
	if item.ID == "" {
		item.ID = g.clock.Mint("stack")
	}
	g.stack.Push(item)
	return nil
}

func handleResolveTop(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	if g.stack.Empty() {
		return illegal(intent, "stack is empty")
	}
	item := g.stack.Pop()
	g.resolveStackItem(item)
	return nil
}

func handleDeclareAttackers(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		Attackers map[string]string `json:"attackers"` // attacker object ID -> defending player
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	for attacker := range body.Attackers {
		o, ok := g.zones.Object(zone.ObjectID(attacker))
		if !ok || o.CurrentZone != zone.Battlefield {
			return illegal(intent, "attacker not on the battlefield")
		}
	}
	for attacker, defender := range body.Attackers {
		o, _ := g.zones.Object(zone.ObjectID(attacker))
		o.Tapped = true
		g.attackers[zone.ObjectID(attacker)] = zone.PlayerID(defender)
	}
	return nil
}

func handleDeclareBlockers(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		Blockers map[string]string `json:"blockers"` // blocker object ID -> attacker object ID
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	for blocker := range body.Blockers {
		if _, ok := g.zones.Object(zone.ObjectID(blocker)); !ok {
			return illegal(intent, "blocker not found")
		}
	}
	for blocker, attacker := range body.Blockers {
		g.blockers[zone.ObjectID(blocker)] = zone.ObjectID(attacker)
	}
	return nil
}

func handleDealCombatDamage(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		Assignments []struct {
			Source zone.ObjectID `json:"source"`
			Target zone.ObjectID `json:"target"`
			Player string        `json:"player"`
			Amount int           `json:"amount"`
		} `json:"assignments"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	for _, a := range body.Assignments {
		if a.Amount < 0 {
			return malformed(intent, "damage amount must be non-negative")
		}
	}
	for _, a := range body.Assignments {
		g.dealDamage(a.Source, a.Target, zone.PlayerID(a.Player), a.Amount)
		if srcObj, ok := g.zones.Object(a.Source); ok && srcObj.IsCommander && a.Player != "" {
			if player, ok := g.players[zone.PlayerID(a.Player)]; ok {
				player.RecordCommanderDamage(a.Source, a.Amount)
			}
		}
	}
	return nil
}

func handleNextStep(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	g.advanceStep()
	return nil
}

func handleNextTurn(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	g.turn++
	g.phase = stack.Beginning
	g.step = stack.Untap
	g.activePlayer = g.nextPlayer(g.activePlayer)
	g.attackers = map[zone.ObjectID]zone.PlayerID{}
	g.blockers = map[zone.ObjectID]zone.ObjectID{}
	for _, p := range g.players {
		p.Stats = zone.PerTurnStats{}
		p.ManaPool.Empty()
	}
	return nil
}

func handleSubmitDecision(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	if intent.ReplyTo == "" {
		return malformed(intent, "submitDecision requires replyTo")
	}
	pending, ok := g.resolveDecision(intent.ReplyTo)
	if !ok {
		return &engerr.UnknownDecisionError{DecisionID: intent.ReplyTo}
	}
	if pending.Player != zone.PlayerID(intent.PlayerID) {
		return &engerr.UnknownDecisionError{DecisionID: intent.ReplyTo}
	}
	var reply decision.Reply
	if err := decodePayload(payload, &reply); err != nil {
		return malformed(intent, err.Error())
	}
	reply.DecisionID = intent.ReplyTo

	var drained []trigger.Collected
	if pending.Kind == decision.OrderTriggers {
		var err error
		drained, err = g.triggerQueue.Drain(pending.Player, reply.Values)
		if err != nil {
			return illegal(intent, err.Error())
		}
	}
	if pending.Kind == decision.Scry || pending.Kind == decision.Surveil {
		if err := g.applyScryOrSurveil(pending, reply); err != nil {
			return illegal(intent, err.Error())
		}
	}
	if pending.Kind == decision.Sacrifice {
		if err := g.applySacrificeReply(pending, reply); err != nil {
			return illegal(intent, err.Error())
		}
	}

	g.closeDecision(intent.ReplyTo)
	if pending.Kind == decision.OrderTriggers {
		g.stackTriggers(drained)
	}
	return nil
}

// applyScryOrSurveil moves each examined card to the zone the reply's
// mapping names it for ("bottom" of library, or for surveil only
// "graveyard"); a card absent from the mapping, or mapped to "top", stays
// on top of the library in its current relative order.
func (g *Game) applyScryOrSurveil(pending decision.Pending, reply decision.Reply) error {
	for _, opt := range pending.Constraints.Options {
		id := zone.ObjectID(opt)
		switch reply.Mapping[opt] {
		case "bottom":
			if _, err := g.zones.Move(g.clock, id, zone.Library, zone.MoveOptions{ToBottom: true}); err != nil {
				return err
			}
		case "graveyard":
			if pending.Kind != decision.Surveil {
				return fmt.Errorf("engine: scry cannot send a card to the graveyard")
			}
			if _, err := g.zones.Move(g.clock, id, zone.Graveyard, zone.MoveOptions{}); err != nil {
				return err
			}
		}
	}
	return nil
}

// applySacrificeReply sacrifices the single permanent named by the reply,
// validating it against the decision's own options rather than trusting
// the raw value.
func (g *Game) applySacrificeReply(pending decision.Pending, reply decision.Reply) error {
	if len(reply.Values) != 1 {
		return fmt.Errorf("engine: sacrifice reply must name exactly one permanent")
	}
	chosen := reply.Values[0]
	valid := false
	for _, opt := range pending.Constraints.Options {
		if opt == chosen {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("engine: %q is not a legal sacrifice option", chosen)
	}
	g.sacrifice(zone.ObjectID(chosen))
	return nil
}

func handleConcede(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	pid := zone.PlayerID(intent.PlayerID)
	player, ok := g.players[pid]
	if !ok {
		return illegal(intent, "unknown player")
	}
	player.Lost = true
	return nil
}

func handleDealDamageIntent(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		Source zone.ObjectID `json:"source"`
		Target zone.ObjectID `json:"target"`
		Player string        `json:"player"`
		Amount int            `json:"amount"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	if body.Amount < 0 {
		return malformed(intent, "damage amount must be non-negative")
	}
	g.dealDamage(body.Source, body.Target, zone.PlayerID(body.Player), body.Amount)
	return nil
}

func handleSetCounters(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		ObjectID string `json:"objectId"`
		Name     string `json:"name"`
		Amount   int    `json:"amount"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	o, ok := g.zones.Object(zone.ObjectID(body.ObjectID))
	if !ok {
		return illegal(intent, "unknown object")
	}
	delta := body.Amount - o.Counters[body.Name]
	o.Counters.Add(body.Name, delta)
	return nil
}

func handleCreateToken(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		OwnerID string `json:"ownerId"`
		Name    string `json:"name"`
		Power   int    `json:"power"`
		Toughness int  `json:"toughness"`
		Amount  int    `json:"amount"`
		Tapped  bool   `json:"tapped"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	owner := zone.PlayerID(body.OwnerID)
	if _, ok := g.players[owner]; !ok {
		return illegal(intent, "unknown player")
	}
	amount := body.Amount
	if amount <= 0 {
		amount = 1
	}
	base := zone.CardRecord{Name: body.Name, Types: []string{"Creature"}, BasePower: body.Power, BaseToughness: body.Toughness, HasPT: true}
	for i := 0; i < amount; i++ {
		id := zone.ObjectID(g.clock.Mint("obj"))
		o := zone.NewObject(id, base, owner, zone.Battlefield)
		o.IsToken = true
		o.Tapped = body.Tapped
		g.zones.Register(o)
		if err := g.zones.AddTop(zone.Battlefield, owner, id); err != nil {
			return &engerr.InconsistentError{Invariant: "zone membership", Detail: err.Error()}
		}
	}
	return nil
}

func handleTapPermanent(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		ObjectID string `json:"objectId"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	o, ok := g.zones.Object(zone.ObjectID(body.ObjectID))
	if !ok || o.CurrentZone != zone.Battlefield {
		return illegal(intent, "object is not a permanent on the battlefield")
	}
	if o.Tapped {
		return illegal(intent, "already tapped")
	}
	o.Tapped = true
	return nil
}

func handleUntapPermanent(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	var body struct {
		ObjectID string `json:"objectId"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	o, ok := g.zones.Object(zone.ObjectID(body.ObjectID))
	if !ok || o.CurrentZone != zone.Battlefield {
		return illegal(intent, "object is not a permanent on the battlefield")
	}
	o.Tapped = false
	return nil
}

func handleTimeout(g *Game, intent eventlog.Intent, payload json.RawMessage) error {
	// An unanswered decision's timeout is treated as a forced default: the
	// pending decision is simply closed without effect, matching the "may"
	// default of declining.
	var body struct {
		DecisionID string `json:"decisionId"`
	}
	if err := decodePayload(payload, &body); err != nil {
		return malformed(intent, err.Error())
	}
	if body.DecisionID != "" {
		g.closeDecision(body.DecisionID)
	}
	return nil
}
