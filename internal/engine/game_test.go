package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/forgewright/mtgcore/internal/engine/cards"
	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/forgewright/mtgcore/internal/engine/zone"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func newTestGame(t *testing.T) (*Game, eventlog.Store) {
	t.Helper()
	store := eventlog.NewMemoryStore()
	g := NewGame("game-1", store, cards.NewCoreRegistry())
	return g, store
}

func apply(t *testing.T, g *Game, typ eventlog.IntentType, playerID string, payload interface{}) *Snapshot {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		raw = mustJSON(t, payload)
	}
	snap, err := g.Apply(context.Background(), eventlog.Intent{
		ID:       string(typ) + "-" + playerID,
		GameID:   g.ID,
		Type:     typ,
		PlayerID: playerID,
		Payload:  raw,
	})
	require.NoError(t, err)
	return snap
}

func setupTwoPlayerGame(t *testing.T) *Game {
	t.Helper()
	g, _ := newTestGame(t)
	apply(t, g, eventlog.RNGSeed, "", map[string]interface{}{"seed": 42})
	apply(t, g, eventlog.Join, "alice", map[string]interface{}{"playerId": "alice", "startingLife": 20})
	apply(t, g, eventlog.Join, "bob", map[string]interface{}{"playerId": "bob", "startingLife": 20})

	deck := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		deck = append(deck, "Grizzly Bears")
	}
	apply(t, g, eventlog.DeckImportResolved, "alice", map[string]interface{}{"playerId": "alice", "cardNames": deck})
	apply(t, g, eventlog.DeckImportResolved, "bob", map[string]interface{}{"playerId": "bob", "cardNames": deck})
	return g
}

func TestJoinRejectsDuplicatePlayer(t *testing.T) {
	g, _ := newTestGame(t)
	apply(t, g, eventlog.Join, "alice", map[string]interface{}{"playerId": "alice"})

	_, err := g.Apply(context.Background(), eventlog.Intent{
		Type:    eventlog.Join,
		Payload: mustJSON(t, map[string]interface{}{"playerId": "alice"}),
	})
	require.Error(t, err)
}

func TestDrawCardsMovesTopOfLibraryToHand(t *testing.T) {
	g := setupTwoPlayerGame(t)

	before, err := g.zones.Iterate(zone.Library, "alice")
	require.NoError(t, err)
	require.Len(t, before, 20)

	snap := apply(t, g, eventlog.DrawCards, "alice", map[string]interface{}{"playerId": "alice", "amount": 7})

	after, err := g.zones.Iterate(zone.Library, "alice")
	require.NoError(t, err)
	require.Len(t, after, 13)

	hand, err := g.zones.Iterate(zone.Hand, "alice")
	require.NoError(t, err)
	require.Len(t, hand, 7)

	require.Equal(t, int64(snap.Seq), g.clock.Seq())
}

func TestDrawFromEmptyLibraryMarksTriedEmptyDraw(t *testing.T) {
	g, _ := newTestGame(t)
	apply(t, g, eventlog.RNGSeed, "", map[string]interface{}{"seed": 1})
	apply(t, g, eventlog.Join, "alice", map[string]interface{}{"playerId": "alice"})

	apply(t, g, eventlog.DrawCards, "alice", map[string]interface{}{"playerId": "alice", "amount": 1})

	require.True(t, g.players["alice"].TriedEmptyDraw)
}

func TestCastSpellThenPassPriorityBothSidesResolvesToBattlefield(t *testing.T) {
	g := setupTwoPlayerGame(t)
	apply(t, g, eventlog.DrawCards, "alice", map[string]interface{}{"playerId": "alice", "amount": 1})

	hand, err := g.zones.Iterate(zone.Hand, "alice")
	require.NoError(t, err)
	require.Len(t, hand, 1)
	cardID := hand[0]

	apply(t, g, eventlog.CastSpell, "alice", map[string]interface{}{"playerId": "alice", "cardId": string(cardID)})
	require.False(t, g.stack.Empty())

	apply(t, g, eventlog.PassPriority, "alice", map[string]interface{}{"playerId": "alice"})
	apply(t, g, eventlog.PassPriority, "bob", map[string]interface{}{"playerId": "bob"})

	require.True(t, g.stack.Empty())
	bf, err := g.zones.Iterate(zone.Battlefield, "alice")
	require.NoError(t, err)
	require.Len(t, bf, 1)
	resolved, ok := g.zones.Object(bf[0])
	require.True(t, ok)
	require.Equal(t, "Grizzly Bears", resolved.Base.Name)
	require.NotEqual(t, cardID, bf[0], "leaving the stack mints a fresh object ID")
}

func TestDeclareAttackersTapsAttackerAndRecordsDefender(t *testing.T) {
	g := setupTwoPlayerGame(t)
	id := zone.ObjectID(g.clock.Mint("obj"))
	base, ok := g.cards.Lookup("grizzly bears")
	require.True(t, ok)
	o := zone.NewObject(id, base.Base, "alice", zone.Battlefield)
	g.zones.Register(o)
	require.NoError(t, g.zones.AddTop(zone.Battlefield, "alice", id))

	apply(t, g, eventlog.DeclareAttackers, "alice", map[string]interface{}{
		"attackers": map[string]string{string(id): "bob"},
	})

	require.True(t, o.Tapped)
	require.Equal(t, zone.PlayerID("bob"), g.attackers[id])
}

func TestNextTurnClearsCombatAndEmptiesManaPools(t *testing.T) {
	g := setupTwoPlayerGame(t)
	g.attackers[zone.ObjectID("x")] = "bob"
	g.players["alice"].ManaPool.Add(zone.Color("G"), 3)

	apply(t, g, eventlog.NextTurn, "", nil)

	require.Empty(t, g.attackers)
	require.Equal(t, 0, g.players["alice"].ManaPool.Amount(zone.Color("G")))
}

func TestConcedeMarksPlayerLost(t *testing.T) {
	g := setupTwoPlayerGame(t)
	apply(t, g, eventlog.Concede, "bob", nil)
	require.True(t, g.players["bob"].Lost)
}

func TestUnknownIntentTypeIsMalformed(t *testing.T) {
	g, _ := newTestGame(t)
	_, err := g.Apply(context.Background(), eventlog.Intent{Type: eventlog.IntentType("bogus")})
	require.Error(t, err)
}

func TestFatalErrorStopsFurtherIntents(t *testing.T) {
	g, _ := newTestGame(t)
	g.failed = true
	_, err := g.Apply(context.Background(), eventlog.Intent{Type: eventlog.NextStep})
	require.Error(t, err)
}
