package engine

import (
	"testing"

	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/forgewright/mtgcore/internal/engine/zone"
	"github.com/stretchr/testify/require"
)

// TestCounterspellRemovesTargetFromStack exercises "counter target spell":
// bob casts Counterspell targeting alice's pending Grizzly Bears, both
// players pass priority, and the targeted spell must vanish from the stack
// into alice's graveyard without ever reaching the battlefield, while
// Counterspell itself resolves to bob's graveyard and the stack ends empty.
func TestCounterspellRemovesTargetFromStack(t *testing.T) {
	g, _ := newTestGame(t)
	apply(t, g, eventlog.RNGSeed, "", map[string]interface{}{"seed": 11})
	apply(t, g, eventlog.Join, "alice", map[string]interface{}{"playerId": "alice", "startingLife": 20})
	apply(t, g, eventlog.Join, "bob", map[string]interface{}{"playerId": "bob", "startingLife": 20})

	apply(t, g, eventlog.DeckImportResolved, "alice", map[string]interface{}{
		"playerId": "alice", "cardNames": []string{"Grizzly Bears"},
	})
	apply(t, g, eventlog.DeckImportResolved, "bob", map[string]interface{}{
		"playerId": "bob", "cardNames": []string{"Counterspell"},
	})
	apply(t, g, eventlog.DrawCards, "alice", map[string]interface{}{"playerId": "alice", "amount": 1})
	apply(t, g, eventlog.DrawCards, "bob", map[string]interface{}{"playerId": "bob", "amount": 1})

	bearsHand, err := g.zones.Iterate(zone.Hand, "alice")
	require.NoError(t, err)
	require.Len(t, bearsHand, 1)
	bearsID := bearsHand[0]

	counterHand, err := g.zones.Iterate(zone.Hand, "bob")
	require.NoError(t, err)
	require.Len(t, counterHand, 1)
	counterID := counterHand[0]

	apply(t, g, eventlog.CastSpell, "alice", map[string]interface{}{
		"playerId": "alice", "cardId": string(bearsID),
	})
	require.Equal(t, 1, g.stack.Len())
	bearsStackID := g.stack.Peek().ID

	apply(t, g, eventlog.CastSpell, "bob", map[string]interface{}{
		"playerId": "bob", "cardId": string(counterID), "targets": []string{bearsStackID},
	})
	require.Equal(t, 2, g.stack.Len())

	apply(t, g, eventlog.PassPriority, "alice", map[string]interface{}{"playerId": "alice"})
	apply(t, g, eventlog.PassPriority, "bob", map[string]interface{}{"playerId": "bob"})

	require.True(t, g.stack.Empty())

	bf, err := g.zones.Iterate(zone.Battlefield, "alice")
	require.NoError(t, err)
	require.NotContains(t, bf, bearsID, "countered spell must never reach the battlefield")

	aliceGY, err := g.zones.Iterate(zone.Graveyard, "alice")
	require.NoError(t, err)
	require.Len(t, aliceGY, 1, "the countered spell's source goes to its owner's graveyard")

	bobGY, err := g.zones.Iterate(zone.Graveyard, "bob")
	require.NoError(t, err)
	require.Len(t, bobGY, 1, "Counterspell itself resolves to its controller's graveyard")
}
