package engine

import (
	"testing"

	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/stretchr/testify/require"
)

// TestDrawingFromAnEmptyLibraryLosesTheGame drives a player's library down
// to nothing and confirms that attempting one more draw marks them as having
// lost, end to end through the real draw intent and the state-based-action
// pass that follows every Apply — not just the replacement/SBA packages in
// isolation.
func TestDrawingFromAnEmptyLibraryLosesTheGame(t *testing.T) {
	g, _ := newTestGame(t)
	apply(t, g, eventlog.RNGSeed, "", map[string]interface{}{"seed": 17})
	apply(t, g, eventlog.Join, "alice", map[string]interface{}{"playerId": "alice", "startingLife": 20})
	apply(t, g, eventlog.Join, "bob", map[string]interface{}{"playerId": "bob", "startingLife": 20})
	apply(t, g, eventlog.DeckImportResolved, "alice", map[string]interface{}{
		"playerId": "alice", "cardNames": []string{"Grizzly Bears"},
	})
	apply(t, g, eventlog.DeckImportResolved, "bob", map[string]interface{}{
		"playerId": "bob", "cardNames": []string{"Grizzly Bears"},
	})

	apply(t, g, eventlog.DrawCards, "alice", map[string]interface{}{"playerId": "alice", "amount": 1})
	require.False(t, g.players["alice"].Lost, "drawing the last card in the library is not itself a loss")

	apply(t, g, eventlog.DrawCards, "alice", map[string]interface{}{"playerId": "alice", "amount": 1})
	require.True(t, g.players["alice"].Lost, "drawing from an empty library must lose the game")
	require.False(t, g.players["bob"].Lost, "bob's library was never touched")
}
