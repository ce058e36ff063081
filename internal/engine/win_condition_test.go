package engine

import (
	"testing"

	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/forgewright/mtgcore/internal/engine/replace"
	"github.com/stretchr/testify/require"
)

// TestEmptyLibraryWinReplacementRecordsARealWin drives a player's library to
// empty while a Laboratory-Maniac-style replacement effect is registered on
// their own behalf, and confirms the draw is recorded as a win rather than a
// loss end to end: the replaced draw sets WinPending, and the state-based-
// action pass that runs after every Apply finalises it into Won.
func TestEmptyLibraryWinReplacementRecordsARealWin(t *testing.T) {
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

	g.replacements = append(g.replacements, replace.EmptyLibraryWin{
		EffectID: "alice-laboratory-maniac",
		Owner:    "alice",
	})

	apply(t, g, eventlog.DrawCards, "alice", map[string]interface{}{"playerId": "alice", "amount": 1})
	require.False(t, g.players["alice"].Won)
	require.False(t, g.players["alice"].Lost)

	apply(t, g, eventlog.DrawCards, "alice", map[string]interface{}{"playerId": "alice", "amount": 1})
	require.True(t, g.players["alice"].Won, "a replaced empty-library draw must resolve to a real win")
	require.False(t, g.players["alice"].Lost, "the replacement converts the loss, it does not also record one")
	require.False(t, g.players["bob"].Lost)
	require.False(t, g.players["bob"].Won)
}

// TestOpponentCantWinBlocksAPendingWinEveryPass confirms a "that player can't
// win the game" replacement effect suppresses the win SBA would otherwise
// finalise: the blocked draw counts as an attempted draw from an empty
// library, so the player loses instead, and a later state-based-action pass
// does not turn it back into a win.
func TestOpponentCantWinBlocksAPendingWinEveryPass(t *testing.T) {
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

	g.replacements = append(g.replacements,
		replace.EmptyLibraryWin{EffectID: "alice-laboratory-maniac", Owner: "alice"},
		replace.CantWin{EffectID: "bob-blocks-alice-win", Player: "alice"},
	)

	apply(t, g, eventlog.DrawCards, "alice", map[string]interface{}{"playerId": "alice", "amount": 1})
	apply(t, g, eventlog.DrawCards, "alice", map[string]interface{}{"playerId": "alice", "amount": 1})

	require.False(t, g.players["alice"].Won, "the opposing can't-win effect must block the win")
	require.True(t, g.players["alice"].Lost, "the blocked win leaves an attempted draw from an empty library, so the SBA makes alice lose")

	g.runStateBasedActions()
	require.False(t, g.players["alice"].Won, "the block applies on every pass, not just the first")
}
