package engine

import (
	"context"
	"testing"

	"github.com/forgewright/mtgcore/internal/engine/cards"
	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/forgewright/mtgcore/internal/engine/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayReconstructsIdenticalVisibleState(t *testing.T) {
	store := eventlog.NewMemoryStore()
	registry := cards.NewCoreRegistry()
	ctx := context.Background()

	live := NewGame("replay-game", store, registry)
	apply(t, live, eventlog.RNGSeed, "", map[string]interface{}{"seed": 7})
	apply(t, live, eventlog.Join, "alice", map[string]interface{}{"playerId": "alice"})
	apply(t, live, eventlog.Join, "bob", map[string]interface{}{"playerId": "bob"})
	apply(t, live, eventlog.DeckImportResolved, "alice", map[string]interface{}{
		"playerId": "alice", "cardNames": []string{"Grizzly Bears", "Grizzly Bears"},
	})
	apply(t, live, eventlog.ShuffleLibrary, "alice", map[string]interface{}{"playerId": "alice"})
	apply(t, live, eventlog.DrawCards, "alice", map[string]interface{}{"playerId": "alice", "amount": 2})

	replayed, err := Replay(ctx, "replay-game", store, registry)
	require.NoError(t, err)

	assert.Equal(t, live.clock.Seq(), replayed.clock.Seq())

	liveHand, err := live.zones.Iterate(zone.Hand, "alice")
	require.NoError(t, err)
	replayedHand, err := replayed.zones.Iterate(zone.Hand, "alice")
	require.NoError(t, err)
	assert.Equal(t, liveHand, replayedHand)
}

func TestReplayOfEmptyLogYieldsFreshGame(t *testing.T) {
	store := eventlog.NewMemoryStore()
	registry := cards.NewCoreRegistry()

	g, err := Replay(context.Background(), "never-played", store, registry)
	require.NoError(t, err)
	assert.Equal(t, int64(0), g.clock.Seq())
}
