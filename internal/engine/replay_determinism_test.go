package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/forgewright/mtgcore/internal/engine/cards"
	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/stretchr/testify/require"
)

// TestTwoIndependentReplaysProduceByteIdenticalSnapshots drives the same
// intent log into two freshly constructed games (one live, one replayed from
// the store the live game wrote) and confirms their omniscient snapshots
// serialize to identical bytes: nothing in the resolution pipeline may depend
// on process-local state that isn't itself part of the log.
func TestTwoIndependentReplaysProduceByteIdenticalSnapshots(t *testing.T) {
	store := eventlog.NewMemoryStore()
	ctx := context.Background()

	live := NewGame("determinism-game", store, cards.NewCoreRegistry())
	apply(t, live, eventlog.RNGSeed, "", map[string]interface{}{"seed": 11})
	apply(t, live, eventlog.Join, "alice", map[string]interface{}{"playerId": "alice", "startingLife": 20})
	apply(t, live, eventlog.Join, "bob", map[string]interface{}{"playerId": "bob", "startingLife": 20})
	apply(t, live, eventlog.DeckImportResolved, "alice", map[string]interface{}{
		"playerId": "alice", "cardNames": []string{"Grizzly Bears", "Lord of the Pride", "Grizzly Bears"},
	})
	apply(t, live, eventlog.DeckImportResolved, "bob", map[string]interface{}{
		"playerId": "bob", "cardNames": []string{"Grizzly Bears", "Grizzly Bears"},
	})
	apply(t, live, eventlog.ShuffleLibrary, "alice", map[string]interface{}{"playerId": "alice"})
	apply(t, live, eventlog.DrawCards, "alice", map[string]interface{}{"playerId": "alice", "amount": 2})
	apply(t, live, eventlog.DrawCards, "bob", map[string]interface{}{"playerId": "bob", "amount": 1})

	firstReplay, err := Replay(ctx, "determinism-game", store, cards.NewCoreRegistry())
	require.NoError(t, err)
	secondReplay, err := Replay(ctx, "determinism-game", store, cards.NewCoreRegistry())
	require.NoError(t, err)

	liveJSON, err := json.Marshal(live.Snapshot(""))
	require.NoError(t, err)
	firstJSON, err := json.Marshal(firstReplay.Snapshot(""))
	require.NoError(t, err)
	secondJSON, err := json.Marshal(secondReplay.Snapshot(""))
	require.NoError(t, err)

	require.JSONEq(t, string(liveJSON), string(firstJSON), "a replay must match the live game it was reconstructed from")
	require.JSONEq(t, string(firstJSON), string(secondJSON), "two independent replays of the same log must agree byte for byte")
}
