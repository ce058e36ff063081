package engine

import (
	"testing"

	"github.com/forgewright/mtgcore/internal/engine/cards"
	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/forgewright/mtgcore/internal/engine/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionApplierAppliesIntentAndReturnsSnapshot(t *testing.T) {
	g := NewGame("adapter-game", eventlog.NewMemoryStore(), cards.NewCoreRegistry())
	a := NewSessionApplier(g)

	snap, err := a.Apply(eventlog.Intent{
		Type:    eventlog.Join,
		Payload: mustJSON(t, map[string]interface{}{"playerId": "alice"}),
	})
	require.NoError(t, err)

	typed, ok := snap.(*Snapshot)
	require.True(t, ok)
	assert.Contains(t, typed.Players, zone.PlayerID("alice"))
}

func TestSessionApplierViewScopesToRequestedPlayer(t *testing.T) {
	g := NewGame("adapter-view-game", eventlog.NewMemoryStore(), cards.NewCoreRegistry())
	a := NewSessionApplier(g)

	_, err := a.Apply(eventlog.Intent{
		Type:    eventlog.Join,
		Payload: mustJSON(t, map[string]interface{}{"playerId": "alice"}),
	})
	require.NoError(t, err)

	view := a.View("alice")
	typed, ok := view.(*Snapshot)
	require.True(t, ok)
	assert.Contains(t, typed.Players, zone.PlayerID("alice"))
}
