package replace

import (
	"testing"

	"github.com/forgewright/mtgcore/internal/engine/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Empty-library win: the replacement pipeline only rewrites the draw into a
// win. Blocking that win with an opponent's "can't win" effect, and the
// resulting empty-draw loss, happen in the engine's state-based-action pass.
func TestEmptyLibraryWinReplacesDraw(t *testing.T) {
	p1 := zone.PlayerID("p1")
	win := EmptyLibraryWin{EffectID: "fx-win", Owner: p1}
	pipeline := New([]Applicable{win}, nil)

	ev := Event{Kind: CardsAreDrawn, AffectedPlayer: p1, LibraryEmpty: true}
	result, used := pipeline.Run(ev)

	assert.True(t, result.ReplacedWin)
	assert.Equal(t, []string{"fx-win"}, used)
}

func TestBlockedWhenCantWinEffectOmitsTheWinCandidate(t *testing.T) {
	// With no EmptyLibraryWin among the candidates, an empty-library draw
	// passes through the pipeline unreplaced.
	pipeline := New(nil, nil)
	ev := Event{Kind: CardsAreDrawn, AffectedPlayer: "p1", LibraryEmpty: true}
	result, used := pipeline.Run(ev)

	assert.False(t, result.ReplacedWin)
	assert.Empty(t, used)
}

func TestReplacementAppliesAtMostOncePerOccurrence(t *testing.T) {
	tapped := EntersTapped{EffectID: "fx-tap", Matcher: func(zone.ObjectID) bool { return true }}
	pipeline := New([]Applicable{tapped}, nil)

	ev := Event{Kind: EntersBattlefield, Object: "obj-1"}
	result, used := pipeline.Run(ev)

	require.True(t, result.EntersTapped)
	assert.Equal(t, []string{"fx-tap"}, used, "must be consumed exactly once, not loop forever")
}

func TestMultipleEntersTappedEffectsUnionToTapped(t *testing.T) {
	a := EntersTapped{EffectID: "fx-a", Matcher: func(zone.ObjectID) bool { return true }}
	b := EntersTapped{EffectID: "fx-b", Matcher: func(zone.ObjectID) bool { return true }}
	pipeline := New([]Applicable{a, b}, nil)

	ev := Event{Kind: EntersBattlefield, Object: "obj-1"}
	result, used := pipeline.Run(ev)

	assert.True(t, result.EntersTapped)
	assert.Len(t, used, 2, "both applicable effects are used up even though the union is still just tapped")
}

func TestAmbiguousAffectedPlayerAsksChoose(t *testing.T) {
	a := EntersWithCounters{EffectID: "fx-a", Name: "+1/+1", Count: 1, Matcher: func(zone.ObjectID) bool { return true }}
	b := EntersWithCounters{EffectID: "fx-b", Name: "+1/+1", Count: 1, Matcher: func(zone.ObjectID) bool { return true }}

	var askedWith []Applicable
	choose := func(candidates []Applicable, ev Event) string {
		askedWith = candidates
		return candidates[1].ID()
	}
	pipeline := New([]Applicable{a, b}, choose)

	ev := Event{Kind: EntersBattlefield, Object: "obj-1"}
	result, _ := pipeline.Run(ev)

	assert.Len(t, askedWith, 2)
	assert.Equal(t, 1, result.EnterCounters["+1/+1"], "only one +1/+1 effect matches (Name already set after first apply)")
}

func TestCantLoseSuppressesLoss(t *testing.T) {
	cantLose := CantLose{EffectID: "fx-angel", Player: "p1"}
	pipeline := New([]Applicable{cantLose}, nil)

	result, _ := pipeline.Run(Event{Kind: PlayerLoses, AffectedPlayer: "p1"})
	assert.True(t, result.ReplacedNoLose)
}

func TestDamagePreventionConsumesShieldAmount(t *testing.T) {
	shield := DamagePrevention{EffectID: "fx-shield", Amount: 2, Matcher: func(ev Event) bool { return true }}
	pipeline := New([]Applicable{shield}, nil)

	result, _ := pipeline.Run(Event{Kind: DamageIsDealt, Amount: 5})
	assert.Equal(t, 3, result.Amount)
	assert.True(t, result.Prevented)
}
