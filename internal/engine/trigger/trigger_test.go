package trigger

import (
	"testing"

	"github.com/forgewright/mtgcore/internal/engine/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onBattlefieldAlways(zone.ObjectID) bool { return true }

func TestOfferCollectsMatchingSourceOnly(t *testing.T) {
	q := NewQueue()
	sources := []Source{
		{ID: "t1", ObjectID: "obj-1", Controller: "p1", Matches: func(ev GameEvent) bool { return ev.Kind == Dies }},
		{ID: "t2", ObjectID: "obj-2", Controller: "p1", Matches: func(ev GameEvent) bool { return ev.Kind == Draws }},
	}
	q.Offer(sources, GameEvent{Kind: Dies, Object: "obj-1"}, onBattlefieldAlways)

	collected := q.ForController("p1")
	require.Len(t, collected, 1)
	assert.Equal(t, "t1", collected[0].SourceID)
}

func TestOfferSkipsWhenInterveningIfFalse(t *testing.T) {
	q := NewQueue()
	sources := []Source{
		{ID: "t1", ObjectID: "obj-1", Controller: "p1",
			Matches:       func(ev GameEvent) bool { return true },
			InterveningIf: func() Tristate { return False }},
	}
	q.Offer(sources, GameEvent{Kind: Dies}, onBattlefieldAlways)
	assert.Empty(t, q.ForController("p1"))
}

func TestOfferCollectsWhenInterveningIfUndetermined(t *testing.T) {
	q := NewQueue()
	sources := []Source{
		{ID: "t1", ObjectID: "obj-1", Controller: "p1",
			Matches:       func(ev GameEvent) bool { return true },
			InterveningIf: func() Tristate { return Undetermined }},
	}
	q.Offer(sources, GameEvent{Kind: Dies}, onBattlefieldAlways)
	assert.Len(t, q.ForController("p1"), 1)
}

func TestOfferSkipsOffBattlefieldSourceUnlessFlagged(t *testing.T) {
	q := NewQueue()
	notOnField := func(zone.ObjectID) bool { return false }
	sources := []Source{
		{ID: "t1", ObjectID: "obj-1", Controller: "p1", Matches: func(ev GameEvent) bool { return true }},
		{ID: "t2", ObjectID: "obj-2", Controller: "p1", Matches: func(ev GameEvent) bool { return true }, OffBattlefield: true},
	}
	q.Offer(sources, GameEvent{Kind: Dies}, notOnField)
	collected := q.ForController("p1")
	require.Len(t, collected, 1)
	assert.Equal(t, "t2", collected[0].SourceID)
}

func TestNeedsOrderingDecisionOnlyWithMultiple(t *testing.T) {
	q := NewQueue()
	assert.False(t, q.NeedsOrderingDecision("p1"))

	sources := []Source{
		{ID: "t1", ObjectID: "obj-1", Controller: "p1", Matches: func(ev GameEvent) bool { return true }},
	}
	q.Offer(sources, GameEvent{Kind: Dies}, onBattlefieldAlways)
	assert.False(t, q.NeedsOrderingDecision("p1"), "single collected trigger has no choice")

	sources = append(sources, Source{ID: "t2", ObjectID: "obj-2", Controller: "p1", Matches: func(ev GameEvent) bool { return true }})
	q.Offer(sources, GameEvent{Kind: Dies}, onBattlefieldAlways)
	assert.True(t, q.NeedsOrderingDecision("p1"))
}

// Two triggers from the same controller: the one placed first (bottom)
// resolves last.
func TestBottomFirstTriggerResolvesLast(t *testing.T) {
	q := NewQueue()
	sources := []Source{
		{ID: "trig-a", ObjectID: "obj-a", Controller: "p1", Matches: func(ev GameEvent) bool { return true }},
		{ID: "trig-b", ObjectID: "obj-b", Controller: "p1", Matches: func(ev GameEvent) bool { return true }},
	}
	q.Offer(sources, GameEvent{Kind: BeginStep, StepName: "upkeep"}, onBattlefieldAlways)

	require.True(t, q.NeedsOrderingDecision("p1"))
	// Player chooses to stack trig-a first (bottom, resolves last), then trig-b.
	drained, err := q.Drain("p1", []string{"trig-a", "trig-b"})
	require.NoError(t, err)
	pushOrder := StackOrder(drained)

	require.Len(t, pushOrder, 2)
	assert.Equal(t, "trig-a", pushOrder[0].SourceID, "stacked bottom-first")
	assert.Equal(t, "trig-b", pushOrder[1].SourceID, "stacked last, resolves first")
}

func TestDrainRejectsMismatchedOrderWithoutMutatingTheQueue(t *testing.T) {
	q := NewQueue()
	sources := []Source{
		{ID: "t1", ObjectID: "obj-1", Controller: "p1", Matches: func(ev GameEvent) bool { return true }},
	}
	q.Offer(sources, GameEvent{Kind: Dies}, onBattlefieldAlways)

	_, err := q.Drain("p1", []string{"unknown-id"})
	assert.ErrorIs(t, err, ErrOrderMismatch)

	// A rejected drain must leave the queue entry intact so a corrected
	// reply can still be submitted.
	drained, err := q.Drain("p1", []string{"t1"})
	require.NoError(t, err)
	require.Len(t, drained, 1)
	assert.Equal(t, "t1", drained[0].SourceID)
}

func TestDrainRejectsLengthMismatchAndDuplicateIDs(t *testing.T) {
	q := NewQueue()
	sources := []Source{
		{ID: "t1", ObjectID: "obj-1", Controller: "p1", Matches: func(ev GameEvent) bool { return true }},
		{ID: "t2", ObjectID: "obj-2", Controller: "p1", Matches: func(ev GameEvent) bool { return true }},
	}
	q.Offer(sources, GameEvent{Kind: Dies}, onBattlefieldAlways)

	_, err := q.Drain("p1", []string{"t1"})
	assert.ErrorIs(t, err, ErrOrderMismatch, "too few entries")

	_, err = q.Drain("p1", []string{"t1", "t1"})
	assert.ErrorIs(t, err, ErrOrderMismatch, "duplicate entries must not smuggle past the length check")
}

func TestAPNAPOrderStartsWithActivePlayer(t *testing.T) {
	all := []zone.PlayerID{"p1", "p2", "p3"}
	pending := map[zone.PlayerID]bool{"p1": true, "p3": true}

	order := APNAPOrder("p2", all, pending)
	assert.Equal(t, []zone.PlayerID{"p3", "p1"}, order)
}

func TestResolutionCheckFizzlesOnFalse(t *testing.T) {
	assert.False(t, ResolutionCheck(func() Tristate { return False }))
	assert.True(t, ResolutionCheck(func() Tristate { return True }))
	assert.True(t, ResolutionCheck(func() Tristate { return Undetermined }))
	assert.True(t, ResolutionCheck(nil))
}
