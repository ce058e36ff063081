package layers

import (
	"testing"

	"github.com/forgewright/mtgcore/internal/engine/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func merfolk(id zone.ObjectID, controller zone.PlayerID) *zone.Object {
	o := zone.NewObject(id, zone.CardRecord{
		Name: string(id), Types: []string{"Creature"}, Subtypes: []string{"Merfolk"},
		BasePower: 1, BaseToughness: 1,
	}, controller, zone.Battlefield)
	o.Counters = zone.Counters{}
	return o
}

// A lord pumps other Merfolk but not itself.
func TestLordEffectExcludesSelf(t *testing.T) {
	a := merfolk("merfolk-a", "p1")
	b := merfolk("merfolk-b", "p1")
	lord := merfolk("lord", "p1")

	objects := map[zone.ObjectID]*zone.Object{a.ID: a, b.ID: b, lord.ID: lord}

	lordEffect := Effect{
		ID:        "fx-lord",
		SourceID:  lord.ID,
		Layer:     Layer7cModifyPT,
		Timestamp: 1,
		Filter:    And(BySubtype("Merfolk"), OtherThanSource()),
		Apply:     PumpPT(1, 1),
	}

	result := Compute([]Effect{lordEffect}, objects)

	assert.Equal(t, 2, result[a.ID].Power)
	assert.Equal(t, 2, result[a.ID].Toughness)
	assert.Equal(t, 2, result[b.ID].Power)
	assert.Equal(t, 2, result[b.ID].Toughness)
	assert.Equal(t, 1, result[lord.ID].Power, "lord excludes itself via other-than-source")
	assert.Equal(t, 1, result[lord.ID].Toughness)
}

func TestRemovingLordSourceRestoresBaseWithinOneTick(t *testing.T) {
	a := merfolk("merfolk-a", "p1")
	objects := map[zone.ObjectID]*zone.Object{a.ID: a}

	// With the lord gone, Compute receives no effects at all.
	result := Compute(nil, objects)
	assert.Equal(t, 1, result[a.ID].Power)
	assert.Equal(t, 1, result[a.ID].Toughness)
}

func TestLayersApplyInOrderRegardlessOfCreationOrder(t *testing.T) {
	a := merfolk("a", "p1")
	objects := map[zone.ObjectID]*zone.Object{a.ID: a}

	setBase := Effect{ID: "set", Layer: Layer7bSetBasePT, Timestamp: 5, Apply: SetBasePT(4, 4)}
	pump := Effect{ID: "pump", Layer: Layer7cModifyPT, Timestamp: 1, Apply: PumpPT(1, 0)}

	// Even though pump has an earlier timestamp, layer order (7b before 7c)
	// decides application order, not creation order.
	result := Compute([]Effect{pump, setBase}, objects)
	assert.Equal(t, 5, result[a.ID].Power)
	assert.Equal(t, 4, result[a.ID].Toughness)
}

func TestAbilityRemovalPrecedence(t *testing.T) {
	a := merfolk("a", "p1")
	objects := map[zone.ObjectID]*zone.Object{a.ID: a}

	remove := Effect{ID: "remove", Layer: Layer6Ability, Timestamp: 1, RemovesAbility: "flying", Apply: RemoveAbility("flying")}
	grant := Effect{ID: "grant", Layer: Layer6Ability, Timestamp: 2, GrantsAbility: "flying", Apply: GrantAbility("flying")}

	result := Compute([]Effect{remove, grant}, objects)
	assert.False(t, result[a.ID].GrantedAbilities["flying"], "a later grant of a removed ability must fail")
}

func TestDependencyCycleFallsBackToTimestampOrder(t *testing.T) {
	a := merfolk("a", "p1")
	objects := map[zone.ObjectID]*zone.Object{a.ID: a}

	e1 := Effect{ID: "e1", Layer: Layer7cModifyPT, Timestamp: 2, DependsOn: []string{"e2"}, Apply: PumpPT(1, 0)}
	e2 := Effect{ID: "e2", Layer: Layer7cModifyPT, Timestamp: 1, DependsOn: []string{"e1"}, Apply: PumpPT(0, 1)}

	require.NotPanics(t, func() {
		result := Compute([]Effect{e1, e2}, objects)
		// order falls back to timestamp (e2 then e1); both still apply once.
		assert.Equal(t, 2, result[a.ID].Power)
		assert.Equal(t, 2, result[a.ID].Toughness)
	})
}

func TestCountersApplyAtLayer7d(t *testing.T) {
	a := merfolk("a", "p1")
	a.Counters.Add("+1/+1", 2)
	objects := map[zone.ObjectID]*zone.Object{a.ID: a}

	countersEffect := Effect{ID: "counters", Layer: Layer7dCountersPT, Timestamp: 1, Apply: ApplyCounters()}
	result := Compute([]Effect{countersEffect}, objects)
	assert.Equal(t, 3, result[a.ID].Power)
	assert.Equal(t, 3, result[a.ID].Toughness)
}
