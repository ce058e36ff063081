package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMinter struct{ n int }

func (f *fakeMinter) Mint(discriminator string) string {
	f.n++
	return discriminator + "-fresh"
}

func TestAddTopIterateRemove(t *testing.T) {
	z := New([]PlayerID{"p1"})
	require.NoError(t, z.AddTop(Hand, "p1", "obj-1"))
	require.NoError(t, z.AddTop(Hand, "p1", "obj-2"))

	ids, err := z.Iterate(Hand, "p1")
	require.NoError(t, err)
	assert.Equal(t, []ObjectID{"obj-1", "obj-2"}, ids)

	require.NoError(t, z.Remove(Hand, "p1", "obj-1"))
	ids, _ = z.Iterate(Hand, "p1")
	assert.Equal(t, []ObjectID{"obj-2"}, ids)
}

func TestMoveFromBattlefieldMintsFreshID(t *testing.T) {
	z := New([]PlayerID{"p1"})
	obj := NewObject("obj-1", CardRecord{Name: "Bear"}, "p1", Battlefield)
	z.Register(obj)
	require.NoError(t, z.AddTop(Battlefield, "p1", obj.ID))

	m := &fakeMinter{}
	moved, err := z.Move(m, obj.ID, Hand, MoveOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, obj.ID, moved.ID)
	assert.Equal(t, Hand, moved.CurrentZone)

	_, stillThere := z.Object(obj.ID)
	assert.False(t, stillThere)
}

func TestMoveCommanderPreservesID(t *testing.T) {
	z := New([]PlayerID{"p1"})
	obj := NewObject("cmdr-1", CardRecord{Name: "General"}, "p1", Battlefield)
	obj.IsCommander = true
	z.Register(obj)
	require.NoError(t, z.AddTop(Battlefield, "p1", obj.ID))

	m := &fakeMinter{}
	moved, err := z.Move(m, obj.ID, Command, MoveOptions{})
	require.NoError(t, err)
	assert.Equal(t, obj.ID, moved.ID)
}

func TestMoveWithinNonBattlefieldPreservesID(t *testing.T) {
	z := New([]PlayerID{"p1"})
	obj := NewObject("obj-1", CardRecord{Name: "Land"}, "p1", Hand)
	z.Register(obj)
	require.NoError(t, z.AddTop(Hand, "p1", obj.ID))

	m := &fakeMinter{}
	moved, err := z.Move(m, obj.ID, Graveyard, MoveOptions{})
	require.NoError(t, err)
	assert.Equal(t, obj.ID, moved.ID)
}

func TestCommanderDamageIsMonotonic(t *testing.T) {
	p := NewPlayer("p1", 40)
	first := p.RecordCommanderDamage("cmdr-1", 5)
	second := p.RecordCommanderDamage("cmdr-1", 3)
	assert.Equal(t, 5, first)
	assert.Equal(t, 8, second)
	assert.Panics(t, func() { p.RecordCommanderDamage("cmdr-1", -1) })
}

func TestCountersNeverGoNegative(t *testing.T) {
	c := Counters{}
	c.Add("+1/+1", 2)
	c.Add("+1/+1", -5)
	assert.Equal(t, 0, c["+1/+1"])
}
