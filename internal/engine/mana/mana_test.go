package mana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolEmptiesCompletely(t *testing.T) {
	p := NewPool()
	p.Add(Red, 3)
	p.AddSpecial("snow", 1)
	require.Equal(t, 4, p.Total())

	p.Empty()
	assert.Equal(t, 0, p.Total())
	assert.Equal(t, 0, p.Amount(Red))
}

func TestAddFromMergesColorsAndSpecialSources(t *testing.T) {
	p := NewPool()
	p.Add(Green, 1)

	produced := NewPool()
	produced.Add(Red, 2)
	produced.AddSpecial("snow", 1)

	p.AddFrom(produced)
	assert.Equal(t, 1, p.Amount(Green))
	assert.Equal(t, 2, p.Amount(Red))
	assert.Equal(t, 4, p.Total())
}

func TestAddFromNilIsANoOp(t *testing.T) {
	p := NewPool()
	p.Add(Blue, 1)
	p.AddFrom(nil)
	assert.Equal(t, 1, p.Total())
}

func TestValidateCoversColoredAndGeneric(t *testing.T) {
	cost := Cost{Colored: map[Color]int{Red: 1}, Generic: 2}
	payment := Payment{FromPool: map[Color]int{Red: 1, Colorless: 2}}

	spent, err := Validate(cost, 0, payment)
	require.NoError(t, err)
	assert.Equal(t, 1, spent.ByColor[Red])
	assert.Equal(t, 2, spent.ByColor[Colorless])
}

func TestValidateRejectsInsufficientColored(t *testing.T) {
	cost := Cost{Colored: map[Color]int{Blue: 2}}
	payment := Payment{FromPool: map[Color]int{Blue: 1}}

	_, err := Validate(cost, 0, payment)
	assert.Error(t, err)
}

func TestValidateHonorsXValue(t *testing.T) {
	cost := Cost{X: 1, Generic: 1}
	payment := Payment{FromPool: map[Color]int{Colorless: 4}, XValue: 3}

	spent, err := Validate(cost, 3, payment)
	require.NoError(t, err)
	assert.Equal(t, 4, spent.ByColor[Colorless])
}

func TestValidateRejectsMismatchedXPayment(t *testing.T) {
	cost := Cost{X: 1}
	payment := Payment{FromPool: map[Color]int{Colorless: 2}, XValue: 2}

	_, err := Validate(cost, 3, payment)
	assert.Error(t, err)
}

func TestValidatePhyrexianAllowsLifePayment(t *testing.T) {
	cost := Cost{Phyrexian: map[Color]int{Black: 1}}
	payment := Payment{LifePaid: 2}

	spent, err := Validate(cost, 0, payment)
	require.NoError(t, err)
	assert.Equal(t, 0, spent.ByColor[Black])
}

func TestValidatePhyrexianPrefersManaOverLife(t *testing.T) {
	cost := Cost{Phyrexian: map[Color]int{Black: 1}}
	payment := Payment{FromPool: map[Color]int{Black: 1}}

	spent, err := Validate(cost, 0, payment)
	require.NoError(t, err)
	assert.Equal(t, 1, spent.ByColor[Black])
}
