package layers

import "github.com/forgewright/mtgcore/internal/engine/zone"

// This file provides ready-made Apply functions for the common continuous-
// effect shapes: set-P/T, pump-P/T, grant-ability, remove-ability, add-type,
// add-land-type, control-change.

// PumpPT returns an Apply function for a layer-7c P/T modification.
func PumpPT(power, toughness int) func(ctx FilterContext) {
	return func(ctx FilterContext) {
		ctx.Effective.Power += power
		ctx.Effective.Toughness += toughness
	}
}

// SetBasePT returns an Apply function for a layer-7b base P/T set.
func SetBasePT(power, toughness int) func(ctx FilterContext) {
	return func(ctx FilterContext) {
		ctx.Effective.Power = power
		ctx.Effective.Toughness = toughness
	}
}

// SwitchPT returns a layer-7e power/toughness swap.
func SwitchPT() func(ctx FilterContext) {
	return func(ctx FilterContext) {
		ctx.Effective.Power, ctx.Effective.Toughness = ctx.Effective.Toughness, ctx.Effective.Power
	}
}

// GrantAbility returns a layer-6 Apply function granting a named ability.
func GrantAbility(name string) func(ctx FilterContext) {
	return func(ctx FilterContext) { ctx.Effective.GrantedAbilities[name] = true }
}

// RemoveAbility returns a layer-6 Apply function removing a named ability.
func RemoveAbility(name string) func(ctx FilterContext) {
	return func(ctx FilterContext) {
		delete(ctx.Effective.GrantedAbilities, name)
		delete(ctx.Effective.Keywords, name)
		ctx.Effective.RemovedAbilities[name] = true
	}
}

// AddType returns a layer-4 Apply function adding a card type.
func AddType(t string) func(ctx FilterContext) {
	return func(ctx FilterContext) {
		if !containsString(ctx.Effective.Types, t) {
			ctx.Effective.Types = append(ctx.Effective.Types, t)
		}
	}
}

// AddLandType returns a layer-4 Apply function adding a land subtype.
func AddLandType(t string) func(ctx FilterContext) {
	return func(ctx FilterContext) {
		if !containsString(ctx.Effective.Subtypes, t) {
			ctx.Effective.Subtypes = append(ctx.Effective.Subtypes, t)
		}
	}
}

// ChangeControl returns a layer-2 Apply function changing the controller to
// a fixed player, captured by the caller at effect-creation time.
func ChangeControl(newController zone.PlayerID) func(ctx FilterContext) {
	return func(ctx FilterContext) { ctx.Effective.Controller = newController }
}

// ApplyCounters returns a layer-7d Apply function that sums +1/+1 and -1/-1
// counters on the object into the running P/T total. Counters are not
// annihilated here; pairwise annihilation is a state-based action.
func ApplyCounters() func(ctx FilterContext) {
	return func(ctx FilterContext) {
		ctx.Effective.Power += ctx.Object.Counters["+1/+1"]
		ctx.Effective.Toughness += ctx.Object.Counters["+1/+1"]
		ctx.Effective.Power -= ctx.Object.Counters["-1/-1"]
		ctx.Effective.Toughness -= ctx.Object.Counters["-1/-1"]
	}
}
