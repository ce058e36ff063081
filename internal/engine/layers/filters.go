package layers

// This file is the small filter algebra used by continuous effects: type
// inclusion/exclusion, controller relation, color inclusion, subtype
// inclusion, "other than source", "self only", "must be commander", and
// "with-ability" (which must consult the in-progress effective ability set,
// i.e. a layer-6 dependency).

// ControllerRelation selects objects relative to the effect's source
// controller.
type ControllerRelation string

const (
	RelationSelf      ControllerRelation = "self"      // controller == source controller, object == source
	RelationYou       ControllerRelation = "you"       // controller == source controller
	RelationOpponents ControllerRelation = "opponents"
	RelationAny       ControllerRelation = "any"
)

// ByController builds a Filter matching the given controller relation.
func ByController(rel ControllerRelation) Filter {
	return func(ctx FilterContext) bool {
		switch rel {
		case RelationSelf:
			return ctx.Object.ID == ctx.SourceID
		case RelationYou:
			return ctx.Object.Controller == ctx.SourceController
		case RelationOpponents:
			return ctx.Object.Controller != ctx.SourceController
		default:
			return true
		}
	}
}

// ByType matches objects whose effective type set includes the given type.
func ByType(t string) Filter {
	return func(ctx FilterContext) bool { return containsString(ctx.Effective.Types, t) }
}

// ExcludeType matches objects whose effective type set does NOT include t.
func ExcludeType(t string) Filter {
	return func(ctx FilterContext) bool { return !containsString(ctx.Effective.Types, t) }
}

// BySubtype matches objects whose effective subtype set includes t.
func BySubtype(t string) Filter {
	return func(ctx FilterContext) bool { return containsString(ctx.Effective.Subtypes, t) }
}

// ByColor matches objects whose effective color set includes c.
func ByColor(c string) Filter {
	return func(ctx FilterContext) bool { return containsString(ctx.Effective.Colors, c) }
}

// OtherThanSource excludes the effect's own source object.
func OtherThanSource() Filter {
	return func(ctx FilterContext) bool { return ctx.Object.ID != ctx.SourceID }
}

// SelfOnly matches only the effect's own source object.
func SelfOnly() Filter {
	return func(ctx FilterContext) bool { return ctx.Object.ID == ctx.SourceID }
}

// EnchantedOrEquippedBySource matches the object the effect's source (an
// Aura or Equipment) is currently attached to.
func EnchantedOrEquippedBySource() Filter {
	return func(ctx FilterContext) bool {
		return ctx.Object.Attachments[ctx.SourceID]
	}
}

// MustBeCommander matches only commander-marked objects.
func MustBeCommander() Filter {
	return func(ctx FilterContext) bool { return ctx.Object.IsCommander }
}

// WithAbility matches objects whose in-progress effective ability set
// contains the named ability — this is the one filter predicate that
// depends on layer-6 effects that have already applied earlier in the same
// Compute pass, which is why it reads ctx.Effective rather than the base
// card record.
func WithAbility(name string) Filter {
	return func(ctx FilterContext) bool {
		return ctx.Effective.GrantedAbilities[name] || ctx.Effective.Keywords[name]
	}
}

// And combines filters, all of which must match.
func And(filters ...Filter) Filter {
	return func(ctx FilterContext) bool {
		for _, f := range filters {
			if f != nil && !f(ctx) {
				return false
			}
		}
		return true
	}
}

// Or matches if any filter matches.
func Or(filters ...Filter) Filter {
	return func(ctx FilterContext) bool {
		for _, f := range filters {
			if f != nil && f(ctx) {
				return true
			}
		}
		return false
	}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
