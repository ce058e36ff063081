package cards

import (
	"github.com/forgewright/mtgcore/internal/engine/effectir"
	"github.com/forgewright/mtgcore/internal/engine/layers"
	"github.com/forgewright/mtgcore/internal/engine/mana"
	"github.com/forgewright/mtgcore/internal/engine/replace"
	"github.com/forgewright/mtgcore/internal/engine/trigger"
	"github.com/forgewright/mtgcore/internal/engine/zone"
)

// coreCards returns the small illustrative card set used to exercise every
// mechanic the core engine needs to demonstrate: a vanilla creature, a lord
//, a counterspell, a replacement-effect creature, an
// ETB-trigger creature, and an aura.
func coreCards() map[string]Def {
	return map[string]Def{
		"grizzly bears": {
			Base: zone.CardRecord{
				Name:          "Grizzly Bears",
				TypeLine:      "Creature — Bear",
				Types:         []string{"Creature"},
				Subtypes:      []string{"Bear"},
				ManaCostText:  "{1}{G}",
				BasePower:     2,
				BaseToughness: 2,
				Colors:        []zone.Color{mana.Green},
			},
		},

		"lord of the pride": {
			Base: zone.CardRecord{
				Name:          "Lord of the Pride",
				TypeLine:      "Creature — Cat",
				Types:         []string{"Creature"},
				Subtypes:      []string{"Cat"},
				ManaCostText:  "{2}{W}",
				BasePower:     2,
				BaseToughness: 2,
				Colors:        []zone.Color{mana.White},
			},
			// Other Cats you control get +1/+1; the lord excludes itself
			// via OtherThanSource.
			StaticLayerEffects: []layers.Effect{
				{
					Layer: layers.Layer7cModifyPT,
					Filter: layers.And(
						layers.BySubtype("Cat"),
						layers.ByController(layers.RelationYou),
						layers.OtherThanSource(),
					),
					Apply: layers.PumpPT(1, 1),
				},
			},
		},

		"counterspell": {
			// Countering a spell acts on the stack itself rather than a
			// zone or object, so it has no Effect IR representation; the
			// resolution path removes the targeted item directly instead
			// of running ResolutionSteps.
			Base: zone.CardRecord{
				Name:         "Counterspell",
				TypeLine:     "Instant",
				Types:        []string{"Instant"},
				ManaCostText: "{U}{U}",
				Colors:       []zone.Color{mana.Blue},
			},
			CountersTargetSpell: true,
		},

		"spined thopter": {
			Base: zone.CardRecord{
				Name:          "Spined Thopter",
				TypeLine:      "Artifact Creature — Thopter",
				Types:         []string{"Artifact", "Creature"},
				Subtypes:      []string{"Thopter"},
				ManaCostText:  "{4}",
				BasePower:     1,
				BaseToughness: 1,
				Keywords:      []string{"flying"},
			},
			// Spined Thopter enters tapped.
			Replacements: []replace.Applicable{
				replace.EntersTapped{EffectID: "spined-thopter-enters-tapped"},
			},
		},

		"eager cadet": {
			Base: zone.CardRecord{
				Name:          "Eager Cadet",
				TypeLine:      "Creature — Human Soldier",
				Types:         []string{"Creature"},
				Subtypes:      []string{"Human", "Soldier"},
				ManaCostText:  "{1}{W}",
				BasePower:     1,
				BaseToughness: 1,
			},
			// When Eager Cadet enters the battlefield, draw a card.
			TriggeredAbilities: []trigger.Source{
				{
					ID:      "eager-cadet-etb-draw",
					Matches: func(ev trigger.GameEvent) bool { return ev.Kind == trigger.EnterBattlefield },
				},
			},
			ResolutionSteps: []effectir.Step{
				effectir.StepDraw{Who: effectir.SelectorYou, Amount: 1},
			},
		},

		"rancor": {
			Base: zone.CardRecord{
				Name:         "Rancor",
				TypeLine:     "Enchantment — Aura",
				Types:        []string{"Enchantment"},
				Subtypes:     []string{"Aura"},
				ManaCostText: "{G}",
			},
			StaticLayerEffects: []layers.Effect{
				{Layer: layers.Layer7cModifyPT, Filter: layers.EnchantedOrEquippedBySource(), Apply: layers.PumpPT(2, 0)},
				{Layer: layers.Layer6Ability, GrantsAbility: "trample", Filter: layers.EnchantedOrEquippedBySource(), Apply: layers.GrantAbility("trample")},
			},
		},
	}
}
