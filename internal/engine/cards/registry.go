// Package cards holds the known-card table: a lookup from a normalised
// card name to the static record plus the effect wiring that the rest of
// the engine consults when an object referencing that card enters play,
// resolves, or triggers.
package cards

import (
	"fmt"

	"github.com/forgewright/mtgcore/internal/engine/effectir"
	"github.com/forgewright/mtgcore/internal/engine/layers"
	"github.com/forgewright/mtgcore/internal/engine/replace"
	"github.com/forgewright/mtgcore/internal/engine/trigger"
	"github.com/forgewright/mtgcore/internal/engine/zone"
)

// Def is the engine-relevant definition of one printed card: its static
// characteristics plus the hooks a game wires up when an object of this
// card is on the battlefield, cast, or resolving.
type Def struct {
	Base zone.CardRecord

	// StaticLayerEffects are continuous effects this card contributes for
	// as long as its source object satisfies Matches. These are shared
	// templates: Filter is set in the template, and the game fills in ID,
	// SourceID and Timestamp when it binds them to an object.
	StaticLayerEffects []layers.Effect

	// Replacements are replacement effects this card's object contributes
	// while on the battlefield (or appropriate zone for the effect).
	Replacements []replace.Applicable

	// TriggeredAbilities describes the matchers this card registers.
	TriggeredAbilities []trigger.Source

	// ResolutionSteps is the Effect IR program run when a spell or ability
	// with this card as its source resolves.
	ResolutionSteps []effectir.Step

	// CountersTargetSpell marks cards whose resolution removes a targeted
	// spell from the stack and sends it to its owner's graveyard (e.g.
	// Counterspell). There is no Effect IR step for this, since countering
	// acts on the stack itself rather than on a zone-object/player.
	CountersTargetSpell bool
}

// Registry is the known-card table, keyed by normalised name.
type Registry struct {
	defs map[string]Def
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: map[string]Def{}}
}

// Register adds or replaces a card definition.
func (r *Registry) Register(normalisedName string, d Def) {
	r.defs[normalisedName] = d
}

// Lookup returns the definition for a normalised card name.
func (r *Registry) Lookup(normalisedName string) (Def, bool) {
	d, ok := r.defs[normalisedName]
	return d, ok
}

// MustLookup panics if the card is unknown; used during deck/game setup
// where an unknown card name is a configuration error, not a runtime one.
func (r *Registry) MustLookup(normalisedName string) Def {
	d, ok := r.Lookup(normalisedName)
	if !ok {
		panic(fmt.Sprintf("cards: unknown card %q", normalisedName))
	}
	return d
}

// Names returns every registered card's normalised name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.defs))
	for n := range r.defs {
		out = append(out, n)
	}
	return out
}

// NewCoreRegistry returns a registry pre-populated with a handful of
// illustrative cards exercising the core mechanics: a vanilla creature, a
// lord, a counterspell, a replacement-effect creature, an ETB-trigger
// creature, and an aura.
func NewCoreRegistry() *Registry {
	r := NewRegistry()
	for name, d := range coreCards() {
		r.Register(name, d)
	}
	return r
}
