// Package layers computes the effective characteristics of every
// on-battlefield object from the current multiset of continuous effects,
// with dependency-correct ordering and timestamp tie-breaks.
package layers

import (
	"sort"

	"github.com/forgewright/mtgcore/internal/engine/zone"
)

// Layer is one of the rule-defined slots an effect applies in.
type Layer string

const (
	Layer1Copy        Layer = "1"
	Layer2Control     Layer = "2"
	Layer3Text        Layer = "3"
	Layer4Type        Layer = "4"
	Layer5Color       Layer = "5"
	Layer6Ability     Layer = "6"
	Layer7aCharDefPT  Layer = "7a"
	Layer7bSetBasePT  Layer = "7b"
	Layer7cModifyPT   Layer = "7c"
	Layer7dCountersPT Layer = "7d"
	Layer7eSwitchPT   Layer = "7e"
)

// order is the fixed application order across layers.
var order = []Layer{
	Layer1Copy, Layer2Control, Layer3Text, Layer4Type, Layer5Color, Layer6Ability,
	Layer7aCharDefPT, Layer7bSetBasePT, Layer7cModifyPT, Layer7dCountersPT, Layer7eSwitchPT,
}

// Characteristics is the effective view of one object after all layers have
// applied.
type Characteristics struct {
	Power             int
	Toughness         int
	Types             []string
	Subtypes          []string
	Colors            []string
	Controller        zone.PlayerID
	Keywords          map[string]bool
	GrantedAbilities  map[string]bool
	RemovedAbilities  map[string]bool
}

func baseCharacteristics(o *zone.Object) *Characteristics {
	c := &Characteristics{
		Power:            o.Base.BasePower,
		Toughness:        o.Base.BaseToughness,
		Types:            append([]string(nil), o.Base.Types...),
		Subtypes:         append([]string(nil), o.Base.Subtypes...),
		Colors:           colorStrings(o.Base.Colors),
		Controller:       o.Controller,
		Keywords:         boolSet(o.Base.Keywords),
		GrantedAbilities: map[string]bool{},
		RemovedAbilities: map[string]bool{},
	}
	return c
}

func colorStrings(cs []zone.Color) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

func boolSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// FilterContext is what a Filter predicate is evaluated against.
type FilterContext struct {
	Object           *zone.Object
	Effective        *Characteristics // the in-progress effective characteristics of Object
	SourceID         zone.ObjectID
	SourceController zone.PlayerID
	SourceIsType     func(t string) bool // does the source itself have type t (for "other Merfolk" filters)
}

// Filter decides whether an effect applies to a given object.
type Filter func(ctx FilterContext) bool

// Effect is one continuous effect record in the layer system.
type Effect struct {
	ID         string
	SourceID   zone.ObjectID
	Layer      Layer
	Timestamp  int64
	DependsOn  []string // other effect IDs that must apply first, within the same layer
	Filter     Filter
	Apply      func(ctx FilterContext)
	RemovesAbility string // set when this is a layer-6 removal, for ability-removal precedence
	GrantsAbility  string // set when this is a layer-6 grant
}

// Compute applies every effect in layers.order, timestamp order within a
// layer (dependency order first, falling back to timestamp on a cycle), and
// returns the effective Characteristics for every object passed in.
func Compute(effects []Effect, objects map[zone.ObjectID]*zone.Object) map[zone.ObjectID]*Characteristics {
	result := make(map[zone.ObjectID]*Characteristics, len(objects))
	for id, o := range objects {
		result[id] = baseCharacteristics(o)
	}

	byLayer := make(map[Layer][]Effect)
	for _, e := range effects {
		byLayer[e.Layer] = append(byLayer[e.Layer], e)
	}

	removedAbility := make(map[zone.ObjectID]map[string]bool)

	for _, layer := range order {
		ordered := sortLayer(byLayer[layer])
		for _, e := range ordered {
			for id, o := range objects {
				eff := result[id]
				ctx := FilterContext{
					Object:           o,
					Effective:        eff,
					SourceID:         e.SourceID,
					SourceController: sourceController(objects, e.SourceID),
					SourceIsType:     func(t string) bool { return hasString(result[e.SourceID], t) },
				}
				if e.Filter != nil && !e.Filter(ctx) {
					continue
				}
				if layer == Layer6Ability && e.GrantsAbility != "" {
					if removedAbility[id] != nil && removedAbility[id][e.GrantsAbility] {
						continue // ability-removal precedence
					}
				}
				if e.Apply != nil {
					e.Apply(ctx)
				}
				if layer == Layer6Ability && e.RemovesAbility != "" {
					if removedAbility[id] == nil {
						removedAbility[id] = map[string]bool{}
					}
					removedAbility[id][e.RemovesAbility] = true
				}
			}
		}
	}

	return result
}

func hasString(c *Characteristics, s string) bool {
	if c == nil {
		return false
	}
	for _, t := range c.Types {
		if t == s {
			return true
		}
	}
	for _, t := range c.Subtypes {
		if t == s {
			return true
		}
	}
	return false
}

func sourceController(objects map[zone.ObjectID]*zone.Object, id zone.ObjectID) zone.PlayerID {
	if o, ok := objects[id]; ok {
		return o.Controller
	}
	return ""
}

// sortLayer orders a single layer's effects by dependency then timestamp,
// falling back to pure timestamp order if a dependency cycle is detected
//.
func sortLayer(effects []Effect) []Effect {
	byID := make(map[string]Effect, len(effects))
	for _, e := range effects {
		byID[e.ID] = e
	}

	sorted := append([]Effect(nil), effects...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	if !hasDependencies(sorted) {
		return sorted
	}

	visited := make(map[string]int) // 0 = unvisited, 1 = in progress, 2 = done
	var out []Effect
	var cyclic bool

	var visit func(id string)
	visit = func(id string) {
		if cyclic {
			return
		}
		switch visited[id] {
		case 2:
			return
		case 1:
			cyclic = true
			return
		}
		visited[id] = 1
		e, ok := byID[id]
		if !ok {
			return
		}
		for _, dep := range e.DependsOn {
			visit(dep)
			if cyclic {
				return
			}
		}
		visited[id] = 2
		out = append(out, e)
	}

	for _, e := range sorted {
		visit(e.ID)
		if cyclic {
			break
		}
	}

	if cyclic {
		return sorted // fall back to timestamp order on a cycle
	}
	return out
}

func hasDependencies(effects []Effect) bool {
	for _, e := range effects {
		if len(e.DependsOn) > 0 {
			return true
		}
	}
	return false
}
