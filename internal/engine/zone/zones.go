package zone

import "fmt"

// Zone is an ordered sequence of object references with a designated owner
// (per-player for library/hand/graveyard/exile/command, shared for
// battlefield/stack). Order is observable for library and stack.
type Zone struct {
	Name    Name
	Owner   *PlayerID // nil for shared zones
	Objects []ObjectID
}

// Minter mints a fresh object ID for a zone-change: leaving the
// battlefield or stack mints a fresh ID.
type Minter interface {
	Mint(discriminator string) string
}

// Zones owns every zone in a game plus the object table.
type Zones struct {
	byPlayer map[PlayerID]map[Name]*Zone
	shared   map[Name]*Zone
	objects  map[ObjectID]*Object
}

// New returns an empty Zones table for the given players.
func New(players []PlayerID) *Zones {
	z := &Zones{
		byPlayer: make(map[PlayerID]map[Name]*Zone),
		shared:   make(map[Name]*Zone),
		objects:  make(map[ObjectID]*Object),
	}
	z.shared[Battlefield] = &Zone{Name: Battlefield}
	z.shared[Stack] = &Zone{Name: Stack}
	for _, p := range players {
		id := p
		z.byPlayer[p] = map[Name]*Zone{
			Library:   {Name: Library, Owner: &id},
			Hand:      {Name: Hand, Owner: &id},
			Graveyard: {Name: Graveyard, Owner: &id},
			Exile:     {Name: Exile, Owner: &id},
			Command:   {Name: Command, Owner: &id},
		}
	}
	return z
}

// ZoneOf returns the zone struct for a (name, owner) pair. owner is ignored
// for shared zones.
func (z *Zones) ZoneOf(name Name, owner PlayerID) (*Zone, error) {
	if name.Shared() {
		return z.shared[name], nil
	}
	byName, ok := z.byPlayer[owner]
	if !ok {
		return nil, fmt.Errorf("zone: unknown player %q", owner)
	}
	zn, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("zone: unknown zone %q for player %q", name, owner)
	}
	return zn, nil
}

// Object looks up an object by ID.
func (z *Zones) Object(id ObjectID) (*Object, bool) {
	o, ok := z.objects[id]
	return o, ok
}

// AllObjects returns the full object table (for iteration by layers/SBA).
func (z *Zones) AllObjects() map[ObjectID]*Object { return z.objects }

// Register inserts a freshly-created object into the table without placing
// it in any zone ordering (caller must also call AddTop/AddBottom).
func (z *Zones) Register(o *Object) { z.objects[o.ID] = o }

// Unregister permanently removes an object (token cleanup).
func (z *Zones) Unregister(id ObjectID) { delete(z.objects, id) }

// AddTop pushes an object reference onto the top (end) of a zone.
func (z *Zones) AddTop(name Name, owner PlayerID, id ObjectID) error {
	zn, err := z.ZoneOf(name, owner)
	if err != nil {
		return err
	}
	zn.Objects = append(zn.Objects, id)
	return nil
}

// AddBottom inserts an object reference at the bottom (start) of a zone.
func (z *Zones) AddBottom(name Name, owner PlayerID, id ObjectID) error {
	zn, err := z.ZoneOf(name, owner)
	if err != nil {
		return err
	}
	zn.Objects = append([]ObjectID{id}, zn.Objects...)
	return nil
}

// Remove deletes the first occurrence of id from a zone's ordering.
func (z *Zones) Remove(name Name, owner PlayerID, id ObjectID) error {
	zn, err := z.ZoneOf(name, owner)
	if err != nil {
		return err
	}
	for i, existing := range zn.Objects {
		if existing == id {
			zn.Objects = append(zn.Objects[:i], zn.Objects[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("zone: object %q not found in %q", id, name)
}

// Iterate returns a copy of a zone's ordering.
func (z *Zones) Iterate(name Name, owner PlayerID) ([]ObjectID, error) {
	zn, err := z.ZoneOf(name, owner)
	if err != nil {
		return nil, err
	}
	out := make([]ObjectID, len(zn.Objects))
	copy(out, zn.Objects)
	return out, nil
}

// MoveOptions configures a zone move.
type MoveOptions struct {
	ToBottom      bool
	NewController *PlayerID // override controller post-move (e.g. move_zone "with new controller")
}

// Move relocates an object from its current zone to a new one, applying the
// fresh-ID-on-leaving-battlefield-or-stack policy. Tokens that
// leave the battlefield are not immediately destroyed here — that is an SBA
// concern — and they get a freshly minted ID like any other object.
//
// Commander movement is the documented exception: a commander keeps its ID
// and marker when it changes zones, to preserve "commander damage dealt by
// this exact object" bookkeeping across casts from the command zone.
func (z *Zones) Move(m Minter, id ObjectID, to Name, opts MoveOptions) (*Object, error) {
	obj, ok := z.Object(id)
	if !ok {
		return nil, fmt.Errorf("zone: object %q not found", id)
	}

	from := obj.CurrentZone
	fromOwner := obj.Owner
	if err := z.Remove(from, ownerForZone(from, obj.Owner), id); err != nil {
		return nil, err
	}

	leavingBattlefieldOrStack := from == Battlefield || from == Stack
	mintsFresh := leavingBattlefieldOrStack && !obj.IsCommander

	next := obj
	if mintsFresh {
		freshID := ObjectID(m.Mint("obj"))
		next = &Object{
			ID:            freshID,
			CardName:      obj.CardName,
			Owner:         fromOwner,
			Controller:    fromOwner,
			CurrentZone:   to,
			Counters:      Counters{},
			Attachments:   map[ObjectID]bool{},
			Base:          obj.Base,
			IsToken:       obj.IsToken,
			IsCommander:   false,
			ExileProvenance: &obj.ID,
		}
		if opts.NewController != nil {
			next.Controller = *opts.NewController
		}
		z.Unregister(obj.ID)
		z.Register(next)
	} else {
		next.CurrentZone = to
		if opts.NewController != nil {
			next.Controller = *opts.NewController
		} else if to == Battlefield || to == Stack {
			// controller resets to owner unless overridden, except while
			// already mid-resolution; callers pass NewController explicitly
			// for "gain control" effects.
			next.Controller = next.Owner
		}
		next.AttachedTo = nil
		next.Tapped = false
		next.DamageMarked = 0
		next.DamagedByDeathtouch = false
		next.SummoningSick = to == Battlefield
	}

	targetOwner := next.Owner

	if opts.ToBottom {
		if err := z.AddBottom(to, targetOwner, next.ID); err != nil {
			return nil, err
		}
	} else {
		if err := z.AddTop(to, targetOwner, next.ID); err != nil {
			return nil, err
		}
	}

	return next, nil
}

// Clone returns a deep copy of every zone and object, used to snapshot
// game state before a tick so an InconsistentError can roll back cleanly
//.
func (z *Zones) Clone() *Zones {
	clone := &Zones{
		byPlayer: make(map[PlayerID]map[Name]*Zone, len(z.byPlayer)),
		shared:   make(map[Name]*Zone, len(z.shared)),
		objects:  make(map[ObjectID]*Object, len(z.objects)),
	}
	for p, zones := range z.byPlayer {
		clone.byPlayer[p] = make(map[Name]*Zone, len(zones))
		for n, zn := range zones {
			clone.byPlayer[p][n] = zn.clone()
		}
	}
	for n, zn := range z.shared {
		clone.shared[n] = zn.clone()
	}
	for id, o := range z.objects {
		clone.objects[id] = o.Clone()
	}
	return clone
}

func (zn *Zone) clone() *Zone {
	c := &Zone{Name: zn.Name, Objects: append([]ObjectID(nil), zn.Objects...)}
	if zn.Owner != nil {
		owner := *zn.Owner
		c.Owner = &owner
	}
	return c
}

func ownerForZone(name Name, owner PlayerID) PlayerID {
	if name.Shared() {
		return ""
	}
	return owner
}
