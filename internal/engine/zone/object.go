package zone

// Object is a concrete instance of a card-or-token in some zone.
type Object struct {
	ID             ObjectID
	CardName       string // normalised key into the card registry; "" for tokens without a backing card
	Owner          PlayerID
	Controller     PlayerID
	CurrentZone    Name
	Tapped         bool
	SummoningSick  bool
	Counters       Counters
	AttachedTo     *ObjectID           // for Auras/Equipment: what this is attached to
	Attachments    map[ObjectID]bool   // reverse index: things attached to this object
	DamageMarked   int
	DamagedByDeathtouch bool // true if any damage currently marked came from a deathtouch source
	Base           CardRecord // base characteristics snapshot
	IsToken        bool
	IsCommander    bool
	Foretold       bool
	MutationStack  []ObjectID
	WasBargained   bool
	ExileProvenance *ObjectID
}

// NewObject constructs an object freshly entering some zone.
func NewObject(id ObjectID, base CardRecord, owner PlayerID, zone Name) *Object {
	return &Object{
		ID:          id,
		Owner:       owner,
		Controller:  owner,
		CurrentZone: zone,
		Counters:    Counters{},
		Attachments: map[ObjectID]bool{},
		Base:        base,
	}
}

// IsPermanent reports whether the base card's type line includes a
// permanent card type (used to decide SBA/zone-change rules at a coarse
// grain; precise type membership after layer 4 lives in the layers package).
func (o *Object) IsPermanent() bool {
	for _, t := range o.Base.Types {
		switch t {
		case "Creature", "Artifact", "Enchantment", "Land", "Planeswalker", "Battle":
			return true
		}
	}
	return false
}

// Detach removes the attachment relationship in both directions.
func (o *Object) Detach(host *Object) {
	if o.AttachedTo != nil && *o.AttachedTo == host.ID {
		o.AttachedTo = nil
	}
	delete(host.Attachments, o.ID)
}

// Attach records that o is attached to host.
func (o *Object) Attach(host *Object) {
	id := host.ID
	o.AttachedTo = &id
	if host.Attachments == nil {
		host.Attachments = map[ObjectID]bool{}
	}
	host.Attachments[o.ID] = true
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	clone := *o
	clone.Counters = Counters{}
	for k, v := range o.Counters {
		clone.Counters[k] = v
	}
	clone.Attachments = make(map[ObjectID]bool, len(o.Attachments))
	for k, v := range o.Attachments {
		clone.Attachments[k] = v
	}
	if o.AttachedTo != nil {
		id := *o.AttachedTo
		clone.AttachedTo = &id
	}
	if o.ExileProvenance != nil {
		id := *o.ExileProvenance
		clone.ExileProvenance = &id
	}
	clone.MutationStack = append([]ObjectID(nil), o.MutationStack...)
	return &clone
}
