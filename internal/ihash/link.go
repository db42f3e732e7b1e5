package ihash

// Link is an optional reference to the next slot of an overflow chain.
// The zero value terminates the chain.
type Link struct {
	slot uint32
	set  bool
}

// NoLink terminates a chain.
var NoLink = Link{}

// LinkTo returns a link to slot.
func LinkTo(slot int) Link {
	return Link{slot: uint32(slot), set: true}
}

// Slot returns the linked slot and whether the link is set.
func (l Link) Slot() (int, bool) {
	return int(l.slot), l.set
}

// EncodeLinks converts links to the 1-based wire encoding where 0 ends a chain.
func EncodeLinks(links []Link) []uint32 {
	out := make([]uint32, len(links))
	for i, l := range links {
		if l.set {
			out[i] = l.slot + 1
		}
	}
	return out
}

// DecodeLinks converts the 1-based wire encoding back to links.
func DecodeLinks(encoded []uint32) []Link {
	out := make([]Link, len(encoded))
	for i, v := range encoded {
		if v != 0 {
			out[i] = Link{slot: v - 1, set: true}
		}
	}
	return out
}
