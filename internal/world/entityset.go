package world

import "math/bits"

// MaxZoneEntities is the per-zone entity id ceiling. Ids are 12-bit on the
// wire, so the slot pool is a hard server limit, not a tunable.
const MaxZoneEntities = 4096

const entitySetWords = MaxZoneEntities / 64

// EntitySet is a fixed-size bitset over a zone's entity id space. It is a
// value type: assigning copies, which the visibility diff relies on (the
// observer keeps last tick's set by plain assignment, no allocation).
type EntitySet [entitySetWords]uint64

func (s *EntitySet) Set(id ZoneEntityID) {
	s[id>>6] |= 1 << (id & 63)
}

func (s *EntitySet) Clear(id ZoneEntityID) {
	s[id>>6] &^= 1 << (id & 63)
}

func (s *EntitySet) Contains(id ZoneEntityID) bool {
	return s[id>>6]&(1<<(id&63)) != 0
}

func (s *EntitySet) Reset() {
	*s = EntitySet{}
}

// Xor returns the symmetric difference of two sets.
func (s EntitySet) Xor(o EntitySet) EntitySet {
	var out EntitySet
	for i := range s {
		out[i] = s[i] ^ o[i]
	}
	return out
}

// ForEach calls fn for every set bit in ascending id order.
func (s *EntitySet) ForEach(fn func(ZoneEntityID)) {
	for w, word := range s {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			fn(ZoneEntityID(w*64 + bit))
			word &= word - 1
		}
	}
}

func (s *EntitySet) Count() int {
	n := 0
	for _, word := range s {
		n += bits.OnesCount64(word)
	}
	return n
}
