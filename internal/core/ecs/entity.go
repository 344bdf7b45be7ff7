package ecs

// EntityID packs a 32-bit slot index in the low half and a 32-bit generation
// in the high half. The generation bumps every time a slot is reused, so a
// stale id held by another system simply stops resolving.
type EntityID uint64

const NilEntity EntityID = 0

func MakeEntityID(index, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsNil() bool        { return id == 0 }

// Pool allocates entity ids with generational indices. Index 0 is burned at
// construction so that the zero EntityID never refers to a live entity.
type Pool struct {
	generations []uint32
	free        []uint32
	next        uint32
}

func NewPool() *Pool {
	p := &Pool{
		generations: make([]uint32, 1, 1024),
		free:        make([]uint32, 0, 256),
		next:        1,
	}
	return p
}

func (p *Pool) Create() EntityID {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		return MakeEntityID(idx, p.generations[idx])
	}
	idx := p.next
	p.next++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return MakeEntityID(idx, p.generations[idx])
}

func (p *Pool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.next {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *Pool) Destroy(id EntityID) {
	idx := id.Index()
	if idx == 0 || idx >= p.next {
		return
	}
	if p.generations[idx] != id.Generation() {
		return // stale reference, already destroyed
	}
	p.generations[idx]++
	p.free = append(p.free, idx)
}
