package world

import (
	"errors"
	"fmt"

	"github.com/rosego/server/internal/core/ecs"
	"github.com/rosego/server/internal/data"
)

var (
	// ErrOutOfEntityIDs is returned by JoinZone when the zone's slot pool is
	// exhausted. The caller must not leave the entity half-joined.
	ErrOutOfEntityIDs = errors.New("world: zone entity id pool exhausted")

	// ErrInvalidZone is returned when joining a zone id with no loaded zone.
	ErrInvalidZone = errors.New("world: no such zone")
)

// zoneSector is one cell of a zone's grid: the entities inside it, plus the
// precomputed union of its own and all adjacent sectors' entities. The union
// is patched incrementally on every join/leave, so reads are free.
type zoneSector struct {
	entities EntitySet
	visible  EntitySet
}

type zoneSlot struct {
	entity ecs.EntityID
	kind   EntityKind
	pos    Vec3
	live   bool
}

// Zone is the spatial partition of one zone: a sector grid plus a bounded
// pool of zone entity ids. It holds only ids and back-references, never
// entity lifetime.
type Zone struct {
	zoneID data.ZoneID

	sectorSize   float32
	sectorBase   Vec2
	sectorCountX uint32
	sectorCountY uint32

	// An entity only changes sector once it moves further than this from its
	// current sector's midpoint (half sector plus 20% hysteresis), which
	// stops boundary walkers from flapping between sectors.
	leaveDistanceSquared float32

	sectors []zoneSector
	slots   [MaxZoneEntities]zoneSlot

	// Ids of entities that left this tick. Their slots stay resolvable until
	// ProcessLeavers so the visibility diff can still emit their removal.
	leaving []ZoneEntityID
}

func NewZone(info *data.ZoneData) *Zone {
	limit := info.SectorSize/2 + info.SectorSize*0.2
	return &Zone{
		zoneID:               info.ID,
		sectorSize:           info.SectorSize,
		sectorBase:           Vec2{info.SectorBaseX, info.SectorBaseY},
		sectorCountX:         info.NumSectorsX,
		sectorCountY:         info.NumSectorsY,
		leaveDistanceSquared: limit * limit,
		sectors:              make([]zoneSector, info.NumSectorsX*info.NumSectorsY),
	}
}

func (z *Zone) ID() data.ZoneID { return z.zoneID }

// CalculateSector returns the sector covering a position, clamped to the
// grid edge for out-of-bounds positions.
func (z *Zone) CalculateSector(pos Vec2) SectorCoord {
	sx := int32((pos.X - z.sectorBase.X) / z.sectorSize)
	sy := int32((pos.Y - z.sectorBase.Y) / z.sectorSize)
	return SectorCoord{
		X: clampSector(sx, z.sectorCountX),
		Y: clampSector(sy, z.sectorCountY),
	}
}

func clampSector(v int32, count uint32) uint32 {
	if v < 0 {
		return 0
	}
	if uint32(v) >= count {
		return count - 1
	}
	return uint32(v)
}

func (z *Zone) sectorMidpoint(c SectorCoord) Vec2 {
	return Vec2{
		X: z.sectorBase.X + (float32(c.X)+0.5)*z.sectorSize,
		Y: z.sectorBase.Y + (float32(c.Y)+0.5)*z.sectorSize,
	}
}

func (z *Zone) sector(c SectorCoord) *zoneSector {
	return &z.sectors[c.X+c.Y*z.sectorCountX]
}

// VisibleSet returns the precomputed union of a sector's own entities and
// its immediate neighbours'. Read-only; the Zone patches it on every
// structural change.
func (z *Zone) VisibleSet(c SectorCoord) *EntitySet {
	return &z.sector(c).visible
}

// GetEntity resolves a zone entity id to its game entity, kind and last
// known position. Ids of entities that left this tick still resolve until
// ProcessLeavers runs.
func (z *Zone) GetEntity(id ZoneEntityID) (ecs.EntityID, EntityKind, Vec3, bool) {
	s := &z.slots[id]
	if !s.live {
		return ecs.NilEntity, 0, Vec3{}, false
	}
	return s.entity, s.kind, s.pos, true
}

func (z *Zone) eachAdjacentSector(c SectorCoord, fn func(*zoneSector)) {
	minX := c.X
	if minX > 0 {
		minX--
	}
	minY := c.Y
	if minY > 0 {
		minY--
	}
	maxX := c.X + 1
	if maxX >= z.sectorCountX {
		maxX = z.sectorCountX - 1
	}
	maxY := c.Y + 1
	if maxY >= z.sectorCountY {
		maxY = z.sectorCountY - 1
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			fn(z.sector(SectorCoord{X: x, Y: y}))
		}
	}
}

func (z *Zone) joinSector(c SectorCoord, id ZoneEntityID) {
	z.sector(c).entities.Set(id)
	z.eachAdjacentSector(c, func(s *zoneSector) { s.visible.Set(id) })
}

func (z *Zone) leaveSector(c SectorCoord, id ZoneEntityID) {
	z.sector(c).entities.Clear(id)
	z.eachAdjacentSector(c, func(s *zoneSector) { s.visible.Clear(id) })
}

// JoinZone allocates the next free zone entity id and inserts the entity
// into the sector covering position. Fails with ErrOutOfEntityIDs when the
// pool is exhausted, leaving the zone untouched.
func (z *Zone) JoinZone(kind EntityKind, entity ecs.EntityID, position Vec3) (ClientEntity, Sector, error) {
	id := ZoneEntityID(0)
	for i := 1; i < MaxZoneEntities; i++ {
		if !z.slots[i].live {
			id = ZoneEntityID(i)
			break
		}
	}
	if id == 0 {
		return ClientEntity{}, Sector{}, ErrOutOfEntityIDs
	}

	sector := z.CalculateSector(position.XY())
	z.slots[id] = zoneSlot{entity: entity, kind: kind, pos: position, live: true}
	z.joinSector(sector, id)

	return ClientEntity{ID: id, ZoneID: z.zoneID, Kind: kind}, Sector{Coord: sector}, nil
}

// LeaveZone removes the entity from its sector. The id stays resolvable (and
// reserved) until ProcessLeavers, so this tick's visibility diff still sees
// the departure.
func (z *Zone) LeaveZone(entity ecs.EntityID, ce ClientEntity, sector Sector) {
	z.checkSlot(entity, ce.ID)
	z.leaveSector(sector.Coord, ce.ID)
	z.leaving = append(z.leaving, ce.ID)
}

// UpdatePosition records the entity's new position and migrates it between
// sectors once it strays far enough from its sector's midpoint.
func (z *Zone) UpdatePosition(entity ecs.EntityID, ce ClientEntity, sector *Sector, position Vec3) {
	z.checkSlot(entity, ce.ID)

	mid := z.sectorMidpoint(sector.Coord)
	if position.XY().DistanceSquared(mid) > z.leaveDistanceSquared {
		newSector := z.CalculateSector(position.XY())
		if newSector != sector.Coord {
			z.leaveSector(sector.Coord, ce.ID)
			z.joinSector(newSector, ce.ID)
			sector.Coord = newSector
		}
	}

	z.slots[ce.ID].pos = position
}

// ProcessLeavers releases the ids of entities that left the zone this tick.
// Runs after the visibility phase.
func (z *Zone) ProcessLeavers() {
	for _, id := range z.leaving {
		z.slots[id] = zoneSlot{}
	}
	z.leaving = z.leaving[:0]
}

// checkSlot guards the bookkeeping invariant: a caller-presented slot must
// match the zone's own record. A mismatch is a programming error, not a
// runtime condition.
func (z *Zone) checkSlot(entity ecs.EntityID, id ZoneEntityID) {
	if s := &z.slots[id]; !s.live || s.entity != entity {
		panic(fmt.Sprintf("world: zone %d slot %d does not belong to entity %d", z.zoneID, id, entity))
	}
}

// LiveCount reports the number of allocated ids, leavers included.
func (z *Zone) LiveCount() int {
	n := 0
	for i := 1; i < MaxZoneEntities; i++ {
		if z.slots[i].live {
			n++
		}
	}
	return n
}

// RangeQuery iterates entities within a radius of an origin, visiting only
// the sectors that can contain a matching point. Ordering is unspecified;
// callers needing determinism must sort. Reset restarts the iteration.
type RangeQuery struct {
	zone           *Zone
	minSec         SectorCoord
	maxSec         SectorCoord
	origin         Vec2
	maxDistSquared float32
	kinds          []EntityKind

	current SectorCoord
	ids     []ZoneEntityID
	idx     int
	done    bool
}

// IterWithinDistance returns a query over all entities within distance of
// origin, optionally restricted to the given kinds (nil = all kinds).
func (z *Zone) IterWithinDistance(origin Vec2, distance float32, kinds []EntityKind) *RangeQuery {
	q := &RangeQuery{
		zone:           z,
		minSec:         z.CalculateSector(origin.Sub(Vec2{distance, distance})),
		maxSec:         z.CalculateSector(origin.Add(Vec2{distance, distance})),
		origin:         origin,
		maxDistSquared: distance * distance,
		kinds:          kinds,
	}
	q.Reset()
	return q
}

func (q *RangeQuery) Reset() {
	q.current = q.minSec
	q.done = false
	q.loadSector()
}

func (q *RangeQuery) loadSector() {
	q.ids = q.ids[:0]
	q.zone.sector(q.current).entities.ForEach(func(id ZoneEntityID) {
		q.ids = append(q.ids, id)
	})
	q.idx = 0
}

func (q *RangeQuery) advanceSector() bool {
	q.current.X++
	if q.current.X > q.maxSec.X {
		q.current.X = q.minSec.X
		q.current.Y++
	}
	if q.current.Y > q.maxSec.Y {
		q.done = true
		return false
	}
	q.loadSector()
	return true
}

func (q *RangeQuery) matchKind(kind EntityKind) bool {
	if q.kinds == nil {
		return true
	}
	for _, k := range q.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Next returns the next matching (entity, position), or ok=false when the
// query is exhausted.
func (q *RangeQuery) Next() (entity ecs.EntityID, pos Vec3, ok bool) {
	for !q.done {
		if q.idx >= len(q.ids) {
			if !q.advanceSector() {
				break
			}
			continue
		}
		id := q.ids[q.idx]
		q.idx++

		slot := &q.zone.slots[id]
		if !slot.live || !q.matchKind(slot.kind) {
			continue
		}
		if q.origin.DistanceSquared(slot.pos.XY()) > q.maxDistSquared {
			continue
		}
		return slot.entity, slot.pos, true
	}
	return ecs.NilEntity, Vec3{}, false
}
