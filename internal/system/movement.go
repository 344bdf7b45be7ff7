package system

import (
	"time"

	"github.com/rosego/server/internal/core/ecs"
	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/world"
)

// MovementSystem advances every entity with a Destination toward it by
// speed × dt and keeps the zone index's sector placement consistent. This is
// the only place positions change outside teleport/respawn, and the only
// phase that mutates the spatial index; later phases read it.
type MovementSystem struct {
	stores *world.Stores
	zones  *world.ZoneRegistry
}

func NewMovementSystem(stores *world.Stores, zones *world.ZoneRegistry) *MovementSystem {
	return &MovementSystem{stores: stores, zones: zones}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(dt time.Duration) {
	st := s.stores

	st.Destination.Each(func(entity ecs.EntityID, dest *world.Destination) {
		pos, ok := st.Position.Get(entity)
		if !ok {
			return
		}
		speed, ok := st.MoveSpeed.Get(entity)
		if !ok {
			return
		}

		direction := dest.Pos.XY().Sub(pos.Pos.XY())
		distSquared := direction.LengthSquared()

		if distSquared == 0 {
			pos.Pos = dest.Pos
			st.Destination.Remove(entity)
		} else {
			step := direction.Normalize().Scale(speed.Speed * float32(dt.Seconds()))
			if step.LengthSquared() >= distSquared {
				// Would overshoot: snap to the destination instead of
				// oscillating around it.
				pos.Pos = dest.Pos
				st.Destination.Remove(entity)
			} else {
				pos.Pos.X += step.X
				pos.Pos.Y += step.Y
			}
		}

		// Detached movers (no zone slot) just update their position.
		ce, ok := st.ClientEntity.Get(entity)
		if !ok {
			return
		}
		sector, ok := st.Sector.Get(entity)
		if !ok {
			return
		}
		if zone := s.zones.Get(pos.ZoneID); zone != nil {
			zone.UpdatePosition(entity, *ce, sector, pos.Pos)
		}
	})
}
