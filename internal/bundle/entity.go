// Package bundle ties component stores, the zone registry and the
// notification buffer together into the entity lifecycle operations
// (join/leave/teleport, spawn/despawn) used by login, spawning and warp
// logic.
package bundle

import (
	"github.com/rosego/server/internal/core/ecs"
	"github.com/rosego/server/internal/messages"
	"github.com/rosego/server/internal/world"
)

// JoinZone allocates a zone entity id for the entity and attaches its
// ClientEntity and Sector components. Observers (entities with a GameClient)
// also get an empty Visibility set. Returns ErrInvalidZone or
// ErrOutOfEntityIDs without touching the entity's components.
func JoinZone(s *world.Stores, reg *world.ZoneRegistry, entity ecs.EntityID, kind world.EntityKind, pos world.Position) (world.ClientEntity, error) {
	zone := reg.Get(pos.ZoneID)
	if zone == nil {
		return world.ClientEntity{}, world.ErrInvalidZone
	}

	ce, sector, err := zone.JoinZone(kind, entity, pos.Pos)
	if err != nil {
		return world.ClientEntity{}, err
	}

	s.ClientEntity.Set(entity, &ce)
	s.Sector.Set(entity, &sector)
	if s.GameClient.Has(entity) {
		s.Visibility.Set(entity, &world.Visibility{})
	}
	return ce, nil
}

// LeaveZone removes the entity from its zone's spatial index and strips the
// zone-scoped components. The freed id is not reusable until the registry's
// end-of-tick ProcessLeavers, so this tick's visibility diff still reports
// the departure.
func LeaveZone(s *world.Stores, reg *world.ZoneRegistry, entity ecs.EntityID) {
	ce, ok := s.ClientEntity.Get(entity)
	if !ok {
		return
	}
	sector := s.Sector.MustGet(entity)

	if zone := reg.Get(ce.ZoneID); zone != nil && sector != nil {
		zone.LeaveZone(entity, *ce, *sector)
	}

	s.ClientEntity.Remove(entity)
	s.Sector.Remove(entity)
	s.Visibility.Remove(entity)
	s.Destination.Remove(entity)
	s.Target.Remove(entity)
}

// TeleportZone warps the entity: leave the old zone, reset its action state,
// join at the new position, and tell the client where it went.
func TeleportZone(s *world.Stores, reg *world.ZoneRegistry, entity ecs.EntityID, newPos world.Position) error {
	LeaveZone(s, reg, entity)

	if cmd, ok := s.Command.Get(entity); ok {
		*cmd = world.StopCommand()
	}
	if next, ok := s.NextCommand.Get(entity); ok {
		next.Clear()
	}

	pos, ok := s.Position.Get(entity)
	if !ok {
		pos = &world.Position{}
		s.Position.Set(entity, pos)
	}
	*pos = newPos

	ce, err := JoinZone(s, reg, entity, kindOf(s, entity), newPos)
	if err != nil {
		return err
	}

	if client, ok := s.GameClient.Get(entity); ok {
		runMode := uint8(0)
		if mode, ok := s.MoveMode.Get(entity); ok && *mode == world.MoveModeRun {
			runMode = 1
		}
		rideMode := uint8(0)
		if mode, ok := s.MoveMode.Get(entity); ok && *mode == world.MoveModeDrive {
			rideMode = 1
		}
		client.Send(messages.Teleport{
			EntityID: ce.ID,
			ZoneID:   newPos.ZoneID,
			X:        newPos.Pos.X,
			Y:        newPos.Pos.Y,
			RunMode:  runMode,
			RideMode: rideMode,
		})
	}
	return nil
}

func kindOf(s *world.Stores, entity ecs.EntityID) world.EntityKind {
	switch {
	case s.Character.Has(entity):
		return world.KindCharacter
	case s.ItemDrop.Has(entity):
		return world.KindItemDrop
	case s.Npc.Has(entity):
		if npc := s.Npc.MustGet(entity); npc != nil && s.SpawnOrigin.Has(entity) {
			return world.KindMonster
		}
		return world.KindNpc
	default:
		return world.KindNpc
	}
}

// DespawnEntity removes the entity from its zone and queues it for
// end-of-tick destruction.
func DespawnEntity(s *world.Stores, reg *world.ZoneRegistry, entity ecs.EntityID) {
	LeaveZone(s, reg, entity)
	s.Entities.MarkForDestruction(entity)
}
