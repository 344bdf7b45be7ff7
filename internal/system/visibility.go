package system

import (
	"time"

	"github.com/rosego/server/internal/core/ecs"
	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/messages"
	"github.com/rosego/server/internal/world"
)

// VisibilitySystem diffs each observer's remembered visible set against its
// sector's current one and sends the spawns and removes that reconcile them.
// Entities that left their zone this tick are still present in the slot table
// here, so leavers produce a proper remove before the slot is reused.
type VisibilitySystem struct {
	stores *world.Stores
	zones  *world.ZoneRegistry
	clock  *world.Clock
}

func NewVisibilitySystem(stores *world.Stores, zones *world.ZoneRegistry, clock *world.Clock) *VisibilitySystem {
	return &VisibilitySystem{stores: stores, zones: zones, clock: clock}
}

func (s *VisibilitySystem) Phase() coresys.Phase { return coresys.PhaseVisibility }

func (s *VisibilitySystem) Update(dt time.Duration) {
	st := s.stores

	ecs.Each3(st.GameClient, st.Visibility, st.Sector, func(entity ecs.EntityID, client *world.GameClient, vis *world.Visibility, sector *world.Sector) {
		ce, ok := st.ClientEntity.Get(entity)
		if !ok {
			return
		}
		pos, ok := st.Position.Get(entity)
		if !ok {
			return
		}
		zone := s.zones.Get(pos.ZoneID)
		if zone == nil {
			return
		}

		visible := zone.VisibleSet(sector.Coord)

		diff := vis.Entities.Xor(*visible)
		diff.Clear(ce.ID)

		var removed []messages.EntityID
		diff.ForEach(func(id world.ZoneEntityID) {
			if !visible.Contains(id) {
				removed = append(removed, id)
				return
			}
			s.sendSpawn(client, zone, id)
		})

		if len(removed) > 0 {
			client.Send(messages.RemoveEntities{EntityIDs: removed})
		}

		vis.Entities = *visible
	})

	// Flush zone leavers only after every observer has diffed against the
	// old occupancy, so their ids could still be resolved above.
	s.zones.ProcessLeavers()
}

func (s *VisibilitySystem) sendSpawn(client *world.GameClient, zone *world.Zone, id world.ZoneEntityID) {
	entity, kind, _, ok := zone.GetEntity(id)
	if !ok {
		return
	}

	switch kind {
	case world.KindCharacter:
		s.sendSpawnCharacter(client, id, entity)
	case world.KindMonster:
		s.sendSpawnMonster(client, id, entity)
	case world.KindNpc:
		s.sendSpawnNpc(client, id, entity)
	case world.KindItemDrop:
		s.sendSpawnItemDrop(client, id, entity)
	}
}

func (s *VisibilitySystem) sendSpawnCharacter(client *world.GameClient, id world.ZoneEntityID, entity ecs.EntityID) {
	st := s.stores

	info, ok := st.Character.Get(entity)
	if !ok {
		return
	}
	pos, ok := st.Position.Get(entity)
	if !ok {
		return
	}
	hp, ok := st.Health.Get(entity)
	if !ok {
		return
	}
	cmd, ok := st.Command.Get(entity)
	if !ok {
		return
	}

	msg := messages.SpawnEntityCharacter{
		EntityID: id,
		Name:     info.Name,
		Gender:   info.Gender,
		X:        pos.Pos.X,
		Y:        pos.Pos.Y,
		Z:        pos.Pos.Z,
		HP:       hp.HP,
		MaxHP:    hp.MaxHP,
		MoveMode: s.moveModeOf(entity),
		State:    s.spawnState(cmd),
	}
	if team, ok := st.Team.Get(entity); ok {
		msg.TeamID = team.ID
	}
	if ability, ok := st.Ability.Get(entity); ok {
		msg.Level = ability.Level
	}
	if ps, ok := st.Store.Get(entity); ok {
		msg.HasStore = true
		msg.StoreSkin = ps.Skin
		msg.StoreTitle = ps.Title
	}

	client.Send(msg)
}

func (s *VisibilitySystem) sendSpawnMonster(client *world.GameClient, id world.ZoneEntityID, entity ecs.EntityID) {
	st := s.stores

	npc, ok := st.Npc.Get(entity)
	if !ok {
		return
	}
	pos, ok := st.Position.Get(entity)
	if !ok {
		return
	}
	hp, ok := st.Health.Get(entity)
	if !ok {
		return
	}
	cmd, ok := st.Command.Get(entity)
	if !ok {
		return
	}

	msg := messages.SpawnEntityMonster{
		EntityID: id,
		NpcID:    npc.ID,
		X:        pos.Pos.X,
		Y:        pos.Pos.Y,
		Z:        pos.Pos.Z,
		HP:       hp.HP,
		MoveMode: s.moveModeOf(entity),
		State:    s.spawnState(cmd),
	}
	if team, ok := st.Team.Get(entity); ok {
		msg.TeamID = team.ID
	}

	client.Send(msg)
}

func (s *VisibilitySystem) sendSpawnNpc(client *world.GameClient, id world.ZoneEntityID, entity ecs.EntityID) {
	st := s.stores

	npc, ok := st.Npc.Get(entity)
	if !ok {
		return
	}
	pos, ok := st.Position.Get(entity)
	if !ok {
		return
	}
	hp, ok := st.Health.Get(entity)
	if !ok {
		return
	}
	cmd, ok := st.Command.Get(entity)
	if !ok {
		return
	}

	msg := messages.SpawnEntityNpc{
		EntityID:  id,
		NpcID:     npc.ID,
		Direction: npc.Direction,
		X:         pos.Pos.X,
		Y:         pos.Pos.Y,
		Z:         pos.Pos.Z,
		HP:        hp.HP,
		MoveMode:  s.moveModeOf(entity),
		State:     s.spawnState(cmd),
	}
	if team, ok := st.Team.Get(entity); ok {
		msg.TeamID = team.ID
	}

	client.Send(msg)
}

func (s *VisibilitySystem) sendSpawnItemDrop(client *world.GameClient, id world.ZoneEntityID, entity ecs.EntityID) {
	st := s.stores

	drop, ok := st.ItemDrop.Get(entity)
	if !ok {
		return
	}
	pos, ok := st.Position.Get(entity)
	if !ok {
		return
	}

	msg := messages.SpawnEntityItemDrop{
		EntityID:   id,
		ItemNumber: drop.ItemNumber,
		Quantity:   drop.Quantity,
		X:          pos.Pos.X,
		Y:          pos.Pos.Y,
		Z:          pos.Pos.Z,
	}
	if expire, ok := st.ExpireTime.Get(entity); ok {
		msg.RemainingTime = expire.At - s.clock.Elapsed
	}
	if drop.Owner != ecs.NilEntity {
		if oce, ok := st.ClientEntity.Get(drop.Owner); ok {
			msg.OwnerEntityID = oce.ID
		}
	}

	client.Send(msg)
}

func (s *VisibilitySystem) moveModeOf(entity ecs.EntityID) uint8 {
	if mode, ok := s.stores.MoveMode.Get(entity); ok {
		return uint8(*mode)
	}
	return uint8(world.MoveModeRun)
}

// spawnState summarizes the entity's current command so a fresh observer can
// start the right animation mid-action.
func (s *VisibilitySystem) spawnState(cmd *world.Command) messages.SpawnState {
	st := s.stores

	targetState := func(kind messages.SpawnStateKind, target ecs.EntityID, fallback world.Vec3) messages.SpawnState {
		if target != ecs.NilEntity {
			if tce, ok := st.ClientEntity.Get(target); ok {
				if tpos, ok := st.Position.Get(target); ok {
					return messages.SpawnState{
						Kind:           kind,
						TargetEntityID: tce.ID,
						TargetX:        tpos.Pos.X,
						TargetY:        tpos.Pos.Y,
					}
				}
			}
		}
		if kind == messages.SpawnStateMove {
			return messages.SpawnState{Kind: kind, TargetX: fallback.X, TargetY: fallback.Y}
		}
		return messages.SpawnState{Kind: messages.SpawnStateStop}
	}

	switch cmd.Kind {
	case world.CommandDie:
		return messages.SpawnState{Kind: messages.SpawnStateDie}
	case world.CommandMove:
		return targetState(messages.SpawnStateMove, cmd.Move.Target, cmd.Move.Destination)
	case world.CommandAttack:
		return targetState(messages.SpawnStateAttack, cmd.Attack.Target, world.Vec3{})
	case world.CommandPickupItemDrop:
		return targetState(messages.SpawnStatePickupItemDrop, cmd.Pickup.Target, world.Vec3{})
	case world.CommandPersonalStore:
		return messages.SpawnState{Kind: messages.SpawnStatePersonalStore}
	case world.CommandCastSkill:
		return messages.SpawnState{Kind: messages.SpawnStateCastSkill}
	case world.CommandSit, world.CommandSitting:
		return messages.SpawnState{Kind: messages.SpawnStateSit}
	case world.CommandEmote:
		return messages.SpawnState{Kind: messages.SpawnStateEmote}
	default:
		return messages.SpawnState{Kind: messages.SpawnStateStop}
	}
}
