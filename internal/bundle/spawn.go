package bundle

import (
	"fmt"
	"time"

	"github.com/rosego/server/internal/core/ecs"
	"github.com/rosego/server/internal/data"
	"github.com/rosego/server/internal/persist"
	"github.com/rosego/server/internal/world"
)

// Motion ids shared by every template; per-npc overrides come from the
// motion table.
const (
	MotionAttack     data.MotionID = 1
	MotionDie        data.MotionID = 2
	MotionPickup     data.MotionID = 3
	MotionSitSitting data.MotionID = 4
	MotionSitStandup data.MotionID = 5
)

func npcMotionSet(gd *data.GameData, npcID data.NpcID) *world.MotionSet {
	return &world.MotionSet{
		NpcID:  npcID,
		Attack: gd.Motions.NpcMotion(npcID, MotionAttack),
		Die:    gd.Motions.NpcMotion(npcID, MotionDie),
	}
}

// CharacterMotionSet builds the clip cache for a character's current weapon
// motion type and gender. The equip pipeline calls this again on weapon
// change.
func CharacterMotionSet(gd *data.GameData, weaponMotionType, gender int) *world.MotionSet {
	return &world.MotionSet{
		WeaponMotionType: weaponMotionType,
		Gender:           gender,
		Attack:           gd.Motions.CharacterMotion(MotionAttack, weaponMotionType, gender),
		Die:              gd.Motions.CharacterMotion(MotionDie, weaponMotionType, gender),
		PickupItemDrop:   gd.Motions.CharacterMotion(MotionPickup, weaponMotionType, gender),
		SitSitting:       gd.Motions.CharacterMotion(MotionSitSitting, weaponMotionType, gender),
		SitStanding:      gd.Motions.CharacterMotion(MotionSitStandup, weaponMotionType, gender),
	}
}

// SpawnMonster creates a monster entity from its template and joins it to
// the zone. On a full id pool the entity is rolled back entirely.
func SpawnMonster(s *world.Stores, reg *world.ZoneRegistry, gd *data.GameData, npcID data.NpcID, pos world.Position, origin ecs.EntityID) (ecs.EntityID, error) {
	tmpl := gd.Npcs.Get(npcID)
	if tmpl == nil {
		return ecs.NilEntity, fmt.Errorf("bundle: unknown npc template %d", npcID)
	}

	entity := s.Entities.CreateEntity()
	s.Npc.Set(entity, &world.Npc{ID: npcID})
	s.Position.Set(entity, &world.Position{ZoneID: pos.ZoneID, Pos: pos.Pos})
	s.Health.Set(entity, &world.HealthPoints{HP: tmpl.Health, MaxHP: tmpl.Health})
	s.Damage.Set(entity, &world.DamageSources{Max: int(tmpl.Health/8) + 4})
	s.Team.Set(entity, &world.Team{ID: monsterTeamID})
	s.Ability.Set(entity, &world.AbilityValues{
		Level:       tmpl.Level,
		AttackPower: tmpl.AttackPower,
		Defence:     tmpl.Defence,
		AttackSpeed: tmpl.AttackSpeed,
		AttackRange: tmpl.AttackRange,
		WalkSpeed:   tmpl.WalkSpeed,
		RunSpeed:    tmpl.RunSpeed,
	})
	s.Motion.Set(entity, npcMotionSet(gd, npcID))
	mode := world.MoveModeWalk
	s.MoveMode.Set(entity, &mode)
	s.MoveSpeed.Set(entity, &world.MoveSpeed{Speed: tmpl.WalkSpeed})
	cmd := world.StopCommand()
	s.Command.Set(entity, &cmd)
	s.NextCommand.Set(entity, &world.NextCommand{})
	if !origin.IsNil() {
		s.SpawnOrigin.Set(entity, &world.SpawnOrigin{SpawnPoint: origin})
	}

	kind := world.KindMonster
	if !tmpl.IsMonster {
		kind = world.KindNpc
	}
	if _, err := JoinZone(s, reg, entity, kind, world.Position{ZoneID: pos.ZoneID, Pos: pos.Pos}); err != nil {
		s.Entities.MarkForDestruction(entity)
		return ecs.NilEntity, err
	}
	return entity, nil
}

const monsterTeamID = 100

// SpawnItemDrop creates a dropped item entity that expires after lifetime.
func SpawnItemDrop(s *world.Stores, reg *world.ZoneRegistry, clock *world.Clock, drop world.ItemDrop, pos world.Position, lifetime time.Duration) (ecs.EntityID, error) {
	entity := s.Entities.CreateEntity()
	d := drop
	s.ItemDrop.Set(entity, &d)
	s.Position.Set(entity, &world.Position{ZoneID: pos.ZoneID, Pos: pos.Pos})
	s.ExpireTime.Set(entity, &world.ExpireTime{At: clock.Elapsed + lifetime})

	if _, err := JoinZone(s, reg, entity, world.KindItemDrop, pos); err != nil {
		s.Entities.MarkForDestruction(entity)
		return ecs.NilEntity, err
	}
	return entity, nil
}

// CharacterSpawn is the persisted state a character enters the world with.
type CharacterSpawn struct {
	Info     world.CharacterInfo
	Ability  world.AbilityValues
	Position world.Position
	HP       int32
	MaxHP    int32
	MP       int32
	MaxMP    int32
	XP       int64
}

// SpawnFromRow maps a loaded character row onto a CharacterSpawn. Derived
// stats come from the stat pipeline, not the row.
func SpawnFromRow(row *persist.CharacterRow, ability world.AbilityValues) CharacterSpawn {
	return CharacterSpawn{
		Info: world.CharacterInfo{
			CharacterID: row.ID,
			Name:        row.Name,
			Gender:      int(row.Gender),
		},
		Ability: ability,
		Position: world.Position{
			ZoneID: data.ZoneID(row.ZoneID),
			Pos:    world.Vec3{X: row.X, Y: row.Y},
		},
		HP:    row.HP,
		MaxHP: row.MaxHP,
		MP:    row.MP,
		MaxMP: row.MaxMP,
		XP:    row.XP,
	}
}

// SpawnCharacter creates a player character entity with a connected client
// and joins it to its zone. Called by the login collaborator once the
// character's persistent state is loaded.
func SpawnCharacter(s *world.Stores, reg *world.ZoneRegistry, gd *data.GameData, spawn CharacterSpawn, client *world.GameClient) (ecs.EntityID, error) {
	entity := s.Entities.CreateEntity()
	ci := spawn.Info
	s.Character.Set(entity, &ci)
	s.Position.Set(entity, &world.Position{ZoneID: spawn.Position.ZoneID, Pos: spawn.Position.Pos})
	av := spawn.Ability
	s.Ability.Set(entity, &av)
	s.Health.Set(entity, &world.HealthPoints{HP: spawn.HP, MaxHP: spawn.MaxHP})
	s.Mana.Set(entity, &world.ManaPoints{MP: spawn.MP, MaxMP: spawn.MaxMP})
	s.Experience.Set(entity, &world.ExperiencePoints{XP: spawn.XP})
	s.Team.Set(entity, &world.Team{ID: characterTeamID})
	s.Motion.Set(entity, CharacterMotionSet(gd, 0, spawn.Info.Gender))
	s.Equipment.Set(entity, &world.Equipment{})
	mode := world.MoveModeRun
	s.MoveMode.Set(entity, &mode)
	s.MoveSpeed.Set(entity, &world.MoveSpeed{Speed: av.RunSpeed})
	cmd := world.StopCommand()
	s.Command.Set(entity, &cmd)
	s.NextCommand.Set(entity, &world.NextCommand{})
	if client != nil {
		s.GameClient.Set(entity, client)
	}

	if _, err := JoinZone(s, reg, entity, world.KindCharacter, spawn.Position); err != nil {
		s.Entities.MarkForDestruction(entity)
		return ecs.NilEntity, err
	}
	return entity, nil
}

const characterTeamID = 2
