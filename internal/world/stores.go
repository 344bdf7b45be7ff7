package world

import (
	"time"

	"github.com/rosego/server/internal/core/ecs"
)

// Clock is the simulation clock: the total simulated time and tick count.
// Advanced once per tick by the main loop; deferred effects are keyed
// against Elapsed, never against wall time.
type Clock struct {
	Elapsed time.Duration
	Tick    uint64
}

func (c *Clock) Advance(dt time.Duration) {
	c.Elapsed += dt
	c.Tick++
}

// Stores bundles the ECS world with every component store. One instance is
// shared by all systems; access discipline is phase ordering, not locks.
type Stores struct {
	Entities *ecs.World

	ClientEntity *ecs.Store[ClientEntity]
	Sector       *ecs.Store[Sector]
	Visibility   *ecs.Store[Visibility]
	Position     *ecs.Store[Position]
	Destination  *ecs.Store[Destination]
	Target       *ecs.Store[Target]
	MoveSpeed    *ecs.Store[MoveSpeed]
	MoveMode     *ecs.Store[MoveMode]
	Command      *ecs.Store[Command]
	NextCommand  *ecs.Store[NextCommand]
	Health       *ecs.Store[HealthPoints]
	Mana         *ecs.Store[ManaPoints]
	Experience   *ecs.Store[ExperiencePoints]
	Damage       *ecs.Store[DamageSources]
	Team         *ecs.Store[Team]
	Ability      *ecs.Store[AbilityValues]
	Motion       *ecs.Store[MotionSet]
	Equipment    *ecs.Store[Equipment]
	Character    *ecs.Store[CharacterInfo]
	Npc          *ecs.Store[Npc]
	ItemDrop     *ecs.Store[ItemDrop]
	ExpireTime   *ecs.Store[ExpireTime]
	SpawnOrigin  *ecs.Store[SpawnOrigin]
	SpawnPoint   *ecs.Store[SpawnPoint]
	Store        *ecs.Store[PersonalStore]
	GameClient   *ecs.Store[GameClient]
}

func NewStores() *Stores {
	s := &Stores{
		Entities:     ecs.NewWorld(),
		ClientEntity: ecs.NewStore[ClientEntity](),
		Sector:       ecs.NewStore[Sector](),
		Visibility:   ecs.NewStore[Visibility](),
		Position:     ecs.NewStore[Position](),
		Destination:  ecs.NewStore[Destination](),
		Target:       ecs.NewStore[Target](),
		MoveSpeed:    ecs.NewStore[MoveSpeed](),
		MoveMode:     ecs.NewStore[MoveMode](),
		Command:      ecs.NewStore[Command](),
		NextCommand:  ecs.NewStore[NextCommand](),
		Health:       ecs.NewStore[HealthPoints](),
		Mana:         ecs.NewStore[ManaPoints](),
		Experience:   ecs.NewStore[ExperiencePoints](),
		Damage:       ecs.NewStore[DamageSources](),
		Team:         ecs.NewStore[Team](),
		Ability:      ecs.NewStore[AbilityValues](),
		Motion:       ecs.NewStore[MotionSet](),
		Equipment:    ecs.NewStore[Equipment](),
		Character:    ecs.NewStore[CharacterInfo](),
		Npc:          ecs.NewStore[Npc](),
		ItemDrop:     ecs.NewStore[ItemDrop](),
		ExpireTime:   ecs.NewStore[ExpireTime](),
		SpawnOrigin:  ecs.NewStore[SpawnOrigin](),
		SpawnPoint:   ecs.NewStore[SpawnPoint](),
		Store:        ecs.NewStore[PersonalStore](),
		GameClient:   ecs.NewStore[GameClient](),
	}

	reg := s.Entities.Registry()
	reg.Register(s.ClientEntity)
	reg.Register(s.Sector)
	reg.Register(s.Visibility)
	reg.Register(s.Position)
	reg.Register(s.Destination)
	reg.Register(s.Target)
	reg.Register(s.MoveSpeed)
	reg.Register(s.MoveMode)
	reg.Register(s.Command)
	reg.Register(s.NextCommand)
	reg.Register(s.Health)
	reg.Register(s.Mana)
	reg.Register(s.Experience)
	reg.Register(s.Damage)
	reg.Register(s.Team)
	reg.Register(s.Ability)
	reg.Register(s.Motion)
	reg.Register(s.Equipment)
	reg.Register(s.Character)
	reg.Register(s.Npc)
	reg.Register(s.ItemDrop)
	reg.Register(s.ExpireTime)
	reg.Register(s.SpawnOrigin)
	reg.Register(s.SpawnPoint)
	reg.Register(s.Store)
	reg.Register(s.GameClient)

	return s
}
