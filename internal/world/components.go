package world

import (
	"time"

	"github.com/rosego/server/internal/core/ecs"
	"github.com/rosego/server/internal/data"
	"github.com/rosego/server/internal/messages"
)

// ZoneEntityID is an entity's id within one zone's slot pool. Valid ids are
// 1..MaxZoneEntities-1; 0 is reserved. It is the same type clients see in
// notification payloads.
type ZoneEntityID = messages.EntityID

// EntityKind tags what a zone entity is, for kind-filtered queries and for
// picking the spawn payload shape.
type EntityKind uint8

const (
	KindCharacter EntityKind = iota
	KindMonster
	KindNpc
	KindItemDrop
)

// ClientEntity is attached to an entity the instant it joins a zone and
// removed the instant it leaves. Holding one across a leave is invalid; any
// system keeping a reference must re-resolve through the ZoneRegistry.
type ClientEntity struct {
	ID     ZoneEntityID
	ZoneID data.ZoneID
	Kind   EntityKind
}

// SectorCoord addresses one cell of a zone's sector grid.
type SectorCoord struct {
	X, Y uint32
}

// Sector records which grid cell the entity currently occupies.
type Sector struct {
	Coord SectorCoord
}

// Visibility is the set of zone entity ids this observer currently perceives.
// Updated in place every tick; never reallocated.
type Visibility struct {
	Entities EntitySet
}

// Position is the entity's zone and world position.
type Position struct {
	ZoneID data.ZoneID
	Pos    Vec3
}

// Destination is present while the entity is walking somewhere.
type Destination struct {
	Pos Vec3
}

// Target is present while the entity's current command involves another
// entity (attack, follow, pickup, targeted cast).
type Target struct {
	Entity ecs.EntityID
}

type MoveMode uint8

const (
	MoveModeWalk MoveMode = iota
	MoveModeRun
	MoveModeDrive
)

// MoveSpeed is the entity's current movement speed in world units/second.
type MoveSpeed struct {
	Speed float32
}

type HealthPoints struct {
	HP    int32
	MaxHP int32
}

type ManaPoints struct {
	MP    int32
	MaxMP int32
}

// DamageSource accumulates one attacker's contribution against an entity.
type DamageSource struct {
	Attacker        ecs.EntityID
	TotalDamage     int32
	FirstDamageTime time.Duration
	LastDamageTime  time.Duration
}

// DamageSources tracks who hurt a monster, bounded by Max entries. A new
// attacker past the cap evicts the entry with the stalest last hit.
type DamageSources struct {
	Max     int
	Sources []DamageSource
}

func (d *DamageSources) Record(attacker ecs.EntityID, amount int32, now time.Duration) {
	for i := range d.Sources {
		if d.Sources[i].Attacker == attacker {
			d.Sources[i].TotalDamage += amount
			d.Sources[i].LastDamageTime = now
			return
		}
	}
	if d.Max > 0 && len(d.Sources) >= d.Max {
		oldest := 0
		for i := 1; i < len(d.Sources); i++ {
			if d.Sources[i].LastDamageTime < d.Sources[oldest].LastDamageTime {
				oldest = i
			}
		}
		d.Sources = append(d.Sources[:oldest], d.Sources[oldest+1:]...)
	}
	d.Sources = append(d.Sources, DamageSource{
		Attacker:        attacker,
		TotalDamage:     amount,
		FirstDamageTime: now,
		LastDamageTime:  now,
	})
}

type Team struct {
	ID int32
}

// AbilityValues carries the derived combat stats consulted by the command
// state machine. Recomputing them from equipment and buffs is the stat
// pipeline's job, not this core's.
type AbilityValues struct {
	Level        int32
	AttackPower  int32
	Defence      int32
	AttackSpeed  int32 // percent, 100 = normal
	AttackRange  float32
	WalkSpeed    float32
	RunSpeed     float32
	DriveSpeed   float32
	Intelligence int32
}

func (a *AbilityValues) MoveSpeed(mode MoveMode) float32 {
	switch mode {
	case MoveModeWalk:
		return a.WalkSpeed
	case MoveModeDrive:
		return a.DriveSpeed
	default:
		return a.RunSpeed
	}
}

// MotionSet caches the animation clips the command state machine times
// against. For characters the clips vary with the equipped weapon's motion
// type; the equip pipeline refreshes this component on weapon change.
type MotionSet struct {
	NpcID            data.NpcID // 0 for characters
	WeaponMotionType int
	Gender           int

	Attack         *data.MotionFileData
	Die            *data.MotionFileData
	PickupItemDrop *data.MotionFileData
	SitSitting     *data.MotionFileData
	SitStanding    *data.MotionFileData
}

// EquipmentItem is the durability-bearing slice of an equipped item.
// ExperiencePoints is a character's accumulated XP. Mutated only by the
// reward pipeline and read back by the persistence snapshot.
type ExperiencePoints struct {
	XP int64
}

type EquipmentItem struct {
	ItemNumber int32
	Life       uint16
	// Durability shifts the per-swing wear roll; 111 and above never wears.
	Durability uint16
}

type AmmoSlot struct {
	ItemNumber int32
	Quantity   uint32
}

// Equipment holds only what command validation needs: the weapon, the
// vehicle engine and arms, and the ammo slots. Full inventory lives
// elsewhere.
type Equipment struct {
	Weapon *EquipmentItem
	Engine *EquipmentItem
	Arms   *EquipmentItem
	Ammo   [data.NumAmmoSlots]*AmmoSlot
}

// TakeAmmo consumes n rounds from the given slot. Returns false, consuming
// nothing, when the slot is empty or short.
func (e *Equipment) TakeAmmo(idx data.AmmoIndex, n uint32) bool {
	if idx < 0 || int(idx) >= len(e.Ammo) {
		return false
	}
	slot := e.Ammo[idx]
	if slot == nil || slot.Quantity < n {
		return false
	}
	slot.Quantity -= n
	return true
}

type CharacterInfo struct {
	CharacterID int64 // persistence key
	Name        string
	Gender      int
}

type Npc struct {
	ID data.NpcID
	// Direction is the standing facing for stationary NPCs, in degrees.
	Direction float32
}

type ItemDrop struct {
	ItemNumber int32
	Quantity   uint32
	Owner      ecs.EntityID // entity with pickup priority, nil for anyone
}

// ExpireTime despawns the entity when the simulation clock passes At.
type ExpireTime struct {
	At time.Duration
}

// SpawnOrigin links a spawned monster back to its spawn point so the death
// pipeline can decrement the point's live count.
type SpawnOrigin struct {
	SpawnPoint ecs.EntityID
}

// SpawnPoint is the mutable state of a monster spawn point.
type SpawnPoint struct {
	Data *data.SpawnPointData

	CurrentTacticsValue int
	NumAliveMonsters    int
	TimeSinceLastCheck  time.Duration
}

// PersonalStore is present while a character has a vending store open.
type PersonalStore struct {
	Skin  int32
	Title string
}

// GameClient marks an entity as a connected observer. The network layer
// drains Tx; systems never block on it.
type GameClient struct {
	Tx chan messages.ServerMessage
}

// Send queues a message for the client, dropping it when the client's queue
// is full (slow consumer; the session layer handles the disconnect).
func (c *GameClient) Send(msg messages.ServerMessage) {
	select {
	case c.Tx <- msg:
	default:
	}
}
