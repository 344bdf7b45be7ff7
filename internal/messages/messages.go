// Package messages defines the notification payloads this core emits and the
// per-tick buffer that scopes them to observers. Serialization and delivery
// belong to the network layer; this package only decides shape and timing.
package messages

import (
	"time"

	"github.com/rosego/server/internal/data"
)

// EntityID is a per-zone entity id as seen by clients. 0 means "none".
type EntityID uint16

// ServerMessage is implemented by every notification payload.
type ServerMessage interface {
	isServerMessage()
}

// SpawnStateKind summarizes what a newly perceived entity is doing, so the
// observer's client can start the right animation immediately.
type SpawnStateKind uint8

const (
	SpawnStateStop SpawnStateKind = iota
	SpawnStateMove
	SpawnStateAttack
	SpawnStateDie
	SpawnStateSit
	SpawnStatePersonalStore
	SpawnStateCastSkill
	SpawnStateEmote
	SpawnStatePickupItemDrop
)

type SpawnState struct {
	Kind           SpawnStateKind
	TargetEntityID EntityID
	TargetX        float32
	TargetY        float32
}

type MoveEntity struct {
	EntityID       EntityID
	TargetEntityID EntityID
	Distance       uint16
	X, Y           float32
	Z              uint16
	MoveMode       uint8
}

type StopMoveEntity struct {
	EntityID EntityID
	X, Y     float32
	Z        uint16
}

type AttackEntity struct {
	EntityID       EntityID
	TargetEntityID EntityID
	Distance       uint16
	X, Y           float32
	Z              uint16
}

type Teleport struct {
	EntityID EntityID
	ZoneID   data.ZoneID
	X, Y     float32
	RunMode  uint8
	RideMode uint8
}

type SpawnEntityCharacter struct {
	EntityID EntityID
	Name     string
	Gender   int
	X, Y, Z  float32
	HP       int32
	MaxHP    int32
	TeamID   int32
	Level    int32
	MoveMode uint8
	State    SpawnState

	// Set when the character has a personal store open.
	StoreSkin  int32
	StoreTitle string
	HasStore   bool
}

type SpawnEntityMonster struct {
	EntityID EntityID
	NpcID    data.NpcID
	X, Y, Z  float32
	HP       int32
	TeamID   int32
	MoveMode uint8
	State    SpawnState
}

type SpawnEntityNpc struct {
	EntityID  EntityID
	NpcID     data.NpcID
	Direction float32
	X, Y, Z   float32
	HP        int32
	TeamID    int32
	MoveMode  uint8
	State     SpawnState
}

type SpawnEntityItemDrop struct {
	EntityID      EntityID
	ItemNumber    int32
	Quantity      uint32
	X, Y, Z       float32
	RemainingTime time.Duration
	OwnerEntityID EntityID
}

type RemoveEntities struct {
	EntityIDs []EntityID
}

type SitToggle struct {
	EntityID EntityID
}

type UseEmote struct {
	EntityID EntityID
	MotionID data.MotionID
	IsStop   bool
}

type StartCastingSkill struct {
	EntityID EntityID
}

type CastSkillSelf struct {
	EntityID     EntityID
	SkillID      data.SkillID
	CastMotionID data.MotionID
}

type CastSkillTargetEntity struct {
	EntityID       EntityID
	SkillID        data.SkillID
	TargetEntityID EntityID
	TargetDistance float32
	TargetX        float32
	TargetY        float32
	CastMotionID   data.MotionID
}

type CastSkillTargetPosition struct {
	EntityID     EntityID
	SkillID      data.SkillID
	X, Y         float32
	CastMotionID data.MotionID
}

type FinishCastingSkill struct {
	EntityID EntityID
	SkillID  data.SkillID
}

// CancelCastingSkill aborts a wind-up the client was already animating.
type CancelCastingSkill struct {
	EntityID EntityID
	SkillID  data.SkillID
}

// ApplySkillEffect plays a skill's impact on its target.
type ApplySkillEffect struct {
	EntityID       EntityID
	CasterEntityID EntityID
	SkillID        data.SkillID
	Value          int32
}

type DamageEntity struct {
	AttackerEntityID EntityID
	DefenderEntityID EntityID
	Amount           int32
	IsCritical       bool
	IsKilled         bool
	FromSkill        data.SkillID // 0 when from a plain attack
}

// UpdateXP goes only to the rewarded client; XP is the new running total
// and SourceEntityID names the entity the reward came from, 0 when it has
// already left the zone.
type UpdateXP struct {
	XP             int64
	SourceEntityID EntityID
}

// PickupItemDropResult goes only to the picker's own client.
type PickupItemDropResult struct {
	DropEntityID EntityID
	ItemNumber   int32
	Quantity     uint32
	Success      bool
}

type OpenPersonalStore struct {
	EntityID EntityID
	Skin     int32
	Title    string
}

func (MoveEntity) isServerMessage()              {}
func (StopMoveEntity) isServerMessage()          {}
func (AttackEntity) isServerMessage()            {}
func (Teleport) isServerMessage()                {}
func (SpawnEntityCharacter) isServerMessage()    {}
func (SpawnEntityMonster) isServerMessage()      {}
func (SpawnEntityNpc) isServerMessage()          {}
func (SpawnEntityItemDrop) isServerMessage()     {}
func (RemoveEntities) isServerMessage()          {}
func (SitToggle) isServerMessage()               {}
func (UseEmote) isServerMessage()                {}
func (StartCastingSkill) isServerMessage()       {}
func (CastSkillSelf) isServerMessage()           {}
func (CastSkillTargetEntity) isServerMessage()   {}
func (CastSkillTargetPosition) isServerMessage() {}
func (FinishCastingSkill) isServerMessage()      {}
func (CancelCastingSkill) isServerMessage()      {}
func (ApplySkillEffect) isServerMessage()        {}
func (DamageEntity) isServerMessage()            {}
func (UpdateXP) isServerMessage()                {}
func (PickupItemDropResult) isServerMessage()    {}
func (OpenPersonalStore) isServerMessage()       {}
