package world

import (
	"math"
	"time"

	"github.com/rosego/server/internal/core/ecs"
	"github.com/rosego/server/internal/data"
)

// CommandKind tags the closed set of actions an entity can perform.
type CommandKind uint8

const (
	CommandStop CommandKind = iota
	CommandMove
	CommandAttack
	CommandPickupItemDrop
	CommandPersonalStore
	CommandCastSkill
	CommandSitting // transition into Sit
	CommandSit
	CommandStanding // transition out of Sit
	CommandEmote
	CommandDie
)

// MoveData is the payload of a Move command. Target, when set, is followed:
// the destination is re-resolved to the target's live position on promotion.
type MoveData struct {
	Destination Vec3
	Target      ecs.EntityID // nil when moving to a fixed point
	MoveMode    MoveMode
	HasMoveMode bool
}

type AttackData struct {
	Target ecs.EntityID
}

type PickupData struct {
	Target ecs.EntityID
}

// SkillTargetKind says what a cast is aimed at.
type SkillTargetKind uint8

const (
	SkillTargetSelf SkillTargetKind = iota
	SkillTargetEntity
	SkillTargetPosition
)

type CastSkillData struct {
	SkillID        data.SkillID
	TargetKind     SkillTargetKind
	TargetEntity   ecs.EntityID
	TargetPosition Vec2

	// Motion overrides; 0 falls back to the skill template's motion ids.
	CastMotionID   data.MotionID
	ActionMotionID data.MotionID

	// Consumed item slot number, -1 when the cast consumes nothing.
	UseItemSlot int
}

type EmoteData struct {
	MotionID data.MotionID
	IsStop   bool
}

// DieData records who and what killed the entity, for the death pipeline.
type DieData struct {
	Killer ecs.EntityID
	Damage int32
}

type StopData struct {
	// SendMessage makes promotion broadcast a StopMoveEntity notification.
	SendMessage bool
}

// Command is the action an entity is currently performing, together with its
// animation timing. Duration accumulates tick deltas; once it passes the
// required duration the command completes. A command without a required
// duration is immediately interruptible.
type Command struct {
	Kind CommandKind

	Stop      StopData
	Move      MoveData
	Attack    AttackData
	Pickup    PickupData
	CastSkill CastSkillData
	Emote     EmoteData
	Die       DieData

	Duration    time.Duration
	Required    time.Duration
	HasRequired bool
}

// NextCommand is an action requested to begin once the current command
// finishes. SentServerMessage records whether the one-shot "about to do X"
// notification has already gone out for this request.
type NextCommand struct {
	Command           *Command
	SentServerMessage bool
}

func (n *NextCommand) Clear() {
	n.Command = nil
	n.SentServerMessage = false
}

// Set replaces the queued request. The pre-notification flag resets so the
// new request announces itself.
func (n *NextCommand) Set(cmd Command) {
	n.Command = &cmd
	n.SentServerMessage = false
}

// SetQuiet queues a request whose pre-notification is suppressed (used by
// skill follow-up behavior, where the client already knows).
func (n *NextCommand) SetQuiet(cmd Command) {
	n.Command = &cmd
	n.SentServerMessage = true
}

func (c *Command) IsDie() bool  { return c.Kind == CommandDie }
func (c *Command) IsStop() bool { return c.Kind == CommandStop }

func (c *Command) IsSitState() bool {
	return c.Kind == CommandSit || c.Kind == CommandSitting
}

// IsManualComplete reports whether the command stays active after its motion
// finishes until something explicitly replaces it.
func (c *Command) IsManualComplete() bool {
	switch c.Kind {
	case CommandSit, CommandPersonalStore, CommandStop:
		return true
	}
	return false
}

// TargetEntity returns the entity this command is directed at, or nil.
func (c *Command) TargetEntity() ecs.EntityID {
	switch c.Kind {
	case CommandAttack:
		return c.Attack.Target
	case CommandMove:
		return c.Move.Target
	case CommandPickupItemDrop:
		return c.Pickup.Target
	case CommandCastSkill:
		if c.CastSkill.TargetKind == SkillTargetEntity {
			return c.CastSkill.TargetEntity
		}
	}
	return ecs.NilEntity
}

func newCommand(kind CommandKind, required time.Duration, hasRequired bool) Command {
	return Command{Kind: kind, Required: required, HasRequired: hasRequired}
}

func StopCommand() Command {
	return newCommand(CommandStop, 0, false)
}

func StopCommandWithMessage() Command {
	c := newCommand(CommandStop, 0, false)
	c.Stop.SendMessage = true
	return c
}

func MoveCommand(destination Vec3, target ecs.EntityID, mode MoveMode, hasMode bool) Command {
	c := newCommand(CommandMove, 0, false)
	c.Move = MoveData{Destination: destination, Target: target, MoveMode: mode, HasMoveMode: hasMode}
	return c
}

func AttackCommand(target ecs.EntityID, duration time.Duration) Command {
	c := newCommand(CommandAttack, duration, true)
	c.Attack = AttackData{Target: target}
	return c
}

func PickupItemDropCommand(target ecs.EntityID, duration time.Duration) Command {
	c := newCommand(CommandPickupItemDrop, duration, true)
	c.Pickup = PickupData{Target: target}
	return c
}

// PersonalStoreCommand never completes by timer; closing the store replaces
// the command explicitly.
func PersonalStoreCommand() Command {
	return newCommand(CommandPersonalStore, time.Duration(math.MaxInt64), true)
}

func CastSkillCommand(cast CastSkillData, castingDuration, actionDuration time.Duration) Command {
	c := newCommand(CommandCastSkill, castingDuration+actionDuration, true)
	c.CastSkill = cast
	return c
}

func SittingCommand(duration time.Duration) Command {
	return newCommand(CommandSitting, duration, true)
}

func SitCommand() Command {
	return newCommand(CommandSit, 0, false)
}

func StandingCommand(duration time.Duration) Command {
	return newCommand(CommandStanding, duration, true)
}

func EmoteCommand(motionID data.MotionID, isStop bool, duration time.Duration) Command {
	c := newCommand(CommandEmote, duration, true)
	c.Emote = EmoteData{MotionID: motionID, IsStop: isStop}
	return c
}

// DieCommand is only ever set directly by the damage pipeline; it is never
// requested through NextCommand.
func DieCommand(killer ecs.EntityID, damage int32, duration time.Duration) Command {
	c := newCommand(CommandDie, duration, true)
	c.Die = DieData{Killer: killer, Damage: damage}
	return c
}
