package system

import (
	"math/rand"
	"time"

	"github.com/rosego/server/internal/core/ecs"
	"github.com/rosego/server/internal/core/event"
	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/data"
	"github.com/rosego/server/internal/messages"
	"github.com/rosego/server/internal/world"
)

const (
	characterMoveToDistance float32 = 1000.0
	npcMoveToDistance       float32 = 250.0
	itemDropMoveToDistance  float32 = 150.0
	itemPickupDistance      float32 = 200.0

	// Attack speed below this still plays the attack motion at 30%.
	minAttackSpeedPercent = 30
)

// CommandSystem drives the per-entity action state machine: it announces
// queued requests to observers, times the current command's motion, and once
// the motion completes promotes the queued NextCommand into Command.
//
// Move and Attack requests deliberately survive their own promotion: a queued
// Attack re-promotes every time the attack motion finishes, which is what
// makes an entity keep swinging (or keep chasing) until the target dies or
// the request is replaced.
type CommandSystem struct {
	stores    *world.Stores
	gameData  *data.GameData
	clock     *world.Clock
	broadcast *messages.Broadcast
	damage    *event.Queue[DamageEvent]
	pickups   *event.Queue[PickupItemEvent]
	skills    SkillEffectScheduler
	rng       *rand.Rand
}

func NewCommandSystem(
	stores *world.Stores,
	gameData *data.GameData,
	clock *world.Clock,
	broadcast *messages.Broadcast,
	damage *event.Queue[DamageEvent],
	pickups *event.Queue[PickupItemEvent],
	skills SkillEffectScheduler,
	seed int64,
) *CommandSystem {
	return &CommandSystem{
		stores:    stores,
		gameData:  gameData,
		clock:     clock,
		broadcast: broadcast,
		damage:    damage,
		pickups:   pickups,
		skills:    skills,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (s *CommandSystem) Phase() coresys.Phase { return coresys.PhaseCommand }

func (s *CommandSystem) Update(dt time.Duration) {
	st := s.stores

	ecs.Each2(st.Command, st.NextCommand, func(entity ecs.EntityID, cmd *world.Command, next *world.NextCommand) {
		ce, ok := st.ClientEntity.Get(entity)
		if !ok {
			return
		}
		pos, ok := st.Position.Get(entity)
		if !ok {
			return
		}
		ability, ok := st.Ability.Get(entity)
		if !ok {
			return
		}
		motion, ok := st.Motion.Get(entity)
		if !ok {
			return
		}

		if next.Command != nil && !next.SentServerMessage {
			s.preNotify(entity, ce, pos, next)
			next.SentServerMessage = true
		}

		cmd.Duration += dt

		if cmd.IsDie() {
			// The dead perform nothing further; the duration keeps
			// accumulating so corpse cleanup can time against it.
			st.Target.Remove(entity)
			st.Destination.Remove(entity)
			if next.Command != nil {
				next.Clear()
			}
			return
		}

		required := cmd.Required
		hasRequired := cmd.HasRequired
		switch cmd.Kind {
		case world.CommandAttack:
			speed := ability.AttackSpeed
			if speed < minAttackSpeedPercent {
				speed = minAttackSpeedPercent
			}
			required = time.Duration(float64(required) * 100.0 / float64(speed))
		case world.CommandEmote:
			// Any request interrupts an emote.
			if next.Command != nil {
				hasRequired = false
			}
		}

		if hasRequired && cmd.Duration < required {
			return
		}

		if cmd.Kind == world.CommandSitting {
			*cmd = world.SitCommand()
		}

		if next.Command == nil {
			if !cmd.IsManualComplete() {
				*cmd = world.StopCommand()
			}
			return
		}

		if cmd.Kind == world.CommandSit {
			// Must stand back up before performing anything else. The
			// queued request stays put and promotes once standing finishes.
			duration := motionDuration(motion.SitStanding, 0)
			*cmd = world.StandingCommand(duration)
			s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.SitToggle{EntityID: ce.ID})
			return
		}

		s.promote(entity, ce, pos, ability, motion, cmd, next)
	})
}

// preNotify sends the one-shot "about to do X" message for a freshly queued
// request. Attack and entity-targeted skill requests whose target is already
// gone are downgraded here to a stop request with notification.
func (s *CommandSystem) preNotify(entity ecs.EntityID, ce *world.ClientEntity, pos *world.Position, next *world.NextCommand) {
	cmd := next.Command

	switch cmd.Kind {
	case world.CommandDie:
		panic("die must be set as the current command, never queued")

	case world.CommandMove:
		var targetID messages.EntityID
		if cmd.Move.Target != ecs.NilEntity {
			if tce, tpos, ok := s.resolveZoneEntity(pos.ZoneID, cmd.Move.Target); ok {
				cmd.Move.Destination = tpos.Pos
				targetID = tce.ID
			} else {
				cmd.Move.Target = ecs.NilEntity
			}
		}

		dest := cmd.Move.Destination
		distance := pos.Pos.XY().Distance(dest.XY())
		mode := s.effectiveMoveMode(entity, cmd)
		s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.MoveEntity{
			EntityID:       ce.ID,
			TargetEntityID: targetID,
			Distance:       uint16(distance),
			X:              dest.X,
			Y:              dest.Y,
			Z:              uint16(dest.Z),
			MoveMode:       uint8(mode),
		})

	case world.CommandAttack:
		if tce, tpos, ok := s.resolveAttackTarget(pos.ZoneID, cmd.Attack.Target); ok {
			distance := pos.Pos.XY().Distance(tpos.Pos.XY())
			s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.AttackEntity{
				EntityID:       ce.ID,
				TargetEntityID: tce.ID,
				Distance:       uint16(distance),
				X:              tpos.Pos.X,
				Y:              tpos.Pos.Y,
				Z:              uint16(tpos.Pos.Z),
			})
		} else {
			next.Set(world.StopCommandWithMessage())
		}

	case world.CommandCastSkill:
		cast := &cmd.CastSkill
		switch cast.TargetKind {
		case world.SkillTargetSelf:
			s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.CastSkillSelf{
				EntityID:     ce.ID,
				SkillID:      cast.SkillID,
				CastMotionID: cast.CastMotionID,
			})
		case world.SkillTargetEntity:
			if tce, tpos, ok := s.resolveZoneEntity(pos.ZoneID, cast.TargetEntity); ok {
				distance := pos.Pos.XY().Distance(tpos.Pos.XY())
				s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.CastSkillTargetEntity{
					EntityID:       ce.ID,
					SkillID:        cast.SkillID,
					TargetEntityID: tce.ID,
					TargetDistance: distance,
					TargetX:        tpos.Pos.X,
					TargetY:        tpos.Pos.Y,
					CastMotionID:   cast.CastMotionID,
				})
			} else {
				next.Set(world.StopCommandWithMessage())
			}
		case world.SkillTargetPosition:
			s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.CastSkillTargetPosition{
				EntityID:     ce.ID,
				SkillID:      cast.SkillID,
				X:            cast.TargetPosition.X,
				Y:            cast.TargetPosition.Y,
				CastMotionID: cast.CastMotionID,
			})
		}
	}
}

// promote replaces the current command with the queued request.
func (s *CommandSystem) promote(
	entity ecs.EntityID,
	ce *world.ClientEntity,
	pos *world.Position,
	ability *world.AbilityValues,
	motion *world.MotionSet,
	cmd *world.Command,
	next *world.NextCommand,
) {
	st := s.stores

	switch next.Command.Kind {
	case world.CommandStop:
		s.commandStop(entity, ce, pos, cmd, next.Command.Stop.SendMessage)
		next.Clear()

	case world.CommandMove:
		s.promoteMove(entity, pos, ability, cmd, next)

	case world.CommandPickupItemDrop:
		target := next.Command.Pickup.Target
		if s.validPickupTarget(pos, target) {
			s.pickups.Emit(PickupItemEvent{Picker: entity, Item: target})
			duration := motionDuration(motion.PickupItemDrop, time.Second)
			*cmd = world.PickupItemDropCommand(target, duration)
		} else {
			*cmd = world.StopCommand()
		}
		st.Destination.Remove(entity)
		st.Target.Remove(entity)
		next.Clear()

	case world.CommandAttack:
		s.promoteAttack(entity, ce, pos, ability, motion, cmd, next)

	case world.CommandCastSkill:
		s.promoteCastSkill(entity, ce, pos, ability, motion, cmd, next)

	case world.CommandPersonalStore:
		ps, ok := st.Store.Get(entity)
		if ok {
			s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.OpenPersonalStore{
				EntityID: ce.ID,
				Skin:     ps.Skin,
				Title:    ps.Title,
			})
		}
		*cmd = world.PersonalStoreCommand()
		st.Destination.Remove(entity)
		st.Target.Remove(entity)
		next.Clear()

	case world.CommandSitting:
		duration := motionDuration(motion.SitSitting, 0)
		*cmd = world.SittingCommand(duration)
		next.Clear()
		s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.SitToggle{EntityID: ce.ID})

	case world.CommandSit, world.CommandStanding:
		// Both transitions happen before promotion; the request is spent.
		next.Clear()

	case world.CommandEmote:
		emote := next.Command.Emote
		duration := s.entityMotionDuration(motion, emote.MotionID, 0)
		// Sent at promotion rather than queue time, the client plays it
		// immediately on receipt.
		s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.UseEmote{
			EntityID: ce.ID,
			MotionID: emote.MotionID,
			IsStop:   emote.IsStop,
		})
		*cmd = world.EmoteCommand(emote.MotionID, emote.IsStop, duration)
		next.Clear()

	case world.CommandDie:
		// Unreachable, preNotify panics on a queued die.
	}
}

func (s *CommandSystem) promoteMove(
	entity ecs.EntityID,
	pos *world.Position,
	ability *world.AbilityValues,
	cmd *world.Command,
	next *world.NextCommand,
) {
	st := s.stores
	move := &next.Command.Move

	if move.Target != ecs.NilEntity {
		if tce, tpos, ok := s.resolveZoneEntity(pos.ZoneID, move.Target); ok {
			var requiredDistance float32
			switch tce.Kind {
			case world.KindCharacter:
				requiredDistance = characterMoveToDistance
			case world.KindMonster, world.KindNpc:
				requiredDistance = npcMoveToDistance
			case world.KindItemDrop:
				requiredDistance = itemDropMoveToDistance
			}

			if requiredDistance > 0 {
				distance := pos.Pos.XY().Distance(tpos.Pos.XY())
				if distance < requiredDistance {
					// Already close enough.
					move.Destination = pos.Pos
				} else {
					offset := tpos.Pos.XY().Sub(pos.Pos.XY()).Normalize().Scale(requiredDistance)
					move.Destination = world.Vec3{
						X: tpos.Pos.X - offset.X,
						Y: tpos.Pos.Y - offset.Y,
						Z: tpos.Pos.Z,
					}
				}
			} else {
				move.Destination = tpos.Pos
			}
		} else {
			move.Target = ecs.NilEntity
			st.Target.Remove(entity)
		}
	}

	if move.HasMoveMode {
		current, ok := st.MoveMode.Get(entity)
		if ok && *current != move.MoveMode {
			*current = move.MoveMode
			st.MoveSpeed.Set(entity, &world.MoveSpeed{Speed: ability.MoveSpeed(move.MoveMode)})
		}
	}

	distance := pos.Pos.XY().Distance(move.Destination.XY())
	if distance < 0.1 {
		*cmd = world.StopCommand()
		st.Target.Remove(entity)
		st.Destination.Remove(entity)
		return
	}

	*cmd = world.MoveCommand(move.Destination, move.Target, move.MoveMode, move.HasMoveMode)
	st.Destination.Set(entity, &world.Destination{Pos: move.Destination})
	if move.Target != ecs.NilEntity {
		st.Target.Set(entity, &world.Target{Entity: move.Target})
	}
	// The request stays queued: a follow target keeps being followed.
}

func (s *CommandSystem) promoteAttack(
	entity ecs.EntityID,
	ce *world.ClientEntity,
	pos *world.Position,
	ability *world.AbilityValues,
	motion *world.MotionSet,
	cmd *world.Command,
	next *world.NextCommand,
) {
	st := s.stores
	target := next.Command.Attack.Target

	_, tpos, ok := s.resolveAttackTarget(pos.ZoneID, target)
	if !ok {
		s.commandStop(entity, ce, pos, cmd, true)
		next.Clear()
		return
	}

	distance := pos.Pos.XY().Distance(tpos.Pos.XY())
	if distance >= ability.AttackRange {
		// Not in range, chase at a run. The request stays queued so the
		// attack resumes once close enough.
		*cmd = world.MoveCommand(tpos.Pos, target, world.MoveModeRun, true)
		st.Destination.Set(entity, &world.Destination{Pos: tpos.Pos})
		st.Target.Set(entity, &world.Target{Entity: target})
		return
	}

	cancelAttack := false
	var attackDuration time.Duration
	var hitCount int
	if motion.Attack != nil {
		attackDuration = motion.Attack.Duration
		hitCount = motion.Attack.TotalAttackFrames
	} else {
		// No attack animation.
		cancelAttack = true
	}

	equipment, _ := st.Equipment.Get(entity)
	mode, _ := st.MoveMode.Get(entity)

	if mode != nil && *mode == world.MoveModeDrive {
		if equipment != nil && equipment.Engine != nil && equipment.Engine.Life == 0 {
			// Broken engine.
			cancelAttack = true
		}
		if equipment != nil && equipment.Arms != nil && equipment.Arms.Life == 0 {
			// Broken vehicle weapon.
			cancelAttack = true
		}
	} else if equipment != nil {
		if equipment.Weapon != nil && equipment.Weapon.Life == 0 {
			// Broken weapon.
			cancelAttack = true
		}

		if !cancelAttack && equipment.Weapon != nil {
			if weapon := s.gameData.Items.Weapon(equipment.Weapon.ItemNumber); weapon != nil && weapon.Ammo != data.AmmoNone {
				if !equipment.TakeAmmo(weapon.Ammo, uint32(hitCount)) {
					cancelAttack = true
				}
			}
		}
	}

	if cancelAttack {
		s.commandStop(entity, ce, pos, cmd, true)
		next.Clear()
		return
	}

	if equipment != nil {
		if mode != nil && *mode == world.MoveModeDrive {
			// Each swing burns engine life and wears the vehicle weapon.
			if equipment.Engine != nil && equipment.Engine.Life > 0 {
				equipment.Engine.Life--
			}
			s.wearItem(equipment.Arms)
		} else if st.Character.Has(entity) {
			s.wearItem(equipment.Weapon)
		}
	}

	*cmd = world.AttackCommand(target, attackDuration)
	st.Destination.Remove(entity)
	st.Target.Set(entity, &world.Target{Entity: target})

	s.damage.Emit(DamageEvent{
		Attacker: entity,
		Defender: target,
		HitCount: hitCount,
	})
	// The request stays queued so the next swing starts when this one ends.
}

// wearItem rolls per-swing wear against the item's durability. Rolls run
// 1..710 against durability+600, so durability 111 and above never wears.
func (s *CommandSystem) wearItem(item *world.EquipmentItem) {
	if item == nil || item.Life == 0 {
		return
	}
	if s.rng.Intn(710)+1 >= int(item.Durability)+600 {
		item.Life--
	}
}

func (s *CommandSystem) promoteCastSkill(
	entity ecs.EntityID,
	ce *world.ClientEntity,
	pos *world.Position,
	ability *world.AbilityValues,
	motion *world.MotionSet,
	cmd *world.Command,
	next *world.NextCommand,
) {
	st := s.stores
	cast := next.Command.CastSkill

	skill := s.gameData.Skills.Get(cast.SkillID)
	if skill == nil {
		*cmd = world.StopCommand()
		next.Clear()
		return
	}

	var targetPos *world.Vec3
	targetEntity := ecs.NilEntity
	switch cast.TargetKind {
	case world.SkillTargetEntity:
		if _, tpos, ok := s.resolveZoneEntity(pos.ZoneID, cast.TargetEntity); ok {
			p := tpos.Pos
			targetPos = &p
			targetEntity = cast.TargetEntity
		}
	case world.SkillTargetPosition:
		p := world.Vec3{X: cast.TargetPosition.X, Y: cast.TargetPosition.Y}
		targetPos = &p
	}

	castRange := skill.CastRange
	if castRange <= 0 {
		castRange = ability.AttackRange
	}

	inDistance := true
	if targetPos != nil {
		inDistance = pos.Pos.XY().Distance(targetPos.XY()) < castRange
	}

	if !inDistance {
		*cmd = world.MoveCommand(*targetPos, targetEntity, world.MoveModeRun, true)
		st.Destination.Set(entity, &world.Destination{Pos: *targetPos})
		if targetEntity != ecs.NilEntity {
			st.Target.Set(entity, &world.Target{Entity: targetEntity})
		} else {
			st.Target.Remove(entity)
		}
		return
	}

	castMotionID := cast.CastMotionID
	if castMotionID == 0 {
		castMotionID = skill.CastingMotionID
	}
	actionMotionID := cast.ActionMotionID
	if actionMotionID == 0 {
		actionMotionID = skill.ActionMotionID
	}

	castingDuration := scaleDuration(s.entityMotionDuration(motion, castMotionID, 0), skill.CastingMotionSpeed)
	actionDuration := scaleDuration(s.entityMotionDuration(motion, actionMotionID, 0), skill.ActionMotionSpeed)

	// Entity-targeted casts announce the wind-up; self and ground casts were
	// already fully described by the queue-time message.
	if targetEntity != ecs.NilEntity {
		s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.StartCastingSkill{EntityID: ce.ID})
	}

	effect := PendingSkillEffect{
		When:       s.clock.Elapsed + castingDuration,
		Caster:     entity,
		SkillID:    cast.SkillID,
		TargetKind: cast.TargetKind,
	}
	switch cast.TargetKind {
	case world.SkillTargetSelf:
		effect.TargetEntity = entity
	case world.SkillTargetEntity:
		effect.TargetEntity = cast.TargetEntity
	case world.SkillTargetPosition:
		effect.TargetPosition = cast.TargetPosition
	}
	s.skills.Schedule(effect)

	switch skill.Action {
	case data.SkillActionStop:
		next.Clear()
	case data.SkillActionAttack:
		if targetEntity != ecs.NilEntity {
			next.SetQuiet(world.AttackCommand(targetEntity, 0))
		} else {
			next.Clear()
		}
	case data.SkillActionRestore:
		switch cmd.Kind {
		case world.CommandStop, world.CommandMove, world.CommandAttack:
			restored := *cmd
			restored.Duration = 0
			next.SetQuiet(restored)
		default:
			next.Clear()
		}
	}

	*cmd = world.CastSkillCommand(cast, castingDuration, actionDuration)
	st.Destination.Remove(entity)
	if targetEntity != ecs.NilEntity {
		st.Target.Set(entity, &world.Target{Entity: targetEntity})
	} else {
		st.Target.Remove(entity)
	}
}

// commandStop clears movement and targeting state and replaces the current
// command with stop, optionally telling observers where the entity halted.
func (s *CommandSystem) commandStop(entity ecs.EntityID, ce *world.ClientEntity, pos *world.Position, cmd *world.Command, sendMessage bool) {
	st := s.stores
	st.Destination.Remove(entity)
	st.Target.Remove(entity)

	if sendMessage {
		s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.StopMoveEntity{
			EntityID: ce.ID,
			X:        pos.Pos.X,
			Y:        pos.Pos.Y,
			Z:        uint16(pos.Pos.Z),
		})
	}

	*cmd = world.StopCommand()
}

// resolveZoneEntity looks up a live entity in the same zone as the actor.
func (s *CommandSystem) resolveZoneEntity(zoneID data.ZoneID, target ecs.EntityID) (*world.ClientEntity, *world.Position, bool) {
	st := s.stores
	if target == ecs.NilEntity || !st.Entities.Alive(target) {
		return nil, nil, false
	}
	tce, ok := st.ClientEntity.Get(target)
	if !ok {
		return nil, nil, false
	}
	tpos, ok := st.Position.Get(target)
	if !ok || tpos.ZoneID != zoneID {
		return nil, nil, false
	}
	return tce, tpos, true
}

// resolveAttackTarget additionally requires the target to still be alive.
func (s *CommandSystem) resolveAttackTarget(zoneID data.ZoneID, target ecs.EntityID) (*world.ClientEntity, *world.Position, bool) {
	tce, tpos, ok := s.resolveZoneEntity(zoneID, target)
	if !ok {
		return nil, nil, false
	}
	hp, ok := s.stores.Health.Get(target)
	if !ok || hp.HP <= 0 {
		return nil, nil, false
	}
	return tce, tpos, true
}

func (s *CommandSystem) validPickupTarget(pos *world.Position, target ecs.EntityID) bool {
	_, tpos, ok := s.resolveZoneEntity(pos.ZoneID, target)
	if !ok {
		return false
	}
	if !s.stores.ItemDrop.Has(target) {
		return false
	}
	return pos.Pos.XY().Distance(tpos.Pos.XY()) <= itemPickupDistance
}

func (s *CommandSystem) effectiveMoveMode(entity ecs.EntityID, cmd *world.Command) world.MoveMode {
	if cmd.Move.HasMoveMode {
		return cmd.Move.MoveMode
	}
	if mode, ok := s.stores.MoveMode.Get(entity); ok {
		return *mode
	}
	return world.MoveModeRun
}

// entityMotionDuration resolves a motion clip's length for this entity,
// through the npc motion table or through the weapon/gender character
// variants.
func (s *CommandSystem) entityMotionDuration(motion *world.MotionSet, id data.MotionID, fallback time.Duration) time.Duration {
	if id == 0 {
		return fallback
	}
	var md *data.MotionFileData
	if motion.NpcID != 0 {
		md = s.gameData.Motions.NpcMotion(motion.NpcID, id)
	} else {
		md = s.gameData.Motions.CharacterMotion(id, motion.WeaponMotionType, motion.Gender)
	}
	if md == nil {
		return fallback
	}
	return md.Duration
}

func motionDuration(md *data.MotionFileData, fallback time.Duration) time.Duration {
	if md == nil {
		return fallback
	}
	return md.Duration
}

func scaleDuration(d time.Duration, speed float32) time.Duration {
	if speed <= 0 {
		return d
	}
	return time.Duration(float64(d) * float64(speed))
}
