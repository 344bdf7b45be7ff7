package system

import (
	"time"

	"github.com/rosego/server/internal/core/ecs"
	"github.com/rosego/server/internal/core/event"
	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/data"
	"github.com/rosego/server/internal/messages"
	"github.com/rosego/server/internal/world"
)

// PendingSkillEffect is a cast whose wind-up is still playing. The effect
// lands when the simulation clock passes When; targets are re-validated then,
// not at cast time.
type PendingSkillEffect struct {
	When           time.Duration
	Caster         ecs.EntityID
	SkillID        data.SkillID
	TargetKind     world.SkillTargetKind
	TargetEntity   ecs.EntityID
	TargetPosition world.Vec2
}

// SkillEffectScheduler accepts casts scheduled by the command state machine.
type SkillEffectScheduler interface {
	Schedule(PendingSkillEffect)
}

// SkillEffectSystem holds casts until their wind-up elapses, then consumes
// mana and applies the skill: attacks feed the damage pipeline, heals apply
// here, buffs only announce themselves. A cast whose caster died or whose
// mana ran out during the wind-up is cancelled, not refunded.
type SkillEffectSystem struct {
	stores    *world.Stores
	gameData  *data.GameData
	clock     *world.Clock
	broadcast *messages.Broadcast
	damage    *event.Queue[DamageEvent]

	pending []PendingSkillEffect
}

func NewSkillEffectSystem(
	stores *world.Stores,
	gameData *data.GameData,
	clock *world.Clock,
	broadcast *messages.Broadcast,
	damage *event.Queue[DamageEvent],
) *SkillEffectSystem {
	return &SkillEffectSystem{
		stores:    stores,
		gameData:  gameData,
		clock:     clock,
		broadcast: broadcast,
		damage:    damage,
	}
}

func (s *SkillEffectSystem) Phase() coresys.Phase { return coresys.PhaseSkillEffect }

func (s *SkillEffectSystem) Schedule(effect PendingSkillEffect) {
	s.pending = append(s.pending, effect)
}

func (s *SkillEffectSystem) PendingCount() int { return len(s.pending) }

func (s *SkillEffectSystem) Update(dt time.Duration) {
	now := s.clock.Elapsed

	i := 0
	for i < len(s.pending) {
		if s.pending[i].When > now {
			i++
			continue
		}

		effect := s.pending[i]
		s.pending = append(s.pending[:i], s.pending[i+1:]...)
		s.apply(effect)
	}
}

func (s *SkillEffectSystem) apply(effect PendingSkillEffect) {
	st := s.stores

	skill := s.gameData.Skills.Get(effect.SkillID)
	if skill == nil {
		return
	}

	if !st.Entities.Alive(effect.Caster) {
		return
	}
	ce, ok := st.ClientEntity.Get(effect.Caster)
	if !ok {
		return
	}
	pos, ok := st.Position.Get(effect.Caster)
	if !ok {
		return
	}

	if skill.UseMana > 0 {
		mana, ok := st.Mana.Get(effect.Caster)
		if !ok || mana.MP < skill.UseMana {
			s.cancel(ce, effect.SkillID)
			return
		}
		mana.MP -= skill.UseMana
	}

	switch skill.Type {
	case data.SkillTypeAttack:
		target, ok := s.resolveTarget(pos.ZoneID, effect)
		if !ok {
			s.cancel(ce, effect.SkillID)
			return
		}
		s.damage.Emit(DamageEvent{
			Attacker:   effect.Caster,
			Defender:   target,
			HitCount:   1,
			FromSkill:  effect.SkillID,
			SkillPower: skill.Power,
		})

	case data.SkillTypeHeal:
		target, ok := s.resolveTarget(pos.ZoneID, effect)
		if !ok {
			s.cancel(ce, effect.SkillID)
			return
		}
		hp, ok := st.Health.Get(target)
		if !ok || hp.HP <= 0 {
			s.cancel(ce, effect.SkillID)
			return
		}
		healed := skill.Power
		if hp.HP+healed > hp.MaxHP {
			healed = hp.MaxHP - hp.HP
		}
		hp.HP += healed
		if tce, ok := st.ClientEntity.Get(target); ok {
			s.broadcast.SendEntityMessage(tce.ID, tce.ZoneID, messages.ApplySkillEffect{
				EntityID:       tce.ID,
				CasterEntityID: ce.ID,
				SkillID:        effect.SkillID,
				Value:          healed,
			})
		}

	case data.SkillTypeBuff:
		if target, ok := s.resolveTarget(pos.ZoneID, effect); ok {
			if tce, ok := st.ClientEntity.Get(target); ok {
				s.broadcast.SendEntityMessage(tce.ID, tce.ZoneID, messages.ApplySkillEffect{
					EntityID:       tce.ID,
					CasterEntityID: ce.ID,
					SkillID:        effect.SkillID,
				})
			}
		}

	case data.SkillTypeOther:
		// Nothing server-side beyond the finish notification.
	}

	s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.FinishCastingSkill{
		EntityID: ce.ID,
		SkillID:  effect.SkillID,
	})
}

// resolveTarget returns the entity the effect lands on. Position-targeted
// casts have no single recipient and resolve to the caster for bookkeeping.
func (s *SkillEffectSystem) resolveTarget(zoneID data.ZoneID, effect PendingSkillEffect) (ecs.EntityID, bool) {
	st := s.stores

	target := effect.TargetEntity
	if effect.TargetKind == world.SkillTargetPosition {
		target = effect.Caster
	}
	if target == ecs.NilEntity || !st.Entities.Alive(target) {
		return ecs.NilEntity, false
	}
	tpos, ok := st.Position.Get(target)
	if !ok || tpos.ZoneID != zoneID {
		return ecs.NilEntity, false
	}
	return target, true
}

func (s *SkillEffectSystem) cancel(ce *world.ClientEntity, skillID data.SkillID) {
	s.broadcast.SendEntityMessage(ce.ID, ce.ZoneID, messages.CancelCastingSkill{
		EntityID: ce.ID,
		SkillID:  skillID,
	})
}
