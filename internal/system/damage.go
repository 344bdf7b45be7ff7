package system

import (
	"time"

	"github.com/rosego/server/internal/core/ecs"
	"github.com/rosego/server/internal/core/event"
	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/data"
	"github.com/rosego/server/internal/messages"
	"github.com/rosego/server/internal/scripting"
	"github.com/rosego/server/internal/world"
)

// DamageCalculator resolves damage amounts. Production wiring is the Lua
// scripting engine; tests substitute a fixed-value stub.
type DamageCalculator interface {
	CalcAttackDamage(scripting.AttackContext) scripting.DamageResult
	CalcSkillDamage(scripting.SkillDamageContext) scripting.DamageResult
}

// DamageSystem drains the damage queue and applies each hit to its defender.
// This is the only place hit points decrease and the only place a Die command
// is set, so death always carries its killer and a die motion duration.
type DamageSystem struct {
	stores     *world.Stores
	gameData   *data.GameData
	broadcast  *messages.Broadcast
	damage     *event.Queue[DamageEvent]
	xp         *event.Queue[RewardXPEvent]
	calculator DamageCalculator
	clock      *world.Clock
	xpRate     int32
}

func NewDamageSystem(
	stores *world.Stores,
	gameData *data.GameData,
	broadcast *messages.Broadcast,
	damage *event.Queue[DamageEvent],
	xp *event.Queue[RewardXPEvent],
	calculator DamageCalculator,
	clock *world.Clock,
	xpRate int32,
) *DamageSystem {
	return &DamageSystem{
		stores:     stores,
		gameData:   gameData,
		broadcast:  broadcast,
		damage:     damage,
		xp:         xp,
		calculator: calculator,
		clock:      clock,
		xpRate:     xpRate,
	}
}

func (s *DamageSystem) Phase() coresys.Phase { return coresys.PhaseSkillEffect }

func (s *DamageSystem) Update(dt time.Duration) {
	s.damage.Drain(s.apply)
}

func (s *DamageSystem) apply(ev DamageEvent) {
	st := s.stores

	var attackerID messages.EntityID
	if ace, ok := st.ClientEntity.Get(ev.Attacker); ok {
		attackerID = ace.ID
	}

	dce, ok := st.ClientEntity.Get(ev.Defender)
	if !ok {
		return
	}
	hp, ok := st.Health.Get(ev.Defender)
	if !ok {
		return
	}
	if hp.HP <= 0 {
		// Already dead, ignore any further damage.
		return
	}

	result := s.resolve(ev)

	hp.HP -= int32(result.Amount)
	if hp.HP < 0 {
		hp.HP = 0
	}
	killed := hp.HP == 0

	if sources, ok := st.Damage.Get(ev.Defender); ok && result.Amount > 0 {
		sources.Record(ev.Attacker, int32(result.Amount), s.clock.Elapsed)
	}

	if attackerID != 0 {
		s.broadcast.SendEntityMessage(dce.ID, dce.ZoneID, messages.DamageEntity{
			AttackerEntityID: attackerID,
			DefenderEntityID: dce.ID,
			Amount:           int32(result.Amount),
			IsCritical:       result.IsCritical,
			IsKilled:         killed,
			FromSkill:        ev.FromSkill,
		})
	}

	if killed {
		dieDuration := time.Second
		if motion, ok := st.Motion.Get(ev.Defender); ok && motion.Die != nil {
			dieDuration = motion.Die.Duration
		}

		if cmd, ok := st.Command.Get(ev.Defender); ok {
			*cmd = world.DieCommand(ev.Attacker, int32(result.Amount), dieDuration)
		}
		if next, ok := st.NextCommand.Get(ev.Defender); ok {
			next.Clear()
		}
		st.Destination.Remove(ev.Defender)
		st.Target.Remove(ev.Defender)

		// A spawned monster's point may regen its replacement.
		if origin, ok := st.SpawnOrigin.Get(ev.Defender); ok {
			if point, ok := st.SpawnPoint.Get(origin.SpawnPoint); ok && point.NumAliveMonsters > 0 {
				point.NumAliveMonsters--
			}
		}

		s.rewardContributors(ev.Defender)
	}
}

// rewardContributors splits the dead monster's experience across everyone in
// its damage-source list whose last hit is still fresh.
func (s *DamageSystem) rewardContributors(defender ecs.EntityID) {
	st := s.stores

	npc, ok := st.Npc.Get(defender)
	if !ok {
		return
	}
	tmpl := s.gameData.Npcs.Get(npc.ID)
	if tmpl == nil || tmpl.RewardXP <= 0 {
		return
	}
	sources, ok := st.Damage.Get(defender)
	if !ok {
		return
	}

	var maxHP int32
	if hp, ok := st.Health.Get(defender); ok {
		maxHP = hp.MaxHP
	}

	for i := range sources.Sources {
		src := &sources.Sources[i]
		if s.clock.Elapsed-src.LastDamageTime > damageRewardExpire {
			continue
		}
		ability, ok := st.Ability.Get(src.Attacker)
		if !ok {
			continue
		}
		amount := giveXP(ability.Level, src.TotalDamage, tmpl.Level, maxHP, tmpl.RewardXP, s.xpRate)
		if amount > 0 {
			s.xp.Emit(RewardXPEvent{Entity: src.Attacker, XP: amount, Source: defender})
		}
	}
}

func (s *DamageSystem) resolve(ev DamageEvent) scripting.DamageResult {
	st := s.stores

	var attackerAbility, defenderAbility world.AbilityValues
	if a, ok := st.Ability.Get(ev.Attacker); ok {
		attackerAbility = *a
	}
	if a, ok := st.Ability.Get(ev.Defender); ok {
		defenderAbility = *a
	}

	if ev.FromSkill != 0 {
		return s.calculator.CalcSkillDamage(scripting.SkillDamageContext{
			SkillID:              int(ev.FromSkill),
			SkillPower:           int(ev.SkillPower),
			AttackerLevel:        int(attackerAbility.Level),
			AttackerAttackPower:  int(attackerAbility.AttackPower),
			AttackerIntelligence: int(attackerAbility.Intelligence),
			DefenderLevel:        int(defenderAbility.Level),
			DefenderDefence:      int(defenderAbility.Defence),
		})
	}

	return s.calculator.CalcAttackDamage(scripting.AttackContext{
		AttackerLevel:       int(attackerAbility.Level),
		AttackerAttackPower: int(attackerAbility.AttackPower),
		HitCount:            ev.HitCount,
		DefenderLevel:       int(defenderAbility.Level),
		DefenderDefence:     int(defenderAbility.Defence),
	})
}
