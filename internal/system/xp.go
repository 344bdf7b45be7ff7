package system

import (
	"time"

	"github.com/rosego/server/internal/core/event"
	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/messages"
	"github.com/rosego/server/internal/world"
)

// damageRewardExpire drops a contributor from the reward split when their
// last hit is older than this at the time of death.
const damageRewardExpire = 5 * time.Minute

// giveXP is the contribution-weighted experience award for one damage
// source against a dead monster. The breakpoints and divisors are game
// balance literals; the level-difference branch punishes overleveled
// farming.
func giveXP(attackerLevel, attackerDamage, defenderLevel, defenderMaxHP, defenderRewardXP, xpRate int32) int64 {
	if defenderMaxHP <= 0 {
		return 0
	}
	levelDifference := attackerLevel - defenderLevel

	base := (float32(defenderLevel) + 3.0) *
		float32(defenderRewardXP) *
		(float32(attackerDamage) + float32(defenderMaxHP)/15.0 + 30.0) *
		float32(xpRate) / float32(defenderMaxHP)
	if levelDifference < 3 {
		return int64(base / 370.0)
	}
	return int64(base / float32(levelDifference+3) / 60.0)
}

// RewardXPSystem applies queued experience rewards and tells each rewarded
// client its new running total.
type RewardXPSystem struct {
	stores *world.Stores
	xp     *event.Queue[RewardXPEvent]
}

func NewRewardXPSystem(stores *world.Stores, xp *event.Queue[RewardXPEvent]) *RewardXPSystem {
	return &RewardXPSystem{stores: stores, xp: xp}
}

func (s *RewardXPSystem) Phase() coresys.Phase { return coresys.PhaseSkillEffect }

func (s *RewardXPSystem) Update(dt time.Duration) {
	s.xp.Drain(s.apply)
}

func (s *RewardXPSystem) apply(ev RewardXPEvent) {
	st := s.stores

	exp, ok := st.Experience.Get(ev.Entity)
	if !ok {
		return
	}
	exp.XP += ev.XP

	client, ok := st.GameClient.Get(ev.Entity)
	if !ok {
		return
	}
	var source messages.EntityID
	if sce, ok := st.ClientEntity.Get(ev.Source); ok {
		source = sce.ID
	}
	client.Send(messages.UpdateXP{XP: exp.XP, SourceEntityID: source})
}
