package system

import (
	"testing"
	"time"

	"github.com/rosego/server/internal/messages"
	"github.com/rosego/server/internal/world"
)

func TestHealLandsWhenWindUpElapses(t *testing.T) {
	env := newTestEnv(t)

	caster, _ := env.spawnCharacter(t, "healer", world.Vec3{X: 500, Y: 500})
	env.stores.Health.MustGet(caster).HP = 40

	env.effects.Schedule(PendingSkillEffect{
		When:         time.Second,
		Caster:       caster,
		SkillID:      2,
		TargetKind:   world.SkillTargetSelf,
		TargetEntity: caster,
	})

	env.clock.Advance(500 * time.Millisecond)
	env.effects.Update(500 * time.Millisecond)

	if hp := env.stores.Health.MustGet(caster).HP; hp != 40 {
		t.Fatalf("effect landed before its wind-up, HP = %d", hp)
	}
	if env.effects.PendingCount() != 1 {
		t.Fatalf("effect dropped early")
	}

	env.clock.Advance(600 * time.Millisecond)
	env.effects.Update(600 * time.Millisecond)

	if hp := env.stores.Health.MustGet(caster).HP; hp != 90 {
		t.Fatalf("HP = %d, want 40 + 50 healed", hp)
	}
	if mp := env.stores.Mana.MustGet(caster).MP; mp != 95 {
		t.Fatalf("MP = %d, want 5 consumed", mp)
	}
	if env.effects.PendingCount() != 0 {
		t.Fatalf("effect still pending after firing")
	}

	var applied, finished bool
	for _, msg := range env.drainBroadcast() {
		switch m := msg.(type) {
		case messages.ApplySkillEffect:
			applied = true
			if m.Value != 50 {
				t.Fatalf("healed value = %d, want 50", m.Value)
			}
		case messages.FinishCastingSkill:
			finished = true
		}
	}
	if !applied || !finished {
		t.Fatalf("missing notifications: applied=%v finished=%v", applied, finished)
	}
}

func TestHealCapsAtMaxHP(t *testing.T) {
	env := newTestEnv(t)

	caster, _ := env.spawnCharacter(t, "healer", world.Vec3{X: 500, Y: 500})
	env.stores.Health.MustGet(caster).HP = 80

	env.effects.Schedule(PendingSkillEffect{
		Caster:       caster,
		SkillID:      2,
		TargetKind:   world.SkillTargetSelf,
		TargetEntity: caster,
	})
	env.effects.Update(100 * time.Millisecond)

	if hp := env.stores.Health.MustGet(caster).HP; hp != 100 {
		t.Fatalf("HP = %d, want the 100 cap", hp)
	}
}

func TestInsufficientManaCancelsCast(t *testing.T) {
	env := newTestEnv(t)

	caster, _ := env.spawnCharacter(t, "drained", world.Vec3{X: 500, Y: 500})
	env.stores.Health.MustGet(caster).HP = 40
	env.stores.Mana.MustGet(caster).MP = 1

	env.effects.Schedule(PendingSkillEffect{
		Caster:       caster,
		SkillID:      2,
		TargetKind:   world.SkillTargetSelf,
		TargetEntity: caster,
	})
	env.effects.Update(100 * time.Millisecond)

	if hp := env.stores.Health.MustGet(caster).HP; hp != 40 {
		t.Fatalf("a cancelled cast must not heal, HP = %d", hp)
	}
	if mp := env.stores.Mana.MustGet(caster).MP; mp != 1 {
		t.Fatalf("a cancelled cast must not consume mana, MP = %d", mp)
	}

	cancelled := false
	for _, msg := range env.drainBroadcast() {
		if _, ok := msg.(messages.CancelCastingSkill); ok {
			cancelled = true
		}
	}
	if !cancelled {
		t.Fatalf("observers must see the cast cancelled")
	}
}

func TestAttackSkillFeedsDamagePipeline(t *testing.T) {
	env := newTestEnv(t)

	caster, _ := env.spawnCharacter(t, "caster", world.Vec3{X: 500, Y: 500})
	target := env.spawnMonster(t, 101, world.Vec3{X: 600, Y: 500})

	env.effects.Schedule(PendingSkillEffect{
		Caster:       caster,
		SkillID:      1,
		TargetKind:   world.SkillTargetEntity,
		TargetEntity: target,
	})
	env.effects.Update(100 * time.Millisecond)

	if env.damage.Len() != 1 {
		t.Fatalf("damage events = %d, want 1", env.damage.Len())
	}
	env.damage.Drain(func(ev DamageEvent) {
		if ev.FromSkill != 1 || ev.SkillPower != 30 {
			t.Fatalf("skill damage event wrong: %+v", ev)
		}
		if ev.Attacker != caster || ev.Defender != target {
			t.Fatalf("event routed wrong: %+v", ev)
		}
		if ev.HitCount != 1 {
			t.Fatalf("skill hits land once, got %d", ev.HitCount)
		}
	})
}

func TestEffectWithDeadTargetCancels(t *testing.T) {
	env := newTestEnv(t)

	caster, _ := env.spawnCharacter(t, "caster", world.Vec3{X: 500, Y: 500})
	target := env.spawnMonster(t, 101, world.Vec3{X: 600, Y: 500})

	env.effects.Schedule(PendingSkillEffect{
		Caster:       caster,
		SkillID:      1,
		TargetKind:   world.SkillTargetEntity,
		TargetEntity: target,
	})

	// The target despawns during the wind-up.
	env.stores.Entities.MarkForDestruction(target)
	env.stores.Entities.FlushDestroyQueue()

	env.effects.Update(100 * time.Millisecond)

	if env.damage.Len() != 0 {
		t.Fatalf("no damage may land on a gone target")
	}
	cancelled := false
	for _, msg := range env.drainBroadcast() {
		if _, ok := msg.(messages.CancelCastingSkill); ok {
			cancelled = true
		}
	}
	if !cancelled {
		t.Fatalf("cast at a vanished target must cancel visibly")
	}
}
