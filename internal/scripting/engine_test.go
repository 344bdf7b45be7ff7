package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

const testCombatScript = `
function calc_attack_damage(ctx)
    local dmg = ctx.attacker.attack_power * ctx.attacker.hit_count
        - ctx.defender.defence
    if dmg < 1 then
        dmg = 1
    end
    return { amount = dmg, is_critical = ctx.attacker.level > 50 }
end

function calc_skill_damage(ctx)
    return { amount = ctx.skill_power + ctx.attacker.intelligence }
end
`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	dir := t.TempDir()
	combat := filepath.Join(dir, "combat")
	if err := os.MkdirAll(combat, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(combat, "damage.lua"), []byte(testCombatScript), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestCalcAttackDamage(t *testing.T) {
	e := newTestEngine(t)

	got := e.CalcAttackDamage(AttackContext{
		AttackerLevel:       10,
		AttackerAttackPower: 20,
		HitCount:            2,
		DefenderLevel:       5,
		DefenderDefence:     15,
	})

	if got.Amount != 25 {
		t.Fatalf("amount = %d, want 20*2-15 = 25", got.Amount)
	}
	if got.IsCritical {
		t.Fatalf("level 10 must not crit under the test formula")
	}

	crit := e.CalcAttackDamage(AttackContext{AttackerLevel: 60, AttackerAttackPower: 10, HitCount: 1})
	if !crit.IsCritical {
		t.Fatalf("level 60 must crit under the test formula")
	}
}

func TestCalcSkillDamage(t *testing.T) {
	e := newTestEngine(t)

	got := e.CalcSkillDamage(SkillDamageContext{
		SkillID:              3,
		SkillPower:           40,
		AttackerIntelligence: 12,
	})

	if got.Amount != 52 {
		t.Fatalf("amount = %d, want 40+12 = 52", got.Amount)
	}
}

func TestMissingFunctionFallsBackToMinimumDamage(t *testing.T) {
	dir := t.TempDir()
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	got := e.CalcAttackDamage(AttackContext{AttackerAttackPower: 100, HitCount: 3})
	if got.Amount != 1 {
		t.Fatalf("amount = %d, a missing script must deal the 1 damage floor", got.Amount)
	}
}
