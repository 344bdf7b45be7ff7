package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the combat formulas.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "combat", "skill"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// AttackContext holds pre-packed data for a basic attack calculation.
type AttackContext struct {
	AttackerLevel       int
	AttackerAttackPower int
	HitCount            int
	DefenderLevel       int
	DefenderDefence     int
}

// SkillDamageContext holds pre-packed data for skill damage calculation.
type SkillDamageContext struct {
	SkillID              int
	SkillPower           int
	AttackerLevel        int
	AttackerAttackPower  int
	AttackerIntelligence int
	DefenderLevel        int
	DefenderDefence      int
}

// DamageResult is returned by the Lua damage functions.
type DamageResult struct {
	Amount     int
	IsCritical bool
}

// CalcAttackDamage calls the Lua calc_attack_damage function.
func (e *Engine) CalcAttackDamage(ctx AttackContext) DamageResult {
	fn := e.vm.GetGlobal("calc_attack_damage")
	if fn == lua.LNil {
		e.log.Error("lua function calc_attack_damage not found")
		return DamageResult{Amount: 1}
	}

	t := e.vm.NewTable()

	atk := e.vm.NewTable()
	atk.RawSetString("level", lua.LNumber(ctx.AttackerLevel))
	atk.RawSetString("attack_power", lua.LNumber(ctx.AttackerAttackPower))
	atk.RawSetString("hit_count", lua.LNumber(ctx.HitCount))
	t.RawSetString("attacker", atk)

	tgt := e.vm.NewTable()
	tgt.RawSetString("level", lua.LNumber(ctx.DefenderLevel))
	tgt.RawSetString("defence", lua.LNumber(ctx.DefenderDefence))
	t.RawSetString("defender", tgt)

	return e.callDamageFn(fn, t, "calc_attack_damage")
}

// CalcSkillDamage calls the Lua calc_skill_damage function.
func (e *Engine) CalcSkillDamage(ctx SkillDamageContext) DamageResult {
	fn := e.vm.GetGlobal("calc_skill_damage")
	if fn == lua.LNil {
		e.log.Error("lua function calc_skill_damage not found")
		return DamageResult{Amount: 1}
	}

	t := e.vm.NewTable()
	t.RawSetString("skill_id", lua.LNumber(ctx.SkillID))
	t.RawSetString("skill_power", lua.LNumber(ctx.SkillPower))

	atk := e.vm.NewTable()
	atk.RawSetString("level", lua.LNumber(ctx.AttackerLevel))
	atk.RawSetString("attack_power", lua.LNumber(ctx.AttackerAttackPower))
	atk.RawSetString("intelligence", lua.LNumber(ctx.AttackerIntelligence))
	t.RawSetString("attacker", atk)

	tgt := e.vm.NewTable()
	tgt.RawSetString("level", lua.LNumber(ctx.DefenderLevel))
	tgt.RawSetString("defence", lua.LNumber(ctx.DefenderDefence))
	t.RawSetString("defender", tgt)

	return e.callDamageFn(fn, t, "calc_skill_damage")
}

func (e *Engine) callDamageFn(fn lua.LValue, arg *lua.LTable, name string) DamageResult {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua call error", zap.String("fn", name), zap.Error(err))
		return DamageResult{Amount: 1}
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua function returned non-table", zap.String("fn", name))
		return DamageResult{Amount: 1}
	}

	return DamageResult{
		Amount:     int(lua.LVAsNumber(rt.RawGetString("amount"))),
		IsCritical: rt.RawGetString("is_critical") == lua.LTrue,
	}
}
