package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rosego/server/internal/data"
	"github.com/rosego/server/internal/persist"
	"github.com/rosego/server/internal/world"
)

const spawnZoneYaml = `
- id: 7
  name: "spawn test"
  sector_size: 1000
  num_sectors_x: 4
  num_sectors_y: 4
  sector_base_x: 0
  sector_base_y: 0
  start_x: 500
  start_y: 500
  monster_spawns: false
`

const spawnNpcYaml = `
- id: 101
  name: "test slime"
  level: 5
  health: 100
  walk_speed: 200
  run_speed: 400
  attack_range: 150
  attack_speed: 100
  attack_power: 10
  defence: 2
  reward_xp: 20
  is_monster: true
`

const spawnMotionYaml = `
- motion_id: 1
  npc_id: 0
  duration_ms: 1000
  attack_frames: 2
- motion_id: 1
  npc_id: 101
  duration_ms: 900
  attack_frames: 1
- motion_id: 2
  npc_id: 101
  duration_ms: 1500
`

func loadSpawnGameData(t *testing.T) *data.GameData {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"zone_list.yaml":   spawnZoneYaml,
		"npc_list.yaml":    spawnNpcYaml,
		"skill_list.yaml":  "[]",
		"motion_list.yaml": spawnMotionYaml,
		"weapon_list.yaml": "[]",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	gd, err := data.LoadGameData(dir)
	if err != nil {
		t.Fatalf("LoadGameData: %v", err)
	}
	return gd
}

func TestSpawnFromRowMapsPersistedState(t *testing.T) {
	row := &persist.CharacterRow{
		ID:     42,
		Name:   "Rin",
		Gender: 1,
		Level:  14,
		XP:     98765,
		ZoneID: 7,
		X:      1200,
		Y:      800,
		HP:     55,
		MaxHP:  70,
		MP:     12,
		MaxMP:  40,
	}
	ability := world.AbilityValues{Level: 14, RunSpeed: 400}

	spawn := SpawnFromRow(row, ability)

	if spawn.Info.CharacterID != 42 || spawn.Info.Name != "Rin" || spawn.Info.Gender != 1 {
		t.Fatalf("info wrong: %+v", spawn.Info)
	}
	if spawn.Position.ZoneID != 7 || spawn.Position.Pos.X != 1200 || spawn.Position.Pos.Y != 800 {
		t.Fatalf("position wrong: %+v", spawn.Position)
	}
	if spawn.HP != 55 || spawn.MaxHP != 70 || spawn.MP != 12 || spawn.MaxMP != 40 {
		t.Fatalf("vitals wrong: %+v", spawn)
	}
	if spawn.XP != 98765 {
		t.Fatalf("XP = %d, want 98765", spawn.XP)
	}
	if spawn.Ability.Level != 14 {
		t.Fatalf("ability not carried: %+v", spawn.Ability)
	}
}

func TestSpawnCharacterUsesPersistedVitals(t *testing.T) {
	gd := loadSpawnGameData(t)
	stores := world.NewStores()
	zones := world.NewZoneRegistry(gd.Zones)

	spawn := SpawnFromRow(&persist.CharacterRow{
		ID: 42, Name: "Rin", Gender: 1,
		XP: 98765, ZoneID: 7,
		X: 1200, Y: 800,
		HP: 55, MaxHP: 70,
		MP: 12, MaxMP: 40,
	}, world.AbilityValues{Level: 14, RunSpeed: 400})

	entity, err := SpawnCharacter(stores, zones, gd, spawn, nil)
	if err != nil {
		t.Fatalf("SpawnCharacter: %v", err)
	}

	hp := stores.Health.MustGet(entity)
	if hp.HP != 55 || hp.MaxHP != 70 {
		t.Fatalf("health = %d/%d, want 55/70", hp.HP, hp.MaxHP)
	}
	mp := stores.Mana.MustGet(entity)
	if mp.MP != 12 || mp.MaxMP != 40 {
		t.Fatalf("mana = %d/%d, want 12/40", mp.MP, mp.MaxMP)
	}
	if got := stores.Experience.MustGet(entity).XP; got != 98765 {
		t.Fatalf("XP = %d, want 98765", got)
	}
	if got := stores.MoveSpeed.MustGet(entity).Speed; got != 400 {
		t.Fatalf("move speed = %v, want the run speed", got)
	}
}
