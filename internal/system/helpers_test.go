package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rosego/server/internal/bundle"
	"github.com/rosego/server/internal/core/ecs"
	"github.com/rosego/server/internal/core/event"
	"github.com/rosego/server/internal/data"
	"github.com/rosego/server/internal/messages"
	"github.com/rosego/server/internal/world"
)

const testZoneID data.ZoneID = 1

const testZoneYaml = `
- id: 1
  name: "test plains"
  sector_size: 1000
  num_sectors_x: 4
  num_sectors_y: 4
  sector_base_x: 0
  sector_base_y: 0
  start_x: 500
  start_y: 500
  monster_spawns: true
- id: 2
  name: "no spawns"
  sector_size: 1000
  num_sectors_x: 4
  num_sectors_y: 4
  sector_base_x: 0
  sector_base_y: 0
  start_x: 500
  start_y: 500
  monster_spawns: false
`

const testNpcYaml = `
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
- id: 102
  name: "test wolf"
  level: 8
  health: 200
  walk_speed: 200
  run_speed: 450
  attack_range: 150
  attack_speed: 100
  attack_power: 15
  defence: 4
  reward_xp: 45
  is_monster: true
- id: 500
  name: "test vendor"
  level: 30
  health: 1000
  attack_range: 100
  attack_power: 1
  defence: 50
  is_monster: false
`

const testSkillYaml = `
- id: 1
  name: "test strike"
  type: attack
  action_mode: attack
  cast_range: 0
  casting_motion_id: 20
  casting_motion_speed: 1.0
  action_motion_id: 21
  action_motion_speed: 1.0
  use_mana: 10
  power: 30
- id: 2
  name: "test heal"
  type: heal
  action_mode: restore
  cast_range: 2000
  casting_motion_id: 20
  casting_motion_speed: 1.0
  action_motion_id: 21
  action_motion_speed: 1.0
  use_mana: 5
  power: 50
- id: 3
  name: "test cheer"
  type: buff
  action_mode: stop
  cast_range: 0
  casting_motion_id: 20
  casting_motion_speed: 1.0
  action_motion_id: 21
  action_motion_speed: 1.0
  use_mana: 0
  power: 0
`

const testMotionYaml = `
- motion_id: 1
  npc_id: 0
  duration_ms: 1000
  attack_frames: 2
- motion_id: 2
  npc_id: 0
  duration_ms: 2000
- motion_id: 3
  npc_id: 0
  duration_ms: 800
- motion_id: 4
  npc_id: 0
  duration_ms: 500
- motion_id: 5
  npc_id: 0
  duration_ms: 500
- motion_id: 20
  npc_id: 0
  duration_ms: 1000
- motion_id: 21
  npc_id: 0
  duration_ms: 500
- motion_id: 30
  npc_id: 0
  duration_ms: 1200
- motion_id: 1
  npc_id: 101
  duration_ms: 900
  attack_frames: 1
- motion_id: 2
  npc_id: 101
  duration_ms: 1500
- motion_id: 1
  npc_id: 102
  duration_ms: 900
  attack_frames: 1
- motion_id: 2
  npc_id: 102
  duration_ms: 1500
`

const testWeaponYaml = `
- item_number: 1101
  name: "test sword"
  motion_type: 211
  attack_range: 100
  attack_power: 12
  ammo: ""
- item_number: 1201
  name: "test bow"
  motion_type: 222
  attack_range: 1100
  attack_power: 18
  ammo: arrow
`

func loadTestGameData(t *testing.T) *data.GameData {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"zone_list.yaml":   testZoneYaml,
		"npc_list.yaml":    testNpcYaml,
		"skill_list.yaml":  testSkillYaml,
		"motion_list.yaml": testMotionYaml,
		"weapon_list.yaml": testWeaponYaml,
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

// testEnv wires the stores, zone index and tick systems the way main does,
// minus the database and the Lua engine.
type testEnv struct {
	stores  *world.Stores
	zones   *world.ZoneRegistry
	gd      *data.GameData
	clock   *world.Clock
	bcast   *messages.Broadcast
	damage  *event.Queue[DamageEvent]
	pickups *event.Queue[PickupItemEvent]
	xp      *event.Queue[RewardXPEvent]
	effects *SkillEffectSystem
	command *CommandSystem
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gd := loadTestGameData(t)
	env := &testEnv{
		stores:  world.NewStores(),
		zones:   world.NewZoneRegistry(gd.Zones),
		gd:      gd,
		clock:   &world.Clock{},
		bcast:   messages.NewBroadcast(),
		damage:  event.NewQueue[DamageEvent](),
		pickups: event.NewQueue[PickupItemEvent](),
		xp:      event.NewQueue[RewardXPEvent](),
	}
	env.effects = NewSkillEffectSystem(env.stores, gd, env.clock, env.bcast, env.damage)
	env.command = NewCommandSystem(env.stores, gd, env.clock, env.bcast, env.damage, env.pickups, env.effects, 1)
	return env
}

// tick advances the clock and runs one command phase update.
func (e *testEnv) tick(dt time.Duration) {
	e.clock.Advance(dt)
	e.command.Update(dt)
}

func (e *testEnv) spawnCharacter(t *testing.T, name string, pos world.Vec3) (ecs.EntityID, chan messages.ServerMessage) {
	t.Helper()

	tx := make(chan messages.ServerMessage, 64)
	ability := world.AbilityValues{
		Level:        10,
		AttackPower:  20,
		Defence:      5,
		AttackSpeed:  100,
		AttackRange:  200,
		WalkSpeed:    200,
		RunSpeed:     400,
		Intelligence: 15,
	}
	entity, err := bundle.SpawnCharacter(e.stores, e.zones, e.gd,
		bundle.CharacterSpawn{
			Info:     world.CharacterInfo{CharacterID: 1, Name: name},
			Ability:  ability,
			Position: world.Position{ZoneID: testZoneID, Pos: pos},
			HP:       100,
			MaxHP:    100,
			MP:       100,
			MaxMP:    100,
		},
		&world.GameClient{Tx: tx})
	if err != nil {
		t.Fatalf("spawn character %s: %v", name, err)
	}
	return entity, tx
}

func (e *testEnv) spawnMonster(t *testing.T, npcID data.NpcID, pos world.Vec3) ecs.EntityID {
	t.Helper()

	entity, err := bundle.SpawnMonster(e.stores, e.zones, e.gd, npcID,
		world.Position{ZoneID: testZoneID, Pos: pos}, ecs.NilEntity)
	if err != nil {
		t.Fatalf("spawn monster %d: %v", npcID, err)
	}
	return entity
}

func (e *testEnv) spawnItemDrop(t *testing.T, pos world.Vec3, owner ecs.EntityID) ecs.EntityID {
	t.Helper()

	entity, err := bundle.SpawnItemDrop(e.stores, e.zones, e.clock,
		world.ItemDrop{ItemNumber: 301, Quantity: 5, Owner: owner},
		world.Position{ZoneID: testZoneID, Pos: pos},
		time.Minute)
	if err != nil {
		t.Fatalf("spawn item drop: %v", err)
	}
	return entity
}

func (e *testEnv) queueNext(entity ecs.EntityID, cmd world.Command) {
	e.stores.NextCommand.MustGet(entity).Set(cmd)
}

func (e *testEnv) currentCommand(entity ecs.EntityID) *world.Command {
	return e.stores.Command.MustGet(entity)
}

// drainBroadcast empties the tick's buffered entity messages for inspection.
func (e *testEnv) drainBroadcast() []messages.ServerMessage {
	var out []messages.ServerMessage
	e.bcast.Drain(func(em messages.EntityMessage) {
		out = append(out, em.Message)
	})
	return out
}

func drainClient(tx chan messages.ServerMessage) []messages.ServerMessage {
	var out []messages.ServerMessage
	for {
		select {
		case msg := <-tx:
			out = append(out, msg)
		default:
			return out
		}
	}
}
