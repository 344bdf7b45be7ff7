package system

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rosego/server/internal/data"
	"github.com/rosego/server/internal/world"
)

func testSpawnPointData() *data.SpawnPointData {
	return &data.SpawnPointData{
		ZoneID:       testZoneID,
		X:            2000,
		Y:            2000,
		Range:        100,
		Interval:     5 * time.Second,
		Limit:        8,
		TacticPoints: 10,
		Basic: []data.SpawnNpcCount{
			{NpcID: 101, Count: 1},
			{NpcID: 101, Count: 2},
			{NpcID: 102, Count: 1},
			{NpcID: 102, Count: 2},
			{NpcID: 102, Count: 3},
		},
		Tactic: []data.SpawnNpcCount{
			{NpcID: 102, Count: 1},
			{NpcID: 102, Count: 2},
		},
	}
}

func TestSpawnPointLightWave(t *testing.T) {
	env := newTestEnv(t)
	ms := NewMonsterSpawnSystem(env.stores, env.zones, env.gd, 1, zap.NewNop())

	point := env.stores.Entities.CreateEntity()
	sp := &world.SpawnPoint{Data: testSpawnPointData()}
	env.stores.SpawnPoint.Set(point, sp)

	// Half an interval: nothing due yet.
	ms.Update(2500 * time.Millisecond)
	if sp.NumAliveMonsters != 0 {
		t.Fatalf("spawned before the interval elapsed")
	}

	// Interval reached with zero tactics: the lightest wave, one slime.
	ms.Update(2500 * time.Millisecond)
	if sp.NumAliveMonsters != 1 {
		t.Fatalf("alive = %d, want the light wave's 1", sp.NumAliveMonsters)
	}
	if sp.CurrentTacticsValue != 12 {
		t.Fatalf("tactics = %d, want 12", sp.CurrentTacticsValue)
	}
	if got := env.zones.Get(testZoneID).LiveCount(); got != 1 {
		t.Fatalf("zone live count = %d, want 1", got)
	}
}

func TestSpawnPointHighTacticsWave(t *testing.T) {
	env := newTestEnv(t)
	ms := NewMonsterSpawnSystem(env.stores, env.zones, env.gd, 1, zap.NewNop())

	point := env.stores.Entities.CreateEntity()
	sp := &world.SpawnPoint{Data: testSpawnPointData(), CurrentTacticsValue: 499}
	env.stores.SpawnPoint.Set(point, sp)

	ms.Update(5 * time.Second)

	// Regen blows past 92: the heaviest wave resets tactics and sends
	// basic[4] (3), tactic[0]+1 (2) and tactic[1] (2).
	if sp.CurrentTacticsValue != 7 {
		t.Fatalf("tactics = %d, want the post-wave reset 7", sp.CurrentTacticsValue)
	}
	if sp.NumAliveMonsters != 7 {
		t.Fatalf("alive = %d, want 7", sp.NumAliveMonsters)
	}
}

func TestFullSpawnPointBleedsTactics(t *testing.T) {
	env := newTestEnv(t)
	ms := NewMonsterSpawnSystem(env.stores, env.zones, env.gd, 1, zap.NewNop())

	point := env.stores.Entities.CreateEntity()
	sp := &world.SpawnPoint{Data: testSpawnPointData(), CurrentTacticsValue: 5}
	sp.NumAliveMonsters = sp.Data.Limit
	env.stores.SpawnPoint.Set(point, sp)

	ms.Update(5 * time.Second)

	if sp.CurrentTacticsValue != 4 {
		t.Fatalf("tactics = %d, a full point must bleed down to 4", sp.CurrentTacticsValue)
	}
	if sp.NumAliveMonsters != sp.Data.Limit {
		t.Fatalf("a full point must not spawn")
	}
}

func TestDisabledZoneSpawnsNothing(t *testing.T) {
	env := newTestEnv(t)
	ms := NewMonsterSpawnSystem(env.stores, env.zones, env.gd, 1, zap.NewNop())

	pd := testSpawnPointData()
	pd.ZoneID = 2
	point := env.stores.Entities.CreateEntity()
	sp := &world.SpawnPoint{Data: pd}
	env.stores.SpawnPoint.Set(point, sp)

	ms.Update(5 * time.Second)

	if sp.NumAliveMonsters != 0 || sp.CurrentTacticsValue != 0 {
		t.Fatalf("spawn point ran in a zone with spawns disabled: %+v", sp)
	}
}

func TestCorpseDespawnsAfterDieMotion(t *testing.T) {
	env := newTestEnv(t)
	ms := NewMonsterSpawnSystem(env.stores, env.zones, env.gd, 1, zap.NewNop())

	monster := env.spawnMonster(t, 101, world.Vec3{X: 600, Y: 500})
	cmd := env.stores.Command.MustGet(monster)
	*cmd = world.DieCommand(0, 100, 1500*time.Millisecond)

	// Die motion still playing.
	cmd.Duration = 1400 * time.Millisecond
	ms.Update(100 * time.Millisecond)
	env.stores.Entities.FlushDestroyQueue()
	if !env.stores.Entities.Alive(monster) {
		t.Fatalf("corpse removed before its die motion finished")
	}

	cmd.Duration = 1600 * time.Millisecond
	ms.Update(100 * time.Millisecond)
	env.stores.Entities.FlushDestroyQueue()
	if env.stores.Entities.Alive(monster) {
		t.Fatalf("corpse lingered after its die motion")
	}
}
