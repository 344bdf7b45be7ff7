package system

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/rosego/server/internal/bundle"
	"github.com/rosego/server/internal/core/ecs"
	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/data"
	"github.com/rosego/server/internal/world"
)

// MonsterSpawnSystem regenerates monsters at spawn points and removes dead
// monsters once their die motion has finished.
//
// Each point carries a tactics value that climbs while the point keeps having
// to respawn and resets when the heavy waves go out, which is what cycles a
// camp between light and reinforced spawns. The regen value banding and its
// tactics adjustments are tuned as a set; don't retune one band in isolation.
type MonsterSpawnSystem struct {
	stores   *world.Stores
	zones    *world.ZoneRegistry
	gameData *data.GameData
	rng      *rand.Rand
	log      *zap.Logger
}

func NewMonsterSpawnSystem(stores *world.Stores, zones *world.ZoneRegistry, gameData *data.GameData, seed int64, log *zap.Logger) *MonsterSpawnSystem {
	return &MonsterSpawnSystem{
		stores:   stores,
		zones:    zones,
		gameData: gameData,
		rng:      rand.New(rand.NewSource(seed)),
		log:      log,
	}
}

func (s *MonsterSpawnSystem) Phase() coresys.Phase { return coresys.PhaseSpawn }

func (s *MonsterSpawnSystem) Update(dt time.Duration) {
	s.despawnFinishedCorpses(dt)

	s.stores.SpawnPoint.Each(func(entity ecs.EntityID, point *world.SpawnPoint) {
		s.updateSpawnPoint(entity, point, dt)
	})
}

// despawnFinishedCorpses removes monsters whose die motion completed. The
// live count was already decremented when the kill landed.
func (s *MonsterSpawnSystem) despawnFinishedCorpses(dt time.Duration) {
	st := s.stores

	var finished []ecs.EntityID
	ecs.Each2(st.Npc, st.Command, func(entity ecs.EntityID, npc *world.Npc, cmd *world.Command) {
		if cmd.IsDie() && cmd.HasRequired && cmd.Duration >= cmd.Required {
			finished = append(finished, entity)
		}
	})

	for _, entity := range finished {
		bundle.DespawnEntity(st, s.zones, entity)
	}
}

func (s *MonsterSpawnSystem) updateSpawnPoint(entity ecs.EntityID, point *world.SpawnPoint, dt time.Duration) {
	zoneData := s.gameData.Zones.Get(point.Data.ZoneID)
	if zoneData == nil || !zoneData.MonsterSpawnsEnabled {
		return
	}

	point.TimeSinceLastCheck += dt
	if point.TimeSinceLastCheck < point.Data.Interval {
		return
	}
	point.TimeSinceLastCheck -= point.Data.Interval

	if point.NumAliveMonsters >= point.Data.Limit {
		if point.CurrentTacticsValue > 0 {
			point.CurrentTacticsValue--
		}
		return
	}

	regen := ((point.Data.Limit*2 - point.NumAliveMonsters) * point.CurrentTacticsValue * 50) /
		(point.Data.Limit * point.Data.TacticPoints)

	var queue []data.SpawnNpcCount
	basic := point.Data.Basic
	tactic := point.Data.Tactic

	switch {
	case regen <= 10:
		point.CurrentTacticsValue += 12
		queue = appendSpawn(queue, basic, 0, 0)
	case regen <= 15:
		point.CurrentTacticsValue += 15
		queue = appendSpawn(queue, basic, 0, -2)
		queue = appendSpawn(queue, basic, 1, 0)
	case regen <= 25:
		point.CurrentTacticsValue += 12
		queue = appendSpawn(queue, basic, 2, 0)
	case regen <= 30:
		point.CurrentTacticsValue += 15
		queue = appendSpawn(queue, basic, 0, -1)
		queue = appendSpawn(queue, basic, 2, 0)
	case regen <= 40:
		point.CurrentTacticsValue += 12
		queue = appendSpawn(queue, basic, 3, 0)
	case regen <= 50:
		point.CurrentTacticsValue += 12
		queue = appendSpawn(queue, basic, 1, 0)
		queue = appendSpawn(queue, basic, 2, -1)
	case regen <= 65:
		point.CurrentTacticsValue += 20
		queue = appendSpawn(queue, basic, 2, 0)
		queue = appendSpawn(queue, basic, 3, -2)
	case regen <= 73:
		point.CurrentTacticsValue += 15
		queue = appendSpawn(queue, basic, 3, 0)
		queue = appendSpawn(queue, basic, 4, 0)
	case regen <= 85:
		point.CurrentTacticsValue += 15
		queue = appendSpawn(queue, basic, 0, 0)
		queue = appendSpawn(queue, basic, 4, -2)
		queue = appendSpawn(queue, tactic, 0, -1)
	case regen <= 92:
		point.CurrentTacticsValue = 1
		queue = appendSpawn(queue, basic, 1, 0)
		queue = appendSpawn(queue, tactic, 0, 0)
		queue = appendSpawn(queue, tactic, 1, 0)
	default:
		point.CurrentTacticsValue = 7
		queue = appendSpawn(queue, basic, 4, 0)
		queue = appendSpawn(queue, tactic, 0, 1)
		queue = appendSpawn(queue, tactic, 1, 0)
	}

	if point.CurrentTacticsValue > 500 {
		point.CurrentTacticsValue = 500
	}

	for _, sp := range queue {
		for n := 0; n < sp.Count; n++ {
			pos := world.Position{
				ZoneID: point.Data.ZoneID,
				Pos: world.Vec3{
					X: point.Data.X + (s.rng.Float32()*2-1)*point.Data.Range,
					Y: point.Data.Y + (s.rng.Float32()*2-1)*point.Data.Range,
				},
			}
			if _, err := bundle.SpawnMonster(s.stores, s.zones, s.gameData, sp.NpcID, pos, entity); err != nil {
				s.log.Warn("spawn point failed to spawn monster",
					zap.Uint16("zone", uint16(point.Data.ZoneID)),
					zap.Int32("npc", int32(sp.NpcID)),
					zap.Error(err))
				continue
			}
			point.NumAliveMonsters++
		}
	}
}

// appendSpawn adds list[index] with its count adjusted by delta, clamped at
// zero. Missing indices are skipped, a point may define fewer waves.
func appendSpawn(queue []data.SpawnNpcCount, list []data.SpawnNpcCount, index, delta int) []data.SpawnNpcCount {
	if index >= len(list) {
		return queue
	}
	count := list[index].Count + delta
	if count < 0 {
		count = 0
	}
	return append(queue, data.SpawnNpcCount{NpcID: list[index].NpcID, Count: count})
}
