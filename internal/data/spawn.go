package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SpawnNpcCount is one (template, count) pair within a spawn point's list.
type SpawnNpcCount struct {
	NpcID NpcID
	Count int
}

// SpawnPointData configures a monster spawn point. Basic spawns fill the
// point under normal pressure; tactic spawns appear when the point's tactics
// value runs high (monsters dying faster than they respawn).
type SpawnPointData struct {
	ZoneID       ZoneID
	X, Y         float32
	Range        float32 // random placement radius around the point
	Interval     time.Duration
	Limit        int
	TacticPoints int
	Basic        []SpawnNpcCount
	Tactic       []SpawnNpcCount
}

type spawnNpcYaml struct {
	NpcID int32 `yaml:"npc_id"`
	Count int   `yaml:"count"`
}

type spawnYaml struct {
	ZoneID       uint16         `yaml:"zone_id"`
	X            float32        `yaml:"x"`
	Y            float32        `yaml:"y"`
	Range        float32        `yaml:"range"`
	IntervalSecs int            `yaml:"interval_secs"`
	Limit        int            `yaml:"limit"`
	TacticPoints int            `yaml:"tactic_points"`
	Basic        []spawnNpcYaml `yaml:"basic"`
	Tactic       []spawnNpcYaml `yaml:"tactic"`
}

func LoadSpawnList(path string) ([]SpawnPointData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn list: %w", err)
	}

	var entries []spawnYaml
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse spawn list: %w", err)
	}

	points := make([]SpawnPointData, 0, len(entries))
	for _, e := range entries {
		p := SpawnPointData{
			ZoneID:       ZoneID(e.ZoneID),
			X:            e.X,
			Y:            e.Y,
			Range:        e.Range,
			Interval:     time.Duration(e.IntervalSecs) * time.Second,
			Limit:        e.Limit,
			TacticPoints: e.TacticPoints,
		}
		if p.Limit <= 0 {
			return nil, fmt.Errorf("spawn point zone %d (%.0f,%.0f): limit must be positive", e.ZoneID, e.X, e.Y)
		}
		if p.TacticPoints <= 0 {
			p.TacticPoints = 1
		}
		for _, s := range e.Basic {
			p.Basic = append(p.Basic, SpawnNpcCount{NpcID: NpcID(s.NpcID), Count: s.Count})
		}
		for _, s := range e.Tactic {
			p.Tactic = append(p.Tactic, SpawnNpcCount{NpcID: NpcID(s.NpcID), Count: s.Count})
		}
		points = append(points, p)
	}
	return points, nil
}
