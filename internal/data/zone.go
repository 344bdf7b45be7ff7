package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ZoneData describes a zone's static layout: the sector grid geometry and
// the spawn/revive position. Sector geometry drives the spatial partition.
type ZoneData struct {
	ID                   ZoneID
	Name                 string
	SectorSize           float32 // edge length of one square sector
	NumSectorsX          uint32
	NumSectorsY          uint32
	SectorBaseX          float32 // world position of sector (0,0)'s corner
	SectorBaseY          float32
	StartX               float32
	StartY               float32
	MonsterSpawnsEnabled bool
}

type zoneYaml struct {
	ID            uint16  `yaml:"id"`
	Name          string  `yaml:"name"`
	SectorSize    float32 `yaml:"sector_size"`
	NumSectorsX   uint32  `yaml:"num_sectors_x"`
	NumSectorsY   uint32  `yaml:"num_sectors_y"`
	SectorBaseX   float32 `yaml:"sector_base_x"`
	SectorBaseY   float32 `yaml:"sector_base_y"`
	StartX        float32 `yaml:"start_x"`
	StartY        float32 `yaml:"start_y"`
	MonsterSpawns bool    `yaml:"monster_spawns"`
}

// ZoneTable holds all zones indexed by id.
type ZoneTable struct {
	zones map[ZoneID]*ZoneData
}

func (t *ZoneTable) Get(id ZoneID) *ZoneData {
	return t.zones[id]
}

func (t *ZoneTable) Count() int {
	return len(t.zones)
}

func (t *ZoneTable) Each(fn func(*ZoneData)) {
	for _, z := range t.zones {
		fn(z)
	}
}

func LoadZoneTable(path string) (*ZoneTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zone list: %w", err)
	}

	var entries []zoneYaml
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse zone list: %w", err)
	}

	t := &ZoneTable{zones: make(map[ZoneID]*ZoneData, len(entries))}
	for _, e := range entries {
		if e.SectorSize <= 0 {
			return nil, fmt.Errorf("zone %d: sector_size must be positive", e.ID)
		}
		if e.NumSectorsX == 0 || e.NumSectorsY == 0 {
			return nil, fmt.Errorf("zone %d: sector counts must be positive", e.ID)
		}
		t.zones[ZoneID(e.ID)] = &ZoneData{
			ID:          ZoneID(e.ID),
			Name:        e.Name,
			SectorSize:  e.SectorSize,
			NumSectorsX: e.NumSectorsX,
			NumSectorsY: e.NumSectorsY,
			SectorBaseX: e.SectorBaseX,
			SectorBaseY: e.SectorBaseY,
			StartX:      e.StartX,
			StartY:      e.StartY,
			MonsterSpawnsEnabled: e.MonsterSpawns,
		}
	}
	return t, nil
}
