package data

import (
	"fmt"
	"path/filepath"
)

// GameData aggregates every static table the systems consult.
type GameData struct {
	Zones   *ZoneTable
	Npcs    *NpcTable
	Skills  *SkillTable
	Motions *MotionTable
	Items   *ItemTable
}

// LoadGameData loads all tables from dir (the yaml data directory).
func LoadGameData(dir string) (*GameData, error) {
	zones, err := LoadZoneTable(filepath.Join(dir, "zone_list.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	npcs, err := LoadNpcTable(filepath.Join(dir, "npc_list.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load npcs: %w", err)
	}
	skills, err := LoadSkillTable(filepath.Join(dir, "skill_list.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load skills: %w", err)
	}
	motions, err := LoadMotionTable(filepath.Join(dir, "motion_list.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load motions: %w", err)
	}
	items, err := LoadItemTable(filepath.Join(dir, "weapon_list.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load weapons: %w", err)
	}

	return &GameData{
		Zones:   zones,
		Npcs:    npcs,
		Skills:  skills,
		Motions: motions,
		Items:   items,
	}, nil
}
