package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NpcData is an NPC/monster template.
type NpcData struct {
	ID   NpcID
	Name string

	Level  int32
	Health int32

	WalkSpeed float32
	RunSpeed  float32

	AttackRange float32
	AttackSpeed int32 // percent, 100 = normal
	AttackPower int32
	Defence     int32

	// RewardXP is the base experience granted when the NPC dies.
	RewardXP int32

	// IsMonster marks templates spawned by spawn points and attackable by
	// default; plain NPCs (shopkeepers etc.) are not.
	IsMonster bool
}

// NpcTable holds all NPC templates indexed by id.
type NpcTable struct {
	npcs map[NpcID]*NpcData
}

func (t *NpcTable) Get(id NpcID) *NpcData {
	return t.npcs[id]
}

func (t *NpcTable) Count() int {
	return len(t.npcs)
}

type npcYaml struct {
	ID          int32   `yaml:"id"`
	Name        string  `yaml:"name"`
	Level       int32   `yaml:"level"`
	Health      int32   `yaml:"health"`
	WalkSpeed   float32 `yaml:"walk_speed"`
	RunSpeed    float32 `yaml:"run_speed"`
	AttackRange float32 `yaml:"attack_range"`
	AttackSpeed int32   `yaml:"attack_speed"`
	AttackPower int32   `yaml:"attack_power"`
	Defence     int32   `yaml:"defence"`
	RewardXP    int32   `yaml:"reward_xp"`
	IsMonster   bool    `yaml:"is_monster"`
}

func LoadNpcTable(path string) (*NpcTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read npc list: %w", err)
	}

	var entries []npcYaml
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse npc list: %w", err)
	}

	t := &NpcTable{npcs: make(map[NpcID]*NpcData, len(entries))}
	for _, e := range entries {
		n := &NpcData{
			ID:          NpcID(e.ID),
			Name:        e.Name,
			Level:       e.Level,
			Health:      e.Health,
			WalkSpeed:   e.WalkSpeed,
			RunSpeed:    e.RunSpeed,
			AttackRange: e.AttackRange,
			AttackSpeed: e.AttackSpeed,
			AttackPower: e.AttackPower,
			Defence:     e.Defence,
			RewardXP:    e.RewardXP,
			IsMonster:   e.IsMonster,
		}
		if n.AttackSpeed == 0 {
			n.AttackSpeed = 100
		}
		t.npcs[n.ID] = n
	}
	return t, nil
}
