package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SkillActionMode decides what the caster does after the cast completes.
type SkillActionMode uint8

const (
	SkillActionStop    SkillActionMode = iota // stand still
	SkillActionAttack                         // resume attacking the cast target
	SkillActionRestore                        // return to the pre-cast command
)

type SkillType uint8

const (
	SkillTypeAttack SkillType = iota
	SkillTypeHeal
	SkillTypeBuff
	SkillTypeOther
)

// SkillData is a single skill template.
type SkillData struct {
	ID     SkillID
	Name   string
	Type   SkillType
	Action SkillActionMode

	// CastRange 0 means "use the caster's attack range".
	CastRange float32

	CastingMotionID    MotionID
	CastingMotionSpeed float32
	ActionMotionID     MotionID
	ActionMotionSpeed  float32

	UseMana int32
	Power   int32
}

// SkillTable holds all skills indexed by id.
type SkillTable struct {
	skills map[SkillID]*SkillData
}

func (t *SkillTable) Get(id SkillID) *SkillData {
	return t.skills[id]
}

func (t *SkillTable) Count() int {
	return len(t.skills)
}

type skillYaml struct {
	ID                 int32   `yaml:"id"`
	Name               string  `yaml:"name"`
	Type               string  `yaml:"type"`        // attack / heal / buff / other
	Action             string  `yaml:"action_mode"` // stop / attack / restore
	CastRange          float32 `yaml:"cast_range"`
	CastingMotionID    int32   `yaml:"casting_motion_id"`
	CastingMotionSpeed float32 `yaml:"casting_motion_speed"`
	ActionMotionID     int32   `yaml:"action_motion_id"`
	ActionMotionSpeed  float32 `yaml:"action_motion_speed"`
	UseMana            int32   `yaml:"use_mana"`
	Power              int32   `yaml:"power"`
}

func LoadSkillTable(path string) (*SkillTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skill list: %w", err)
	}

	var entries []skillYaml
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse skill list: %w", err)
	}

	t := &SkillTable{skills: make(map[SkillID]*SkillData, len(entries))}
	for _, e := range entries {
		s := &SkillData{
			ID:                 SkillID(e.ID),
			Name:               e.Name,
			CastRange:          e.CastRange,
			CastingMotionID:    MotionID(e.CastingMotionID),
			CastingMotionSpeed: e.CastingMotionSpeed,
			ActionMotionID:     MotionID(e.ActionMotionID),
			ActionMotionSpeed:  e.ActionMotionSpeed,
			UseMana:            e.UseMana,
			Power:              e.Power,
		}
		if s.CastingMotionSpeed <= 0 {
			s.CastingMotionSpeed = 1
		}
		if s.ActionMotionSpeed <= 0 {
			s.ActionMotionSpeed = 1
		}
		switch e.Type {
		case "attack":
			s.Type = SkillTypeAttack
		case "heal":
			s.Type = SkillTypeHeal
		case "buff":
			s.Type = SkillTypeBuff
		case "", "other":
			s.Type = SkillTypeOther
		default:
			return nil, fmt.Errorf("skill %d: unknown type %q", e.ID, e.Type)
		}
		switch e.Action {
		case "", "stop":
			s.Action = SkillActionStop
		case "attack":
			s.Action = SkillActionAttack
		case "restore":
			s.Action = SkillActionRestore
		default:
			return nil, fmt.Errorf("skill %d: unknown action_mode %q", e.ID, e.Action)
		}
		t.skills[s.ID] = s
	}
	return t, nil
}
