package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MotionFileData is the playback metadata for one animation clip.
type MotionFileData struct {
	Duration          time.Duration
	TotalAttackFrames int
}

type characterMotionKey struct {
	motionID   MotionID
	weaponType int
	gender     int
}

type npcMotionKey struct {
	npcID    NpcID
	motionID MotionID
}

// MotionTable maps motion ids to clip metadata. Character clips vary by
// equipped weapon's motion type and by gender; NPC clips are per npc id.
type MotionTable struct {
	character map[characterMotionKey]*MotionFileData
	npc       map[npcMotionKey]*MotionFileData
}

// CharacterMotion finds a character clip, falling back first to gender 0 and
// then to weapon type 0 when no exact variant exists.
func (t *MotionTable) CharacterMotion(id MotionID, weaponType, gender int) *MotionFileData {
	if m, ok := t.character[characterMotionKey{id, weaponType, gender}]; ok {
		return m
	}
	if m, ok := t.character[characterMotionKey{id, weaponType, 0}]; ok {
		return m
	}
	return t.character[characterMotionKey{id, 0, 0}]
}

func (t *MotionTable) NpcMotion(npcID NpcID, id MotionID) *MotionFileData {
	return t.npc[npcMotionKey{npcID, id}]
}

func (t *MotionTable) Count() int {
	return len(t.character) + len(t.npc)
}

type motionYaml struct {
	MotionID     int32 `yaml:"motion_id"`
	NpcID        int32 `yaml:"npc_id"`      // 0 = character motion
	WeaponType   int   `yaml:"weapon_type"` // character motions only
	Gender       int   `yaml:"gender"`      // character motions only
	DurationMs   int   `yaml:"duration_ms"`
	AttackFrames int   `yaml:"attack_frames"`
}

func LoadMotionTable(path string) (*MotionTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read motion list: %w", err)
	}

	var entries []motionYaml
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse motion list: %w", err)
	}

	t := &MotionTable{
		character: make(map[characterMotionKey]*MotionFileData),
		npc:       make(map[npcMotionKey]*MotionFileData),
	}
	for _, e := range entries {
		m := &MotionFileData{
			Duration:          time.Duration(e.DurationMs) * time.Millisecond,
			TotalAttackFrames: e.AttackFrames,
		}
		if e.NpcID != 0 {
			t.npc[npcMotionKey{NpcID(e.NpcID), MotionID(e.MotionID)}] = m
		} else {
			t.character[characterMotionKey{MotionID(e.MotionID), e.WeaponType, e.Gender}] = m
		}
	}
	return t, nil
}
