package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AmmoIndex selects which ammo slot a weapon consumes from.
type AmmoIndex int

const (
	AmmoNone AmmoIndex = iota - 1
	AmmoArrow
	AmmoBullet
	AmmoThrow
)

const NumAmmoSlots = 3

// WeaponData is a weapon template. MotionType selects which character
// animation variants the wielder plays.
type WeaponData struct {
	ItemNumber  int32
	Name        string
	MotionType  int
	AttackRange float32
	AttackPower int32
	Ammo        AmmoIndex // AmmoNone when the weapon consumes no ammo
}

// ItemTable holds weapon templates indexed by item number.
type ItemTable struct {
	weapons map[int32]*WeaponData
}

func (t *ItemTable) Weapon(itemNumber int32) *WeaponData {
	return t.weapons[itemNumber]
}

func (t *ItemTable) Count() int {
	return len(t.weapons)
}

type weaponYaml struct {
	ItemNumber  int32   `yaml:"item_number"`
	Name        string  `yaml:"name"`
	MotionType  int     `yaml:"motion_type"`
	AttackRange float32 `yaml:"attack_range"`
	AttackPower int32   `yaml:"attack_power"`
	Ammo        string  `yaml:"ammo"` // "", arrow, bullet, throw
}

func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weapon list: %w", err)
	}

	var entries []weaponYaml
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse weapon list: %w", err)
	}

	t := &ItemTable{weapons: make(map[int32]*WeaponData, len(entries))}
	for _, e := range entries {
		w := &WeaponData{
			ItemNumber:  e.ItemNumber,
			Name:        e.Name,
			MotionType:  e.MotionType,
			AttackRange: e.AttackRange,
			AttackPower: e.AttackPower,
		}
		switch e.Ammo {
		case "":
			w.Ammo = AmmoNone
		case "arrow":
			w.Ammo = AmmoArrow
		case "bullet":
			w.Ammo = AmmoBullet
		case "throw":
			w.Ammo = AmmoThrow
		default:
			return nil, fmt.Errorf("weapon %d: unknown ammo %q", e.ItemNumber, e.Ammo)
		}
		t.weapons[w.ItemNumber] = w
	}
	return t, nil
}
