package system

import (
	"github.com/rosego/server/internal/core/ecs"
	"github.com/rosego/server/internal/data"
)

// DamageEvent asks the damage pipeline to resolve one attack or skill hit.
// The amount is not precomputed; the damage system runs the formula so the
// scripting engine is consulted in exactly one place.
type DamageEvent struct {
	Attacker ecs.EntityID
	Defender ecs.EntityID
	HitCount int

	// FromSkill is 0 for plain attacks; SkillPower rides along for skill
	// damage scaling.
	FromSkill  data.SkillID
	SkillPower int32
}

// RewardXPEvent grants experience to an entity. Source is the entity the
// reward came from, usually the dead monster.
type RewardXPEvent struct {
	Entity ecs.EntityID
	XP     int64
	Source ecs.EntityID
}

// PickupItemEvent asks the pickup pipeline to transfer a dropped item to the
// entity that finished its pickup motion.
type PickupItemEvent struct {
	Picker ecs.EntityID
	Item   ecs.EntityID
}
