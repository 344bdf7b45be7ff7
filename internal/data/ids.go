package data

// Shared template-id types. These are data identifiers (template keys), not
// runtime entity ids.

type ZoneID uint16

type NpcID int32

type SkillID int32

// MotionID indexes the motion databases. 0 means "no motion".
type MotionID int32
