package system

import "time"

// Phase defines execution ordering within a single tick. Movement is fully
// applied before command promotion, and commands before visibility diffing,
// so an attack validated this tick sees this tick's positions.
type Phase int

const (
	PhaseMovement    Phase = iota // 0: integrate positions, update zone sectors
	PhaseCommand                  // 1: promote NextCommand, advance animations
	PhaseSkillEffect              // 2: resolve due skill effects, apply damage
	PhaseSpawn                    // 3: monster spawn points, drop expiry
	PhaseVisibility               // 4: AOI diff, spawn/remove notifications
	PhaseOutput                   // 5: dispatch buffered entity messages
	PhasePersist                  // 6: batch character snapshots
	PhaseCleanup                  // 7: destroy queued entities
)

// System is implemented by every tick system.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
