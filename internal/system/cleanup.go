package system

import (
	"time"

	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/world"
)

// CleanupSystem flushes the entity destroy queue at the very end of the tick,
// after every phase that may still have read the despawned entities.
type CleanupSystem struct {
	stores *world.Stores
}

func NewCleanupSystem(stores *world.Stores) *CleanupSystem {
	return &CleanupSystem{stores: stores}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(dt time.Duration) {
	s.stores.Entities.FlushDestroyQueue()
}
