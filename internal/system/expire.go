package system

import (
	"time"

	"github.com/rosego/server/internal/bundle"
	"github.com/rosego/server/internal/core/ecs"
	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/world"
)

// ExpireSystem despawns entities whose expire time has passed; today that is
// item drops nobody picked up.
type ExpireSystem struct {
	stores *world.Stores
	zones  *world.ZoneRegistry
	clock  *world.Clock
}

func NewExpireSystem(stores *world.Stores, zones *world.ZoneRegistry, clock *world.Clock) *ExpireSystem {
	return &ExpireSystem{stores: stores, zones: zones, clock: clock}
}

func (s *ExpireSystem) Phase() coresys.Phase { return coresys.PhaseSpawn }

func (s *ExpireSystem) Update(dt time.Duration) {
	st := s.stores

	var expired []ecs.EntityID
	st.ExpireTime.Each(func(entity ecs.EntityID, expire *world.ExpireTime) {
		if s.clock.Elapsed >= expire.At {
			expired = append(expired, entity)
		}
	})

	for _, entity := range expired {
		bundle.DespawnEntity(st, s.zones, entity)
	}
}
