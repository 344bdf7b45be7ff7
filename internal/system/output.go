package system

import (
	"time"

	"github.com/rosego/server/internal/core/ecs"
	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/messages"
	"github.com/rosego/server/internal/world"
)

// OutputSystem fans this tick's buffered entity messages out to clients.
// A message reaches every client whose visibility set contains the source,
// plus the source's own client. Runs after visibility so fresh observers
// already received their spawn before any action message about it.
type OutputSystem struct {
	stores    *world.Stores
	broadcast *messages.Broadcast
}

func NewOutputSystem(stores *world.Stores, broadcast *messages.Broadcast) *OutputSystem {
	return &OutputSystem{stores: stores, broadcast: broadcast}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(dt time.Duration) {
	st := s.stores

	s.broadcast.Drain(func(em messages.EntityMessage) {
		ecs.Each2(st.GameClient, st.Visibility, func(entity ecs.EntityID, client *world.GameClient, vis *world.Visibility) {
			ce, ok := st.ClientEntity.Get(entity)
			if !ok || ce.ZoneID != em.ZoneID {
				return
			}
			if ce.ID != em.Source && !vis.Entities.Contains(em.Source) {
				return
			}
			client.Send(em.Message)
		})
	})
}
