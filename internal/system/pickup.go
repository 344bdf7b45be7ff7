package system

import (
	"time"

	"github.com/rosego/server/internal/bundle"
	"github.com/rosego/server/internal/core/ecs"
	"github.com/rosego/server/internal/core/event"
	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/messages"
	"github.com/rosego/server/internal/world"
)

// PickupSystem resolves finished pickup motions: an owned drop only yields to
// its owner, everything else to whoever got there first. The drop entity is
// despawned on success; failure just notifies the picker.
type PickupSystem struct {
	stores  *world.Stores
	zones   *world.ZoneRegistry
	pickups *event.Queue[PickupItemEvent]
}

func NewPickupSystem(stores *world.Stores, zones *world.ZoneRegistry, pickups *event.Queue[PickupItemEvent]) *PickupSystem {
	return &PickupSystem{stores: stores, zones: zones, pickups: pickups}
}

func (s *PickupSystem) Phase() coresys.Phase { return coresys.PhaseSkillEffect }

func (s *PickupSystem) Update(dt time.Duration) {
	s.pickups.Drain(s.apply)
}

func (s *PickupSystem) apply(ev PickupItemEvent) {
	st := s.stores

	if !st.Entities.Alive(ev.Item) {
		return
	}
	drop, ok := st.ItemDrop.Get(ev.Item)
	if !ok {
		return
	}
	dce, ok := st.ClientEntity.Get(ev.Item)
	if !ok {
		return
	}

	success := drop.Owner == ecs.NilEntity || drop.Owner == ev.Picker

	if client, ok := st.GameClient.Get(ev.Picker); ok {
		client.Send(messages.PickupItemDropResult{
			DropEntityID: dce.ID,
			ItemNumber:   drop.ItemNumber,
			Quantity:     drop.Quantity,
			Success:      success,
		})
	}

	if success {
		bundle.DespawnEntity(st, s.zones, ev.Item)
	}
}
