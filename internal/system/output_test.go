package system

import (
	"testing"
	"time"

	"github.com/rosego/server/internal/messages"
	"github.com/rosego/server/internal/world"
)

func TestBroadcastReachesOnlyObserversWhoSeeTheSource(t *testing.T) {
	env := newTestEnv(t)
	vs := NewVisibilitySystem(env.stores, env.zones, env.clock)
	out := NewOutputSystem(env.stores, env.bcast)

	source, sourceTx := env.spawnCharacter(t, "source", world.Vec3{X: 600, Y: 500})
	_, nearTx := env.spawnCharacter(t, "near", world.Vec3{X: 500, Y: 500})
	_, farTx := env.spawnCharacter(t, "far", world.Vec3{X: 3500, Y: 3500})

	// Populate visibility sets, then discard the spawn notifications.
	vs.Update(100 * time.Millisecond)
	drainClient(sourceTx)
	drainClient(nearTx)
	drainClient(farTx)

	sce := env.stores.ClientEntity.MustGet(source)
	env.bcast.SendEntityMessage(sce.ID, sce.ZoneID, messages.SitToggle{EntityID: sce.ID})

	out.Update(100 * time.Millisecond)

	if msgs := drainClient(nearTx); len(msgs) != 1 {
		t.Fatalf("near observer got %d messages, want 1", len(msgs))
	}
	// The source hears about its own actions.
	if msgs := drainClient(sourceTx); len(msgs) != 1 {
		t.Fatalf("source got %d messages, want 1", len(msgs))
	}
	if msgs := drainClient(farTx); len(msgs) != 0 {
		t.Fatalf("far observer got %d messages, want 0", len(msgs))
	}
	if env.bcast.Len() != 0 {
		t.Fatalf("broadcast buffer not drained")
	}
}
