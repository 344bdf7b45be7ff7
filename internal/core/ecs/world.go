package ecs

// Registry tracks every component store so entity destruction can clear all
// of an entity's data in one call.
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{stores: make([]Removable, 0, 24)}
}

func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}

// World owns the entity pool, the store registry and a deferred destruction
// queue. Destruction is always deferred to the cleanup phase so that systems
// running later in the same tick still see a consistent component set.
type World struct {
	pool     *Pool
	registry *Registry
	pending  []EntityID
}

func NewWorld() *World {
	return &World{
		pool:     NewPool(),
		registry: NewRegistry(),
		pending:  make([]EntityID, 0, 64),
	}
}

func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID { return w.pool.Create() }

func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

// MarkForDestruction queues an entity for end-of-tick removal.
func (w *World) MarkForDestruction(id EntityID) {
	w.pending = append(w.pending, id)
}

// FlushDestroyQueue removes queued entities from every store and releases
// their ids. Called once per tick by the cleanup system.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.pending {
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
	}
	w.pending = w.pending[:0]
}
