package world

import "github.com/rosego/server/internal/data"

// ZoneRegistry is the single entry point to every zone's spatial index.
// Built once at startup from the zone table; zones are never added or
// removed at runtime.
type ZoneRegistry struct {
	zones map[data.ZoneID]*Zone
}

func NewZoneRegistry(zones *data.ZoneTable) *ZoneRegistry {
	r := &ZoneRegistry{zones: make(map[data.ZoneID]*Zone, zones.Count())}
	zones.Each(func(z *data.ZoneData) {
		r.zones[z.ID] = NewZone(z)
	})
	return r
}

// Get returns the zone's index, or nil for an unknown zone id.
func (r *ZoneRegistry) Get(id data.ZoneID) *Zone {
	return r.zones[id]
}

func (r *ZoneRegistry) Each(fn func(*Zone)) {
	for _, z := range r.zones {
		fn(z)
	}
}

// ProcessLeavers releases this tick's departed ids in every zone. Called
// once per tick, after visibility diffing.
func (r *ZoneRegistry) ProcessLeavers() {
	for _, z := range r.zones {
		z.ProcessLeavers()
	}
}
