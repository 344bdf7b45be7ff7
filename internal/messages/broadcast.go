package messages

import "github.com/rosego/server/internal/data"

// EntityMessage is a notification scoped to the observers that can currently
// see the source entity.
type EntityMessage struct {
	Source  EntityID
	ZoneID  data.ZoneID
	Message ServerMessage
}

// Broadcast buffers entity-scoped messages across a tick. Systems append
// during their phases; the output phase fans each message out to every
// observer whose visibility set contains the source id, then clears the
// buffer. This keeps "who can see this" resolution in one place.
type Broadcast struct {
	entries []EntityMessage
}

func NewBroadcast() *Broadcast {
	return &Broadcast{entries: make([]EntityMessage, 0, 128)}
}

func (b *Broadcast) SendEntityMessage(source EntityID, zone data.ZoneID, msg ServerMessage) {
	b.entries = append(b.entries, EntityMessage{Source: source, ZoneID: zone, Message: msg})
}

// Drain calls fn for every buffered message in emission order, then clears
// the buffer.
func (b *Broadcast) Drain(fn func(EntityMessage)) {
	for i := range b.entries {
		fn(b.entries[i])
	}
	b.entries = b.entries[:0]
}

func (b *Broadcast) Len() int { return len(b.entries) }
