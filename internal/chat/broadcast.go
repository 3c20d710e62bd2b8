package chat

// Broadcaster fans events out to room members. Delivery is best-effort per
// peer: a member whose transport is not writable is skipped without affecting
// the rest of the pass.
type Broadcaster struct {
	reg *Registry
}

func NewBroadcaster(reg *Registry) *Broadcaster {
	return &Broadcaster{reg: reg}
}

func (b *Broadcaster) ToRoom(roomID string, ev Event) {
	snap, ok := b.reg.Snapshot(roomID)
	if !ok {
		return
	}

	delivered := 0
	for _, c := range snap.Conns {
		if c.Send(ev) {
			delivered++
		}
	}
	if delivered > 0 {
		addDelivered(delivered)
	}
}

func (b *Broadcaster) ToConn(c Conn, ev Event) {
	if c.Send(ev) {
		addDelivered(1)
	}
}
