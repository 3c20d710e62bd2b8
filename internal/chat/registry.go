package chat

import (
	"fmt"
	"sort"
	"sync"
)

// Conn is the send side of one connected client. Send must never block: it
// reports false when the peer is not currently writable and the event is
// dropped for that peer only.
type Conn interface {
	ID() string
	Send(ev Event) bool
}

// Identity is bound to a connection on a successful join. UserID and Role are
// immutable for the life of the connection; Username may be refreshed via
// sync_username.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

var (
	ErrUnknownRoom   = fmt.Errorf("unknown room")
	ErrAlreadyInRoom = fmt.Errorf("already in a room")
)

// RoleOccupiedError reports which role slot blocked a join.
type RoleOccupiedError struct {
	Room string
	Role string
}

func (e *RoleOccupiedError) Error() string {
	return fmt.Sprintf("room %s already has a %s", e.Room, e.Role)
}

type member struct {
	conn     Conn
	identity Identity
}

type room struct {
	id        string
	members   map[string]*member  // conn id -> member
	typers    map[string]struct{} // conn ids
	occupancy map[string]string   // role -> conn id
}

func newRoom(id string) *room {
	return &room{
		id:        id,
		members:   make(map[string]*member),
		typers:    make(map[string]struct{}),
		occupancy: make(map[string]string),
	}
}

// Registry owns the fixed room set. All mutation funnels through one mutex so
// the join check-and-set is indivisible; nothing blocking is ever done under
// the lock.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*room
	byConn map[string]string // conn id -> room id
	order  []string
}

func NewRegistry(roomIDs []string) *Registry {
	r := &Registry{
		rooms:  make(map[string]*room, len(roomIDs)),
		byConn: make(map[string]string),
		order:  append([]string(nil), roomIDs...),
	}
	for _, id := range roomIDs {
		r.rooms[id] = newRoom(id)
	}
	return r
}

func (r *Registry) RoomIDs() []string {
	return append([]string(nil), r.order...)
}

// TryJoin atomically validates the room, the connection's join state, and the
// role slot, then admits the connection. Exactly one of two simultaneous
// joins for the same empty slot can succeed.
func (r *Registry) TryJoin(c Conn, roomID string, ident Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return ErrUnknownRoom
	}
	if _, joined := r.byConn[c.ID()]; joined {
		return ErrAlreadyInRoom
	}
	if _, occupied := rm.occupancy[ident.Role]; occupied {
		return &RoleOccupiedError{Room: roomID, Role: ident.Role}
	}

	rm.members[c.ID()] = &member{conn: c, identity: ident}
	rm.occupancy[ident.Role] = c.ID()
	r.byConn[c.ID()] = roomID

	setRoomMembers(roomID, len(rm.members))
	return nil
}

// Leave is idempotent. The role slot is cleared only when it still points at
// this exact connection.
func (r *Registry) Leave(c Conn) (string, Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.byConn[c.ID()]
	if !ok {
		return "", Identity{}, false
	}
	rm := r.rooms[roomID]

	m, present := rm.members[c.ID()]
	if !present {
		delete(r.byConn, c.ID())
		return "", Identity{}, false
	}

	delete(rm.members, c.ID())
	delete(rm.typers, c.ID())
	if rm.occupancy[m.identity.Role] == c.ID() {
		delete(rm.occupancy, m.identity.Role)
	}
	delete(r.byConn, c.ID())

	setRoomMembers(roomID, len(rm.members))
	return roomID, m.identity, true
}

// SetTyping flips the typing flag for a joined connection. It reports the
// room and whether the flag actually changed; no-op when not joined.
func (r *Registry) SetTyping(c Conn, typing bool) (string, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.byConn[c.ID()]
	if !ok {
		return "", false, false
	}
	rm := r.rooms[roomID]
	if _, present := rm.members[c.ID()]; !present {
		return "", false, false
	}

	_, was := rm.typers[c.ID()]
	if typing {
		rm.typers[c.ID()] = struct{}{}
	} else {
		delete(rm.typers, c.ID())
	}
	return roomID, was != typing, true
}

// UpdateUsername refreshes the stored identity after a sync_username; role is
// deliberately not touched here.
func (r *Registry) UpdateUsername(c Conn, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.byConn[c.ID()]
	if !ok {
		return
	}
	if m, present := r.rooms[roomID].members[c.ID()]; present {
		m.identity.Username = username
	}
}

// Snapshot is a read-only view for broadcast construction. Typers are
// filtered against current members, purging any stale entry on the way out.
type Snapshot struct {
	Conns     []Conn
	Occupants []Presence
	Typers    []Presence
}

func (r *Registry) Snapshot(roomID string) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return Snapshot{}, false
	}

	snap := Snapshot{
		Conns:     make([]Conn, 0, len(rm.members)),
		Occupants: make([]Presence, 0, len(rm.members)),
		Typers:    make([]Presence, 0, len(rm.typers)),
	}

	ids := make([]string, 0, len(rm.members))
	for id := range rm.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		m := rm.members[id]
		snap.Conns = append(snap.Conns, m.conn)
		snap.Occupants = append(snap.Occupants, Presence{
			Username: m.identity.Username,
			Role:     m.identity.Role,
		})
	}

	for id := range rm.typers {
		m, present := rm.members[id]
		if !present {
			delete(rm.typers, id)
			continue
		}
		snap.Typers = append(snap.Typers, Presence{
			Username: m.identity.Username,
			Role:     m.identity.Role,
		})
	}
	sort.Slice(snap.Typers, func(i, j int) bool {
		return snap.Typers[i].Username < snap.Typers[j].Username
	})

	return snap, true
}

// ValidRoom reports whether the id belongs to the fixed set. The room map is
// never mutated after construction, so no lock is needed.
func (r *Registry) ValidRoom(roomID string) bool {
	return r.rooms[roomID] != nil
}
