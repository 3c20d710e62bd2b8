package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"creator-chat-backend/internal/model"
)

type sessionState int

const (
	stateConnected sessionState = iota
	stateJoined
	stateClosed
)

// Session drives the protocol for one connection: Connected -> Joined ->
// Closed. All inbound events for a connection arrive on its read pump, so
// session fields need no locking; Close may race the pump and is guarded by
// a sync.Once.
type Session struct {
	conn    Conn
	reg     *Registry
	bc      *Broadcaster
	gate    AuthGate
	history HistoryStore
	now     func() time.Time

	state     sessionState
	roomID    string
	identity  Identity
	closeOnce sync.Once
}

func NewSession(conn Conn, reg *Registry, bc *Broadcaster, gate AuthGate, history HistoryStore) *Session {
	return &Session{
		conn:    conn,
		reg:     reg,
		bc:      bc,
		gate:    gate,
		history: history,
		now:     time.Now,
	}
}

// HandleRaw applies one inbound frame. Unparseable payloads, unknown types,
// and types arriving in the wrong state are dropped without a reply; that is
// the protocol's ignore-noise policy, not an oversight.
func (s *Session) HandleRaw(ctx context.Context, data []byte) {
	ev, ok := parseInbound(data)
	if !ok {
		return
	}

	switch ev.Type {
	case inboundJoin:
		if s.state == stateConnected {
			s.handleJoin(ctx, ev)
		}
	case inboundSyncUsername:
		if s.state == stateJoined {
			s.handleSyncUsername(ctx, ev)
		}
	case inboundTyping:
		if s.state == stateJoined {
			s.handleTyping(ev)
		}
	case inboundMessage:
		if s.state == stateJoined {
			s.handleMessage(ctx, ev)
		}
	default:
		// Unknown type: ignore.
	}
}

func (s *Session) handleJoin(ctx context.Context, ev inboundEvent) {
	roomID := strings.TrimSpace(ev.Room)
	if !s.reg.ValidRoom(roomID) {
		incJoinRejection("invalid_room")
		s.reject("Invalid room. Choose room-1, room-2, or room-3.")
		return
	}

	token := strings.TrimSpace(ev.AuthToken)
	if token == "" {
		incJoinRejection("auth_required")
		s.reject("Authentication is required.")
		return
	}

	resolved, authErr := s.gate.Resolve(ctx, token)
	if authErr != nil {
		switch authErr.Reason {
		case MissingCredential:
			incJoinRejection("auth_required")
			s.reject("Authentication is required.")
		case InvalidOrExpiredCredential:
			incJoinRejection("invalid_token")
			s.reject("Invalid or expired authentication token.")
		case UserNotFound:
			incJoinRejection("user_not_found")
			s.reject("Authenticated user was not found.")
		case RoleNotAssigned:
			incJoinRejection("role_missing")
			s.reject("User role is missing. Update your profile role first.")
		case LookupFailed:
			// A store outage is not the client's fault; drop the join
			// without blaming the account so a retry can succeed.
			incJoinRejection("lookup_failed")
			log.Printf("chat: user lookup failed during join: %v", authErr)
		}
		return
	}

	ident := Identity{
		UserID:   resolved.ID,
		Username: resolved.Username,
		Role:     resolved.Role,
	}

	if err := s.reg.TryJoin(s.conn, roomID, ident); err != nil {
		switch joinErr := err.(type) {
		case *RoleOccupiedError:
			incJoinRejection("role_occupied")
			s.reject(fmt.Sprintf("This room already has a %s. Choose a different room.", joinErr.Role))
		default:
			if err == ErrAlreadyInRoom {
				incJoinRejection("already_in_room")
				s.reject("You are already in a room.")
			} else {
				incJoinRejection("invalid_room")
				s.reject("Invalid room. Choose room-1, room-2, or room-3.")
			}
		}
		return
	}

	s.state = stateJoined
	s.roomID = roomID
	s.identity = ident

	s.bc.ToConn(s.conn, JoinedEvent{
		Type:     "joined",
		Room:     roomID,
		Username: ident.Username,
		Role:     ident.Role,
		User:     resolved,
	})

	s.bc.ToConn(s.conn, s.historyEvent(ctx, roomID))

	s.bc.ToRoom(roomID, newSystem(
		fmt.Sprintf("%s (%s) joined the chat", ident.Username, ident.Role),
		s.timestamp(),
	))
	s.broadcastRoomState(roomID)
	s.broadcastTypingState(roomID)
}

func (s *Session) handleSyncUsername(ctx context.Context, ev inboundEvent) {
	resolved, authErr := s.gate.Resolve(ctx, strings.TrimSpace(ev.AuthToken))
	if authErr != nil {
		return
	}
	if resolved.ID != s.identity.UserID {
		// A token for a different account never rebinds this connection.
		return
	}

	if resolved.Role != s.identity.Role {
		// Role is sticky for the life of a joined connection.
		s.bc.ToConn(s.conn, newError("Role updated in profile. Leave and rejoin for new role to take effect."))
	}

	previous := s.identity.Username
	if resolved.Username == previous {
		return
	}

	s.identity.Username = resolved.Username
	s.reg.UpdateUsername(s.conn, resolved.Username)

	s.bc.ToRoom(s.roomID, newSystem(
		fmt.Sprintf("%s changed username to %s", previous, resolved.Username),
		s.timestamp(),
	))
	s.broadcastRoomState(s.roomID)
	s.broadcastTypingState(s.roomID)
}

func (s *Session) handleTyping(ev inboundEvent) {
	roomID, _, ok := s.reg.SetTyping(s.conn, ev.IsTyping)
	if !ok {
		return
	}
	// Typing state is rebroadcast even when the flag did not change.
	s.broadcastTypingState(roomID)
}

func (s *Session) handleMessage(ctx context.Context, ev inboundEvent) {
	text := strings.TrimSpace(ev.Message)
	if text == "" {
		return
	}
	if runes := []rune(text); len(runes) > model.MaxMessageLength {
		text = string(runes[:model.MaxMessageLength])
	}

	if roomID, changed, ok := s.reg.SetTyping(s.conn, false); ok && changed {
		s.broadcastTypingState(roomID)
	}

	timestamp := s.timestamp()
	stored, err := s.history.Append(ctx, model.MessageItem{
		RoomID:         s.roomID,
		SenderUserID:   s.identity.UserID,
		SenderUsername: s.identity.Username,
		SenderRole:     s.identity.Role,
		Text:           text,
	})
	if err != nil {
		log.Printf("chat: failed to persist message in %s: %v", s.roomID, err)
	} else {
		timestamp = stored.CreatedAt
	}

	s.bc.ToRoom(s.roomID, MessageEvent{
		Type:      "message",
		Username:  s.identity.Username,
		Role:      s.identity.Role,
		Message:   text,
		Timestamp: timestamp,
	})
}

// Close runs the close transition exactly once, in any state.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.state != stateJoined {
			s.state = stateClosed
			return
		}

		roomID, ident, left := s.reg.Leave(s.conn)
		s.state = stateClosed
		if !left {
			return
		}

		s.bc.ToRoom(roomID, newSystem(
			fmt.Sprintf("%s (%s) left the chat", ident.Username, ident.Role),
			s.timestamp(),
		))
		s.broadcastRoomState(roomID)
		s.broadcastTypingState(roomID)
	})
}

func (s *Session) historyEvent(ctx context.Context, roomID string) HistoryEvent {
	out := HistoryEvent{Type: "history", Room: roomID, Messages: []HistoryEntry{}}

	messages, err := s.history.Recent(ctx, roomID, model.HistoryLimit)
	if err != nil {
		log.Printf("chat: failed to load history for %s: %v", roomID, err)
		return out
	}

	for _, msg := range messages {
		out.Messages = append(out.Messages, HistoryEntry{
			Type:      "message",
			Username:  msg.SenderUsername,
			Role:      msg.SenderRole,
			Message:   msg.Text,
			Timestamp: msg.CreatedAt,
		})
	}
	return out
}

func (s *Session) broadcastRoomState(roomID string) {
	snap, ok := s.reg.Snapshot(roomID)
	if !ok {
		return
	}
	s.bc.ToRoom(roomID, RoomStateEvent{
		Type:      "room_state",
		Room:      roomID,
		Occupants: snap.Occupants,
	})
}

func (s *Session) broadcastTypingState(roomID string) {
	snap, ok := s.reg.Snapshot(roomID)
	if !ok {
		return
	}
	s.bc.ToRoom(roomID, TypingStateEvent{
		Type:  "typing_state",
		Room:  roomID,
		Users: snap.Typers,
	})
}

func (s *Session) reject(message string) {
	s.bc.ToConn(s.conn, newError(message))
}

func (s *Session) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
