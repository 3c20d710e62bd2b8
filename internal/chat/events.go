package chat

import "encoding/json"

// Wire protocol: one JSON object per websocket message, discriminated by
// "type". Inbound payloads all decode into inboundEvent; fields that do not
// apply to a given type are left zero. Unknown types are dropped by the
// session's dispatch switch.

const (
	inboundJoin         = "join"
	inboundSyncUsername = "sync_username"
	inboundTyping       = "typing"
	inboundMessage      = "message"
)

type inboundEvent struct {
	Type      string `json:"type"`
	Room      string `json:"room"`
	AuthToken string `json:"authToken"`
	IsTyping  bool   `json:"isTyping"`
	Message   string `json:"message"`
}

func parseInbound(data []byte) (inboundEvent, bool) {
	var ev inboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return inboundEvent{}, false
	}
	return ev, true
}

// Event is the closed set of server-to-client payloads.
type Event interface {
	eventType() string
}

type Presence struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type RoomOptionsEvent struct {
	Type  string   `json:"type"`
	Rooms []string `json:"rooms"`
}

func (RoomOptionsEvent) eventType() string { return "room_options" }

type JoinedEvent struct {
	Type     string      `json:"type"`
	Room     string      `json:"room"`
	Username string      `json:"username"`
	Role     string      `json:"role"`
	User     interface{} `json:"user"`
}

func (JoinedEvent) eventType() string { return "joined" }

type HistoryEntry struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type HistoryEvent struct {
	Type     string         `json:"type"`
	Room     string         `json:"room"`
	Messages []HistoryEntry `json:"messages"`
}

func (HistoryEvent) eventType() string { return "history" }

type RoomStateEvent struct {
	Type      string     `json:"type"`
	Room      string     `json:"room"`
	Occupants []Presence `json:"occupants"`
}

func (RoomStateEvent) eventType() string { return "room_state" }

type TypingStateEvent struct {
	Type  string     `json:"type"`
	Room  string     `json:"room"`
	Users []Presence `json:"users"`
}

func (TypingStateEvent) eventType() string { return "typing_state" }

type MessageEvent struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (MessageEvent) eventType() string { return "message" }

type SystemEvent struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	System    bool   `json:"system"`
}

func (SystemEvent) eventType() string { return "system" }

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (ErrorEvent) eventType() string { return "error" }

func newRoomOptions(rooms []string) RoomOptionsEvent {
	return RoomOptionsEvent{Type: "room_options", Rooms: rooms}
}

func newSystem(text, timestamp string) SystemEvent {
	return SystemEvent{
		Type:      "system",
		Username:  "System",
		Message:   text,
		Timestamp: timestamp,
		System:    true,
	}
}

func newError(message string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: message}
}
