package model

// The room set and role set are deployment constants. The chat core and the
// user service both depend on them; changing either requires redeploying both.

const (
	RoleInfluencer = "influencer"
	RoleBrand      = "brand"
)

var RoomIDs = []string{"room-1", "room-2", "room-3"}

var Roles = []string{RoleInfluencer, RoleBrand}

const (
	HistoryLimit     = 80
	MaxMessageLength = 2000
	UsernameMinLen   = 3
	UsernameMaxLen   = 24
)

func IsValidRoom(roomID string) bool {
	for _, id := range RoomIDs {
		if id == roomID {
			return true
		}
	}
	return false
}

func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
