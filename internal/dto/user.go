package dto

import usersvc "creator-chat-backend/internal/service/user"

type UpdateUsernameRequest struct {
	Username string `json:"username"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Role     *string `json:"role,omitempty"`
}

type UserResponse struct {
	User usersvc.SafeUser `json:"user"`
}

// ProfileUpdateResponse carries the refreshed token so the client can keep
// chatting without re-authenticating after a username or role change.
type ProfileUpdateResponse struct {
	Token string           `json:"token,omitempty"`
	User  usersvc.SafeUser `json:"user"`
}
