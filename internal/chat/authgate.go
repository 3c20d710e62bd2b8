package chat

import (
	"context"
	"errors"
	"strings"

	internaljwt "creator-chat-backend/internal/jwt"
	"creator-chat-backend/internal/model"
	usersvc "creator-chat-backend/internal/service/user"
)

type AuthFailure string

const (
	MissingCredential          AuthFailure = "missing_credential"
	InvalidOrExpiredCredential AuthFailure = "invalid_credential"
	UserNotFound               AuthFailure = "user_not_found"
	RoleNotAssigned            AuthFailure = "role_not_assigned"
	// LookupFailed means the credential may be fine but the user store did
	// not answer; callers must not report it as a bad account.
	LookupFailed AuthFailure = "lookup_failed"
)

type AuthError struct {
	Reason AuthFailure
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return string(e.Reason) + ": " + e.Err.Error()
	}
	return string(e.Reason)
}

// AuthGate resolves an opaque bearer credential to a user profile with a
// valid chat role. It is a pure read against the user store and never panics
// on malformed input.
type AuthGate interface {
	Resolve(ctx context.Context, token string) (usersvc.SafeUser, *AuthError)
}

type tokenAuthGate struct {
	users *usersvc.Service
}

func NewAuthGate(users *usersvc.Service) AuthGate {
	return &tokenAuthGate{users: users}
}

func (g *tokenAuthGate) Resolve(ctx context.Context, token string) (usersvc.SafeUser, *AuthError) {
	token = strings.TrimSpace(token)
	if token == "" {
		return usersvc.SafeUser{}, &AuthError{Reason: MissingCredential}
	}

	claims := internaljwt.VerifyAuthToken(token)
	if claims == nil {
		return usersvc.SafeUser{}, &AuthError{Reason: InvalidOrExpiredCredential}
	}

	found, err := g.users.FindFromClaims(ctx, claims)
	if err != nil {
		var svcErr *usersvc.Error
		if errors.As(err, &svcErr) && svcErr.Code == usersvc.ErrorCodeNotFound {
			return usersvc.SafeUser{}, &AuthError{Reason: UserNotFound}
		}
		return usersvc.SafeUser{}, &AuthError{Reason: LookupFailed, Err: err}
	}

	safe := usersvc.Safe(found)
	safe.Role = strings.ToLower(strings.TrimSpace(safe.Role))
	if !model.IsValidRole(safe.Role) {
		return usersvc.SafeUser{}, &AuthError{Reason: RoleNotAssigned}
	}

	return safe, nil
}
