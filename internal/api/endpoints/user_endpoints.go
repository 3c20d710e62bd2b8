package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"creator-chat-backend/internal/api/middleware"
	"creator-chat-backend/internal/database"
	"creator-chat-backend/internal/dto"
	internaljwt "creator-chat-backend/internal/jwt"
	"creator-chat-backend/internal/model"
	usersvc "creator-chat-backend/internal/service/user"
)

type UserEndpoints interface {
	Me(http.ResponseWriter, *http.Request) error
	Username(http.ResponseWriter, *http.Request) error
	Profile(http.ResponseWriter, *http.Request) error
}

type userEndpoints struct {
	users *usersvc.Service
}

func NewUserEndpoints(db *database.Database) UserEndpoints {
	return &userEndpoints{users: usersvc.New(db)}
}

func NewUserEndpointsWithService(users *usersvc.Service) UserEndpoints {
	return &userEndpoints{users: users}
}

func (h *userEndpoints) Me(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleMe,
	})
}

func (h *userEndpoints) Username(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPatch: h.handleUsername,
	})
}

func (h *userEndpoints) Profile(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPatch: h.handleProfile,
	})
}

func (h *userEndpoints) handleMe(w http.ResponseWriter, r *http.Request) error {
	account, err := h.resolveUser(r)
	if err != nil {
		return err
	}

	return WriteJSON(w, http.StatusOK, dto.UserResponse{User: usersvc.Safe(account)})
}

func (h *userEndpoints) handleUsername(w http.ResponseWriter, r *http.Request) error {
	account, err := h.resolveUser(r)
	if err != nil {
		return err
	}

	var req dto.UpdateUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode username request: %w", err),
		}
	}

	updated, err := h.users.UpdateUsername(r.Context(), account, req.Username)
	if err != nil {
		return userServiceError(err)
	}

	return h.writeProfileUpdate(w, updated)
}

func (h *userEndpoints) handleProfile(w http.ResponseWriter, r *http.Request) error {
	account, err := h.resolveUser(r)
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode profile request: %w", err),
		}
	}

	updated, err := h.users.UpdateProfile(r.Context(), account, usersvc.ProfileChanges{
		Username: req.Username,
		Role:     req.Role,
	})
	if err != nil {
		return userServiceError(err)
	}

	return h.writeProfileUpdate(w, updated)
}

// writeProfileUpdate re-signs the token so the client's credential reflects
// the new profile; a signing failure still returns the updated user.
func (h *userEndpoints) writeProfileUpdate(w http.ResponseWriter, account model.UserItem) error {
	token, err := internaljwt.SignAuthToken(account)
	if err != nil {
		token = ""
	}

	return WriteJSON(w, http.StatusOK, dto.ProfileUpdateResponse{
		Token: token,
		User:  usersvc.Safe(account),
	})
}

func (h *userEndpoints) resolveUser(r *http.Request) (model.UserItem, error) {
	token := middleware.BearerToken(r)
	claims := internaljwt.VerifyAuthToken(token)
	if claims == nil {
		return model.UserItem{}, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   fmt.Errorf("invalid bearer token"),
		}
	}

	account, err := h.users.FindFromClaims(r.Context(), claims)
	if err != nil {
		return model.UserItem{}, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   err,
		}
	}

	return account, nil
}
