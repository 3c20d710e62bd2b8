package endpoints

import (
	"fmt"
	"net/http"
	"net/url"

	"creator-chat-backend/internal/api/middleware"
	"creator-chat-backend/internal/database"
	"creator-chat-backend/internal/dto"
	"creator-chat-backend/internal/env"
	internaljwt "creator-chat-backend/internal/jwt"
	"creator-chat-backend/internal/model"
	"creator-chat-backend/internal/service/googleauth"
	usersvc "creator-chat-backend/internal/service/user"
)

type AuthEndpoints interface {
	GoogleStart(http.ResponseWriter, *http.Request) error
	GoogleCallback(http.ResponseWriter, *http.Request) error
	Me(http.ResponseWriter, *http.Request) error
}

type authEndpoints struct {
	users       *usersvc.Service
	oauth       *googleauth.Service
	frontendURL string
}

func NewAuthEndpoints(db *database.Database) AuthEndpoints {
	return &authEndpoints{
		users:       usersvc.New(db),
		oauth:       googleauth.New(),
		frontendURL: env.GetOrDefault(env.FrontendURL, "http://localhost:5173"),
	}
}

func NewAuthEndpointsWithServices(users *usersvc.Service, oauth *googleauth.Service, frontendURL string) AuthEndpoints {
	return &authEndpoints{
		users:       users,
		oauth:       oauth,
		frontendURL: frontendURL,
	}
}

func (h *authEndpoints) GoogleStart(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleGoogleStart,
	})
}

func (h *authEndpoints) GoogleCallback(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleGoogleCallback,
	})
}

func (h *authEndpoints) Me(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleMe,
	})
}

func (h *authEndpoints) handleGoogleStart(w http.ResponseWriter, r *http.Request) error {
	if !h.oauth.Configured() {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Google OAuth is not configured on server.",
			ErrorLog:   fmt.Errorf("google oauth unconfigured"),
		}
	}

	http.Redirect(w, r, h.oauth.AuthURL(), http.StatusFound)
	return nil
}

// handleGoogleCallback finishes the code flow. All failures bounce back to
// the frontend login page with a readable error instead of a JSON body,
// because the browser lands here directly from Google.
func (h *authEndpoints) handleGoogleCallback(w http.ResponseWriter, r *http.Request) error {
	if !h.oauth.Configured() {
		h.redirectLoginError(w, r, "Google OAuth is not configured on server.")
		return nil
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectLoginError(w, r, "Missing Google authorization code.")
		return nil
	}

	profile, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.redirectLoginError(w, r, "Google login failed. Try again.")
		return nil
	}

	account, err := h.users.UpsertGoogleUser(r.Context(), profile)
	if err != nil {
		h.redirectLoginError(w, r, "Google login failed. Try again.")
		return nil
	}

	token, err := internaljwt.SignAuthToken(account)
	if err != nil {
		h.redirectLoginError(w, r, "JWT secret is not configured.")
		return nil
	}

	http.Redirect(w, r,
		h.frontendURL+"/auth/callback?token="+url.QueryEscape(token),
		http.StatusFound)
	return nil
}

func (h *authEndpoints) handleMe(w http.ResponseWriter, r *http.Request) error {
	account, err := h.resolveUser(r)
	if err != nil {
		return err
	}

	return WriteJSON(w, http.StatusOK, dto.UserResponse{User: usersvc.Safe(account)})
}

func (h *authEndpoints) redirectLoginError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r,
		h.frontendURL+"/login?error="+url.QueryEscape(message),
		http.StatusFound)
}

func (h *authEndpoints) resolveUser(r *http.Request) (model.UserItem, error) {
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
