package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"creator-chat-backend/internal/api"
	usersvc "creator-chat-backend/internal/service/user"
)

type HTTPError = api.HTTPError

type ApiMessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	return api.WriteJSON(w, status, v)
}

func MethodHandler(
	w http.ResponseWriter,
	r *http.Request,
	allowed map[string]func(http.ResponseWriter, *http.Request) error,
) error {
	if handler, ok := allowed[r.Method]; ok {
		return handler(w, r)
	}
	return &HTTPError{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "Method not allowed.",
		ErrorLog:   fmt.Errorf("method not allowed"),
	}
}

// userServiceError translates typed user service failures to HTTP statuses.
func userServiceError(err error) error {
	var svcErr *usersvc.Error
	if !errors.As(err, &svcErr) {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   err,
		}
	}

	status := http.StatusInternalServerError
	switch svcErr.Code {
	case usersvc.ErrorCodeValidation:
		status = http.StatusBadRequest
	case usersvc.ErrorCodeConflict:
		status = http.StatusConflict
	case usersvc.ErrorCodeNotFound:
		status = http.StatusNotFound
	}

	return &HTTPError{
		StatusCode: status,
		Message:    svcErr.Message,
		ErrorLog:   svcErr,
	}
}
