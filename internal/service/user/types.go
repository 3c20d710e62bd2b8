package user

import "creator-chat-backend/internal/model"

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation_error"
	ErrorCodeConflict   ErrorCode = "conflict"
	ErrorCodeNotFound   ErrorCode = "not_found"
	ErrorCodeInternal   ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// GoogleProfile is the subset of the verified Google identity payload the
// service needs to provision or refresh an account.
type GoogleProfile struct {
	Sub     string
	Email   string
	Name    string
	Picture string
}

type ProfileChanges struct {
	Username *string
	Role     *string
}

// SafeUser is the profile shape exposed to clients; it never carries
// storage-side fields.
type SafeUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Picture     string `json:"picture"`
}

func Safe(u model.UserItem) SafeUser {
	return SafeUser{
		ID:          u.UserID,
		Email:       u.Email,
		Username:    u.Username,
		Role:        u.Role,
		DisplayName: u.DisplayName,
		Picture:     u.Picture,
	}
}
