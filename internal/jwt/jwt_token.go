package jwt

import (
	"fmt"
	"time"

	"creator-chat-backend/internal/env"
	"creator-chat-backend/internal/model"

	"github.com/golang-jwt/jwt"
)

// Secret is read once at startup; tests overwrite it directly.
var Secret = env.Get(env.JWTSecret)

const TokenTTL = 7 * 24 * time.Hour

type AuthClaims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	jwt.StandardClaims
}

// SignAuthToken issues the bearer token handed to the frontend after OAuth
// and after profile updates. Subject carries the Google account id.
func SignAuthToken(user model.UserItem) (string, error) {
	if Secret == "" {
		return "", fmt.Errorf("jwt: signing secret is not configured")
	}

	name := user.DisplayName
	if name == "" {
		name = user.Username
	}

	claims := AuthClaims{
		UserID:   user.UserID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		Name:     name,
		Picture:  user.Picture,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.GoogleID,
			ExpiresAt: time.Now().Add(TokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(Secret))
}

// VerifyAuthToken returns the parsed claims, or nil for any malformed,
// expired, or mis-signed token. It never panics on bad input.
func VerifyAuthToken(tokenString string) *AuthClaims {
	if Secret == "" || tokenString == "" {
		return nil
	}

	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(Secret), nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	return claims
}
