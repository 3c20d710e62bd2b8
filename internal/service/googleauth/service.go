package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"creator-chat-backend/internal/env"
	usersvc "creator-chat-backend/internal/service/user"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// Service wraps the Google authorization-code flow. When the client id,
// secret, or redirect URI is missing the service stays unconfigured and the
// endpoints answer with an explicit error instead of panicking.
type Service struct {
	cfg         *oauth2.Config
	userinfoURL string
}

func New() *Service {
	clientID := env.Get(env.GoogleClientID)
	clientSecret := env.Get(env.GoogleClientSecret)
	redirectURI := env.Get(env.GoogleRedirectURI)

	if clientID == "" || clientSecret == "" || redirectURI == "" {
		log.Println("googleauth: OAuth is not fully configured; set GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, and GOOGLE_REDIRECT_URI")
		return &Service{userinfoURL: defaultUserinfoURL}
	}

	return &Service{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		userinfoURL: defaultUserinfoURL,
	}
}

// NewWithConfig is used by tests to point the flow at a fake provider.
func NewWithConfig(cfg *oauth2.Config, userinfoURL string) *Service {
	if userinfoURL == "" {
		userinfoURL = defaultUserinfoURL
	}
	return &Service{cfg: cfg, userinfoURL: userinfoURL}
}

func (s *Service) Configured() bool {
	return s.cfg != nil
}

func (s *Service) AuthURL() string {
	if s.cfg == nil {
		return ""
	}
	return s.cfg.AuthCodeURL(
		"",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange trades the authorization code for tokens and fetches the verified
// profile from the userinfo endpoint.
func (s *Service) Exchange(ctx context.Context, code string) (usersvc.GoogleProfile, error) {
	if s.cfg == nil {
		return usersvc.GoogleProfile{}, fmt.Errorf("googleauth: not configured")
	}
	if code == "" {
		return usersvc.GoogleProfile{}, fmt.Errorf("googleauth: missing authorization code")
	}

	token, err := s.cfg.Exchange(ctx, code)
	if err != nil {
		return usersvc.GoogleProfile{}, fmt.Errorf("googleauth: code exchange: %w", err)
	}

	res, err := s.cfg.Client(ctx, token).Get(s.userinfoURL)
	if err != nil {
		return usersvc.GoogleProfile{}, fmt.Errorf("googleauth: fetch userinfo: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return usersvc.GoogleProfile{}, fmt.Errorf("googleauth: userinfo status %d", res.StatusCode)
	}

	var info struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return usersvc.GoogleProfile{}, fmt.Errorf("googleauth: decode userinfo: %w", err)
	}

	if info.Sub == "" || info.Email == "" {
		return usersvc.GoogleProfile{}, fmt.Errorf("googleauth: unable to verify Google account")
	}

	return usersvc.GoogleProfile{
		Sub:     info.Sub,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
