package user

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"creator-chat-backend/internal/database"
	internaljwt "creator-chat-backend/internal/jwt"
	"creator-chat-backend/internal/model"

	"github.com/google/uuid"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,24}$`)
var usernameStrip = regexp.MustCompile(`[^a-z0-9._-]`)

type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

func New(db *database.Database) *Service {
	return &Service{
		repo:  NewDynamoRepository(db),
		cache: NewCache(),
		now:   time.Now,
	}
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo: repo,
		now:  now,
	}
}

// UpsertGoogleUser provisions an account for a verified Google identity, or
// refreshes the stored profile when the account already exists. New accounts
// get a unique username derived from the display name and the influencer role.
func (s *Service) UpsertGoogleUser(ctx context.Context, profile GoogleProfile) (model.UserItem, error) {
	googleID := strings.TrimSpace(profile.Sub)
	email := normalizeEmail(profile.Email)
	displayName := strings.TrimSpace(profile.Name)
	picture := strings.TrimSpace(profile.Picture)

	if googleID == "" || email == "" {
		return model.UserItem{}, newError(ErrorCodeValidation, "invalid Google payload", nil)
	}

	existing, err := s.repo.FindByGoogleID(ctx, googleID)
	if errors.Is(err, ErrNotFound) {
		existing, err = s.repo.FindByEmail(ctx, email)
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to look up user", err)
	}

	now := s.now().UTC().Format(time.RFC3339)

	if errors.Is(err, ErrNotFound) {
		seed := displayName
		if seed == "" {
			seed = emailLocalPart(email)
		}
		username, allocErr := s.createUniqueUsername(ctx, seed, "")
		if allocErr != nil {
			return model.UserItem{}, newError(ErrorCodeInternal, "failed to allocate username", allocErr)
		}

		created := model.UserItem{
			UserID:      uuid.NewString(),
			GoogleID:    googleID,
			Email:       email,
			Username:    username,
			Role:        model.RoleInfluencer,
			DisplayName: firstNonEmpty(displayName, seed),
			Picture:     picture,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := s.repo.CreateUser(ctx, created); err != nil {
			return model.UserItem{}, newError(ErrorCodeInternal, "failed to save user", err)
		}
		return created, nil
	}

	existing.GoogleID = googleID
	existing.Email = email
	existing.DisplayName = firstNonEmpty(displayName, existing.DisplayName, existing.Username)
	existing.Picture = firstNonEmpty(picture, existing.Picture)

	if existing.Username == "" {
		seed := firstNonEmpty(displayName, emailLocalPart(email))
		username, allocErr := s.createUniqueUsername(ctx, seed, existing.UserID)
		if allocErr != nil {
			return model.UserItem{}, newError(ErrorCodeInternal, "failed to allocate username", allocErr)
		}
		existing.Username = username
	}

	if !model.IsValidRole(existing.Role) {
		existing.Role = model.RoleInfluencer
	}

	existing.UpdatedAt = now
	if err := s.repo.SaveUser(ctx, existing); err != nil {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to save user", err)
	}

	s.cache.Invalidate(ctx, existing.UserID)
	return existing, nil
}

// FindFromClaims resolves a verified token payload to the stored user,
// trying user id first, then the Google subject, then email.
func (s *Service) FindFromClaims(ctx context.Context, claims *internaljwt.AuthClaims) (model.UserItem, error) {
	if claims == nil {
		return model.UserItem{}, newError(ErrorCodeNotFound, "user not found", nil)
	}

	if claims.UserID != "" {
		if cached, ok := s.cache.Get(ctx, claims.UserID); ok {
			return cached, nil
		}

		user, err := s.repo.GetUser(ctx, claims.UserID)
		if err == nil {
			s.cache.Set(ctx, user)
			return user, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return model.UserItem{}, newError(ErrorCodeInternal, "failed to fetch user", err)
		}
	}

	if claims.Subject != "" {
		user, err := s.repo.FindByGoogleID(ctx, claims.Subject)
		if err == nil {
			s.cache.Set(ctx, user)
			return user, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return model.UserItem{}, newError(ErrorCodeInternal, "failed to fetch user", err)
		}
	}

	if claims.Email != "" {
		user, err := s.repo.FindByEmail(ctx, normalizeEmail(claims.Email))
		if err == nil {
			s.cache.Set(ctx, user)
			return user, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return model.UserItem{}, newError(ErrorCodeInternal, "failed to fetch user", err)
		}
	}

	return model.UserItem{}, newError(ErrorCodeNotFound, "user not found", nil)
}

func (s *Service) Get(ctx context.Context, userID string) (model.UserItem, error) {
	if userID == "" {
		return model.UserItem{}, newError(ErrorCodeValidation, "missing user id", nil)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.UserItem{}, newError(ErrorCodeNotFound, "user not found", err)
		}
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}
	return user, nil
}

func (s *Service) UpdateUsername(ctx context.Context, current model.UserItem, nextUsername string) (model.UserItem, error) {
	username := strings.TrimSpace(nextUsername)
	if !usernameRegex.MatchString(username) {
		return model.UserItem{}, newError(ErrorCodeValidation,
			"Username must be 3-24 chars and only contain letters, numbers, dot, underscore, or hyphen.", nil)
	}

	taken, err := s.repo.UsernameTaken(ctx, username, current.UserID)
	if err != nil {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to check username", err)
	}
	if taken {
		return model.UserItem{}, newError(ErrorCodeConflict, "Username is already taken.", nil)
	}

	current.Username = username
	current.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	if err := s.repo.SaveUser(ctx, current); err != nil {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to save user", err)
	}

	s.cache.Invalidate(ctx, current.UserID)
	return current, nil
}

func (s *Service) UpdateProfile(ctx context.Context, current model.UserItem, changes ProfileChanges) (model.UserItem, error) {
	if changes.Username == nil && changes.Role == nil {
		return model.UserItem{}, newError(ErrorCodeValidation, "Provide username or role to update profile.", nil)
	}

	if changes.Username != nil {
		username := strings.TrimSpace(*changes.Username)
		if !usernameRegex.MatchString(username) {
			return model.UserItem{}, newError(ErrorCodeValidation,
				"Username must be 3-24 chars and only contain letters, numbers, dot, underscore, or hyphen.", nil)
		}

		taken, err := s.repo.UsernameTaken(ctx, username, current.UserID)
		if err != nil {
			return model.UserItem{}, newError(ErrorCodeInternal, "failed to check username", err)
		}
		if taken {
			return model.UserItem{}, newError(ErrorCodeConflict, "Username is already taken.", nil)
		}

		current.Username = username
	}

	if changes.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*changes.Role))
		if !model.IsValidRole(role) {
			return model.UserItem{}, newError(ErrorCodeValidation, "Role must be either influencer or brand.", nil)
		}
		current.Role = role
	}

	current.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	if err := s.repo.SaveUser(ctx, current); err != nil {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to save user", err)
	}

	s.cache.Invalidate(ctx, current.UserID)
	return current, nil
}

// createUniqueUsername turns a free-form seed into an available username,
// appending -1, -2, ... until a free name is found.
func (s *Service) createUniqueUsername(ctx context.Context, seed, excludeUserID string) (string, error) {
	base := buildBaseUsername(seed)
	candidate := base

	for counter := 1; ; counter++ {
		taken, err := s.repo.UsernameTaken(ctx, candidate, excludeUserID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}

		suffix := strconv.Itoa(counter)
		maxBase := model.UsernameMaxLen - len(suffix) - 1
		if maxBase < model.UsernameMinLen {
			maxBase = model.UsernameMinLen
		}
		trimmed := base
		if len(trimmed) > maxBase {
			trimmed = trimmed[:maxBase]
		}
		candidate = trimmed + "-" + suffix
	}
}

func buildBaseUsername(seed string) string {
	raw := strings.ToLower(strings.TrimSpace(seed))
	cleaned := usernameStrip.ReplaceAllString(raw, "")

	if len(cleaned) >= model.UsernameMinLen {
		if len(cleaned) > model.UsernameMaxLen {
			return cleaned[:model.UsernameMaxLen]
		}
		return cleaned
	}

	return "user" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "user"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
