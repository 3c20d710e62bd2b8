package user

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	internaljwt "creator-chat-backend/internal/jwt"
	"creator-chat-backend/internal/model"
)

type memoryRepository struct {
	mu    sync.Mutex
	users map[string]model.UserItem // user id -> user
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: make(map[string]model.UserItem)}
}

func (r *memoryRepository) CreateUser(_ context.Context, user model.UserItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
	return nil
}

func (r *memoryRepository) SaveUser(_ context.Context, user model.UserItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
	return nil
}

func (r *memoryRepository) GetUser(_ context.Context, userID string) (model.UserItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		return user, nil
	}
	return model.UserItem{}, ErrNotFound
}

func (r *memoryRepository) FindByGoogleID(_ context.Context, googleID string) (model.UserItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.GoogleID == googleID {
			return user, nil
		}
	}
	return model.UserItem{}, ErrNotFound
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (model.UserItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.UserItem{}, ErrNotFound
}

func (r *memoryRepository) UsernameTaken(_ context.Context, username, excludeUserID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Username, username) && user.UserID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func testService(repo Repository) *Service {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewWithRepository(repo, func() time.Time { return fixed })
}

func assertCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if svcErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, svcErr.Code, svcErr.Message)
	}
}

func TestUpsertGoogleUserCreatesAccount(t *testing.T) {
	repo := newMemoryRepository()
	service := testService(repo)

	user, err := service.UpsertGoogleUser(context.Background(), GoogleProfile{
		Sub:     "g-1",
		Email:   "Alice@Example.com",
		Name:    "Alice Smith",
		Picture: "https://example.com/alice.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.UserID == "" {
		t.Fatal("expected generated user id")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.Username != "alicesmith" {
		t.Fatalf("expected username derived from display name, got %q", user.Username)
	}
	if user.Role != model.RoleInfluencer {
		t.Fatalf("expected default role, got %q", user.Role)
	}
	if user.CreatedAt == "" || user.CreatedAt != user.UpdatedAt {
		t.Fatalf("expected matching timestamps on create, got %q / %q", user.CreatedAt, user.UpdatedAt)
	}
}

func TestUpsertGoogleUserAllocatesSuffixedUsername(t *testing.T) {
	repo := newMemoryRepository()
	service := testService(repo)

	first, err := service.UpsertGoogleUser(context.Background(), GoogleProfile{
		Sub: "g-1", Email: "one@example.com", Name: "Alice Smith",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := service.UpsertGoogleUser(context.Background(), GoogleProfile{
		Sub: "g-2", Email: "two@example.com", Name: "Alice Smith",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Username != "alicesmith" || second.Username != "alicesmith-1" {
		t.Fatalf("expected suffix allocation, got %q and %q", first.Username, second.Username)
	}
}

func TestUpsertGoogleUserFallbackUsername(t *testing.T) {
	repo := newMemoryRepository()
	service := testService(repo)

	user, err := service.UpsertGoogleUser(context.Background(), GoogleProfile{
		Sub: "g-1", Email: "ab@example.com", Name: "阿里",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The non-ASCII name strips down to nothing, so a random handle is
	// generated instead.
	if !strings.HasPrefix(user.Username, "user") || len(user.Username) != 10 {
		t.Fatalf("expected user + 6 random chars, got %q", user.Username)
	}
}

func TestUpsertGoogleUserRefreshesExisting(t *testing.T) {
	repo := newMemoryRepository()
	service := testService(repo)
	ctx := context.Background()

	created, err := service.UpsertGoogleUser(ctx, GoogleProfile{
		Sub: "g-1", Email: "alice@example.com", Name: "Alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := service.UpsertGoogleUser(ctx, GoogleProfile{
		Sub: "g-1", Email: "alice@example.com", Name: "Alice Renamed", Picture: "https://example.com/new.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.UserID != created.UserID {
		t.Fatal("upsert must not create a second account for the same subject")
	}
	if updated.Username != created.Username {
		t.Fatalf("username must survive re-login, got %q", updated.Username)
	}
	if updated.DisplayName != "Alice Renamed" || updated.Picture != "https://example.com/new.png" {
		t.Fatalf("profile fields not refreshed: %+v", updated)
	}
}

func TestUpsertGoogleUserLinksByEmail(t *testing.T) {
	repo := newMemoryRepository()
	service := testService(repo)
	ctx := context.Background()

	seeded := model.UserItem{
		UserID:   "u-1",
		Email:    "alice@example.com",
		Username: "alice",
		Role:     model.RoleBrand,
	}
	if err := repo.CreateUser(ctx, seeded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	linked, err := service.UpsertGoogleUser(ctx, GoogleProfile{
		Sub: "g-1", Email: "alice@example.com", Name: "Alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if linked.UserID != "u-1" || linked.GoogleID != "g-1" {
		t.Fatalf("expected existing account linked to subject, got %+v", linked)
	}
	if linked.Role != model.RoleBrand {
		t.Fatalf("existing role must be preserved, got %q", linked.Role)
	}
}

func TestUpsertGoogleUserRejectsEmptyIdentity(t *testing.T) {
	service := testService(newMemoryRepository())

	_, err := service.UpsertGoogleUser(context.Background(), GoogleProfile{Email: "alice@example.com"})
	assertCode(t, err, ErrorCodeValidation)

	_, err = service.UpsertGoogleUser(context.Background(), GoogleProfile{Sub: "g-1"})
	assertCode(t, err, ErrorCodeValidation)
}

func TestFindFromClaimsResolutionOrder(t *testing.T) {
	repo := newMemoryRepository()
	service := testService(repo)
	ctx := context.Background()

	stored := model.UserItem{
		UserID:   "u-1",
		GoogleID: "g-1",
		Email:    "alice@example.com",
		Username: "alice",
		Role:     model.RoleInfluencer,
	}
	if err := repo.CreateUser(ctx, stored); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID, err := service.FindFromClaims(ctx, &internaljwt.AuthClaims{UserID: "u-1"})
	if err != nil || byID.UserID != "u-1" {
		t.Fatalf("lookup by id failed: %v %+v", err, byID)
	}

	bySub := &internaljwt.AuthClaims{}
	bySub.Subject = "g-1"
	found, err := service.FindFromClaims(ctx, bySub)
	if err != nil || found.UserID != "u-1" {
		t.Fatalf("lookup by subject failed: %v %+v", err, found)
	}

	byEmail, err := service.FindFromClaims(ctx, &internaljwt.AuthClaims{Email: "ALICE@example.com"})
	if err != nil || byEmail.UserID != "u-1" {
		t.Fatalf("lookup by email failed: %v %+v", err, byEmail)
	}

	_, err = service.FindFromClaims(ctx, &internaljwt.AuthClaims{UserID: "u-missing"})
	assertCode(t, err, ErrorCodeNotFound)

	_, err = service.FindFromClaims(ctx, nil)
	assertCode(t, err, ErrorCodeNotFound)
}

func TestUpdateUsername(t *testing.T) {
	repo := newMemoryRepository()
	service := testService(repo)
	ctx := context.Background()

	alice := model.UserItem{UserID: "u-1", Username: "alice", Role: model.RoleInfluencer}
	bob := model.UserItem{UserID: "u-2", Username: "bob", Role: model.RoleBrand}
	repo.CreateUser(ctx, alice)
	repo.CreateUser(ctx, bob)

	updated, err := service.UpdateUsername(ctx, alice, "  alice.new  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Username != "alice.new" {
		t.Fatalf("expected trimmed username saved, got %q", updated.Username)
	}
	if stored, _ := repo.GetUser(ctx, "u-1"); stored.Username != "alice.new" {
		t.Fatalf("username not persisted, got %q", stored.Username)
	}

	for _, bad := range []string{"ab", strings.Repeat("x", 25), "has space", "bad!chars", ""} {
		_, err := service.UpdateUsername(ctx, updated, bad)
		assertCode(t, err, ErrorCodeValidation)
	}

	_, err = service.UpdateUsername(ctx, updated, "bob")
	assertCode(t, err, ErrorCodeConflict)

	// Keeping your own username is not a conflict.
	if _, err := service.UpdateUsername(ctx, updated, "alice.new"); err != nil {
		t.Fatalf("self-rename must not conflict: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := newMemoryRepository()
	service := testService(repo)
	ctx := context.Background()

	alice := model.UserItem{UserID: "u-1", Username: "alice", Role: model.RoleInfluencer}
	repo.CreateUser(ctx, alice)

	_, err := service.UpdateProfile(ctx, alice, ProfileChanges{})
	assertCode(t, err, ErrorCodeValidation)

	role := "  Brand  "
	updated, err := service.UpdateProfile(ctx, alice, ProfileChanges{Role: &role})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Role != model.RoleBrand {
		t.Fatalf("expected normalized role, got %q", updated.Role)
	}

	badRole := "admin"
	_, err = service.UpdateProfile(ctx, updated, ProfileChanges{Role: &badRole})
	assertCode(t, err, ErrorCodeValidation)

	username := "alice2"
	newRole := model.RoleInfluencer
	both, err := service.UpdateProfile(ctx, updated, ProfileChanges{Username: &username, Role: &newRole})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if both.Username != "alice2" || both.Role != model.RoleInfluencer {
		t.Fatalf("expected both fields updated, got %+v", both)
	}
}

func TestBuildBaseUsername(t *testing.T) {
	cases := []struct {
		seed string
		want string
	}{
		{"Alice Smith", "alicesmith"},
		{"  john.doe  ", "john.doe"},
		{"UPPER_case-99", "upper_case-99"},
		{strings.Repeat("a", 40), strings.Repeat("a", model.UsernameMaxLen)},
	}
	for _, tc := range cases {
		if got := buildBaseUsername(tc.seed); got != tc.want {
			t.Fatalf("buildBaseUsername(%q) = %q, want %q", tc.seed, got, tc.want)
		}
	}

	// Too-short seeds fall back to a random handle.
	random := buildBaseUsername("ab")
	if !strings.HasPrefix(random, "user") || len(random) != 10 {
		t.Fatalf("expected random fallback, got %q", random)
	}
}
