package chat

import (
	"context"
	"fmt"
	"testing"

	internaljwt "creator-chat-backend/internal/jwt"
	"creator-chat-backend/internal/model"
	usersvc "creator-chat-backend/internal/service/user"
)

type gateRepo struct {
	users    map[string]model.UserItem // user id -> user
	failWith error
}

func (r *gateRepo) CreateUser(_ context.Context, user model.UserItem) error {
	r.users[user.UserID] = user
	return nil
}

func (r *gateRepo) SaveUser(_ context.Context, user model.UserItem) error {
	r.users[user.UserID] = user
	return nil
}

func (r *gateRepo) GetUser(_ context.Context, userID string) (model.UserItem, error) {
	if r.failWith != nil {
		return model.UserItem{}, r.failWith
	}
	if user, ok := r.users[userID]; ok {
		return user, nil
	}
	return model.UserItem{}, usersvc.ErrNotFound
}

func (r *gateRepo) FindByGoogleID(_ context.Context, googleID string) (model.UserItem, error) {
	if r.failWith != nil {
		return model.UserItem{}, r.failWith
	}
	for _, user := range r.users {
		if user.GoogleID == googleID {
			return user, nil
		}
	}
	return model.UserItem{}, usersvc.ErrNotFound
}

func (r *gateRepo) FindByEmail(_ context.Context, email string) (model.UserItem, error) {
	if r.failWith != nil {
		return model.UserItem{}, r.failWith
	}
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.UserItem{}, usersvc.ErrNotFound
}

func (r *gateRepo) UsernameTaken(_ context.Context, username, excludeUserID string) (bool, error) {
	for _, user := range r.users {
		if user.Username == username && user.UserID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func newGateFixture(t *testing.T) (*gateRepo, AuthGate) {
	t.Helper()

	old := internaljwt.Secret
	internaljwt.Secret = "test-secret"
	t.Cleanup(func() { internaljwt.Secret = old })

	repo := &gateRepo{users: make(map[string]model.UserItem)}
	return repo, NewAuthGate(usersvc.NewWithRepository(repo, nil))
}

func signedToken(t *testing.T, user model.UserItem) string {
	t.Helper()
	token, err := internaljwt.SignAuthToken(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return token
}

func TestAuthGateResolvesValidUser(t *testing.T) {
	repo, gate := newGateFixture(t)
	alice := model.UserItem{
		UserID: "u-1", GoogleID: "g-1", Email: "alice@example.com",
		Username: "alice", Role: "Influencer",
	}
	repo.users["u-1"] = alice

	resolved, authErr := gate.Resolve(context.Background(), signedToken(t, alice))
	if authErr != nil {
		t.Fatalf("unexpected auth error: %v", authErr)
	}
	if resolved.ID != "u-1" || resolved.Role != model.RoleInfluencer {
		t.Fatalf("unexpected identity: %+v", resolved)
	}
}

func TestAuthGateCredentialFailures(t *testing.T) {
	_, gate := newGateFixture(t)

	if _, authErr := gate.Resolve(context.Background(), "   "); authErr == nil || authErr.Reason != MissingCredential {
		t.Fatalf("expected MissingCredential, got %v", authErr)
	}
	if _, authErr := gate.Resolve(context.Background(), "not-a-token"); authErr == nil || authErr.Reason != InvalidOrExpiredCredential {
		t.Fatalf("expected InvalidOrExpiredCredential, got %v", authErr)
	}
}

func TestAuthGateDeletedAccount(t *testing.T) {
	_, gate := newGateFixture(t)

	// Valid token for an account that no longer exists in the store.
	ghost := model.UserItem{UserID: "u-ghost", GoogleID: "g-ghost", Email: "ghost@example.com"}
	_, authErr := gate.Resolve(context.Background(), signedToken(t, ghost))
	if authErr == nil || authErr.Reason != UserNotFound {
		t.Fatalf("expected UserNotFound, got %v", authErr)
	}
}

func TestAuthGateStoreOutageIsNotUserNotFound(t *testing.T) {
	repo, gate := newGateFixture(t)
	alice := model.UserItem{UserID: "u-1", Email: "alice@example.com", Role: model.RoleInfluencer}
	repo.users["u-1"] = alice
	token := signedToken(t, alice)

	repo.failWith = fmt.Errorf("dynamo unavailable")

	_, authErr := gate.Resolve(context.Background(), token)
	if authErr == nil || authErr.Reason != LookupFailed {
		t.Fatalf("expected LookupFailed, got %v", authErr)
	}

	repo.failWith = nil
	if _, authErr := gate.Resolve(context.Background(), token); authErr != nil {
		t.Fatalf("recovery should resolve the user, got %v", authErr)
	}
}

func TestAuthGateMissingRole(t *testing.T) {
	repo, gate := newGateFixture(t)
	norole := model.UserItem{UserID: "u-1", Email: "norole@example.com", Username: "norole"}
	repo.users["u-1"] = norole

	_, authErr := gate.Resolve(context.Background(), signedToken(t, norole))
	if authErr == nil || authErr.Reason != RoleNotAssigned {
		t.Fatalf("expected RoleNotAssigned, got %v", authErr)
	}
}
