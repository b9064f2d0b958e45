package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/castboard/internal/model"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresIdentityRepoはIdentityRepositoryインターフェースを満たすことを検証
func TestPostgresIdentityRepo_ImplementsInterface(t *testing.T) {
	var _ IdentityRepository = (*PostgresIdentityRepo)(nil)
}

// PostgresSessionRepoはSessionRepositoryインターフェースを満たすことを検証
func TestPostgresSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresIdentityRepoが正しく初期化されることを検証
func TestNewPostgresIdentityRepo_Initializes(t *testing.T) {
	repo := NewPostgresIdentityRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresSessionRepoが正しく初期化されることを検証
func TestNewPostgresSessionRepo_Initializes(t *testing.T) {
	repo := NewPostgresSessionRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// identityのUserIDがuserのIDと一致して構築されることを検証
func TestPostgresUserRepo_CreateWithIdentity_LinksIdentity(t *testing.T) {
	user := &model.User{
		ID:    "user-id-1",
		Email: "test@example.com",
		Name:  "Test User",
	}
	identity := &model.Identity{
		ID:             "identity-id-1",
		UserID:         "user-id-1",
		Provider:       "google",
		ProviderUserID: "google-123",
	}

	if identity.UserID != user.ID {
		t.Errorf("identity.UserID = %q, want %q", identity.UserID, user.ID)
	}
}

// FindByIDが期限切れセッションを除外する前提の期限判定を検証
func TestPostgresSessionRepo_ExpiredSession_IsPast(t *testing.T) {
	session := &model.Session{
		ID:        "expired-session",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	}

	if session.ExpiresAt.After(time.Now()) {
		t.Error("expected session to be expired")
	}
}
