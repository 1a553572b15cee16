package services

import (
	"errors"
	"path/filepath"
	"testing"

	"KasirApp/app/database"
)

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	db, err := database.OpenLocalDB(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("OpenLocalDB: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewUserService(db, nil)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestUserService(t)

	user, err := svc.Register("Iin", "iin", "rahasia1", 1)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash == "rahasia1" {
		t.Fatal("password stored in plaintext")
	}
	if user.Role != "kasir" {
		t.Errorf("Role = %q, want kasir", user.Role)
	}

	token, authed, err := svc.Authenticate("iin", "rahasia1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token == "" {
		t.Fatal("empty session token")
	}
	if authed.ID != user.ID {
		t.Errorf("authenticated user id = %d, want %d", authed.ID, user.ID)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := newTestUserService(t)
	if _, err := svc.Register("Iin", "iin", "rahasia1", 1); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, err := svc.Authenticate("iin", "salah")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}

	_, _, err = svc.Authenticate("nobody", "rahasia1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc := newTestUserService(t)
	if _, err := svc.Register("Iin", "iin", "rahasia1", 1); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register("Iin Lain", "iin", "rahasia2", 1); err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestUserService(t)
	if _, err := svc.Register("Iin", "iin", "12345", 1); err == nil {
		t.Error("expected error for short password")
	}
}

func TestValidateAndLogout(t *testing.T) {
	svc := newTestUserService(t)
	if _, err := svc.Register("Iin", "iin", "rahasia1", 1); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := svc.Authenticate("iin", "rahasia1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	user, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if user.Username != "iin" {
		t.Errorf("Username = %q", user.Username)
	}

	svc.Logout(token)
	if _, err := svc.Validate(token); err == nil {
		t.Error("token still valid after logout")
	}

	if _, err := svc.Validate("not-a-token"); err == nil {
		t.Error("bogus token validated")
	}
}
