package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardvault/card-service/internal/core/domain"
)

func TestUserService_Create(t *testing.T) {
	users := newStubUserRepo()
	svc := NewUserService(users, zerolog.Nop())

	user, err := svc.Create(context.Background(), "alice", "s3cret", domain.RoleUser)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if user.PasswordHash == "s3cret" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("unexpected role %q", user.Role)
	}
}

func TestUserService_Create_DefaultsRole(t *testing.T) {
	users := newStubUserRepo()
	svc := NewUserService(users, zerolog.Nop())

	user, err := svc.Create(context.Background(), "bob", "pw", "SUPERUSER")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected role to default to USER, got %q", user.Role)
	}
}

func TestUserService_Create_DuplicateUsername(t *testing.T) {
	users := newStubUserRepo()
	svc := NewUserService(users, zerolog.Nop())

	if _, err := svc.Create(context.Background(), "alice", "pw", domain.RoleUser); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), "alice", "pw2", domain.RoleAdmin); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	users := newStubUserRepo()
	svc := NewUserService(users, zerolog.Nop())

	user, err := svc.Create(context.Background(), "alice", "pw", domain.RoleUser)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(context.Background(), user.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
