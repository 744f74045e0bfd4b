package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yatube/community/internal/models"
)

func TestAccountService_Register(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountService(db)
	ctx := context.Background()

	user, err := accounts.Register(ctx, RegisterInput{
		Username: " testusername ",
		Password: "password123",
		Email:    "TestUserName@TestMail.com",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Username != "testusername" || user.Email != "testusername@testmail.com" {
		t.Fatalf("expected normalized fields, got %+v", user)
	}
	if user.Role != models.UserRoleUser {
		t.Fatalf("expected default user role, got %s", user.Role)
	}
	if user.PasswordHash == "password123" {
		t.Fatal("expected password to be hashed")
	}

	invalid := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{"bad username", RegisterInput{Username: "has space", Password: "password123"}, "username"},
		{"long username", RegisterInput{Username: strings.Repeat("u", 151), Password: "password123"}, "username"},
		{"short password", RegisterInput{Username: "shorty", Password: "short"}, "password"},
		{"bad email", RegisterInput{Username: "mailer", Password: "password123", Email: "nope"}, "email"},
		{"bad role", RegisterInput{Username: "roley", Password: "password123", Role: "root"}, "role"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := accounts.Register(ctx, tc.input)
			assertValidationField(t, err, tc.field)
		})
	}

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, err := accounts.Register(ctx, RegisterInput{Username: "testusername", Password: "password123"})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("admin role can be requested explicitly", func(t *testing.T) {
		admin, err := accounts.Register(ctx, RegisterInput{Username: "boss", Password: "password123", Role: models.UserRoleAdmin})
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}
		if admin.Role != models.UserRoleAdmin {
			t.Fatalf("expected admin role, got %s", admin.Role)
		}
	})
}

func TestAccountService_Authenticate(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountService(db)
	ctx := context.Background()

	registered, err := accounts.Register(ctx, RegisterInput{Username: "leo", Password: "password123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := accounts.Authenticate(ctx, "leo", "password123")
	if err != nil || user.ID != registered.ID {
		t.Fatalf("expected authentication to succeed, got %v", err)
	}

	if _, err := accounts.Authenticate(ctx, "leo", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := accounts.Authenticate(ctx, "ghost", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	found, err := accounts.GetByID(ctx, registered.ID)
	if err != nil || found.Username != "leo" {
		t.Fatalf("expected GetByID to find leo, got %v", err)
	}
}
