package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"painpal/internal/apperror"
	"painpal/internal/repository/memory"
)

// discardLogger keeps service logging out of test output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegister(t *testing.T) {
	svc := NewAccountService(memory.New(), discardLogger())
	ctx := context.Background()

	u, err := svc.Register(ctx, "ada@example.com", "Ada", "uid-ada")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.ID == 0 {
		t.Error("Register() did not assign an ID")
	}
	if u.Email != "ada@example.com" || u.Name != "Ada" {
		t.Errorf("Register() user = %+v", u)
	}
}

func TestRegister_TrimsInput(t *testing.T) {
	svc := NewAccountService(memory.New(), discardLogger())

	u, err := svc.Register(context.Background(), "  ada@example.com ", " Ada ", " uid-ada ")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Email != "ada@example.com" || u.Name != "Ada" || u.ExternalUID != "uid-ada" {
		t.Errorf("Register() did not trim input: %+v", u)
	}
}

func TestRegister_IdempotentOnExternalUID(t *testing.T) {
	svc := NewAccountService(memory.New(), discardLogger())
	ctx := context.Background()

	first, err := svc.Register(ctx, "ada@example.com", "Ada", "uid-ada")
	if err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	// Same external identity signing in again, even with changed details,
	// must land on the same account.
	second, err := svc.Register(ctx, "new@example.com", "Ada L.", "uid-ada")
	if err != nil {
		t.Fatalf("second Register() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second Register() id = %d, want %d", second.ID, first.ID)
	}
	if second.Email != first.Email {
		t.Errorf("second Register() email = %q, want original %q", second.Email, first.Email)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := NewAccountService(memory.New(), discardLogger())
	ctx := context.Background()

	tests := []struct {
		name        string
		email, user string
		uid         string
	}{
		{"missing email", "", "Ada", "uid-ada"},
		{"missing name", "ada@example.com", "", "uid-ada"},
		{"missing uid", "ada@example.com", "Ada", ""},
		{"whitespace only", "  ", "Ada", "uid-ada"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.user, tt.uid)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}
