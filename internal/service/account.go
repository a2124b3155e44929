// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier shape: handlers parse HTTP and
// write responses, services validate and enforce the domain rules, the
// repository reads and writes storage. Services accept the
// repository.Store interface — never a concrete backend — so the same logic
// runs against the in-memory store in tests and sqlite in production, and
// they return domain errors (apperror), never HTTP status codes.
package service

import (
	"context"
	"log/slog"
	"strings"

	"painpal/internal/apperror"
	"painpal/internal/model"
	"painpal/internal/repository"
)

// AccountService handles user registration and lookup.
type AccountService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewAccountService(store repository.Store, logger *slog.Logger) *AccountService {
	return &AccountService{store: store, logger: logger}
}

// Register creates the user account for an external identity, or returns
// the existing one.
//
// Registration is NOT a strict create: the client calls it on every sign-in,
// so the same external UID must always land on the same account. Email
// uniqueness beyond that is not enforced here — the identity provider owns
// the email, and the externalUID is the real key.
func (s *AccountService) Register(ctx context.Context, email, name, externalUID string) (*model.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	externalUID = strings.TrimSpace(externalUID)

	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if externalUID == "" {
		return nil, apperror.ValidationFailed("externalUid", "external identity is required")
	}

	user := &model.User{Email: email, Name: name, ExternalUID: externalUID}
	if err := s.store.CreateUser(ctx, user); err != nil {
		s.logger.Error("failed to register user",
			slog.String("externalUid", externalUID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("user registered",
		slog.Int64("id", user.ID),
		slog.String("externalUid", user.ExternalUID),
	)

	return user, nil
}
