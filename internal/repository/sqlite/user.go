package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"painpal/internal/apperror"
	"painpal/internal/model"
	"painpal/internal/repository"
)

// compile-time check that *DB implements repository.Store
var _ repository.Store = (*DB)(nil)

// CreateUser registers a user, idempotently on external identity.
//
// If a row with the same external_uid already exists we return it unchanged
// — registering twice from two devices must yield the same account. The
// check-then-insert is not transactional; a racing duplicate insert is
// caught by the UNIQUE constraint on external_uid and retried as a lookup.
func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	existing, err := db.GetUserByExternalUID(ctx, u.ExternalUID)
	if err == nil {
		*u = *existing
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	id, err := db.nextID(ctx, "users")
	if err != nil {
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	u.ID = id
	u.CreatedAt = db.now()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, name, external_uid, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.ExternalUID, u.CreatedAt,
	)
	if err != nil {
		// A concurrent registration with the same external identity wins
		// the UNIQUE race; fall back to returning the winner's row.
		if winner, lookupErr := db.GetUserByExternalUID(ctx, u.ExternalUID); lookupErr == nil {
			*u = *winner
			return nil
		}
		return fmt.Errorf("sqlite: inserting user (externalUID=%s): %w", u.ExternalUID, err)
	}

	return nil
}

// GetUser retrieves a user by internal ID.
func (db *DB) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return db.getUser(ctx,
		`SELECT id, email, name, external_uid, created_at FROM users WHERE id = ?`,
		apperror.NotFound("user", id), id)
}

// GetUserByEmail retrieves a user by email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx,
		`SELECT id, email, name, external_uid, created_at FROM users WHERE email = ?`,
		apperror.NotFoundFor("user", "email", email), email)
}

// GetUserByExternalUID retrieves a user by their external identity subject.
// This is the authorization lookup: every authenticated request resolves its
// opaque caller identity through here.
func (db *DB) GetUserByExternalUID(ctx context.Context, uid string) (*model.User, error) {
	return db.getUser(ctx,
		`SELECT id, email, name, external_uid, created_at FROM users WHERE external_uid = ?`,
		apperror.NotFoundFor("user", "external uid", uid), uid)
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

func (db *DB) getUser(ctx context.Context, query string, absent error, arg any) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.ExternalUID, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, absent
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}
	return &u, nil
}
