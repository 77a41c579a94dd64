// Package sqlite is a ready-made authcore.UserProvider backed by a SQLite
// database through the pure-Go modernc.org/sqlite driver. It exists so small
// deployments and examples can run without an external database; larger
// deployments implement authcore.UserProvider against their own store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	authcore "github.com/skillhive/authcore"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	avatar_url    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_email ON users (email);
`

// Provider implements authcore.UserProvider on a SQLite database.
type Provider struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the users
// schema exists. Foreign keys and WAL mode are enabled via DSN pragmas.
func Open(path string) (*Provider, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Provider{db: db}, nil
}

// Close releases the underlying database handle.
func (p *Provider) Close() error {
	return p.db.Close()
}

// GetUserByEmail returns the account record for an email address.
func (p *Provider) GetUserByEmail(ctx context.Context, email string) (authcore.User, error) {
	return p.getOne(ctx, `SELECT id, name, email, password_hash, role, avatar_url, created_at
		FROM users WHERE email = ?`, email)
}

// GetUserByID returns the account record for a user id.
func (p *Provider) GetUserByID(ctx context.Context, userID string) (authcore.User, error) {
	return p.getOne(ctx, `SELECT id, name, email, password_hash, role, avatar_url, created_at
		FROM users WHERE id = ?`, userID)
}

// CreateUser inserts a new account record. A duplicate email fails with
// authcore.ErrEmailExists.
func (p *Provider) CreateUser(ctx context.Context, input authcore.CreateUserInput) (authcore.User, error) {
	createdAt := time.Now().UTC()

	_, err := p.db.ExecContext(ctx, `INSERT INTO users (id, name, email, password_hash, role, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		input.ID, input.Name, input.Email, input.PasswordHash, string(input.Role), input.AvatarURL, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return authcore.User{}, authcore.ErrEmailExists
		}
		return authcore.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return authcore.User{
		ID:           input.ID,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
		AvatarURL:    input.AvatarURL,
		CreatedAt:    createdAt,
	}, nil
}

// UpdateProfile changes name and email and returns the updated record. A
// duplicate email fails with authcore.ErrEmailExists.
func (p *Provider) UpdateProfile(ctx context.Context, userID, name, email string) (authcore.User, error) {
	res, err := p.db.ExecContext(ctx, `UPDATE users SET name = ?, email = ? WHERE id = ?`, name, email, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return authcore.User{}, authcore.ErrEmailExists
		}
		return authcore.User{}, fmt.Errorf("failed to update profile: %w", err)
	}
	if err := requireRow(res); err != nil {
		return authcore.User{}, err
	}
	return p.GetUserByID(ctx, userID)
}

// UpdatePasswordHash replaces the stored credential hash.
func (p *Provider) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, newHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRow(res)
}

// UpdateRole sets the stored role and returns the updated record.
func (p *Provider) UpdateRole(ctx context.Context, userID string, role authcore.Role) (authcore.User, error) {
	res, err := p.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), userID)
	if err != nil {
		return authcore.User{}, fmt.Errorf("failed to update role: %w", err)
	}
	if err := requireRow(res); err != nil {
		return authcore.User{}, err
	}
	return p.GetUserByID(ctx, userID)
}

// DeleteUser removes the account record.
func (p *Provider) DeleteUser(ctx context.Context, userID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRow(res)
}

func (p *Provider) getOne(ctx context.Context, query string, arg any) (authcore.User, error) {
	var (
		u    authcore.User
		role string
	)
	err := p.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.AvatarURL, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return authcore.User{}, authcore.ErrUserNotFound
	}
	if err != nil {
		return authcore.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	u.Role = authcore.Role(role)
	return u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return authcore.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
