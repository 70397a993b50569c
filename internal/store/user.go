// ABOUTME: Store methods for user management.
// ABOUTME: Soft-deleted users are treated as absent by every read path here.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// User is one users row. The role reference is immutable after signup.
type User struct {
	ID           uuid.UUID
	Firstname    string
	Lastname     string
	RoleID       uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Deleted      bool
	IsAdmin      bool
	CreatedAt    time.Time
}

// CreateUserParams holds the fields for creating a user at signup.
type CreateUserParams struct {
	Firstname    string
	Lastname     string
	RoleID       uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
}

// UpdateUserParams holds the mutable profile fields. Nil means "keep".
type UpdateUserParams struct {
	Firstname    *string
	Lastname     *string
	PasswordHash *string
}

const userColumns = "id, firstname, lastname, role_id, username, email, password_hash, deleted, is_admin, created_at"

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Firstname, &u.Lastname, &u.RoleID, &u.Username, &u.Email,
		&u.PasswordHash, &u.Deleted, &u.IsAdmin, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user. Unique indexes reject duplicate email/username.
func (s *Store) CreateUser(ctx context.Context, p CreateUserParams) (*User, error) {
	query, args, err := psql.Insert("users").
		Columns("firstname", "lastname", "role_id", "username", "email", "password_hash", "is_admin").
		Values(p.Firstname, p.Lastname, p.RoleID, p.Username, p.Email, p.PasswordHash, p.IsAdmin).
		Suffix("RETURNING " + userColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("create user: build query: %w", err)
	}
	u, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUserByID returns the non-deleted user with the given id, or (nil, nil).
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.getUser(ctx, sq.Eq{"id": id})
}

// GetUserByEmail returns the non-deleted user with the given email, or (nil, nil).
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, sq.Eq{"email": email})
}

// GetUserByUsername returns the non-deleted user with the given username, or (nil, nil).
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUser(ctx, sq.Eq{"username": username})
}

func (s *Store) getUser(ctx context.Context, pred sq.Eq) (*User, error) {
	query, args, err := psql.Select(userColumns).
		From("users").
		Where(pred).
		Where(sq.Eq{"deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get user: build query: %w", err)
	}
	u, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users ordered by firstname.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	query, args, err := psql.Select(userColumns).
		From("users").
		Where(sq.Eq{"deleted": false}).
		OrderBy("firstname ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list users: build query: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Firstname, &u.Lastname, &u.RoleID, &u.Username, &u.Email,
			&u.PasswordHash, &u.Deleted, &u.IsAdmin, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list users: scan: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// UpdateUser updates the mutable profile fields of a non-deleted user.
// Returns (nil, nil) if the user is absent or soft-deleted.
func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, p UpdateUserParams) (*User, error) {
	sb := psql.Update("users").
		Where(sq.Eq{"id": id, "deleted": false}).
		Suffix("RETURNING " + userColumns)
	if p.Firstname != nil {
		sb = sb.Set("firstname", *p.Firstname)
	}
	if p.Lastname != nil {
		sb = sb.Set("lastname", *p.Lastname)
	}
	if p.PasswordHash != nil {
		sb = sb.Set("password_hash", *p.PasswordHash)
	}
	if p.Firstname == nil && p.Lastname == nil && p.PasswordHash == nil {
		// Nothing to change; behave like a read so callers get one code path.
		return s.GetUserByID(ctx, id)
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("update user: build query: %w", err)
	}
	u, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// SoftDeleteUser marks the user deleted. Returns (nil, nil) if the user is
// absent or already deleted.
func (s *Store) SoftDeleteUser(ctx context.Context, id uuid.UUID) (*User, error) {
	query, args, err := psql.Update("users").
		Set("deleted", true).
		Where(sq.Eq{"id": id, "deleted": false}).
		Suffix("RETURNING " + userColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("delete user: build query: %w", err)
	}
	u, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return u, nil
}
