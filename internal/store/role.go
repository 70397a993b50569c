// ABOUTME: Store methods for the roles reference table.
package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Role is one roles row. Titles are unique; "admin" and "regular" are seeded.
type Role struct {
	ID    uuid.UUID
	Title string
}

// CreateRole inserts a new role. The unique index rejects duplicate titles.
func (s *Store) CreateRole(ctx context.Context, title string) (*Role, error) {
	query, args, err := psql.Insert("roles").
		Columns("title").
		Values(title).
		Suffix("RETURNING id, title").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("create role: build query: %w", err)
	}
	var r Role
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&r.ID, &r.Title); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return &r, nil
}

// GetRoleByID returns the role with the given id, or (nil, nil) if absent.
func (s *Store) GetRoleByID(ctx context.Context, id uuid.UUID) (*Role, error) {
	return s.getRole(ctx, "id", id)
}

// GetRoleByTitle returns the role with the given title, or (nil, nil) if absent.
func (s *Store) GetRoleByTitle(ctx context.Context, title string) (*Role, error) {
	return s.getRole(ctx, "title", title)
}

func (s *Store) getRole(ctx context.Context, column string, value any) (*Role, error) {
	query, args, err := psql.Select("id, title").
		From("roles").
		Where(sq.Eq{column: value}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get role: build query: %w", err)
	}
	var r Role
	err = s.pool.QueryRow(ctx, query, args...).Scan(&r.ID, &r.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &r, nil
}

// ListRoles returns all roles ordered by title.
func (s *Store) ListRoles(ctx context.Context) ([]Role, error) {
	query, args, err := psql.Select("id, title").
		From("roles").
		OrderBy("title ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list roles: build query: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var result []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Title); err != nil {
			return nil, fmt.Errorf("list roles: scan: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// UpdateRole renames a role. Returns (nil, nil) if the role does not exist.
// Documents keep the owner-role snapshot taken at creation time, so a rename
// never retroactively changes visibility.
func (s *Store) UpdateRole(ctx context.Context, id uuid.UUID, title string) (*Role, error) {
	query, args, err := psql.Update("roles").
		Set("title", title).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, title").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("update role: build query: %w", err)
	}
	var r Role
	err = s.pool.QueryRow(ctx, query, args...).Scan(&r.ID, &r.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return &r, nil
}
