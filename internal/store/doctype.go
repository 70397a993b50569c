// ABOUTME: Store methods for the doc_types reference table.
package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DocType is one doc_types row, a static classification tag for documents.
type DocType struct {
	ID    uuid.UUID
	Title string
}

// CreateDocType inserts a new document type.
func (s *Store) CreateDocType(ctx context.Context, title string) (*DocType, error) {
	query, args, err := psql.Insert("doc_types").
		Columns("title").
		Values(title).
		Suffix("RETURNING id, title").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("create doc type: build query: %w", err)
	}
	var dt DocType
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&dt.ID, &dt.Title); err != nil {
		return nil, fmt.Errorf("create doc type: %w", err)
	}
	return &dt, nil
}

// GetDocTypeByID returns the type with the given id, or (nil, nil) if absent.
func (s *Store) GetDocTypeByID(ctx context.Context, id uuid.UUID) (*DocType, error) {
	return s.getDocType(ctx, "id", id)
}

// GetDocTypeByTitle returns the type with the given title, or (nil, nil) if absent.
func (s *Store) GetDocTypeByTitle(ctx context.Context, title string) (*DocType, error) {
	return s.getDocType(ctx, "title", title)
}

func (s *Store) getDocType(ctx context.Context, column string, value any) (*DocType, error) {
	query, args, err := psql.Select("id, title").
		From("doc_types").
		Where(sq.Eq{column: value}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get doc type: build query: %w", err)
	}
	var dt DocType
	err = s.pool.QueryRow(ctx, query, args...).Scan(&dt.ID, &dt.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get doc type: %w", err)
	}
	return &dt, nil
}

// ListDocTypes returns all document types ordered by title.
func (s *Store) ListDocTypes(ctx context.Context) ([]DocType, error) {
	query, args, err := psql.Select("id, title").
		From("doc_types").
		OrderBy("title ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list doc types: build query: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list doc types: %w", err)
	}
	defer rows.Close()

	var result []DocType
	for rows.Next() {
		var dt DocType
		if err := rows.Scan(&dt.ID, &dt.Title); err != nil {
			return nil, fmt.Errorf("list doc types: scan: %w", err)
		}
		result = append(result, dt)
	}
	return result, rows.Err()
}

// UpdateDocType renames a document type. Returns (nil, nil) if absent.
func (s *Store) UpdateDocType(ctx context.Context, id uuid.UUID, title string) (*DocType, error) {
	query, args, err := psql.Update("doc_types").
		Set("title", title).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, title").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("update doc type: build query: %w", err)
	}
	var dt DocType
	err = s.pool.QueryRow(ctx, query, args...).Scan(&dt.ID, &dt.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update doc type: %w", err)
	}
	return &dt, nil
}
