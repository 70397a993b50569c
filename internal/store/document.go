// ABOUTME: Store methods for documents, the unit of access-controlled content.
// ABOUTME: Listing takes a caller-built predicate so visibility stays in one place.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/docuvault/docuvault/internal/access"
)

// Document is one documents row. OwnerRoleTitle is a snapshot taken at
// creation time, not a live join against the owner's role.
type Document struct {
	ID             uuid.UUID
	Title          string
	TypeID         uuid.UUID
	OwnerID        uuid.UUID
	OwnerRoleTitle string
	Content        string
	AccessRank     int
	CreatedAt      time.Time
	ModifiedAt     sql.NullTime
	Deleted        bool
}

// View projects the fields the access decisions need.
func (d *Document) View() access.DocView {
	return access.DocView{
		OwnerID:        d.OwnerID,
		OwnerRoleTitle: d.OwnerRoleTitle,
		AccessRank:     d.AccessRank,
		Deleted:        d.Deleted,
	}
}

// CreateDocumentParams holds the fields for creating a document.
type CreateDocumentParams struct {
	Title          string
	TypeID         uuid.UUID
	OwnerID        uuid.UUID
	OwnerRoleTitle string
	Content        string
	AccessRank     int
}

// UpdateDocumentParams holds the mutable document fields. Nil means "keep".
type UpdateDocumentParams struct {
	Title      *string
	TypeID     *uuid.UUID
	Content    *string
	AccessRank *int
}

const documentColumns = "id, title, type_id, owner_id, owner_role_title, content, access_rank, created_at, modified_at, deleted"

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(
		&d.ID, &d.Title, &d.TypeID, &d.OwnerID, &d.OwnerRoleTitle,
		&d.Content, &d.AccessRank, &d.CreatedAt, &d.ModifiedAt, &d.Deleted,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDocument inserts a new document. The unique title index rejects
// duplicates across all documents, deleted ones included.
func (s *Store) CreateDocument(ctx context.Context, p CreateDocumentParams) (*Document, error) {
	query, args, err := psql.Insert("documents").
		Columns("title", "type_id", "owner_id", "owner_role_title", "content", "access_rank").
		Values(p.Title, p.TypeID, p.OwnerID, p.OwnerRoleTitle, p.Content, p.AccessRank).
		Suffix("RETURNING " + documentColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("create document: build query: %w", err)
	}
	d, err := scanDocument(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return d, nil
}

// GetDocumentByID returns the non-deleted document with the given id, or
// (nil, nil). Authorization is the caller's job; this is a raw fetch.
func (s *Store) GetDocumentByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	query, args, err := psql.Select(documentColumns).
		From("documents").
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get document: build query: %w", err)
	}
	d, err := scanDocument(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// ListDocuments returns documents matching pred, newest first with id as the
// tiebreaker. Predicates come from the access package so the visibility rules
// are not restated here.
func (s *Store) ListDocuments(ctx context.Context, pred sq.Sqlizer) ([]Document, error) {
	query, args, err := psql.Select(documentColumns).
		From("documents").
		Where(pred).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list documents: build query: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var result []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(
			&d.ID, &d.Title, &d.TypeID, &d.OwnerID, &d.OwnerRoleTitle,
			&d.Content, &d.AccessRank, &d.CreatedAt, &d.ModifiedAt, &d.Deleted,
		); err != nil {
			return nil, fmt.Errorf("list documents: scan: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// UpdateDocument updates the mutable fields and stamps modified_at. Returns
// (nil, nil) if the document is absent or soft-deleted.
func (s *Store) UpdateDocument(ctx context.Context, id uuid.UUID, p UpdateDocumentParams) (*Document, error) {
	sb := psql.Update("documents").
		Set("modified_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "deleted": false}).
		Suffix("RETURNING " + documentColumns)
	if p.Title != nil {
		sb = sb.Set("title", *p.Title)
	}
	if p.TypeID != nil {
		sb = sb.Set("type_id", *p.TypeID)
	}
	if p.Content != nil {
		sb = sb.Set("content", *p.Content)
	}
	if p.AccessRank != nil {
		sb = sb.Set("access_rank", *p.AccessRank)
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("update document: build query: %w", err)
	}
	d, err := scanDocument(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	return d, nil
}

// SoftDeleteDocument marks the document deleted. Returns (nil, nil) if the
// document is absent or already deleted.
func (s *Store) SoftDeleteDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	query, args, err := psql.Update("documents").
		Set("deleted", true).
		Where(sq.Eq{"id": id, "deleted": false}).
		Suffix("RETURNING " + documentColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("delete document: build query: %w", err)
	}
	d, err := scanDocument(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("delete document: %w", err)
	}
	return d, nil
}
