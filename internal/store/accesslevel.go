// ABOUTME: Store methods for the access_levels reference table.
// ABOUTME: Implements access.LevelSource so the rank table can reload from here.
package store

import (
	"context"
	"fmt"

	"github.com/docuvault/docuvault/internal/access"
)

// ListAccessLevels returns all access levels ordered by rank (most privileged
// first). Satisfies access.LevelSource.
func (s *Store) ListAccessLevels(ctx context.Context) ([]access.Level, error) {
	query, args, err := psql.Select("id, name, rank").
		From("access_levels").
		OrderBy("rank ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list access levels: build query: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list access levels: %w", err)
	}
	defer rows.Close()

	var result []access.Level
	for rows.Next() {
		var l access.Level
		if err := rows.Scan(&l.ID, &l.Name, &l.Rank); err != nil {
			return nil, fmt.Errorf("list access levels: scan: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
