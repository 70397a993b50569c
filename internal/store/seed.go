// ABOUTME: Idempotent reference-data seeding for roles, access levels and
// ABOUTME: document types. Safe to run on every startup.
package store

import (
	"context"
	"fmt"

	"github.com/docuvault/docuvault/internal/access"
)

var seedRoles = []string{"admin", "regular"}

var seedLevels = []struct {
	Name string
	Rank int
}{
	{"admin", access.RankAdmin},
	{"regular", access.RankRegular},
	{"private", access.RankPrivate},
	{"public", access.RankPublic},
}

var seedDocTypes = []string{"thesis", "manuscript", "proposal", "warrant", "license", "programming"}

// Seed inserts the reference rows the access rules depend on. Existing rows
// are left untouched, so repeated runs are no-ops.
func (s *Store) Seed(ctx context.Context) error {
	for _, title := range seedRoles {
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO roles (title) VALUES ($1) ON CONFLICT (title) DO NOTHING`, title); err != nil {
			return fmt.Errorf("seed role %q: %w", title, err)
		}
	}
	for _, lvl := range seedLevels {
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO access_levels (name, rank) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			lvl.Name, lvl.Rank); err != nil {
			return fmt.Errorf("seed access level %q: %w", lvl.Name, err)
		}
	}
	for _, title := range seedDocTypes {
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO doc_types (title) VALUES ($1) ON CONFLICT (title) DO NOTHING`, title); err != nil {
			return fmt.Errorf("seed doc type %q: %w", title, err)
		}
	}
	return nil
}
