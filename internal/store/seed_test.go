// ABOUTME: Integration tests for the idempotent reference-data seed.
package store_test

import (
	"context"
	"testing"

	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/testutil"
)

func TestSeedIdempotent(t *testing.T) {
	t.Parallel()
	s := testutil.NewTestDB(t) // already seeded once by the helper
	ctx := context.Background()

	// Running the seed again must not duplicate or alter reference rows.
	if err := s.Seed(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	roles, err := s.ListRoles(ctx)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles) != 2 {
		t.Errorf("got %d roles, want 2", len(roles))
	}

	levels, err := s.ListAccessLevels(ctx)
	if err != nil {
		t.Fatalf("list access levels: %v", err)
	}
	if len(levels) != 4 {
		t.Fatalf("got %d access levels, want 4", len(levels))
	}
	wantRanks := map[string]int{
		"admin":   access.RankAdmin,
		"regular": access.RankRegular,
		"private": access.RankPrivate,
		"public":  access.RankPublic,
	}
	for _, l := range levels {
		if want, ok := wantRanks[l.Name]; !ok || l.Rank != want {
			t.Errorf("level %q has rank %d, want %d", l.Name, l.Rank, want)
		}
	}

	types, err := s.ListDocTypes(ctx)
	if err != nil {
		t.Fatalf("list types: %v", err)
	}
	if len(types) != 6 {
		t.Errorf("got %d doc types, want 6", len(types))
	}
}

// TestSeedSatisfiesRoleBinding checks the invariant that every seeded role
// title has a matching access level name.
func TestSeedSatisfiesRoleBinding(t *testing.T) {
	t.Parallel()
	s := testutil.NewTestDB(t)
	ctx := context.Background()

	table := access.NewTable()
	if err := table.Reload(ctx, s); err != nil {
		t.Fatalf("reload: %v", err)
	}

	roles, err := s.ListRoles(ctx)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	for _, role := range roles {
		if _, err := table.ResolveActorLevel(role.Title); err != nil {
			t.Errorf("role %q has no matching access level: %v", role.Title, err)
		}
	}
}
