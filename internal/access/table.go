// Package access implements the authorization core: the in-memory table that
// maps role titles to access levels, the per-operation decision functions for
// documents, and the SQL visibility predicates used by listings.
//
// Ranks are inverted privileges: 1 is the most privileged. A user may only
// grant a document an access level at or below their own privilege rank.
package access

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Well-known ranks from the seeded access_levels rows. RankPublic is the
// catch-all default for new documents.
const (
	RankAdmin   = 1
	RankRegular = 2
	RankPrivate = 3
	RankPublic  = 4
)

var (
	// ErrLevelNotFound means a role title has no matching access level; the
	// reference data is incomplete.
	ErrLevelNotFound = errors.New("access level not found")
	// ErrLevelUnauthorized means the actor requested a level more privileged
	// than their own.
	ErrLevelUnauthorized = errors.New("access level unauthorized")
)

// Level is one access_levels row.
type Level struct {
	ID   uuid.UUID
	Name string
	Rank int
}

// LevelSource yields the full access_levels reference set; implemented by the store.
type LevelSource interface {
	ListAccessLevels(ctx context.Context) ([]Level, error)
}

// Table is a reloadable in-memory snapshot of the access_levels reference
// data, keyed by name and by rank. Resolving an actor's effective level is a
// map lookup rather than a per-request store query; callers reload the table
// after mutating reference data.
type Table struct {
	mu     sync.RWMutex
	byName map[string]Level
	byRank map[int]Level
}

// NewTable returns an empty Table. Call Reload before first use.
func NewTable() *Table {
	return &Table{
		byName: make(map[string]Level),
		byRank: make(map[int]Level),
	}
}

// Reload replaces the snapshot with the current contents of src.
func (t *Table) Reload(ctx context.Context, src LevelSource) error {
	levels, err := src.ListAccessLevels(ctx)
	if err != nil {
		return fmt.Errorf("reload access levels: %w", err)
	}
	byName := make(map[string]Level, len(levels))
	byRank := make(map[int]Level, len(levels))
	for _, l := range levels {
		byName[l.Name] = l
		byRank[l.Rank] = l
	}
	t.mu.Lock()
	t.byName = byName
	t.byRank = byRank
	t.mu.Unlock()
	return nil
}

// ByName returns the level with the given name.
func (t *Table) ByName(name string) (Level, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, ok := t.byName[name]
	return l, ok
}

// ByRank returns the level with the given rank.
func (t *Table) ByRank(rank int) (Level, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, ok := t.byRank[rank]
	return l, ok
}

// ResolveActorLevel returns the effective access level for an actor holding
// the given role: the level whose name equals the role title. A missing
// binding is a data-integrity failure surfaced as ErrLevelNotFound.
func (t *Table) ResolveActorLevel(roleTitle string) (Level, error) {
	l, ok := t.ByName(roleTitle)
	if !ok {
		return Level{}, fmt.Errorf("role %q: %w", roleTitle, ErrLevelNotFound)
	}
	return l, nil
}
