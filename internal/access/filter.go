// ABOUTME: Squirrel visibility predicates for document listings plus pagination.
// ABOUTME: ListPredicate must stay provably equivalent to CanRead (tested).
package access

import (
	sq "github.com/Masterminds/squirrel"
)

// ListPredicate builds the WHERE clause selecting exactly the non-deleted
// documents the actor may see. It mirrors CanRead rule for rule; the
// integration suite asserts the two stay equivalent over a seeded corpus.
func ListPredicate(actor Actor) sq.Sqlizer {
	if actor.Level.Rank == RankAdmin {
		return sq.Eq{"deleted": false}
	}
	return sq.And{
		sq.Eq{"deleted": false},
		sq.Or{
			sq.Eq{"access_rank": RankPublic},
			sq.And{
				sq.Eq{"access_rank": RankPrivate},
				sq.Eq{"owner_id": actor.ID},
			},
			sq.And{
				sq.Eq{"owner_role_title": actor.RoleTitle},
				sq.Eq{"access_rank": actor.Level.Rank},
			},
		},
	}
}

// SearchPredicate builds the WHERE clause for the search endpoint. The
// optional role and level filters combine conjunctively; callers must have
// already resolved the names against reference data.
func SearchPredicate(roleTitle *string, level *Level) sq.Sqlizer {
	pred := sq.And{sq.Eq{"deleted": false}}
	if roleTitle != nil {
		pred = append(pred, sq.Eq{"owner_role_title": *roleTitle})
	}
	if level != nil {
		pred = append(pred, sq.Eq{"access_rank": level.Rank})
	}
	return pred
}

// Paginate slices an already-sorted result set using zero-indexed page
// arithmetic: start = page*limit, stop = start+limit. A limit that is absent,
// zero, or negative disables pagination; an out-of-range page yields an empty
// slice, never an error.
func Paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := 0
	if page > 0 {
		start = page * limit
	}
	if start >= len(items) {
		return []T{}
	}
	stop := start + limit
	if stop > len(items) {
		stop = len(items)
	}
	return items[start:stop]
}
