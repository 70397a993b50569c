// ABOUTME: Integration tests for store/document.go and the visibility predicates.
// ABOUTME: Includes the list-predicate/CanRead equivalence check over a seeded corpus.
package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/store"
	"github.com/docuvault/docuvault/internal/testutil"
)

// mustCreateUser inserts a user with the named role and returns it.
func mustCreateUser(t *testing.T, s *store.Store, ctx context.Context, username, roleTitle string) *store.User {
	t.Helper()
	role, err := s.GetRoleByTitle(ctx, roleTitle)
	if err != nil || role == nil {
		t.Fatalf("get role %q: %v", roleTitle, err)
	}
	u, err := s.CreateUser(ctx, store.CreateUserParams{
		Firstname:    "Test",
		Lastname:     "User",
		RoleID:       role.ID,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "notahash",
		IsAdmin:      roleTitle == "admin",
	})
	if err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return u
}

// mustCreateDocument inserts a document owned by u with the given access rank.
func mustCreateDocument(t *testing.T, s *store.Store, ctx context.Context, u *store.User, roleTitle, title string, rank int) *store.Document {
	t.Helper()
	docType, err := s.GetDocTypeByTitle(ctx, "thesis")
	if err != nil || docType == nil {
		t.Fatalf("get doc type: %v", err)
	}
	d, err := s.CreateDocument(ctx, store.CreateDocumentParams{
		Title:          title,
		TypeID:         docType.ID,
		OwnerID:        u.ID,
		OwnerRoleTitle: roleTitle,
		Content:        "document body",
		AccessRank:     rank,
	})
	if err != nil {
		t.Fatalf("create document %q: %v", title, err)
	}
	return d
}

// loadTable reloads the rank table from the seeded access_levels rows.
func loadTable(t *testing.T, s *store.Store, ctx context.Context) *access.Table {
	t.Helper()
	table := access.NewTable()
	if err := table.Reload(ctx, s); err != nil {
		t.Fatalf("reload table: %v", err)
	}
	return table
}

func TestDocumentCRUD(t *testing.T) {
	t.Parallel()
	s := testutil.NewTestDB(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, ctx, "docowner", "regular")
	doc := mustCreateDocument(t, s, ctx, owner, "regular", "a crud test document", access.RankPublic)

	got, err := s.GetDocumentByID(ctx, doc.ID)
	if err != nil || got == nil {
		t.Fatalf("get document: %v", err)
	}
	if got.ModifiedAt.Valid {
		t.Error("modified_at set on a fresh document")
	}

	newContent := "rewritten body"
	updated, err := s.UpdateDocument(ctx, doc.ID, store.UpdateDocumentParams{Content: &newContent})
	if err != nil || updated == nil {
		t.Fatalf("update document: %v", err)
	}
	if updated.Content != newContent {
		t.Errorf("content = %q, want %q", updated.Content, newContent)
	}
	if !updated.ModifiedAt.Valid {
		t.Error("modified_at not stamped by update")
	}

	deleted, err := s.SoftDeleteDocument(ctx, doc.ID)
	if err != nil || deleted == nil {
		t.Fatalf("delete document: %v", err)
	}
	if !deleted.Deleted {
		t.Error("deleted flag not set")
	}

	// Soft-deleted documents are absent from reads and idempotent deletes.
	if got, err := s.GetDocumentByID(ctx, doc.ID); err != nil || got != nil {
		t.Errorf("get after delete: got %v, %v; want nil, nil", got, err)
	}
	if again, err := s.SoftDeleteDocument(ctx, doc.ID); err != nil || again != nil {
		t.Errorf("second delete: got %v, %v; want nil, nil", again, err)
	}
}

func TestDocumentDuplicateTitle(t *testing.T) {
	t.Parallel()
	s := testutil.NewTestDB(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, ctx, "dupowner", "regular")
	mustCreateDocument(t, s, ctx, owner, "regular", "a uniquely titled doc", access.RankPublic)

	docType, _ := s.GetDocTypeByTitle(ctx, "thesis")
	_, err := s.CreateDocument(ctx, store.CreateDocumentParams{
		Title:          "a uniquely titled doc",
		TypeID:         docType.ID,
		OwnerID:        owner.ID,
		OwnerRoleTitle: "regular",
		Content:        "other body",
		AccessRank:     access.RankPublic,
	})
	if !store.IsUniqueViolation(err) {
		t.Errorf("duplicate title: got %v, want unique violation", err)
	}
}

func TestListDocumentsNewestFirst(t *testing.T) {
	t.Parallel()
	s := testutil.NewTestDB(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, ctx, "sortowner", "regular")
	for i := 0; i < 3; i++ {
		mustCreateDocument(t, s, ctx, owner, "regular",
			fmt.Sprintf("an ordering test doc %d", i), access.RankPublic)
	}

	table := loadTable(t, s, ctx)
	level, err := table.ResolveActorLevel("regular")
	if err != nil {
		t.Fatalf("resolve level: %v", err)
	}
	actor := access.Actor{ID: owner.ID, RoleTitle: "regular", Level: level}

	docs, err := s.ListDocuments(ctx, access.ListPredicate(actor))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3", len(docs))
	}
	for i := 1; i < len(docs); i++ {
		prev, cur := docs[i-1], docs[i]
		if cur.CreatedAt.After(prev.CreatedAt) {
			t.Errorf("documents out of order at index %d", i)
		}
	}
}

// TestListPredicateMatchesCanRead builds a corpus of documents across every
// rank and owner role and asserts, for several actors, that the SQL predicate
// selects exactly the documents CanRead admits.
func TestListPredicateMatchesCanRead(t *testing.T) {
	t.Parallel()
	s := testutil.NewTestDB(t)
	ctx := context.Background()
	table := loadTable(t, s, ctx)

	admin := mustCreateUser(t, s, ctx, "corpusadmin", "admin")
	alice := mustCreateUser(t, s, ctx, "corpusalice", "regular")
	bob := mustCreateUser(t, s, ctx, "corpusbob", "regular")

	owners := []struct {
		user *store.User
		role string
	}{{admin, "admin"}, {alice, "regular"}, {bob, "regular"}}

	var corpus []*store.Document
	n := 0
	for _, o := range owners {
		for _, rank := range []int{access.RankAdmin, access.RankRegular, access.RankPrivate, access.RankPublic} {
			n++
			doc := mustCreateDocument(t, s, ctx, o.user, o.role,
				fmt.Sprintf("corpus document number %02d", n), rank)
			corpus = append(corpus, doc)
		}
	}
	// One soft-deleted document; invisible to everyone including admins.
	n++
	dead := mustCreateDocument(t, s, ctx, alice, "regular",
		fmt.Sprintf("corpus document number %02d", n), access.RankPublic)
	if _, err := s.SoftDeleteDocument(ctx, dead.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	corpus = append(corpus, dead)

	for _, o := range owners {
		level, err := table.ResolveActorLevel(o.role)
		if err != nil {
			t.Fatalf("resolve level for %s: %v", o.role, err)
		}
		actor := access.Actor{ID: o.user.ID, RoleTitle: o.role, Level: level}

		listed, err := s.ListDocuments(ctx, access.ListPredicate(actor))
		if err != nil {
			t.Fatalf("list for %s: %v", o.user.Username, err)
		}
		visible := make(map[uuid.UUID]bool, len(listed))
		for _, d := range listed {
			visible[d.ID] = true
		}

		for _, d := range corpus {
			// Re-read so the deleted flag reflects the database, not the
			// in-memory struct from creation time.
			row, err := s.GetDocumentByID(ctx, d.ID)
			if err != nil {
				t.Fatalf("get corpus doc: %v", err)
			}
			view := access.DocView{OwnerID: d.OwnerID, OwnerRoleTitle: d.OwnerRoleTitle, AccessRank: d.AccessRank, Deleted: row == nil}
			want := access.CanRead(actor, view)
			if got := visible[d.ID]; got != want {
				t.Errorf("actor %s, doc %q (rank %d, owner role %s): predicate=%v, CanRead=%v",
					o.user.Username, d.Title, d.AccessRank, d.OwnerRoleTitle, got, want)
			}
		}
	}
}
