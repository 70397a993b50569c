// ABOUTME: Truth-table tests for the pure authorization decision functions.
// ABOUTME: Covers every CanRead rule, the create boundary, and the delete conjunction.
package access_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/docuvault/docuvault/internal/access"
)

var (
	alice = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	bob   = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
)

func level(name string, rank int) access.Level {
	return access.Level{ID: uuid.New(), Name: name, Rank: rank}
}

func regularActor(id uuid.UUID) access.Actor {
	return access.Actor{ID: id, RoleTitle: "regular", Level: level("regular", access.RankRegular)}
}

func adminActor(id uuid.UUID) access.Actor {
	return access.Actor{ID: id, RoleTitle: "admin", Level: level("admin", access.RankAdmin)}
}

func TestCanRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		actor access.Actor
		doc   access.DocView
		want  bool
	}{
		{
			name:  "public document visible to unrelated regular user",
			actor: regularActor(alice),
			doc:   access.DocView{OwnerID: bob, OwnerRoleTitle: "admin", AccessRank: access.RankPublic},
			want:  true,
		},
		{
			name:  "private document visible to its owner",
			actor: regularActor(alice),
			doc:   access.DocView{OwnerID: alice, OwnerRoleTitle: "regular", AccessRank: access.RankPrivate},
			want:  true,
		},
		{
			name:  "private document hidden from non-owner non-admin",
			actor: regularActor(alice),
			doc:   access.DocView{OwnerID: bob, OwnerRoleTitle: "regular", AccessRank: access.RankPrivate},
			want:  false,
		},
		{
			name:  "role-scoped document visible to same-role peer at exactly that rank",
			actor: regularActor(alice),
			doc:   access.DocView{OwnerID: bob, OwnerRoleTitle: "regular", AccessRank: access.RankRegular},
			want:  true,
		},
		{
			name:  "role-scoped document hidden from different role",
			actor: regularActor(alice),
			doc:   access.DocView{OwnerID: bob, OwnerRoleTitle: "editor", AccessRank: access.RankRegular},
			want:  false,
		},
		{
			name:  "same role but different rank is hidden",
			actor: regularActor(alice),
			doc:   access.DocView{OwnerID: bob, OwnerRoleTitle: "regular", AccessRank: access.RankPrivate},
			want:  false,
		},
		{
			name:  "admin sees someone else's private document",
			actor: adminActor(alice),
			doc:   access.DocView{OwnerID: bob, OwnerRoleTitle: "regular", AccessRank: access.RankPrivate},
			want:  true,
		},
		{
			name:  "admin sees role-scoped document of another role",
			actor: adminActor(alice),
			doc:   access.DocView{OwnerID: bob, OwnerRoleTitle: "regular", AccessRank: access.RankRegular},
			want:  true,
		},
		{
			name:  "deleted document invisible even to admin",
			actor: adminActor(alice),
			doc:   access.DocView{OwnerID: bob, OwnerRoleTitle: "regular", AccessRank: access.RankPublic, Deleted: true},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, access.CanRead(tt.actor, tt.doc))
		})
	}
}

func TestAuthorizeCreate(t *testing.T) {
	t.Parallel()

	regular := level("regular", access.RankRegular)
	admin := level("admin", access.RankAdmin)
	private := level("private", access.RankPrivate)
	public := level("public", access.RankPublic)

	// Equal or less privileged than the actor: allowed.
	assert.NoError(t, access.AuthorizeCreate(regular, regular))
	assert.NoError(t, access.AuthorizeCreate(regular, private))
	assert.NoError(t, access.AuthorizeCreate(regular, public))
	assert.NoError(t, access.AuthorizeCreate(admin, admin))

	// More privileged than the actor: rejected.
	assert.ErrorIs(t, access.AuthorizeCreate(regular, admin), access.ErrLevelUnauthorized)
	assert.ErrorIs(t, access.AuthorizeCreate(private, regular), access.ErrLevelUnauthorized)
}

func TestCanUpdate(t *testing.T) {
	t.Parallel()

	doc := access.DocView{OwnerID: alice, OwnerRoleTitle: "regular", AccessRank: access.RankPublic}

	assert.True(t, access.CanUpdate(regularActor(alice), doc))
	assert.False(t, access.CanUpdate(regularActor(bob), doc), "non-owner may not update")
	// No admin override on update.
	assert.False(t, access.CanUpdate(adminActor(bob), doc))

	doc.Deleted = true
	assert.False(t, access.CanUpdate(regularActor(alice), doc), "deleted document may not be updated")
}

func TestCanDelete(t *testing.T) {
	t.Parallel()

	doc := access.DocView{OwnerID: alice, OwnerRoleTitle: "regular", AccessRank: access.RankPublic}

	// Deletion requires ownership AND admin rank together.
	assert.False(t, access.CanDelete(regularActor(alice), doc), "owner without admin rank may not delete")
	assert.False(t, access.CanDelete(adminActor(bob), doc), "admin non-owner may not delete")
	assert.True(t, access.CanDelete(adminActor(alice), doc))
}
