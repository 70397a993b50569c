// ABOUTME: HTTP handlers for documents: create, list, get, update, delete, search.
// ABOUTME: Authorization outcomes map to 404 for invisible documents and 403 for forbidden mutations.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/store"
)

// documentResponse is the API representation of a documents row.
type documentResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	TypeID         string  `json:"type_id"`
	OwnerID        string  `json:"owner_id"`
	OwnerRoleTitle string  `json:"owner_role_title"`
	Content        string  `json:"content"`
	Access         string  `json:"access"`
	AccessRank     int     `json:"access_rank"`
	CreatedAt      string  `json:"created_at"`            // RFC3339
	ModifiedAt     *string `json:"modified_at,omitempty"` // RFC3339
}

// docToResponse converts a store row, resolving the rank back to a level name
// where the reference data still has one.
func (srv *Server) docToResponse(d *store.Document) documentResponse {
	resp := documentResponse{
		ID:             d.ID.String(),
		Title:          d.Title,
		TypeID:         d.TypeID.String(),
		OwnerID:        d.OwnerID.String(),
		OwnerRoleTitle: d.OwnerRoleTitle,
		Content:        d.Content,
		AccessRank:     d.AccessRank,
		CreatedAt:      d.CreatedAt.UTC().Format(time.RFC3339),
	}
	if lvl, ok := srv.table.ByRank(d.AccessRank); ok {
		resp.Access = lvl.Name
	}
	if d.ModifiedAt.Valid {
		s := d.ModifiedAt.Time.UTC().Format(time.RFC3339)
		resp.ModifiedAt = &s
	}
	return resp
}

// ── Create ────────────────────────────────────────────────────────────────────

// createDocumentInput is the request for POST /documents.
type createDocumentInput struct {
	credentials
	Body struct {
		Title   string `json:"title"   minLength:"10" maxLength:"255" doc:"Document title (unique)"`
		Type    string `json:"type"    minLength:"5"  maxLength:"25"  doc:"Document type title"`
		Content string `json:"content" minLength:"1"                  doc:"Document body"`
		Access  string `json:"access,omitempty"                       doc:"Access level name (defaults to public)"`
	}
}

// createDocumentOutput is the response for POST /documents.
type createDocumentOutput struct {
	Status int
	Body   documentResponse
}

// createDocumentHandler handles POST /api/v1/documents.
// The requested access level must be at or below the actor's own privilege
// rank; the owner's role title is snapshotted onto the document.
func (srv *Server) createDocumentHandler(ctx context.Context, input *createDocumentInput) (*createDocumentOutput, error) {
	actor, _, err := srv.resolveActor(ctx, input.credentials)
	if err != nil {
		return nil, err
	}

	docType, err := srv.store.GetDocTypeByTitle(ctx, input.Body.Type)
	if err != nil {
		slog.ErrorContext(ctx, "create document: lookup type", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}
	if docType == nil {
		return nil, huma.Error404NotFound("document type not found")
	}

	levelName := input.Body.Access
	if levelName == "" {
		levelName = "public"
	}
	requested, ok := srv.table.ByName(levelName)
	if !ok {
		return nil, huma.Error404NotFound("access level not found")
	}
	if err := access.AuthorizeCreate(actor.Level, requested); err != nil {
		return nil, huma.Error403Forbidden("access level unauthorized")
	}

	doc, err := srv.store.CreateDocument(ctx, store.CreateDocumentParams{
		Title:          input.Body.Title,
		TypeID:         docType.ID,
		OwnerID:        actor.ID,
		OwnerRoleTitle: actor.RoleTitle,
		Content:        input.Body.Content,
		AccessRank:     requested.Rank,
	})
	if err != nil {
		if store.IsUniqueViolation(err) { // unique_violation on title
			return nil, huma.Error409Conflict("document title already exists")
		}
		slog.ErrorContext(ctx, "create document", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}

	out := &createDocumentOutput{Status: http.StatusCreated, Body: srv.docToResponse(doc)}
	return out, nil
}

// ── List ──────────────────────────────────────────────────────────────────────

// listDocumentsInput carries the pagination query params for GET /documents.
type listDocumentsInput struct {
	credentials
	Page  int `query:"page"  minimum:"0" doc:"Zero-indexed page number"`
	Limit int `query:"limit" minimum:"0" doc:"Page size; 0 disables pagination"`
}

// listDocumentsOutput is the response for GET /documents.
type listDocumentsOutput struct {
	Body struct {
		Documents []documentResponse `json:"documents"`
	}
}

// listDocumentsHandler handles GET /api/v1/documents.
// Returns only the documents visible to the actor, newest first.
func (srv *Server) listDocumentsHandler(ctx context.Context, input *listDocumentsInput) (*listDocumentsOutput, error) {
	actor, _, err := srv.resolveActor(ctx, input.credentials)
	if err != nil {
		return nil, err
	}

	docs, err := srv.store.ListDocuments(ctx, access.ListPredicate(*actor))
	if err != nil {
		slog.ErrorContext(ctx, "list documents", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}
	docs = access.Paginate(docs, input.Page, input.Limit)

	out := &listDocumentsOutput{}
	out.Body.Documents = make([]documentResponse, 0, len(docs))
	for i := range docs {
		out.Body.Documents = append(out.Body.Documents, srv.docToResponse(&docs[i]))
	}
	return out, nil
}

// ── Get ───────────────────────────────────────────────────────────────────────

// getDocumentInput reads the document id path parameter.
type getDocumentInput struct {
	credentials
	ID string `path:"id" doc:"Document id"`
}

// getDocumentOutput is the response for GET /documents/{id}.
type getDocumentOutput struct {
	Body documentResponse
}

// fetchVisible loads the document and applies CanRead. Invisible and absent
// documents are indistinguishable to the caller: both are 404.
func (srv *Server) fetchVisible(ctx context.Context, actor *access.Actor, rawID string) (*store.Document, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, huma.Error404NotFound("document not found")
	}
	doc, err := srv.store.GetDocumentByID(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "get document", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}
	if doc == nil || !access.CanRead(*actor, doc.View()) {
		return nil, huma.Error404NotFound("document not found")
	}
	return doc, nil
}

// getDocumentHandler handles GET /api/v1/documents/{id}.
func (srv *Server) getDocumentHandler(ctx context.Context, input *getDocumentInput) (*getDocumentOutput, error) {
	actor, _, err := srv.resolveActor(ctx, input.credentials)
	if err != nil {
		return nil, err
	}
	doc, err := srv.fetchVisible(ctx, actor, input.ID)
	if err != nil {
		return nil, err
	}
	return &getDocumentOutput{Body: srv.docToResponse(doc)}, nil
}

// ── Update ────────────────────────────────────────────────────────────────────

// updateDocumentInput is the request for PUT /documents/{id}.
type updateDocumentInput struct {
	credentials
	ID   string `path:"id" doc:"Document id"`
	Body struct {
		Title   *string `json:"title,omitempty"   minLength:"10" maxLength:"255" doc:"New title"`
		Type    *string `json:"type,omitempty"    minLength:"5"  maxLength:"25"  doc:"New document type title"`
		Content *string `json:"content,omitempty" minLength:"1"                  doc:"New body"`
		Access  *string `json:"access,omitempty"                                 doc:"New access level name"`
	}
}

// updateDocumentOutput is the response for PUT /documents/{id}.
type updateDocumentOutput struct {
	Body documentResponse
}

// updateDocumentHandler handles PUT /api/v1/documents/{id}.
// Only the owner may update; an access level change is re-checked against the
// actor's own rank just like at creation.
func (srv *Server) updateDocumentHandler(ctx context.Context, input *updateDocumentInput) (*updateDocumentOutput, error) {
	actor, _, err := srv.resolveActor(ctx, input.credentials)
	if err != nil {
		return nil, err
	}
	doc, err := srv.fetchVisible(ctx, actor, input.ID)
	if err != nil {
		return nil, err
	}
	if !access.CanUpdate(*actor, doc.View()) {
		return nil, huma.Error403Forbidden("only the owner may update a document")
	}

	params := store.UpdateDocumentParams{
		Title:   input.Body.Title,
		Content: input.Body.Content,
	}
	if input.Body.Type != nil {
		docType, err := srv.store.GetDocTypeByTitle(ctx, *input.Body.Type)
		if err != nil {
			slog.ErrorContext(ctx, "update document: lookup type", "error", err)
			return nil, huma.Error500InternalServerError("internal error")
		}
		if docType == nil {
			return nil, huma.Error404NotFound("document type not found")
		}
		params.TypeID = &docType.ID
	}
	if input.Body.Access != nil {
		requested, ok := srv.table.ByName(*input.Body.Access)
		if !ok {
			return nil, huma.Error404NotFound("access level not found")
		}
		if err := access.AuthorizeCreate(actor.Level, requested); err != nil {
			return nil, huma.Error403Forbidden("access level unauthorized")
		}
		params.AccessRank = &requested.Rank
	}

	updated, err := srv.store.UpdateDocument(ctx, doc.ID, params)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, huma.Error409Conflict("document title already exists")
		}
		slog.ErrorContext(ctx, "update document", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}
	if updated == nil {
		// Deleted between the read and the write.
		return nil, huma.Error404NotFound("document not found")
	}
	return &updateDocumentOutput{Body: srv.docToResponse(updated)}, nil
}

// ── Delete ────────────────────────────────────────────────────────────────────

// deleteDocumentInput reads the document id path parameter.
type deleteDocumentInput struct {
	credentials
	ID string `path:"id" doc:"Document id"`
}

// deleteDocumentOutput returns the soft-deleted document.
type deleteDocumentOutput struct {
	Body documentResponse
}

// deleteDocumentHandler handles DELETE /api/v1/documents/{id}.
// Deletion requires both ownership and admin rank; the row is soft-deleted.
func (srv *Server) deleteDocumentHandler(ctx context.Context, input *deleteDocumentInput) (*deleteDocumentOutput, error) {
	actor, _, err := srv.resolveActor(ctx, input.credentials)
	if err != nil {
		return nil, err
	}
	doc, err := srv.fetchVisible(ctx, actor, input.ID)
	if err != nil {
		return nil, err
	}
	if !access.CanDelete(*actor, doc.View()) {
		return nil, huma.Error403Forbidden("deletion requires document ownership and admin privilege")
	}

	deleted, err := srv.store.SoftDeleteDocument(ctx, doc.ID)
	if err != nil {
		slog.ErrorContext(ctx, "delete document", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}
	if deleted == nil {
		return nil, huma.Error404NotFound("document not found")
	}
	return &deleteDocumentOutput{Body: srv.docToResponse(deleted)}, nil
}

// ── Search ────────────────────────────────────────────────────────────────────

// searchDocumentsInput carries the optional role/access filters.
type searchDocumentsInput struct {
	credentials
	Role   string `query:"role"   doc:"Filter by owner role title"`
	Access string `query:"access" doc:"Filter by access level name"`
	Page   int    `query:"page"   minimum:"0" doc:"Zero-indexed page number"`
	Limit  int    `query:"limit"  minimum:"0" doc:"Page size; 0 disables pagination"`
}

// searchDocumentsOutput is the response for GET /search/documents.
type searchDocumentsOutput struct {
	Body struct {
		Documents []documentResponse `json:"documents"`
	}
}

// searchDocumentsHandler handles GET /api/v1/search/documents.
// Admin only: the results are not visibility-scoped, so exposing them to a
// non-admin caller would leak private documents. Filters combine
// conjunctively; names that do not resolve against reference data are
// rejected.
func (srv *Server) searchDocumentsHandler(ctx context.Context, input *searchDocumentsInput) (*searchDocumentsOutput, error) {
	actor, _, err := srv.resolveActor(ctx, input.credentials)
	if err != nil {
		return nil, err
	}
	if actor.Level.Rank != access.RankAdmin {
		return nil, huma.Error403Forbidden("search requires admin privilege")
	}

	var roleTitle *string
	if input.Role != "" {
		role, err := srv.store.GetRoleByTitle(ctx, input.Role)
		if err != nil {
			slog.ErrorContext(ctx, "search documents: lookup role", "error", err)
			return nil, huma.Error500InternalServerError("internal error")
		}
		if role == nil {
			return nil, huma.Error404NotFound("role not found")
		}
		roleTitle = &role.Title
	}
	var level *access.Level
	if input.Access != "" {
		lvl, ok := srv.table.ByName(input.Access)
		if !ok {
			return nil, huma.Error404NotFound("access level not found")
		}
		level = &lvl
	}

	docs, err := srv.store.ListDocuments(ctx, access.SearchPredicate(roleTitle, level))
	if err != nil {
		slog.ErrorContext(ctx, "search documents", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}
	docs = access.Paginate(docs, input.Page, input.Limit)

	out := &searchDocumentsOutput{}
	out.Body.Documents = make([]documentResponse, 0, len(docs))
	for i := range docs {
		out.Body.Documents = append(out.Body.Documents, srv.docToResponse(&docs[i]))
	}
	return out, nil
}

// ── Route registration ────────────────────────────────────────────────────────

// registerDocumentRoutes registers all document routes on the huma API.
func registerDocumentRoutes(api huma.API, srv *Server) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-document",
		Method:        http.MethodPost,
		Path:          "/documents",
		Tags:          []string{"documents"},
		Summary:       "Create a document",
		DefaultStatus: http.StatusCreated,
	}, srv.createDocumentHandler)

	huma.Register(api, huma.Operation{
		OperationID: "list-documents",
		Method:      http.MethodGet,
		Path:        "/documents",
		Tags:        []string{"documents"},
		Summary:     "List documents visible to the caller",
	}, srv.listDocumentsHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-document",
		Method:      http.MethodGet,
		Path:        "/documents/{id}",
		Tags:        []string{"documents"},
		Summary:     "Get a document by id",
	}, srv.getDocumentHandler)

	huma.Register(api, huma.Operation{
		OperationID: "update-document",
		Method:      http.MethodPut,
		Path:        "/documents/{id}",
		Tags:        []string{"documents"},
		Summary:     "Update a document (owner only)",
	}, srv.updateDocumentHandler)

	huma.Register(api, huma.Operation{
		OperationID: "delete-document",
		Method:      http.MethodDelete,
		Path:        "/documents/{id}",
		Tags:        []string{"documents"},
		Summary:     "Soft-delete a document (owner with admin privilege)",
	}, srv.deleteDocumentHandler)

	huma.Register(api, huma.Operation{
		OperationID: "search-documents",
		Method:      http.MethodGet,
		Path:        "/search/documents",
		Tags:        []string{"documents"},
		Summary:     "Search documents by owner role and access level (admin only)",
	}, srv.searchDocumentsHandler)
}
