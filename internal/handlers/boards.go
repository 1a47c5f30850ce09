package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/knowara/portal/internal/auth"
	"github.com/knowara/portal/internal/models"
	"github.com/knowara/portal/internal/services"
	pkghttp "github.com/knowara/portal/pkg/http"
)

// BoardServiceInterface defines the interface for board business logic
type BoardServiceInterface interface {
	Create(ctx context.Context, caller *models.Account, title, content, category string) (*models.Board, error)
	GetByID(ctx context.Context, id string) (*models.Board, error)
	List(ctx context.Context, limit, offset int) (*services.BoardPage, error)
	ListByCategory(ctx context.Context, category string, limit, offset int) (*services.BoardPage, error)
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) (*services.BoardPage, error)
	ListPinned(ctx context.Context) ([]*models.Board, error)
	Update(ctx context.Context, caller *models.Account, id, title, content, category string) (*models.Board, error)
	Delete(ctx context.Context, caller *models.Account, id string) error
	SetPinned(ctx context.Context, caller *models.Account, id string, pinned bool) error
	Stats(ctx context.Context) (*models.BoardStats, error)
}

// BoardHandler handles bulletin board HTTP requests
type BoardHandler struct {
	service BoardServiceInterface
}

// NewBoardHandler creates a new BoardHandler
func NewBoardHandler(service BoardServiceInterface) *BoardHandler {
	return &BoardHandler{service: service}
}

// CreateBoardRequest represents the request body for creating a post
type CreateBoardRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"max=50"`
}

// UpdateBoardRequest represents the request body for updating a post
type UpdateBoardRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"max=50"`
}

// PinBoardRequest represents the request body for pinning or unpinning a post
type PinBoardRequest struct {
	Pinned bool `json:"pinned"`
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// parsePagination reads limit/offset query parameters with sane bounds.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	offset = 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

func callerAccount(w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return nil, false
	}
	return account, true
}

// Create handles creation of a new post.
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	board, err := h.service.Create(r.Context(), caller, req.Title, req.Content, req.Category)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteCreated(w, board, "post created")
}

// GetByID returns a single post and counts the view.
func (h *BoardHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	board, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, board, "")
}

// List returns a page of posts, optionally filtered by category or author.
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var (
		page *services.BoardPage
		err  error
	)
	switch {
	case r.URL.Query().Get("category") != "":
		page, err = h.service.ListByCategory(r.Context(), r.URL.Query().Get("category"), limit, offset)
	case r.URL.Query().Get("author_id") != "":
		page, err = h.service.ListByAuthor(r.Context(), r.URL.Query().Get("author_id"), limit, offset)
	default:
		page, err = h.service.List(r.Context(), limit, offset)
	}
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, page, "")
}

// ListPinned returns all pinned posts.
func (h *BoardHandler) ListPinned(w http.ResponseWriter, r *http.Request) {
	boards, err := h.service.ListPinned(r.Context())
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, boards, "")
}

// Update handles editing an existing post.
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	board, err := h.service.Update(r.Context(), caller, id, req.Title, req.Content, req.Category)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, board, "post updated")
}

// Delete handles removal of a post. The record is retained but disappears
// from every listing and lookup.
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, nil, "post deleted")
}

// SetPinned handles pinning or unpinning a post.
func (h *BoardHandler) SetPinned(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}

	var req PinBoardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.SetPinned(r.Context(), caller, id, req.Pinned); err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	message := "post pinned"
	if !req.Pinned {
		message = "post unpinned"
	}
	pkghttp.WriteOK(w, nil, message)
}

// Stats returns aggregate counts for the board.
func (h *BoardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, stats, "")
}
