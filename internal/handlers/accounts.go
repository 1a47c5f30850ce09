package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/knowara/portal/internal/models"
	"github.com/knowara/portal/internal/services"
	pkghttp "github.com/knowara/portal/pkg/http"
)

// AccountServiceInterface defines the interface for account administration
type AccountServiceInterface interface {
	GetByID(ctx context.Context, id string) (*services.AccountSummary, error)
	List(ctx context.Context, limit, offset int) (*services.AccountPage, error)
	Approve(ctx context.Context, actor *models.Account, id string) error
	Deactivate(ctx context.Context, actor *models.Account, id string) error
	Unlock(ctx context.Context, actor *models.Account, id string) error
}

// AccountHandler handles administrative account HTTP requests
type AccountHandler struct {
	service AccountServiceInterface
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

// Me returns the authenticated caller's own account.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}

	summary, err := h.service.GetByID(r.Context(), caller.ID)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, summary, "")
}

// List returns a page of accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	page, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, page, "")
}

// GetByID returns a single account.
func (h *AccountHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	summary, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, summary, "")
}

// Approve activates a pending account.
func (h *AccountHandler) Approve(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Approve(r.Context(), caller, id); err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, nil, "account approved")
}

// Deactivate disables an account.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Deactivate(r.Context(), caller, id); err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, nil, "account deactivated")
}

// Unlock clears a lockout so the holder can try to log in again.
func (h *AccountHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAccount(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Unlock(r.Context(), caller, id); err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, nil, "account unlocked")
}
