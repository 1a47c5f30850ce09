package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/knowara/portal/internal/models"
	"github.com/knowara/portal/internal/services"
	pkghttp "github.com/knowara/portal/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardHandlerCreate_Success(t *testing.T) {
	caller := testCaller("acc1", "jdoe")
	service := &MockBoardService{
		CreateFunc: func(ctx context.Context, c *models.Account, title, content, category string) (*models.Board, error) {
			assert.Equal(t, "acc1", c.ID)
			return &models.Board{ID: "b1", Title: title, Content: content, AuthorID: c.ID}, nil
		},
	}

	handler := NewBoardHandler(service)
	rec := httptest.NewRecorder()
	handler.Create(rec, authenticatedRequest(t, http.MethodPost, "/api/boards", CreateBoardRequest{
		Title:   "Release notes",
		Content: "<p>shipped</p>",
	}, caller))

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeResponse(t, rec)
	assert.True(t, env.Success)
}

func TestBoardHandlerCreate_MissingTitle(t *testing.T) {
	caller := testCaller("acc1", "jdoe")
	service := &MockBoardService{
		CreateFunc: func(ctx context.Context, c *models.Account, title, content, category string) (*models.Board, error) {
			t.Fatal("service must not be called when validation fails")
			return nil, nil
		},
	}

	handler := NewBoardHandler(service)
	rec := httptest.NewRecorder()
	handler.Create(rec, authenticatedRequest(t, http.MethodPost, "/api/boards", CreateBoardRequest{
		Content: "body",
	}, caller))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeResponse(t, rec)
	assert.Equal(t, pkghttp.CodeValidation, env.ErrorCode)
}

func TestBoardHandlerCreate_Unauthenticated(t *testing.T) {
	handler := NewBoardHandler(&MockBoardService{})
	rec := httptest.NewRecorder()
	handler.Create(rec, jsonRequest(t, http.MethodPost, "/api/boards", CreateBoardRequest{
		Title:   "t",
		Content: "b",
	}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBoardHandlerGetByID(t *testing.T) {
	service := &MockBoardService{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Board, error) {
			assert.Equal(t, "b1", id)
			return &models.Board{ID: id, Title: "hello", ViewCount: 3}, nil
		},
	}

	handler := NewBoardHandler(service)
	req := withURLParam(jsonRequest(t, http.MethodGet, "/api/boards/b1", nil), "id", "b1")

	rec := httptest.NewRecorder()
	handler.GetByID(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeResponse(t, rec)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), data["view_count"])
}

func TestBoardHandlerGetByID_NotFound(t *testing.T) {
	service := &MockBoardService{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Board, error) {
			return nil, models.ErrNotFound
		},
	}

	handler := NewBoardHandler(service)
	req := withURLParam(jsonRequest(t, http.MethodGet, "/api/boards/ghost", nil), "id", "ghost")

	rec := httptest.NewRecorder()
	handler.GetByID(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeResponse(t, rec)
	assert.Equal(t, pkghttp.CodeNotFound, env.ErrorCode)
}

func TestBoardHandlerList_DefaultPagination(t *testing.T) {
	service := &MockBoardService{
		ListFunc: func(ctx context.Context, limit, offset int) (*services.BoardPage, error) {
			assert.Equal(t, defaultPageLimit, limit)
			assert.Equal(t, 0, offset)
			return &services.BoardPage{Boards: nil, Total: 0, Limit: limit, Offset: offset}, nil
		},
	}

	handler := NewBoardHandler(service)
	rec := httptest.NewRecorder()
	handler.List(rec, jsonRequest(t, http.MethodGet, "/api/boards", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBoardHandlerList_LimitCapped(t *testing.T) {
	service := &MockBoardService{
		ListFunc: func(ctx context.Context, limit, offset int) (*services.BoardPage, error) {
			assert.Equal(t, maxPageLimit, limit)
			assert.Equal(t, 40, offset)
			return &services.BoardPage{Limit: limit, Offset: offset}, nil
		},
	}

	handler := NewBoardHandler(service)
	rec := httptest.NewRecorder()
	handler.List(rec, jsonRequest(t, http.MethodGet, "/api/boards?limit=5000&offset=40", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBoardHandlerList_CategoryFilter(t *testing.T) {
	service := &MockBoardService{
		ListByCategoryFunc: func(ctx context.Context, category string, limit, offset int) (*services.BoardPage, error) {
			assert.Equal(t, "NOTICE", category)
			return &services.BoardPage{}, nil
		},
		ListFunc: func(ctx context.Context, limit, offset int) (*services.BoardPage, error) {
			t.Fatal("unfiltered list must not run when a category filter is set")
			return nil, nil
		},
	}

	handler := NewBoardHandler(service)
	rec := httptest.NewRecorder()
	handler.List(rec, jsonRequest(t, http.MethodGet, "/api/boards?category=NOTICE", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBoardHandlerList_AuthorFilter(t *testing.T) {
	service := &MockBoardService{
		ListByAuthorFunc: func(ctx context.Context, authorID string, limit, offset int) (*services.BoardPage, error) {
			assert.Equal(t, "acc1", authorID)
			return &services.BoardPage{}, nil
		},
	}

	handler := NewBoardHandler(service)
	rec := httptest.NewRecorder()
	handler.List(rec, jsonRequest(t, http.MethodGet, "/api/boards?author_id=acc1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBoardHandlerList_AuthorMissing(t *testing.T) {
	service := &MockBoardService{
		ListByAuthorFunc: func(ctx context.Context, authorID string, limit, offset int) (*services.BoardPage, error) {
			return nil, models.ErrNotFound
		},
	}

	handler := NewBoardHandler(service)
	rec := httptest.NewRecorder()
	handler.List(rec, jsonRequest(t, http.MethodGet, "/api/boards?author_id=ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBoardHandlerUpdate_Forbidden(t *testing.T) {
	caller := testCaller("acc2", "other")
	service := &MockBoardService{
		UpdateFunc: func(ctx context.Context, c *models.Account, id, title, content, category string) (*models.Board, error) {
			return nil, models.ErrForbidden
		},
	}

	handler := NewBoardHandler(service)
	req := withURLParam(authenticatedRequest(t, http.MethodPut, "/api/boards/b1", UpdateBoardRequest{
		Title:   "t",
		Content: "b",
	}, caller), "id", "b1")

	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decodeResponse(t, rec)
	assert.Equal(t, pkghttp.CodeForbidden, env.ErrorCode)
}

func TestBoardHandlerDelete_Success(t *testing.T) {
	caller := testCaller("acc1", "jdoe")
	service := &MockBoardService{
		DeleteFunc: func(ctx context.Context, c *models.Account, id string) error {
			assert.Equal(t, "b1", id)
			return nil
		},
	}

	handler := NewBoardHandler(service)
	req := withURLParam(authenticatedRequest(t, http.MethodDelete, "/api/boards/b1", nil, caller), "id", "b1")

	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeResponse(t, rec)
	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
}

func TestBoardHandlerSetPinned(t *testing.T) {
	admin := testCaller("acc9", "root", models.RoleAdmin)
	service := &MockBoardService{
		SetPinnedFunc: func(ctx context.Context, c *models.Account, id string, pinned bool) error {
			assert.True(t, pinned)
			return nil
		},
	}

	handler := NewBoardHandler(service)
	req := withURLParam(authenticatedRequest(t, http.MethodPut, "/api/boards/b1/pin", PinBoardRequest{
		Pinned: true,
	}, admin), "id", "b1")

	rec := httptest.NewRecorder()
	handler.SetPinned(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeResponse(t, rec)
	assert.Equal(t, "post pinned", env.Message)
}

func TestBoardHandlerSetPinned_NonAdmin(t *testing.T) {
	user := testCaller("acc1", "jdoe")
	service := &MockBoardService{
		SetPinnedFunc: func(ctx context.Context, c *models.Account, id string, pinned bool) error {
			return models.ErrForbidden
		},
	}

	handler := NewBoardHandler(service)
	req := withURLParam(authenticatedRequest(t, http.MethodPut, "/api/boards/b1/pin", PinBoardRequest{
		Pinned: true,
	}, user), "id", "b1")

	rec := httptest.NewRecorder()
	handler.SetPinned(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBoardHandlerStats(t *testing.T) {
	service := &MockBoardService{
		StatsFunc: func(ctx context.Context) (*models.BoardStats, error) {
			return &models.BoardStats{
				Total: 100,
				ByCategory: map[string]int64{
					"FREE":                    50,
					"NOTICE":                  30,
					models.UncategorizedLabel: 20,
				},
				Today:    3,
				ThisWeek: 12,
			}, nil
		},
	}

	handler := NewBoardHandler(service)
	rec := httptest.NewRecorder()
	handler.Stats(rec, jsonRequest(t, http.MethodGet, "/api/boards/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeResponse(t, rec)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(100), data["total"])

	byCategory, ok := data["by_category"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(20), byCategory[models.UncategorizedLabel])
}
