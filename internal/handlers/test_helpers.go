package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/knowara/portal/internal/auth"
	"github.com/knowara/portal/internal/models"
	"github.com/knowara/portal/internal/services"
	pkghttp "github.com/knowara/portal/pkg/http"
	"github.com/stretchr/testify/require"
)

// MockAuthService implements AuthServiceInterface for handler tests
type MockAuthService struct {
	LoginFunc        func(ctx context.Context, username, password, ipAddress string) (*services.AuthResponse, error)
	RefreshTokenFunc func(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	RegisterFunc     func(ctx context.Context, input services.RegisterInput) (*services.RegisterResponse, error)
}

func (m *MockAuthService) Login(ctx context.Context, username, password, ipAddress string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password, ipAddress)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResponse, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Register(ctx context.Context, input services.RegisterInput) (*services.RegisterResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, input)
	}
	return nil, models.ErrInternalServer
}

// MockBoardService implements BoardServiceInterface for handler tests
type MockBoardService struct {
	CreateFunc         func(ctx context.Context, caller *models.Account, title, content, category string) (*models.Board, error)
	GetByIDFunc        func(ctx context.Context, id string) (*models.Board, error)
	ListFunc           func(ctx context.Context, limit, offset int) (*services.BoardPage, error)
	ListByCategoryFunc func(ctx context.Context, category string, limit, offset int) (*services.BoardPage, error)
	ListByAuthorFunc   func(ctx context.Context, authorID string, limit, offset int) (*services.BoardPage, error)
	ListPinnedFunc     func(ctx context.Context) ([]*models.Board, error)
	UpdateFunc         func(ctx context.Context, caller *models.Account, id, title, content, category string) (*models.Board, error)
	DeleteFunc         func(ctx context.Context, caller *models.Account, id string) error
	SetPinnedFunc      func(ctx context.Context, caller *models.Account, id string, pinned bool) error
	StatsFunc          func(ctx context.Context) (*models.BoardStats, error)
}

func (m *MockBoardService) Create(ctx context.Context, caller *models.Account, title, content, category string) (*models.Board, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, caller, title, content, category)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBoardService) GetByID(ctx context.Context, id string) (*models.Board, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBoardService) List(ctx context.Context, limit, offset int) (*services.BoardPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBoardService) ListByCategory(ctx context.Context, category string, limit, offset int) (*services.BoardPage, error) {
	if m.ListByCategoryFunc != nil {
		return m.ListByCategoryFunc(ctx, category, limit, offset)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBoardService) ListByAuthor(ctx context.Context, authorID string, limit, offset int) (*services.BoardPage, error) {
	if m.ListByAuthorFunc != nil {
		return m.ListByAuthorFunc(ctx, authorID, limit, offset)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBoardService) ListPinned(ctx context.Context) ([]*models.Board, error) {
	if m.ListPinnedFunc != nil {
		return m.ListPinnedFunc(ctx)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBoardService) Update(ctx context.Context, caller *models.Account, id, title, content, category string) (*models.Board, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, caller, id, title, content, category)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBoardService) Delete(ctx context.Context, caller *models.Account, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, caller, id)
	}
	return models.ErrInternalServer
}

func (m *MockBoardService) SetPinned(ctx context.Context, caller *models.Account, id string, pinned bool) error {
	if m.SetPinnedFunc != nil {
		return m.SetPinnedFunc(ctx, caller, id, pinned)
	}
	return models.ErrInternalServer
}

func (m *MockBoardService) Stats(ctx context.Context) (*models.BoardStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return nil, models.ErrInternalServer
}

// MockAccountService implements AccountServiceInterface for handler tests
type MockAccountService struct {
	GetByIDFunc    func(ctx context.Context, id string) (*services.AccountSummary, error)
	ListFunc       func(ctx context.Context, limit, offset int) (*services.AccountPage, error)
	ApproveFunc    func(ctx context.Context, actor *models.Account, id string) error
	DeactivateFunc func(ctx context.Context, actor *models.Account, id string) error
	UnlockFunc     func(ctx context.Context, actor *models.Account, id string) error
}

func (m *MockAccountService) GetByID(ctx context.Context, id string) (*services.AccountSummary, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountService) List(ctx context.Context, limit, offset int) (*services.AccountPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountService) Approve(ctx context.Context, actor *models.Account, id string) error {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, actor, id)
	}
	return models.ErrInternalServer
}

func (m *MockAccountService) Deactivate(ctx context.Context, actor *models.Account, id string) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, actor, id)
	}
	return models.ErrInternalServer
}

func (m *MockAccountService) Unlock(ctx context.Context, actor *models.Account, id string) error {
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, actor, id)
	}
	return models.ErrInternalServer
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authenticatedRequest(t *testing.T, method, target string, body any, account *models.Account) *http.Request {
	t.Helper()

	req := jsonRequest(t, method, target, body)
	return req.WithContext(auth.ContextWithAccount(req.Context(), account))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) pkghttp.Envelope {
	t.Helper()

	var env pkghttp.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func testCaller(id, username string, roles ...string) *models.Account {
	account := &models.Account{
		ID:       id,
		Username: username,
		Active:   true,
	}
	if len(roles) == 0 {
		roles = []string{models.RoleUser}
	}
	for _, name := range roles {
		account.Roles = append(account.Roles, models.Role{Name: name})
	}
	return account
}
