package services

import (
	"context"
	"time"

	"github.com/knowara/portal/internal/models"
)

// MockAccountRepository implements AccountRepository for testing
type MockAccountRepository struct {
	GetByIDFunc               func(ctx context.Context, id string) (*models.Account, error)
	GetByUsernameFunc         func(ctx context.Context, username string) (*models.Account, error)
	ExistsByUsernameFunc      func(ctx context.Context, username string) (bool, error)
	ExistsByEmailFunc         func(ctx context.Context, email string) (bool, error)
	ListFunc                  func(ctx context.Context, limit, offset int) ([]*models.Account, error)
	CountFunc                 func(ctx context.Context) (int64, error)
	CreateFunc                func(ctx context.Context, account *models.Account) (*models.Account, error)
	RecordFailedLoginFunc     func(ctx context.Context, id string, threshold int) (int, bool, error)
	RecordSuccessfulLoginFunc func(ctx context.Context, id string) error
	SetActiveFunc             func(ctx context.Context, id string, active bool) error
	UnlockFunc                func(ctx context.Context, id string) error
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.ExistsByUsernameFunc != nil {
		return m.ExistsByUsernameFunc(ctx, username)
	}
	return false, nil
}

func (m *MockAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.Account{}, nil
}

func (m *MockAccountRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) RecordFailedLogin(ctx context.Context, id string, threshold int) (int, bool, error) {
	if m.RecordFailedLoginFunc != nil {
		return m.RecordFailedLoginFunc(ctx, id, threshold)
	}
	return 0, false, models.ErrInternalServer
}

func (m *MockAccountRepository) RecordSuccessfulLogin(ctx context.Context, id string) error {
	if m.RecordSuccessfulLoginFunc != nil {
		return m.RecordSuccessfulLoginFunc(ctx, id)
	}
	return nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active)
	}
	return nil
}

func (m *MockAccountRepository) Unlock(ctx context.Context, id string) error {
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, id)
	}
	return nil
}

// MockRoleRepository implements RoleRepository for testing
type MockRoleRepository struct {
	GetByNameFunc func(ctx context.Context, name string) (*models.Role, error)
}

func (m *MockRoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	return NewTestRole(name), nil
}

// MockBoardRepository implements BoardRepository for testing
type MockBoardRepository struct {
	GetByIDNotDeletedFunc        func(ctx context.Context, id string) (*models.Board, error)
	ListNotDeletedFunc           func(ctx context.Context, limit, offset int) ([]*models.Board, error)
	ListByCategoryNotDeletedFunc func(ctx context.Context, category string, limit, offset int) ([]*models.Board, error)
	ListByAuthorNotDeletedFunc   func(ctx context.Context, authorID string, limit, offset int) ([]*models.Board, error)
	ListPinnedNotDeletedFunc     func(ctx context.Context) ([]*models.Board, error)
	CreateFunc                   func(ctx context.Context, board *models.Board) (*models.Board, error)
	UpdateFunc                   func(ctx context.Context, board *models.Board) error
	SoftDeleteFunc               func(ctx context.Context, id string) error
	SetPinnedFunc                func(ctx context.Context, id string, pinned bool) error
	IncrementViewCountFunc       func(ctx context.Context, id string) error
	CountNotDeletedFunc          func(ctx context.Context) (int64, error)
	CountByCategoryFunc          func(ctx context.Context, category string) (int64, error)
	CountByAuthorFunc            func(ctx context.Context, authorID string) (int64, error)
	CountGroupedByCategoryFunc   func(ctx context.Context) (map[string]int64, error)
	CountCreatedSinceFunc        func(ctx context.Context, since time.Time) (int64, error)
}

func (m *MockBoardRepository) GetByIDNotDeleted(ctx context.Context, id string) (*models.Board, error) {
	if m.GetByIDNotDeletedFunc != nil {
		return m.GetByIDNotDeletedFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockBoardRepository) ListNotDeleted(ctx context.Context, limit, offset int) ([]*models.Board, error) {
	if m.ListNotDeletedFunc != nil {
		return m.ListNotDeletedFunc(ctx, limit, offset)
	}
	return []*models.Board{}, nil
}

func (m *MockBoardRepository) ListByCategoryNotDeleted(ctx context.Context, category string, limit, offset int) ([]*models.Board, error) {
	if m.ListByCategoryNotDeletedFunc != nil {
		return m.ListByCategoryNotDeletedFunc(ctx, category, limit, offset)
	}
	return []*models.Board{}, nil
}

func (m *MockBoardRepository) ListByAuthorNotDeleted(ctx context.Context, authorID string, limit, offset int) ([]*models.Board, error) {
	if m.ListByAuthorNotDeletedFunc != nil {
		return m.ListByAuthorNotDeletedFunc(ctx, authorID, limit, offset)
	}
	return []*models.Board{}, nil
}

func (m *MockBoardRepository) ListPinnedNotDeleted(ctx context.Context) ([]*models.Board, error) {
	if m.ListPinnedNotDeletedFunc != nil {
		return m.ListPinnedNotDeletedFunc(ctx)
	}
	return []*models.Board{}, nil
}

func (m *MockBoardRepository) Create(ctx context.Context, board *models.Board) (*models.Board, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, board)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBoardRepository) Update(ctx context.Context, board *models.Board) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, board)
	}
	return nil
}

func (m *MockBoardRepository) SoftDelete(ctx context.Context, id string) error {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockBoardRepository) SetPinned(ctx context.Context, id string, pinned bool) error {
	if m.SetPinnedFunc != nil {
		return m.SetPinnedFunc(ctx, id, pinned)
	}
	return nil
}

func (m *MockBoardRepository) IncrementViewCount(ctx context.Context, id string) error {
	if m.IncrementViewCountFunc != nil {
		return m.IncrementViewCountFunc(ctx, id)
	}
	return nil
}

func (m *MockBoardRepository) CountNotDeleted(ctx context.Context) (int64, error) {
	if m.CountNotDeletedFunc != nil {
		return m.CountNotDeletedFunc(ctx)
	}
	return 0, nil
}

func (m *MockBoardRepository) CountByCategoryNotDeleted(ctx context.Context, category string) (int64, error) {
	if m.CountByCategoryFunc != nil {
		return m.CountByCategoryFunc(ctx, category)
	}
	return 0, nil
}

func (m *MockBoardRepository) CountByAuthorNotDeleted(ctx context.Context, authorID string) (int64, error) {
	if m.CountByAuthorFunc != nil {
		return m.CountByAuthorFunc(ctx, authorID)
	}
	return 0, nil
}

func (m *MockBoardRepository) CountGroupedByCategory(ctx context.Context) (map[string]int64, error) {
	if m.CountGroupedByCategoryFunc != nil {
		return m.CountGroupedByCategoryFunc(ctx)
	}
	return map[string]int64{}, nil
}

func (m *MockBoardRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	if m.CountCreatedSinceFunc != nil {
		return m.CountCreatedSinceFunc(ctx, since)
	}
	return 0, nil
}

// MockEmailNotifier implements EmailNotifier for testing
type MockEmailNotifier struct {
	NotifyPendingRegistrationFunc func(ctx context.Context, username, email string) error
}

func (m *MockEmailNotifier) NotifyPendingRegistration(ctx context.Context, username, email string) error {
	if m.NotifyPendingRegistrationFunc != nil {
		return m.NotifyPendingRegistrationFunc(ctx, username, email)
	}
	return nil
}

// NewTestRole builds a reference role for tests
func NewTestRole(name string) *models.Role {
	priority := 10
	if name == models.RoleAdmin {
		priority = 1
	}
	return &models.Role{
		ID:       "role-" + name,
		Name:     name,
		Priority: priority,
	}
}

// NewTestAccount builds an active, unlocked account for tests
func NewTestAccount(id, username string, roles ...string) *models.Account {
	account := &models.Account{
		ID:        id,
		Username:  username,
		Email:     username + "@example.com",
		Name:      "Test " + username,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if len(roles) == 0 {
		roles = []string{models.RoleUser}
	}
	for _, name := range roles {
		account.Roles = append(account.Roles, *NewTestRole(name))
	}
	return account
}

// NewTestBoard builds a non-deleted board for tests
func NewTestBoard(id, authorID string, category *string) *models.Board {
	return &models.Board{
		ID:        id,
		Title:     "title " + id,
		Content:   "<p>content</p>",
		Category:  category,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
